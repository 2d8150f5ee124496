package models

import "time"

// AnalysisRow is one terminal analysis kept by the history store.
type AnalysisRow struct {
	RecordID    string       `json:"recordId"`
	FileName    string       `json:"fileName"`
	Category    Category     `json:"category"`
	Status      UploadStatus `json:"status"`
	Risk        RiskLabel    `json:"risk,omitempty"`
	Confidence  int          `json:"confidence"`
	ThreatCount int          `json:"threatCount"`
	CompletedAt time.Time    `json:"completedAt"`
}

// AnalyticsSummary aggregates the history store.
type AnalyticsSummary struct {
	Total         int            `json:"total"`
	ByRisk        map[string]int `json:"byRisk"`
	ByCategory    map[string]int `json:"byCategory"`
	ByStatus      map[string]int `json:"byStatus"`
	AvgConfidence float64        `json:"avgConfidence"`
}
