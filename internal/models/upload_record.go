package models

import "time"

// Category is the coarse media type assigned to an uploaded file.
type Category string

const (
	CategoryText    Category = "text"
	CategoryAudio   Category = "audio"
	CategoryVideo   Category = "video"
	CategoryImage   Category = "image"
	CategoryUnknown Category = "unknown"
)

// UploadStatus represents where a record is in its simulated analysis.
type UploadStatus string

const (
	UploadStatusUploading UploadStatus = "uploading"
	UploadStatusAnalyzing UploadStatus = "analyzing"
	UploadStatusCompleted UploadStatus = "completed"
	UploadStatusError     UploadStatus = "error"
)

// Terminal reports whether no further ticks apply.
func (s UploadStatus) Terminal() bool {
	return s == UploadStatusCompleted || s == UploadStatusError
}

// RiskLabel is a canned classification outcome.
type RiskLabel string

const (
	RiskHigh   RiskLabel = "HIGH_RISK"
	RiskReview RiskLabel = "REVIEW"
	RiskLow    RiskLabel = "LOW_RISK"
)

// Valid reports whether r is one of the known labels.
func (r RiskLabel) Valid() bool {
	switch r {
	case RiskHigh, RiskReview, RiskLow:
		return true
	}
	return false
}

// AnalysisResult is the outcome attached to a completed record.
type AnalysisResult struct {
	Risk       RiskLabel `json:"risk" yaml:"risk"`
	Confidence int       `json:"confidence" yaml:"confidence"` // 0-100
	Threats    []string  `json:"threats" yaml:"threats"`
	Details    string    `json:"details" yaml:"details"`
}

// Clone returns a deep copy so callers never share the threats slice.
func (r *AnalysisResult) Clone() *AnalysisResult {
	if r == nil {
		return nil
	}
	out := *r
	out.Threats = append([]string(nil), r.Threats...)
	return &out
}

// UploadRecord is one uploaded file and its simulated analysis.
type UploadRecord struct {
	ID          string          `json:"id"`
	FileRef     string          `json:"fileRef"`
	FileName    string          `json:"fileName"`
	ContentType string          `json:"contentType,omitempty"`
	Size        int64           `json:"size"`
	Category    Category        `json:"category"`
	Progress    int             `json:"progress"` // 0-100
	Status      UploadStatus    `json:"status"`
	Result      *AnalysisResult `json:"result,omitempty"`
	Error       string          `json:"error,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
	CompletedAt *time.Time      `json:"completedAt,omitempty"`
}

// Clone returns a copy that shares no mutable state with r.
func (r UploadRecord) Clone() UploadRecord {
	r.Result = r.Result.Clone()
	if r.CompletedAt != nil {
		t := *r.CompletedAt
		r.CompletedAt = &t
	}
	return r
}

// Rejection describes a file refused before a record was created.
type Rejection struct {
	FileName string `json:"fileName"`
	Size     int64  `json:"size"`
	Code     string `json:"code"`
	Reason   string `json:"reason"`
}

// UploadStats summarizes the current record collection.
type UploadStats struct {
	Total      int `json:"total"`
	Completed  int `json:"completed"`
	HighRisk   int `json:"highRisk"`
	Processing int `json:"processing"`
	Failed     int `json:"failed"`
}
