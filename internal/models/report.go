package models

import "time"

// ReportType is a report category with the number of reports filed under it.
type ReportType struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	Count       int    `json:"count" yaml:"-"`
}

// Report is one generated document in the reports library.
type Report struct {
	ID          int                    `json:"id" yaml:"id"`
	Title       string                 `json:"title" yaml:"title"`
	Type        string                 `json:"type" yaml:"type"`
	Description string                 `json:"description" yaml:"description"`
	CreatedAt   time.Time              `json:"createdAt" yaml:"createdAt"`
	CreatedBy   string                 `json:"createdBy" yaml:"createdBy"`
	Size        string                 `json:"size" yaml:"size"`
	Format      string                 `json:"format" yaml:"format"`
	Tags        []string               `json:"tags" yaml:"tags"`
	Stats       map[string]interface{} `json:"stats" yaml:"stats"`
}

// ReportFilter selects reports. Query matches title, description or any tag;
// Tag must equal one of the report's tags.
type ReportFilter struct {
	Type  string `query:"type"`
	Query string `query:"q"`
	Tag   string `query:"tag"`
}

// GreenITReport is the environmental impact page: headline figures and the
// per-modality charts.
type GreenITReport struct {
	Summary    []GreenITStat     `json:"summary" yaml:"summary"`
	Modalities []GreenITModality `json:"modalities" yaml:"modalities"`
}

// GreenITStat is one headline figure.
type GreenITStat struct {
	Label string `json:"label" yaml:"label"`
	Value string `json:"value" yaml:"value"`
	Note  string `json:"note" yaml:"note"`
}

// GreenITModality groups the efficiency charts of one detection modality.
type GreenITModality struct {
	ID          string  `json:"id" yaml:"id"`
	Name        string  `json:"name" yaml:"name"`
	Description string  `json:"description" yaml:"description"`
	Charts      []Chart `json:"charts" yaml:"charts"`
}

// Chart is a labelled data set ready for plotting.
type Chart struct {
	Title  string        `json:"title" yaml:"title"`
	Kind   string        `json:"kind" yaml:"kind"` // line, bar, radar
	XLabel string        `json:"xLabel,omitempty" yaml:"xLabel"`
	YLabel string        `json:"yLabel,omitempty" yaml:"yLabel"`
	Labels []string      `json:"labels" yaml:"labels"`
	Series []ChartSeries `json:"series" yaml:"series"`
}

// ChartSeries is one line, bar group or radar polygon. Data lines up with the
// chart labels.
type ChartSeries struct {
	Label string    `json:"label" yaml:"label"`
	Data  []float64 `json:"data" yaml:"data"`
}
