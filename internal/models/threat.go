package models

// Threat is one entry of the mock detection feed.
type Threat struct {
	ID          int           `json:"id" yaml:"id"`
	Type        string        `json:"type" yaml:"type"`         // phishing, deepfake, malware
	Modality    string        `json:"modality" yaml:"modality"` // text, audio, video
	Title       string        `json:"title" yaml:"title"`
	Description string        `json:"description" yaml:"description"`
	Risk        RiskLabel     `json:"risk" yaml:"risk"`
	Confidence  int           `json:"confidence" yaml:"confidence"`
	Timestamp   string        `json:"timestamp" yaml:"timestamp"`
	Source      string        `json:"source" yaml:"source"`
	Blocked     bool          `json:"blocked" yaml:"blocked"`
	Details     ThreatDetails `json:"details" yaml:"details"`
}

// ThreatDetails carries the modality-specific evidence.
type ThreatDetails struct {
	URLs       []string `json:"urls,omitempty" yaml:"urls"`
	Duration   string   `json:"duration,omitempty" yaml:"duration"`
	Indicators []string `json:"indicators" yaml:"indicators"`
}

// ThreatType is a threat category with its running count.
type ThreatType struct {
	ID    string `json:"id" yaml:"id"`
	Name  string `json:"name" yaml:"name"`
	Count int    `json:"count" yaml:"count"`
}

// ThreatFilter selects threats. Empty or "all" fields match everything.
type ThreatFilter struct {
	Type     string `query:"type"`
	Modality string `query:"modality"`
	Query    string `query:"q"`
}
