package models

// ThreatTotals are the headline counters of the dashboard.
type ThreatTotals struct {
	Total   int `json:"total" yaml:"total"`
	High    int `json:"high" yaml:"high"`
	Medium  int `json:"medium" yaml:"medium"`
	Low     int `json:"low" yaml:"low"`
	Blocked int `json:"blocked" yaml:"blocked"`
}

// Activity is one line of the realtime activity list.
type Activity struct {
	ID        int       `json:"id" yaml:"id"`
	Type      string    `json:"type" yaml:"type"`
	Content   string    `json:"content" yaml:"content"`
	Risk      RiskLabel `json:"risk" yaml:"risk"`
	Timestamp string    `json:"timestamp" yaml:"timestamp"`
	Blocked   bool      `json:"blocked" yaml:"blocked"`
}

// SystemStats are the service health numbers shown on the dashboard.
type SystemStats struct {
	Uptime          string `json:"uptime" yaml:"uptime"`
	ProcessedToday  int    `json:"processedToday" yaml:"processedToday"`
	AvgResponseTime string `json:"avgResponseTime" yaml:"avgResponseTime"`
	Accuracy        string `json:"accuracy" yaml:"accuracy"`
}

// DashboardSnapshot is a point-in-time copy of the dashboard data.
type DashboardSnapshot struct {
	Threats          ThreatTotals `json:"threats" yaml:"threats"`
	RealtimeActivity []Activity   `json:"realtimeActivity" yaml:"realtimeActivity"`
	SystemStats      SystemStats  `json:"systemStats" yaml:"systemStats"`
	Live             bool         `json:"live" yaml:"-"`
}

// Clone returns a copy with its own activity slice.
func (d DashboardSnapshot) Clone() DashboardSnapshot {
	d.RealtimeActivity = append([]Activity(nil), d.RealtimeActivity...)
	return d
}
