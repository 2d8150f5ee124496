package models

import "time"

// ComponentStatus is the health of one monitored system component.
type ComponentStatus string

const (
	ComponentHealthy  ComponentStatus = "healthy"
	ComponentWarning  ComponentStatus = "warning"
	ComponentCritical ComponentStatus = "critical"
)

// Valid reports whether s is a known status.
func (s ComponentStatus) Valid() bool {
	switch s {
	case ComponentHealthy, ComponentWarning, ComponentCritical:
		return true
	}
	return false
}

// SystemComponent is one service shown on the monitoring page.
type SystemComponent struct {
	ID        string           `json:"id" yaml:"id"`
	Name      string           `json:"name" yaml:"name"`
	Type      string           `json:"type" yaml:"type"` // gateway, ai-service, database, analytics
	Status    ComponentStatus  `json:"status" yaml:"status"`
	Uptime    string           `json:"uptime" yaml:"uptime"`
	LastCheck string           `json:"lastCheck" yaml:"lastCheck"`
	Metrics   ComponentMetrics `json:"metrics" yaml:"metrics"`
}

// ComponentMetrics holds the load gauges plus free-form counters.
type ComponentMetrics struct {
	CPU    int               `json:"cpu" yaml:"cpu"`       // percent
	Memory int               `json:"memory" yaml:"memory"` // percent
	Extra  map[string]string `json:"extra,omitempty" yaml:"extra"`
}

// AlertLevel grades a monitoring alert.
type AlertLevel string

const (
	AlertCritical AlertLevel = "critical"
	AlertWarning  AlertLevel = "warning"
	AlertInfo     AlertLevel = "info"
)

// Valid reports whether l is a known level.
func (l AlertLevel) Valid() bool {
	switch l {
	case AlertCritical, AlertWarning, AlertInfo:
		return true
	}
	return false
}

// Alert is raised against a system component until acknowledged.
type Alert struct {
	ID             int        `json:"id" yaml:"id"`
	Level          AlertLevel `json:"level" yaml:"level"`
	Component      string     `json:"component" yaml:"component"`
	Message        string     `json:"message" yaml:"message"`
	Timestamp      string     `json:"timestamp" yaml:"timestamp"`
	Acknowledged   bool       `json:"acknowledged" yaml:"acknowledged"`
	AcknowledgedAt *time.Time `json:"acknowledgedAt,omitempty" yaml:"-"`
}

// AlertFilter selects alerts. State is "active", "acknowledged", or empty/"all".
type AlertFilter struct {
	State     string `query:"state"`
	Level     string `query:"level"`
	Component string `query:"component"`
}

// MonitoringOverview is the header of the monitoring page.
type MonitoringOverview struct {
	Components   int `json:"components"`
	Healthy      int `json:"healthy"`
	Warning      int `json:"warning"`
	Critical     int `json:"critical"`
	ActiveAlerts int `json:"activeAlerts"`
}
