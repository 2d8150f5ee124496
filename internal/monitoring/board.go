// Package monitoring serves the system component board and its alerts.
// Components are read-only; alerts can be acknowledged.
package monitoring

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/phisnet/backend/internal/logger"
	"github.com/phisnet/backend/internal/models"
	"github.com/rs/zerolog"
)

var (
	ErrComponentNotFound = errors.New("component not found")
	ErrAlertNotFound     = errors.New("alert not found")
)

const (
	StateActive       = "active"
	StateAcknowledged = "acknowledged"
)

// Board holds the components and the alert list.
type Board struct {
	components []models.SystemComponent

	mu     sync.RWMutex
	alerts []models.Alert

	now func() time.Time
	log zerolog.Logger
}

// NewBoard copies the given components and alerts.
func NewBoard(components []models.SystemComponent, alerts []models.Alert) *Board {
	b := &Board{
		components: make([]models.SystemComponent, len(components)),
		alerts:     make([]models.Alert, len(alerts)),
		now:        time.Now,
		log:        logger.Component("monitoring"),
	}
	for i, c := range components {
		b.components[i] = cloneComponent(c)
	}
	for i, a := range alerts {
		b.alerts[i] = cloneAlert(a)
	}
	return b
}

// Components returns every component in board order.
func (b *Board) Components() []models.SystemComponent {
	out := make([]models.SystemComponent, len(b.components))
	for i, c := range b.components {
		out[i] = cloneComponent(c)
	}
	return out
}

// Component returns one component by id.
func (b *Board) Component(id string) (models.SystemComponent, error) {
	for _, c := range b.components {
		if c.ID == id {
			return cloneComponent(c), nil
		}
	}
	return models.SystemComponent{}, fmt.Errorf("%w: %s", ErrComponentNotFound, id)
}

// Alerts returns the alerts matching the filter, in board order.
func (b *Board) Alerts(filter models.AlertFilter) ([]models.Alert, error) {
	state := strings.ToLower(strings.TrimSpace(filter.State))
	switch state {
	case "", "all", StateActive, StateAcknowledged:
	default:
		return nil, fmt.Errorf("unknown alert state %q", filter.State)
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]models.Alert, 0, len(b.alerts))
	for _, a := range b.alerts {
		if state == StateActive && a.Acknowledged || state == StateAcknowledged && !a.Acknowledged {
			continue
		}
		if !matches(filter.Level, string(a.Level)) || !matches(filter.Component, a.Component) {
			continue
		}
		out = append(out, cloneAlert(a))
	}
	return out, nil
}

func matches(want, got string) bool {
	want = strings.TrimSpace(want)
	return want == "" || strings.EqualFold(want, "all") || strings.EqualFold(want, got)
}

// Acknowledge marks an alert as seen. An alert that is already acknowledged
// is returned unchanged.
func (b *Board) Acknowledge(id int) (models.Alert, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i := range b.alerts {
		a := &b.alerts[i]
		if a.ID != id {
			continue
		}
		if !a.Acknowledged {
			now := b.now()
			a.Acknowledged = true
			a.AcknowledgedAt = &now
			b.log.Info().Int("alert", id).Str("component", a.Component).Str("level", string(a.Level)).Msg("alert acknowledged")
		}
		return cloneAlert(*a), nil
	}
	return models.Alert{}, fmt.Errorf("%w: %d", ErrAlertNotFound, id)
}

// Overview counts components by status and the alerts still active.
func (b *Board) Overview() models.MonitoringOverview {
	o := models.MonitoringOverview{Components: len(b.components)}
	for _, c := range b.components {
		switch c.Status {
		case models.ComponentHealthy:
			o.Healthy++
		case models.ComponentWarning:
			o.Warning++
		case models.ComponentCritical:
			o.Critical++
		}
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, a := range b.alerts {
		if !a.Acknowledged {
			o.ActiveAlerts++
		}
	}
	return o
}

func cloneComponent(c models.SystemComponent) models.SystemComponent {
	if c.Metrics.Extra != nil {
		extra := make(map[string]string, len(c.Metrics.Extra))
		for k, v := range c.Metrics.Extra {
			extra[k] = v
		}
		c.Metrics.Extra = extra
	}
	return c
}

func cloneAlert(a models.Alert) models.Alert {
	if a.AcknowledgedAt != nil {
		at := *a.AcknowledgedAt
		a.AcknowledgedAt = &at
	}
	return a
}
