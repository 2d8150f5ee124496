// Package threats serves the read-only detection feed.
package threats

import (
	"errors"
	"fmt"
	"strings"

	"github.com/phisnet/backend/internal/models"
)

var ErrThreatNotFound = errors.New("threat not found")

const matchAll = "all"

// Feed is an immutable list of threats and type counters.
type Feed struct {
	threats []models.Threat
	types   []models.ThreatType
}

// NewFeed copies the given threats and types.
func NewFeed(threats []models.Threat, types []models.ThreatType) *Feed {
	f := &Feed{
		threats: make([]models.Threat, len(threats)),
		types:   append([]models.ThreatType(nil), types...),
	}
	for i, t := range threats {
		f.threats[i] = cloneThreat(t)
	}
	return f
}

// Filter returns the threats matching every non-empty criterion, in feed order.
func (f *Feed) Filter(filter models.ThreatFilter) []models.Threat {
	query := strings.ToLower(strings.TrimSpace(filter.Query))

	out := make([]models.Threat, 0, len(f.threats))
	for _, t := range f.threats {
		if !matches(filter.Type, t.Type) || !matches(filter.Modality, t.Modality) {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(t.Title), query) &&
			!strings.Contains(strings.ToLower(t.Description), query) {
			continue
		}
		out = append(out, cloneThreat(t))
	}
	return out
}

func matches(want, got string) bool {
	want = strings.TrimSpace(want)
	return want == "" || strings.EqualFold(want, matchAll) || strings.EqualFold(want, got)
}

// Types returns the threat type counters.
func (f *Feed) Types() []models.ThreatType {
	return append([]models.ThreatType(nil), f.types...)
}

// Get returns one threat by id.
func (f *Feed) Get(id int) (models.Threat, error) {
	for _, t := range f.threats {
		if t.ID == id {
			return cloneThreat(t), nil
		}
	}
	return models.Threat{}, fmt.Errorf("%w: %d", ErrThreatNotFound, id)
}

func cloneThreat(t models.Threat) models.Threat {
	t.Details.URLs = append([]string(nil), t.Details.URLs...)
	t.Details.Indicators = append([]string(nil), t.Details.Indicators...)
	return t
}
