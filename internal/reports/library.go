// Package reports serves the generated report library and the Green IT
// impact report.
package reports

import (
	"errors"
	"fmt"
	"strings"

	"github.com/phisnet/backend/internal/models"
)

var (
	ErrReportNotFound   = errors.New("report not found")
	ErrModalityNotFound = errors.New("green it modality not found")
)

// Library is an immutable set of reports, their types and the Green IT data.
type Library struct {
	types   []models.ReportType
	reports []models.Report
	greenIT models.GreenITReport
}

// NewLibrary copies its inputs and counts the reports filed under each type.
func NewLibrary(types []models.ReportType, reports []models.Report, greenIT models.GreenITReport) *Library {
	l := &Library{
		types:   append([]models.ReportType(nil), types...),
		reports: make([]models.Report, len(reports)),
		greenIT: cloneGreenIT(greenIT),
	}
	counts := make(map[string]int, len(types))
	for i, r := range reports {
		l.reports[i] = cloneReport(r)
		counts[r.Type]++
	}
	for i := range l.types {
		l.types[i].Count = counts[l.types[i].ID]
	}
	return l
}

// Filter returns the reports matching every non-empty criterion, in library
// order. The query is a case-insensitive substring of the title, the
// description or any tag.
func (l *Library) Filter(filter models.ReportFilter) []models.Report {
	query := strings.ToLower(strings.TrimSpace(filter.Query))
	tag := strings.TrimSpace(filter.Tag)

	out := make([]models.Report, 0, len(l.reports))
	for _, r := range l.reports {
		if !matchesType(filter.Type, r.Type) {
			continue
		}
		if query != "" && !matchesQuery(r, query) {
			continue
		}
		if tag != "" && !hasTag(r, tag) {
			continue
		}
		out = append(out, cloneReport(r))
	}
	return out
}

func matchesType(want, got string) bool {
	want = strings.TrimSpace(want)
	return want == "" || strings.EqualFold(want, "all") || strings.EqualFold(want, got)
}

func matchesQuery(r models.Report, query string) bool {
	if strings.Contains(strings.ToLower(r.Title), query) ||
		strings.Contains(strings.ToLower(r.Description), query) {
		return true
	}
	for _, t := range r.Tags {
		if strings.Contains(strings.ToLower(t), query) {
			return true
		}
	}
	return false
}

func hasTag(r models.Report, tag string) bool {
	for _, t := range r.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

// Types returns the report types with their counts.
func (l *Library) Types() []models.ReportType {
	return append([]models.ReportType(nil), l.types...)
}

// Get returns one report by id.
func (l *Library) Get(id int) (models.Report, error) {
	for _, r := range l.reports {
		if r.ID == id {
			return cloneReport(r), nil
		}
	}
	return models.Report{}, fmt.Errorf("%w: %d", ErrReportNotFound, id)
}

// GreenIT returns the whole Green IT report.
func (l *Library) GreenIT() models.GreenITReport {
	return cloneGreenIT(l.greenIT)
}

// GreenITModality returns the charts of one detection modality.
func (l *Library) GreenITModality(id string) (models.GreenITModality, error) {
	for _, m := range l.greenIT.Modalities {
		if strings.EqualFold(m.ID, id) {
			return cloneModality(m), nil
		}
	}
	return models.GreenITModality{}, fmt.Errorf("%w: %s", ErrModalityNotFound, id)
}

func cloneReport(r models.Report) models.Report {
	r.Tags = append([]string(nil), r.Tags...)
	if r.Stats != nil {
		stats := make(map[string]interface{}, len(r.Stats))
		for k, v := range r.Stats {
			stats[k] = v
		}
		r.Stats = stats
	}
	return r
}

func cloneGreenIT(g models.GreenITReport) models.GreenITReport {
	out := models.GreenITReport{
		Summary:    append([]models.GreenITStat(nil), g.Summary...),
		Modalities: make([]models.GreenITModality, len(g.Modalities)),
	}
	for i, m := range g.Modalities {
		out.Modalities[i] = cloneModality(m)
	}
	return out
}

func cloneModality(m models.GreenITModality) models.GreenITModality {
	charts := make([]models.Chart, len(m.Charts))
	for i, c := range m.Charts {
		c.Labels = append([]string(nil), c.Labels...)
		series := make([]models.ChartSeries, len(c.Series))
		for j, s := range c.Series {
			s.Data = append([]float64(nil), s.Data...)
			series[j] = s
		}
		c.Series = series
		charts[i] = c
	}
	m.Charts = charts
	return m
}
