// Package catalog loads the mock data behind every page (canned outcomes,
// threat feed, dashboard baseline, monitoring, reports, Green IT) from YAML.
package catalog

import (
	_ "embed"
	"fmt"
	"io"
	"os"

	"github.com/phisnet/backend/internal/models"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// Catalog is the full set of mock data.
type Catalog struct {
	Outcomes    []models.AnalysisResult  `yaml:"outcomes"`
	ThreatTypes []models.ThreatType      `yaml:"threatTypes"`
	Threats     []models.Threat          `yaml:"threats"`
	Dashboard   models.DashboardSnapshot `yaml:"dashboard"`
	Monitoring  Monitoring               `yaml:"monitoring"`
	ReportTypes []models.ReportType      `yaml:"reportTypes"`
	Reports     []models.Report          `yaml:"reports"`
	GreenIT     models.GreenITReport     `yaml:"greenIT"`
}

// Monitoring is the system component board and its alerts.
type Monitoring struct {
	Components []models.SystemComponent `yaml:"components"`
	Alerts     []models.Alert           `yaml:"alerts"`
}

// Default returns the embedded catalog. It panics only if the embedded
// document is malformed, which the tests guard against.
func Default() *Catalog {
	c, err := Parse(defaultCatalog)
	if err != nil {
		panic(fmt.Sprintf("embedded catalog is invalid: %v", err))
	}
	return c
}

// Load reads a catalog file. An empty path yields the embedded catalog.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening catalog: %w", err)
	}
	defer f.Close()
	return ParseFromReader(f)
}

// ParseFromReader reads and validates a catalog document.
func ParseFromReader(r io.Reader) (*Catalog, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a catalog document.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks the invariants the simulator relies on.
func (c *Catalog) Validate() error {
	if len(c.Outcomes) == 0 {
		return fmt.Errorf("catalog has no outcomes")
	}
	for i, o := range c.Outcomes {
		if !o.Risk.Valid() {
			return fmt.Errorf("outcome %d: unknown risk label %q", i, o.Risk)
		}
		if o.Confidence < 0 || o.Confidence > 100 {
			return fmt.Errorf("outcome %d: confidence %d out of range", i, o.Confidence)
		}
	}
	seen := make(map[int]struct{}, len(c.Threats))
	for _, t := range c.Threats {
		if _, dup := seen[t.ID]; dup {
			return fmt.Errorf("duplicate threat id %d", t.ID)
		}
		seen[t.ID] = struct{}{}
	}
	if err := c.validateMonitoring(); err != nil {
		return err
	}
	if err := c.validateReports(); err != nil {
		return err
	}
	return c.validateGreenIT()
}

func (c *Catalog) validateMonitoring() error {
	components := make(map[string]struct{}, len(c.Monitoring.Components))
	for _, comp := range c.Monitoring.Components {
		if comp.ID == "" {
			return fmt.Errorf("component %q has no id", comp.Name)
		}
		if _, dup := components[comp.ID]; dup {
			return fmt.Errorf("duplicate component id %q", comp.ID)
		}
		if !comp.Status.Valid() {
			return fmt.Errorf("component %s: unknown status %q", comp.ID, comp.Status)
		}
		components[comp.ID] = struct{}{}
	}

	alerts := make(map[int]struct{}, len(c.Monitoring.Alerts))
	for _, a := range c.Monitoring.Alerts {
		if _, dup := alerts[a.ID]; dup {
			return fmt.Errorf("duplicate alert id %d", a.ID)
		}
		if !a.Level.Valid() {
			return fmt.Errorf("alert %d: unknown level %q", a.ID, a.Level)
		}
		if _, ok := components[a.Component]; !ok {
			return fmt.Errorf("alert %d: unknown component %q", a.ID, a.Component)
		}
		alerts[a.ID] = struct{}{}
	}
	return nil
}

func (c *Catalog) validateReports() error {
	types := make(map[string]struct{}, len(c.ReportTypes))
	for _, rt := range c.ReportTypes {
		if _, dup := types[rt.ID]; dup {
			return fmt.Errorf("duplicate report type %q", rt.ID)
		}
		types[rt.ID] = struct{}{}
	}

	seen := make(map[int]struct{}, len(c.Reports))
	for _, r := range c.Reports {
		if _, dup := seen[r.ID]; dup {
			return fmt.Errorf("duplicate report id %d", r.ID)
		}
		if _, ok := types[r.Type]; !ok {
			return fmt.Errorf("report %d: unknown type %q", r.ID, r.Type)
		}
		seen[r.ID] = struct{}{}
	}
	return nil
}

func (c *Catalog) validateGreenIT() error {
	seen := make(map[string]struct{}, len(c.GreenIT.Modalities))
	for _, m := range c.GreenIT.Modalities {
		if _, dup := seen[m.ID]; dup {
			return fmt.Errorf("duplicate green it modality %q", m.ID)
		}
		seen[m.ID] = struct{}{}
		for _, chart := range m.Charts {
			for _, s := range chart.Series {
				if len(s.Data) != len(chart.Labels) {
					return fmt.Errorf("green it %s/%q: series %q has %d points for %d labels",
						m.ID, chart.Title, s.Label, len(s.Data), len(chart.Labels))
				}
			}
		}
	}
	return nil
}
