// Package catalog provides the in-memory sample catalog backend and the
// dataset it serves.
package catalog

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/leapstack-labs/datapulse/pkg/core"
)

// DefaultHealthScore is the system health reported when a dataset sets none.
const DefaultHealthScore = 92

// Dataset is the content served by a catalog backend.
type Dataset struct {
	Connections []core.DatabaseConnection `yaml:"connections"`
	Tables      []TableSeed               `yaml:"tables"`
	// Health overrides DefaultHealthScore when set.
	Health *int `yaml:"health_score,omitempty"`
}

// TableSeed is a table summary with optional explicit columns.
// Tables without columns get synthesized ones.
type TableSeed struct {
	core.TableSummary `yaml:",inline"`
	Columns           []core.ColumnDetail `yaml:"columns,omitempty"`
}

// HealthScore returns the dataset's system health.
func (d Dataset) HealthScore() int {
	if d.Health == nil {
		return DefaultHealthScore
	}
	return *core.HealthScore(*d.Health)
}

// Summaries returns the table summaries in dataset order.
func (d Dataset) Summaries() []core.TableSummary {
	out := make([]core.TableSummary, len(d.Tables))
	for i, t := range d.Tables {
		out[i] = t.TableSummary
	}
	return out
}

// Detail returns the detail for the table with id, synthesizing columns when
// the seed has none.
func (d Dataset) Detail(id string) (core.TableDetail, bool) {
	for _, t := range d.Tables {
		if t.ID != id {
			continue
		}
		cols := t.Columns
		if len(cols) == 0 {
			cols = SynthesizeColumns(t.Name)
		}
		return core.TableDetail{
			TableSummary: t.TableSummary,
			Columns:      append([]core.ColumnDetail(nil), cols...),
		}, true
	}
	return core.TableDetail{}, false
}

// Clone returns a deep copy of d.
func (d Dataset) Clone() Dataset {
	out := Dataset{
		Connections: append([]core.DatabaseConnection(nil), d.Connections...),
		Tables:      make([]TableSeed, len(d.Tables)),
	}
	if d.Health != nil {
		h := *d.Health
		out.Health = &h
	}
	for i, t := range d.Tables {
		t.Columns = append([]core.ColumnDetail(nil), t.Columns...)
		if t.HealthScore != nil {
			t.HealthScore = core.HealthScore(*t.HealthScore)
		}
		out.Tables[i] = t
	}
	return out
}

// Validate checks ids are present and unique and every connection has a
// supported type.
func (d Dataset) Validate() error {
	seen := make(map[string]bool)
	for i, c := range d.Connections {
		if c.ID == "" {
			return fmt.Errorf("connection %d: id is required", i)
		}
		if seen["c:"+c.ID] {
			return fmt.Errorf("connection %q: duplicate id", c.ID)
		}
		seen["c:"+c.ID] = true
		if _, err := core.ParseSourceType(string(c.Type)); err != nil {
			return fmt.Errorf("connection %q: %w", c.ID, err)
		}
	}
	for i, t := range d.Tables {
		if t.ID == "" {
			return fmt.Errorf("table %d: id is required", i)
		}
		if seen["t:"+t.ID] {
			return fmt.Errorf("table %q: duplicate id", t.ID)
		}
		seen["t:"+t.ID] = true
		if t.HealthScore != nil && (*t.HealthScore < 0 || *t.HealthScore > 100) {
			return fmt.Errorf("table %q: health score %d out of range", t.ID, *t.HealthScore)
		}
	}
	return nil
}

// DefaultDataset returns the built-in sample data. Connection timestamps are
// set to now.
func DefaultDataset(now time.Time) Dataset {
	now = now.UTC()
	return Dataset{
		Connections: []core.DatabaseConnection{
			{
				ID:        "1",
				Name:      "Production Snowflake",
				Type:      core.SourceSnowflake,
				Host:      "sf-account.snowflakecomputing.com",
				Port:      443,
				Username:  "admin",
				Database:  "SALES_DB",
				CreatedAt: now,
				Status:    core.StatusConnected,
			},
			{
				ID:        "2",
				Name:      "Legacy Postgres",
				Type:      core.SourcePostgres,
				Host:      "db.legacy.internal",
				Port:      5432,
				Username:  "read_only",
				Database:  "ARCHIVE",
				CreatedAt: now,
				Status:    core.StatusError,
			},
		},
		Tables: []TableSeed{
			{TableSummary: core.TableSummary{
				ID:          "t1",
				Name:        "CUSTOMERS",
				Schema:      "PUBLIC",
				RowCount:    15420,
				ColumnCount: 12,
				Description: "Contains detailed customer profiles including PII.",
				HealthScore: core.HealthScore(98),
			}},
			{TableSummary: core.TableSummary{
				ID:          "t2",
				Name:        "ORDERS",
				Schema:      "SALES",
				RowCount:    2500000,
				ColumnCount: 24,
				Description: "Transactional order history.",
				HealthScore: core.HealthScore(85),
			}},
		},
	}
}

// ParseDataset decodes a YAML dataset. Connections without a timestamp get now.
func ParseDataset(data []byte, now time.Time) (Dataset, error) {
	var ds Dataset
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&ds); err != nil {
		return Dataset{}, fmt.Errorf("failed to parse dataset: %w", err)
	}

	for i := range ds.Connections {
		if ds.Connections[i].CreatedAt.IsZero() {
			ds.Connections[i].CreatedAt = now.UTC()
		}
		if ds.Connections[i].Status == "" {
			ds.Connections[i].Status = core.StatusDisconnected
		}
	}

	if err := ds.Validate(); err != nil {
		return Dataset{}, fmt.Errorf("invalid dataset: %w", err)
	}
	return ds, nil
}

// LoadDataset reads a YAML dataset file.
func LoadDataset(path string) (Dataset, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from configuration
	if err != nil {
		return Dataset{}, fmt.Errorf("failed to read dataset %s: %w", path, err)
	}
	return ParseDataset(data, time.Now())
}
