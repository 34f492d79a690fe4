package core

// TableSummary is lightweight metadata about one table, without column detail.
type TableSummary struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Schema      string `json:"schema" yaml:"schema"`
	RowCount    int64  `json:"rowCount" yaml:"row_count"`
	ColumnCount int    `json:"columnCount" yaml:"column_count"`
	Description string `json:"description,omitempty" yaml:"description"`
	// HealthScore is an opaque 0-100 quality indicator; nil when unknown.
	HealthScore *int `json:"healthScore,omitempty" yaml:"health_score"`
}

// QualifiedName returns SCHEMA.NAME.
func (t TableSummary) QualifiedName() string {
	if t.Schema == "" {
		return t.Name
	}
	return t.Schema + "." + t.Name
}

// ColumnDetail describes a single column.
type ColumnDetail struct {
	Name         string `json:"name" yaml:"name"`
	Type         string `json:"type" yaml:"type"`
	IsNullable   bool   `json:"isNullable" yaml:"nullable"`
	IsPrimaryKey bool   `json:"isPrimaryKey" yaml:"primary_key"`
	IsForeignKey bool   `json:"isForeignKey" yaml:"foreign_key"`
	Description  string `json:"description,omitempty" yaml:"description"`
}

// TableDetail is a table summary plus its columns and optional preview rows.
type TableDetail struct {
	TableSummary
	Columns     []ColumnDetail   `json:"columns"`
	DataPreview []map[string]any `json:"dataPreview,omitempty"`
}

// HealthScore returns a pointer to a clamped 0-100 score.
func HealthScore(n int) *int {
	if n < 0 {
		n = 0
	}
	if n > 100 {
		n = 100
	}
	return &n
}
