package docs

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/datapulse/pkg/core"
)

func testDetail() core.TableDetail {
	return core.TableDetail{
		TableSummary: core.TableSummary{
			ID: "t1", Name: "CUSTOMERS", Schema: "PUBLIC", RowCount: 15420, ColumnCount: 12,
			Description: "Contains detailed customer profiles including PII.",
			HealthScore: core.HealthScore(98),
		},
		Columns: []core.ColumnDetail{
			{Name: "ID", Type: "VARCHAR(36)", IsPrimaryKey: true, Description: "Unique identifier"},
			{Name: "ACCOUNT_ID", Type: "VARCHAR(36)", IsForeignKey: true, IsNullable: true},
		},
	}
}

func TestAttributes(t *testing.T) {
	tests := []struct {
		name string
		col  core.ColumnDetail
		want []string
	}{
		{"none", core.ColumnDetail{}, nil},
		{"pk", core.ColumnDetail{IsPrimaryKey: true}, []string{"PK"}},
		{"fk nullable", core.ColumnDetail{IsForeignKey: true, IsNullable: true}, []string{"FK", "NULL"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Attributes(tt.col))
		})
	}
}

func TestDescription(t *testing.T) {
	assert.Equal(t, "No description available.", Description(core.TableSummary{Description: "  "}))
	assert.Equal(t, "x", Description(core.TableSummary{Description: "x"}))
}

func TestPage(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Page(testDetail()).Render(context.Background(), &buf))

	body := buf.String()
	assert.Contains(t, body, "<h1>PUBLIC.CUSTOMERS</h1>")
	assert.Contains(t, body, "central repository for entity information")
	assert.Contains(t, body, "Data Engineering Team")
	assert.Contains(t, body, "98%")
	assert.Contains(t, body, "<th>Column Name</th>")
	assert.Contains(t, body, "badge-outline\">FK")
}

func TestMarkdown(t *testing.T) {
	md, err := Markdown(context.Background(), testDetail())
	require.NoError(t, err)

	assert.Contains(t, md, "# PUBLIC.CUSTOMERS")
	assert.Contains(t, md, "Contains detailed customer profiles including PII.")
	assert.Contains(t, md, "**Owner:** Data Engineering Team")
	assert.Contains(t, md, `ACCOUNT\_ID`, "underscores are escaped in Markdown")
	assert.Contains(t, md, "| Column Name")
	assert.NotContains(t, md, "<table")
}

func TestMarkdown_AttributesCell(t *testing.T) {
	d := testDetail()
	d.Columns = []core.ColumnDetail{
		{Name: "C", Type: "INT", IsPrimaryKey: true, IsForeignKey: true, IsNullable: true},
	}

	md, err := Markdown(context.Background(), d)
	require.NoError(t, err)

	assert.Contains(t, md, "PK, FK, NULL")
	assert.NotContains(t, md, "PKFK")
}
