package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBufferRenderer(mode Mode) (*Renderer, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	return NewRenderer(&out, &errOut, mode), &out, &errOut
}

func TestRenderer_EffectiveMode(t *testing.T) {
	tests := []struct {
		mode Mode
		want Mode
	}{
		{"", ModeMarkdown},
		{ModeAuto, ModeMarkdown},
		{ModeText, ModeText},
		{ModeMarkdown, ModeMarkdown},
		{ModeJSON, ModeJSON},
	}

	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			r, _, _ := newBufferRenderer(tt.mode)
			assert.False(t, r.IsTTY())
			assert.Equal(t, tt.want, r.EffectiveMode())
		})
	}
}

func TestRenderer_Messages(t *testing.T) {
	r, out, errOut := newBufferRenderer(ModeText)

	r.Success("saved")
	r.Muted("details")
	r.Error("broken")
	r.Warning("careful")

	assert.Equal(t, "✓ saved\ndetails\n", out.String())
	assert.Equal(t, "✗ broken\n! careful\n", errOut.String())
}

func TestRenderer_HeaderMarkdown(t *testing.T) {
	r, out, _ := newBufferRenderer(ModeMarkdown)

	r.Header(1, "Connections")
	r.Header(2, "Columns")

	assert.Equal(t, "# Connections\n\n## Columns\n\n", out.String())
}

func TestRenderer_StatusLine(t *testing.T) {
	r, out, _ := newBufferRenderer(ModeMarkdown)

	r.StatusLine("Production DB", "connected", "db.prod.internal")

	assert.Equal(t, "Connected  Production DB  db.prod.internal\n", out.String())
}

func TestRenderer_TableText(t *testing.T) {
	r, out, _ := newBufferRenderer(ModeText)

	r.Table([]string{"Name", "Rows"}, [][]string{{"ORDERS", "2,500,000"}})

	s := out.String()
	assert.Contains(t, s, "NAME")
	assert.Contains(t, s, "ORDERS")
	assert.Contains(t, s, "2,500,000")
	assert.Contains(t, s, "┌")
}

func TestRenderer_TableMarkdown(t *testing.T) {
	r, out, _ := newBufferRenderer(ModeMarkdown)

	r.Table([]string{"Name", "Rows"}, [][]string{{"ORDERS", "2,500,000"}})

	s := out.String()
	assert.Contains(t, strings.ToLower(s), "| name | rows |")
	assert.Contains(t, s, "| --- | --- |")
	assert.Contains(t, s, "| ORDERS | 2,500,000 |")
}

func TestRenderer_TableEmpty(t *testing.T) {
	r, out, _ := newBufferRenderer(ModeText)
	r.Table([]string{"Name"}, nil)
	assert.Equal(t, "(0 rows)\n", out.String())
}

func TestRenderer_JSON(t *testing.T) {
	r, out, _ := newBufferRenderer(ModeJSON)

	require.NoError(t, r.JSON(map[string]int{"totalTables": 2}))
	assert.JSONEq(t, `{"totalTables": 2}`, out.String())
}

func TestRenderer_SpinnerIsNoopOffTerminal(t *testing.T) {
	r, out, errOut := newBufferRenderer(ModeText)

	s := r.NewSpinner("Thinking...")
	s.Start()
	s.Stop()

	assert.Empty(t, out.String())
	assert.Empty(t, errOut.String())
}

func TestFormatHelpers(t *testing.T) {
	assert.Equal(t, "# Title", FormatHeader(1, "Title"))
	assert.Equal(t, "### Deep", FormatHeader(3, "Deep"))
	assert.Equal(t, "# Zero", FormatHeader(0, "Zero"))
	assert.Equal(t, "- **Total Tables**: 2", FormatKeyValue("Total Tables", "2"))
	assert.Equal(t, "```sql\nselect 1\n```", FormatCodeBlock("sql", "select 1\n"))
}
