package connections

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/datapulse/pkg/core"
)

func validDraft() core.ConnectionDraft {
	return core.ConnectionDraft{
		Name: "Analytics", Type: core.SourcePostgres, Host: "analytics.internal",
		Port: 5432, Username: "etl", Database: "warehouse", Password: "secret",
	}
}

func TestState_FormLifecycle(t *testing.T) {
	st := NewState()
	gen := st.Mount("")
	require.True(t, st.Loaded(gen, []core.DatabaseConnection{{ID: "1"}}, nil))

	st.Open()
	assert.Equal(t, FormEditing, st.Snapshot().Form)

	sub, err := st.Submit(validDraft())
	require.NoError(t, err)
	assert.Equal(t, FormSubmitting, st.Snapshot().Form)

	_, err = st.Submit(validDraft())
	assert.ErrorIs(t, err, ErrSubmitting)
	assert.False(t, st.Close(), "close is ignored while submitting")

	require.True(t, st.Finish(sub, core.DatabaseConnection{ID: "2"}, nil, ""))
	snap := st.Snapshot()
	assert.Equal(t, FormClosed, snap.Form)
	assert.Len(t, snap.Connections, 2)
}

func TestState_SubmitInvalidStaysEditing(t *testing.T) {
	st := NewState()
	st.Mount("")
	st.Open()

	_, err := st.Submit(core.ConnectionDraft{Type: core.SourcePostgres})
	var ve *core.ValidationError
	require.ErrorAs(t, err, &ve)

	snap := st.Snapshot()
	assert.Equal(t, FormEditing, snap.Form)
	assert.Equal(t, "Connection name is required", snap.FieldErrors["name"])
	assert.Contains(t, snap.FieldErrors, "port")
}

func TestState_FailureKeepsListAndForm(t *testing.T) {
	st := NewState()
	gen := st.Mount("")
	st.Loaded(gen, []core.DatabaseConnection{{ID: "1"}}, nil)
	st.Open()

	sub, err := st.Submit(validDraft())
	require.NoError(t, err)
	require.True(t, st.Finish(sub, core.DatabaseConnection{}, errors.New("nope"), "Failed to connect: nope"))

	snap := st.Snapshot()
	assert.Equal(t, FormEditing, snap.Form)
	assert.Equal(t, "Failed to connect: nope", snap.Alert)
	assert.Len(t, snap.Connections, 1)

	// Reopening clears the alert.
	st.Close()
	st.Open()
	assert.Empty(t, st.Snapshot().Alert)
}

func TestState_StaleResultsDropped(t *testing.T) {
	st := NewState()
	first := st.Mount("")
	st.Open()
	sub, err := st.Submit(validDraft())
	require.NoError(t, err)

	second := st.Mount("")
	assert.False(t, st.Loaded(first, []core.DatabaseConnection{{ID: "x"}}, nil))
	assert.False(t, st.Finish(sub, core.DatabaseConnection{ID: "y"}, nil, ""))

	snap := st.Snapshot()
	assert.True(t, snap.Loading)
	assert.Empty(t, snap.Connections)
	assert.Equal(t, FormClosed, snap.Form)
	assert.True(t, st.Loaded(second, nil, nil))
}

func TestState_SearchFiltersVisible(t *testing.T) {
	st := NewState()
	gen := st.Mount("")
	st.Loaded(gen, []core.DatabaseConnection{
		{ID: "1", Name: "Production Snowflake", Host: "sf-account.snowflakecomputing.com"},
		{ID: "2", Name: "Legacy Postgres", Host: "db.legacy.internal"},
	}, nil)

	st.Search("  LEGACY ")
	snap := st.Snapshot()
	require.Len(t, snap.Visible, 1)
	assert.Equal(t, "2", snap.Visible[0].ID)
	assert.Len(t, snap.Connections, 2)

	st.Search("snowflakecomputing")
	assert.Equal(t, "1", st.Snapshot().Visible[0].ID)
}

func TestPortValue(t *testing.T) {
	tests := []struct {
		in   string
		want PortValue
	}{
		{`"5432"`, "5432"},
		{`3306`, "3306"},
		{`null`, ""},
		{`""`, ""},
	}
	for _, tt := range tests {
		var p PortValue
		require.NoError(t, json.Unmarshal([]byte(tt.in), &p), tt.in)
		assert.Equal(t, tt.want, p)
	}

	var p PortValue
	assert.Error(t, json.Unmarshal([]byte(`true`), &p))
}

func TestFormSignals_Draft(t *testing.T) {
	var f FormSignals
	require.NoError(t, json.Unmarshal([]byte(`{"connName":"A","connType":"mysql","connHost":"h","connPort":"3306","connUsername":"u","connDatabase":"d","connPassword":"p","search":"x"}`), &f))

	d := f.Draft()
	assert.Equal(t, core.SourceMySQL, d.Type)
	assert.Equal(t, 3306, d.Port)
	assert.NoError(t, d.Validate())
}

func TestDefaultSignals(t *testing.T) {
	s := DefaultSignals()

	assert.Equal(t, "snowflake", s["connType"])
	assert.Equal(t, "443", s["connPort"])
	for _, key := range []string{"connName", "connHost", "connUsername", "connDatabase", "connPassword"} {
		assert.Empty(t, s[key], key)
	}
}
