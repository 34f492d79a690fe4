package chat

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/datapulse/internal/chatlog"
	"github.com/leapstack-labs/datapulse/internal/ui/features"
	"github.com/leapstack-labs/datapulse/pkg/core"
)

// =============================================================================
// Test Setup Helpers
// =============================================================================

func setupTestHandlers(t *testing.T) (*Handlers, *features.TestFixture) {
	t.Helper()
	fixture := features.SetupTestFixture(t)
	return NewHandlers(fixture.Deps()), fixture
}

func mount(t *testing.T, h *Handlers, f *features.TestFixture) *chatlog.Log {
	t.Helper()
	rec := f.Do(h.ChatPage, httptest.NewRequest(http.MethodGet, "/chat", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var l *chatlog.Log
	f.Do(func(w http.ResponseWriter, r *http.Request) {
		l, _ = h.log(w, r)
	}, httptest.NewRequest(http.MethodGet, "/", nil))
	return l
}

func send(t *testing.T, h *Handlers, f *features.TestFixture, message string) *httptest.ResponseRecorder {
	t.Helper()
	return f.Do(h.Send, features.SignalsRequest(t, "/chat/send", map[string]any{"message": message, "chatBusy": false}))
}

// =============================================================================
// Tests
// =============================================================================

func TestChatPage(t *testing.T) {
	h, f := setupTestHandlers(t)

	rec := f.Do(h.ChatPage, httptest.NewRequest(http.MethodGet, "/chat", nil))

	body := rec.Body.String()
	for _, want := range []string{
		"<title>AI Chat - DataPulse</title>",
		"Data Architect Assistant",
		chatlog.WelcomeMessage,
		"Ask a question about your data...",
		"AI can make mistakes.",
		"Analyze data quality for ORDERS table",
		"/chat/send",
	} {
		assert.Contains(t, body, want)
	}
}

func TestSend(t *testing.T) {
	h, f := setupTestHandlers(t)
	l := mount(t, h, f)

	rec := send(t, h, f, "  Where is PII stored?  ")

	body := rec.Body.String()
	assert.Contains(t, body, "Where is PII stored?")
	assert.Contains(t, body, "Assistant is typing", "first patch shows the typing indicator")
	assert.Contains(t, body, "I understood your query about")
	assert.Contains(t, body, "scrollIntoView")
	assert.GreaterOrEqual(t, strings.Count(body, "datastar-patch-elements"), 4)

	entries := l.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, core.RoleUser, entries[1].Role)
	assert.Equal(t, chatlog.StatusConfirmed, entries[1].Status)
	assert.Equal(t, core.RoleAssistant, entries[2].Role)
	assert.False(t, l.ShowSuggestions())
}

func TestSend_BlankIsNoop(t *testing.T) {
	h, f := setupTestHandlers(t)
	l := mount(t, h, f)

	for _, msg := range []string{"", "   ", "\n\t"} {
		rec := send(t, h, f, msg)
		assert.Equal(t, 0, strings.Count(rec.Body.String(), "event:"))
	}
	assert.Equal(t, 1, l.Len())
	assert.Equal(t, 0, f.Catalog.Calls("AskChat"))
}

func TestSend_Failure(t *testing.T) {
	h, f := setupTestHandlers(t)
	l := mount(t, h, f)
	f.Catalog.Fail("AskChat", assert.AnError)

	rec := send(t, h, f, "hello")

	assert.Contains(t, rec.Body.String(), chatlog.Apology)
	entries := l.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, chatlog.StatusFailed, entries[1].Status)
	assert.Equal(t, chatlog.Apology, entries[2].Content)
}

func TestSend_RejectedWhilePending(t *testing.T) {
	h, f := setupTestHandlers(t)
	l := mount(t, h, f)

	release := f.Catalog.Hold()
	defer release()

	done := make(chan struct{})
	go func() {
		send(t, h, f, "first")
		close(done)
	}()
	require.Eventually(t, l.Busy, time.Second, 5*time.Millisecond)

	rec := send(t, h, f, "second")
	assert.Equal(t, 0, strings.Count(rec.Body.String(), "event:"))

	release()
	<-done
	assert.Equal(t, 3, l.Len())
	assert.Equal(t, 1, f.Catalog.Calls("AskChat"))
}

func TestSend_ReplyAfterRemountIgnored(t *testing.T) {
	h, f := setupTestHandlers(t)
	l := mount(t, h, f)

	release := f.Catalog.Hold()
	done := make(chan *httptest.ResponseRecorder, 1)
	go func() {
		done <- send(t, h, f, "first")
	}()
	require.Eventually(t, l.Busy, time.Second, 5*time.Millisecond)

	mount(t, h, f)
	release()
	rec := <-done

	assert.NotContains(t, rec.Body.String(), "I understood your query")
	entries := l.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "welcome", entries[0].ID)
	assert.True(t, l.ShowSuggestions())
}
