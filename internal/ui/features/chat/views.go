package chat

import (
	"strconv"
	"time"

	"github.com/a-h/templ"

	"github.com/leapstack-labs/datapulse/internal/chatlog"
	"github.com/leapstack-labs/datapulse/internal/ui/components"
	"github.com/leapstack-labs/datapulse/pkg/core"
)

// Element ids patched by the handlers.
const (
	LogID         = "chat-log"
	SuggestionsID = "chat-suggestions"
)

// PageView renders the chat page for a fresh conversation.
func PageView(l *chatlog.Log) templ.Component {
	return components.Fragment(func(h *components.HTML) {
		h.Raw(`<div class="page chat" data-signals="{message: '', chatBusy: false}">`)
		h.Raw(`<header class="chat-header"><div class="avatar bot">AI</div><div><h2>Data Architect Assistant</h2><p class="muted small">Powered by Gemini</p></div></header>`)
		h.Render(LogView(l))
		h.Render(SuggestionsView(l))
		h.Raw(`<form class="composer" data-on:submit__prevent="@post(&#39;/chat/send&#39;)">`)
		h.Raw(`<input id="chat-input" class="input" type="text" autocomplete="off" placeholder="Ask a question about your data..." data-bind:message>`)
		h.Render(components.Button(components.ButtonProps{
			Label: "Send",
			Type:  "submit",
			Attrs: []components.Attr{{Name: "data-attr:disabled", Value: "$message.trim() === '' || $chatBusy"}},
		}))
		h.Raw(`</form><p class="muted small center">AI can make mistakes. Verify important information using the Schema Explorer.</p></div>`)
	})
}

// LogView renders the conversation, oldest first, with the typing indicator
// while a reply is pending.
func LogView(l *chatlog.Log) templ.Component {
	return components.Fragment(func(h *components.HTML) {
		h.Rawf(`<div id="%s" class="chat-log" aria-live="polite">`, LogID)
		for _, e := range l.Entries() {
			entry(h, e)
		}
		if l.Busy() {
			h.Raw(`<div class="message assistant typing" aria-label="Assistant is typing"><span></span><span></span><span></span></div>`)
		}
		h.Raw(`<div id="chat-end"></div></div>`)
	})
}

func entry(h *components.HTML, e chatlog.Entry) {
	role := "assistant"
	if e.Role == core.RoleUser {
		role = "user"
	}
	h.Rawf(`<div class="message %s %s" id="msg-%s"><p>%s</p><p class="meta">%s`,
		role, e.Status, components.Esc(e.ID), components.Esc(e.Content), e.Time().Format(time.Kitchen))
	switch e.Status {
	case chatlog.StatusPending:
		if e.Role == core.RoleUser {
			h.Raw(` &middot; Sending...`)
		}
	case chatlog.StatusFailed:
		h.Raw(` &middot; Failed to send`)
	}
	h.Raw(`</p></div>`)
}

// SuggestionsView renders the suggestion chips while the conversation holds
// only the welcome message. Clicking one fills the input.
func SuggestionsView(l *chatlog.Log) templ.Component {
	return components.Fragment(func(h *components.HTML) {
		if !l.ShowSuggestions() {
			h.Rawf(`<div id="%s"></div>`, SuggestionsID)
			return
		}
		h.Rawf(`<div id="%s" class="suggestions">`, SuggestionsID)
		for _, s := range chatlog.Suggestions {
			h.Render(components.Button(components.ButtonProps{
				Label:   s,
				Variant: components.ButtonOutline,
				Size:    components.SizeSm,
				Attrs:   []components.Attr{components.On("click", "$message = "+strconv.Quote(s))},
			}))
		}
		h.Raw(`</div>`)
	})
}
