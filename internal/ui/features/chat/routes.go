// Package chat provides the assistant page: an append-only conversation
// with suggestions and a typing indicator.
package chat

import (
	"github.com/go-chi/chi/v5"

	"github.com/leapstack-labs/datapulse/internal/ui/features/common"
	"github.com/leapstack-labs/datapulse/internal/ui/workspace"
)

// SetupRoutes configures routes for the chat feature and returns the
// per-session state store so the server can sweep it.
func SetupRoutes(router chi.Router, deps common.Deps) (workspace.Sweeper, error) {
	handlers := NewHandlers(deps)

	router.Get("/chat", handlers.ChatPage)
	router.Post("/chat/send", handlers.Send)

	return handlers.logs, nil
}
