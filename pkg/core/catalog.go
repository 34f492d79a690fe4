package core

import "context"

// Catalog is the data-access boundary behind every page and command.
// Implementations may fail on any call; callers treat failures as recoverable.
type Catalog interface {
	// GetConnections lists the configured connections.
	GetConnections(ctx context.Context) ([]DatabaseConnection, error)

	// ConnectDatabase attempts a connection with the draft and returns the
	// resulting record. It fails with *ValidationError for a bad draft and
	// *ConnectionError when the attempt does not succeed.
	ConnectDatabase(ctx context.Context, draft ConnectionDraft) (DatabaseConnection, error)

	// GetTables lists table summaries.
	GetTables(ctx context.Context) ([]TableSummary, error)

	// GetTableDetail returns one table with its columns. Unknown ids yield ErrNotFound.
	GetTableDetail(ctx context.Context, id string) (TableDetail, error)

	// GetDashboardStats returns aggregate counters.
	GetDashboardStats(ctx context.Context) (DashboardStats, error)

	// AskChat sends a user question and returns the assistant reply.
	AskChat(ctx context.Context, text string) (ChatMessage, error)
}
