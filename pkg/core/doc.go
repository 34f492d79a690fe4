// Package core defines the shared language of DataPulse.
//
// This package contains:
//   - Domain records (DatabaseConnection, TableSummary, ChatMessage, etc.)
//   - The Catalog interface every data backend implements
//   - Typed errors shared by the backends, the JSON API and the UI
//
// The Golden Rule: pkg/core imports ONLY stdlib.
// All other packages depend on core, not the reverse.
package core
