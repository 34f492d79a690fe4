package core

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// SourceType identifies the kind of database a connection points at.
type SourceType string

// Supported source types.
const (
	SourcePostgres  SourceType = "postgres"
	SourceSnowflake SourceType = "snowflake"
	SourceMySQL     SourceType = "mysql"
	SourceSQLServer SourceType = "sqlserver"
)

// SourceTypes lists the supported source types in form order.
var SourceTypes = []SourceType{SourceSnowflake, SourcePostgres, SourceMySQL, SourceSQLServer}

// ParseSourceType converts a string to a SourceType.
func ParseSourceType(s string) (SourceType, error) {
	st := SourceType(strings.ToLower(strings.TrimSpace(s)))
	switch st {
	case SourcePostgres, SourceSnowflake, SourceMySQL, SourceSQLServer:
		return st, nil
	default:
		return "", fmt.Errorf("unsupported source type: %q", s)
	}
}

// Label returns the human-readable name of the source type.
func (t SourceType) Label() string {
	switch t {
	case SourcePostgres:
		return "PostgreSQL"
	case SourceSnowflake:
		return "Snowflake"
	case SourceMySQL:
		return "MySQL"
	case SourceSQLServer:
		return "SQL Server"
	default:
		return string(t)
	}
}

// DefaultPort returns the conventional port for the source type.
func (t SourceType) DefaultPort() int {
	switch t {
	case SourcePostgres:
		return 5432
	case SourceSnowflake:
		return 443
	case SourceMySQL:
		return 3306
	case SourceSQLServer:
		return 1433
	default:
		return 0
	}
}

// ConnectionStatus is the outcome of the last connection attempt.
// It is only ever assigned by a Catalog, never by a client.
type ConnectionStatus string

// Connection statuses.
const (
	StatusConnected    ConnectionStatus = "connected"
	StatusDisconnected ConnectionStatus = "disconnected"
	StatusError        ConnectionStatus = "error"
)

// DatabaseConnection is a configured pointer to an external database.
type DatabaseConnection struct {
	ID        string           `json:"id" yaml:"id"`
	Name      string           `json:"name" yaml:"name"`
	Type      SourceType       `json:"type" yaml:"type"`
	Host      string           `json:"host" yaml:"host"`
	Port      int              `json:"port" yaml:"port"`
	Username  string           `json:"username" yaml:"username"`
	Database  string           `json:"database" yaml:"database"`
	CreatedAt time.Time        `json:"createdAt" yaml:"created_at"`
	Status    ConnectionStatus `json:"status" yaml:"status"`
}

// ConnectionDraft is the add-connection form payload.
// Password is used for the connection attempt only and is never stored or returned.
type ConnectionDraft struct {
	Name     string     `json:"name"`
	Type     SourceType `json:"type"`
	Host     string     `json:"host"`
	Port     int        `json:"port"`
	Username string     `json:"username"`
	Database string     `json:"database"`
	Password string     `json:"password"`
}

// Normalize trims surrounding whitespace from every text field.
func (d ConnectionDraft) Normalize() ConnectionDraft {
	d.Name = strings.TrimSpace(d.Name)
	d.Type = SourceType(strings.ToLower(strings.TrimSpace(string(d.Type))))
	d.Host = strings.TrimSpace(d.Host)
	d.Username = strings.TrimSpace(d.Username)
	d.Database = strings.TrimSpace(d.Database)
	return d
}

// Validate checks that every field is present and well formed.
// It returns a *ValidationError naming each offending field.
func (d ConnectionDraft) Validate() error {
	d = d.Normalize()
	fields := make(map[string]string)

	if d.Name == "" {
		fields["name"] = "Connection name is required"
	}
	if _, err := ParseSourceType(string(d.Type)); err != nil {
		fields["type"] = "Choose a supported database type"
	}
	if d.Host == "" {
		fields["host"] = "Host is required"
	}
	if d.Port < 1 || d.Port > 65535 {
		fields["port"] = "Port must be between 1 and 65535"
	}
	if d.Username == "" {
		fields["username"] = "Username is required"
	}
	if d.Database == "" {
		fields["database"] = "Database name is required"
	}
	if d.Password == "" {
		fields["password"] = "Password is required"
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// NewConnection builds the connection record for an accepted draft.
func (d ConnectionDraft) NewConnection(id string, now time.Time) DatabaseConnection {
	d = d.Normalize()
	return DatabaseConnection{
		ID:        id,
		Name:      d.Name,
		Type:      d.Type,
		Host:      d.Host,
		Port:      d.Port,
		Username:  d.Username,
		Database:  d.Database,
		CreatedAt: now.UTC(),
		Status:    StatusConnected,
	}
}

// ParsePort coerces form text to a port number.
// Blank or non-numeric input yields 0, which Validate rejects.
func ParsePort(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}
