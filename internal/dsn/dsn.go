// Package dsn builds driver connection strings for connection drafts.
//
// Nothing here opens a connection: the drivers are used only for their DSN
// formatting and parsing so a malformed draft is rejected before the
// connection attempt.
package dsn

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5"
	"github.com/leapstack-labs/datapulse/pkg/core"
	"github.com/microsoft/go-mssqldb/msdsn"
)

// DefaultConnectTimeout is embedded in every DSN.
const DefaultConnectTimeout = 30 * time.Second

const redactedPassword = "xxxxx"

// Params are the connection fields a DSN is built from.
type Params struct {
	Type     core.SourceType
	Host     string
	Port     int
	Username string
	Password string
	Database string
	Timeout  time.Duration
}

// FromDraft returns the params for a connection draft.
func FromDraft(d core.ConnectionDraft) Params {
	d = d.Normalize()
	return Params{
		Type:     d.Type,
		Host:     d.Host,
		Port:     d.Port,
		Username: d.Username,
		Password: d.Password,
		Database: d.Database,
	}
}

// FromConnection returns the params for a stored connection. Stored
// connections carry no password.
func FromConnection(c core.DatabaseConnection) Params {
	return Params{
		Type:     c.Type,
		Host:     c.Host,
		Port:     c.Port,
		Username: c.Username,
		Database: c.Database,
	}
}

// DSN is a built connection string.
type DSN struct {
	Driver   string
	value    string
	redacted string
}

// String returns the full connection string, including the password.
func (d DSN) String() string { return d.value }

// Redacted returns the connection string with the password masked.
func (d DSN) Redacted() string { return d.redacted }

// Build formats and validates the DSN for p.Type.
func Build(p Params) (DSN, error) {
	if p.Timeout <= 0 {
		p.Timeout = DefaultConnectTimeout
	}
	if strings.TrimSpace(p.Host) == "" {
		return DSN{}, fmt.Errorf("host is required")
	}
	if p.Port < 1 || p.Port > 65535 {
		return DSN{}, fmt.Errorf("invalid port %d", p.Port)
	}

	switch p.Type {
	case core.SourceMySQL:
		return buildMySQL(p)
	case core.SourcePostgres:
		return buildPostgres(p)
	case core.SourceSQLServer:
		return buildSQLServer(p)
	case core.SourceSnowflake:
		return buildSnowflake(p)
	default:
		return DSN{}, fmt.Errorf("unsupported source type: %q", p.Type)
	}
}

func buildMySQL(p Params) (DSN, error) {
	format := func(password string) string {
		cfg := mysql.NewConfig()
		cfg.User = p.Username
		cfg.Passwd = password
		cfg.Net = "tcp"
		cfg.Addr = net.JoinHostPort(p.Host, strconv.Itoa(p.Port))
		cfg.DBName = p.Database
		cfg.Timeout = p.Timeout
		cfg.ParseTime = true
		cfg.Params = map[string]string{"charset": "utf8mb4"}
		return cfg.FormatDSN()
	}

	value := format(p.Password)
	if _, err := mysql.ParseDSN(value); err != nil {
		return DSN{}, fmt.Errorf("invalid mysql dsn: %w", err)
	}

	return DSN{Driver: "mysql", value: value, redacted: format(maskedPassword(p.Password))}, nil
}

func buildPostgres(p Params) (DSN, error) {
	dbname := p.Database
	if dbname == "" {
		dbname = "postgres"
	}

	u := &url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(p.Host, strconv.Itoa(p.Port)),
		Path:   "/" + dbname,
		User:   userInfo(p.Username, p.Password),
	}
	q := url.Values{}
	q.Set("connect_timeout", strconv.Itoa(int(p.Timeout.Seconds())))
	u.RawQuery = q.Encode()

	if _, err := pgx.ParseConfig(u.String()); err != nil {
		return DSN{}, fmt.Errorf("invalid postgres dsn: %w", err)
	}

	return DSN{Driver: "pgx", value: u.String(), redacted: u.Redacted()}, nil
}

func buildSQLServer(p Params) (DSN, error) {
	dbname := p.Database
	if dbname == "" {
		dbname = "master"
	}

	u := &url.URL{
		Scheme: "sqlserver",
		Host:   net.JoinHostPort(p.Host, strconv.Itoa(p.Port)),
		User:   userInfo(p.Username, p.Password),
	}
	q := url.Values{}
	q.Set("database", dbname)
	q.Set("connection timeout", strconv.Itoa(int(p.Timeout.Seconds())))
	u.RawQuery = q.Encode()

	if _, err := msdsn.Parse(u.String()); err != nil {
		return DSN{}, fmt.Errorf("invalid sqlserver dsn: %w", err)
	}

	return DSN{Driver: "sqlserver", value: u.String(), redacted: u.Redacted()}, nil
}

// buildSnowflake formats the gosnowflake host form:
// user:password@host:port/database?account=<account>.
func buildSnowflake(p Params) (DSN, error) {
	account := snowflakeAccount(p.Host)
	if account == "" {
		return DSN{}, fmt.Errorf("cannot derive snowflake account from host %q", p.Host)
	}

	q := url.Values{}
	q.Set("account", account)
	q.Set("loginTimeout", strconv.Itoa(int(p.Timeout.Seconds())))

	format := func(password string) string {
		var b strings.Builder
		if ui := userInfo(p.Username, password); ui != nil {
			b.WriteString(ui.String())
			b.WriteByte('@')
		}
		b.WriteString(net.JoinHostPort(p.Host, strconv.Itoa(p.Port)))
		if p.Database != "" {
			b.WriteByte('/')
			b.WriteString(url.PathEscape(p.Database))
		}
		b.WriteByte('?')
		b.WriteString(q.Encode())
		return b.String()
	}

	return DSN{Driver: "snowflake", value: format(p.Password), redacted: format(maskedPassword(p.Password))}, nil
}

// snowflakeAccount extracts the account locator from a
// <account>.snowflakecomputing.com host. Bare hosts are treated as the account.
func snowflakeAccount(host string) string {
	host = strings.ToLower(strings.TrimSpace(host))
	if i := strings.Index(host, ".snowflakecomputing.com"); i >= 0 {
		host = host[:i]
	}
	if host == "" || strings.ContainsAny(host, "/:@ ") {
		return ""
	}
	return host
}

func userInfo(user, password string) *url.Userinfo {
	switch {
	case user == "":
		return nil
	case password == "":
		return url.User(user)
	default:
		return url.UserPassword(user, password)
	}
}

func maskedPassword(password string) string {
	if password == "" {
		return ""
	}
	return redactedPassword
}
