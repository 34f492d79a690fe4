// Package apiclient implements core.Catalog against a remote DataPulse JSON API.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/leapstack-labs/datapulse/internal/api"
	"github.com/leapstack-labs/datapulse/pkg/core"
)

// DefaultTimeout bounds a single request.
const DefaultTimeout = 30 * time.Second

// Client is a remote catalog.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	logger  *slog.Logger
}

var _ core.Catalog = (*Client)(nil)

// New creates a client for the API rooted at baseURL, for example
// http://localhost:8765/api/v1. A nil httpClient gets DefaultTimeout.
func New(baseURL string, httpClient *http.Client, logger *slog.Logger) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid base URL %q: scheme must be http or https", baseURL)
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	return &Client{baseURL: u, http: httpClient, logger: logger}, nil
}

// GetConnections implements core.Catalog.
func (c *Client) GetConnections(ctx context.Context) ([]core.DatabaseConnection, error) {
	var out []core.DatabaseConnection
	err := c.do(ctx, http.MethodGet, nil, &out, "connections")
	return out, err
}

// ConnectDatabase implements core.Catalog.
func (c *Client) ConnectDatabase(ctx context.Context, draft core.ConnectionDraft) (core.DatabaseConnection, error) {
	var out core.DatabaseConnection
	err := c.do(ctx, http.MethodPost, draft, &out, "connections")
	return out, err
}

// GetTables implements core.Catalog.
func (c *Client) GetTables(ctx context.Context) ([]core.TableSummary, error) {
	var out []core.TableSummary
	err := c.do(ctx, http.MethodGet, nil, &out, "tables")
	return out, err
}

// GetTableDetail implements core.Catalog.
func (c *Client) GetTableDetail(ctx context.Context, id string) (core.TableDetail, error) {
	var out core.TableDetail
	err := c.do(ctx, http.MethodGet, nil, &out, "tables", id)
	return out, err
}

// GetDashboardStats implements core.Catalog.
func (c *Client) GetDashboardStats(ctx context.Context) (core.DashboardStats, error) {
	var out core.DashboardStats
	err := c.do(ctx, http.MethodGet, nil, &out, "stats")
	return out, err
}

// AskChat implements core.Catalog.
func (c *Client) AskChat(ctx context.Context, text string) (core.ChatMessage, error) {
	var out core.ChatMessage
	err := c.do(ctx, http.MethodPost, api.ChatRequest{Message: text}, &out, "chat")
	return out, err
}

func (c *Client) do(ctx context.Context, method string, in, out any, elem ...string) error {
	u := c.baseURL.JoinPath(elem...)
	path := "/" + strings.Join(elem, "/")

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	c.logger.Debug("api request",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", resp.StatusCode),
		slog.Duration("elapsed", time.Since(start)))

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", path, err)
	}
	return nil
}

// decodeError turns an error response back into the typed catalog error.
func decodeError(resp *http.Response) error {
	var er api.ErrorResponse
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err := json.Unmarshal(data, &er); err != nil || er.Error.Code == "" {
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	body := er.Error
	switch body.Code {
	case core.CodeInvalidDraft:
		return &core.ValidationError{Fields: body.Fields}
	case core.CodeNotFound:
		return fmt.Errorf("%s: %w", body.Message, core.ErrNotFound)
	}
	for _, kind := range core.ConnectionErrorKinds {
		if body.Code == string(kind) {
			return &core.ConnectionError{Kind: kind, Err: &RemoteError{Status: resp.StatusCode, Body: body}}
		}
	}
	return &RemoteError{Status: resp.StatusCode, Body: body}
}

// RemoteError is an error reported by the server.
type RemoteError struct {
	Status int
	Body   api.ErrorBody
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("remote error %d (%s): %s", e.Status, e.Body.Code, e.Body.Message)
}
