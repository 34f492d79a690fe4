package events

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

// natsConn is the subset of *nats.Conn the publisher uses.
type natsConn interface {
	Publish(subject string, data []byte) error
	Close()
	IsConnected() bool
}

// NATSPublisher publishes events to NATS.
type NATSPublisher struct {
	conn   natsConn
	logger *slog.Logger
}

// NewNATSPublisher connects to the NATS server at url. The connection retries
// in the background, so an unavailable server does not fail startup.
func NewNATSPublisher(url string, logger *slog.Logger) (*NATSPublisher, error) {
	conn, err := nats.Connect(url,
		nats.Name("datapulse"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(10),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("disconnected from NATS", slog.String("error", err.Error()))
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info("reconnected to NATS", slog.String("url", c.ConnectedUrl()))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS at %s: %w", url, err)
	}

	logger.Info("event bus configured", slog.String("url", url))
	return &NATSPublisher{conn: conn, logger: logger}, nil
}

// Publish implements Publisher.
func (p *NATSPublisher) Publish(_ context.Context, e Event) error {
	data, err := e.Encode()
	if err != nil {
		return err
	}

	if err := p.conn.Publish(e.Subject(), data); err != nil {
		return fmt.Errorf("failed to publish %s: %w", e.Subject(), err)
	}

	p.logger.Debug("published event", slog.String("subject", e.Subject()))
	return nil
}

// Close implements Publisher.
func (p *NATSPublisher) Close() error {
	if p.conn != nil {
		p.conn.Close()
		p.logger.Debug("disconnected from NATS")
	}
	return nil
}

// IsConnected reports whether the underlying connection is up.
func (p *NATSPublisher) IsConnected() bool {
	return p.conn != nil && p.conn.IsConnected()
}

// Open returns a NATS publisher when url is set and a Noop otherwise.
func Open(url string, logger *slog.Logger) (Publisher, error) {
	if url == "" {
		return Noop{}, nil
	}
	return NewNATSPublisher(url, logger)
}
