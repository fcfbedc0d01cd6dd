package nats

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/taskweave/taskweave/internal/config"
)

// Client wraps a NATS connection with a JetStream context. Event
// publishing is optional infrastructure: the tracker runs fine without it.
type Client struct {
	conn *nats.Conn
	js   jetstream.JetStream
}

// NewClient dials NATS and makes sure the events stream exists.
func NewClient(ctx context.Context, cfg config.NATSConfig) (*Client, error) {
	nc, err := nats.Connect(cfg.URL,
		nats.Name("taskweave-api"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			slog.Warn("nats disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			slog.Info("nats reconnected", "url", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("dialing nats: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("opening jetstream context: %w", err)
	}

	if _, err := js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:      StreamEvents,
		Subjects:  []string{"taskweave.events.>"},
		Retention: jetstream.LimitsPolicy,
		MaxAge:    7 * 24 * time.Hour,
	}); err != nil {
		nc.Close()
		return nil, fmt.Errorf("ensuring stream %s: %w", StreamEvents, err)
	}

	slog.Info("nats ready", "url", cfg.URL, "stream", StreamEvents)
	return &Client{conn: nc, js: js}, nil
}

// Healthy reports whether the connection is currently up.
func (c *Client) Healthy() bool {
	return c.conn.IsConnected()
}

// Close drains in-flight messages before closing the connection.
func (c *Client) Close() {
	if err := c.conn.Drain(); err != nil {
		slog.Warn("draining nats connection", "error", err)
	}
}
