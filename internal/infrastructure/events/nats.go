package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// NATSConfig holds connection settings for the NATS publisher
type NATSConfig struct {
	URL            string
	ConnectTimeout time.Duration
	Name           string
}

// conn is the part of *nats.Conn the publisher uses
type conn interface {
	Publish(subject string, data []byte) error
	Close()
}

// NATSPublisher publishes JSON-encoded domain events to NATS subjects
type NATSPublisher struct {
	nc     conn
	logger *zap.Logger
}

// NewNATSPublisher connects to NATS and returns a publisher
func NewNATSPublisher(cfg NATSConfig, logger *zap.Logger) (*NATSPublisher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	opts := []nats.Option{
		nats.Name(cfg.Name),
		nats.Timeout(cfg.ConnectTimeout),
		nats.ErrorHandler(func(nc *nats.Conn, sub *nats.Subscription, err error) {
			logger.Error("NATS error", zap.Error(err))
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			logger.Info("NATS connection closed")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("NATS reconnected", zap.String("url", nc.ConnectedUrl()))
		}),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			logger.Warn("NATS disconnected", zap.Error(err))
		}),
	}

	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	logger.Info("connected to NATS", zap.String("url", nc.ConnectedUrl()))

	return &NATSPublisher{nc: nc, logger: logger}, nil
}

// Publish marshals payload to JSON and publishes it on subject
func (p *NATSPublisher) Publish(ctx context.Context, subject string, payload interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload for %s: %w", subject, err)
	}

	if err := p.nc.Publish(subject, data); err != nil {
		p.logger.Error("failed to publish NATS message", zap.String("subject", subject), zap.Error(err))
		return fmt.Errorf("failed to publish NATS message for %s: %w", subject, err)
	}

	p.logger.Debug("published NATS message", zap.String("subject", subject), zap.Int("bytes", len(data)))
	return nil
}

// Close closes the NATS connection
func (p *NATSPublisher) Close() {
	if p.nc != nil {
		p.nc.Close()
	}
}

// NoopPublisher drops every event. It is used when events are disabled.
type NoopPublisher struct{}

// Publish discards the event
func (NoopPublisher) Publish(ctx context.Context, subject string, payload interface{}) error {
	return nil
}

// Close does nothing
func (NoopPublisher) Close() {}
