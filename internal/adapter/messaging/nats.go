package messaging

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/zerolog"
)

// Connect dials NATS with unlimited reconnects and returns a JetStream handle.
func Connect(url string, log zerolog.Logger) (*nats.Conn, jetstream.JetStream, error) {
	nc, err := nats.Connect(url,
		nats.Name("settlement-core"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Warn().Err(err).Msg("nats disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("nats reconnected")
		}),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, nil, fmt.Errorf("jetstream: %w", err)
	}
	return nc, js, nil
}

// StatusReporter is the part of *nats.Conn the health check reads.
type StatusReporter interface {
	Status() nats.Status
}

// HealthCheck implements ports.HealthChecker for the NATS connection.
type HealthCheck struct {
	conn StatusReporter
}

func NewHealthCheck(conn StatusReporter) *HealthCheck {
	return &HealthCheck{conn: conn}
}

func (h *HealthCheck) Ping(_ context.Context) error {
	if s := h.conn.Status(); s != nats.CONNECTED {
		return fmt.Errorf("nats connection %s", s)
	}
	return nil
}

func (h *HealthCheck) Name() string {
	return "nats"
}
