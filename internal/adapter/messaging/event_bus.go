package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"settlement-core/internal/core/domain"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/zerolog"
)

// Publisher is the subset of jetstream.JetStream the bus needs.
type Publisher interface {
	Publish(ctx context.Context, subject string, data []byte, opts ...jetstream.PublishOpt) (*jetstream.PubAck, error)
}

// EventBus implements ports.EventBus on NATS JetStream.
//
// Subjects:
//
//	{prefix}.account.{account_id}.{EVENT}
//	{prefix}.broadcast.{EVENT}
//
// The envelope id doubles as the JetStream Msg-Id, so a retried publish inside
// the stream's duplicate window is stored once.
type EventBus struct {
	js     Publisher
	prefix string
	log    zerolog.Logger
}

func NewEventBus(js Publisher, prefix string, log zerolog.Logger) *EventBus {
	return &EventBus{
		js:     js,
		prefix: strings.TrimSuffix(prefix, "."),
		log:    log.With().Str("component", "event_bus").Logger(),
	}
}

// Publish sends one event to the given scope.
func (b *EventBus) Publish(ctx context.Context, scope domain.Scope, name domain.EventName, payload any) error {
	evt := domain.Event{
		ID:         uuid.New(),
		Name:       name,
		Payload:    payload,
		OccurredAt: time.Now().UTC(),
	}
	if !scope.IsBroadcast() {
		id := scope.AccountID.String()
		evt.AccountID = &id
	}

	data, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal event %s: %w", name, err)
	}

	subject := b.Subject(scope, name)
	if _, err := b.js.Publish(ctx, subject, data, jetstream.WithMsgID(evt.ID.String())); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}

	b.log.Debug().
		Str("subject", subject).
		Str("event_id", evt.ID.String()).
		Msg("event published")
	return nil
}

// Subject returns the subject an event is published on.
func (b *EventBus) Subject(scope domain.Scope, name domain.EventName) string {
	if scope.IsBroadcast() {
		return fmt.Sprintf("%s.broadcast.%s", b.prefix, name)
	}
	return fmt.Sprintf("%s.account.%s.%s", b.prefix, scope.AccountID, name)
}

// EnsureStream creates or updates the stream that captures every event subject.
func EnsureStream(ctx context.Context, js jetstream.JetStream, name, prefix string) error {
	_, err := js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:       name,
		Subjects:   []string{strings.TrimSuffix(prefix, ".") + ".>"},
		Storage:    jetstream.FileStorage,
		Retention:  jetstream.LimitsPolicy,
		MaxAge:     72 * time.Hour,
		Duplicates: 2 * time.Minute,
		Replicas:   1,
	})
	if err != nil {
		return fmt.Errorf("create stream %s: %w", name, err)
	}
	return nil
}
