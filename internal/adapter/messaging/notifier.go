package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

// MessageWriter is the subset of *kafka.Writer the notifier needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// NotificationRequest is the record consumed by the delivery pipeline.
type NotificationRequest struct {
	ID          uuid.UUID         `json:"id"`
	AccountID   uuid.UUID         `json:"user_id"`
	Template    string            `json:"template"`
	Data        map[string]string `json:"data"`
	RequestedAt time.Time         `json:"requested_at"`
}

// Notifier implements ports.Notifier by producing to a Kafka topic.
// Messages are keyed by account id so one account's notifications stay ordered.
type Notifier struct {
	w   MessageWriter
	log zerolog.Logger
}

func NewNotifier(w MessageWriter, log zerolog.Logger) *Notifier {
	return &Notifier{
		w:   w,
		log: log.With().Str("component", "notifier").Logger(),
	}
}

func (n *Notifier) Notify(ctx context.Context, accountID uuid.UUID, template string, data map[string]string) error {
	req := NotificationRequest{
		ID:          uuid.New(),
		AccountID:   accountID,
		Template:    template,
		Data:        data,
		RequestedAt: time.Now().UTC(),
	}
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(accountID.String()),
		Value: body,
		Headers: []kafka.Header{
			{Key: "template", Value: []byte(template)},
		},
	}
	if err := n.w.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write notification %s: %w", template, err)
	}

	n.log.Debug().
		Str("account_id", accountID.String()).
		Str("template", template).
		Msg("notification queued")
	return nil
}

// NewWriter builds the producer for the notifications topic. Writes are async:
// delivery failures are reported through the writer's Completion hook only.
func NewWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 50 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
		Async:        true,
		Compression:  kafka.Zstd,
	}
}
