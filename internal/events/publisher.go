// Package events mirrors family domain events to Kafka when brokers are
// configured. The in-process task queue remains the delivery path for email
// and socket fan-out; the topic exists for external consumers.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type Event struct {
	Type     string    `json:"type"`
	FamilyID string    `json:"familyId"`
	ActorID  string    `json:"actorId"`
	Payload  any       `json:"payload,omitempty"`
	At       time.Time `json:"at"`
}

type Publisher struct {
	writer *kafka.Writer
	logger *zap.SugaredLogger
}

// NewPublisher returns nil when no brokers are configured; callers treat a
// nil publisher as disabled.
func NewPublisher(brokers []string, topic string, logger *zap.SugaredLogger) *Publisher {
	if len(brokers) == 0 {
		return nil
	}
	w := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    topic,
		Balancer: &kafka.LeastBytes{},
	}
	return &Publisher{writer: w, logger: logger}
}

// Publish is best effort: failures are logged and dropped.
func (p *Publisher) Publish(ctx context.Context, e Event) {
	if p == nil {
		return
	}
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}
	b, err := json.Marshal(e)
	if err != nil {
		return
	}
	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(e.FamilyID),
		Value: b,
		Time:  e.At,
	})
	if err != nil {
		p.logger.Warnw("kafka publish failed", "type", e.Type, "error", err)
	}
}

func (p *Publisher) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
