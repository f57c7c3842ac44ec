// Package publish forwards completed run summaries to downstream consumers.
package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"acsim/internal/breaker"
	"acsim/internal/models"
)

type Publisher interface {
	Publish(ctx context.Context, s models.RunSummary) error
	Close() error
}

// Nop discards summaries; used when no brokers are configured.
type Nop struct{}

func (Nop) Publish(context.Context, models.RunSummary) error { return nil }
func (Nop) Close() error { return nil }

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes one JSON message per run, keyed by run id so that
// all events for a run land on the same partition.
type KafkaPublisher struct {
	w   messageWriter
	brk *breaker.Breaker
}

// NewKafkaPublisher builds a hash-balanced writer for topic. brk may be nil.
func NewKafkaPublisher(brokers []string, topic string, brk *breaker.Breaker) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		BatchTimeout: 50 * time.Millisecond,
	}
	return &KafkaPublisher{w: w, brk: brk}
}

func (p *KafkaPublisher) Publish(ctx context.Context, s models.RunSummary) error {
	value, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode run summary: %w", err)
	}
	msg := kafka.Message{Key: []byte(s.RunID), Value: value, Time: s.CreatedAt}

	write := func(ctx context.Context) error { return p.w.WriteMessages(ctx, msg) }
	if p.brk != nil {
		err = p.brk.Execute(ctx, write)
	} else {
		err = write(ctx)
	}
	if err != nil {
		return fmt.Errorf("publish run %s: %w", s.RunID, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error { return p.w.Close() }
