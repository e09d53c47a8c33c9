// Package publish announces fetched results on a Kafka topic so other
// services can follow what is being read.
package publish

import (
	"context"
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	sdk "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Event is the message value written for every fetched result.
type Event struct {
	ID        string    `json:"id"`
	Signal    string    `json:"signal"`
	Source    string    `json:"source"`
	Kind      string    `json:"kind"`
	Label     string    `json:"label,omitempty"`
	FetchedAt time.Time `json:"fetched_at"`
}

// MessageWriter is the part of *kafka.Writer the publisher needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...sdk.Message) error
	Close() error
}

// Params configures a Kafka backed publisher.
type Params struct {
	Brokers []string
	Topic   string
}

type Publisher struct {
	writer MessageWriter
	log    *zap.Logger
	nowFn  func() time.Time
}

// NewKafka creates a publisher writing to params.Topic.
func NewKafka(params Params, log *zap.Logger) (*Publisher, error) {
	if len(params.Brokers) == 0 || params.Topic == "" {
		return nil, fmt.Errorf("kafka publisher needs brokers and a topic")
	}
	writer := &sdk.Writer{
		Addr:         sdk.TCP(params.Brokers...),
		Topic:        params.Topic,
		RequiredAcks: sdk.RequireAll,
		Balancer:     &sdk.LeastBytes{},
	}
	return New(writer, log), nil
}

// New wraps an existing writer.
func New(w MessageWriter, log *zap.Logger) *Publisher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Publisher{writer: w, log: log, nowFn: time.Now}
}

// Publish writes one event. The key groups events of the same request on
// one partition.
func (p *Publisher) Publish(ctx context.Context, ev Event) error {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.FetchedAt.IsZero() {
		ev.FetchedAt = p.nowFn().UTC()
	}

	value, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	err = p.writer.WriteMessages(ctx, sdk.Message{
		Key:   []byte(ev.Signal + "|" + ev.Source),
		Value: value,
		Headers: []sdk.Header{
			{Key: "content-type", Value: []byte("application/json")},
		},
	})
	if err != nil {
		p.log.Warn("publish failed", zap.String("signal", ev.Signal), zap.Error(err))
		return fmt.Errorf("publish %s: %w", ev.Signal, err)
	}
	p.log.Debug("published", zap.String("id", ev.ID), zap.String("signal", ev.Signal))
	return nil
}

func (p *Publisher) Close() error { return p.writer.Close() }
