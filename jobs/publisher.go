// Package jobs hands connection-check work to the out-of-band reconciliation
// process. The intake API only ever enqueues; it never waits for a check.
package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"greenledger/backend/logger"
	"greenledger/backend/models"
)

// ConnectionCheck asks the reconciliation job to verify a pending connection and
// move it to connected or failed.
type ConnectionCheck struct {
	JobID        string          `json:"job_id"`
	ConnectionID string          `json:"connection_id"`
	Provider     models.Provider `json:"provider"`
	UserEmail    string          `json:"user_email"`
	RequestedAt  time.Time       `json:"requested_at"`
}

func NewConnectionCheck(c models.CloudConnection) ConnectionCheck {
	return ConnectionCheck{
		JobID:        uuid.NewString(),
		ConnectionID: c.ID,
		Provider:     c.Provider,
		UserEmail:    c.UserEmail,
		RequestedAt:  time.Now().UTC(),
	}
}

type Publisher interface {
	Publish(ctx context.Context, check ConnectionCheck) error
	Close() error
}

// KafkaPublisher writes checks to a topic keyed by connection id so retries for one
// connection stay ordered on a partition.
type KafkaPublisher struct {
	writer *kafka.Writer
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{writer: NewWriter(brokers, topic)}
}

func NewWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireAll,
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, check ConnectionCheck) error {
	b, err := json.Marshal(check)
	if err != nil {
		return fmt.Errorf("encode connection check: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(check.ConnectionID),
		Value: b,
		Headers: []kafka.Header{
			{Key: "job_id", Value: []byte(check.JobID)},
			{Key: "provider", Value: []byte(check.Provider)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write connection check: %w", err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// LogPublisher records checks in the log when no broker is configured.
type LogPublisher struct {
	lggr logger.Logger
}

func NewLogPublisher(lggr logger.Logger) *LogPublisher {
	return &LogPublisher{lggr: lggr}
}

func (p *LogPublisher) Publish(_ context.Context, check ConnectionCheck) error {
	p.lggr.Infow("connection check requested (no queue configured)",
		"job_id", check.JobID,
		"connection_id", check.ConnectionID,
		"provider", check.Provider,
	)
	return nil
}

func (p *LogPublisher) Close() error { return nil }
