package trail

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

// KafkaProducerConfig contains configurable parameters for the Kafka producer.
type KafkaProducerConfig struct {
	// Brokers is the list of Kafka broker addresses (host:port).
	Brokers []string

	// Topic is the topic decision records are written to.
	Topic string

	// MaxAttempts is how many times the producer will retry a Produce on
	// transient error. Defaults to 3 if <= 0.
	MaxAttempts int

	// WriteTimeout is the per-attempt timeout for Write operations.
	// Defaults to 10s if zero.
	WriteTimeout time.Duration
}

// KafkaProducer is a lightweight wrapper over the kafka-go Writer that
// publishes decision records keyed by agreement id, so a consumer replaying
// the topic sees one agreement's decisions in order.
type KafkaProducer struct {
	writer      *kafka.Writer
	maxAttempts int
}

// NewKafkaProducer constructs a KafkaProducer.
func NewKafkaProducer(cfg KafkaProducerConfig) (*KafkaProducer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka: at least one broker required")
	}
	if cfg.Topic == "" {
		return nil, fmt.Errorf("kafka: topic required")
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 10 * time.Second
	}

	w := kafka.NewWriter(kafka.WriterConfig{
		Brokers:      cfg.Brokers,
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: cfg.WriteTimeout,
		Async:        false,
	})

	return &KafkaProducer{writer: w, maxAttempts: cfg.MaxAttempts}, nil
}

// PublishDecision marshals the decision and produces it with the agreement id
// as the message key. Retries transient failures with exponential backoff.
func (p *KafkaProducer) PublishDecision(ctx context.Context, d *Decision) error {
	value, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("marshal decision: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(d.AgreementID),
		Value: value,
		Time:  time.Now().UTC(),
	}

	var lastErr error
	backoff := 100 * time.Millisecond
	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := p.writer.WriteMessages(attemptCtx, msg)
		cancel()
		if err == nil {
			return nil
		}
		lastErr = err
		time.Sleep(backoff)
		if backoff < 2*time.Second {
			backoff *= 2
		}
	}
	return fmt.Errorf("produce failed after %d attempts: %w", p.maxAttempts, lastErr)
}

// Close shuts down the underlying writer and releases resources.
func (p *KafkaProducer) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
