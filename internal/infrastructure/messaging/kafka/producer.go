package kafka

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/turtacn/ExoMetrics/internal/config"
	"github.com/turtacn/ExoMetrics/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ExoMetrics/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/ExoMetrics/pkg/errors"
	"github.com/turtacn/ExoMetrics/pkg/types/common"
)

// ErrProducerClosed is returned by Publish after Close.
var ErrProducerClosed = errors.New(errors.CodeMessageQueueError, "producer is closed")

// WriterInterface abstracts kafka.Writer for testing.
type WriterInterface interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type ProducerConfig struct {
	Brokers      []string
	BatchTimeout time.Duration
	WriteTimeout time.Duration
	MaxAttempts  int
	Source       string
}

// ProducerConfigFrom fills a ProducerConfig from the service configuration.
func ProducerConfigFrom(cfg config.KafkaConfig, source string) ProducerConfig {
	return ProducerConfig{
		Brokers:      cfg.Brokers,
		BatchTimeout: cfg.BatchTimeout,
		WriteTimeout: cfg.WriteTimeout,
		MaxAttempts:  cfg.MaxRetries,
		Source:       source,
	}
}

func (c *ProducerConfig) applyDefaults() {
	if c.BatchTimeout <= 0 {
		c.BatchTimeout = 10 * time.Millisecond
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = 10 * time.Second
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 3
	}
	if c.Source == "" {
		c.Source = "exometrics"
	}
}

// ProducerStats counts publish outcomes since start.
type ProducerStats struct {
	Published int64
	Failed    int64
}

// Producer publishes catalog events.
type Producer struct {
	writer  WriterInterface
	source  string
	logger  logging.Logger
	metrics *prometheus.AppMetrics

	published atomic.Int64
	failed    atomic.Int64

	mu     sync.RWMutex
	closed bool
}

// NewProducer builds a producer over a kafka.Writer with hash balancing,
// so messages sharing a key land in one partition.
func NewProducer(cfg ProducerConfig, logger logging.Logger, metrics *prometheus.AppMetrics) (*Producer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New(errors.ErrCodeValidation, "kafka brokers required")
	}
	cfg.applyDefaults()
	w := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Balancer:     &kafka.Hash{},
		BatchTimeout: cfg.BatchTimeout,
		WriteTimeout: cfg.WriteTimeout,
		MaxAttempts:  cfg.MaxAttempts,
		RequiredAcks: kafka.RequireAll,
	}
	return newProducerWithWriter(w, cfg.Source, logger, metrics), nil
}

func newProducerWithWriter(w WriterInterface, source string, logger logging.Logger, metrics *prometheus.AppMetrics) *Producer {
	if source == "" {
		source = "exometrics"
	}
	return &Producer{
		writer:  w,
		source:  source,
		logger:  logger.Named("kafka_producer"),
		metrics: metrics,
	}
}

func toKafkaMessage(m *ProducerMessage) kafka.Message {
	km := kafka.Message{Topic: m.Topic, Key: m.Key, Value: m.Value, Time: m.Timestamp}
	for k, v := range m.Headers {
		km.Headers = append(km.Headers, kafka.Header{Key: k, Value: []byte(v)})
	}
	return km
}

// Publish writes one message.
func (p *Producer) Publish(ctx context.Context, msg *ProducerMessage) error {
	if msg == nil || msg.Topic == "" {
		return errors.New(errors.ErrCodeValidation, "message topic required")
	}
	return p.PublishBatch(ctx, []*ProducerMessage{msg})
}

// PublishBatch writes messages in one call. The batch succeeds or fails
// as a whole.
func (p *Producer) PublishBatch(ctx context.Context, msgs []*ProducerMessage) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrProducerClosed
	}
	if len(msgs) == 0 {
		return nil
	}

	kms := make([]kafka.Message, 0, len(msgs))
	for _, m := range msgs {
		if m == nil || m.Topic == "" {
			return errors.New(errors.ErrCodeValidation, "message topic required")
		}
		kms = append(kms, toKafkaMessage(m))
	}

	err := p.writer.WriteMessages(ctx, kms...)
	for _, m := range msgs {
		prometheus.RecordEvent(p.metrics, m.Topic, err)
	}
	if err != nil {
		p.failed.Add(int64(len(msgs)))
		p.logger.Error("Failed to publish messages",
			logging.String("topic", msgs[0].Topic),
			logging.Int("count", len(msgs)),
			logging.Err(err))
		return errors.Wrap(err, errors.ErrCodeEventPublishFailed, "failed to publish to "+msgs[0].Topic)
	}
	p.published.Add(int64(len(msgs)))
	return nil
}

// PublishEvent wraps a domain event in an envelope and publishes it.
func (p *Producer) PublishEvent(ctx context.Context, topic string, event common.DomainEvent) error {
	env, err := NewEventEnvelope(event, p.source)
	if err != nil {
		return err
	}
	env.TraceID = logging.RequestIDFromContext(ctx)
	msg, err := env.ToMessage(topic)
	if err != nil {
		return err
	}
	return p.Publish(ctx, msg)
}

func (p *Producer) Stats() ProducerStats {
	return ProducerStats{Published: p.published.Load(), Failed: p.failed.Load()}
}

// Close flushes and closes the writer. Calling it twice is a no-op.
func (p *Producer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	if err := p.writer.Close(); err != nil {
		return errors.Wrap(err, errors.CodeMessageQueueError, "failed to close kafka writer")
	}
	return nil
}

//Personal.AI order the ending
