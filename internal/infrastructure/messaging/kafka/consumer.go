package kafka

import (
	"context"
	stderrors "errors"
	"io"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/turtacn/ExoMetrics/internal/config"
	"github.com/turtacn/ExoMetrics/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ExoMetrics/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/ExoMetrics/pkg/errors"
)

// ReaderInterface abstracts kafka.Reader for testing.
type ReaderInterface interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher is the subset of Producer the consumer needs for dead letters.
type Publisher interface {
	Publish(ctx context.Context, msg *ProducerMessage) error
}

type ConsumerConfig struct {
	Brokers         []string
	GroupID         string
	Topics          []string
	StartOffset     int64
	MaxRetries      int
	RetryBackoff    time.Duration
	HandlerTimeout  time.Duration
	DeadLetterTopic string
	// Metrics, when set, times every processed message per topic.
	Metrics *prometheus.AppMetrics
}

// ConsumerConfigFrom fills a ConsumerConfig from the service configuration.
func ConsumerConfigFrom(cfg config.KafkaConfig, handlerTimeout time.Duration, topics ...string) ConsumerConfig {
	offset := kafka.LastOffset
	if cfg.AutoOffsetReset == "earliest" {
		offset = kafka.FirstOffset
	}
	return ConsumerConfig{
		Brokers:         cfg.Brokers,
		GroupID:         cfg.GroupID,
		Topics:          topics,
		StartOffset:     offset,
		MaxRetries:      cfg.MaxRetries,
		HandlerTimeout:  handlerTimeout,
		DeadLetterTopic: cfg.DeadLetterTopic,
	}
}

func (c *ConsumerConfig) applyDefaults() {
	if c.MaxRetries < 0 {
		c.MaxRetries = 0
	}
	if c.RetryBackoff <= 0 {
		c.RetryBackoff = 200 * time.Millisecond
	}
	if c.HandlerTimeout <= 0 {
		c.HandlerTimeout = 30 * time.Second
	}
}

// Consumer dispatches messages to the handler registered for their topic.
// Offsets are committed after the handler succeeds or the message is
// dead-lettered, so a crash replays at most the in-flight message.
type Consumer struct {
	reader ReaderInterface
	dlq    Publisher
	cfg    ConsumerConfig
	logger logging.Logger

	mu       sync.RWMutex
	handlers map[string]MessageHandler

	runMu   sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewConsumer builds a group consumer. dlq may be nil; failed messages are
// then logged and skipped.
func NewConsumer(cfg ConsumerConfig, dlq Publisher, logger logging.Logger) (*Consumer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New(errors.ErrCodeValidation, "kafka brokers required")
	}
	if cfg.GroupID == "" {
		return nil, errors.New(errors.ErrCodeValidation, "consumer group id required")
	}
	if len(cfg.Topics) == 0 {
		return nil, errors.New(errors.ErrCodeValidation, "at least one topic required")
	}
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		GroupID:     cfg.GroupID,
		GroupTopics: cfg.Topics,
		StartOffset: cfg.StartOffset,
		MinBytes:    1,
		MaxBytes:    10e6,
	})
	return newConsumerWithReader(r, cfg, dlq, logger), nil
}

func newConsumerWithReader(r ReaderInterface, cfg ConsumerConfig, dlq Publisher, logger logging.Logger) *Consumer {
	cfg.applyDefaults()
	return &Consumer{
		reader:   r,
		dlq:      dlq,
		cfg:      cfg,
		logger:   logger.Named("kafka_consumer"),
		handlers: make(map[string]MessageHandler),
	}
}

// Subscribe registers the handler of a topic, replacing any earlier one.
func (c *Consumer) Subscribe(topic string, h MessageHandler) error {
	if topic == "" || h == nil {
		return errors.New(errors.ErrCodeValidation, "topic and handler required")
	}
	c.mu.Lock()
	c.handlers[topic] = h
	c.mu.Unlock()
	return nil
}

// Start runs the consume loop in the background until ctx is done or Close
// is called.
func (c *Consumer) Start(ctx context.Context) error {
	c.runMu.Lock()
	defer c.runMu.Unlock()
	if c.running {
		return errors.New(errors.ErrCodeConflict, "consumer already running")
	}
	loopCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.running = true
	c.wg.Add(1)
	go c.consumeLoop(loopCtx)
	return nil
}

func (c *Consumer) consumeLoop(ctx context.Context) {
	defer c.wg.Done()
	for {
		km, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || stderrors.Is(err, io.EOF) {
				return
			}
			c.logger.Warn("Fetch failed", logging.Err(err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(c.cfg.RetryBackoff):
			}
			continue
		}

		msg := fromKafkaMessage(km)
		c.process(ctx, msg)

		if err := c.reader.CommitMessages(ctx, km); err != nil && ctx.Err() == nil {
			c.logger.Error("Commit failed",
				logging.String("topic", msg.Topic),
				logging.Int64("offset", msg.Offset),
				logging.Err(err))
		}
	}
}

func fromKafkaMessage(km kafka.Message) *Message {
	msg := &Message{
		Topic:     km.Topic,
		Partition: km.Partition,
		Offset:    km.Offset,
		Key:       km.Key,
		Value:     km.Value,
		Timestamp: km.Time,
		Headers:   make(map[string]string, len(km.Headers)),
	}
	for _, h := range km.Headers {
		msg.Headers[h.Key] = string(h.Value)
	}
	return msg
}

// process runs the handler with exponential backoff between attempts.
func (c *Consumer) process(ctx context.Context, msg *Message) {
	c.mu.RLock()
	h, ok := c.handlers[msg.Topic]
	c.mu.RUnlock()
	if !ok {
		c.logger.Debug("No handler for topic", logging.String("topic", msg.Topic))
		return
	}
	start := time.Now()
	defer func() { prometheus.RecordMessageProcessed(c.cfg.Metrics, msg.Topic, time.Since(start)) }()

	var err error
	backoff := c.cfg.RetryBackoff
	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			backoff *= 2
		}
		if err = c.invoke(ctx, h, msg); err == nil {
			return
		}
		c.logger.Warn("Handler failed",
			logging.String("topic", msg.Topic),
			logging.Int("attempt", attempt+1),
			logging.Err(err))
	}
	c.deadLetter(ctx, msg, err)
}

func (c *Consumer) invoke(ctx context.Context, h MessageHandler, msg *Message) (err error) {
	hctx, cancel := context.WithTimeout(ctx, c.cfg.HandlerTimeout)
	defer cancel()
	defer func() {
		if r := recover(); r != nil {
			err = errors.Newf(errors.ErrCodeInternal, "handler panic: %v", r)
		}
	}()
	return h(hctx, msg)
}

func (c *Consumer) deadLetter(ctx context.Context, msg *Message, cause error) {
	if c.dlq == nil || c.cfg.DeadLetterTopic == "" {
		c.logger.Error("Dropping message after retries",
			logging.String("topic", msg.Topic),
			logging.Int64("offset", msg.Offset),
			logging.Err(cause))
		return
	}
	headers := make(map[string]string, len(msg.Headers)+2)
	for k, v := range msg.Headers {
		headers[k] = v
	}
	headers["original_topic"] = msg.Topic
	if cause != nil {
		headers["error"] = cause.Error()
	}
	err := c.dlq.Publish(ctx, &ProducerMessage{
		Topic:     c.cfg.DeadLetterTopic,
		Key:       msg.Key,
		Value:     msg.Value,
		Headers:   headers,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		c.logger.Error("Dead letter publish failed", logging.String("topic", msg.Topic), logging.Err(err))
	}
}

// Close stops the loop, waits for the in-flight message and closes the
// reader.
func (c *Consumer) Close() error {
	c.runMu.Lock()
	if c.cancel != nil {
		c.cancel()
	}
	c.runMu.Unlock()
	c.wg.Wait()

	c.runMu.Lock()
	defer c.runMu.Unlock()
	c.running = false
	if err := c.reader.Close(); err != nil {
		return errors.Wrap(err, errors.CodeMessageQueueError, "failed to close kafka reader")
	}
	return nil
}

//Personal.AI order the ending
