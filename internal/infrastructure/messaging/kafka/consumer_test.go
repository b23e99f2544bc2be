package kafka

import (
	"context"
	stderrors "errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/turtacn/ExoMetrics/internal/config"
	"github.com/turtacn/ExoMetrics/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ExoMetrics/pkg/errors"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestConsumer(r ReaderInterface, dlq Publisher, retries int) *Consumer {
	return newConsumerWithReader(r, ConsumerConfig{
		MaxRetries:      retries,
		RetryBackoff:    time.Millisecond,
		HandlerTimeout:  time.Second,
		DeadLetterTopic: TopicDeadLetterCatalog,
	}, dlq, logging.NewNopLogger())
}

func TestNewConsumer_Validation(t *testing.T) {
	log := logging.NewNopLogger()
	_, err := NewConsumer(ConsumerConfig{}, nil, log)
	assert.True(t, errors.IsCode(err, errors.ErrCodeValidation))
	_, err = NewConsumer(ConsumerConfig{Brokers: []string{"b"}}, nil, log)
	assert.Error(t, err)
	_, err = NewConsumer(ConsumerConfig{Brokers: []string{"b"}, GroupID: "g"}, nil, log)
	assert.Error(t, err)
}

func TestConsumerConfigFrom(t *testing.T) {
	cfg := ConsumerConfigFrom(config.KafkaConfig{
		Brokers: []string{"b"}, GroupID: "g", AutoOffsetReset: "earliest", DeadLetterTopic: "dlq",
	}, 5*time.Second, TopicCatalogRefresh)
	assert.Equal(t, kafka.FirstOffset, cfg.StartOffset)
	assert.Equal(t, []string{TopicCatalogRefresh}, cfg.Topics)
	assert.Equal(t, "dlq", cfg.DeadLetterTopic)

	cfg = ConsumerConfigFrom(config.KafkaConfig{}, 0)
	assert.Equal(t, kafka.LastOffset, cfg.StartOffset)
}

func TestConsumer_Subscribe(t *testing.T) {
	c := newTestConsumer(&mockKafkaReader{}, nil, 0)
	assert.Error(t, c.Subscribe("", func(context.Context, *Message) error { return nil }))
	assert.Error(t, c.Subscribe("t", nil))
	assert.NoError(t, c.Subscribe("t", func(context.Context, *Message) error { return nil }))
}

func TestConsumer_DispatchesAndCommits(t *testing.T) {
	r := &mockKafkaReader{queue: []kafka.Message{
		{Topic: TopicCatalogRefresh, Value: []byte("1"), Headers: []kafka.Header{{Key: "h", Value: []byte("x")}}},
		{Topic: "unrouted", Value: []byte("2")},
	}}
	c := newTestConsumer(r, nil, 0)

	var got atomic.Value
	require.NoError(t, c.Subscribe(TopicCatalogRefresh, func(_ context.Context, m *Message) error {
		got.Store(m.Headers["h"])
		return nil
	}))

	require.NoError(t, c.Start(context.Background()))
	assert.Error(t, c.Start(context.Background()))

	require.Eventually(t, func() bool { return r.commitCount() == 2 }, time.Second, 5*time.Millisecond)
	require.NoError(t, c.Close())
	assert.Equal(t, "x", got.Load())
	assert.True(t, r.closed)
}

func TestConsumer_RetriesThenDeadLetters(t *testing.T) {
	r := &mockKafkaReader{queue: []kafka.Message{{Topic: TopicCatalogRefresh, Key: []byte("k"), Value: []byte("bad")}}}
	dlq := &recordingPublisher{}
	c := newTestConsumer(r, dlq, 2)

	var calls atomic.Int32
	require.NoError(t, c.Subscribe(TopicCatalogRefresh, func(context.Context, *Message) error {
		calls.Add(1)
		return stderrors.New("boom")
	}))
	require.NoError(t, c.Start(context.Background()))
	require.Eventually(t, func() bool { return r.commitCount() == 1 }, time.Second, 5*time.Millisecond)
	require.NoError(t, c.Close())

	assert.Equal(t, int32(3), calls.Load())
	msgs := dlq.published()
	require.Len(t, msgs, 1)
	assert.Equal(t, TopicDeadLetterCatalog, msgs[0].Topic)
	assert.Equal(t, TopicCatalogRefresh, msgs[0].Headers["original_topic"])
	assert.Equal(t, "boom", msgs[0].Headers["error"])
	assert.Equal(t, []byte("bad"), msgs[0].Value)
}

func TestConsumer_RecoversHandlerPanic(t *testing.T) {
	r := &mockKafkaReader{queue: []kafka.Message{{Topic: TopicCatalogRefresh}}}
	dlq := &recordingPublisher{}
	c := newTestConsumer(r, dlq, 0)
	require.NoError(t, c.Subscribe(TopicCatalogRefresh, func(context.Context, *Message) error {
		panic("nope")
	}))
	require.NoError(t, c.Start(context.Background()))
	require.Eventually(t, func() bool { return r.commitCount() == 1 }, time.Second, 5*time.Millisecond)
	require.NoError(t, c.Close())

	require.Len(t, dlq.published(), 1)
	assert.Contains(t, dlq.published()[0].Headers["error"], "handler panic")
}

func TestConsumer_StopsOnContextCancel(t *testing.T) {
	r := &mockKafkaReader{}
	c := newTestConsumer(r, nil, 0)
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, c.Start(ctx))
	cancel()
	require.NoError(t, c.Close())
}

//Personal.AI order the ending
