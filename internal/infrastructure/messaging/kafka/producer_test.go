package kafka

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/ExoMetrics/internal/config"
	"github.com/turtacn/ExoMetrics/internal/domain/planet"
	"github.com/turtacn/ExoMetrics/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ExoMetrics/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/ExoMetrics/pkg/errors"
)

func newTestProducer(w WriterInterface) *Producer {
	return newProducerWithWriter(w, "test", logging.NewNopLogger(), prometheus.NewNoopAppMetrics())
}

func TestNewProducer_RequiresBrokers(t *testing.T) {
	_, err := NewProducer(ProducerConfig{}, logging.NewNopLogger(), nil)
	assert.True(t, errors.IsCode(err, errors.ErrCodeValidation))
}

func TestProducerConfigFrom(t *testing.T) {
	cfg := ProducerConfigFrom(config.KafkaConfig{Brokers: []string{"b:9092"}, MaxRetries: 5}, "api")
	assert.Equal(t, []string{"b:9092"}, cfg.Brokers)
	assert.Equal(t, 5, cfg.MaxAttempts)
	assert.Equal(t, "api", cfg.Source)

	cfg.MaxAttempts = 0
	cfg.applyDefaults()
	assert.Equal(t, 3, cfg.MaxAttempts)
	assert.Positive(t, cfg.WriteTimeout)
}

func TestProducer_Publish(t *testing.T) {
	w := &mockKafkaWriter{}
	p := newTestProducer(w)

	err := p.Publish(context.Background(), &ProducerMessage{
		Topic: TopicPlanetUpdated, Key: []byte("k"), Value: []byte("v"),
		Headers: map[string]string{"h": "1"},
	})
	require.NoError(t, err)

	got := w.messages()
	require.Len(t, got, 1)
	assert.Equal(t, TopicPlanetUpdated, got[0].Topic)
	assert.Equal(t, []kafka.Header{{Key: "h", Value: []byte("1")}}, got[0].Headers)
	assert.Equal(t, int64(1), p.Stats().Published)
}

func TestProducer_PublishValidation(t *testing.T) {
	p := newTestProducer(&mockKafkaWriter{})
	assert.Error(t, p.Publish(context.Background(), nil))
	assert.Error(t, p.Publish(context.Background(), &ProducerMessage{Value: []byte("x")}))
	assert.NoError(t, p.PublishBatch(context.Background(), nil))
}

func TestProducer_PublishFailure(t *testing.T) {
	w := &mockKafkaWriter{writeFunc: func(context.Context, ...kafka.Message) error {
		return stderrors.New("broker down")
	}}
	p := newTestProducer(w)

	err := p.PublishBatch(context.Background(), []*ProducerMessage{
		{Topic: TopicPlanetUpdated, Value: []byte("a")},
		{Topic: TopicPlanetUpdated, Value: []byte("b")},
	})
	assert.True(t, errors.IsCode(err, errors.ErrCodeEventPublishFailed))
	assert.Equal(t, ProducerStats{Failed: 2}, p.Stats())
}

func TestProducer_PublishEvent(t *testing.T) {
	w := &mockKafkaWriter{}
	p := newTestProducer(w)
	pl := &planet.Planet{Name: "Kepler-22 b", Habitability: planet.Assessment{Score: 62}}

	ctx := logging.ContextWithRequestID(context.Background(), "req-1")
	require.NoError(t, p.PublishEvent(ctx, TopicPlanetUpdated, planet.NewPlanetUpdatedEvent(pl)))

	got := w.messages()
	require.Len(t, got, 1)
	assert.Equal(t, []byte("Kepler-22 b"), got[0].Key)

	env, err := MessageToEventEnvelope(&Message{Value: got[0].Value})
	require.NoError(t, err)
	assert.Equal(t, planet.EventPlanetUpdated, env.EventType)
	assert.Equal(t, "test", env.Source)
	assert.Equal(t, "req-1", env.TraceID)

	var payload planet.PlanetUpdatedEvent
	require.NoError(t, env.DecodePayload(&payload))
	assert.Equal(t, 62, payload.Habitability.Score)
}

func TestProducer_Close(t *testing.T) {
	closes := 0
	p := newTestProducer(&mockKafkaWriter{closeFunc: func() error { closes++; return nil }})
	require.NoError(t, p.Close())
	require.NoError(t, p.Close())
	assert.Equal(t, 1, closes)

	err := p.Publish(context.Background(), &ProducerMessage{Topic: TopicPlanetUpdated})
	assert.ErrorIs(t, err, ErrProducerClosed)
}

//Personal.AI order the ending
