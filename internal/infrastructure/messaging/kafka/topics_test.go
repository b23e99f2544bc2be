package kafka

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/ExoMetrics/internal/domain/planet"
	"github.com/turtacn/ExoMetrics/internal/infrastructure/monitoring/logging"
)

type mockConn struct {
	created    []kafka.TopicConfig
	createErr  error
	partitions map[string]int
}

func (m *mockConn) CreateTopics(topics ...kafka.TopicConfig) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.created = append(m.created, topics...)
	return nil
}

func (m *mockConn) ReadPartitions(topics ...string) ([]kafka.Partition, error) {
	n := m.partitions[topics[0]]
	if n == 0 {
		return nil, stderrors.New("unknown topic")
	}
	return make([]kafka.Partition, n), nil
}

func (m *mockConn) Close() error { return nil }

func TestEventEnvelope_RoundTrip(t *testing.T) {
	ev := planet.NewCatalogRefreshRequestedEvent(true, "cli")
	env, err := NewEventEnvelope(ev, "worker")
	require.NoError(t, err)
	assert.Equal(t, ev.EventID(), env.EventID)
	assert.Equal(t, "v1", env.SchemaVersion)

	msg, err := env.ToMessage(TopicCatalogRefresh)
	require.NoError(t, err)
	assert.Equal(t, planet.EventCatalogRefreshRequested, msg.Headers["event_type"])
	assert.Equal(t, []byte("catalog"), msg.Key)
	_, hasTrace := msg.Headers["trace_id"]
	assert.False(t, hasTrace)

	back, err := MessageToEventEnvelope(&Message{Value: msg.Value})
	require.NoError(t, err)
	var payload planet.CatalogRefreshRequestedEvent
	require.NoError(t, back.DecodePayload(&payload))
	assert.True(t, payload.Force)
	assert.Equal(t, "cli", payload.RequestedBy)
}

func TestMessageToEventEnvelope_Invalid(t *testing.T) {
	_, err := MessageToEventEnvelope(&Message{})
	assert.Error(t, err)
	_, err = MessageToEventEnvelope(&Message{Value: []byte("{")})
	assert.Error(t, err)
}

func TestDecodePayload_Empty(t *testing.T) {
	var v map[string]any
	assert.NoError(t, (&EventEnvelope{}).DecodePayload(&v))
	assert.Nil(t, v)
}

func TestTopicManager_CreateTopic(t *testing.T) {
	conn := &mockConn{}
	m := &TopicManager{conn: conn, logger: logging.NewNopLogger()}
	ctx := context.Background()

	assert.Error(t, m.CreateTopic(ctx, TopicConfig{}))
	assert.Error(t, m.CreateTopic(ctx, TopicConfig{Name: "x"}))

	require.NoError(t, m.EnsureDefaultTopics(ctx))
	require.Len(t, conn.created, len(DefaultTopics()))
	assert.Equal(t, "retention.ms", conn.created[0].ConfigEntries[0].ConfigName)
}

func TestTopicManager_CreateExistingTopic(t *testing.T) {
	conn := &mockConn{createErr: stderrors.New("exists"), partitions: map[string]int{TopicPlanetUpdated: 6}}
	m := &TopicManager{conn: conn, logger: logging.NewNopLogger()}
	ctx := context.Background()

	assert.NoError(t, m.CreateTopic(ctx, TopicConfig{Name: TopicPlanetUpdated, NumPartitions: 6, ReplicationFactor: 1}))
	assert.Error(t, m.CreateTopic(ctx, TopicConfig{Name: TopicCatalogRefresh, NumPartitions: 1, ReplicationFactor: 1}))
}

//Personal.AI order the ending
