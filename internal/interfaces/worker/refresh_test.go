package worker

import (
	"context"
	stderrors "errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/turtacn/ExoMetrics/internal/application/catalog"
	"github.com/turtacn/ExoMetrics/internal/domain/planet"
	"github.com/turtacn/ExoMetrics/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/ExoMetrics/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ExoMetrics/pkg/errors"
	"github.com/turtacn/ExoMetrics/pkg/types/common"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type refreshCatalog struct {
	catalog.Service

	mu     sync.Mutex
	forces []bool
	res    *catalog.RefreshResult
	err    error
}

func (c *refreshCatalog) Refresh(_ context.Context, force bool) (*catalog.RefreshResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.forces = append(c.forces, force)
	return c.res, c.err
}

func (c *refreshCatalog) calls() []bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]bool(nil), c.forces...)
}

func consumed(t *testing.T, topic string, ev common.DomainEvent) *kafka.Message {
	t.Helper()
	env, err := kafka.NewEventEnvelope(ev, "apiserver")
	require.NoError(t, err)
	pm, err := env.ToMessage(topic)
	require.NoError(t, err)
	return &kafka.Message{Topic: pm.Topic, Key: pm.Key, Value: pm.Value, Headers: pm.Headers, Timestamp: pm.Timestamp}
}

func observed() (logging.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return logging.NewLoggerFromCore(core), logs
}

func TestRefreshHandler_Handle(t *testing.T) {
	cat := &refreshCatalog{res: &catalog.RefreshResult{Fetched: 12, Upserted: 12, Indexed: 12, Published: 3}}
	logger, logs := observed()
	h := NewRefreshHandler(cat, logger)

	msg := consumed(t, kafka.TopicCatalogRefresh, planet.NewCatalogRefreshRequestedEvent(true, "api"))
	require.NoError(t, h.Handle(context.Background(), msg))

	assert.Equal(t, []bool{true}, cat.calls())
	entries := logs.FilterMessage("Catalog refreshed").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "api", fields["requested_by"])
	assert.EqualValues(t, 3, fields["published"])
}

func TestRefreshHandler_SkipsOtherEvents(t *testing.T) {
	cat := &refreshCatalog{}
	logger, logs := observed()
	h := NewRefreshHandler(cat, logger)

	p := &planet.Planet{Name: "Kepler-442 b"}
	msg := consumed(t, kafka.TopicCatalogRefresh, planet.NewPlanetUpdatedEvent(p))
	require.NoError(t, h.Handle(context.Background(), msg))

	assert.Empty(t, cat.calls())
	assert.Equal(t, 1, logs.FilterMessage("Skipping unexpected event").Len())
}

func TestRefreshHandler_Errors(t *testing.T) {
	h := NewRefreshHandler(&refreshCatalog{}, logging.NewNopLogger())

	err := h.Handle(context.Background(), &kafka.Message{Topic: kafka.TopicCatalogRefresh})
	assert.True(t, errors.IsCode(err, errors.ErrCodeValidation))

	err = h.Handle(context.Background(), &kafka.Message{Value: []byte("{not json")})
	assert.True(t, errors.IsCode(err, errors.ErrCodeSerialization))

	boom := stderrors.New("archive unreachable")
	h = NewRefreshHandler(&refreshCatalog{err: boom}, logging.NewNopLogger())
	msg := consumed(t, kafka.TopicCatalogRefresh, planet.NewCatalogRefreshRequestedEvent(false, ""))
	assert.ErrorIs(t, h.Handle(context.Background(), msg), boom)
}

func TestScheduler_RunsUntilCancelled(t *testing.T) {
	cat := &refreshCatalog{res: &catalog.RefreshResult{Skipped: true, Reason: "catalog is fresh"}}
	logger, logs := observed()
	s := NewScheduler(cat, 10*time.Millisecond, logger)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return len(cat.calls()) >= 3 }, time.Second, 5*time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}

	for _, force := range cat.calls() {
		assert.False(t, force)
	}
	assert.GreaterOrEqual(t, logs.FilterMessage("Catalog refresh skipped").Len(), 3)
	assert.Equal(t, 1, logs.FilterMessage("Refresh scheduler stopped").Len())
}

func TestScheduler_LogsFailures(t *testing.T) {
	cat := &refreshCatalog{err: errors.Unavailable("archive unreachable")}
	logger, logs := observed()
	s := NewScheduler(cat, time.Hour, logger)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()
	require.Eventually(t, func() bool {
		return logs.FilterMessage("Scheduled refresh failed").Len() == 1
	}, time.Second, 5*time.Millisecond)
	cancel()
	<-done
}

func TestNewScheduler_DefaultInterval(t *testing.T) {
	s := NewScheduler(&refreshCatalog{}, 0, logging.NewNopLogger())
	assert.Equal(t, time.Hour, s.interval)
}

//Personal.AI order the ending
