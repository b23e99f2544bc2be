// Package worker holds the background jobs of the worker process: the
// consumer of catalog.refresh requests and the periodic refresh.
package worker

import (
	"context"
	"time"

	"github.com/turtacn/ExoMetrics/internal/application/catalog"
	"github.com/turtacn/ExoMetrics/internal/domain/planet"
	"github.com/turtacn/ExoMetrics/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/ExoMetrics/internal/infrastructure/monitoring/logging"
)

// RefreshHandler runs the catalog refreshes requested on the
// catalog.refresh topic.
type RefreshHandler struct {
	catalog catalog.Service
	logger  logging.Logger
}

func NewRefreshHandler(cat catalog.Service, logger logging.Logger) *RefreshHandler {
	return &RefreshHandler{catalog: cat, logger: logger.Named("refresh_handler")}
}

// Handle is a kafka.MessageHandler. Events of any other type are skipped
// and committed.
func (h *RefreshHandler) Handle(ctx context.Context, msg *kafka.Message) error {
	env, err := kafka.MessageToEventEnvelope(msg)
	if err != nil {
		return err
	}
	if env.EventType != planet.EventCatalogRefreshRequested {
		h.logger.Warn("Skipping unexpected event",
			logging.String("event_type", env.EventType),
			logging.String("event_id", env.EventID))
		return nil
	}

	var ev planet.CatalogRefreshRequestedEvent
	if err := env.DecodePayload(&ev); err != nil {
		return err
	}
	res, err := h.catalog.Refresh(ctx, ev.Force)
	if err != nil {
		return err
	}
	logResult(h.logger, res,
		logging.String("event_id", env.EventID),
		logging.String("requested_by", ev.RequestedBy),
		logging.Bool("force", ev.Force))
	return nil
}

// Scheduler refreshes the catalog every interval, once at start. The
// catalog service skips refreshes while the catalog is fresh.
type Scheduler struct {
	catalog  catalog.Service
	interval time.Duration
	logger   logging.Logger
}

func NewScheduler(cat catalog.Service, interval time.Duration, logger logging.Logger) *Scheduler {
	if interval <= 0 {
		interval = time.Hour
	}
	return &Scheduler{catalog: cat, interval: interval, logger: logger.Named("refresh_scheduler")}
}

// Run blocks until ctx is done.
func (s *Scheduler) Run(ctx context.Context) {
	s.logger.Info("Refresh scheduler started", logging.Duration("interval", s.interval))
	s.tick(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Refresh scheduler stopped")
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	res, err := s.catalog.Refresh(ctx, false)
	if err != nil {
		if ctx.Err() == nil {
			s.logger.Error("Scheduled refresh failed", logging.Err(err))
		}
		return
	}
	logResult(s.logger, res, logging.String("trigger", "schedule"))
}

func logResult(logger logging.Logger, res *catalog.RefreshResult, fields ...logging.Field) {
	if res == nil {
		return
	}
	if res.Skipped {
		logger.Debug("Catalog refresh skipped", append(fields, logging.String("reason", res.Reason))...)
		return
	}
	logger.Info("Catalog refreshed", append(fields,
		logging.Int("fetched", res.Fetched),
		logging.Int("upserted", res.Upserted),
		logging.Int("indexed", res.Indexed),
		logging.Int("published", res.Published))...)
}

//Personal.AI order the ending
