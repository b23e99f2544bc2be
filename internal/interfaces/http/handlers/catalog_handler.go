package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/ExoMetrics/internal/application/catalog"
	"github.com/turtacn/ExoMetrics/internal/domain/planet"
	"github.com/turtacn/ExoMetrics/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ExoMetrics/pkg/types/common"
)

// EventPublisher sends a domain event to a topic.
type EventPublisher interface {
	PublishEvent(ctx context.Context, topic string, event common.DomainEvent) error
}

// CatalogHandler triggers catalog refreshes.
type CatalogHandler struct {
	catalog   catalog.Service
	publisher EventPublisher
	topic     string
	logger    logging.Logger
}

// NewCatalogHandler returns a handler that hands refreshes to the worker
// through publisher on topic. With a nil publisher refreshes run inline.
func NewCatalogHandler(cat catalog.Service, publisher EventPublisher, topic string, logger logging.Logger) *CatalogHandler {
	return &CatalogHandler{catalog: cat, publisher: publisher, topic: topic, logger: logger}
}

// Refresh handles POST /catalog/refresh?force=true.
func (h *CatalogHandler) Refresh(c *gin.Context) {
	force, _ := strconv.ParseBool(c.Query("force"))

	if h.publisher == nil {
		res, err := h.catalog.Refresh(c.Request.Context(), force)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "completed", "force": force, "result": res})
		return
	}

	event := planet.NewCatalogRefreshRequestedEvent(force, "api")
	if err := h.publisher.PublishEvent(c.Request.Context(), h.topic, event); err != nil {
		respondError(c, err)
		return
	}
	h.logger.Info("Catalog refresh requested",
		logging.String("event_id", event.EventID()),
		logging.Bool("force", force))
	c.JSON(http.StatusAccepted, gin.H{"status": "queued", "eventId": event.EventID(), "force": force})
}

//Personal.AI order the ending
