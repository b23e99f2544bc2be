package planet

import "github.com/turtacn/ExoMetrics/pkg/types/common"

// Event types carried in BaseEvent.Type.
const (
	EventPlanetUpdated           = "planet.updated"
	EventCatalogRefreshRequested = "catalog.refresh_requested"
)

// PlanetUpdatedEvent is published after a planet is upserted.
type PlanetUpdatedEvent struct {
	common.BaseEvent
	Name         string     `json:"name"`
	Habitability Assessment `json:"habitability"`
}

func NewPlanetUpdatedEvent(p *Planet) *PlanetUpdatedEvent {
	return &PlanetUpdatedEvent{
		BaseEvent:    common.NewBaseEvent(EventPlanetUpdated, p.Name),
		Name:         p.Name,
		Habitability: p.Habitability,
	}
}

// CatalogRefreshRequestedEvent asks the worker to refresh the catalog.
type CatalogRefreshRequestedEvent struct {
	common.BaseEvent
	Force       bool   `json:"force"`
	RequestedBy string `json:"requested_by,omitempty"`
}

func NewCatalogRefreshRequestedEvent(force bool, requestedBy string) *CatalogRefreshRequestedEvent {
	return &CatalogRefreshRequestedEvent{
		BaseEvent:   common.NewBaseEvent(EventCatalogRefreshRequested, "catalog"),
		Force:       force,
		RequestedBy: requestedBy,
	}
}

//Personal.AI order the ending
