package planet

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Query filters and pages a catalog listing. Zero values mean "no filter".
type Query struct {
	Search      string   // substring of name or host star
	StarType    string   // case-insensitive exact match
	MaxDistance *float64 // parsecs
	MinScore    *int     // hybrid habitability
	Names       []string // restrict to these exact names
	Page        int
	Limit       int
}

// Offset returns the row offset of the requested page.
func (q Query) Offset() int {
	if q.Page < 1 || q.Limit < 1 {
		return 0
	}
	return (q.Page - 1) * q.Limit
}

// Repository persists catalog planets.
type Repository interface {
	// List returns the requested page ordered by name, plus the total count
	// of matching planets.
	List(ctx context.Context, q Query) ([]*Planet, int64, error)
	Names(ctx context.Context) ([]string, error)
	// GetByName matches on NormalizeName and returns a PLANET_001 error when
	// absent.
	GetByName(ctx context.Context, name string) (*Planet, error)
	// Upsert inserts or replaces planets keyed by normalized name and
	// returns how many rows were written.
	Upsert(ctx context.Context, planets []*Planet) (int, error)
	// LatestUpdate returns the newest UpdatedAt, zero when empty.
	LatestUpdate(ctx context.Context) (time.Time, error)
	Count(ctx context.Context) (int64, error)
}

// Export is the audit record of one archived catalog export.
type Export struct {
	ID        uuid.UUID `json:"id"`
	ObjectKey string    `json:"objectKey"`
	Rows      int       `json:"rows"`
	SizeBytes int64     `json:"sizeBytes"`
	CreatedAt time.Time `json:"createdAt"`
}

// ExportRepository records archived exports.
type ExportRepository interface {
	Save(ctx context.Context, e *Export) error
	// Recent returns up to limit exports, newest first.
	Recent(ctx context.Context, limit int) ([]*Export, error)
}

//Personal.AI order the ending
