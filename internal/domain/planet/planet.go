package planet

import (
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"

	"github.com/turtacn/ExoMetrics/pkg/errors"
)

// Assessment is the persisted result of HybridHabitability.
type Assessment struct {
	Score int    `json:"score" yaml:"score"`
	ESI   int    `json:"esi" yaml:"esi"`
	Label string `json:"label" yaml:"label"`
}

// Planet is a catalog entry. Name is unique after NormalizeName.
type Planet struct {
	ID              uuid.UUID  `json:"id" yaml:"-"`
	Name            string     `json:"name" yaml:"name"`
	HostStar        string     `json:"hostStar,omitempty" yaml:"hostStar"`
	DiscoveryMethod string     `json:"discoveryMethod,omitempty" yaml:"discoveryMethod"`
	DiscoveryYear   int        `json:"discoveryYear,omitempty" yaml:"discoveryYear"`
	DistancePc      *float64   `json:"distance,omitempty" yaml:"distance"`
	Radius          *float64   `json:"radius,omitempty" yaml:"radius"`
	Mass            *float64   `json:"mass,omitempty" yaml:"mass"`
	OrbitalPeriod   *float64   `json:"orbitalPeriod,omitempty" yaml:"orbitalPeriod"`
	SemiMajorAxisAU *float64   `json:"semiMajorAxis,omitempty" yaml:"semiMajorAxis"`
	Eccentricity    *float64   `json:"eccentricity,omitempty" yaml:"eccentricity"`
	TeqK            *float64   `json:"teqK,omitempty" yaml:"teqK"`
	StarType        string     `json:"starType,omitempty" yaml:"starType"`
	StarTempK       *float64   `json:"starTemp,omitempty" yaml:"starTemp"`
	StarLuminosity  *float64   `json:"starLuminosity,omitempty" yaml:"starLuminosity"`
	StarRadius      *float64   `json:"starRadius,omitempty" yaml:"starRadius"`
	Atmosphere      string     `json:"atmosphere,omitempty" yaml:"atmosphere"`
	StellarActivity string     `json:"stellarActivity,omitempty" yaml:"stellarActivity"`
	Habitability    Assessment `json:"habitability" yaml:"-"`
	CreatedAt       time.Time  `json:"createdAt" yaml:"-"`
	UpdatedAt       time.Time  `json:"updatedAt" yaml:"-"`
}

// NewPlanet creates a planet with a fresh ID. The name must not be blank.
func NewPlanet(name string) (*Planet, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New(errors.ErrCodePlanetNameInvalid, "planet name is required")
	}
	now := time.Now().UTC()
	return &Planet{ID: uuid.New(), Name: name, CreatedAt: now, UpdatedAt: now}, nil
}

// Validate checks the entity before it is stored.
func (p *Planet) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return errors.New(errors.ErrCodePlanetNameInvalid, "planet name is required")
	}
	if err := p.Record().Validate(); err != nil {
		return err
	}
	for _, v := range []*float64{p.DistancePc, p.SemiMajorAxisAU, p.StarTempK, p.StarRadius} {
		if v != nil && *v < 0 {
			return errors.New(errors.ErrCodePlanetRecordInvalid, "stellar and orbital measurements must be non-negative")
		}
	}
	if p.Eccentricity != nil && (*p.Eccentricity < 0 || *p.Eccentricity >= 1) {
		return errors.New(errors.ErrCodePlanetRecordInvalid, "eccentricity must be in [0, 1)")
	}
	return nil
}

// Record projects the fields the comparison engine reads.
func (p *Planet) Record() Record {
	return Record{
		Name:            p.Name,
		Mass:            p.Mass,
		Radius:          p.Radius,
		TeqK:            p.TeqK,
		OrbitalPeriod:   p.OrbitalPeriod,
		StarType:        p.StarType,
		Atmosphere:      p.Atmosphere,
		StellarActivity: p.StellarActivity,
	}
}

// HybridInput projects the fields the hybrid habitability model reads.
func (p *Planet) HybridInput() HybridInput {
	return HybridInput{
		Name:            p.Name,
		TeqK:            p.TeqK,
		Radius:          p.Radius,
		Mass:            p.Mass,
		SemiMajorAxisAU: p.SemiMajorAxisAU,
		StarTemp:        p.StarTempK,
		StarLuminosity:  p.StarLuminosity,
	}
}

// Assess recomputes the stored habitability and returns the full score.
func (p *Planet) Assess() HybridScore {
	s := HybridHabitability(p.HybridInput())
	p.Habitability = Assessment{Score: s.Score, ESI: s.ESI, Label: s.Label}
	return s
}

// IsHabitable reports whether the stored assessment is "Potentially
// Habitable".
func (p *Planet) IsHabitable() bool {
	return p.Habitability.Label == LabelPotentiallyHabitable
}

// NormalizeName folds a planet name for lookups: NFKC, lower case, trimmed
// and with inner whitespace collapsed to one space. "KEPLER-22  B" and
// "kepler-22 b" normalize to the same key.
func NormalizeName(name string) string {
	folded := strings.ToLower(norm.NFKC.String(name))
	return strings.Join(strings.FieldsFunc(folded, unicode.IsSpace), " ")
}

//Personal.AI order the ending
