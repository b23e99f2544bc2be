package planet

import (
	"math"
	"strings"

	"github.com/turtacn/ExoMetrics/pkg/errors"
)

// UnknownText is the sentinel shown for categorical fields with no data.
const UnknownText = "Unknown"

// Record is a planet as delivered by an external source. Every field is
// optional; a nil pointer or empty string means "unknown".
type Record struct {
	Name            string   `json:"name,omitempty" yaml:"name"`
	Mass            *float64 `json:"mass,omitempty" yaml:"mass"`
	Radius          *float64 `json:"radius,omitempty" yaml:"radius"`
	TeqK            *float64 `json:"teqK,omitempty" yaml:"teqK"`
	OrbitalPeriod   *float64 `json:"orbitalPeriod,omitempty" yaml:"orbitalPeriod"`
	StarType        string   `json:"starType,omitempty" yaml:"starType"`
	Atmosphere      string   `json:"atmosphere,omitempty" yaml:"atmosphere"`
	StellarActivity string   `json:"stellarActivity,omitempty" yaml:"stellarActivity"`
}

// F returns a pointer to v.
func F(v float64) *float64 { return &v }

// known reports whether p holds a usable, strictly positive number.
func known(p *float64) bool {
	return p != nil && !math.IsNaN(*p) && !math.IsInf(*p, 0) && *p > 0
}

// Validate rejects records that cannot describe a real planet: negative or
// non-finite measurements. Missing values are fine. Derivation functions do
// not call Validate; it exists for inputs accepted over the API.
func (r Record) Validate() error {
	if len(r.Name) > 200 {
		return errors.New(errors.ErrCodePlanetNameInvalid, "planet name exceeds 200 characters")
	}
	fields := []struct {
		name string
		v    *float64
	}{
		{"mass", r.Mass},
		{"radius", r.Radius},
		{"teqK", r.TeqK},
		{"orbitalPeriod", r.OrbitalPeriod},
	}
	for _, f := range fields {
		if f.v == nil {
			continue
		}
		if math.IsNaN(*f.v) || math.IsInf(*f.v, 0) || *f.v < 0 {
			return errors.Newf(errors.ErrCodePlanetRecordInvalid, "%s must be a finite, non-negative number", f.name)
		}
	}
	return nil
}

// text returns s trimmed, or UnknownText when empty.
func text(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return UnknownText
	}
	return s
}

//Personal.AI order the ending
