package planet

import (
	"fmt"
	"strings"

	"github.com/turtacn/ExoMetrics/pkg/errors"
)

// Metric is one of the fixed comparison metrics. The declaration order is
// the canonical display order.
type Metric int

const (
	MetricGravity Metric = iota
	MetricTemp
	MetricOrbit
	MetricRadius
	MetricMass
	MetricStarType
	MetricAtmosphere
	MetricStellarActivity

	metricCount
)

type metricDef struct {
	name    string
	unit    string
	numeric bool
	earth   func(EarthReference) Value
	planet  func(Record) Value
	// matches reports, for categorical metrics, whether the planet shares
	// Earth's category.
	matches func(EarthReference, string) bool
}

var metricDefs = [metricCount]metricDef{
	MetricGravity: {
		name: "Gravity", unit: "g", numeric: true,
		earth:  func(e EarthReference) Value { return Number(e.GravityG) },
		planet: func(r Record) Value { return Number(GravityInG(r.Mass, r.Radius)) },
	},
	MetricTemp: {
		name: "Temp", unit: "°C", numeric: true,
		earth:  func(e EarthReference) Value { return Number(e.TempC) },
		planet: func(r Record) Value { return OptionalNumber(KelvinToCelsius(r.TeqK)) },
	},
	MetricOrbit: {
		name: "Orbit", unit: "days", numeric: true,
		earth:  func(e EarthReference) Value { return Number(e.OrbitDays) },
		planet: func(r Record) Value { return knownNumber(r.OrbitalPeriod) },
	},
	MetricRadius: {
		name: "Radius", unit: "R⊕", numeric: true,
		earth:  func(e EarthReference) Value { return Number(e.RadiusRe) },
		planet: func(r Record) Value { return knownNumber(r.Radius) },
	},
	MetricMass: {
		name: "Mass", unit: "M⊕", numeric: true,
		earth:  func(e EarthReference) Value { return Number(e.MassMe) },
		planet: func(r Record) Value { return knownNumber(r.Mass) },
	},
	MetricStarType: {
		name:   "Star Type",
		earth:  func(e EarthReference) Value { return Text(e.StarTypeLabel) },
		planet: func(r Record) Value { return Text(r.StarType) },
		matches: func(e EarthReference, s string) bool {
			return strings.EqualFold(s, e.StarType) || strings.EqualFold(s, e.StarTypeLabel)
		},
	},
	MetricAtmosphere: {
		name:   "Atmosphere",
		earth:  func(e EarthReference) Value { return Text(e.AtmosphereLabel) },
		planet: func(r Record) Value { return Text(r.Atmosphere) },
		matches: func(e EarthReference, s string) bool {
			return strings.EqualFold(s, e.Atmosphere) || strings.EqualFold(s, e.AtmosphereLabel)
		},
	},
	MetricStellarActivity: {
		name:   "Stellar Activity",
		earth:  func(e EarthReference) Value { return Text(e.StellarActivity) },
		planet: func(r Record) Value { return Text(r.StellarActivity) },
		matches: func(e EarthReference, s string) bool {
			return strings.EqualFold(s, e.StellarActivity)
		},
	},
}

func knownNumber(p *float64) Value {
	if !known(p) {
		return Unknown()
	}
	return Number(*p)
}

// AllMetrics returns every metric in canonical order.
func AllMetrics() []Metric {
	out := make([]Metric, 0, metricCount)
	for m := Metric(0); m < metricCount; m++ {
		out = append(out, m)
	}
	return out
}

func (m Metric) Valid() bool { return m >= 0 && m < metricCount }

// String returns the display name, e.g. "Star Type".
func (m Metric) String() string {
	if !m.Valid() {
		return fmt.Sprintf("Metric(%d)", int(m))
	}
	return metricDefs[m].name
}

func (m Metric) Unit() string {
	if !m.Valid() {
		return ""
	}
	return metricDefs[m].unit
}

func (m Metric) IsNumeric() bool {
	return m.Valid() && metricDefs[m].numeric
}

// EarthValue returns Earth's value for m.
func (m Metric) EarthValue(e EarthReference) Value {
	if !m.Valid() {
		return Unknown()
	}
	return metricDefs[m].earth(e)
}

// PlanetValue returns the planet's value for m.
func (m Metric) PlanetValue(r Record) Value {
	if !m.Valid() {
		return Unknown()
	}
	return metricDefs[m].planet(r)
}

func (m Metric) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, errors.Newf(errors.ErrCodeInvalidMetric, "invalid metric %d", int(m))
	}
	return []byte(m.String()), nil
}

func (m *Metric) UnmarshalText(b []byte) error {
	parsed, err := ParseMetric(string(b))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

func foldName(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '_', '-':
			return -1
		}
		return r
	}, strings.ToLower(strings.TrimSpace(s)))
}

// ParseMetric accepts a display name in any case, with or without spaces,
// underscores or hyphens: "Star Type", "star_type" and "STARTYPE" all parse.
// "Temperature" is accepted for Temp and "Orbital Period" for Orbit.
func ParseMetric(s string) (Metric, error) {
	key := foldName(s)
	switch key {
	case "temperature":
		return MetricTemp, nil
	case "orbitalperiod":
		return MetricOrbit, nil
	}
	for m := Metric(0); m < metricCount; m++ {
		if foldName(metricDefs[m].name) == key {
			return m, nil
		}
	}
	return 0, errors.Newf(errors.ErrCodeInvalidMetric, "unknown metric %q", s)
}

// ParseMetrics parses every name and fails on the first unknown one.
func ParseMetrics(names []string) ([]Metric, error) {
	out := make([]Metric, 0, len(names))
	for _, n := range names {
		if strings.TrimSpace(n) == "" {
			continue
		}
		m, err := ParseMetric(n)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

//Personal.AI order the ending
