// Package planet derives Earth-relative metrics from exoplanet records and
// holds the catalog entity they are computed from. Every function that
// derives a metric is total: missing or degenerate input yields a typed
// default (0, nil or "Unknown") and never an error.
package planet

// EarthReference is the fixed set of Earth values every comparison is made
// against.
type EarthReference struct {
	GravityG        float64 `json:"gravityG"`
	RadiusRe        float64 `json:"radiusRe"`
	MassMe          float64 `json:"massMe"`
	OrbitDays       float64 `json:"orbitDays"`
	TempC           float64 `json:"tempC"`
	TeqK            float64 `json:"teqK"`
	StarType        string  `json:"starType"`
	StarTypeLabel   string  `json:"starTypeLabel"`
	Atmosphere      string  `json:"atmosphere"`
	AtmosphereLabel string  `json:"atmosphereLabel"`
	StellarActivity string  `json:"stellarActivity"`
}

// Earth returns the reference values. The result is a copy, so callers
// cannot alter what other comparisons see.
func Earth() EarthReference {
	return EarthReference{
		GravityG:        1,
		RadiusRe:        1,
		MassMe:          1,
		OrbitDays:       365.25,
		TempC:           15,
		TeqK:            288,
		StarType:        "G",
		StarTypeLabel:   "G-type",
		Atmosphere:      "N2-O2",
		AtmosphereLabel: "Nitrogen-Oxygen",
		StellarActivity: "Normal",
	}
}

// Record returns Earth expressed as a planet record.
func (e EarthReference) Record() Record {
	return Record{
		Name:            "Earth",
		Mass:            F(e.MassMe),
		Radius:          F(e.RadiusRe),
		TeqK:            F(e.TeqK),
		OrbitalPeriod:   F(e.OrbitDays),
		StarType:        e.StarType,
		Atmosphere:      e.Atmosphere,
		StellarActivity: e.StellarActivity,
	}
}

//Personal.AI order the ending
