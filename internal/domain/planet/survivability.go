package planet

import (
	"math"
	"strings"

	"github.com/turtacn/ExoMetrics/pkg/errors"
)

// SurvivalMode selects whose survival the simulation scores.
type SurvivalMode string

const (
	ModeHuman        SurvivalMode = "human"
	ModeMicrobial    SurvivalMode = "microbial"
	ModeTerraforming SurvivalMode = "terraforming"
)

// ParseSurvivalMode accepts the mode names case-insensitively. An empty
// name is human.
func ParseSurvivalMode(s string) (SurvivalMode, error) {
	switch SurvivalMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeHuman:
		return ModeHuman, nil
	case ModeMicrobial:
		return ModeMicrobial, nil
	case ModeTerraforming:
		return ModeTerraforming, nil
	}
	return "", errors.Newf(errors.ErrCodeBadRequest, "unknown survival mode %q", s).
		WithDetail("expected human, microbial or terraforming")
}

// Radiation is the surface radiation level.
type Radiation string

const (
	RadiationLow     Radiation = "low"
	RadiationMedium  Radiation = "medium"
	RadiationHigh    Radiation = "high"
	RadiationUnknown Radiation = "unknown"
)

// Survival status labels.
const (
	StatusSuitable    = "Suitable for Life"
	StatusChallenging = "Challenging but Possible"
	StatusHostile     = "Extremely Hostile"
)

// SurvivalParams are the environmental conditions of a simulation. Gases
// are percentages of the atmosphere, Water is surface water coverage in
// [0, 1], Gravity is in g and Pressure in bar.
type SurvivalParams struct {
	TempC      float64   `json:"tempC" yaml:"tempC"`
	Water      float64   `json:"water" yaml:"water"`
	O2         float64   `json:"o2" yaml:"o2"`
	CO2        float64   `json:"co2" yaml:"co2"`
	Nitrogen   float64   `json:"nitrogen" yaml:"nitrogen"`
	ToxicGases float64   `json:"toxicGases" yaml:"toxicGases"`
	Radiation  Radiation `json:"radiation" yaml:"radiation"`
	Gravity    float64   `json:"gravity" yaml:"gravity"`
	Pressure   float64   `json:"pressure" yaml:"pressure"`
	Elements   []string  `json:"elements,omitempty" yaml:"elements"`
}

// SurvivalOverrides replaces individual fields of a SurvivalParams. Nil
// fields keep the base value.
type SurvivalOverrides struct {
	TempC      *float64  `json:"tempC,omitempty"`
	Water      *float64  `json:"water,omitempty"`
	O2         *float64  `json:"o2,omitempty"`
	CO2        *float64  `json:"co2,omitempty"`
	Nitrogen   *float64  `json:"nitrogen,omitempty"`
	ToxicGases *float64  `json:"toxicGases,omitempty"`
	Radiation  Radiation `json:"radiation,omitempty"`
	Gravity    *float64  `json:"gravity,omitempty"`
	Pressure   *float64  `json:"pressure,omitempty"`
	Elements   []string  `json:"elements,omitempty"`
}

// Apply returns base with every set override in place.
func (o SurvivalOverrides) Apply(base SurvivalParams) SurvivalParams {
	set := func(dst *float64, v *float64) {
		if v != nil {
			*dst = *v
		}
	}
	set(&base.TempC, o.TempC)
	set(&base.Water, o.Water)
	set(&base.O2, o.O2)
	set(&base.CO2, o.CO2)
	set(&base.Nitrogen, o.Nitrogen)
	set(&base.ToxicGases, o.ToxicGases)
	set(&base.Gravity, o.Gravity)
	set(&base.Pressure, o.Pressure)
	if o.Radiation != "" {
		base.Radiation = o.Radiation
	}
	if len(o.Elements) > 0 {
		base.Elements = o.Elements
	}
	return base
}

var lifeElements = []string{"C", "H", "O", "N", "P", "S"}

// HistoricalEarth returns present-day Earth conditions.
func HistoricalEarth() SurvivalParams {
	return SurvivalParams{
		TempC:      15,
		Water:      0.7,
		O2:         21,
		CO2:        0.03,
		Nitrogen:   78,
		ToxicGases: 0,
		Radiation:  RadiationLow,
		Gravity:    1,
		Pressure:   1,
		Elements:   append([]string(nil), lifeElements...),
	}
}

// SurvivalParamsFor derives simulation inputs from a catalog planet.
// Temperature and gravity come from its measurements when known; the
// atmosphere is not measured and takes Earth-like defaults with water at
// one half.
func SurvivalParamsFor(p *Planet) SurvivalParams {
	params := HistoricalEarth()
	params.Water = 0.5
	params.CO2 = 0.04
	if p == nil {
		return params
	}
	if c := KelvinToCelsius(p.TeqK); c != nil {
		params.TempC = *c
	}
	if g := GravityInG(p.Mass, p.Radius); g > 0 {
		params.Gravity = g
	}
	return params
}

func (p SurvivalParams) finite() bool {
	for _, v := range []float64{p.TempC, p.Water, p.O2, p.CO2, p.Nitrogen, p.ToxicGases, p.Gravity, p.Pressure} {
		if !finite(v) {
			return false
		}
	}
	return true
}

// Validate rejects non-finite inputs and negative amounts.
func (p SurvivalParams) Validate() error {
	fields := []struct {
		name     string
		v        float64
		negative bool
	}{
		{"tempC", p.TempC, true},
		{"water", p.Water, false},
		{"o2", p.O2, false},
		{"co2", p.CO2, false},
		{"nitrogen", p.Nitrogen, false},
		{"toxicGases", p.ToxicGases, false},
		{"gravity", p.Gravity, false},
		{"pressure", p.Pressure, false},
	}
	for _, f := range fields {
		if !finite(f.v) {
			return errors.Newf(errors.ErrCodePlanetRecordInvalid, "%s must be a finite number", f.name)
		}
		if !f.negative && f.v < 0 {
			return errors.Newf(errors.ErrCodePlanetRecordInvalid, "%s must not be negative", f.name)
		}
	}
	switch p.Radiation {
	case "", RadiationLow, RadiationMedium, RadiationHigh, RadiationUnknown:
		return nil
	}
	return errors.Newf(errors.ErrCodePlanetRecordInvalid, "unknown radiation level %q", p.Radiation)
}

// SurvivalBreakdown holds each factor on a 0-100 scale. Microbial
// radiation tolerance can lift the radiation factor to 110.
type SurvivalBreakdown struct {
	Temp       float64 `json:"temp"`
	Water      float64 `json:"water"`
	Atmosphere float64 `json:"atmosphere"`
	Gravity    float64 `json:"gravity"`
	Radiation  float64 `json:"radiation"`
	Pressure   float64 `json:"pressure"`
}

type SurvivalResult struct {
	Mode           SurvivalMode      `json:"mode"`
	Score          int               `json:"score"`
	Status         string            `json:"status"`
	Breakdown      SurvivalBreakdown `json:"breakdown"`
	Recommendation string            `json:"recommendation"`
}

// Factor weights. They sum to 1.
const (
	weightTemp       = 0.25
	weightWater      = 0.25
	weightAtmosphere = 0.20
	weightGravity    = 0.10
	weightRadiation  = 0.10
	weightPressure   = 0.10
)

// Survivability scores params for mode. The score starts at 100 and loses
// (100 - factor) × weight per factor, then is clamped to [0, 100] and
// rounded. It is unrelated to ComparisonHabitability and HybridHabitability.
// Non-finite inputs score 0.
func Survivability(params SurvivalParams, mode SurvivalMode) SurvivalResult {
	if !params.finite() {
		return survivalResult(mode, 0, SurvivalBreakdown{})
	}
	b := SurvivalBreakdown{
		Temp:       tempFactor(params.TempC, mode),
		Water:      waterFactor(params.Water, mode),
		Atmosphere: atmosphereFactor(params.O2, params.ToxicGases),
		Gravity:    gravityFactor(params.Gravity),
		Radiation:  radiationFactor(params.Radiation, mode),
		Pressure:   pressureFactor(params.Pressure),
	}
	score := 100 -
		(100-b.Temp)*weightTemp -
		(100-b.Water)*weightWater -
		(100-b.Atmosphere)*weightAtmosphere -
		(100-b.Gravity)*weightGravity -
		(100-b.Radiation)*weightRadiation -
		(100-b.Pressure)*weightPressure
	return survivalResult(mode, math.Max(0, math.Min(100, score)), b)
}

func survivalResult(mode SurvivalMode, score float64, b SurvivalBreakdown) SurvivalResult {
	res := SurvivalResult{Mode: mode, Score: int(math.Round(score)), Breakdown: b}
	switch {
	case score >= 75:
		res.Status = StatusSuitable
		res.Recommendation = "Humans may survive with minimal protection."
	case score >= 40:
		res.Status = StatusChallenging
		res.Recommendation = "Humans may survive with protective suits & domes."
	default:
		res.Status = StatusHostile
		res.Recommendation = "Life as we know it cannot survive here."
	}
	return res
}

// ColonizationDifficulty is 100 - score, plus 10 above 1.5 g.
func ColonizationDifficulty(r SurvivalResult, gravity float64) int {
	d := 100 - r.Score
	if gravity > 1.5 {
		d += 10
	}
	if d < 0 {
		return 0
	}
	return d
}

func tempFactor(c float64, mode SurvivalMode) float64 {
	switch mode {
	case ModeMicrobial:
		if c < -80 || c > 120 {
			return 0
		}
		return 80
	case ModeTerraforming:
		return math.Max(0, 100-math.Abs(c-22)*3)
	default:
		switch {
		case c < -50 || c > 60:
			return 0
		case c < -20 || c > 50:
			return 30
		case c < 0 || c > 40:
			return 70
		}
		return 100
	}
}

// Below 10% coverage nothing survives.
func waterFactor(w float64, mode SurvivalMode) float64 {
	f := math.Min(100, w*100)
	if f < 10 {
		return 0
	}
	if mode == ModeMicrobial {
		f = math.Min(100, w*120)
	}
	return f
}

func atmosphereFactor(o2, toxic float64) float64 {
	f := 100.0
	if o2 < 10 || o2 > 30 {
		f -= 50
	}
	if toxic > 2 {
		f -= toxic * 20
	}
	return math.Max(0, f)
}

func gravityFactor(g float64) float64 {
	switch {
	case g < 0.5 || g > 2:
		return 30
	case g < 0.8 || g > 1.2:
		return 70
	}
	return 100
}

func radiationFactor(r Radiation, mode SurvivalMode) float64 {
	f := 100.0
	switch r {
	case RadiationMedium:
		f = 60
	case RadiationHigh:
		f = 20
	}
	if mode == ModeMicrobial {
		f += 10
	}
	return f
}

func pressureFactor(p float64) float64 {
	switch {
	case p < 0.2 || p > 5:
		return 20
	case p < 0.5 || p > 2:
		return 60
	}
	return 100
}

//Personal.AI order the ending
