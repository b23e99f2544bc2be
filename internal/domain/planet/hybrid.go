package planet

import (
	"math"
	"strings"
	"unicode/utf16"
)

// Hybrid habitability labels.
const (
	LabelPotentiallyHabitable = "Potentially Habitable"
	LabelMarginal             = "Marginal"
	LabelUninhabitable        = "Uninhabitable"
	LabelUnknown              = "Unknown"
)

const (
	sunTeffK         = 5780.0
	noStellarScore   = 10
	maxESIPenalty    = 40
	maxBasePenalty   = 30
	maxExtraPenalty  = 15
	nonEarthScoreCap = 99
	incompleteESICap = 95
)

// ESI term weights.
const (
	esiWeightRadius  = 0.57
	esiWeightDensity = 1.07
	esiWeightEscape  = 0.70
	esiWeightTemp    = 5.58
)

// HybridInput carries what the hybrid model needs. StarTemp and
// StarLuminosity default to the Sun when nil; a non-positive value means
// the stellar parameters are unusable.
type HybridInput struct {
	Name            string
	TeqK            *float64
	Radius          *float64
	Mass            *float64
	Insolation      *float64
	SemiMajorAxisAU *float64
	StarTemp        *float64 // K
	StarLuminosity  *float64 // L☉, linear
}

// HabitableZone is the conservative Kopparapu et al. (2013) zone, in AU.
type HabitableZone struct {
	InnerAU float64 `json:"innerAU"`
	OuterAU float64 `json:"outerAU"`
}

// Contains reports whether a lies inside the zone.
func (z HabitableZone) Contains(a float64) bool {
	return a >= z.InnerAU && a <= z.OuterAU
}

type HybridBreakdown struct {
	Reason          string         `json:"reason,omitempty"`
	TempScore       float64        `json:"tempScore"`
	OrbitScore      float64        `json:"orbitScore"`
	RadiusScore     float64        `json:"radiusScore"`
	MassScore       float64        `json:"massScore"`
	InsolationScore float64        `json:"insolationScore"`
	Zone            *HabitableZone `json:"habitableZone,omitempty"`
	BaseScore       int            `json:"baseHabitability"`
	ESIFloat        float64        `json:"esiFloat"`
	ESIMissing      []string       `json:"esiMissing,omitempty"`
	Noise           float64        `json:"noise"`
}

// HybridScore is the catalog habitability assessment.
type HybridScore struct {
	Score     int             `json:"score"`
	ESI       int             `json:"esi"`
	Label     string          `json:"label"`
	Breakdown HybridBreakdown `json:"breakdown"`
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// HabitableZoneFor computes the zone for a star of the given linear
// luminosity and effective temperature. ok is false when either is not
// positive or the flux polynomial leaves its valid range.
func HabitableZoneFor(luminosity, teffK float64) (zone HabitableZone, ok bool) {
	if !(luminosity > 0) || !(teffK > 0) {
		return HabitableZone{}, false
	}
	t := teffK - sunTeffK
	seff := func(base float64, c [4]float64) float64 {
		return base + c[0]*t + c[1]*t*t + c[2]*t*t*t + c[3]*t*t*t*t
	}
	inner := seff(1.014, [4]float64{8.177e-5, 1.706e-9, -1.814e-12, -1.975e-16})
	outer := seff(0.343, [4]float64{5.447e-5, 1.527e-9, -2.170e-12, -3.828e-16})
	if inner <= 0 || outer <= 0 {
		return HabitableZone{}, false
	}
	return HabitableZone{
		InnerAU: math.Sqrt(luminosity / inner),
		OuterAU: math.Sqrt(luminosity / outer),
	}, true
}

// bandScore is 100 inside [idealMin, idealMax], falls linearly to 0 at
// falloffMin and falloffMax, and is 0 beyond. Unknown values score 0.
func bandScore(v *float64, idealMin, idealMax, falloffMin, falloffMax float64) float64 {
	if v == nil || math.IsNaN(*v) {
		return 0
	}
	x := *v
	switch {
	case x >= idealMin && x <= idealMax:
		return 100
	case x < idealMin:
		if x <= falloffMin {
			return 0
		}
		return (x - falloffMin) / (idealMin - falloffMin) * 100
	default:
		if x >= falloffMax {
			return 0
		}
		return (falloffMax - x) / (falloffMax - idealMax) * 100
	}
}

func isEarthName(name string) bool {
	n := strings.ToLower(strings.TrimSpace(name))
	return n == "earth" || n == "sol"
}

type esiResult struct {
	percent int
	float   float64
	missing []string
}

// EarthSimilarityIndex returns the ESI (0..100) of in. Density and escape
// velocity are derived from mass and radius.
func EarthSimilarityIndex(in HybridInput) int {
	return esi(in).percent
}

func esi(in HybridInput) esiResult {
	term := func(x, xe, w float64) float64 {
		if x+xe == 0 {
			return 0
		}
		return math.Pow(math.Max(0, 1-math.Abs(x-xe)/(x+xe)), w)
	}
	orOne := func(p *float64) float64 {
		if p == nil {
			return 1
		}
		return *p
	}

	var missing []string
	radius := in.Radius
	if !known(radius) {
		radius = nil
		missing = append(missing, "radius")
	}
	density := DensityRelative(in.Mass, in.Radius)
	if density == nil {
		missing = append(missing, "density")
	}
	escape := EscapeVelocityRelative(in.Mass, in.Radius)
	if escape == nil {
		missing = append(missing, "escapeVelocity")
	}
	tempRatio := 1.0
	if known(in.TeqK) {
		tempRatio = *in.TeqK / Earth().TeqK
	} else {
		missing = append(missing, "temperature")
	}

	f := term(orOne(radius), 1, esiWeightRadius) *
		term(orOne(density), 1, esiWeightDensity) *
		term(orOne(escape), 1, esiWeightEscape) *
		term(tempRatio, 1, esiWeightTemp)

	percent := math.Round(clamp(f*100, 0, 100))
	if len(missing) > 0 {
		penalty := math.Min(maxESIPenalty, float64(len(missing)*10))
		percent = math.Round(clamp(percent-penalty, 0, 100))
	}
	if !isEarthName(in.Name) {
		if percent >= 100 {
			percent = nonEarthScoreCap
		}
		if len(missing) > 0 && percent > incompleteESICap {
			percent = incompleteESICap
		}
	}
	return esiResult{percent: int(percent), float: f, missing: missing}
}

// nameHash folds name into [0, 1). The fold uses 32-bit wrap-around on
// the shifted term over UTF-16 code units, so a given name always maps to
// the same value.
func nameHash(name string) float64 {
	h := 0.0
	for _, c := range utf16.Encode([]rune(name)) {
		shifted := int32(int64(h)) << 5
		h = float64(shifted) - h + float64(c)
	}
	return math.Abs(math.Mod(h, 1000)) / 1000
}

// nameNoise is a deterministic jitter derived from the planet name.
func nameNoise(name string) float64 {
	seed := nameHash(name)
	return math.Mod(math.Sin(seed*12.9898)*43758.5453, 1)*5 - 2.5
}

// HybridHabitability blends a weighted band score (temperature, orbit
// within the habitable zone, radius, mass, insolation) with the ESI. Only
// a planet named Earth (or Sol) can reach 100.
func HybridHabitability(in HybridInput) HybridScore {
	if strings.TrimSpace(in.Name) == "" {
		in.Name = UnknownText
	}
	teff, lum := sunTeffK, 1.0
	if in.StarTemp != nil {
		teff = *in.StarTemp
	}
	if in.StarLuminosity != nil {
		lum = *in.StarLuminosity
	}

	zone, ok := HabitableZoneFor(lum, teff)
	if !ok {
		e := esi(in)
		return HybridScore{
			Score: noStellarScore,
			ESI:   e.percent,
			Label: LabelUnknown,
			Breakdown: HybridBreakdown{
				Reason:     "missing stellar data",
				ESIFloat:   e.float,
				ESIMissing: e.missing,
			},
		}
	}

	var orbit float64
	if known(in.SemiMajorAxisAU) {
		a := *in.SemiMajorAxisAU
		switch {
		case a < zone.InnerAU*0.5 || a > zone.OuterAU*1.5:
			orbit = 0
		case zone.Contains(a):
			orbit = 100
		default:
			delta := math.Min(math.Abs(a-zone.InnerAU), math.Abs(a-zone.OuterAU))
			orbit = clamp(100-delta*200, 0, 100)
		}
	}

	teq, radius, mass := in.TeqK, in.Radius, in.Mass
	if (known(teq) && (*teq > 500 || *teq < 150)) || (known(radius) && (*radius > 3 || *radius < 0.3)) {
		e := esi(in)
		return HybridScore{
			Score: 0,
			ESI:   e.percent,
			Label: LabelUninhabitable,
			Breakdown: HybridBreakdown{
				Reason:     "extreme temperature or unsuitable size",
				OrbitScore: orbit,
				Zone:       &zone,
				ESIFloat:   e.float,
				ESIMissing: e.missing,
			},
		}
	}

	insolation := in.Insolation
	if insolation == nil {
		insolation = Insolation(F(lum), in.SemiMajorAxisAU)
	}

	b := HybridBreakdown{
		TempScore:       bandScore(teq, 250, 320, 180, 380),
		OrbitScore:      orbit,
		RadiusScore:     bandScore(radius, 0.8, 1.8, 0.5, 2.5),
		MassScore:       bandScore(mass, 0.8, 5, 0.5, 10),
		InsolationScore: bandScore(insolation, 0.35, 1.7, 0.2, 2.5),
		Zone:            &zone,
	}

	basePenalty := 0.0
	for _, p := range []*float64{radius, mass, teq} {
		if !known(p) {
			basePenalty += 10
		}
	}
	basePenalty = math.Min(maxBasePenalty, basePenalty)

	raw := 0.35*b.TempScore + 0.25*b.OrbitScore + 0.15*b.RadiusScore + 0.15*b.MassScore + 0.10*b.InsolationScore
	b.BaseScore = int(math.Round(clamp(raw-raw*basePenalty/100, 0, 100)))

	e := esi(in)
	b.ESIFloat, b.ESIMissing = e.float, e.missing
	esiPercent := e.percent

	noise := nameNoise(in.Name)
	b.Noise = Round(noise, 2)
	combined := math.Round(clamp(float64(b.BaseScore)*0.6+float64(esiPercent)*0.4+noise, 0, 100))

	if !isEarthName(in.Name) {
		if esiPercent >= 100 {
			esiPercent = nonEarthScoreCap
		}
		if combined >= 100 {
			combined = nonEarthScoreCap
		}
		if len(e.missing) > 0 || basePenalty > 0 {
			extra := math.Min(maxExtraPenalty, math.Ceil(float64(len(e.missing))*7+basePenalty/3))
			combined = math.Round(clamp(combined-extra, 0, nonEarthScoreCap))
		}
	}

	score := int(combined)
	return HybridScore{Score: score, ESI: esiPercent, Label: HybridLabel(score), Breakdown: b}
}

// HybridLabel maps a hybrid score to its label.
func HybridLabel(score int) string {
	switch {
	case score >= 70:
		return LabelPotentiallyHabitable
	case score >= 40:
		return LabelMarginal
	default:
		return LabelUninhabitable
	}
}

//Personal.AI order the ending
