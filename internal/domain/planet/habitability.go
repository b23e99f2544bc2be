package planet

import "math"

// Comparison habitability labels.
const (
	LabelHighlyHabitable     = "Highly Habitable"
	LabelModeratelyHabitable = "Moderately Habitable"
	LabelMarginallyHabitable = "Marginally Habitable"
	LabelLowHabitability     = "Low Habitability"
)

// HabitabilityFactors are the per-factor scores, each in [0, 100].
type HabitabilityFactors struct {
	Temperature float64 `json:"temperature"`
	Radius      float64 `json:"radius"`
	Gravity     float64 `json:"gravity"`
}

// Habitability is the comparison-page score: the rounded mean of three
// proximity curves around Earth's temperature, radius and gravity.
type Habitability struct {
	Score   int                 `json:"score"`
	Label   string              `json:"label"`
	Factors HabitabilityFactors `json:"factors"`
}

const standardGravity = 9.8 // m/s²

// ComparisonHabitability scores rec against Earth. A missing input scores
// 0 for its factor. It is independent of HybridHabitability.
func ComparisonHabitability(rec Record) Habitability {
	var f HabitabilityFactors

	if c := KelvinToCelsius(rec.TeqK); c != nil {
		f.Temperature = math.Max(0, 100-math.Abs(*c-Earth().TempC)*2)
	}
	if known(rec.Radius) {
		f.Radius = math.Max(0, 100-math.Abs(*rec.Radius-1)*30)
	}
	if g := GravityInG(rec.Mass, rec.Radius); g != 0 {
		f.Gravity = math.Max(0, 100-math.Abs(g*standardGravity-standardGravity)*5)
	}

	score := int(math.Round((f.Temperature + f.Radius + f.Gravity) / 3))
	return Habitability{Score: score, Label: ComparisonLabel(score), Factors: f}
}

// ComparisonLabel maps a comparison habitability score to its label.
func ComparisonLabel(score int) string {
	switch {
	case score >= 80:
		return LabelHighlyHabitable
	case score >= 60:
		return LabelModeratelyHabitable
	case score >= 40:
		return LabelMarginallyHabitable
	default:
		return LabelLowHabitability
	}
}

//Personal.AI order the ending
