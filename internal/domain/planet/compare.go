package planet

import "math"

// Thresholds, in percent, shared by every chart that colors or ranks a
// difference from Earth.
const (
	ToleranceThreshold = 5.0
	ModerateThreshold  = 10.0
)

// Direction tells whether a planet value is above, below or near Earth's.
type Direction string

const (
	DirectionHigher Direction = "higher"
	DirectionLower  Direction = "lower"
	DirectionWithin Direction = "within"
)

// Severity ranks the size of a difference from Earth.
type Severity string

const (
	SeverityMatch       Severity = "match"
	SeverityModerate    Severity = "moderate"
	SeveritySignificant Severity = "significant"
	SeverityUnknown     Severity = "unknown"
)

func usable(p *float64) bool {
	return p != nil && *p != 0 && finite(*p)
}

// PercentDifference returns ((planet − earth) / earth) × 100 rounded to one
// decimal, or nil when either operand is nil, zero or not finite, or when
// the difference itself overflows.
func PercentDifference(planetValue, earthValue *float64) *float64 {
	if !usable(planetValue) || !usable(earthValue) {
		return nil
	}
	pd := (*planetValue - *earthValue) / *earthValue * 100
	if !finite(pd) {
		return nil
	}
	return F(Round(pd, 1))
}

// SimilarityScore returns 100 − |pd| clamped to [0, 100], or nil for nil.
func SimilarityScore(pd *float64) *float64 {
	if pd == nil {
		return nil
	}
	return F(math.Max(0, math.Min(100, 100-math.Abs(*pd))))
}

// ClassifyDirection compares pd with ±ToleranceThreshold. A nil difference
// is reported as within tolerance.
func ClassifyDirection(pd *float64) Direction {
	switch {
	case pd == nil:
		return DirectionWithin
	case *pd > ToleranceThreshold:
		return DirectionHigher
	case *pd < -ToleranceThreshold:
		return DirectionLower
	default:
		return DirectionWithin
	}
}

// ClassifySeverity buckets |pd|: up to 5 is a match, up to 10 moderate,
// anything larger significant. A nil difference is unknown.
func ClassifySeverity(pd *float64) Severity {
	if pd == nil {
		return SeverityUnknown
	}
	abs := math.Abs(*pd)
	switch {
	case abs <= ToleranceThreshold:
		return SeverityMatch
	case abs <= ModerateThreshold:
		return SeverityModerate
	default:
		return SeveritySignificant
	}
}

//Personal.AI order the ending
