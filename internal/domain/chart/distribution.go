package chart

import (
	"strings"

	"github.com/turtacn/ExoMetrics/internal/domain/planet"
)

// Prediction is one labeled, scored item of a distribution.
type Prediction struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Slice is one class of a pie distribution.
type Slice struct {
	Label      string  `json:"label"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

func percent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return planet.Round(float64(n)/float64(total)*100, 1)
}

// Distribution counts predictions per label. Every class in classes is
// reported, in that order, even at count 0; labels not in classes follow in
// first-seen order. Blank labels count as "Unknown". An empty input yields
// 0% for every class.
func Distribution(preds []Prediction, classes []string) []Slice {
	counts := make(map[string]int, len(classes))
	order := make([]string, 0, len(classes))
	seen := make(map[string]bool, len(classes))
	for _, c := range classes {
		if !seen[c] {
			seen[c] = true
			order = append(order, c)
		}
	}
	for _, p := range preds {
		label := strings.TrimSpace(p.Label)
		if label == "" {
			label = planet.UnknownText
		}
		if !seen[label] {
			seen[label] = true
			order = append(order, label)
		}
		counts[label]++
	}

	out := make([]Slice, len(order))
	for i, label := range order {
		out[i] = Slice{Label: label, Count: counts[label], Percentage: percent(counts[label], len(preds))}
	}
	return out
}

// Scored is a planet's habitability outcome for the distribution chart.
type Scored struct {
	Name      string  `json:"name"`
	Score     float64 `json:"score"`
	Habitable bool    `json:"habitable"`
}

// Group summarizes one side of the habitable split.
type Group struct {
	Label      string  `json:"label"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
	AvgScore   float64 `json:"avgScore"`
}

// RangeBucket counts scores within [Min, Max].
type RangeBucket struct {
	Range string `json:"range"`
	Min   int    `json:"min"`
	Max   int    `json:"max"`
	Count int    `json:"count"`
}

// HabitabilitySummary is the habitability distribution over a set of
// planets.
type HabitabilitySummary struct {
	Total               int           `json:"total"`
	Groups              []Group       `json:"groups"`
	HabitablePercentage float64       `json:"habitablePercentage"`
	Ranges              []RangeBucket `json:"ranges"`
}

func newRanges() []RangeBucket {
	return []RangeBucket{
		{Range: "0-20", Min: 0, Max: 20},
		{Range: "21-40", Min: 21, Max: 40},
		{Range: "41-60", Min: 41, Max: 60},
		{Range: "61-80", Min: 61, Max: 80},
		{Range: "81-100", Min: 81, Max: 100},
	}
}

// HabitabilityDistribution splits scores into habitable and non-habitable
// groups and buckets them into the five score ranges. A score belongs to
// the first bucket whose Max it does not exceed.
func HabitabilityDistribution(scores []Scored) HabitabilitySummary {
	var habitable, other int
	var habitableSum, otherSum float64
	ranges := newRanges()

	for _, s := range scores {
		if s.Habitable {
			habitable++
			habitableSum += s.Score
		} else {
			other++
			otherSum += s.Score
		}
		i := len(ranges) - 1
		for j, r := range ranges {
			if s.Score <= float64(r.Max) {
				i = j
				break
			}
		}
		ranges[i].Count++
	}

	avg := func(sum float64, n int) float64 {
		if n == 0 {
			return 0
		}
		return planet.Round(sum/float64(n), 1)
	}

	return HabitabilitySummary{
		Total: len(scores),
		Groups: []Group{
			{Label: "Habitable", Count: habitable, Percentage: percent(habitable, len(scores)), AvgScore: avg(habitableSum, habitable)},
			{Label: "Non-Habitable", Count: other, Percentage: percent(other, len(scores)), AvgScore: avg(otherSum, other)},
		},
		HabitablePercentage: percent(habitable, len(scores)),
		Ranges:              ranges,
	}
}

// ScoredFromPlanets uses each planet's stored hybrid assessment.
func ScoredFromPlanets(planets []*planet.Planet) []Scored {
	out := make([]Scored, 0, len(planets))
	for _, p := range planets {
		if p == nil {
			continue
		}
		out = append(out, Scored{
			Name:      p.Name,
			Score:     float64(p.Habitability.Score),
			Habitable: p.IsHabitable(),
		})
	}
	return out
}

//Personal.AI order the ending
