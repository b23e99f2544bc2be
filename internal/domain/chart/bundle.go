package chart

import (
	"math"

	"github.com/turtacn/ExoMetrics/internal/domain/planet"
)

// RadarCeiling caps the planet side of the radar, where Earth is 100.
const RadarCeiling = 200.0

type BarPoint struct {
	Metric string  `json:"metric"`
	Earth  float64 `json:"earth"`
	Planet float64 `json:"planet"`
	Unit   string  `json:"unit"`
}

type RadarPoint struct {
	Metric string  `json:"metric"`
	Earth  float64 `json:"earth"`
	Planet float64 `json:"planet"`
}

type PiePoint struct {
	Metric     string  `json:"metric"`
	Value      float64 `json:"value"`
	Difference float64 `json:"difference"`
}

type ScatterPoint struct {
	Metric     string  `json:"metric"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Difference float64 `json:"difference"`
}

// Processed carries the derived figures behind every chart of a row.
type Processed struct {
	Metric         string           `json:"metric"`
	Earth          float64          `json:"earth"`
	Planet         float64          `json:"planet"`
	Unit           string           `json:"unit"`
	Difference     float64          `json:"difference"`
	PercentageDiff *float64         `json:"percentageDiff"`
	Similarity     *float64         `json:"similarity"`
	Severity       planet.Severity  `json:"severity"`
	Direction      planet.Direction `json:"direction"`
}

// Bundle holds the data of every comparison chart for one planet.
type Bundle struct {
	Bar       []BarPoint     `json:"bar"`
	Radar     []RadarPoint   `json:"radar"`
	Pie       []PiePoint     `json:"pie"`
	Scatter   []ScatterPoint `json:"scatter"`
	Processed []Processed    `json:"processed"`
	// Table is the bar data pivoted by metric, for line and area charts.
	Table Table `json:"table"`
}

// ComparisonCharts builds the chart bundle for the numeric rows of a
// comparison. Categorical rows are skipped; unknown planet values chart
// as 0.
func ComparisonCharts(rows []planet.MetricRow) Bundle {
	b := Bundle{
		Bar:       []BarPoint{},
		Radar:     []RadarPoint{},
		Pie:       []PiePoint{},
		Scatter:   []ScatterPoint{},
		Processed: []Processed{},
	}
	var categories []string
	var earthValues, planetValues []float64

	for _, r := range rows {
		if !r.Metric.IsNumeric() {
			continue
		}
		name := r.Metric.String()
		earth, pl := finite(r.Earth.Float()), finite(r.Planet.Float())
		diff := planet.Round(math.Abs(pl-earth), 2)

		radar := 0.0
		if earth != 0 {
			radar = planet.Round(math.Max(0, math.Min(RadarCeiling, pl/earth*100)), 1)
		}
		similarity := 0.0
		if r.Similarity != nil {
			similarity = *r.Similarity
		}

		b.Bar = append(b.Bar, BarPoint{Metric: name, Earth: earth, Planet: pl, Unit: r.Unit})
		b.Radar = append(b.Radar, RadarPoint{Metric: name, Earth: 100, Planet: radar})
		b.Pie = append(b.Pie, PiePoint{Metric: name, Value: similarity, Difference: diff})
		b.Scatter = append(b.Scatter, ScatterPoint{Metric: name, X: earth, Y: pl, Difference: diff})
		b.Processed = append(b.Processed, Processed{
			Metric:         name,
			Earth:          earth,
			Planet:         pl,
			Unit:           r.Unit,
			Difference:     diff,
			PercentageDiff: r.PercentDiff,
			Similarity:     r.Similarity,
			Severity:       r.Severity,
			Direction:      r.Direction,
		})

		categories = append(categories, name)
		earthValues = append(earthValues, earth)
		planetValues = append(planetValues, pl)
	}

	b.Table = Pivot(categories, []Series{
		{Label: "Earth", Values: earthValues},
		{Label: "Planet", Values: planetValues},
	})
	return b
}

//Personal.AI order the ending
