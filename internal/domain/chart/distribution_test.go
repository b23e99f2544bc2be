package chart

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"github.com/turtacn/ExoMetrics/internal/domain/planet"
)

func TestDistribution(t *testing.T) {
	preds := []Prediction{
		{Label: "Earth-like", Score: 0.9},
		{Label: "Gas Giant", Score: 0.8},
		{Label: "Earth-like", Score: 0.7},
		{Label: "", Score: 0.1},
		{Label: "Ice World", Score: 0.4},
		{Label: "Ice World", Score: 0.5},
	}
	got := Distribution(preds, []string{"Earth-like", "Gas Giant", "Too Hot"})

	want := []Slice{
		{Label: "Earth-like", Count: 2, Percentage: 33.3},
		{Label: "Gas Giant", Count: 1, Percentage: 16.7},
		{Label: "Too Hot", Count: 0, Percentage: 0},
		{Label: "Unknown", Count: 1, Percentage: 16.7},
		{Label: "Ice World", Count: 2, Percentage: 33.3},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("distribution mismatch (-want +got):\n%s", diff)
	}
}

func TestDistribution_Empty(t *testing.T) {
	got := Distribution(nil, []string{"A", "B"})
	assert.Equal(t, []Slice{{Label: "A"}, {Label: "B"}}, got)
}

func TestHabitabilityDistribution(t *testing.T) {
	got := HabitabilityDistribution([]Scored{
		{Name: "Earth", Score: 94, Habitable: true},
		{Name: "TRAPPIST-1 e", Score: 80, Habitable: true},
		{Name: "Kepler-22 b", Score: 62, Habitable: false},
		{Name: "Proxima Cen b", Score: 30, Habitable: false},
		{Name: "Hot Jupiter", Score: 20, Habitable: false},
		{Name: "Edge", Score: 40.5, Habitable: false},
	})

	assert.Equal(t, 6, got.Total)
	assert.Equal(t, 33.3, got.HabitablePercentage)
	want := []Group{
		{Label: "Habitable", Count: 2, Percentage: 33.3, AvgScore: 87},
		{Label: "Non-Habitable", Count: 4, Percentage: 66.7, AvgScore: 38.1},
	}
	if diff := cmp.Diff(want, got.Groups); diff != "" {
		t.Errorf("groups mismatch (-want +got):\n%s", diff)
	}

	counts := make([]int, len(got.Ranges))
	for i, r := range got.Ranges {
		counts[i] = r.Count
	}
	assert.Equal(t, []int{1, 1, 1, 2, 1}, counts)
	assert.Equal(t, "81-100", got.Ranges[4].Range)
}

func TestHabitabilityDistribution_Empty(t *testing.T) {
	got := HabitabilityDistribution(nil)
	assert.Zero(t, got.Total)
	assert.Zero(t, got.HabitablePercentage)
	assert.Len(t, got.Ranges, 5)
	for _, g := range got.Groups {
		assert.Zero(t, g.AvgScore)
	}
}

func TestScoredFromPlanets(t *testing.T) {
	got := ScoredFromPlanets([]*planet.Planet{
		{Name: "A", Habitability: planet.Assessment{Score: 80, Label: planet.LabelPotentiallyHabitable}},
		nil,
		{Name: "B", Habitability: planet.Assessment{Score: 10, Label: planet.LabelUninhabitable}},
	})
	assert.Equal(t, []Scored{
		{Name: "A", Score: 80, Habitable: true},
		{Name: "B", Score: 10, Habitable: false},
	}, got)
}

//Personal.AI order the ending
