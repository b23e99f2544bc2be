package repositories

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/turtacn/ExoMetrics/internal/domain/planet"
)

func TestLikePattern(t *testing.T) {
	assert.Equal(t, "%kepler%", likePattern("kepler"))
	assert.Equal(t, `%50\%\_b\\%`, likePattern(`50%_b\`))
}

func TestBuildFilter(t *testing.T) {
	maxDist, minScore := 12.5, 60
	w := buildFilter(planet.Query{
		Search:      " trappist ",
		StarType:    "M8V",
		MaxDistance: &maxDist,
		MinScore:    &minScore,
		Names:       []string{"TRAPPIST-1  E"},
	})

	assert.Equal(t,
		"WHERE (name ILIKE $1 OR host_star ILIKE $2) AND LOWER(star_type) = LOWER($3) AND distance_pc <= $4 AND habitability >= $5 AND name_key = ANY($6)",
		w.clause())
	assert.Equal(t, []any{"%trappist%", "%trappist%", "M8V", 12.5, 60, []string{"trappist-1 e"}}, w.args)

	assert.Equal(t, "$7", w.arg(100))
}

func TestBuildFilter_Empty(t *testing.T) {
	w := buildFilter(planet.Query{Search: "   "})
	assert.Empty(t, w.clause())
	assert.Empty(t, w.args)
}

//Personal.AI order the ending
