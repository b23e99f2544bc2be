package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/ExoMetrics/internal/application/comparison"
	"github.com/turtacn/ExoMetrics/internal/domain/chart"
)

// CompareHandler serves ad-hoc comparisons and the chart endpoints.
type CompareHandler struct {
	compare comparison.Service
}

func NewCompareHandler(cmp comparison.Service) *CompareHandler {
	return &CompareHandler{compare: cmp}
}

// Compare handles POST /compare with a comparison.Request body.
func (h *CompareHandler) Compare(c *gin.Context) {
	var req comparison.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid comparison request: %v", err)
		return
	}
	res, err := h.compare.Compare(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// ComparisonCharts handles POST /charts/comparison.
func (h *CompareHandler) ComparisonCharts(c *gin.Context) {
	var req comparison.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid comparison request: %v", err)
		return
	}
	b, err := h.compare.Charts(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// Survivability handles POST /survivability with a
// comparison.SurvivalRequest body.
func (h *CompareHandler) Survivability(c *gin.Context) {
	var req comparison.SurvivalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid survivability request: %v", err)
		return
	}
	rep, err := h.compare.Survivability(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rep)
}

// PivotRequest pivots either categories with series, or pairs.
type PivotRequest struct {
	Categories []string       `json:"categories"`
	Series     []chart.Series `json:"series"`
	Points     []chart.Pair   `json:"points"`
	SeriesA    string         `json:"seriesA"`
	SeriesB    string         `json:"seriesB"`
}

// Pivot handles POST /charts/pivot.
func (h *CompareHandler) Pivot(c *gin.Context) {
	var req PivotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid pivot request: %v", err)
		return
	}
	switch {
	case len(req.Points) > 0:
		if req.SeriesA == "" || req.SeriesB == "" {
			badRequest(c, "seriesA and seriesB are required with points")
			return
		}
		c.JSON(http.StatusOK, chart.PivotPairs(req.Points, req.SeriesA, req.SeriesB))
	default:
		c.JSON(http.StatusOK, chart.Pivot(req.Categories, req.Series))
	}
}

type DistributionRequest struct {
	Predictions []chart.Prediction `json:"predictions"`
	Classes     []string           `json:"classes"`
}

// Distribution handles POST /charts/distribution.
func (h *CompareHandler) Distribution(c *gin.Context) {
	var req DistributionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid distribution request: %v", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"slices": h.compare.ClassDistribution(req.Predictions, req.Classes)})
}

// HabitabilityDistribution handles GET /habitability/distribution with the
// planet list filters.
func (h *CompareHandler) HabitabilityDistribution(c *gin.Context) {
	q, err := parsePlanetQuery(c)
	if err != nil {
		respondError(c, err)
		return
	}
	sum, err := h.compare.Distribution(c.Request.Context(), q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sum)
}

//Personal.AI order the ending
