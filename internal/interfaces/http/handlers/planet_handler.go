package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/ExoMetrics/internal/application/catalog"
	"github.com/turtacn/ExoMetrics/internal/application/comparison"
	"github.com/turtacn/ExoMetrics/internal/domain/planet"
	"github.com/turtacn/ExoMetrics/internal/infrastructure/monitoring/logging"
)

// PlanetHandler serves the catalog under /api/v1/planets.
type PlanetHandler struct {
	catalog catalog.Service
	compare comparison.Service
	logger  logging.Logger
}

func NewPlanetHandler(cat catalog.Service, cmp comparison.Service, logger logging.Logger) *PlanetHandler {
	return &PlanetHandler{catalog: cat, compare: cmp, logger: logger}
}

// List handles GET /planets.
func (h *PlanetHandler) List(c *gin.Context) {
	q, err := parsePlanetQuery(c)
	if err != nil {
		respondError(c, err)
		return
	}
	page, err := h.catalog.List(c.Request.Context(), q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// Names handles GET /planets/names.
func (h *PlanetHandler) Names(c *gin.Context) {
	names, err := h.catalog.Names(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"names": names, "total": len(names)})
}

// Suggest handles GET /planets/suggest?prefix=&size=.
func (h *PlanetHandler) Suggest(c *gin.Context) {
	size, err := optionalInt(c, "size")
	if err != nil {
		respondError(c, err)
		return
	}
	n := 10
	if size != nil {
		n = max(1, min(*size, 50))
	}
	out, err := h.catalog.Suggest(c.Request.Context(), c.Query("prefix"), n)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"suggestions": out})
}

// Get handles GET /planets/:name.
func (h *PlanetHandler) Get(c *gin.Context) {
	p, err := h.catalog.Get(c.Request.Context(), c.Param("name"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// Compare handles GET /planets/:name/compare?metrics=Gravity,Temp.
func (h *PlanetHandler) Compare(c *gin.Context) {
	res, err := h.compare.Compare(c.Request.Context(), comparison.Request{
		Name:    c.Param("name"),
		Metrics: splitList(c.QueryArray("metrics")),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Survivability handles GET /planets/:name/survivability?mode=human.
func (h *PlanetHandler) Survivability(c *gin.Context) {
	rep, err := h.compare.Survivability(c.Request.Context(), comparison.SurvivalRequest{
		Name: c.Param("name"),
		Mode: c.Query("mode"),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rep)
}

// Export handles GET /planets/export. By default the CSV is streamed back;
// with archive=true it is stored and a download URL is returned.
func (h *PlanetHandler) Export(c *gin.Context) {
	q, err := parsePlanetQuery(c)
	if err != nil {
		respondError(c, err)
		return
	}

	if archive, _ := strconv.ParseBool(c.Query("archive")); archive {
		res, err := h.catalog.Export(c.Request.Context(), q)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, res)
		return
	}

	planets, err := listAll(c.Request.Context(), h.catalog, q)
	if err != nil {
		respondError(c, err)
		return
	}
	filename := fmt.Sprintf("planets-%s.csv", time.Now().UTC().Format("20060102"))
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Status(http.StatusOK)
	if err := catalog.WriteCSV(c.Writer, planets); err != nil {
		h.logger.Error("CSV export interrupted", logging.Err(err))
	}
}

// RecentExports handles GET /planets/exports.
func (h *PlanetHandler) RecentExports(c *gin.Context) {
	limit, err := optionalInt(c, "limit")
	if err != nil {
		respondError(c, err)
		return
	}
	n := 20
	if limit != nil {
		n = max(1, min(*limit, 100))
	}
	exports, err := h.catalog.RecentExports(c.Request.Context(), n)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"exports": exports})
}

// listAll walks every page of q.
func listAll(ctx context.Context, svc catalog.Service, q planet.Query) ([]*planet.Planet, error) {
	q.Page, q.Limit = 1, catalog.MaxPageSize
	var out []*planet.Planet
	for {
		page, err := svc.List(ctx, q)
		if err != nil {
			return nil, err
		}
		out = append(out, page.Planets...)
		if q.Page >= page.TotalPages || len(page.Planets) == 0 {
			return out, nil
		}
		q.Page++
	}
}

//Personal.AI order the ending
