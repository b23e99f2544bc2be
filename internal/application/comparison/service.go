// Package comparison compares planets with Earth and shapes the results
// for charts.
package comparison

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/turtacn/ExoMetrics/internal/domain/chart"
	"github.com/turtacn/ExoMetrics/internal/domain/planet"
	"github.com/turtacn/ExoMetrics/internal/infrastructure/database/redis"
	"github.com/turtacn/ExoMetrics/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ExoMetrics/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/ExoMetrics/pkg/errors"
)

const (
	SourceCatalog = "catalog"
	SourceAdHoc   = "adhoc"

	defaultCacheTTL = 30 * time.Minute
)

// DefaultClasses are the habitability labels a class distribution always
// reports.
var DefaultClasses = []string{
	planet.LabelPotentiallyHabitable,
	planet.LabelMarginal,
	planet.LabelUninhabitable,
}

// Request names a catalog planet or carries an ad-hoc record. Metrics are
// display names; empty means every metric.
type Request struct {
	Name    string         `json:"name,omitempty"`
	Record  *planet.Record `json:"record,omitempty"`
	Metrics []string       `json:"metrics,omitempty"`
}

// Result is a full Earth comparison. Hybrid is set for catalog planets
// only.
type Result struct {
	Name         string              `json:"name"`
	Source       string              `json:"source"`
	Metrics      []planet.Metric     `json:"metrics"`
	Rows         []planet.MetricRow  `json:"rows"`
	Habitability planet.Habitability `json:"habitability"`
	Hybrid       *planet.HybridScore `json:"hybrid,omitempty"`
	Tag          string              `json:"tag"`
	Charts       chart.Bundle        `json:"charts"`
	UpdatedAt    *time.Time          `json:"updatedAt,omitempty"`
}

// Catalog resolves planet names.
type Catalog interface {
	Get(ctx context.Context, name string) (*planet.Planet, error)
}

type Service interface {
	Compare(ctx context.Context, req Request) (*Result, error)
	Charts(ctx context.Context, req Request) (*chart.Bundle, error)
	Distribution(ctx context.Context, q planet.Query) (*chart.HabitabilitySummary, error)
	ClassDistribution(preds []chart.Prediction, classes []string) []chart.Slice
	Survivability(ctx context.Context, req SurvivalRequest) (*SurvivalReport, error)
}

// Deps are the collaborators of the service. Logger is required; without
// Catalog only ad-hoc records can be compared, and without Repo there is no
// catalog distribution.
type Deps struct {
	Catalog  Catalog
	Repo     planet.Repository
	Cache    redis.Cache
	CacheTTL time.Duration
	Metrics  *prometheus.AppMetrics
	Logger   logging.Logger
}

type serviceImpl struct {
	Deps
}

func NewService(deps Deps) (Service, error) {
	if deps.Logger == nil {
		return nil, errors.New(errors.ErrCodeValidation, "logger is required")
	}
	if deps.CacheTTL <= 0 {
		deps.CacheTTL = defaultCacheTTL
	}
	deps.Logger = deps.Logger.Named("comparison")
	return &serviceImpl{Deps: deps}, nil
}

func metricNames(ms []planet.Metric) []string {
	out := make([]string, len(ms))
	for i, m := range ms {
		out[i] = m.String()
	}
	return out
}

// cacheKey changes whenever the planet is refreshed, so stale comparisons
// are never served after a catalog update.
func cacheKey(p *planet.Planet, selection []planet.Metric) string {
	return fmt.Sprintf("%s:%d:%s",
		planet.NormalizeName(p.Name), p.UpdatedAt.UnixNano(), strings.Join(metricNames(selection), ","))
}

func (s *serviceImpl) Compare(ctx context.Context, req Request) (res *Result, err error) {
	start := time.Now()
	selection, err := parseSelection(req.Metrics)
	if err != nil {
		return nil, err
	}

	switch {
	case req.Record != nil && strings.TrimSpace(req.Name) != "":
		return nil, errors.InvalidParam("provide either a planet name or a record, not both")
	case req.Record != nil:
		if err := req.Record.Validate(); err != nil {
			return nil, err
		}
		res = compareRecord(*req.Record, selection)
		res.Source = SourceAdHoc
		prometheus.RecordComparison(s.Metrics, SourceAdHoc, false, metricNames(selection), time.Since(start))
		return res, nil
	case strings.TrimSpace(req.Name) == "":
		return nil, errors.New(errors.ErrCodePlanetNameInvalid, "planet name or record is required")
	}

	if s.Catalog == nil {
		return nil, errors.Unavailable("planet catalog is not configured")
	}
	p, err := s.Catalog.Get(ctx, req.Name)
	if err != nil {
		return nil, err
	}

	// Only a direct read counts as a hit. Callers that wait on another
	// caller's load through GetOrSet did not find the result stored.
	var cached bool
	compute := func(context.Context) (any, error) {
		return comparePlanet(p, selection), nil
	}

	if s.Cache == nil {
		res = comparePlanet(p, selection)
	} else {
		key := cacheKey(p, selection)
		res = &Result{}
		err = s.Cache.Get(ctx, key, res)
		cached = err == nil
		if errors.Is(err, redis.ErrCacheMiss) {
			res = &Result{}
			err = s.Cache.GetOrSet(ctx, key, res, s.CacheTTL, compute)
		}
		if err != nil {
			s.Logger.Warn("Comparison cache unavailable", logging.String("name", p.Name), logging.Err(err))
			res, cached = comparePlanet(p, selection), false
		}
	}

	prometheus.RecordComparison(s.Metrics, SourceCatalog, cached, metricNames(selection), time.Since(start))
	s.Logger.Debug("Planet compared",
		logging.String("name", p.Name),
		logging.Bool("cached", cached),
		logging.Int("rows", len(res.Rows)))
	return res, nil
}

func (s *serviceImpl) Charts(ctx context.Context, req Request) (*chart.Bundle, error) {
	res, err := s.Compare(ctx, req)
	if err != nil {
		return nil, err
	}
	return &res.Charts, nil
}

// Distribution summarizes the stored habitability of every planet matching
// q. Paging fields of q are ignored.
func (s *serviceImpl) Distribution(ctx context.Context, q planet.Query) (*chart.HabitabilitySummary, error) {
	if s.Repo == nil {
		return nil, errors.Unavailable("planet catalog is not configured")
	}
	q.Page, q.Limit = 0, 0
	planets, _, err := s.Repo.List(ctx, q)
	if err != nil {
		return nil, err
	}
	summary := chart.HabitabilityDistribution(chart.ScoredFromPlanets(planets))
	return &summary, nil
}

// ClassDistribution counts predictions per class, DefaultClasses when
// classes is empty.
func (s *serviceImpl) ClassDistribution(preds []chart.Prediction, classes []string) []chart.Slice {
	if len(classes) == 0 {
		classes = DefaultClasses
	}
	return chart.Distribution(preds, classes)
}

func parseSelection(names []string) ([]planet.Metric, error) {
	ms, err := planet.ParseMetrics(names)
	if err != nil {
		return nil, err
	}
	return planet.NormalizeSelection(ms), nil
}

func compareRecord(rec planet.Record, selection []planet.Metric) *Result {
	rows := planet.BuildRows(rec, selection)
	name := strings.TrimSpace(rec.Name)
	if name == "" {
		name = planet.UnknownText
	}
	return &Result{
		Name:         name,
		Metrics:      selection,
		Rows:         rows,
		Habitability: planet.ComparisonHabitability(rec),
		Tag:          planet.HabitTag(rec),
		Charts:       chart.ComparisonCharts(rows),
	}
}

func comparePlanet(p *planet.Planet, selection []planet.Metric) *Result {
	res := compareRecord(p.Record(), selection)
	res.Source = SourceCatalog
	hybrid := planet.HybridHabitability(p.HybridInput())
	res.Hybrid = &hybrid
	if !p.UpdatedAt.IsZero() {
		at := p.UpdatedAt
		res.UpdatedAt = &at
	}
	return res
}

// SurvivalRequest scores a catalog planet, or a custom planet when Name is
// not in the catalog and Params are given. Params override the values
// derived from the planet.
type SurvivalRequest struct {
	Name   string                    `json:"name"`
	Mode   string                    `json:"mode,omitempty"`
	Params *planet.SurvivalOverrides `json:"params,omitempty"`
}

type SurvivalReport struct {
	Name                   string                `json:"name"`
	Source                 string                `json:"source"`
	Params                 planet.SurvivalParams `json:"params"`
	Result                 planet.SurvivalResult `json:"result"`
	ColonizationDifficulty int                   `json:"colonizationDifficulty"`
	// RecommendedPlanet is the best-scoring catalog planet at least as
	// survivable as this one, in the same mode.
	RecommendedPlanet string                `json:"recommendedPlanet,omitempty"`
	HistoricalEarth   planet.SurvivalParams `json:"historicalEarth"`
}

func (s *serviceImpl) Survivability(ctx context.Context, req SurvivalRequest) (*SurvivalReport, error) {
	mode, err := planet.ParseSurvivalMode(req.Mode)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, errors.New(errors.ErrCodePlanetNameInvalid, "planet name is required")
	}

	report := &SurvivalReport{Name: name, Source: SourceCatalog, HistoricalEarth: planet.HistoricalEarth()}
	var p *planet.Planet
	switch {
	case s.Catalog != nil:
		p, err = s.Catalog.Get(ctx, name)
	case req.Params == nil:
		return nil, errors.Unavailable("planet catalog is not configured")
	default:
		err = errors.NotFound("planet catalog is not configured")
	}
	switch {
	case err == nil:
		report.Name = p.Name
	case errors.IsNotFound(err) && req.Params != nil:
		report.Source = SourceAdHoc
	default:
		return nil, err
	}

	params := planet.SurvivalParamsFor(p)
	if req.Params != nil {
		params = req.Params.Apply(params)
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	report.Params = params
	report.Result = planet.Survivability(params, mode)
	report.ColonizationDifficulty = planet.ColonizationDifficulty(report.Result, params.Gravity)

	best, err := s.mostSurvivable(ctx, mode, report.Result.Score)
	if err != nil {
		s.Logger.Warn("Survivable planet lookup failed", logging.Err(err))
	}
	report.RecommendedPlanet = best
	return report, nil
}

// mostSurvivable returns the catalog planet with the highest score of at
// least minScore, or "" when none qualifies or there is no catalog.
func (s *serviceImpl) mostSurvivable(ctx context.Context, mode planet.SurvivalMode, minScore int) (string, error) {
	if s.Repo == nil {
		return "", nil
	}
	planets, _, err := s.Repo.List(ctx, planet.Query{})
	if err != nil {
		return "", err
	}
	best, bestScore := "", -1
	for _, p := range planets {
		score := planet.Survivability(planet.SurvivalParamsFor(p), mode).Score
		if score >= minScore && score > bestScore {
			best, bestScore = p.Name, score
		}
	}
	return best, nil
}

//Personal.AI order the ending
