package comparison

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/ExoMetrics/internal/domain/chart"
	"github.com/turtacn/ExoMetrics/internal/domain/planet"
	"github.com/turtacn/ExoMetrics/internal/infrastructure/database/redis"
	"github.com/turtacn/ExoMetrics/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ExoMetrics/internal/testutil"
	"github.com/turtacn/ExoMetrics/pkg/errors"
)

type stubCatalog struct {
	planets map[string]*planet.Planet
}

func (c *stubCatalog) Get(_ context.Context, name string) (*planet.Planet, error) {
	p, ok := c.planets[planet.NormalizeName(name)]
	if !ok {
		return nil, errors.New(errors.ErrCodePlanetNotFound, "planet not found")
	}
	return p, nil
}

// stubRepo serves List only.
type stubRepo struct {
	planet.Repository
	planets []*planet.Planet
	last    planet.Query
}

func (r *stubRepo) List(_ context.Context, q planet.Query) ([]*planet.Planet, int64, error) {
	r.last = q
	return r.planets, int64(len(r.planets)), nil
}

func exampleRecord() *planet.Record {
	return &planet.Record{Name: "Example b", Mass: planet.F(5.5), Radius: planet.F(1.9), TeqK: planet.F(288), OrbitalPeriod: planet.F(420)}
}

func newCache(t *testing.T) (redis.Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	log := logging.NewNopLogger()
	client := redis.NewClientFromUniversal(goredis.NewClient(&goredis.Options{Addr: mr.Addr()}), "test:", log)
	t.Cleanup(func() { _ = client.Close() })
	return redis.NewRedisCache(client, "compare", log), mr
}

func newService(t *testing.T, deps Deps) Service {
	t.Helper()
	deps.Logger = logging.NewNopLogger()
	svc, err := NewService(deps)
	require.NoError(t, err)
	return svc
}

func TestNewService_RequiresLogger(t *testing.T) {
	_, err := NewService(Deps{})
	assert.Error(t, err)
}

func TestCompare_AdHocRecord(t *testing.T) {
	svc := newService(t, Deps{})
	res, err := svc.Compare(context.Background(), Request{
		Record:  exampleRecord(),
		Metrics: []string{"orbit", "Gravity", "temperature", "gravity"},
	})
	require.NoError(t, err)

	assert.Equal(t, SourceAdHoc, res.Source)
	assert.Equal(t, "Example b", res.Name)
	assert.Equal(t, []planet.Metric{planet.MetricGravity, planet.MetricTemp, planet.MetricOrbit}, res.Metrics)
	require.Len(t, res.Rows, 3)
	assert.Equal(t, 1.52, res.Rows[0].Planet.Float())
	assert.Equal(t, 14.85, res.Rows[1].Planet.Float())
	assert.Equal(t, 420.0, res.Rows[2].Planet.Float())
	assert.Equal(t, 82, res.Habitability.Score)
	assert.Equal(t, planet.LabelHighlyHabitable, res.Habitability.Label)
	assert.Equal(t, planet.TagUnknown, res.Tag)
	assert.Nil(t, res.Hybrid)
	assert.Len(t, res.Charts.Bar, 3)
}

func TestCompare_AllMetricsByDefault(t *testing.T) {
	svc := newService(t, Deps{})
	res, err := svc.Compare(context.Background(), Request{Record: &planet.Record{}})
	require.NoError(t, err)
	assert.Equal(t, planet.UnknownText, res.Name)
	assert.Len(t, res.Rows, len(planet.AllMetrics()))
}

func TestCompare_RequestErrors(t *testing.T) {
	svc := newService(t, Deps{})
	ctx := context.Background()

	_, err := svc.Compare(ctx, Request{})
	assert.True(t, errors.IsCode(err, errors.ErrCodePlanetNameInvalid))

	_, err = svc.Compare(ctx, Request{Name: "Kepler-22 b", Record: exampleRecord()})
	assert.Error(t, err)

	_, err = svc.Compare(ctx, Request{Record: exampleRecord(), Metrics: []string{"Albedo"}})
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidMetric))

	_, err = svc.Compare(ctx, Request{Record: &planet.Record{Mass: planet.F(-1)}})
	assert.Error(t, err)

	_, err = svc.Compare(ctx, Request{Name: "Kepler-22 b"})
	assert.True(t, errors.IsCode(err, errors.ErrCodeServiceUnavailable))
}

func TestCompare_CatalogPlanetIsCached(t *testing.T) {
	updated := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	p := &planet.Planet{
		Name: "Kepler-22 b", Radius: planet.F(2.1), Mass: planet.F(9.1), TeqK: planet.F(262),
		SemiMajorAxisAU: planet.F(0.85), UpdatedAt: updated,
	}
	cat := &stubCatalog{planets: map[string]*planet.Planet{"kepler-22 b": p}}
	cache, mr := newCache(t)
	svc := newService(t, Deps{Catalog: cat, Cache: cache})
	ctx := context.Background()

	first, err := svc.Compare(ctx, Request{Name: "KEPLER-22 B", Metrics: []string{"Radius"}})
	require.NoError(t, err)
	assert.Equal(t, SourceCatalog, first.Source)
	require.NotNil(t, first.Hybrid)
	assert.Equal(t, planet.HybridHabitability(p.HybridInput()).Score, first.Hybrid.Score)
	require.NotNil(t, first.UpdatedAt)
	assert.True(t, updated.Equal(*first.UpdatedAt))

	keys := mr.Keys()
	require.Len(t, keys, 1)
	assert.True(t, strings.HasPrefix(keys[0], "test:compare:kepler-22 b:"))

	// Same UpdatedAt: the stored result is served.
	p.Radius = planet.F(3)
	second, err := svc.Compare(ctx, Request{Name: "kepler-22 b", Metrics: []string{"Radius"}})
	require.NoError(t, err)
	a, _ := json.Marshal(first)
	b, _ := json.Marshal(second)
	assert.JSONEq(t, string(a), string(b))

	// A refresh moves UpdatedAt and the comparison is recomputed.
	p.UpdatedAt = updated.Add(time.Hour)
	third, err := svc.Compare(ctx, Request{Name: "kepler-22 b", Metrics: []string{"Radius"}})
	require.NoError(t, err)
	assert.Equal(t, 3.0, third.Rows[0].Planet.Float())

	_, err = svc.Compare(ctx, Request{Name: "Nowhere b"})
	assert.True(t, errors.IsCode(err, errors.ErrCodePlanetNotFound))
}

func TestCharts(t *testing.T) {
	svc := newService(t, Deps{})
	b, err := svc.Charts(context.Background(), Request{Record: exampleRecord(), Metrics: []string{"Gravity", "Star Type"}})
	require.NoError(t, err)
	require.Len(t, b.Radar, 1)
	assert.Equal(t, 152.0, b.Radar[0].Planet)
	assert.Len(t, b.Table.Rows, 1)
}

func TestDistribution(t *testing.T) {
	repo := &stubRepo{planets: []*planet.Planet{
		{Name: "A", Habitability: planet.Assessment{Score: 80, Label: planet.LabelPotentiallyHabitable}},
		{Name: "B", Habitability: planet.Assessment{Score: 50, Label: planet.LabelMarginal}},
		{Name: "C", Habitability: planet.Assessment{Score: 10, Label: planet.LabelUninhabitable}},
	}}
	svc := newService(t, Deps{Repo: repo})

	sum, err := svc.Distribution(context.Background(), planet.Query{StarType: "G", Page: 4, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 3, sum.Total)
	assert.Equal(t, 1, sum.Groups[0].Count)
	assert.Equal(t, 33.3, sum.HabitablePercentage)
	assert.Equal(t, planet.Query{StarType: "G"}, repo.last)

	_, err = newService(t, Deps{}).Distribution(context.Background(), planet.Query{})
	assert.True(t, errors.IsCode(err, errors.ErrCodeServiceUnavailable))
}

func TestDistribution_SamplePlanets(t *testing.T) {
	repo := new(testutil.PlanetRepoMock)
	repo.On("List", mock.Anything, planet.Query{StarType: "G"}).Return(testutil.SamplePlanets()[1:], int64(2), nil)
	repo.On("List", mock.Anything, planet.Query{StarType: "M"}).Return(nil, int64(0), errors.Internal("database unavailable"))
	svc := newService(t, Deps{Repo: repo})

	sum, err := svc.Distribution(context.Background(), planet.Query{StarType: "G", Limit: 50})
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Total)
	assert.Zero(t, sum.HabitablePercentage)

	_, err = svc.Distribution(context.Background(), planet.Query{StarType: "M"})
	assert.True(t, errors.IsCode(err, errors.ErrCodeInternal))
	repo.AssertExpectations(t)
}

func TestClassDistribution(t *testing.T) {
	svc := newService(t, Deps{})
	got := svc.ClassDistribution([]chart.Prediction{
		{Label: planet.LabelMarginal}, {Label: planet.LabelMarginal}, {Label: "Exotic"}, {Label: ""},
	}, nil)
	assert.Equal(t, []chart.Slice{
		{Label: planet.LabelPotentiallyHabitable, Count: 0, Percentage: 0},
		{Label: planet.LabelMarginal, Count: 2, Percentage: 50},
		{Label: planet.LabelUninhabitable, Count: 0, Percentage: 0},
		{Label: "Exotic", Count: 1, Percentage: 25},
		{Label: planet.UnknownText, Count: 1, Percentage: 25},
	}, got)
}

// sharedLoadCache behaves like a cache whose GetOrSet returns a result
// loaded by another caller, so the loader passed in never runs.
type sharedLoadCache struct {
	redis.Cache
	stored *Result
	shared *Result
}

func (c *sharedLoadCache) Get(_ context.Context, _ string, dest any) error {
	if c.stored == nil {
		return redis.ErrCacheMiss
	}
	*dest.(*Result) = *c.stored
	return nil
}

func (c *sharedLoadCache) GetOrSet(_ context.Context, _ string, dest any, _ time.Duration, _ func(context.Context) (any, error)) error {
	*dest.(*Result) = *c.shared
	return nil
}

func TestCompare_CachedOnlyOnDirectHit(t *testing.T) {
	p := &planet.Planet{Name: "Kepler-22 b", Radius: planet.F(2.1), UpdatedAt: time.Unix(100, 0)}
	cat := &stubCatalog{planets: map[string]*planet.Planet{"kepler-22 b": p}}
	shared := &Result{Name: "Kepler-22 b", Source: SourceCatalog}
	cache := &sharedLoadCache{shared: shared}

	log := testutil.NewMockLogger()
	svc, err := NewService(Deps{Catalog: cat, Cache: cache, Logger: log})
	require.NoError(t, err)
	ctx := context.Background()

	res, err := svc.Compare(ctx, Request{Name: "Kepler-22 b"})
	require.NoError(t, err)
	assert.Equal(t, "Kepler-22 b", res.Name)
	entry, ok := log.Find(logging.LevelDebug, "Planet compared")
	require.True(t, ok)
	v, _ := entry.Field("cached")
	assert.Equal(t, false, v)

	log.Clear()
	cache.stored = shared
	_, err = svc.Compare(ctx, Request{Name: "Kepler-22 b"})
	require.NoError(t, err)
	entry, ok = log.Find(logging.LevelDebug, "Planet compared")
	require.True(t, ok)
	v, _ = entry.Field("cached")
	assert.Equal(t, true, v)
}

func TestSurvivability_CatalogPlanet(t *testing.T) {
	temperate := &planet.Planet{Name: "Temperate b", Mass: planet.F(1), Radius: planet.F(1), TeqK: planet.F(290)}
	scorched := &planet.Planet{Name: "Scorched b", Mass: planet.F(1), Radius: planet.F(1), TeqK: planet.F(900)}
	cat := &stubCatalog{planets: map[string]*planet.Planet{"scorched b": scorched}}
	repo := &stubRepo{planets: []*planet.Planet{scorched, temperate}}
	svc := newService(t, Deps{Catalog: cat, Repo: repo})

	rep, err := svc.Survivability(context.Background(), SurvivalRequest{Name: "SCORCHED B"})
	require.NoError(t, err)
	assert.Equal(t, "Scorched b", rep.Name)
	assert.Equal(t, SourceCatalog, rep.Source)
	assert.Equal(t, planet.ModeHuman, rep.Result.Mode)
	assert.Equal(t, 0.0, rep.Result.Breakdown.Temp)
	assert.Equal(t, planet.Survivability(planet.SurvivalParamsFor(scorched), planet.ModeHuman), rep.Result)
	assert.Equal(t, 100-rep.Result.Score, rep.ColonizationDifficulty)
	assert.Equal(t, "Temperate b", rep.RecommendedPlanet)
	assert.Equal(t, planet.HistoricalEarth(), rep.HistoricalEarth)
}

func TestSurvivability_CustomPlanet(t *testing.T) {
	svc := newService(t, Deps{Catalog: &stubCatalog{}})
	ctx := context.Background()

	rep, err := svc.Survivability(ctx, SurvivalRequest{
		Name: "Custom b",
		Mode: "microbial",
		Params: &planet.SurvivalOverrides{
			TempC: planet.F(100), Radiation: planet.RadiationHigh,
		},
	})
	require.NoError(t, err)
	assert.Equal(t, SourceAdHoc, rep.Source)
	assert.Equal(t, 100.0, rep.Params.TempC)
	assert.Equal(t, 0.5, rep.Params.Water)
	assert.Equal(t, 30.0, rep.Result.Breakdown.Radiation)
	assert.Empty(t, rep.RecommendedPlanet)

	_, err = svc.Survivability(ctx, SurvivalRequest{Name: "Custom b"})
	assert.True(t, errors.IsCode(err, errors.ErrCodePlanetNotFound))

	_, err = svc.Survivability(ctx, SurvivalRequest{Name: "Custom b", Params: &planet.SurvivalOverrides{Pressure: planet.F(-1)}})
	assert.True(t, errors.IsCode(err, errors.ErrCodePlanetRecordInvalid))

	_, err = svc.Survivability(ctx, SurvivalRequest{Name: " "})
	assert.True(t, errors.IsCode(err, errors.ErrCodePlanetNameInvalid))

	_, err = svc.Survivability(ctx, SurvivalRequest{Name: "Custom b", Mode: "real-time"})
	assert.True(t, errors.IsCode(err, errors.ErrCodeBadRequest))
}

func TestSurvivability_NoCatalog(t *testing.T) {
	svc := newService(t, Deps{})
	_, err := svc.Survivability(context.Background(), SurvivalRequest{Name: "Kepler-22 b"})
	assert.True(t, errors.IsCode(err, errors.ErrCodeServiceUnavailable))

	rep, err := svc.Survivability(context.Background(), SurvivalRequest{Name: "Kepler-22 b", Params: &planet.SurvivalOverrides{}})
	require.NoError(t, err)
	assert.Equal(t, SourceAdHoc, rep.Source)
}

//Personal.AI order the ending
