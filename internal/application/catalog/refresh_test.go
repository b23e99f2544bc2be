package catalog

import (
	"context"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/ExoMetrics/internal/domain/planet"
	"github.com/turtacn/ExoMetrics/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ExoMetrics/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/ExoMetrics/pkg/errors"
)

func archivePlanets() []*planet.Planet {
	return []*planet.Planet{
		{Name: "Kepler-22 b", TeqK: planet.F(262), Radius: planet.F(2.1)},
		{Name: "Kepler-452 b", TeqK: planet.F(265), Radius: planet.F(1.63)},
	}
}

func TestRefresh_SkipsFreshCatalog(t *testing.T) {
	fresh := samplePlanets()
	fresh[0].UpdatedAt = fixedNow.Add(-time.Hour)
	archive := new(MockArchive)
	s := newTestService(t, Deps{Repo: newMemRepo(fresh...), Archive: archive})

	res, err := s.Refresh(context.Background(), false)
	require.NoError(t, err)
	assert.True(t, res.Skipped)
	assert.Equal(t, fresh[0].UpdatedAt, res.LastUpdate)
	archive.AssertNotCalled(t, "FetchAll", mock.Anything)
}

func TestRefresh_Force(t *testing.T) {
	fresh := samplePlanets()
	fresh[0].UpdatedAt = fixedNow.Add(-time.Hour)
	repo := newMemRepo(fresh...)
	archive := new(MockArchive)
	archive.On("FetchAll", mock.Anything).Return(archivePlanets(), nil)
	indexer := &recordingIndexer{}
	pub := &recordingPublisher{}
	lock := &fakeLocker{}

	s := newTestService(t, Deps{
		Repo: repo, Archive: archive, Indexer: indexer, Publisher: pub, PlanetTopic: "planet.updated",
		Cache:     newTestCache(t),
		NewLocker: func(name string) Locker { assert.Equal(t, refreshLockName, name); return lock },
	})

	res, err := s.Refresh(context.Background(), true)
	require.NoError(t, err)
	assert.False(t, res.Skipped)
	assert.Equal(t, 2, res.Fetched)
	assert.Equal(t, 2, res.Upserted)
	assert.Equal(t, 2, res.Indexed)
	assert.Equal(t, 2, res.Published)
	assert.Equal(t, fixedNow, res.LastUpdate)
	assert.True(t, lock.released)

	assert.Len(t, pub.events, 2)
	assert.Equal(t, []string{"planet.updated", "planet.updated"}, pub.topics)

	p, err := s.Get(context.Background(), "kepler-452 b")
	require.NoError(t, err)
	assert.NotEmpty(t, p.Habitability.Label)
	assert.Equal(t, fixedNow, p.UpdatedAt)
}

func TestRefresh_EmptyCatalogIsStale(t *testing.T) {
	archive := new(MockArchive)
	archive.On("FetchAll", mock.Anything).Return(archivePlanets(), nil)
	s := newTestService(t, Deps{Repo: newMemRepo(), Archive: archive})

	res, err := s.Refresh(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Upserted)
	assert.Zero(t, res.Published)
}

func TestRefresh_Locked(t *testing.T) {
	archive := new(MockArchive)
	s := newTestService(t, Deps{
		Archive:   archive,
		NewLocker: func(string) Locker { return &fakeLocker{held: true} },
	})
	res, err := s.Refresh(context.Background(), true)
	require.NoError(t, err)
	assert.True(t, res.Skipped)
	assert.Contains(t, res.Reason, "in progress")
	archive.AssertNotCalled(t, "FetchAll", mock.Anything)
}

func TestRefresh_Failures(t *testing.T) {
	s := newTestService(t, Deps{})
	_, err := s.Refresh(context.Background(), true)
	assert.True(t, errors.IsCode(err, errors.ErrCodeServiceUnavailable))

	archive := new(MockArchive)
	archive.On("FetchAll", mock.Anything).Return(nil, errors.New(errors.ErrCodeArchiveUnavailable, "down"))
	s = newTestService(t, Deps{Archive: archive})
	_, err = s.Refresh(context.Background(), true)
	assert.True(t, errors.IsCode(err, errors.ErrCodeArchiveUnavailable))

	repo := newMemRepo()
	repo.err = stderrors.New("db down")
	archive = new(MockArchive)
	archive.On("FetchAll", mock.Anything).Return(archivePlanets(), nil)
	s = newTestService(t, Deps{Repo: repo, Archive: archive})
	_, err = s.Refresh(context.Background(), true)
	assert.Error(t, err)
}

func TestRefresh_RecordsErrors(t *testing.T) {
	collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{Namespace: "test"}, logging.NewNopLogger())
	require.NoError(t, err)

	archive := new(MockArchive)
	archive.On("FetchAll", mock.Anything).Return(nil, errors.New(errors.ErrCodeArchiveUnavailable, "down"))
	s := newTestService(t, Deps{Archive: archive})
	s.Metrics = prometheus.NewAppMetrics(collector)
	_, err = s.Refresh(context.Background(), true)
	require.Error(t, err)

	w := httptest.NewRecorder()
	collector.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, w.Body.String(), `test_errors_total{component="archive",error_code="CATALOG_001"} 1`)
	assert.Contains(t, w.Body.String(), `test_catalog_refresh_total{outcome="failed"} 1`)
}

const seedYAML = `
planets:
  - name: Kepler-22 b
    hostStar: Kepler-22
    teqK: 262
    radius: 2.1
    starType: G5 V
  - name: "  TRAPPIST-1 e "
    teqK: 250
    radius: 0.92
    mass: 0.69
    semiMajorAxis: 0.029
    starTemp: 2566
    starLuminosity: 0.000553
`

func TestSeed(t *testing.T) {
	repo := newMemRepo()
	s := newTestService(t, Deps{Repo: repo, Indexer: &recordingIndexer{}})

	n, err := s.Seed(context.Background(), strings.NewReader(seedYAML))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	p, err := repo.GetByName(context.Background(), "trappist-1 e")
	require.NoError(t, err)
	assert.Equal(t, "TRAPPIST-1 e", p.Name)
	want := planet.HybridHabitability(p.HybridInput())
	assert.Equal(t, planet.Assessment{Score: want.Score, ESI: want.ESI, Label: want.Label}, p.Habitability)
	assert.Equal(t, 0.029, *p.SemiMajorAxisAU)
}

func TestSeed_Invalid(t *testing.T) {
	s := newTestService(t, Deps{Repo: newMemRepo()})
	ctx := context.Background()

	for name, in := range map[string]string{
		"syntax":   "planets: [",
		"empty":    "",
		"no name":  "planets:\n  - radius: 1\n",
		"negative": "planets:\n  - name: X\n    mass: -2\n",
	} {
		_, err := s.Seed(ctx, strings.NewReader(in))
		assert.True(t, errors.IsCode(err, errors.ErrCodeSeedInvalid), name)
	}
}

//Personal.AI order the ending
