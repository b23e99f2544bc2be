//go:build integration

package repositories_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/turtacn/ExoMetrics/internal/domain/planet"
	"github.com/turtacn/ExoMetrics/internal/infrastructure/database/postgres/repositories"
	"github.com/turtacn/ExoMetrics/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ExoMetrics/pkg/errors"
)

// startPostgres launches a PostgreSQL 16 container with the catalog schema.
func startPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "test",
				"POSTGRES_PASSWORD": "test",
				"POSTGRES_DB":       "exometrics_test",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("postgres://test:test@%s:%s/exometrics_test?sslmode=disable", host, port.Port())
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	files, err := filepath.Glob("../../../../../migrations/*.up.sql")
	require.NoError(t, err)
	require.NotEmpty(t, files)
	sort.Strings(files)
	for _, f := range files {
		ddl, err := os.ReadFile(f)
		require.NoError(t, err)
		_, err = pool.Exec(ctx, string(ddl))
		require.NoError(t, err, f)
	}
	return pool
}

func seedPlanet(name, host, starType string, dist, radius float64, score int) *planet.Planet {
	p, _ := planet.NewPlanet(name)
	p.HostStar = host
	p.StarType = starType
	p.DistancePc = planet.F(dist)
	p.Radius = planet.F(radius)
	p.Habitability = planet.Assessment{Score: score, Label: planet.HybridLabel(score)}
	return p
}

func TestPlanetRepository_Lifecycle(t *testing.T) {
	pool := startPostgres(t)
	ctx := context.Background()
	repo := repositories.NewPlanetRepository(pool, logging.NewNopLogger(), nil)

	latest, err := repo.LatestUpdate(ctx)
	require.NoError(t, err)
	assert.True(t, latest.IsZero())

	n, err := repo.Upsert(ctx, []*planet.Planet{
		seedPlanet("TRAPPIST-1 e", "TRAPPIST-1", "M8V", 12.4, 0.92, 80),
		seedPlanet("Kepler-22 b", "Kepler-22", "G5V", 190, 2.1, 62),
		seedPlanet("Proxima Cen b", "Proxima Cen", "M5.5V", 1.3, 1.07, 30),
	})
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	names, err := repo.Names(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Kepler-22 b", "Proxima Cen b", "TRAPPIST-1 e"}, names)

	got, err := repo.GetByName(ctx, "  trappist-1   E ")
	require.NoError(t, err)
	assert.Equal(t, "TRAPPIST-1 e", got.Name)
	assert.Equal(t, 80, got.Habitability.Score)
	assert.InDelta(t, 0.92, *got.Radius, 1e-9)
	assert.Nil(t, got.Mass)

	_, err = repo.GetByName(ctx, "Tatooine")
	assert.True(t, errors.IsCode(err, errors.ErrCodePlanetNotFound))

	// Re-upserting by a differently cased name updates in place.
	again := seedPlanet("trappist-1 E", "TRAPPIST-1", "M8V", 12.4, 0.91, 81)
	again.ID = uuid.New()
	_, err = repo.Upsert(ctx, []*planet.Planet{again})
	require.NoError(t, err)
	got2, err := repo.GetByName(ctx, "TRAPPIST-1 e")
	require.NoError(t, err)
	assert.Equal(t, got.ID, got2.ID)
	assert.Equal(t, 81, got2.Habitability.Score)

	latest, err = repo.LatestUpdate(ctx)
	require.NoError(t, err)
	assert.False(t, latest.IsZero())
}

func TestPlanetRepository_ListFilters(t *testing.T) {
	pool := startPostgres(t)
	ctx := context.Background()
	repo := repositories.NewPlanetRepository(pool, logging.NewNopLogger(), nil)

	_, err := repo.Upsert(ctx, []*planet.Planet{
		seedPlanet("TRAPPIST-1 e", "TRAPPIST-1", "M8V", 12.4, 0.92, 80),
		seedPlanet("TRAPPIST-1 f", "TRAPPIST-1", "M8V", 12.4, 1.04, 55),
		seedPlanet("Kepler-22 b", "Kepler-22", "G5V", 190, 2.1, 62),
	})
	require.NoError(t, err)

	minScore := 60
	list, total, err := repo.List(ctx, planet.Query{Search: "trappist", MinScore: &minScore})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, list, 1)
	assert.Equal(t, "TRAPPIST-1 e", list[0].Name)

	list, total, err = repo.List(ctx, planet.Query{StarType: "m8v", Page: 2, Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, list, 1)
	assert.Equal(t, "TRAPPIST-1 f", list[0].Name)

	maxDist := 100.0
	_, total, err = repo.List(ctx, planet.Query{MaxDistance: &maxDist})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	list, _, err = repo.List(ctx, planet.Query{Names: []string{"kepler-22 B"}})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Kepler-22 b", list[0].Name)
}

func TestExportRepository(t *testing.T) {
	pool := startPostgres(t)
	ctx := context.Background()
	repo := repositories.NewExportRepository(pool)

	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Save(ctx, &planet.Export{
			ID:        uuid.New(),
			ObjectKey: fmt.Sprintf("exports/2026-10-19/%d.csv", i),
			Rows:      10 + i,
			SizeBytes: 1024,
			CreatedAt: time.Now().UTC().Add(time.Duration(i) * time.Minute),
		}))
	}
	recent, err := repo.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, 12, recent[0].Rows)
}

//Personal.AI order the ending
