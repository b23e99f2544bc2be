package repositories

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/turtacn/ExoMetrics/internal/domain/planet"
	"github.com/turtacn/ExoMetrics/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ExoMetrics/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/ExoMetrics/pkg/errors"
)

const planetColumns = `id, name, host_star, discovery_method, discovery_year,
	distance_pc, radius, mass, orbital_period, semi_major_axis, eccentricity,
	teq_k, star_type, star_temp_k, star_luminosity, star_radius,
	atmosphere, stellar_activity, habitability, esi, habitability_label,
	created_at, updated_at`

const upsertPlanetSQL = `
	INSERT INTO planets (` + planetColumns + `, name_key)
	VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24)
	ON CONFLICT (name_key) DO UPDATE SET
		name = EXCLUDED.name,
		host_star = EXCLUDED.host_star,
		discovery_method = EXCLUDED.discovery_method,
		discovery_year = EXCLUDED.discovery_year,
		distance_pc = EXCLUDED.distance_pc,
		radius = EXCLUDED.radius,
		mass = EXCLUDED.mass,
		orbital_period = EXCLUDED.orbital_period,
		semi_major_axis = EXCLUDED.semi_major_axis,
		eccentricity = EXCLUDED.eccentricity,
		teq_k = EXCLUDED.teq_k,
		star_type = EXCLUDED.star_type,
		star_temp_k = EXCLUDED.star_temp_k,
		star_luminosity = EXCLUDED.star_luminosity,
		star_radius = EXCLUDED.star_radius,
		atmosphere = EXCLUDED.atmosphere,
		stellar_activity = EXCLUDED.stellar_activity,
		habitability = EXCLUDED.habitability,
		esi = EXCLUDED.esi,
		habitability_label = EXCLUDED.habitability_label,
		updated_at = EXCLUDED.updated_at`

// PlanetRepository is the PostgreSQL implementation of planet.Repository.
type PlanetRepository struct {
	pool    *pgxpool.Pool
	logger  logging.Logger
	metrics *prometheus.AppMetrics
}

var _ planet.Repository = (*PlanetRepository)(nil)

// NewPlanetRepository constructs a PlanetRepository. metrics may be nil.
func NewPlanetRepository(pool *pgxpool.Pool, logger logging.Logger, metrics *prometheus.AppMetrics) *PlanetRepository {
	return &PlanetRepository{pool: pool, logger: logger.Named("planet_repo"), metrics: metrics}
}

func (r *PlanetRepository) observe(op string, start time.Time, err error) {
	prometheus.RecordDBQuery(r.metrics, op, time.Since(start), err)
}

// buildFilter turns q into a WHERE clause. Search matches name or host star
// case-insensitively.
func buildFilter(q planet.Query) *whereBuilder {
	w := &whereBuilder{}
	if s := strings.TrimSpace(q.Search); s != "" {
		p := likePattern(s)
		w.add("(name ILIKE %s OR host_star ILIKE %s)", p, p)
	}
	if st := strings.TrimSpace(q.StarType); st != "" {
		w.add("LOWER(star_type) = LOWER(%s)", st)
	}
	if q.MaxDistance != nil {
		w.add("distance_pc <= %s", *q.MaxDistance)
	}
	if q.MinScore != nil {
		w.add("habitability >= %s", *q.MinScore)
	}
	if len(q.Names) > 0 {
		keys := make([]string, len(q.Names))
		for i, n := range q.Names {
			keys[i] = planet.NormalizeName(n)
		}
		w.add("name_key = ANY(%s)", keys)
	}
	return w
}

// List returns the requested page ordered by name. A non-positive Limit
// returns every match.
func (r *PlanetRepository) List(ctx context.Context, q planet.Query) (_ []*planet.Planet, _ int64, err error) {
	start := time.Now()
	defer func() { r.observe("list", start, err) }()

	w := buildFilter(q)
	where := w.clause()

	var total int64
	if err = r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM planets "+where, w.args...).Scan(&total); err != nil {
		r.logger.Error("count planets failed", logging.Err(err))
		return nil, 0, errors.Wrap(err, errors.CodeDBQueryError, "failed to count planets")
	}

	sql := fmt.Sprintf("SELECT %s FROM planets %s ORDER BY name ASC", planetColumns, where)
	if q.Limit > 0 {
		sql += fmt.Sprintf(" LIMIT %s OFFSET %s", w.arg(q.Limit), w.arg(q.Offset()))
	}

	rows, err := r.pool.Query(ctx, sql, w.args...)
	if err != nil {
		r.logger.Error("list planets failed", logging.Err(err))
		return nil, 0, errors.Wrap(err, errors.CodeDBQueryError, "failed to list planets")
	}
	defer rows.Close()

	planets, err := scanPlanets(rows)
	if err != nil {
		return nil, 0, err
	}
	return planets, total, nil
}

// Names returns every planet name in ascending order.
func (r *PlanetRepository) Names(ctx context.Context) (_ []string, err error) {
	start := time.Now()
	defer func() { r.observe("names", start, err) }()

	rows, err := r.pool.Query(ctx, "SELECT name FROM planets ORDER BY name ASC")
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeDBQueryError, "failed to list planet names")
	}
	names, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeDBQueryError, "failed to scan planet names")
	}
	return names, nil
}

// GetByName looks the planet up by its normalized name.
func (r *PlanetRepository) GetByName(ctx context.Context, name string) (_ *planet.Planet, err error) {
	start := time.Now()
	defer func() { r.observe("get", start, err) }()

	row := r.pool.QueryRow(ctx,
		"SELECT "+planetColumns+" FROM planets WHERE name_key = $1", planet.NormalizeName(name))
	p, err := scanPlanet(row)
	if stderrors.Is(err, pgx.ErrNoRows) {
		return nil, errors.Newf(errors.ErrCodePlanetNotFound, "planet %q not found", name)
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeDBQueryError, "failed to load planet")
	}
	return p, nil
}

// Upsert writes planets in one transaction. Existing rows keep their ID and
// created_at.
func (r *PlanetRepository) Upsert(ctx context.Context, planets []*planet.Planet) (_ int, err error) {
	if len(planets) == 0 {
		return 0, nil
	}
	start := time.Now()
	defer func() { r.observe("upsert", start, err) }()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, errors.Wrap(err, errors.CodeDBQueryError, "failed to begin upsert")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	written, err := upsertPlanets(ctx, tx, planets)
	if err != nil {
		r.logger.Error("upsert planets failed", logging.Err(err), logging.Int("count", len(planets)))
		return 0, err
	}
	if err = tx.Commit(ctx); err != nil {
		return 0, errors.Wrap(err, errors.CodeDBQueryError, "failed to commit upsert")
	}
	r.logger.Debug("upserted planets", logging.Int("count", written))
	return written, nil
}

func upsertPlanets(ctx context.Context, q querier, planets []*planet.Planet) (int, error) {
	batch := &pgx.Batch{}
	now := time.Now().UTC()
	for _, p := range planets {
		if p == nil {
			continue
		}
		if err := p.Validate(); err != nil {
			return 0, err
		}
		created, updated := p.CreatedAt, p.UpdatedAt
		if created.IsZero() {
			created = now
		}
		if updated.IsZero() {
			updated = now
		}
		batch.Queue(upsertPlanetSQL,
			p.ID, p.Name, p.HostStar, p.DiscoveryMethod, p.DiscoveryYear,
			p.DistancePc, p.Radius, p.Mass, p.OrbitalPeriod, p.SemiMajorAxisAU, p.Eccentricity,
			p.TeqK, p.StarType, p.StarTempK, p.StarLuminosity, p.StarRadius,
			p.Atmosphere, p.StellarActivity, p.Habitability.Score, p.Habitability.ESI, p.Habitability.Label,
			created, updated, planet.NormalizeName(p.Name),
		)
	}

	results := q.SendBatch(ctx, batch)
	defer results.Close()

	written := 0
	for i := 0; i < batch.Len(); i++ {
		tag, err := results.Exec()
		if err != nil {
			return 0, errors.Wrap(err, errors.CodeDBQueryError, "failed to upsert planet")
		}
		written += int(tag.RowsAffected())
	}
	return written, nil
}

// LatestUpdate returns the newest updated_at, or the zero time for an empty
// catalog.
func (r *PlanetRepository) LatestUpdate(ctx context.Context) (_ time.Time, err error) {
	start := time.Now()
	defer func() { r.observe("latest_update", start, err) }()

	var latest *time.Time
	if err = r.pool.QueryRow(ctx, "SELECT MAX(updated_at) FROM planets").Scan(&latest); err != nil {
		return time.Time{}, errors.Wrap(err, errors.CodeDBQueryError, "failed to read latest update")
	}
	if latest == nil {
		return time.Time{}, nil
	}
	return latest.UTC(), nil
}

func (r *PlanetRepository) Count(ctx context.Context) (_ int64, err error) {
	start := time.Now()
	defer func() { r.observe("count", start, err) }()

	var n int64
	if err = r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM planets").Scan(&n); err != nil {
		return 0, errors.Wrap(err, errors.CodeDBQueryError, "failed to count planets")
	}
	return n, nil
}

func scanPlanet(row scanner) (*planet.Planet, error) {
	var p planet.Planet
	err := row.Scan(
		&p.ID, &p.Name, &p.HostStar, &p.DiscoveryMethod, &p.DiscoveryYear,
		&p.DistancePc, &p.Radius, &p.Mass, &p.OrbitalPeriod, &p.SemiMajorAxisAU, &p.Eccentricity,
		&p.TeqK, &p.StarType, &p.StarTempK, &p.StarLuminosity, &p.StarRadius,
		&p.Atmosphere, &p.StellarActivity, &p.Habitability.Score, &p.Habitability.ESI, &p.Habitability.Label,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func scanPlanets(rows pgx.Rows) ([]*planet.Planet, error) {
	planets := []*planet.Planet{}
	for rows.Next() {
		p, err := scanPlanet(rows)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeDBQueryError, "failed to scan planet row")
		}
		planets = append(planets, p)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.CodeDBQueryError, "row iteration error")
	}
	return planets, nil
}

//Personal.AI order the ending
