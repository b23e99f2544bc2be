// Package archive reads planetary systems from the NASA Exoplanet Archive
// TAP service.
package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/turtacn/ExoMetrics/internal/config"
	"github.com/turtacn/ExoMetrics/internal/domain/planet"
	"github.com/turtacn/ExoMetrics/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ExoMetrics/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/ExoMetrics/pkg/errors"
)

const (
	DefaultBaseURL = "https://exoplanetarchive.ipac.caltech.edu/TAP/sync"
	DefaultTable   = "pscomppars"
	defaultMaxRows = 5000
	defaultTimeout = 2 * time.Minute
	maxErrorBody   = 2048
)

var columns = []string{
	"pl_name", "hostname", "discoverymethod", "disc_year", "sy_dist",
	"pl_rade", "pl_bmasse", "pl_orbper", "pl_orbsmax", "pl_orbeccen",
	"pl_eqt", "st_spectype", "st_teff", "st_lum", "st_rad",
}

// Row is one record of the composite parameters table. Every measurement
// may be null.
type Row struct {
	Name            string   `json:"pl_name"`
	HostName        *string  `json:"hostname"`
	DiscoveryMethod *string  `json:"discoverymethod"`
	DiscoveryYear   *int     `json:"disc_year"`
	DistancePc      *float64 `json:"sy_dist"`
	Radius          *float64 `json:"pl_rade"`
	Mass            *float64 `json:"pl_bmasse"`
	OrbitalPeriod   *float64 `json:"pl_orbper"`
	SemiMajorAxisAU *float64 `json:"pl_orbsmax"`
	Eccentricity    *float64 `json:"pl_orbeccen"`
	TeqK            *float64 `json:"pl_eqt"`
	SpectralType    *string  `json:"st_spectype"`
	StarTempK       *float64 `json:"st_teff"`
	// LogLuminosity is log10(L/Lsun).
	LogLuminosity *float64 `json:"st_lum"`
	StarRadius    *float64 `json:"st_rad"`
}

func str(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

// Planet converts the row to a catalog planet. Luminosity is converted
// from its log10 form. Rows the catalog would refuse to store, such as a
// negative measurement or an eccentricity of 1 or more, are rejected.
func (r Row) Planet() (*planet.Planet, error) {
	p, err := planet.NewPlanet(r.Name)
	if err != nil {
		return nil, err
	}
	p.HostStar = str(r.HostName)
	p.DiscoveryMethod = str(r.DiscoveryMethod)
	if r.DiscoveryYear != nil {
		p.DiscoveryYear = *r.DiscoveryYear
	}
	p.DistancePc = r.DistancePc
	p.Radius = r.Radius
	p.Mass = r.Mass
	p.OrbitalPeriod = r.OrbitalPeriod
	p.SemiMajorAxisAU = r.SemiMajorAxisAU
	p.Eccentricity = r.Eccentricity
	p.TeqK = r.TeqK
	p.StarType = str(r.SpectralType)
	p.StarTempK = r.StarTempK
	p.StarRadius = r.StarRadius
	if r.LogLuminosity != nil {
		p.StarLuminosity = planet.F(math.Pow(10, *r.LogLuminosity))
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Client queries the TAP sync endpoint.
type Client struct {
	http    *http.Client
	baseURL string
	table   string
	maxRows int
	logger  logging.Logger
	metrics *prometheus.AppMetrics
}

func NewClient(cfg config.ArchiveConfig, logger logging.Logger, metrics *prometheus.AppMetrics) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	c := &Client{
		http:    &http.Client{Timeout: timeout},
		baseURL: cfg.BaseURL,
		table:   cfg.Table,
		maxRows: cfg.MaxRows,
		logger:  logger.Named("archive"),
		metrics: metrics,
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.table == "" {
		c.table = DefaultTable
	}
	if c.maxRows <= 0 {
		c.maxRows = defaultMaxRows
	}
	return c
}

// quote renders an ADQL string literal.
func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func (c *Client) query(where string, top int) string {
	return fmt.Sprintf("select top %d %s from %s where %s", top, strings.Join(columns, ","), c.table, where)
}

// FetchAll returns up to the configured row limit of planets with a
// measured radius.
func (c *Client) FetchAll(ctx context.Context) ([]*planet.Planet, error) {
	return c.fetch(ctx, c.query("pl_rade is not null", c.maxRows))
}

// FetchOne looks a planet up by its exact archive name. It returns a
// PLANET_001 error when the archive does not know the name.
func (c *Client) FetchOne(ctx context.Context, name string) (*planet.Planet, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New(errors.ErrCodePlanetNameInvalid, "planet name is required")
	}
	planets, err := c.fetch(ctx, c.query("pl_name = "+quote(name), 1))
	if err != nil {
		return nil, err
	}
	if len(planets) == 0 {
		return nil, errors.New(errors.ErrCodePlanetNotFound, "planet not found in archive").WithDetail(name)
	}
	return planets[0], nil
}

func (c *Client) fetch(ctx context.Context, adql string) (planets []*planet.Planet, err error) {
	start := time.Now()
	defer func() { prometheus.RecordArchiveFetch(c.metrics, time.Since(start), err) }()

	q := url.Values{"query": {adql}, "format": {"json"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeArchiveUnavailable, "failed to build archive request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeArchiveUnavailable, "archive request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, errors.Newf(errors.ErrCodeArchiveUnavailable, "archive returned status %d", resp.StatusCode).
			WithDetail(strings.TrimSpace(string(body)))
	}

	var rows []Row
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeArchiveParseError, "failed to decode archive response")
	}

	planets = make([]*planet.Planet, 0, len(rows))
	for _, r := range rows {
		p, err := r.Planet()
		if err != nil {
			c.logger.Warn("Skipping archive row", logging.String("name", r.Name), logging.Err(err))
			continue
		}
		planets = append(planets, p)
	}

	c.logger.Info("Archive fetch completed",
		logging.Int("rows", len(rows)),
		logging.Int("planets", len(planets)),
		logging.Duration("elapsed", time.Since(start)))
	return planets, nil
}

//Personal.AI order the ending
