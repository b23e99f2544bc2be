package cli

import (
	"context"
	"io"

	"github.com/turtacn/ExoMetrics/internal/application/catalog"
	"github.com/turtacn/ExoMetrics/internal/application/comparison"
	"github.com/turtacn/ExoMetrics/internal/domain/chart"
	"github.com/turtacn/ExoMetrics/internal/domain/planet"
	"github.com/turtacn/ExoMetrics/pkg/client"
	"github.com/turtacn/ExoMetrics/pkg/errors"
)

// Backend is what the planet and catalog commands run against: an API
// server or the local stores.
type Backend interface {
	List(ctx context.Context, q planet.Query) (*catalog.Page, error)
	Names(ctx context.Context) ([]string, error)
	Get(ctx context.Context, name string) (*planet.Planet, error)
	Compare(ctx context.Context, req comparison.Request) (*comparison.Result, error)
	Survivability(ctx context.Context, req comparison.SurvivalRequest) (*comparison.SurvivalReport, error)
	Distribution(ctx context.Context) (*chart.HabitabilitySummary, error)
	ExportCSV(ctx context.Context, q planet.Query, w io.Writer) error
	Archive(ctx context.Context, q planet.Query) (*catalog.ExportResult, error)
	Refresh(ctx context.Context, force bool) (*client.RefreshResponse, error)
	Seed(ctx context.Context, r io.Reader) (int, error)
}

type remoteBackend struct {
	c *client.Client
}

// NewRemoteBackend runs commands through the REST API.
func NewRemoteBackend(c *client.Client) Backend {
	return &remoteBackend{c: c}
}

func listOptions(q planet.Query) client.ListOptions {
	return client.ListOptions{
		Query:       q.Search,
		StarType:    q.StarType,
		MaxDistance: q.MaxDistance,
		MinScore:    q.MinScore,
		Page:        q.Page,
		Limit:       q.Limit,
	}
}

func (r *remoteBackend) List(ctx context.Context, q planet.Query) (*catalog.Page, error) {
	return r.c.Planets().List(ctx, listOptions(q))
}

func (r *remoteBackend) Names(ctx context.Context) ([]string, error) {
	return r.c.Planets().Names(ctx)
}

func (r *remoteBackend) Get(ctx context.Context, name string) (*planet.Planet, error) {
	return r.c.Planets().Get(ctx, name)
}

func (r *remoteBackend) Compare(ctx context.Context, req comparison.Request) (*comparison.Result, error) {
	if req.Record != nil {
		return r.c.CompareRecord(ctx, *req.Record, req.Metrics)
	}
	return r.c.Planets().Compare(ctx, req.Name, req.Metrics...)
}

func (r *remoteBackend) Survivability(ctx context.Context, req comparison.SurvivalRequest) (*comparison.SurvivalReport, error) {
	if req.Params != nil {
		return r.c.Simulate(ctx, req)
	}
	return r.c.Planets().Survivability(ctx, req.Name, req.Mode)
}

func (r *remoteBackend) Distribution(ctx context.Context) (*chart.HabitabilitySummary, error) {
	return r.c.HabitabilityDistribution(ctx)
}

func (r *remoteBackend) ExportCSV(ctx context.Context, q planet.Query, w io.Writer) error {
	_, err := r.c.Planets().ExportCSV(ctx, listOptions(q), w)
	return err
}

func (r *remoteBackend) Archive(ctx context.Context, q planet.Query) (*catalog.ExportResult, error) {
	return r.c.Planets().ArchiveExport(ctx, listOptions(q))
}

func (r *remoteBackend) Refresh(ctx context.Context, force bool) (*client.RefreshResponse, error) {
	return r.c.RefreshCatalog(ctx, force)
}

func (r *remoteBackend) Seed(ctx context.Context, rd io.Reader) (int, error) {
	return 0, errors.InvalidParam("seeding writes to the database directly; run without --server")
}

type localBackend struct {
	catalog    catalog.Service
	comparison comparison.Service
}

// NewLocalBackend runs commands against in-process services.
func NewLocalBackend(cat catalog.Service, cmp comparison.Service) Backend {
	return &localBackend{catalog: cat, comparison: cmp}
}

func (l *localBackend) List(ctx context.Context, q planet.Query) (*catalog.Page, error) {
	return l.catalog.List(ctx, q)
}

func (l *localBackend) Names(ctx context.Context) ([]string, error) {
	return l.catalog.Names(ctx)
}

func (l *localBackend) Get(ctx context.Context, name string) (*planet.Planet, error) {
	return l.catalog.Get(ctx, name)
}

func (l *localBackend) Compare(ctx context.Context, req comparison.Request) (*comparison.Result, error) {
	return l.comparison.Compare(ctx, req)
}

func (l *localBackend) Survivability(ctx context.Context, req comparison.SurvivalRequest) (*comparison.SurvivalReport, error) {
	return l.comparison.Survivability(ctx, req)
}

func (l *localBackend) Distribution(ctx context.Context) (*chart.HabitabilitySummary, error) {
	return l.comparison.Distribution(ctx, planet.Query{})
}

func (l *localBackend) ExportCSV(ctx context.Context, q planet.Query, w io.Writer) error {
	q.Page, q.Limit = 1, catalog.MaxPageSize
	var all []*planet.Planet
	for {
		page, err := l.catalog.List(ctx, q)
		if err != nil {
			return err
		}
		all = append(all, page.Planets...)
		if q.Page >= page.TotalPages || len(page.Planets) == 0 {
			break
		}
		q.Page++
	}
	return catalog.WriteCSV(w, all)
}

func (l *localBackend) Archive(ctx context.Context, q planet.Query) (*catalog.ExportResult, error) {
	return l.catalog.Export(ctx, q)
}

func (l *localBackend) Refresh(ctx context.Context, force bool) (*client.RefreshResponse, error) {
	res, err := l.catalog.Refresh(ctx, force)
	if err != nil {
		return nil, err
	}
	return &client.RefreshResponse{Status: "completed", Force: force, Result: res}, nil
}

func (l *localBackend) Seed(ctx context.Context, r io.Reader) (int, error) {
	return l.catalog.Seed(ctx, r)
}

//Personal.AI order the ending
