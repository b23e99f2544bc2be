package cli

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/mock"

	"github.com/turtacn/ExoMetrics/internal/application/catalog"
	"github.com/turtacn/ExoMetrics/internal/application/comparison"
	"github.com/turtacn/ExoMetrics/internal/config"
	"github.com/turtacn/ExoMetrics/internal/domain/chart"
	"github.com/turtacn/ExoMetrics/internal/domain/planet"
	"github.com/turtacn/ExoMetrics/internal/infrastructure/database/postgres"
	"github.com/turtacn/ExoMetrics/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ExoMetrics/pkg/client"
)

func init() {
	color.NoColor = true
}

type MockBackend struct{ mock.Mock }

var _ Backend = (*MockBackend)(nil)

func (m *MockBackend) List(ctx context.Context, q planet.Query) (*catalog.Page, error) {
	args := m.Called(ctx, q)
	p, _ := args.Get(0).(*catalog.Page)
	return p, args.Error(1)
}

func (m *MockBackend) Names(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	n, _ := args.Get(0).([]string)
	return n, args.Error(1)
}

func (m *MockBackend) Get(ctx context.Context, name string) (*planet.Planet, error) {
	args := m.Called(ctx, name)
	p, _ := args.Get(0).(*planet.Planet)
	return p, args.Error(1)
}

func (m *MockBackend) Compare(ctx context.Context, req comparison.Request) (*comparison.Result, error) {
	args := m.Called(ctx, req)
	r, _ := args.Get(0).(*comparison.Result)
	return r, args.Error(1)
}

func (m *MockBackend) Survivability(ctx context.Context, req comparison.SurvivalRequest) (*comparison.SurvivalReport, error) {
	args := m.Called(ctx, req)
	rep, _ := args.Get(0).(*comparison.SurvivalReport)
	return rep, args.Error(1)
}

func (m *MockBackend) Distribution(ctx context.Context) (*chart.HabitabilitySummary, error) {
	args := m.Called(ctx)
	s, _ := args.Get(0).(*chart.HabitabilitySummary)
	return s, args.Error(1)
}

func (m *MockBackend) ExportCSV(ctx context.Context, q planet.Query, w io.Writer) error {
	args := m.Called(ctx, q, w)
	if s, ok := args.Get(0).(string); ok {
		_, _ = io.WriteString(w, s)
	}
	return args.Error(1)
}

func (m *MockBackend) Archive(ctx context.Context, q planet.Query) (*catalog.ExportResult, error) {
	args := m.Called(ctx, q)
	r, _ := args.Get(0).(*catalog.ExportResult)
	return r, args.Error(1)
}

func (m *MockBackend) Refresh(ctx context.Context, force bool) (*client.RefreshResponse, error) {
	args := m.Called(ctx, force)
	r, _ := args.Get(0).(*client.RefreshResponse)
	return r, args.Error(1)
}

func (m *MockBackend) Seed(ctx context.Context, r io.Reader) (int, error) {
	args := m.Called(ctx, r)
	return args.Int(0), args.Error(1)
}

type MockCatalog struct{ mock.Mock }

var _ catalog.Service = (*MockCatalog)(nil)

func (m *MockCatalog) List(ctx context.Context, q planet.Query) (*catalog.Page, error) {
	args := m.Called(ctx, q)
	p, _ := args.Get(0).(*catalog.Page)
	return p, args.Error(1)
}

func (m *MockCatalog) Names(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	n, _ := args.Get(0).([]string)
	return n, args.Error(1)
}

func (m *MockCatalog) Get(ctx context.Context, name string) (*planet.Planet, error) {
	args := m.Called(ctx, name)
	p, _ := args.Get(0).(*planet.Planet)
	return p, args.Error(1)
}

func (m *MockCatalog) Suggest(ctx context.Context, prefix string, size int) ([]string, error) {
	args := m.Called(ctx, prefix, size)
	n, _ := args.Get(0).([]string)
	return n, args.Error(1)
}

func (m *MockCatalog) Export(ctx context.Context, q planet.Query) (*catalog.ExportResult, error) {
	args := m.Called(ctx, q)
	r, _ := args.Get(0).(*catalog.ExportResult)
	return r, args.Error(1)
}

func (m *MockCatalog) RecentExports(ctx context.Context, limit int) ([]*planet.Export, error) {
	args := m.Called(ctx, limit)
	r, _ := args.Get(0).([]*planet.Export)
	return r, args.Error(1)
}

func (m *MockCatalog) Refresh(ctx context.Context, force bool) (*catalog.RefreshResult, error) {
	args := m.Called(ctx, force)
	r, _ := args.Get(0).(*catalog.RefreshResult)
	return r, args.Error(1)
}

func (m *MockCatalog) Seed(ctx context.Context, r io.Reader) (int, error) {
	args := m.Called(ctx, r)
	return args.Int(0), args.Error(1)
}

type MockMigrator struct{ mock.Mock }

var _ Migrator = (*MockMigrator)(nil)

func (m *MockMigrator) Up() error { return m.Called().Error(0) }

func (m *MockMigrator) Down(steps int) error { return m.Called(steps).Error(0) }

func (m *MockMigrator) Force(version int) error { return m.Called(version).Error(0) }

func (m *MockMigrator) Status(ctx context.Context) (postgres.MigrationStatus, error) {
	args := m.Called(ctx)
	return args.Get(0).(postgres.MigrationStatus), args.Error(1)
}

func nopLogger(string) (logging.Logger, error) { return logging.NewNopLogger(), nil }

// withBackend returns dependencies whose local backend is b.
func withBackend(b Backend) Dependencies {
	return Dependencies{
		NewLogger: nopLogger,
		OpenLocal: func(context.Context, *config.Config, logging.Logger) (Backend, func(), error) {
			return b, nil, nil
		},
	}
}

// execute runs the command tree and returns stdout and stderr.
func execute(t *testing.T, deps Dependencies, args ...string) (string, string, error) {
	t.Helper()
	if deps.NewLogger == nil {
		deps.NewLogger = nopLogger
	}
	cmd := NewRootCommand(deps)
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

//Personal.AI order the ending
