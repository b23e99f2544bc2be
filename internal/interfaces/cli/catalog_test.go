package cli

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/ExoMetrics/internal/application/catalog"
	"github.com/turtacn/ExoMetrics/pkg/client"
	"github.com/turtacn/ExoMetrics/pkg/errors"
)

const seedYAML = "planets:\n  - name: Kepler-442 b\n    radius: 1.34\n"

func TestCatalogSeed_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(seedYAML), 0o600))

	b := new(MockBackend)
	b.On("Seed", mock.Anything, mock.MatchedBy(func(r io.Reader) bool {
		data, err := io.ReadAll(r)
		return err == nil && string(data) == seedYAML
	})).Return(1, nil)

	out, _, err := execute(t, withBackend(b), "catalog", "seed", path)
	require.NoError(t, err)
	assert.Equal(t, "OK: seeded 1 planets\n", out)
	b.AssertExpectations(t)
}

func TestCatalogSeed_StdinJSON(t *testing.T) {
	b := new(MockBackend)
	b.On("Seed", mock.Anything, mock.Anything).Return(3, nil)

	cmd := NewRootCommand(withBackend(b))
	var out strings.Builder
	cmd.SetOut(&out)
	cmd.SetIn(strings.NewReader(seedYAML))
	cmd.SetArgs([]string{"catalog", "seed", "-", "-o", "json"})
	require.NoError(t, cmd.Execute())
	assert.JSONEq(t, `{"seeded":3}`, out.String())
}

func TestCatalogSeed_MissingFile(t *testing.T) {
	_, _, err := execute(t, withBackend(new(MockBackend)), "catalog", "seed", filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeSeedInvalid))
}

func TestCatalogRefresh(t *testing.T) {
	tests := []struct {
		name string
		args []string
		res  *client.RefreshResponse
		want string
	}{
		{
			name: "completed",
			args: []string{"catalog", "refresh", "--force"},
			res: &client.RefreshResponse{Status: "completed", Force: true, Result: &catalog.RefreshResult{
				Fetched: 10, Upserted: 9, Indexed: 9, Published: 2, LastUpdate: time.Now(),
			}},
			want: "Refresh completed: fetched 10, upserted 9, indexed 9, published 2\n",
		},
		{
			name: "skipped",
			args: []string{"catalog", "refresh"},
			res: &client.RefreshResponse{Status: "completed", Result: &catalog.RefreshResult{
				Skipped: true, Reason: "catalog is fresh",
			}},
			want: "Refresh skipped: catalog is fresh\n",
		},
		{
			name: "queued",
			args: []string{"catalog", "refresh"},
			res:  &client.RefreshResponse{Status: "queued", EventID: "evt-1"},
			want: "Refresh queued (event evt-1)\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := new(MockBackend)
			b.On("Refresh", mock.Anything, tt.res.Force).Return(tt.res, nil)

			out, _, err := execute(t, withBackend(b), tt.args...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
			b.AssertExpectations(t)
		})
	}
}

func TestCatalogRefresh_Error(t *testing.T) {
	b := new(MockBackend)
	b.On("Refresh", mock.Anything, false).Return(nil, errors.Unavailable("archive unreachable"))

	_, _, err := execute(t, withBackend(b), "catalog", "refresh")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeServiceUnavailable))
}

//Personal.AI order the ending
