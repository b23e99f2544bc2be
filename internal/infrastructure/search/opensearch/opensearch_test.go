package opensearch

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	opensearchgo "github.com/opensearch-project/opensearch-go/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/ExoMetrics/internal/config"
	"github.com/turtacn/ExoMetrics/internal/domain/planet"
	"github.com/turtacn/ExoMetrics/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ExoMetrics/pkg/errors"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	osClient, err := opensearchgo.NewClient(opensearchgo.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return newClient(osClient, "test-", logging.NewNopLogger())
}

func TestValidateConfig(t *testing.T) {
	assert.Equal(t, ErrInvalidConfig, ValidateConfig(config.OpenSearchConfig{}))
	assert.Error(t, ValidateConfig(config.OpenSearchConfig{Addresses: []string{"localhost:9200"}}))
	assert.NoError(t, ValidateConfig(config.OpenSearchConfig{Addresses: []string{"http://localhost:9200"}}))
}

func TestNewClient_PingFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewClient(context.Background(), config.OpenSearchConfig{Addresses: []string{srv.URL}}, logging.NewNopLogger())
	assert.True(t, errors.IsCode(err, errors.ErrCodeServiceUnavailable))
}

func TestClient_PingAndIndex(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	require.NoError(t, c.Ping(context.Background()))
	assert.Equal(t, "test-planets", c.Index(PlanetIndex))
}

func TestNewPlanetDocument(t *testing.T) {
	p := &planet.Planet{
		Name: "TRAPPIST-1 e", HostStar: "TRAPPIST-1", StarType: "M8V",
		Habitability: planet.Assessment{Score: 81, ESI: 85, Label: planet.LabelPotentiallyHabitable},
	}
	doc := NewPlanetDocument(p)
	assert.Equal(t, "trappist-1 e", doc.NameKey)
	assert.True(t, doc.Habitable)
	assert.Equal(t, []string{"TRAPPIST-1 e", "TRAPPIST-1"}, doc.Suggest.Input)
}

func TestIndexer_EnsureIndex(t *testing.T) {
	var created bool
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodHead:
			w.WriteHeader(http.StatusNotFound)
		case http.MethodPut:
			assert.Equal(t, "/test-planets", r.URL.Path)
			body, _ := io.ReadAll(r.Body)
			assert.Contains(t, string(body), `"completion"`)
			created = true
			_, _ = w.Write([]byte(`{"acknowledged":true}`))
		}
	})
	require.NoError(t, NewIndexer(c, IndexerConfig{}, logging.NewNopLogger()).EnsureIndex(context.Background()))
	assert.True(t, created)
}

func TestIndexer_EnsureIndexExisting(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodHead, r.Method)
		w.WriteHeader(http.StatusOK)
	})
	assert.NoError(t, NewIndexer(c, IndexerConfig{}, logging.NewNopLogger()).EnsureIndex(context.Background()))
}

func TestIndexer_EnsureIndexFailure(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"type":"mapper_parsing_exception","reason":"bad mapping"}}`))
	})
	err := NewIndexer(c, IndexerConfig{}, logging.NewNopLogger()).EnsureIndex(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad mapping")
}

func TestIndexer_IndexPlanets(t *testing.T) {
	var batches []int
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/_bulk", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		lines := strings.Split(strings.TrimSpace(string(body)), "\n")
		batches = append(batches, len(lines)/2)

		var meta bulkAction
		require.NoError(t, json.Unmarshal([]byte(lines[0]), &meta))
		require.NotNil(t, meta.Index)
		assert.Equal(t, "test-planets", meta.Index.Index)

		if len(batches) == 1 {
			_, _ = w.Write([]byte(`{"errors":false,"items":[{"index":{"_id":"a","status":201}},{"index":{"_id":"b","status":200}}]}`))
			return
		}
		_, _ = w.Write([]byte(`{"errors":true,"items":[{"index":{"_id":"c","status":400,"error":{"type":"mapper_parsing_exception","reason":"bad"}}}]}`))
	})
	idx := NewIndexer(c, IndexerConfig{BulkBatchSize: 2}, logging.NewNopLogger())

	res, err := idx.IndexPlanets(context.Background(), []*planet.Planet{{Name: "A"}, {Name: "B"}, {Name: "C"}})
	require.NoError(t, err)
	assert.Equal(t, []int{2, 1}, batches)
	assert.Equal(t, 2, res.Succeeded)
	assert.Equal(t, 1, res.Failed)
	assert.Equal(t, "c", res.Errors[0].DocID)
}

func TestIndexer_DeletePlanets(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.Contains(t, string(body), `"_id":"kepler-22 b"`)
		_, _ = w.Write([]byte(`{"errors":false,"items":[{"delete":{"_id":"kepler-22 b","status":404}}]}`))
	})
	idx := NewIndexer(c, IndexerConfig{}, logging.NewNopLogger())

	res, err := idx.DeletePlanets(context.Background(), []string{"Kepler-22 b"})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Succeeded)

	res, err = idx.DeletePlanets(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, res.Succeeded)
}

func TestBuildQueryDSL(t *testing.T) {
	dsl := buildQueryDSL(SearchQuery{Size: 5})
	assert.Contains(t, dsl, "sort")

	dsl = buildQueryDSL(SearchQuery{Text: "trappist", StarType: "M8V", MinScore: 60, HabitableOnly: true, MaxDistancePc: 20, Size: 5})
	assert.NotContains(t, dsl, "sort")
	b := dsl["query"].(map[string]any)["bool"].(map[string]any)
	assert.Len(t, b["filter"], 4)
	assert.Len(t, b["must"], 1)
}

func TestSearcher_Search(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/test-planets/_search", r.URL.Path)
		var dsl map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&dsl))
		assert.Equal(t, float64(50), dsl["size"])
		_, _ = w.Write([]byte(`{"took":3,"hits":{"total":{"value":1},"hits":[
			{"_id":"trappist-1 e","_score":1.5,"_source":{"name":"TRAPPIST-1 e","habitability_score":81}}]}}`))
	})
	s := NewSearcher(c, SearcherConfig{MaxPageSize: 50}, logging.NewNopLogger())

	res, err := s.Search(context.Background(), SearchQuery{Text: "trappist", Size: 500, From: -3})
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Total)
	require.Len(t, res.Hits, 1)
	assert.Equal(t, "TRAPPIST-1 e", res.Hits[0].Document.Name)
	assert.Equal(t, 81, res.Hits[0].Document.HabitabilityScore)
}

func TestSearcher_SearchError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"type":"index_not_found_exception","reason":"no such index"}}`))
	})
	_, err := NewSearcher(c, SearcherConfig{}, logging.NewNopLogger()).Search(context.Background(), SearchQuery{})
	assert.True(t, errors.IsCode(err, errors.ErrCodeSearchFailed))
}

func TestSearcher_Suggest(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"suggest":{"planet-suggest":[{"options":[{"text":"Kepler-22 b"},{"text":"Kepler-452 b"}]}]}}`))
	})
	s := NewSearcher(c, SearcherConfig{}, logging.NewNopLogger())

	got, err := s.Suggest(context.Background(), "kep", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"Kepler-22 b", "Kepler-452 b"}, got)

	got, err = s.Suggest(context.Background(), "  ", 5)
	require.NoError(t, err)
	assert.Empty(t, got)
}

//Personal.AI order the ending
