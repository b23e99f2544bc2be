package opensearch

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"

	"github.com/turtacn/ExoMetrics/internal/domain/planet"
	"github.com/turtacn/ExoMetrics/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ExoMetrics/pkg/errors"
)

// PlanetIndex is the unprefixed name of the planet index.
const PlanetIndex = "planets"

var ErrIndexCreationFailed = errors.New(errors.ErrCodeSearchFailed, "index creation failed")

// PlanetDocument is the indexed form of a planet. Its ID is the
// normalized name, so re-indexing a planet overwrites it.
type PlanetDocument struct {
	Name              string     `json:"name"`
	NameKey           string     `json:"name_key"`
	HostStar          string     `json:"host_star,omitempty"`
	StarType          string     `json:"star_type,omitempty"`
	DiscoveryMethod   string     `json:"discovery_method,omitempty"`
	DiscoveryYear     int        `json:"discovery_year,omitempty"`
	DistancePc        *float64   `json:"distance_pc,omitempty"`
	Radius            *float64   `json:"radius,omitempty"`
	Mass              *float64   `json:"mass,omitempty"`
	TeqK              *float64   `json:"teq_k,omitempty"`
	HabitabilityScore int        `json:"habitability_score"`
	ESI               int        `json:"esi"`
	HabitabilityLabel string     `json:"habitability_label"`
	Habitable         bool       `json:"habitable"`
	UpdatedAt         time.Time  `json:"updated_at"`
	Suggest           Completion `json:"suggest"`
}

type Completion struct {
	Input []string `json:"input"`
}

func NewPlanetDocument(p *planet.Planet) PlanetDocument {
	input := []string{p.Name}
	if p.HostStar != "" {
		input = append(input, p.HostStar)
	}
	return PlanetDocument{
		Name:              p.Name,
		NameKey:           planet.NormalizeName(p.Name),
		HostStar:          p.HostStar,
		StarType:          p.StarType,
		DiscoveryMethod:   p.DiscoveryMethod,
		DiscoveryYear:     p.DiscoveryYear,
		DistancePc:        p.DistancePc,
		Radius:            p.Radius,
		Mass:              p.Mass,
		TeqK:              p.TeqK,
		HabitabilityScore: p.Habitability.Score,
		ESI:               p.Habitability.ESI,
		HabitabilityLabel: p.Habitability.Label,
		Habitable:         p.IsHabitable(),
		UpdatedAt:         p.UpdatedAt,
		Suggest:           Completion{Input: input},
	}
}

// BulkResult reports the per-document outcome of a bulk request.
type BulkResult struct {
	Succeeded int
	Failed    int
	Errors    []BulkItemError
}

type BulkItemError struct {
	DocID     string
	ErrorType string
	Reason    string
}

type IndexerConfig struct {
	BulkBatchSize int
	RefreshPolicy string
}

// Indexer writes planets into the search index.
type Indexer struct {
	client *Client
	config IndexerConfig
	logger logging.Logger
}

func NewIndexer(client *Client, cfg IndexerConfig, logger logging.Logger) *Indexer {
	if cfg.BulkBatchSize <= 0 {
		cfg.BulkBatchSize = 500
	}
	if cfg.RefreshPolicy == "" {
		cfg.RefreshPolicy = "false"
	}
	return &Indexer{client: client, config: cfg, logger: logger.Named("planet_indexer")}
}

// EnsureIndex creates the planet index with its mapping when missing.
func (i *Indexer) EnsureIndex(ctx context.Context) error {
	name := i.client.Index(PlanetIndex)
	exists, err := i.IndexExists(ctx, name)
	if err != nil || exists {
		return err
	}

	body, err := json.Marshal(PlanetIndexMapping())
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to marshal index mapping")
	}
	resp, err := opensearchapi.IndicesCreateRequest{Index: name, Body: bytes.NewReader(body)}.Do(ctx, i.client.GetClient())
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSearchFailed, "failed to create index")
	}
	defer resp.Body.Close()
	if resp.IsError() {
		return handleErrorResponse(resp, ErrIndexCreationFailed)
	}
	i.logger.Info("Index created", logging.String("index", name))
	return nil
}

func (i *Indexer) IndexExists(ctx context.Context, name string) (bool, error) {
	resp, err := opensearchapi.IndicesExistsRequest{Index: []string{name}}.Do(ctx, i.client.GetClient())
	if err != nil {
		return false, errors.Wrap(err, errors.ErrCodeSearchFailed, "failed to check index existence")
	}
	defer resp.Body.Close()
	switch resp.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	}
	return false, handleErrorResponse(resp, errors.New(errors.ErrCodeSearchFailed, "check index existence failed"))
}

type bulkAction struct {
	Index  *bulkMeta `json:"index,omitempty"`
	Delete *bulkMeta `json:"delete,omitempty"`
}

type bulkMeta struct {
	Index string `json:"_index"`
	ID    string `json:"_id"`
}

// IndexPlanets upserts planets in batches. Per-document failures are
// reported in the result; a transport failure aborts the remaining batches.
func (i *Indexer) IndexPlanets(ctx context.Context, planets []*planet.Planet) (*BulkResult, error) {
	index := i.client.Index(PlanetIndex)
	result := &BulkResult{}

	for start := 0; start < len(planets); start += i.config.BulkBatchSize {
		end := min(start+i.config.BulkBatchSize, len(planets))
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		for _, p := range planets[start:end] {
			doc := NewPlanetDocument(p)
			if err := enc.Encode(bulkAction{Index: &bulkMeta{Index: index, ID: doc.NameKey}}); err != nil {
				return result, errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode bulk action")
			}
			if err := enc.Encode(doc); err != nil {
				return result, errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode planet document")
			}
		}
		if err := i.bulk(ctx, &buf, end-start, result); err != nil {
			return result, err
		}
	}

	i.logger.Info("Bulk index completed",
		logging.Int("total", len(planets)),
		logging.Int("succeeded", result.Succeeded),
		logging.Int("failed", result.Failed))
	return result, nil
}

// DeletePlanets removes planets by name. Missing documents are not
// failures.
func (i *Indexer) DeletePlanets(ctx context.Context, names []string) (*BulkResult, error) {
	result := &BulkResult{}
	if len(names) == 0 {
		return result, nil
	}
	index := i.client.Index(PlanetIndex)
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, n := range names {
		if err := enc.Encode(bulkAction{Delete: &bulkMeta{Index: index, ID: planet.NormalizeName(n)}}); err != nil {
			return result, errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode bulk action")
		}
	}
	return result, i.bulk(ctx, &buf, len(names), result)
}

type bulkItem struct {
	ID     string `json:"_id"`
	Status int    `json:"status"`
	Error  struct {
		Type   string `json:"type"`
		Reason string `json:"reason"`
	} `json:"error"`
}

func (i *Indexer) bulk(ctx context.Context, body io.Reader, count int, result *BulkResult) error {
	resp, err := opensearchapi.BulkRequest{Body: body, Refresh: i.config.RefreshPolicy}.Do(ctx, i.client.GetClient())
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSearchFailed, "bulk request failed")
	}
	defer resp.Body.Close()

	if resp.IsError() {
		result.Failed += count
		err := handleErrorResponse(resp, errors.New(errors.ErrCodeSearchFailed, "bulk batch failed"))
		result.Errors = append(result.Errors, BulkItemError{DocID: "batch_error", ErrorType: "http_error", Reason: err.Error()})
		return nil
	}

	var bulkResp struct {
		Errors bool                  `json:"errors"`
		Items  []map[string]bulkItem `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&bulkResp); err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to decode bulk response")
	}

	for _, entry := range bulkResp.Items {
		for action, item := range entry {
			ok := item.Status >= 200 && item.Status < 300 ||
				action == "delete" && item.Status == http.StatusNotFound
			if ok {
				result.Succeeded++
				continue
			}
			result.Failed++
			result.Errors = append(result.Errors, BulkItemError{
				DocID:     item.ID,
				ErrorType: item.Error.Type,
				Reason:    item.Error.Reason,
			})
		}
	}
	return nil
}

func handleErrorResponse(resp *opensearchapi.Response, base *errors.AppError) error {
	var errResp struct {
		Error struct {
			Type   string `json:"type"`
			Reason string `json:"reason"`
		} `json:"error"`
	}
	body, _ := io.ReadAll(resp.Body)
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error.Reason != "" {
		return base.WithDetail(errResp.Error.Type + ": " + errResp.Error.Reason)
	}
	return base.WithDetail("status " + resp.Status())
}

// PlanetIndexMapping maps names for both full-text and exact matching.
func PlanetIndexMapping() map[string]any {
	keyword := map[string]any{"type": "keyword"}
	float := map[string]any{"type": "float"}
	return map[string]any{
		"settings": map[string]any{
			"number_of_shards":   1,
			"number_of_replicas": 1,
		},
		"mappings": map[string]any{
			"properties": map[string]any{
				"name": map[string]any{
					"type":   "text",
					"fields": map[string]any{"raw": keyword},
				},
				"name_key":           keyword,
				"host_star":          map[string]any{"type": "text", "fields": map[string]any{"raw": keyword}},
				"star_type":          keyword,
				"discovery_method":   keyword,
				"discovery_year":     map[string]any{"type": "integer"},
				"distance_pc":        float,
				"radius":             float,
				"mass":               float,
				"teq_k":              float,
				"habitability_score": map[string]any{"type": "integer"},
				"esi":                map[string]any{"type": "integer"},
				"habitability_label": keyword,
				"habitable":          map[string]any{"type": "boolean"},
				"updated_at":         map[string]any{"type": "date"},
				"suggest":            map[string]any{"type": "completion"},
			},
		},
	}
}

//Personal.AI order the ending
