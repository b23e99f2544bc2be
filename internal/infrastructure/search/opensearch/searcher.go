package opensearch

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"

	"github.com/turtacn/ExoMetrics/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ExoMetrics/pkg/errors"
)

const suggestName = "planet-suggest"

// SearchQuery filters the planet index. Zero values do not filter.
type SearchQuery struct {
	Text          string
	StarType      string
	MinScore      int
	HabitableOnly bool
	MaxDistancePc float64
	From          int
	Size          int
}

type SearchHit struct {
	ID       string         `json:"id"`
	Score    float64        `json:"score"`
	Document PlanetDocument `json:"document"`
}

type SearchResult struct {
	Total  int64       `json:"total"`
	Hits   []SearchHit `json:"hits"`
	TookMs int64       `json:"tookMs"`
}

type SearcherConfig struct {
	DefaultPageSize int
	MaxPageSize     int
}

// Searcher queries the planet index.
type Searcher struct {
	client *Client
	config SearcherConfig
	logger logging.Logger
}

func NewSearcher(client *Client, cfg SearcherConfig, logger logging.Logger) *Searcher {
	if cfg.DefaultPageSize <= 0 {
		cfg.DefaultPageSize = 20
	}
	if cfg.MaxPageSize <= 0 {
		cfg.MaxPageSize = 100
	}
	return &Searcher{client: client, config: cfg, logger: logger.Named("planet_searcher")}
}

// Search runs a filtered multi-field query. Without text, hits are ordered
// by habitability score.
func (s *Searcher) Search(ctx context.Context, q SearchQuery) (*SearchResult, error) {
	if q.Size <= 0 {
		q.Size = s.config.DefaultPageSize
	}
	q.Size = min(q.Size, s.config.MaxPageSize)
	q.From = max(q.From, 0)

	body, err := json.Marshal(buildQueryDSL(q))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to marshal query DSL")
	}

	start := time.Now()
	resp, err := opensearchapi.SearchRequest{
		Index: []string{s.client.Index(PlanetIndex)},
		Body:  bytes.NewReader(body),
	}.Do(ctx, s.client.GetClient())
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, errors.New(errors.ErrCodeTimeout, "search request timed out")
		}
		return nil, errors.Wrap(err, errors.ErrCodeSearchFailed, "search request failed")
	}
	defer resp.Body.Close()
	if resp.IsError() {
		return nil, handleErrorResponse(resp, errors.New(errors.ErrCodeSearchFailed, "search failed"))
	}

	var raw struct {
		Took int64 `json:"took"`
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				ID     string         `json:"_id"`
				Score  float64        `json:"_score"`
				Source PlanetDocument `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to decode search response")
	}

	result := &SearchResult{Total: raw.Hits.Total.Value, TookMs: raw.Took, Hits: make([]SearchHit, 0, len(raw.Hits.Hits))}
	for _, h := range raw.Hits.Hits {
		result.Hits = append(result.Hits, SearchHit{ID: h.ID, Score: h.Score, Document: h.Source})
	}

	s.logger.Debug("Search executed",
		logging.String("text", q.Text),
		logging.Int64("took_ms", time.Since(start).Milliseconds()),
		logging.Int64("hits", result.Total))
	return result, nil
}

func buildQueryDSL(q SearchQuery) map[string]any {
	var must []any
	if text := strings.TrimSpace(q.Text); text != "" {
		must = append(must, map[string]any{
			"multi_match": map[string]any{
				"query":     text,
				"fields":    []string{"name^3", "host_star", "discovery_method"},
				"fuzziness": "AUTO",
			},
		})
	}

	var filter []any
	if q.StarType != "" {
		filter = append(filter, map[string]any{"term": map[string]any{"star_type": q.StarType}})
	}
	if q.MinScore > 0 {
		filter = append(filter, map[string]any{"range": map[string]any{"habitability_score": map[string]any{"gte": q.MinScore}}})
	}
	if q.MaxDistancePc > 0 {
		filter = append(filter, map[string]any{"range": map[string]any{"distance_pc": map[string]any{"lte": q.MaxDistancePc}}})
	}
	if q.HabitableOnly {
		filter = append(filter, map[string]any{"term": map[string]any{"habitable": true}})
	}

	boolQuery := map[string]any{}
	if len(must) > 0 {
		boolQuery["must"] = must
	} else {
		boolQuery["must"] = []any{map[string]any{"match_all": map[string]any{}}}
	}
	if len(filter) > 0 {
		boolQuery["filter"] = filter
	}

	dsl := map[string]any{
		"query": map[string]any{"bool": boolQuery},
		"from":  q.From,
		"size":  q.Size,
	}
	if len(must) == 0 {
		dsl["sort"] = []any{
			map[string]any{"habitability_score": map[string]any{"order": "desc"}},
			map[string]any{"name.raw": map[string]any{"order": "asc"}},
		}
	}
	return dsl
}

// Suggest completes a planet or host star name prefix.
func (s *Searcher) Suggest(ctx context.Context, prefix string, size int) ([]string, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return []string{}, nil
	}
	if size <= 0 {
		size = 10
	}
	dsl := map[string]any{
		"_source": false,
		"suggest": map[string]any{
			suggestName: map[string]any{
				"prefix": prefix,
				"completion": map[string]any{
					"field":           "suggest",
					"size":            size,
					"skip_duplicates": true,
				},
			},
		},
	}
	body, err := json.Marshal(dsl)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to marshal suggest query")
	}

	resp, err := opensearchapi.SearchRequest{
		Index: []string{s.client.Index(PlanetIndex)},
		Body:  bytes.NewReader(body),
	}.Do(ctx, s.client.GetClient())
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSearchFailed, "suggest request failed")
	}
	defer resp.Body.Close()
	if resp.IsError() {
		return nil, handleErrorResponse(resp, errors.New(errors.ErrCodeSearchFailed, "suggest failed"))
	}

	var suggestResp struct {
		Suggest map[string][]struct {
			Options []struct {
				Text string `json:"text"`
			} `json:"options"`
		} `json:"suggest"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&suggestResp); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to decode suggest response")
	}

	out := []string{}
	for _, entry := range suggestResp.Suggest[suggestName] {
		for _, opt := range entry.Options {
			out = append(out, opt.Text)
		}
	}
	return out, nil
}

//Personal.AI order the ending
