package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/turtacn/ExoMetrics/internal/application/catalog"
	"github.com/turtacn/ExoMetrics/internal/application/comparison"
	"github.com/turtacn/ExoMetrics/internal/domain/planet"
)

// PlanetsClient covers the /planets routes.
type PlanetsClient struct {
	client *Client
}

// ListOptions filters a catalog listing. Zero values are omitted.
type ListOptions struct {
	Query       string
	StarType    string
	MaxDistance *float64
	MinScore    *int
	Page        int
	Limit       int
}

func (o ListOptions) values() url.Values {
	v := url.Values{}
	if o.Query != "" {
		v.Set("q", o.Query)
	}
	if o.StarType != "" {
		v.Set("starType", o.StarType)
	}
	if o.MaxDistance != nil {
		v.Set("maxDistance", strconv.FormatFloat(*o.MaxDistance, 'f', -1, 64))
	}
	if o.MinScore != nil {
		v.Set("minScore", strconv.Itoa(*o.MinScore))
	}
	if o.Page > 0 {
		v.Set("page", strconv.Itoa(o.Page))
	}
	if o.Limit > 0 {
		v.Set("limit", strconv.Itoa(o.Limit))
	}
	return v
}

func withQuery(path string, v url.Values) string {
	if len(v) == 0 {
		return path
	}
	return path + "?" + v.Encode()
}

func (p *PlanetsClient) planetPath(name string) string {
	return p.client.apiPrefix + "/planets/" + url.PathEscape(name)
}

func (p *PlanetsClient) List(ctx context.Context, opts ListOptions) (*catalog.Page, error) {
	var out catalog.Page
	if err := p.client.get(ctx, withQuery(p.client.apiPrefix+"/planets", opts.values()), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (p *PlanetsClient) Names(ctx context.Context) ([]string, error) {
	var out struct {
		Names []string `json:"names"`
	}
	if err := p.client.get(ctx, p.client.apiPrefix+"/planets/names", &out); err != nil {
		return nil, err
	}
	return out.Names, nil
}

// Get looks a planet up by name; the server ignores case.
func (p *PlanetsClient) Get(ctx context.Context, name string) (*planet.Planet, error) {
	var out planet.Planet
	if err := p.client.get(ctx, p.planetPath(name), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Compare compares a catalog planet against Earth over metrics, or all
// metrics when none are given.
func (p *PlanetsClient) Compare(ctx context.Context, name string, metrics ...string) (*comparison.Result, error) {
	v := url.Values{}
	for _, m := range metrics {
		v.Add("metrics", m)
	}
	var out comparison.Result
	if err := p.client.get(ctx, withQuery(p.planetPath(name)+"/compare", v), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Survivability runs the survival simulation for a catalog planet. An empty
// mode is human.
func (p *PlanetsClient) Survivability(ctx context.Context, name, mode string) (*comparison.SurvivalReport, error) {
	v := url.Values{}
	if mode != "" {
		v.Set("mode", mode)
	}
	var out comparison.SurvivalReport
	if err := p.client.get(ctx, withQuery(p.planetPath(name)+"/survivability", v), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ExportCSV streams the filtered catalog as CSV into w. It is not retried,
// since part of the body may already be written.
func (p *PlanetsClient) ExportCSV(ctx context.Context, opts ListOptions, w io.Writer) (int64, error) {
	v := opts.values()
	v.Del("page")
	v.Del("limit")
	req, requestID, err := p.client.newRequest(ctx, http.MethodGet, withQuery(p.client.apiPrefix+"/planets/export", v), nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Accept", "text/csv")
	resp, err := p.client.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return 0, decodeAPIError(resp, body, requestID)
	}
	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, fmt.Errorf("failed to read export: %w", err)
	}
	return n, nil
}

// ArchiveExport stores the filtered catalog in object storage and returns
// its download URL.
func (p *PlanetsClient) ArchiveExport(ctx context.Context, opts ListOptions) (*catalog.ExportResult, error) {
	v := opts.values()
	v.Del("page")
	v.Del("limit")
	v.Set("archive", "true")
	var out catalog.ExportResult
	if err := p.client.get(ctx, withQuery(p.client.apiPrefix+"/planets/export", v), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

//Personal.AI order the ending
