// Package opensearch maintains the planet search index: bulk indexing after
// catalog refreshes, filtered full-text search and name suggestions.
package opensearch

import (
	"context"
	"crypto/tls"
	"net/http"
	"strings"
	"time"

	"github.com/opensearch-project/opensearch-go/v2"

	"github.com/turtacn/ExoMetrics/internal/config"
	"github.com/turtacn/ExoMetrics/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ExoMetrics/pkg/errors"
)

var (
	ErrInvalidConfig    = errors.New(errors.ErrCodeValidation, "invalid opensearch configuration")
	ErrConnectionFailed = errors.New(errors.ErrCodeServiceUnavailable, "opensearch connection failed")
)

const defaultIndexPrefix = "exometrics-"

// Client wraps the opensearch client with the index prefix of the
// deployment.
type Client struct {
	client *opensearch.Client
	prefix string
	logger logging.Logger
}

// NewClient connects and pings the cluster.
func NewClient(ctx context.Context, cfg config.OpenSearchConfig, logger logging.Logger) (*Client, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}

	transport := &http.Transport{MaxIdleConnsPerHost: 10}
	if cfg.InsecureSkipVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec
	}

	osClient, err := opensearch.NewClient(opensearch.Config{
		Addresses:     cfg.Addresses,
		Username:      cfg.User,
		Password:      cfg.Password,
		MaxRetries:    3,
		RetryBackoff:  func(i int) time.Duration { return time.Duration(i) * 100 * time.Millisecond },
		Transport:     transport,
		RetryOnStatus: []int{502, 503, 504, 429},
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to create opensearch client")
	}

	c := newClient(osClient, cfg.IndexPrefix, logger)
	if err := c.Ping(ctx); err != nil {
		return nil, ErrConnectionFailed.WithCause(err)
	}
	return c, nil
}

func newClient(osClient *opensearch.Client, prefix string, logger logging.Logger) *Client {
	if prefix == "" {
		prefix = defaultIndexPrefix
	}
	return &Client{client: osClient, prefix: prefix, logger: logger.Named("opensearch")}
}

func (c *Client) Ping(ctx context.Context) error {
	resp, err := c.client.Ping(c.client.Ping.WithContext(ctx))
	if err != nil {
		c.logger.Warn("OpenSearch ping failed", logging.Err(err))
		return err
	}
	defer resp.Body.Close()

	if resp.IsError() {
		c.logger.Warn("OpenSearch ping returned error status", logging.Int("status", resp.StatusCode))
		return errors.Newf(errors.ErrCodeServiceUnavailable, "ping returned status %d", resp.StatusCode)
	}
	return nil
}

// Index returns the prefixed name of an index.
func (c *Client) Index(name string) string { return c.prefix + name }

func (c *Client) GetClient() *opensearch.Client { return c.client }

func ValidateConfig(cfg config.OpenSearchConfig) error {
	if len(cfg.Addresses) == 0 {
		return ErrInvalidConfig
	}
	for _, a := range cfg.Addresses {
		if !strings.HasPrefix(a, "http://") && !strings.HasPrefix(a, "https://") {
			return ErrInvalidConfig.WithDetail("address must be an http(s) URL: " + a)
		}
	}
	return nil
}

//Personal.AI order the ending
