package sparql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/helixir/journal-federation-service/internal/domain"
	"github.com/helixir/journal-federation-service/internal/sources"
	"github.com/helixir/journal-federation-service/internal/triples"
)

const (
	// DefaultTimeout is the default request timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultRateLimit is the default rate limit for requests per second.
	DefaultRateLimit = 20.0

	// DefaultBurstSize is the default burst size for rate limiting.
	DefaultBurstSize = 20

	// resultsMediaType is the SPARQL 1.1 JSON results format.
	resultsMediaType = "application/sparql-results+json"

	// maxResultBytes bounds a decoded response body.
	maxResultBytes = 64 << 20
)

// Config holds configuration for one SPARQL endpoint.
type Config struct {
	// Name identifies the endpoint in logs and metrics.
	Name string

	// Endpoint is the SPARQL query URL, e.g. http://localhost:9999/blazegraph/sparql.
	Endpoint string

	// BaseURI prefixes every predicate IRI.
	BaseURI string

	// JournalClass is the rdf:type of journal subjects.
	// Defaults to BaseURI + "Journal".
	JournalClass string

	// LicenceMatch selects substring or exact licence matching.
	// Defaults to LicenceContains.
	LicenceMatch LicenceMatch

	Timeout    time.Duration
	RateLimit  float64
	BurstSize  int
	MaxRetries int

	// Username and Password enable basic authentication.
	Username string
	Password string
}

func (c *Config) applyDefaults() {
	if c.Name == "" {
		c.Name = "sparql"
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	if c.RateLimit == 0 {
		c.RateLimit = DefaultRateLimit
	}
	if c.BurstSize == 0 {
		c.BurstSize = DefaultBurstSize
	}
	if c.LicenceMatch == "" {
		c.LicenceMatch = LicenceContains
	}
}

// Client implements sources.JournalSource over a SPARQL endpoint.
type Client struct {
	config     Config
	vocab      vocabulary
	httpClient *sources.HTTPClient
}

var _ sources.JournalSource = (*Client)(nil)

// New creates a client with its own rate-limited transport.
func New(cfg Config) *Client {
	cfg.applyDefaults()

	httpClient := sources.NewHTTPClient(sources.HTTPClientConfig{
		Timeout:    cfg.Timeout,
		RateLimit:  cfg.RateLimit,
		BurstSize:  cfg.BurstSize,
		MaxRetries: cfg.MaxRetries,
		Username:   cfg.Username,
		Password:   cfg.Password,
	})

	return NewWithHTTPClient(cfg, httpClient)
}

// NewWithHTTPClient creates a client using a caller-provided transport.
func NewWithHTTPClient(cfg Config, httpClient *sources.HTTPClient) *Client {
	cfg.applyDefaults()

	return &Client{
		config:     cfg,
		vocab:      newVocabulary(cfg.BaseURI, cfg.JournalClass),
		httpClient: httpClient,
	}
}

// Name returns the endpoint name.
func (c *Client) Name() string {
	return c.config.Name
}

// GetAll returns every subject of the journal class.
func (c *Client) GetAll(ctx context.Context) (triples.Relation, error) {
	return c.query(ctx, "GetAll", c.vocab.all())
}

// GetByID returns the subject whose id literal equals id.
func (c *Client) GetByID(ctx context.Context, id string) (triples.Relation, error) {
	if strings.TrimSpace(id) == "" {
		return nil, domain.NewQueryRejectedError(c.config.Name, "GetByID", errors.New("id is required"))
	}
	return c.query(ctx, "GetByID", c.vocab.byID(id))
}

// GetByTitleFragment returns subjects whose title contains text.
func (c *Client) GetByTitleFragment(ctx context.Context, text string) (triples.Relation, error) {
	return c.query(ctx, "GetByTitleFragment", c.vocab.containing("title", text))
}

// GetByPublisherFragment returns subjects whose publisher contains text.
func (c *Client) GetByPublisherFragment(ctx context.Context, text string) (triples.Relation, error) {
	return c.query(ctx, "GetByPublisherFragment", c.vocab.containing("publisher", text))
}

// GetByLicence returns subjects whose licence matches text under the
// configured match mode. Both the licence and license spellings are read.
func (c *Client) GetByLicence(ctx context.Context, text string) (triples.Relation, error) {
	return c.query(ctx, "GetByLicence", c.vocab.byLicence(text, c.config.LicenceMatch))
}

// GetWithAPC returns subjects flagged with an article processing charge.
func (c *Client) GetWithAPC(ctx context.Context) (triples.Relation, error) {
	return c.query(ctx, "GetWithAPC", c.vocab.flagged("apc"))
}

// GetWithSeal returns subjects holding the DOAJ seal.
func (c *Client) GetWithSeal(ctx context.Context) (triples.Relation, error) {
	return c.query(ctx, "GetWithSeal", c.vocab.flagged("seal"))
}

// query POSTs a SELECT query and decodes the JSON results.
func (c *Client) query(ctx context.Context, op, q string) (triples.Relation, error) {
	form := url.Values{"query": {q}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.Endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, domain.NewBackendUnavailableError(c.config.Name, op, fmt.Errorf("creating request: %w", err))
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", resultsMediaType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, domain.NewBackendUnavailableError(c.config.Name, op, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<10))
		return nil, domain.NewQueryRejectedError(c.config.Name, op,
			fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))))
	case resp.StatusCode != http.StatusOK:
		return nil, domain.NewBackendUnavailableError(c.config.Name, op, &sources.StatusError{StatusCode: resp.StatusCode, Attempts: 1})
	}

	var results ResultsResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResultBytes)).Decode(&results); err != nil {
		return nil, domain.NewMalformedResultError(c.config.Name, op, fmt.Errorf("decoding response: %w", err))
	}

	return results.toRelation(), nil
}
