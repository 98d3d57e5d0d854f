package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/iota-uz/catalog-api/modules/catalog/domain/aggregates/service"
	"github.com/iota-uz/catalog-api/pkg/composables"
	"github.com/iota-uz/catalog-api/pkg/configuration"
)

// Indexer pushes service documents to, and retracts them from, the search index.
type Indexer interface {
	Index(ctx context.Context, serviceID string, doc service.Document) error
	Delete(ctx context.Context, serviceID string) error
}

// StatusError is returned when the search API answers with a non-2xx status.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("search api %s %s: status=%d body=%s", e.Method, e.URL, e.StatusCode, e.Body)
}

type Options struct {
	BaseURL         string
	AuthToken       string
	Index           string
	Timeout         time.Duration
	RPS             int
	RequestIDHeader string
	HTTPClient      *http.Client
}

// Client talks to the search API over HTTP.
type Client struct {
	baseURL         *url.URL
	authorization   string
	index           string
	httpClient      *http.Client
	limiter         *rate.Limiter
	requestIDHeader string
}

func NewClient(opts Options) (*Client, error) {
	u, err := url.Parse(strings.TrimSpace(opts.BaseURL))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid search api url: %q", opts.BaseURL)
	}
	if strings.TrimSpace(opts.Index) == "" {
		return nil, errors.New("search index name is required")
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	limit := rate.Inf
	if opts.RPS > 0 {
		limit = rate.Limit(opts.RPS)
	}
	authorization := ""
	if token := strings.TrimSpace(opts.AuthToken); token != "" {
		authorization = "Bearer " + token
	}
	return &Client{
		baseURL:         u,
		authorization:   authorization,
		index:           opts.Index,
		httpClient:      httpClient,
		limiter:         rate.NewLimiter(limit, 1),
		requestIDHeader: opts.RequestIDHeader,
	}, nil
}

// NewFromConfiguration returns the HTTP client when the search API is enabled and a no-op indexer otherwise.
func NewFromConfiguration(conf *configuration.Configuration) (Indexer, error) {
	if !conf.Search.Enabled {
		return NopIndexer{}, nil
	}
	return NewClient(Options{
		BaseURL:         conf.Search.URL,
		AuthToken:       conf.Search.AuthToken,
		Index:           conf.Search.Index,
		Timeout:         conf.Search.Timeout,
		RPS:             conf.Search.RPS,
		RequestIDHeader: conf.RequestIDHeader,
	})
}

func (c *Client) Index(ctx context.Context, serviceID string, doc service.Document) error {
	_, err := c.do(ctx, http.MethodPut, serviceID, map[string]any{"service": doc})
	return err
}

// Delete removes the document. A document the index does not know about counts as removed.
func (c *Client) Delete(ctx context.Context, serviceID string) error {
	status, err := c.do(ctx, http.MethodDelete, serviceID, nil)
	if status == http.StatusNotFound {
		return nil
	}
	return err
}

func (c *Client) do(ctx context.Context, method, serviceID string, reqBody any) (int, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return 0, errors.Wrap(err, "search api rate limit")
	}

	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + "/" + url.PathEscape(c.index) + "/services/" + url.PathEscape(serviceID)

	var body io.Reader
	if reqBody != nil {
		b, err := json.Marshal(reqBody)
		if err != nil {
			return 0, errors.Wrap(err, "marshal search document")
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return 0, errors.Wrap(err, "build search request")
	}
	req.Header.Set("Accept", "application/json")
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.requestIDHeader != "" {
		requestID, ok := composables.UseRequestID(ctx)
		if !ok {
			requestID = uuid.NewString()
		}
		req.Header.Set(c.requestIDHeader, requestID)
	}
	if c.authorization != "" {
		req.Header.Set("Authorization", c.authorization)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, errors.Wrapf(err, "search api %s", method)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return resp.StatusCode, &StatusError{
			Method:     method,
			URL:        u.String(),
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(respBody)),
		}
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode, nil
}

// NopIndexer is used when the search API is disabled.
type NopIndexer struct{}

func (NopIndexer) Index(context.Context, string, service.Document) error { return nil }
func (NopIndexer) Delete(context.Context, string) error                  { return nil }
