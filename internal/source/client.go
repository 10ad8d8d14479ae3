// Package source fetches failure-record pages from the remote serverless
// API and aggregates them across the four upstream feeds.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Sentinel errors for source client failures.
var (
	ErrSourceUnreachable = errors.New("source unreachable")
	ErrSourceQueryError  = errors.New("source query error")
	ErrSourceTimeout     = errors.New("source query timeout")
)

// Page is one page of raw records from a single source, already unwrapped
// from the serverless envelope.
type Page struct {
	Records []map[string]any
	HasMore bool
}

// Client is the interface for fetching pages from the failure-record API.
type Client interface {
	FetchPage(ctx context.Context, source string, page int) (Page, error)
	Ready(ctx context.Context) error
}

// HTTPClient implements Client against the serverless HTTP endpoint.
type HTTPClient struct {
	baseURL   string
	authToken string
	client    *http.Client
}

// NewHTTPClient creates a new source HTTP client.
func NewHTTPClient(baseURL, authToken string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL:   baseURL,
		authToken: authToken,
		client:    &http.Client{Timeout: timeout},
	}
}

func (c *HTTPClient) FetchPage(ctx context.Context, source string, page int) (Page, error) {
	params := url.Values{
		"module": {source},
		"page":   {strconv.Itoa(page)},
	}
	u := fmt.Sprintf("%s/server/failure_records/fetch?%s", c.baseURL, params.Encode())

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return Page{}, fmt.Errorf("building request: %w", err)
	}
	c.setHeaders(httpReq)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return Page{}, classifyError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Page{}, fmt.Errorf("%w: status %d", ErrSourceQueryError, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Page{}, fmt.Errorf("%w: reading body: %v", ErrSourceQueryError, err)
	}

	// Malformed payloads degrade to an empty page, never an error.
	return ParsePayload(body), nil
}

func (c *HTTPClient) Ready(ctx context.Context) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/server/failure_records/ping", nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	c.setHeaders(httpReq)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSourceUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: source not ready (status %d)", ErrSourceUnreachable, resp.StatusCode)
	}
	return nil
}

func (c *HTTPClient) setHeaders(req *http.Request) {
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}
	req.Header.Set("Accept", "application/json")
}

// classifyError maps transport-level errors to sentinel errors.
func classifyError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %v", ErrSourceTimeout, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return fmt.Errorf("%w: %v", ErrSourceTimeout, err)
		}
		return fmt.Errorf("%w: %v", ErrSourceUnreachable, err)
	}

	return fmt.Errorf("%w: %v", ErrSourceUnreachable, err)
}

// Compile-time check that HTTPClient implements Client.
var _ Client = (*HTTPClient)(nil)
