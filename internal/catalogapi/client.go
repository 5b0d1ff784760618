// Package catalogapi fetches products, categories and the logo from the remote
// catalog API and normalizes them into domain types.
package catalogapi

import (
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/andybalholm/brotli"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"storefront/internal/domain"
)

const (
	productsPath   = "/products/"
	categoriesPath = "/categories/"
	logoPath       = "/products/logo/"

	maxBodyBytes = 16 << 20
)

// Options tunes the outbound HTTP behaviour. Zero values pick defaults.
type Options struct {
	Timeout       time.Duration
	RatePerSecond float64
	Retries       int
	HTTPClient    *http.Client
	// Backoff is the base delay between retries, multiplied by the attempt number.
	Backoff time.Duration
}

type Client struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	retries int
	backoff time.Duration
	logger  *zap.SugaredLogger
}

func New(baseURL string, opts Options, logger *zap.SugaredLogger) *Client {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
			Timeout: timeout,
		}
	}
	limit := rate.Inf
	if opts.RatePerSecond > 0 {
		limit = rate.Limit(opts.RatePerSecond)
	}
	backoff := opts.Backoff
	if backoff <= 0 {
		backoff = 500 * time.Millisecond
	}
	retries := opts.Retries
	if retries < 0 {
		retries = 0
	}
	return &Client{
		baseURL: baseURL,
		http:    httpClient,
		limiter: rate.NewLimiter(limit, 1),
		retries: retries,
		backoff: backoff,
		logger:  logger,
	}
}

// FetchProducts returns the normalized product list.
func (c *Client) FetchProducts(ctx context.Context) ([]domain.Product, error) {
	body, err := c.get(ctx, productsPath)
	if err != nil {
		return nil, err
	}
	products, skipped, err := DecodeProducts(body)
	if err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}
	if skipped > 0 {
		c.logger.Warnf("catalog api: skipped malformed products count=%d", skipped)
	}
	c.logger.Debugf("catalog api: fetched products count=%d", len(products))
	return products, nil
}

// FetchCategories returns the category list.
func (c *Client) FetchCategories(ctx context.Context) ([]domain.Category, error) {
	body, err := c.get(ctx, categoriesPath)
	if err != nil {
		return nil, err
	}
	categories, skipped, err := DecodeCategories(body)
	if err != nil {
		return nil, fmt.Errorf("decode categories: %w", err)
	}
	if skipped > 0 {
		c.logger.Warnf("catalog api: skipped malformed categories count=%d", skipped)
	}
	return categories, nil
}

// FetchLogo returns the active logo. A missing logo is not an error; it yields the
// fallback mark.
func (c *Client) FetchLogo(ctx context.Context) (domain.Logo, error) {
	body, err := c.get(ctx, logoPath)
	if err != nil {
		var se *StatusError
		if errors.As(err, &se) && se.Code == http.StatusNotFound {
			return domain.Logo{Fallback: true}, nil
		}
		return domain.Logo{Fallback: true}, err
	}
	return DecodeLogo(body), nil
}

// StatusError is a non-2xx answer from the catalog.
type StatusError struct {
	Path string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("catalog api: GET %s: status %d", e.Path, e.Code)
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			if err := sleep(ctx, time.Duration(attempt)*c.backoff); err != nil {
				return nil, err
			}
		}
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		body, retry, err := c.do(ctx, path)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if !retry {
			break
		}
		c.logger.Debugf("catalog api: retrying path=%s attempt=%d error=%v", path, attempt+1, err)
	}
	return nil, lastErr
}

// do performs one request. retry reports whether the failure is worth another attempt.
func (c *Client) do(ctx context.Context, path string) (body []byte, retry bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, false, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Encoding", "gzip, br")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, ctx.Err() == nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		io.Copy(io.Discard, resp.Body)
		return nil, true, &StatusError{Path: path, Code: resp.StatusCode}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return nil, false, &StatusError{Path: path, Code: resp.StatusCode}
	}

	body, err = readBody(resp)
	if err != nil {
		return nil, false, fmt.Errorf("read %s: %w", path, err)
	}
	return body, false, nil
}

func readBody(resp *http.Response) ([]byte, error) {
	var reader io.Reader
	switch resp.Header.Get("Content-Encoding") {
	case "gzip":
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("gzip reader: %w", err)
		}
		defer gz.Close()
		reader = gz
	case "br":
		reader = brotli.NewReader(resp.Body)
	default:
		reader = resp.Body
	}
	return io.ReadAll(io.LimitReader(reader, maxBodyBytes))
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
