// Package picsum implements source.Source for the Lorem Picsum catalog.
package picsum

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/timmy/mygallery/internal/domain"
	"github.com/timmy/mygallery/internal/logger"
)

const (
	DefaultBaseURL      = "https://picsum.photos"
	DefaultTimeout      = 15 * time.Second
	DefaultMaxAttempts  = 3
	DefaultRetryWait    = time.Second
	DefaultRetryMaxWait = 5 * time.Second

	listPath = "/v2/list"
)

// Config holds client settings. Zero values fall back to the defaults.
type Config struct {
	BaseURL      string
	Timeout      time.Duration
	MaxAttempts  int
	RetryWait    time.Duration
	RetryMaxWait time.Duration
}

// Client fetches image pages from Picsum.
type Client struct {
	client *resty.Client
}

// NewClient creates a Picsum client. Only HTTP 525 responses are retried,
// with delays of RetryWait*2^(attempt-1) capped at RetryMaxWait.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.RetryWait <= 0 {
		cfg.RetryWait = DefaultRetryWait
	}
	if cfg.RetryMaxWait <= 0 {
		cfg.RetryMaxWait = DefaultRetryMaxWait
	}

	client := resty.New().
		SetBaseURL(strings.TrimSuffix(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json").
		SetRetryCount(cfg.MaxAttempts - 1).
		SetRetryWaitTime(cfg.RetryWait).
		SetRetryMaxWaitTime(cfg.RetryMaxWait).
		SetRetryAfter(func(_ *resty.Client, resp *resty.Response) (time.Duration, error) {
			return backoff(resp.Request.Attempt, cfg.RetryWait, cfg.RetryMaxWait), nil
		}).
		AddRetryCondition(func(resp *resty.Response, err error) bool {
			retry := err == nil && resp != nil && resp.StatusCode() == domain.StatusUpstreamUnavailable
			if retry {
				logger.CtxWarn(resp.Request.Context(), "Attempt %d/%d failed with status 525, retrying",
					resp.Request.Attempt, cfg.MaxAttempts)
			}
			return retry
		})

	return &Client{client: client}
}

// backoff returns wait*2^(attempt-1), capped at max.
func backoff(attempt int, wait, max time.Duration) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	d := wait
	for i := 1; i < attempt; i++ {
		d *= 2
		if d >= max {
			return max
		}
	}
	if d > max {
		return max
	}
	return d
}

// GetSourceID returns the unique identifier for this source.
func (c *Client) GetSourceID() string {
	return "picsum"
}

// GetDisplayName returns a human-readable name for this source.
func (c *Client) GetDisplayName() string {
	return "Lorem Picsum"
}

// FetchPage calls GET /v2/list?page={page}&limit={limit}.
func (c *Client) FetchPage(ctx context.Context, page, limit int) ([]domain.Image, error) {
	if page < 1 {
		return nil, domain.NewInvalidArgument("page")
	}
	if limit < 1 {
		return nil, domain.NewInvalidArgument("limit")
	}

	start := time.Now()
	var items []domain.PicsumImage
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"page":  strconv.Itoa(page),
			"limit": strconv.Itoa(limit),
		}).
		SetResult(&items).
		ForceContentType("application/json").
		Get(listPath)
	if err != nil {
		return nil, transportError(err)
	}
	if resp.StatusCode() != 200 {
		return nil, statusError(resp)
	}

	images := make([]domain.Image, 0, len(items))
	for _, item := range items {
		images = append(images, item.ToImage())
	}

	logger.With(logger.Fields{
		logger.FieldSource:     c.GetSourceID(),
		logger.FieldPage:       page,
		logger.FieldCount:      len(images),
		logger.FieldDurationMs: time.Since(start).Milliseconds(),
	}).Debug(ctx, "Fetched catalog page")

	return images, nil
}

func statusError(resp *resty.Response) error {
	code := resp.StatusCode()
	if code == domain.StatusUpstreamUnavailable {
		return &domain.NetworkError{
			Kind:       domain.NetworkUnavailable,
			StatusCode: code,
			Endpoint:   listPath,
		}
	}
	status := strings.TrimSpace(strings.TrimPrefix(resp.Status(), strconv.Itoa(code)))
	return &domain.NetworkError{
		Kind:       domain.NetworkHTTPStatus,
		StatusCode: code,
		Status:     status,
		Endpoint:   listPath,
		Err:        fmt.Errorf("unexpected status %d", code),
	}
}

func transportError(err error) error {
	kind := domain.NetworkConnectivity
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		kind = domain.NetworkTimeout
	}
	return &domain.NetworkError{Kind: kind, Endpoint: listPath, Err: err}
}
