package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/noah-isme/course-backoffice/internal/dto"
	"github.com/noah-isme/course-backoffice/pkg/config"
	appErrors "github.com/noah-isme/course-backoffice/pkg/errors"
	"github.com/noah-isme/course-backoffice/pkg/middleware/requestid"
)

const maxErrorBody = 64 << 10

// BackendClient issues authenticated JSON requests against the course
// platform REST API. Idempotent reads are retried on network and 5xx
// failures; every call goes through a shared circuit breaker.
type BackendClient struct {
	baseURL    string
	http       *http.Client
	breaker    *gobreaker.CircuitBreaker
	retries    int
	retryDelay time.Duration
	logger     *zap.Logger
}

// NewBackendClient constructs a client. A nil httpClient gets one with the
// configured timeout.
func NewBackendClient(cfg config.BackendConfig, httpClient *http.Client, logger *zap.Logger) *BackendClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if cfg.Retries < 0 {
		cfg.Retries = 0
	}
	return &BackendClient{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		http:       httpClient,
		breaker:    config.NewCircuitBreaker("course-backend", logger, countsAsSuccess),
		retries:    cfg.Retries,
		retryDelay: cfg.RetryDelay,
		logger:     logger,
	}
}

// abandonedCall marks a request whose caller cancelled or timed out. It says
// nothing about backend health.
type abandonedCall struct {
	err error
}

func (a *abandonedCall) Error() string { return a.err.Error() }

func (a *abandonedCall) Unwrap() error { return a.err }

// countsAsSuccess keeps 4xx answers and abandoned calls from tripping the
// breaker; the backend is healthy when it rejects a bad request.
func countsAsSuccess(err error) bool {
	if err == nil {
		return true
	}
	var abandoned *abandonedCall
	if errors.As(err, &abandoned) {
		return true
	}
	var fetchErr *appErrors.FetchError
	return errors.As(err, &fetchErr) && !fetchErr.Retryable()
}

// Get performs a GET and decodes the body into dest.
func (c *BackendClient) Get(ctx context.Context, token, path string, query url.Values, dest interface{}) error {
	target := path
	if len(query) > 0 {
		target = path + "?" + query.Encode()
	}
	attempts := uint(c.retries + 1)
	return retry.Do(
		func() error {
			return c.do(ctx, token, http.MethodGet, target, nil, dest)
		},
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.Delay(c.retryDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			if ctx.Err() != nil {
				return false
			}
			var fetchErr *appErrors.FetchError
			return errors.As(err, &fetchErr) && fetchErr.Retryable()
		}),
		retry.OnRetry(func(n uint, err error) {
			c.logger.Debug("retrying backend request", zap.String("path", path), zap.Uint("attempt", n+1), zap.Error(err))
		}),
	)
}

// Send performs a mutating request once. body may be nil.
func (c *BackendClient) Send(ctx context.Context, token, method, path string, body, dest interface{}) error {
	return c.do(ctx, token, method, path, body, dest)
}

func (c *BackendClient) do(ctx context.Context, token, method, target string, body, dest interface{}) error {
	_, err := c.breaker.Execute(func() (interface{}, error) {
		err := c.roundTrip(ctx, token, method, target, body, dest)
		if err != nil && ctx.Err() != nil {
			return nil, &abandonedCall{err: err}
		}
		return nil, err
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return &appErrors.FetchError{Method: method, URL: target, Err: err}
	}
	var abandoned *abandonedCall
	if errors.As(err, &abandoned) {
		return abandoned.err
	}
	return err
}

func (c *BackendClient) roundTrip(ctx context.Context, token, method, target string, body, dest interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s body: %w", method, target, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+target, reader)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, target, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if reqID := requestid.FromContext(ctx); reqID != "" {
		req.Header.Set(requestid.HeaderKey, reqID)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("backend unreachable", zap.String("method", method), zap.String("path", target), zap.Error(err))
		return &appErrors.FetchError{Method: method, URL: target, Err: err}
	}
	defer resp.Body.Close()

	c.logger.Debug("backend call",
		zap.String("method", method),
		zap.String("path", target),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		var payload dto.BackendError
		_ = json.Unmarshal(raw, &payload)
		fetchErr := &appErrors.FetchError{Method: method, URL: target, HTTPStatus: resp.StatusCode, Message: payload.Text()}
		c.logger.Warn("backend rejected request", zap.String("method", method), zap.String("path", target), zap.Int("status", resp.StatusCode), zap.String("message", fetchErr.Message))
		return fetchErr
	}

	if dest == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &appErrors.FetchError{Method: method, URL: target, Err: err}
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return &appErrors.FetchError{Method: method, URL: target, HTTPStatus: resp.StatusCode, Message: "malformed backend response", Err: err}
	}
	return nil
}
