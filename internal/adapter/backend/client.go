// Package backend is the typed client for the mosque REST backend.
//
// Every payload is parsed into domain types at this boundary. Responses may
// be bare or wrapped in {"data": ...}; anything else is rejected as
// malformed. Calls are not retried.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/iho/masjid-console/internal/domain"
	"github.com/iho/masjid-console/internal/infrastructure/metrics"
)

const serviceName = "backend"

var tracer = otel.Tracer("backend")

// Config configures the backend client.
type Config struct {
	BaseURL     string
	ProfilePath string
	Timeout     time.Duration
}

// Client talks to the mosque backend.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	profilePath string
	cb          *gobreaker.CircuitBreaker
	metrics     *metrics.Metrics
	logger      zerolog.Logger
}

// NewClient creates a new Client. m may be nil.
func NewClient(cfg Config, m *metrics.Metrics, logger zerolog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	profilePath := cfg.ProfilePath
	if profilePath == "" {
		profilePath = "/api/user/profile"
	}

	return &Client{
		httpClient:  &http.Client{Timeout: timeout},
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		profilePath: profilePath,
		cb:          NewCircuitBreaker(serviceName, m),
		metrics:     m,
		logger:      logger.With().Str("component", "backend").Logger(),
	}
}

// NewCircuitBreaker creates a breaker that trips on server-side failures only.
// Client errors (4xx) count as successes: the backend is healthy, the request is not.
func NewCircuitBreaker(name string, m *metrics.Metrics) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    30 * time.Second,
		Timeout:     10 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 5 && failureRatio >= 0.6
		},
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			var svcErr *domain.ExternalServiceError
			if errors.As(err, &svcErr) {
				return svcErr.StatusCode >= 400 && svcErr.StatusCode < 500
			}
			var fieldErr *domain.FieldErrors
			return errors.As(err, &fieldErr)
		},
		OnStateChange: func(name string, _, to gobreaker.State) {
			if m != nil {
				m.BreakerState.WithLabelValues(name).Set(float64(to))
			}
		},
	})
}

// request describes one backend call.
type request struct {
	method      string
	path        string
	token       string
	body        io.Reader
	contentType string
	endpoint    string // metric label, e.g. "transaksi.list"
}

func jsonRequest(method, path, token, endpoint string, payload any) (request, error) {
	req := request{method: method, path: path, token: token, endpoint: endpoint}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return request{}, err
		}
		req.body = bytes.NewReader(data)
		req.contentType = "application/json"
	}
	return req, nil
}

// do sends req through the breaker and decodes the data payload into out.
// out may be nil when the response body is ignored.
func (c *Client) do(ctx context.Context, req request, out any) error {
	ctx, span := tracer.Start(ctx, "backend."+req.endpoint)
	defer span.End()
	span.SetAttributes(
		attribute.String("http.method", req.method),
		attribute.String("backend.path", req.path),
	)

	start := time.Now()
	status := 0

	_, err := c.cb.Execute(func() (any, error) {
		httpReq, err := http.NewRequestWithContext(ctx, req.method, c.baseURL+req.path, req.body)
		if err != nil {
			return nil, err
		}
		httpReq.Header.Set("Accept", "application/json")
		if req.contentType != "" {
			httpReq.Header.Set("Content-Type", req.contentType)
		}
		if req.token != "" {
			httpReq.Header.Set("Authorization", "Bearer "+req.token)
		}

		resp, err := c.httpClient.Do(httpReq)
		if err != nil {
			return nil, &domain.ExternalServiceError{Service: serviceName, Err: err}
		}
		defer resp.Body.Close()
		status = resp.StatusCode

		body, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
		if err != nil {
			return nil, &domain.ExternalServiceError{Service: serviceName, StatusCode: status, Err: err}
		}

		if status < 200 || status >= 300 {
			return nil, parseErrorResponse(status, body)
		}

		if out == nil || len(bytes.TrimSpace(body)) == 0 {
			return nil, nil
		}

		if err := decodeData(body, out); err != nil {
			return nil, err
		}
		return nil, nil
	})

	c.observe(req.endpoint, status, time.Since(start))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return &domain.ExternalServiceError{Service: serviceName, StatusCode: http.StatusServiceUnavailable, Err: err}
		}

		c.logger.Debug().Err(err).
			Str("endpoint", req.endpoint).
			Int("status", status).
			Msg("backend call failed")
		return err
	}

	return nil
}

func (c *Client) observe(endpoint string, status int, elapsed time.Duration) {
	if c.metrics == nil {
		return
	}
	label := "error"
	if status != 0 {
		label = strconv.Itoa(status)
	}
	c.metrics.BackendRequests.WithLabelValues(endpoint, label).Inc()
	c.metrics.BackendDuration.WithLabelValues(endpoint).Observe(elapsed.Seconds())
}

func resourcePath(base, id string) string {
	return fmt.Sprintf("%s/%s", base, url.PathEscape(id))
}
