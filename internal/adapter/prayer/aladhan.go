// Package prayer fetches daily prayer schedules from the Aladhan API.
package prayer

import (
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

	"github.com/iho/masjid-console/internal/adapter/backend"
	"github.com/iho/masjid-console/internal/domain"
	"github.com/iho/masjid-console/internal/infrastructure/metrics"
)

const serviceName = "aladhan"

// DefaultMethod is the Kemenag RI calculation method.
const DefaultMethod = 20

// Config configures the Aladhan client.
type Config struct {
	BaseURL  string
	Method   int
	Timeout  time.Duration
	Location *time.Location
}

// Client implements usecase.PrayerTimeProvider.
type Client struct {
	httpClient *http.Client
	baseURL    string
	method     int
	loc        *time.Location
	cb         *gobreaker.CircuitBreaker
	metrics    *metrics.Metrics
	logger     zerolog.Logger
}

// NewClient creates a new Client. m may be nil.
func NewClient(cfg Config, m *metrics.Metrics, logger zerolog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.aladhan.com"
	}
	if cfg.Method == 0 {
		cfg.Method = DefaultMethod
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}

	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		method:     cfg.Method,
		loc:        cfg.Location,
		cb:         backend.NewCircuitBreaker(serviceName, m),
		metrics:    m,
		logger:     logger.With().Str("component", "prayer").Logger(),
	}
}

type timingsResponse struct {
	Code int `json:"code"`
	Data struct {
		Timings map[string]string `json:"timings"`
	} `json:"data"`
}

// order maps Aladhan keys to schedule names.
var order = []struct{ key, name string }{
	{"Imsak", domain.PrayerImsak},
	{"Fajr", domain.PrayerFajr},
	{"Sunrise", domain.PrayerSunrise},
	{"Dhuhr", domain.PrayerDhuhr},
	{"Asr", domain.PrayerAsr},
	{"Maghrib", domain.PrayerMaghrib},
	{"Isha", domain.PrayerIsha},
}

// Timings returns the schedule for date in city.
func (c *Client) Timings(ctx context.Context, date time.Time, city, country string) (*domain.PrayerSchedule, error) {
	day := date.In(c.loc)

	q := url.Values{}
	q.Set("city", city)
	q.Set("country", country)
	q.Set("method", strconv.Itoa(c.method))
	endpoint := fmt.Sprintf("%s/v1/timingsByCity/%s?%s", c.baseURL, day.Format("02-01-2006"), q.Encode())

	res, err := c.cb.Execute(func() (any, error) {
		return c.fetch(ctx, endpoint)
	})
	if err != nil {
		c.observe("error")
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, &domain.ExternalServiceError{Service: serviceName, StatusCode: http.StatusServiceUnavailable, Err: err}
		}
		return nil, err
	}

	schedule, err := c.toSchedule(res.(*timingsResponse), day, city)
	if err != nil {
		c.observe("malformed")
		c.logger.Warn().Err(err).Str("city", city).Msg("rejected prayer schedule")
		return nil, err
	}

	c.observe("success")
	return schedule, nil
}

func (c *Client) fetch(ctx context.Context, endpoint string) (*timingsResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &domain.ExternalServiceError{Service: serviceName, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, &domain.ExternalServiceError{Service: serviceName, StatusCode: resp.StatusCode, Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &domain.ExternalServiceError{
			Service:    serviceName,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("%s", http.StatusText(resp.StatusCode)),
		}
	}

	var out timingsResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedPayload, err)
	}
	return &out, nil
}

func (c *Client) toSchedule(res *timingsResponse, day time.Time, city string) (*domain.PrayerSchedule, error) {
	if len(res.Data.Timings) == 0 {
		return nil, fmt.Errorf("%w: no timings", domain.ErrMalformedPayload)
	}

	schedule := &domain.PrayerSchedule{
		Date:  time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, c.loc),
		City:  city,
		Times: make([]domain.PrayerTime, 0, len(order)),
	}

	for _, o := range order {
		raw, ok := res.Data.Timings[o.key]
		if !ok {
			if o.key == "Imsak" {
				continue
			}
			return nil, fmt.Errorf("%w: missing %s", domain.ErrMalformedPayload, o.key)
		}
		at, err := domain.ParseClock(day, raw, c.loc)
		if err != nil {
			return nil, err
		}
		schedule.Times = append(schedule.Times, domain.PrayerTime{Name: o.name, At: at})
	}

	return schedule, nil
}

func (c *Client) observe(result string) {
	if c.metrics != nil {
		c.metrics.PrayerFetches.WithLabelValues(result).Inc()
	}
}
