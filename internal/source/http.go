package source

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

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/jonathan/candidate-ranker/internal/types"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 30 * time.Second

// DefaultUserAgent is the user agent string for HTTP requests.
const DefaultUserAgent = "candidate-ranker/1.0"

// DefaultListLimit is the page size requested from the listing endpoint.
const DefaultListLimit = 1000

// maxBodyBytes bounds the size of a response body.
const maxBodyBytes = 64 << 20

// HTTPOptions configures an HTTPSource.
type HTTPOptions struct {
	Timeout           time.Duration
	UserAgent         string
	ListLimit         int
	RequestsPerSecond float64 // <= 0 disables rate limiting
	Burst             int
	Client            *http.Client
	Logger            *zap.Logger
}

// DefaultHTTPOptions returns sensible defaults.
func DefaultHTTPOptions() HTTPOptions {
	return HTTPOptions{
		Timeout:           DefaultTimeout,
		UserAgent:         DefaultUserAgent,
		ListLimit:         DefaultListLimit,
		RequestsPerSecond: 10,
		Burst:             5,
	}
}

// HTTPSource reads candidates from the parsing service:
// GET {base}/candidates/?limit=N for the listing and GET {base}/candidates/{id} for one record.
type HTTPSource struct {
	baseURL   string
	client    *http.Client
	userAgent string
	listLimit int
	limiter   *rate.Limiter
	logger    *zap.Logger
}

// NewHTTPSource creates a source for baseURL, e.g. "http://localhost:8000/api/v1".
func NewHTTPSource(baseURL string, opts HTTPOptions) (*HTTPSource, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, &FetchError{URL: baseURL, Message: "invalid URL", Cause: err}
	}

	defaults := DefaultHTTPOptions()
	if opts.Timeout <= 0 {
		opts.Timeout = defaults.Timeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaults.UserAgent
	}
	if opts.ListLimit <= 0 {
		opts.ListLimit = defaults.ListLimit
	}
	if opts.Burst <= 0 {
		opts.Burst = 1
	}
	if opts.Client == nil {
		opts.Client = &http.Client{Timeout: opts.Timeout}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}

	return &HTTPSource{
		baseURL:   strings.TrimRight(baseURL, "/"),
		client:    opts.Client,
		userAgent: opts.UserAgent,
		listLimit: opts.ListLimit,
		limiter:   rate.NewLimiter(limit, opts.Burst),
		logger:    opts.Logger.Named("source"),
	}, nil
}

// List fetches every candidate from the listing endpoint.
func (s *HTTPSource) List(ctx context.Context) ([]types.CandidateRecord, error) {
	u := s.baseURL + "/candidates/?limit=" + strconv.Itoa(s.listLimit)

	var records []types.CandidateRecord
	if err := s.getJSON(ctx, u, &records); err != nil {
		return nil, err
	}
	if records == nil {
		records = []types.CandidateRecord{}
	}

	s.logger.Debug("listed candidates", zap.String("url", u), zap.Int("count", len(records)))
	return records, nil
}

// Get fetches one candidate. A 404 is reported as ErrNotFound.
func (s *HTTPSource) Get(ctx context.Context, id int64) (*types.CandidateRecord, error) {
	u := s.baseURL + "/candidates/" + strconv.FormatInt(id, 10)

	var rec types.CandidateRecord
	if err := s.getJSON(ctx, u, &rec); err != nil {
		var fe *FetchError
		if errors.As(err, &fe) && fe.StatusCode == http.StatusNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &rec, nil
}

func (s *HTTPSource) getJSON(ctx context.Context, u string, dst any) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return &FetchError{URL: u, Message: "rate limiter wait failed", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return &FetchError{URL: u, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := s.client.Do(req)
	if err != nil {
		return &FetchError{URL: u, Message: "HTTP request failed", Retryable: ctx.Err() == nil, Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	s.logger.Debug("fetched",
		zap.String("url", u),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode != http.StatusOK {
		// drain so the connection can be reused
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return &FetchError{
			URL:        u,
			Message:    fmt.Sprintf("HTTP status %d", resp.StatusCode),
			StatusCode: resp.StatusCode,
			Retryable:  resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500,
		}
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(dst); err != nil {
		return &FetchError{URL: u, Message: "failed to decode response body", StatusCode: resp.StatusCode, Cause: err}
	}
	return nil
}
