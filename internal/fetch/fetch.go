// Package fetch holds the request plumbing shared by the data source clients:
// a single-attempt JSON GET and the typed error every fetcher returns.
//
// Fetchers never retry and never impose their own deadline. A failure is
// returned to the caller on the first attempt; any timeout comes from the
// http.Client the caller configured.
package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// Kind classifies a fetch failure.
type Kind int

const (
	// KindTransport covers unreachable hosts, cancelled requests and non-2xx statuses.
	KindTransport Kind = iota
	// KindParse covers response bodies that do not decode into the expected shape.
	KindParse
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindParse:
		return "parse"
	}
	return "unknown"
}

// Sentinels for errors.Is matching on Error.Kind.
var (
	ErrTransport = errors.New("transport error")
	ErrParse     = errors.New("parse error")
)

// Error is returned by every fetcher. It carries the originating cause.
type Error struct {
	Source string // e.g. "coingecko/markets"
	Kind   Kind
	Status int // HTTP status, 0 when no response was received
	Err    error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: %s error (status %d): %v", e.Source, e.Kind, e.Status, e.Err)
	}
	return fmt.Sprintf("%s: %s error: %v", e.Source, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrTransport) and errors.Is(err, ErrParse) match on Kind.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrTransport:
		return e.Kind == KindTransport
	case ErrParse:
		return e.Kind == KindParse
	}
	return false
}

// ClientConfig holds the shared transport settings
type ClientConfig struct {
	Timeout             time.Duration
	MaxIdleConns        int
	MaxIdleConnsPerHost int
	IdleConnTimeout     time.Duration
}

// NewHTTPClient builds the http.Client shared by all data sources.
func NewHTTPClient(cfg ClientConfig) *http.Client {
	if cfg.MaxIdleConns <= 0 {
		cfg.MaxIdleConns = 20
	}
	if cfg.MaxIdleConnsPerHost <= 0 {
		cfg.MaxIdleConnsPerHost = 5
	}
	if cfg.IdleConnTimeout <= 0 {
		cfg.IdleConnTimeout = 90 * time.Second
	}
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        cfg.MaxIdleConns,
		MaxIdleConnsPerHost: cfg.MaxIdleConnsPerHost,
		IdleConnTimeout:     cfg.IdleConnTimeout,
	}
	return &http.Client{Timeout: cfg.Timeout, Transport: transport}
}

// Requester performs JSON GETs against one data source.
type Requester struct {
	HTTPClient *http.Client
	Limiter    *rate.Limiter // optional
	UserAgent  string
}

// GetJSON issues a single GET to url and decodes the body into v.
func (r *Requester) GetJSON(ctx context.Context, source, url string, v interface{}) error {
	if r.Limiter != nil {
		if err := r.Limiter.Wait(ctx); err != nil {
			return &Error{Source: source, Kind: KindTransport, Err: fmt.Errorf("rate limit wait: %w", err)}
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return &Error{Source: source, Kind: KindTransport, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	if r.UserAgent != "" {
		req.Header.Set("User-Agent", r.UserAgent)
	}

	client := r.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return &Error{Source: source, Kind: KindTransport, Err: fmt.Errorf("failed to execute request: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain a little so the connection can be reused.
		_, _ = io.CopyN(io.Discard, resp.Body, 4096)
		return &Error{Source: source, Kind: KindTransport, Status: resp.StatusCode, Err: fmt.Errorf("unexpected status %s", resp.Status)}
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return &Error{Source: source, Kind: KindParse, Status: resp.StatusCode, Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	return nil
}

// NewLimiter builds a limiter allowing perSecond requests with the given burst.
// A non-positive rate disables limiting and returns nil.
func NewLimiter(perSecond float64, burst int) *rate.Limiter {
	if perSecond <= 0 {
		return nil
	}
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(perSecond), burst)
}
