package providers

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"concert-scout/internal/domain"
)

// DefaultTimeout bounds every provider search request.
const DefaultTimeout = 10 * time.Second

// ErrorKind classifies provider failures.
type ErrorKind string

const (
	ErrorTimeout ErrorKind = "timeout"
	ErrorHTTP    ErrorKind = "http"
	ErrorParse   ErrorKind = "parse"
)

// ProviderError is any failure of a single (artist, provider) search. Callers
// treat it as zero results for that pair, never as a fatal batch error.
type ProviderError struct {
	Source     domain.Source
	Kind       ErrorKind
	StatusCode int // set only for Kind == ErrorHTTP
	Err        error
}

func (e *ProviderError) Error() string {
	if e.Kind == ErrorHTTP {
		return fmt.Sprintf("%s: http error %d", e.Source, e.StatusCode)
	}
	return fmt.Sprintf("%s: %s error: %v", e.Source, e.Kind, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// SourceAdapter executes one provider-specific search for one artist.
type SourceAdapter interface {
	Source() domain.Source
	Search(ctx context.Context, artistName string, geo domain.Geo) ([]*domain.CanonicalEvent, error)
}

// Option configures a provider adapter.
type Option func(*adapterConfig)

type adapterConfig struct {
	baseURL string
	client  *http.Client
}

// WithBaseURL overrides the provider's API base URL. Used in tests.
func WithBaseURL(u string) Option {
	return func(c *adapterConfig) {
		c.baseURL = u
	}
}

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *adapterConfig) {
		c.client = client
	}
}

func newAdapterConfig(defaultBaseURL string, opts []Option) *adapterConfig {
	cfg := &adapterConfig{
		baseURL: defaultBaseURL,
		client:  &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// transportError distinguishes timeouts from other transport failures.
func transportError(source domain.Source, err error) *ProviderError {
	kind := ErrorHTTP
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		kind = ErrorTimeout
	}
	return &ProviderError{Source: source, Kind: kind, Err: err}
}
