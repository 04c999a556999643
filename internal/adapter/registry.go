package adapter

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/amishk599/jobtrend/internal/fetch"
	"github.com/amishk599/jobtrend/internal/model"
	"github.com/amishk599/jobtrend/internal/ratelimit"
)

// Source kinds accepted in config, in registration order.
const (
	KindArbeitnow      = "arbeitnow"
	KindRemotive       = "remotive"
	KindWeWorkRemotely = "weworkremotely"
)

// Kinds lists every supported source kind in registration order.
var Kinds = []string{KindArbeitnow, KindRemotive, KindWeWorkRemotely}

var (
	_ model.Collector  = (*ArbeitnowAdapter)(nil)
	_ model.Collector  = (*RemotiveAdapter)(nil)
	_ model.Collector  = (*WeWorkRemotelyAdapter)(nil)
	_ model.JobFetcher = (*ArbeitnowAdapter)(nil)
	_ model.JobFetcher = (*RemotiveAdapter)(nil)
	_ model.JobFetcher = (*WeWorkRemotelyAdapter)(nil)
)

// defaultPoliteness is the fixed pause each source gets after a successful fetch.
var defaultPoliteness = map[string]time.Duration{
	KindArbeitnow:      3 * time.Second,
	KindRemotive:       2 * time.Second,
	KindWeWorkRemotely: 2 * time.Second,
}

// SourceSpec describes one source to register.
type SourceSpec struct {
	Kind    string
	URL     string // empty selects the adapter's public endpoint
	Policy  fetch.Policy
	Timeout time.Duration
}

// DefaultPoliteness returns the built-in post-fetch pause for kind.
func DefaultPoliteness(kind string) time.Duration {
	return defaultPoliteness[kind]
}

// DefaultURL returns the public endpoint used when a source has no URL override.
func DefaultURL(kind string) string {
	switch kind {
	case KindArbeitnow:
		return ArbeitnowURL
	case KindRemotive:
		return RemotiveURL
	case KindWeWorkRemotely:
		return WeWorkRemotelyURL
	default:
		return ""
	}
}

// SourceTag maps a kind to the tag its records carry.
func SourceTag(kind string) (string, bool) {
	switch kind {
	case KindArbeitnow:
		return model.SourceArbeitnow, true
	case KindRemotive:
		return model.SourceRemotive, true
	case KindWeWorkRemotely:
		return model.SourceWeWorkRemotely, true
	default:
		return "", false
	}
}

// DefaultSpec returns the spec for kind with its built-in politeness pause,
// public endpoint and the given retry settings.
func DefaultSpec(kind string, attempts int, backoff time.Duration) SourceSpec {
	return SourceSpec{
		Kind: kind,
		Policy: fetch.Policy{
			Attempts:   attempts,
			Backoff:    backoff,
			Politeness: DefaultPoliteness(kind),
		},
		Timeout: fetch.DefaultTimeout,
	}
}

// New builds the collector for one spec. Each collector gets its own
// transport; limiter may be shared and may be nil.
func New(spec SourceSpec, limiter *ratelimit.HostLimiter, logger *slog.Logger) (model.Collector, error) {
	timeout := spec.Timeout
	if timeout <= 0 {
		timeout = fetch.DefaultTimeout
	}
	opts := []fetch.Option{
		fetch.WithHTTPClient(&http.Client{Timeout: timeout}),
		fetch.WithPolicy(spec.Policy),
	}
	if limiter != nil {
		opts = append(opts, fetch.WithLimiter(limiter))
	}

	switch spec.Kind {
	case KindArbeitnow:
		return NewArbeitnowAdapter(spec.URL, fetch.NewClient(logger, opts...), logger), nil
	case KindRemotive:
		return NewRemotiveAdapter(spec.URL, fetch.NewClient(logger, opts...), logger), nil
	case KindWeWorkRemotely:
		opts = append(opts, fetch.WithHeaders(fetch.FixedUserAgent(WeWorkRemotelyUserAgent)))
		return NewWeWorkRemotelyAdapter(spec.URL, fetch.NewClient(logger, opts...), logger), nil
	default:
		return nil, fmt.Errorf("unsupported source kind %q", spec.Kind)
	}
}

// Build creates collectors for specs, preserving their order.
func Build(specs []SourceSpec, limiter *ratelimit.HostLimiter, logger *slog.Logger) ([]model.Collector, error) {
	collectors := make([]model.Collector, 0, len(specs))
	for _, spec := range specs {
		c, err := New(spec, limiter, logger)
		if err != nil {
			return nil, err
		}
		collectors = append(collectors, c)
	}
	return collectors, nil
}
