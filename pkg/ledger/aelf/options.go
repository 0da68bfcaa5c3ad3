package aelf

import (
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/chainsafe/crosschain-issuer/pkg/ledger"
)

// Config contains the settings required to talk to one aelf node.
type Config struct {
	Chain ledger.ChainRef

	// RequestTimeout bounds a single web API call. Zero means 30s.
	RequestTimeout time.Duration

	// RateLimit caps requests per second to the node. Zero disables limiting.
	RateLimit float64
	Burst     int
}

// Option configures client settings using the functional options pattern.
type Option func(*settings)

type settings struct {
	logger     *zap.Logger
	httpClient *http.Client
	limiter    *rate.Limiter
}

// WithLogger sets a custom logger for the client.
// If not provided, a no-op logger is used.
func WithLogger(l *zap.Logger) Option {
	return func(s *settings) { s.logger = l }
}

// WithHTTPClient sets a custom HTTP client for outbound requests.
func WithHTTPClient(c *http.Client) Option {
	return func(s *settings) { s.httpClient = c }
}

// WithLimiter shares a limiter between clients pointing at the same node.
func WithLimiter(l *rate.Limiter) Option {
	return func(s *settings) { s.limiter = l }
}

func applyOptions(cfg Config, opts []Option) settings {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	s := settings{
		logger:     zap.NewNop(),
		httpClient: &http.Client{Timeout: timeout},
	}
	if cfg.RateLimit > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&s)
		}
	}
	return s
}
