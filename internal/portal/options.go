package portal

import (
	"net/http"
	"time"
)

const (
	DefaultUserAgent  = "workshop-sync/1.0 (github.com/Moontok/WorkshopApp)"
	DefaultTimeout    = 30 * time.Second
	DefaultMaxRetries = 3

	defaultRetryInterval = 500 * time.Millisecond
	maxBodySize          = 10 << 20
)

// Option configures a Session
type Option func(*Session)

// WithTimeout sets the per-request timeout
func WithTimeout(d time.Duration) Option {
	return func(s *Session) {
		s.timeout = d
	}
}

// WithUserAgent overrides the User-Agent header sent with every request
func WithUserAgent(ua string) Option {
	return func(s *Session) {
		s.userAgent = ua
	}
}

// WithMaxRetries bounds how many times a transient failure is retried. Zero disables retries.
func WithMaxRetries(n int) Option {
	return func(s *Session) {
		if n < 0 {
			n = 0
		}
		s.maxRetries = n
	}
}

// WithRetryInterval sets the initial backoff interval
func WithRetryInterval(d time.Duration) Option {
	return func(s *Session) {
		s.retryInterval = d
	}
}

// WithTransport replaces the HTTP transport. The session's cookie jar is kept.
func WithTransport(rt http.RoundTripper) Option {
	return func(s *Session) {
		s.transport = rt
	}
}
