package issues

import (
	"net/http"
	"time"

	"github.com/okian/coordcheck/pkg/logger"
)

// Option applies a configuration option to the Reporter.
type Option func(*Reporter)

// WithBaseURL sets the scheme and host of the tracker API.
func WithBaseURL(baseURL string) Option {
	return func(r *Reporter) {
		if baseURL != "" {
			r.baseURL = baseURL
		}
	}
}

// WithTimeout bounds each issue creation call.
func WithTimeout(timeout time.Duration) Option {
	return func(r *Reporter) {
		if timeout > 0 {
			r.timeout = timeout
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client. The client's own
// Timeout is overridden by WithTimeout.
func WithHTTPClient(client *http.Client) Option {
	return func(r *Reporter) {
		if client != nil {
			r.client = client
		}
	}
}

// WithLogger sets the logger used for tracker responses.
func WithLogger(l logger.Logger) Option {
	return func(r *Reporter) {
		if l != nil {
			r.logger = l
		}
	}
}
