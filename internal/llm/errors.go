package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotConfigured means no credential was supplied for the provider.
	ErrNotConfigured = errors.New("generation provider not configured")
	// ErrUpstreamUnavailable covers network failures, timeouts and 5xx replies.
	ErrUpstreamUnavailable = errors.New("generation endpoint unavailable")
	// ErrUpstreamRateLimited means the endpoint throttled the request.
	ErrUpstreamRateLimited = errors.New("generation endpoint rate limited")
	// ErrUpstreamAuth means the endpoint rejected the credential.
	ErrUpstreamAuth = errors.New("generation endpoint rejected credentials")
	// ErrUpstreamRejected means the endpoint refused the request for another reason.
	ErrUpstreamRejected = errors.New("generation endpoint rejected request")
)

// classify wraps err with the upstream kind matching status. A zero status
// means the request never got an HTTP reply.
func classify(provider string, status int, err error) error {
	var kind error
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		kind = ErrUpstreamUnavailable
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		kind = ErrUpstreamAuth
	case status == http.StatusTooManyRequests:
		kind = ErrUpstreamRateLimited
	case status == 0, status >= 500:
		kind = ErrUpstreamUnavailable
	case status == http.StatusRequestTimeout:
		kind = ErrUpstreamUnavailable
	default:
		kind = ErrUpstreamRejected
	}
	return fmt.Errorf("%s: %w: %w", provider, kind, err)
}

// Kind returns the upstream sentinel err wraps, or nil.
func Kind(err error) error {
	for _, k := range []error{ErrNotConfigured, ErrUpstreamUnavailable, ErrUpstreamRateLimited, ErrUpstreamAuth, ErrUpstreamRejected} {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}
