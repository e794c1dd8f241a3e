// Package httpclient builds the outbound HTTP clients used by the funnel.
//
// Every client is single-shot: retries are disabled, so each operation makes
// exactly one upstream call and callers decide what a failure means.
package httpclient

import (
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// New creates a resty client with the given timeout and client marker.
// A zero timeout leaves the transport defaults in place.
func New(timeout time.Duration, userAgent string) *resty.Client {
	client := resty.New().
		SetTimeout(timeout).
		SetRetryCount(0)

	if userAgent != "" {
		client.SetHeader("User-Agent", userAgent)
	}

	return client
}

// NewNoRedirect creates a client that returns 3xx responses instead of following them
func NewNoRedirect(timeout time.Duration, userAgent string) *resty.Client {
	return New(timeout, userAgent).
		SetRedirectPolicy(resty.RedirectPolicyFunc(func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}))
}
