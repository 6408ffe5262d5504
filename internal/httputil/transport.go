// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides the HTTP client used for outbound catalog
// requests: User-Agent stamping, request pacing and debug logging.
package httputil

import (
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/pdiddy/book-nook/pkg/types"
)

// Transport is an http.RoundTripper that paces requests with a token
// bucket, sets the User-Agent header and logs each exchange at debug level.
type Transport struct {
	Base      http.RoundTripper
	UserAgent string
	Limiter   *rate.Limiter
	Log       logrus.FieldLogger
}

// NewClient builds the *http.Client used by the catalog client. A
// requestsPerSecond of zero disables pacing.
func NewClient(cfg types.HTTPConfig, requestsPerSecond float64, log logrus.FieldLogger) *http.Client {
	t := &Transport{
		Base:      http.DefaultTransport,
		UserAgent: cfg.UserAgent,
		Log:       log,
	}
	if requestsPerSecond > 0 {
		t.Limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), 1)
	}
	return &http.Client{Transport: t, Timeout: cfg.Timeout}
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.Limiter != nil {
		if err := t.Limiter.Wait(req.Context()); err != nil {
			return nil, fmt.Errorf("waiting for rate limiter: %w", err)
		}
	}

	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}

	// RoundTrippers must not mutate the caller's request.
	out := req.Clone(req.Context())
	if t.UserAgent != "" && out.Header.Get("User-Agent") == "" {
		out.Header.Set("User-Agent", t.UserAgent)
	}

	start := time.Now()
	resp, err := base.RoundTrip(out)
	if t.Log != nil {
		entry := t.Log.WithFields(logrus.Fields{
			"method":   out.Method,
			"url":      out.URL.String(),
			"duration": time.Since(start).String(),
		})
		if err != nil {
			entry.WithError(err).Debug("outbound request failed")
		} else {
			entry.WithField("status", resp.StatusCode).Debug("outbound request")
		}
	}
	return resp, err
}

// UserAgent appends a contact address to the product token when one is
// known, e.g. "book-nook/0.3 (me@example.com)".
func UserAgent(product, contact string) string {
	if contact == "" {
		return product
	}
	return fmt.Sprintf("%s (%s)", product, contact)
}
