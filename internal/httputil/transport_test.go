// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/pdiddy/book-nook/pkg/types"
)

func TestTransport_SetsUserAgent(t *testing.T) {
	var got atomic.Value
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.Store(r.Header.Get("User-Agent"))
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	client := NewClient(types.HTTPConfig{Timeout: time.Second, UserAgent: "book-nook/test"}, 0, nil)
	req, err := http.NewRequest(http.MethodGet, ts.URL, nil)
	require.NoError(t, err)

	resp, err := client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, "book-nook/test", got.Load())
	assert.Empty(t, req.Header.Get("User-Agent"), "caller's request must not be mutated")
}

func TestTransport_KeepsExplicitUserAgent(t *testing.T) {
	var got atomic.Value
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.Store(r.Header.Get("User-Agent"))
	}))
	defer ts.Close()

	client := NewClient(types.HTTPConfig{UserAgent: "book-nook/test"}, 0, nil)
	req, err := http.NewRequest(http.MethodGet, ts.URL, nil)
	require.NoError(t, err)
	req.Header.Set("User-Agent", "custom")

	resp, err := client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, "custom", got.Load())
}

func TestTransport_LimiterHonorsCancelledContext(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer ts.Close()

	tr := &Transport{Limiter: rate.NewLimiter(rate.Every(time.Hour), 1)}
	client := &http.Client{Transport: tr}

	// First request consumes the only token.
	resp, err := client.Get(ts.URL)
	require.NoError(t, err)
	resp.Body.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL, nil)
	require.NoError(t, err)

	_, err = client.Do(req)
	require.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestTransport_LogsAtDebug(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	defer ts.Close()

	var buf bytes.Buffer
	log := logrus.New()
	log.SetOutput(&buf)
	log.SetLevel(logrus.DebugLevel)

	client := NewClient(types.HTTPConfig{}, 0, log)
	resp, err := client.Get(ts.URL + "/search.json")
	require.NoError(t, err)
	resp.Body.Close()

	assert.Contains(t, buf.String(), "outbound request")
	assert.Contains(t, buf.String(), "status=418")
}

func TestUserAgent(t *testing.T) {
	assert.Equal(t, "book-nook/1.0", UserAgent("book-nook/1.0", ""))
	assert.Equal(t, "book-nook/1.0 (me@example.com)", UserAgent("book-nook/1.0", "me@example.com"))
}
