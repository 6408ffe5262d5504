// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/book-nook/internal/detail"
)

func TestShellSession(t *testing.T) {
	a := newTestApp(t)
	var out bytes.Buffer
	sh := newShell(context.Background(), a, &out)
	defer sh.close()

	assert.False(t, sh.exec("dune"))
	assert.Contains(t, out.String(), "Dune Messiah")

	out.Reset()
	sh.exec(":save 1")
	sh.exec(":save 1")
	assert.Contains(t, out.String(), `Saved "Dune".`)
	assert.Contains(t, out.String(), "already on your bookshelf")
	assert.True(t, a.Shelf.Has("/works/OL893415W"))

	out.Reset()
	sh.exec(":open 1")
	loading := strings.Index(out.String(), detail.LoadingDescription)
	require.GreaterOrEqual(t, loading, 0, "base view is shown while the detail loads")
	assert.Less(t, loading, strings.Index(out.String(), "A desert planet..."))
	assert.Equal(t, 2, strings.Count(out.String(), "by Frank Herbert"))
	assert.Contains(t, out.String(), "A desert planet...")
	assert.Contains(t, out.String(), "on your bookshelf")
	assert.True(t, sh.insp.View().Open)

	sh.exec(":close")
	assert.False(t, sh.insp.View().Open)

	out.Reset()
	sh.exec(":shelf")
	assert.Contains(t, out.String(), "/works/OL893415W")

	sh.exec(":remove 1")
	assert.Equal(t, 0, a.Shelf.Len())

	assert.True(t, sh.exec(":quit"))
}

func TestShellModeSwitchClearsResults(t *testing.T) {
	sh := newShell(context.Background(), newTestApp(t), &bytes.Buffer{})
	defer sh.close()

	sh.exec("dune")
	assert.Len(t, sh.orch.State().Results, 2)

	sh.exec(":mode author")
	st := sh.orch.State()
	assert.Empty(t, st.Results)
	assert.Empty(t, st.QueryText)
}

func TestShellLanguageWithEmptyQuery(t *testing.T) {
	var out bytes.Buffer
	sh := newShell(context.Background(), newTestApp(t), &out)
	defer sh.close()

	sh.exec(":lang spa")
	assert.Equal(t, "spa", sh.orch.State().Language)
	assert.Contains(t, out.String(), "Spanish (spa)")

	out.Reset()
	sh.exec(":lang klingon")
	assert.Contains(t, out.String(), "unknown language code")
}

func TestShellErrors(t *testing.T) {
	var out bytes.Buffer
	sh := newShell(context.Background(), newTestApp(t), &out)
	defer sh.close()

	sh.exec(":open 1")
	sh.exec(":bogus")
	sh.exec(":mode isbn")
	assert.Contains(t, out.String(), "nothing to choose from")
	assert.Contains(t, out.String(), "unknown command :bogus")
	assert.Contains(t, out.String(), "unknown search mode")
}

func TestShellComplete(t *testing.T) {
	sh := &shell{}
	assert.Equal(t, []string{":save ", ":shelf"}, sh.complete(":s"))
	assert.Nil(t, sh.complete("dune"))
}

func TestMetricsRouter(t *testing.T) {
	a := newTestApp(t)
	sh := newShell(context.Background(), a, &bytes.Buffer{})
	sh.exec("dune")
	sh.close()

	srv := httptest.NewServer(metricsRouter(a))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `book_nook_catalog_requests_total{op="search",outcome="ok"} 1`)

	resp, err = http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}
