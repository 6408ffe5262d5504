// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/book-nook/internal/logging"
	"github.com/pdiddy/book-nook/internal/secrets"
	"github.com/pdiddy/book-nook/internal/shelf"
	"github.com/pdiddy/book-nook/pkg/types"
)

func testConfig(t *testing.T, baseURL string) types.Config {
	t.Helper()
	cfg := types.DefaultConfig()
	cfg.Catalog.BaseURL = baseURL
	cfg.Catalog.RequestsPerSecond = 0
	cfg.Shelf.Backend = types.ShelfMemory
	cfg.Shelf.Path = t.TempDir()
	return cfg
}

func TestLoadConfigDefaults(t *testing.T) {
	v := viper.New()
	ConfigureViper(v)

	cfg, err := LoadConfig(v)
	require.NoError(t, err)

	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".local", "share", "book-nook"), cfg.Shelf.Path)
	assert.Equal(t, types.ShelfSQLite, cfg.Shelf.Backend)
	assert.Equal(t, "https://openlibrary.org", cfg.Catalog.BaseURL)
	assert.Equal(t, 15*time.Second, cfg.HTTP.Timeout)
	assert.Equal(t, 2.0, cfg.Catalog.RequestsPerSecond)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("BOOK_NOOK_SHELF_BACKEND", "file")
	t.Setenv("BOOK_NOOK_CATALOG_DEFAULT_LANGUAGE", "spa")
	t.Setenv("BOOK_NOOK_HTTP_TIMEOUT", "3s")

	v := viper.New()
	ConfigureViper(v)
	cfg, err := LoadConfig(v)
	require.NoError(t, err)

	assert.Equal(t, types.ShelfFile, cfg.Shelf.Backend)
	assert.Equal(t, "spa", cfg.Catalog.DefaultLanguage)
	assert.Equal(t, 3*time.Second, cfg.HTTP.Timeout)
}

func TestLoadConfigRejectsUnknownBackend(t *testing.T) {
	t.Setenv("BOOK_NOOK_SHELF_BACKEND", "redis")

	v := viper.New()
	ConfigureViper(v)
	_, err := LoadConfig(v)
	assert.ErrorContains(t, err, "unknown shelf backend")
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	env := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(env, []byte("BOOK_NOOK_LOG_LEVEL=debug\n"), 0o644))
	t.Setenv("BOOK_NOOK_LOG_LEVEL", "")
	os.Unsetenv("BOOK_NOOK_LOG_LEVEL")

	require.NoError(t, LoadDotEnv(filepath.Join(dir, "missing.env"), env))
	assert.Equal(t, "debug", os.Getenv("BOOK_NOOK_LOG_LEVEL"))
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	got, err := ExpandHome("~/shelf")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "shelf"), got)

	got, err = ExpandHome("/abs/~path")
	require.NoError(t, err)
	assert.Equal(t, "/abs/~path", got)
}

func TestOpenStorage(t *testing.T) {
	dir := t.TempDir()

	s, err := OpenStorage(types.ShelfConfig{Backend: types.ShelfSQLite, Path: dir})
	require.NoError(t, err)
	assert.IsType(t, &shelf.SQLiteStorage{}, s)
	require.NoError(t, s.(*shelf.SQLiteStorage).Close())

	s, err = OpenStorage(types.ShelfConfig{Backend: types.ShelfFile, Path: dir})
	require.NoError(t, err)
	assert.IsType(t, &shelf.FileStorage{}, s)

	s, err = OpenStorage(types.ShelfConfig{Backend: types.ShelfMemory})
	require.NoError(t, err)
	assert.IsType(t, &shelf.MemoryStorage{}, s)

	_, err = OpenStorage(types.ShelfConfig{Backend: "tape"})
	assert.Error(t, err)
}

func TestAppSendsContactUserAgent(t *testing.T) {
	var (
		mu sync.Mutex
		ua string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		ua = r.Header.Get("User-Agent")
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"docs":[{"key":"/works/OL1W","title":"Dune"}],"numFound":1}`))
	}))
	defer srv.Close()

	cfg := testConfig(t, srv.URL)
	cfg.HTTP.UserAgent = "book-nook/test"
	a, err := New(cfg, secrets.Secrets{secrets.KeyContact: "me@example.com"}, logging.Discard())
	require.NoError(t, err)
	defer a.Close()

	page, err := a.Catalog.Search(context.Background(), types.ModeTitle, "dune", "")
	require.NoError(t, err)
	require.Len(t, page.Docs, 1)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "book-nook/test (me@example.com)", ua)
}

func TestAppSharedShelf(t *testing.T) {
	cfg := testConfig(t, "http://unused.invalid")
	cfg.Shelf.Backend = types.ShelfFile

	a, err := New(cfg, nil, nil)
	require.NoError(t, err)
	assert.True(t, a.Shelf.Add(types.SearchRecord{Key: "/works/OL1W", Title: "Dune"}))
	require.NoError(t, a.Close())

	b, err := New(cfg, nil, nil)
	require.NoError(t, err)
	defer b.Close()
	assert.True(t, b.Shelf.Has("/works/OL1W"))
}

func TestAppOrchestratorUsesDefaultLanguage(t *testing.T) {
	cfg := testConfig(t, "http://unused.invalid")
	cfg.Catalog.DefaultLanguage = "fre"

	a, err := New(cfg, nil, nil)
	require.NoError(t, err)
	defer a.Close()

	o := a.NewOrchestrator()
	defer o.Close()
	assert.Equal(t, "fre", o.State().Language)

	i := a.NewInspector()
	assert.False(t, i.View().Open)
}
