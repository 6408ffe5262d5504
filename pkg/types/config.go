// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"time"
)

// HTTPConfig holds shared HTTP settings for outbound catalog requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "book-nook/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// CatalogConfig holds settings for the catalog client.
type CatalogConfig struct {
	// BaseURL is the catalog API root (search.json and works/ live under it).
	BaseURL string `json:"base_url" yaml:"base_url" mapstructure:"base_url"`

	// CoversURL is the host serving cover images.
	CoversURL string `json:"covers_url" yaml:"covers_url" mapstructure:"covers_url"`

	// DefaultLanguage is the language filter a session starts with. Empty
	// means no filter.
	DefaultLanguage string `json:"default_language" yaml:"default_language" mapstructure:"default_language"`

	// RequestsPerSecond paces outbound requests. Zero disables pacing.
	RequestsPerSecond float64 `json:"requests_per_second" yaml:"requests_per_second" mapstructure:"requests_per_second"`
}

// ShelfBackend selects where the bookshelf is persisted.
type ShelfBackend string

const (
	ShelfSQLite ShelfBackend = "sqlite"
	ShelfFile   ShelfBackend = "file"
	ShelfMemory ShelfBackend = "memory"
)

// ShelfConfig holds settings for the bookshelf store.
type ShelfConfig struct {
	// Backend is one of sqlite, file or memory.
	Backend ShelfBackend `json:"backend" yaml:"backend" mapstructure:"backend"`

	// Path is the directory holding the bookshelf database or JSON file.
	Path string `json:"path" yaml:"path" mapstructure:"path"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	// Level is a logrus level name (debug, info, warn, error).
	Level string `json:"level" yaml:"level" mapstructure:"level"`
}

// Config groups the settings of every component.
type Config struct {
	HTTP    HTTPConfig    `json:"http" yaml:"http" mapstructure:"http"`
	Catalog CatalogConfig `json:"catalog" yaml:"catalog" mapstructure:"catalog"`
	Shelf   ShelfConfig   `json:"shelf" yaml:"shelf" mapstructure:"shelf"`
	Log     LogConfig     `json:"log" yaml:"log" mapstructure:"log"`
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		HTTP: HTTPConfig{
			Timeout:   15 * time.Second,
			UserAgent: "book-nook/dev",
		},
		Catalog: CatalogConfig{
			BaseURL:           "https://openlibrary.org",
			CoversURL:         "https://covers.openlibrary.org",
			RequestsPerSecond: 2,
		},
		Shelf: ShelfConfig{
			Backend: ShelfSQLite,
			Path:    "",
		},
		Log: LogConfig{
			Level: "warn",
		},
	}
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	switch c.Shelf.Backend {
	case ShelfSQLite, ShelfFile, ShelfMemory:
	default:
		return fmt.Errorf("unknown shelf backend %q: use sqlite, file, or memory", c.Shelf.Backend)
	}
	if c.Catalog.RequestsPerSecond < 0 {
		return fmt.Errorf("catalog.requests_per_second cannot be negative")
	}
	if c.Catalog.BaseURL == "" {
		return fmt.Errorf("catalog.base_url is required")
	}
	if c.HTTP.Timeout < 0 {
		return fmt.Errorf("http.timeout cannot be negative")
	}
	return nil
}
