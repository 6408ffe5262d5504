// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, ShelfSQLite, cfg.Shelf.Backend)
	assert.Empty(t, cfg.Catalog.DefaultLanguage)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown backend", func(c *Config) { c.Shelf.Backend = "redis" }},
		{"negative rate", func(c *Config) { c.Catalog.RequestsPerSecond = -1 }},
		{"missing base url", func(c *Config) { c.Catalog.BaseURL = "" }},
		{"negative timeout", func(c *Config) { c.HTTP.Timeout = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
