// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package app

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/pdiddy/book-nook/pkg/types"
)

// EnvPrefix prefixes every environment override, e.g. BOOK_NOOK_SHELF_BACKEND.
const EnvPrefix = "BOOK_NOOK"

// DefaultShelfDir is where the bookshelf lives when shelf.path is unset.
const DefaultShelfDir = "~/.local/share/book-nook"

// ConfigureViper registers defaults and environment binding on v. Every
// key of types.Config gets a default so AutomaticEnv can override it.
func ConfigureViper(v *viper.Viper) {
	d := types.DefaultConfig()
	v.SetDefault("http.timeout", d.HTTP.Timeout)
	v.SetDefault("http.user_agent", d.HTTP.UserAgent)
	v.SetDefault("catalog.base_url", d.Catalog.BaseURL)
	v.SetDefault("catalog.covers_url", d.Catalog.CoversURL)
	v.SetDefault("catalog.default_language", d.Catalog.DefaultLanguage)
	v.SetDefault("catalog.requests_per_second", d.Catalog.RequestsPerSecond)
	v.SetDefault("shelf.backend", string(d.Shelf.Backend))
	v.SetDefault("shelf.path", DefaultShelfDir)
	v.SetDefault("log.level", d.Log.Level)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// LoadDotEnv loads KEY=value pairs from files into the process
// environment without overriding variables already set. Missing files are
// skipped.
func LoadDotEnv(files ...string) error {
	for _, f := range files {
		if _, err := os.Stat(f); os.IsNotExist(err) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("loading %s: %w", f, err)
		}
	}
	return nil
}

// LoadConfig decodes v into a validated Config with the shelf path expanded.
func LoadConfig(v *viper.Viper) (types.Config, error) {
	var cfg types.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decoding config: %w", err)
	}

	path, err := ExpandHome(cfg.Shelf.Path)
	if err != nil {
		return cfg, err
	}
	cfg.Shelf.Path = path

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(p string) (string, error) {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~")), nil
}
