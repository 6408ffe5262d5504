// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the book-nook CLI: search the Open
// Library catalog, inspect works, and keep a bookshelf of saved works.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/book-nook/internal/app"
	"github.com/pdiddy/book-nook/internal/logging"
	"github.com/pdiddy/book-nook/internal/secrets"
	"github.com/pdiddy/book-nook/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// annotationNoApp marks commands that run without building an App.
const annotationNoApp = "book-nook/no-app"

type appKey struct{}

// rootCmd is the base command for the book-nook CLI.
var rootCmd = &cobra.Command{
	Use:   "book-nook",
	Short: "Search Open Library and keep a bookshelf",
	Long: `book-nook searches the Open Library catalog by title or author, shows
merged details of a work, and keeps a personal bookshelf of saved works.

The bookshelf is stored in a local SQLite database by default; see the
shelf.backend setting for the file and memory alternatives.`,
	SilenceUsage:      true,
	PersistentPreRunE: setupApp,
}

func init() {
	cobra.OnInitialize(initConfig)
	cobra.OnFinalize(closeApps)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./book-nook.yaml or ~/.config/book-nook/book-nook.yaml)")
	pf.String("log-level", "", "log level: debug, info, warn, error")
	pf.Bool("ephemeral", false, "keep the bookshelf in memory for this run only")
	pf.String("secrets-dir", secrets.DefaultDir, "directory of plain-text secret files")

	_ = viper.BindPFlag("log.level", pf.Lookup("log-level"))
}

func initConfig() {
	if err := app.LoadDotEnv(".env"); err != nil {
		fmt.Fprintln(os.Stderr, "warning:", err)
	}

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("book-nook")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "book-nook"))
		}
	}

	app.ConfigureViper(viper.GetViper())
	viper.SetDefault("http.user_agent", "book-nook/"+version)

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			fmt.Fprintln(os.Stderr, "warning: reading config:", err)
		}
	}
}

// setupApp builds the App shared by every command and stores it on the
// command context.
func setupApp(cmd *cobra.Command, args []string) error {
	if _, ok := cmd.Annotations[annotationNoApp]; ok {
		return nil
	}

	cfg, err := app.LoadConfig(viper.GetViper())
	if err != nil {
		return err
	}
	if ephemeral, _ := cmd.Flags().GetBool("ephemeral"); ephemeral {
		cfg.Shelf.Backend = types.ShelfMemory
	}

	log := logging.New(os.Stderr, cfg.Log.Level)
	if f := viper.ConfigFileUsed(); f != "" {
		log.WithField("file", f).Debug("using config file")
	}

	dir, _ := cmd.Flags().GetString("secrets-dir")
	sec, err := secrets.Load(dir, log)
	if err != nil {
		return err
	}
	if len(sec) > 0 {
		log.WithField("count", len(sec)).Debug("loaded secrets")
	}

	a, err := app.New(cfg, sec, log)
	if err != nil {
		return err
	}
	trackApp(a)
	cmd.SetContext(context.WithValue(cmd.Context(), appKey{}, a))
	return nil
}

// opened holds the Apps built during the current Execute. closeApps, run
// once per Execute by cobra, releases them.
var opened struct {
	mu   sync.Mutex
	apps []*app.App
}

func trackApp(a *app.App) {
	opened.mu.Lock()
	defer opened.mu.Unlock()
	opened.apps = append(opened.apps, a)
}

func closeApps() {
	opened.mu.Lock()
	apps := opened.apps
	opened.apps = nil
	opened.mu.Unlock()

	for _, a := range apps {
		if err := a.Close(); err != nil {
			a.Log.WithError(err).Warn("closing bookshelf storage")
		}
	}
}

// appFrom returns the App built by setupApp.
func appFrom(cmd *cobra.Command) *app.App {
	return cmd.Context().Value(appKey{}).(*app.App)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
