// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/book-nook/internal/catalog"
	"github.com/pdiddy/book-nook/internal/detail"
	"github.com/pdiddy/book-nook/internal/render"
	"github.com/pdiddy/book-nook/internal/shelf"
	"github.com/pdiddy/book-nook/pkg/types"
)

var shelfCmd = &cobra.Command{
	Use:   "shelf",
	Short: "List, add, remove and export saved works",
}

var shelfListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the bookshelf in the order works were saved",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		entries := appFrom(cmd).Shelf.List()
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return render.JSON(cmd.OutOrStdout(), entries)
		}
		return render.Shelf(cmd.OutOrStdout(), entries)
	},
}

var shelfAddCmd = &cobra.Command{
	Use:   "add <key>...",
	Short: "Fetch works by key and save them",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runShelfAdd,
}

var shelfRemoveCmd = &cobra.Command{
	Use:   "remove <key>",
	Short: "Remove a work from the bookshelf",
	Long:  `Remove deletes a saved work. Removing a work that is not saved does nothing.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s := appFrom(cmd).Shelf
		if s.Remove(args[0]) || s.Remove(catalog.NormalizeWorkKey(args[0])) {
			fmt.Fprintln(cmd.ErrOrStderr(), "Removed.")
			return nil
		}
		fmt.Fprintln(cmd.ErrOrStderr(), "Not on your bookshelf.")
		return nil
	},
}

var shelfExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the bookshelf as YAML or JSON",
	Args:  cobra.NoArgs,
	RunE:  runShelfExport,
}

func init() {
	shelfListCmd.Flags().Bool("json", false, "output the bookshelf as JSON")
	shelfExportCmd.Flags().String("format", shelf.FormatYAML, "export format: yaml or json")
	shelfExportCmd.Flags().String("out", "", "write to this file instead of stdout")

	shelfCmd.AddCommand(shelfListCmd, shelfAddCmd, shelfRemoveCmd, shelfExportCmd)
	rootCmd.AddCommand(shelfCmd)
}

// addConcurrency bounds parallel detail fetches in shelf add.
const addConcurrency = 4

// runShelfAdd fetches every key concurrently, then saves them in argument
// order so the bookshelf order matches the command line.
func runShelfAdd(cmd *cobra.Command, args []string) error {
	a := appFrom(cmd)

	keys := make([]string, len(args))
	for i, arg := range args {
		keys[i] = catalog.NormalizeWorkKey(arg)
	}

	records := make([]types.SearchRecord, len(keys))
	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(addConcurrency)
	for i, key := range keys {
		if a.Shelf.Has(key) {
			continue
		}
		g.Go(func() error {
			d, err := a.Catalog.FetchDetail(ctx, key)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			rec := detail.Record(key, d)
			if rec.Title == "" {
				return fmt.Errorf("work %s has no title", key)
			}
			records[i] = rec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i, key := range keys {
		if records[i].Key == "" {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s is already on your bookshelf.\n", key)
			continue
		}
		saveRecord(cmd, records[i])
	}
	return nil
}

func runShelfExport(cmd *cobra.Command, args []string) (err error) {
	format, _ := cmd.Flags().GetString("format")
	path, _ := cmd.Flags().GetString("out")

	var w io.Writer = cmd.OutOrStdout()
	if path != "" {
		f, cerr := os.Create(path)
		if cerr != nil {
			return fmt.Errorf("creating %s: %w", path, cerr)
		}
		defer func() {
			if cerr := f.Close(); cerr != nil && err == nil {
				err = cerr
			}
		}()
		w = f
	}
	return appFrom(cmd).Shelf.Export(w, format)
}
