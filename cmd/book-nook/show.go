// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/pdiddy/book-nook/internal/catalog"
	"github.com/pdiddy/book-nook/internal/render"
	"github.com/pdiddy/book-nook/pkg/types"
)

var showCmd = &cobra.Command{
	Use:   "show <key>",
	Short: "Show the merged details of a work",
	Long: `Show fetches the detail record of a work and merges it with what is
already known about it. The key is a work path such as /works/OL45883W or
a bare identifier such as OL45883W. Works on the bookshelf keep their saved
authors and cover when the catalog omits them.`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

func init() {
	showCmd.Flags().Bool("json", false, "output the detail view as JSON")

	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	a := appFrom(cmd)
	key := catalog.NormalizeWorkKey(args[0])

	base := types.SearchRecord{Key: key}
	for _, e := range a.Shelf.List() {
		if e.Key == key {
			base = e
			break
		}
	}

	insp := a.NewInspector()
	<-insp.Open(cmd.Context(), base)
	v := insp.View()

	out := cmd.OutOrStdout()
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		if err := render.JSON(out, v); err != nil {
			return err
		}
	} else if err := render.View(out, v.Record, v.Loading, v.Error, a.Shelf.Has(key)); err != nil {
		return err
	}

	if v.Error != "" {
		return errors.New(v.Error)
	}
	return nil
}
