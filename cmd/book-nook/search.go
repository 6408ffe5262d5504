// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/book-nook/internal/catalog"
	"github.com/pdiddy/book-nook/internal/render"
	"github.com/pdiddy/book-nook/internal/search"
	"github.com/pdiddy/book-nook/pkg/types"
)

var searchCmd = &cobra.Command{
	Use:   "search [query...]",
	Short: "Search the catalog by title or author",
	Long: `Search queries the Open Library catalog for works whose title (or, with
--author, whose author) matches the query. Only the first page of results
is shown. --language filters by an ISO 639 code; "all" disables the filter.`,
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().Bool("author", false, "match the query against author names instead of titles")
	searchCmd.Flags().String("language", "", "language code filter, or all (default: catalog.default_language)")
	searchCmd.Flags().Bool("json", false, "output the search state as JSON")
	searchCmd.Flags().Int("save", 0, "save the N-th result to the bookshelf")

	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := strings.TrimSpace(strings.Join(args, " "))
	if query == "" {
		return errors.New("provide a search query")
	}

	a := appFrom(cmd)
	opts := []search.Option{}
	if author, _ := cmd.Flags().GetBool("author"); author {
		opts = append(opts, search.WithMode(types.ModeAuthor))
	}
	if cmd.Flags().Changed("language") {
		raw, _ := cmd.Flags().GetString("language")
		lang, err := catalog.ParseLanguage(raw)
		if err != nil {
			return err
		}
		opts = append(opts, search.WithLanguage(lang))
	}

	o := a.NewOrchestrator(opts...)
	defer o.Close()

	o.SetQuery(query)
	<-o.Submit(cmd.Context())
	st := o.State()

	out := cmd.OutOrStdout()
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		if err := render.JSON(out, st); err != nil {
			return err
		}
	} else {
		if err := render.Status(out, st); err != nil {
			return err
		}
		if st.Status == types.StatusReady {
			if err := render.Results(out, st.Results, st.Total); err != nil {
				return err
			}
		}
	}
	if st.Status == types.StatusFailed {
		return errors.New(st.Error)
	}

	if n, _ := cmd.Flags().GetInt("save"); n != 0 {
		rec, err := pick(st.Results, n)
		if err != nil {
			return err
		}
		saveRecord(cmd, rec)
	}
	return nil
}

// pick returns the n-th record, counting from 1.
func pick(records []types.SearchRecord, n int) (types.SearchRecord, error) {
	if len(records) == 0 {
		return types.SearchRecord{}, errors.New("nothing to choose from")
	}
	if n < 1 || n > len(records) {
		return types.SearchRecord{}, fmt.Errorf("no result %d: choose 1-%d", n, len(records))
	}
	return records[n-1], nil
}

func saveRecord(cmd *cobra.Command, rec types.SearchRecord) {
	if appFrom(cmd).Shelf.Add(rec) {
		fmt.Fprintf(cmd.ErrOrStderr(), "Saved %q to your bookshelf.\n", rec.Title)
		return
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "%q is already on your bookshelf.\n", rec.Title)
}
