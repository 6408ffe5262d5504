// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package render formats search results, detail views and the bookshelf
// for the terminal.
package render

import (
	"encoding/json"
	"fmt"
	"html"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"github.com/pdiddy/book-nook/pkg/types"
)

// MaxSubjects caps the subjects shown in a detail view.
const MaxSubjects = 6

const (
	UnknownAuthor = "Unknown Author"
	NoResults     = "No results yet - try a search."
	EmptyShelf    = "No saved books yet."
	Searching     = "Loading..."
)

var strict = bluemonday.StrictPolicy()

// JSON writes v as indented JSON.
func JSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Results writes a numbered table of search records. Numbers start at 1
// and are what browse commands such as :open refer to.
func Results(w io.Writer, records []types.SearchRecord, total int) error {
	if len(records) == 0 {
		_, err := fmt.Fprintln(w, NoResults)
		return err
	}
	if err := table(w, records, func(tw io.Writer, n int, r types.SearchRecord) {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", n, r.Title, Authors(r.AuthorNames), year(r.FirstPublishYear), r.Key)
	}); err != nil {
		return err
	}
	if total > len(records) {
		_, err := fmt.Fprintf(w, "showing %d of %d matches\n", len(records), total)
		return err
	}
	return nil
}

// Shelf writes the bookshelf in insertion order.
func Shelf(w io.Writer, entries []types.SearchRecord) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, EmptyShelf)
		return err
	}
	return table(w, entries, func(tw io.Writer, n int, r types.SearchRecord) {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", n, r.Title, Authors(r.AuthorNames), r.Key)
	})
}

func table(w io.Writer, records []types.SearchRecord, row func(io.Writer, int, types.SearchRecord)) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for i, r := range records {
		row(tw, i+1, r)
	}
	return tw.Flush()
}

// Detail writes a display record. saved marks whether the work is on the
// bookshelf.
func Detail(w io.Writer, rec types.DisplayRecord, saved bool) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", rec.Title)
	fmt.Fprintf(&b, "  by %s\n", Authors(rec.Authors))
	if rec.FirstPublishYear > 0 {
		fmt.Fprintf(&b, "  first published %d\n", rec.FirstPublishYear)
	}
	if rec.Key != "" {
		fmt.Fprintf(&b, "  key    %s\n", rec.Key)
	}
	fmt.Fprintf(&b, "  cover  %s\n", rec.CoverURL)
	if saved {
		b.WriteString("  [on your bookshelf]\n")
	}
	if subjects := Subjects(rec.Subjects); len(subjects) > 0 {
		fmt.Fprintf(&b, "  subjects: %s\n", strings.Join(subjects, ", "))
	}
	fmt.Fprintf(&b, "\n%s\n", Description(rec.Description))

	_, err := io.WriteString(w, b.String())
	return err
}

// View writes the detail view, including its loading and error state.
func View(w io.Writer, rec types.DisplayRecord, loading bool, errMsg string, saved bool) error {
	if err := Detail(w, rec, saved); err != nil {
		return err
	}
	if errMsg != "" {
		_, err := fmt.Fprintf(w, "error: %s\n", errMsg)
		return err
	}
	return nil
}

// Status writes the one-line summary of a search session.
func Status(w io.Writer, st types.QueryState) error {
	var line string
	switch st.Status {
	case types.StatusLoading:
		line = Searching
	case types.StatusFailed:
		line = "error: " + st.Error
	case types.StatusReady:
		line = fmt.Sprintf("%d results", st.Total)
	default:
		line = NoResults
	}
	_, err := fmt.Fprintf(w, "[%s | %s] %s\n", st.Mode, LanguageName(st.Language), line)
	return err
}

// Authors joins author names, or returns UnknownAuthor when there are none.
func Authors(names []string) string {
	if len(names) == 0 {
		return UnknownAuthor
	}
	return strings.Join(names, ", ")
}

// Subjects returns at most MaxSubjects subjects.
func Subjects(subjects []string) []string {
	if len(subjects) > MaxSubjects {
		return subjects[:MaxSubjects]
	}
	return subjects
}

// Description strips markup from catalog text and collapses blank runs.
func Description(s string) string {
	clean := html.UnescapeString(strict.Sanitize(s))
	lines := strings.Split(strings.ReplaceAll(clean, "\r\n", "\n"), "\n")

	out := make([]string, 0, len(lines))
	blank := false
	for _, l := range lines {
		l = strings.TrimSpace(l)
		if l == "" {
			if !blank && len(out) > 0 {
				out = append(out, "")
			}
			blank = true
			continue
		}
		blank = false
		out = append(out, l)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}

// LanguageName returns the English name of an ISO 639 code with the code
// in parentheses, "any" for no filter, or the code itself if unknown.
func LanguageName(code string) string {
	if code == "" {
		return "any"
	}
	base, err := language.ParseBase(code)
	if err != nil {
		return code
	}
	name := display.English.Languages().Name(base)
	if name == "" {
		return code
	}
	return fmt.Sprintf("%s (%s)", name, code)
}

func year(y int) string {
	if y <= 0 {
		return "-"
	}
	return fmt.Sprint(y)
}
