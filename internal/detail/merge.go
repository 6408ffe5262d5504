// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package detail builds the display record of an inspected work from its
// search record and the lazily fetched detail record.
package detail

import (
	"github.com/pdiddy/book-nook/pkg/types"
)

const (
	// NoDescription is shown when the detail record has no usable description.
	NoDescription = "No description available."

	// LoadingDescription is shown while the detail record is being fetched.
	LoadingDescription = "Loading details..."
)

// CoverResolver derives a cover image URL. *catalog.Client implements it.
type CoverResolver interface {
	CoverURL(coverID int, size types.CoverSize) string
}

// CoverFunc adapts a function to CoverResolver.
type CoverFunc func(coverID int, size types.CoverSize) string

// CoverURL calls f.
func (f CoverFunc) CoverURL(coverID int, size types.CoverSize) string { return f(coverID, size) }

// Merge combines base with detail field by field; each field falls back
// independently. A nil detail means the fetch is still pending.
func Merge(base types.SearchRecord, detail *types.DetailRecord, covers CoverResolver) types.DisplayRecord {
	out := types.DisplayRecord{
		Key:              base.Key,
		Title:            base.Title,
		Authors:          nonNil(base.AuthorNames),
		Subjects:         []string{},
		Description:      LoadingDescription,
		FirstPublishYear: base.FirstPublishYear,
	}
	if covers != nil {
		out.CoverURL = covers.CoverURL(base.CoverID, types.CoverLarge)
	}

	if detail == nil {
		return out
	}

	if detail.Title != "" {
		out.Title = detail.Title
	}
	if names := authorNames(detail.Authors); len(names) > 0 {
		out.Authors = names
	}
	if detail.Subjects != nil {
		out.Subjects = append([]string{}, detail.Subjects...)
	}
	out.Description = NoDescription
	if text, ok := detail.Description.Text(); ok {
		out.Description = text
	}
	return out
}

func authorNames(refs []types.AuthorRef) []string {
	var names []string
	for _, a := range refs {
		if n := a.DisplayName(); n != "" {
			names = append(names, n)
		}
	}
	return names
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return append([]string{}, s...)
}

// Record builds the search record a work would have been saved from when
// only its detail record is known.
func Record(key string, d types.DetailRecord) types.SearchRecord {
	rec := types.SearchRecord{
		Key:         key,
		Title:       d.Title,
		AuthorNames: authorNames(d.Authors),
	}
	for _, id := range d.Covers {
		if id > 0 {
			rec.CoverID = id
			break
		}
	}
	return rec
}
