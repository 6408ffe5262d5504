// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the data structures shared by the catalog client,
// the search orchestrator, the detail view and the bookshelf store.
package types

import (
	"bytes"
	"encoding/json"
)

// SearchRecord is one hit returned by a catalog search. JSON field names
// follow the catalog's wire format, so a persisted bookshelf has the same
// shape as the search documents it was saved from.
type SearchRecord struct {
	// Key is the stable work identifier (e.g. "/works/OL45883W"). It is the
	// equality and dedup key everywhere.
	Key string `json:"key" yaml:"key"`

	// Title is the work title as returned by the search endpoint.
	Title string `json:"title" yaml:"title"`

	// AuthorNames lists author display names in catalog order.
	AuthorNames []string `json:"author_name,omitempty" yaml:"author_name,omitempty"`

	// FirstPublishYear is zero when the catalog does not know it.
	FirstPublishYear int `json:"first_publish_year,omitempty" yaml:"first_publish_year,omitempty"`

	// CoverID references a cover image on the covers host. Zero means no cover.
	CoverID int `json:"cover_i,omitempty" yaml:"cover_i,omitempty"`

	// EditionKeys is a fallback identifier source when Key is empty.
	EditionKeys []string `json:"edition_key,omitempty" yaml:"edition_key,omitempty"`
}

// LookupKey returns the identifier used to fetch the work's detail record:
// the work key, or the first edition key when the work key is missing.
func (r SearchRecord) LookupKey() string {
	if r.Key != "" {
		return r.Key
	}
	if len(r.EditionKeys) > 0 {
		return r.EditionKeys[0]
	}
	return ""
}

// SearchPage is the decoded body of a search response.
type SearchPage struct {
	Docs     []SearchRecord `json:"docs"`
	NumFound int            `json:"numFound"`
}

// AuthorRef is one entry of a work's authors list. The catalog returns
// either {"name": ...} or {"author": {"name": ...}}; both decode here.
type AuthorRef struct {
	Name   string      `json:"name,omitempty"`
	Author *AuthorName `json:"author,omitempty"`
}

// AuthorName is the nested author object of the {"author": {...}} shape.
type AuthorName struct {
	Name string `json:"name,omitempty"`
}

// DisplayName returns whichever of the two name shapes is populated.
func (a AuthorRef) DisplayName() string {
	if a.Name != "" {
		return a.Name
	}
	if a.Author != nil {
		return a.Author.Name
	}
	return ""
}

// DetailRecord is the richer, lazily fetched record for a single work. It
// is never persisted.
type DetailRecord struct {
	Title       string      `json:"title,omitempty"`
	Authors     []AuthorRef `json:"authors,omitempty"`
	Subjects    []string    `json:"subjects,omitempty"`
	Description Description `json:"description"`

	// Covers lists cover ids. It is only read when a search record has to
	// be built from a detail record.
	Covers []int `json:"covers,omitempty"`
}

// DescriptionKind tags the shape a work description arrived in.
type DescriptionKind int

const (
	DescriptionAbsent DescriptionKind = iota
	DescriptionPlain
	DescriptionStructured
)

// Description models the catalog's inconsistent description field, which
// is either a bare string or an object carrying the text under "value".
type Description struct {
	Kind  DescriptionKind
	Value string
}

// PlainDescription builds a description from a bare string.
func PlainDescription(s string) Description {
	return Description{Kind: DescriptionPlain, Value: s}
}

// StructuredDescription builds a description from the {"value": ...} shape.
func StructuredDescription(s string) Description {
	return Description{Kind: DescriptionStructured, Value: s}
}

// Text returns the description text and whether one could be resolved.
func (d Description) Text() (string, bool) {
	switch d.Kind {
	case DescriptionPlain, DescriptionStructured:
		if d.Value == "" {
			return "", false
		}
		return d.Value, true
	default:
		return "", false
	}
}

// UnmarshalJSON accepts a string, an object with a string "value", or
// anything else, which decodes as an absent description rather than an error.
func (d *Description) UnmarshalJSON(data []byte) error {
	*d = Description{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
		*d = PlainDescription(s)
	case '{':
		var obj struct {
			Value json.RawMessage `json:"value"`
		}
		if err := json.Unmarshal(data, &obj); err != nil {
			return nil
		}
		var s string
		if err := json.Unmarshal(obj.Value, &s); err != nil {
			return nil
		}
		*d = StructuredDescription(s)
	}
	return nil
}

// MarshalJSON writes the description back in the shape it arrived in.
func (d Description) MarshalJSON() ([]byte, error) {
	switch d.Kind {
	case DescriptionPlain:
		return json.Marshal(d.Value)
	case DescriptionStructured:
		return json.Marshal(struct {
			Value string `json:"value"`
		}{d.Value})
	default:
		return []byte("null"), nil
	}
}

// DisplayRecord is the merge of a SearchRecord and an optional DetailRecord,
// ready for presentation. It is derived and never stored.
type DisplayRecord struct {
	Key              string   `json:"key" yaml:"key"`
	Title            string   `json:"title" yaml:"title"`
	Authors          []string `json:"authors" yaml:"authors"`
	Subjects         []string `json:"subjects" yaml:"subjects"`
	Description      string   `json:"description" yaml:"description"`
	CoverURL         string   `json:"cover_url" yaml:"cover_url"`
	FirstPublishYear int      `json:"first_publish_year,omitempty" yaml:"first_publish_year,omitempty"`
}
