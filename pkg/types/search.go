// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"strings"
)

// SearchMode selects which catalog field the query text is matched against.
type SearchMode string

const (
	ModeTitle  SearchMode = "title"
	ModeAuthor SearchMode = "author"
)

// ParseSearchMode maps user input to a SearchMode.
func ParseSearchMode(s string) (SearchMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "title", "":
		return ModeTitle, nil
	case "author":
		return ModeAuthor, nil
	default:
		return "", fmt.Errorf("unknown search mode %q: use title or author", s)
	}
}

// CoverSize is the size suffix of a cover image URL.
type CoverSize string

const (
	CoverSmall  CoverSize = "S"
	CoverMedium CoverSize = "M"
	CoverLarge  CoverSize = "L"
)

// Status is the lifecycle state of the current search.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusReady   Status = "ready"
	StatusFailed  Status = "failed"
)

// QueryState is a snapshot of the search session owned by the orchestrator.
type QueryState struct {
	QueryText string     `json:"query_text"`
	Mode      SearchMode `json:"mode"`

	// Language is an ISO 639-2 code; empty means unfiltered.
	Language string `json:"language,omitempty"`

	Results []SearchRecord `json:"results"`

	// Total is the catalog's numFound hint for the last successful search.
	Total int `json:"total"`

	Status Status `json:"status"`
	Error  string `json:"error,omitempty"`
}
