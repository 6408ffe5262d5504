// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescriptionUnmarshal(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantKind DescriptionKind
		wantText string
		wantOK   bool
	}{
		{"plain string", `"A desert planet."`, DescriptionPlain, "A desert planet.", true},
		{"structured", `{"type":"/type/text","value":"A desert planet."}`, DescriptionStructured, "A desert planet.", true},
		{"null", `null`, DescriptionAbsent, "", false},
		{"number", `42`, DescriptionAbsent, "", false},
		{"array", `["a","b"]`, DescriptionAbsent, "", false},
		{"object without value", `{"type":"/type/text"}`, DescriptionAbsent, "", false},
		{"non-string value", `{"value": 3}`, DescriptionAbsent, "", false},
		{"empty string", `""`, DescriptionPlain, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Description
			require.NoError(t, json.Unmarshal([]byte(tt.input), &d))
			assert.Equal(t, tt.wantKind, d.Kind)

			text, ok := d.Text()
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantText, text)
		})
	}
}

func TestDetailRecordDecodesBothAuthorShapes(t *testing.T) {
	body := `{
		"title": "Dune",
		"authors": [{"author": {"key": "/authors/OL79034A", "name": "Frank Herbert"}}, {"name": "Direct Name"}],
		"subjects": ["Science fiction"],
		"description": {"value": "Spice."}
	}`

	var d DetailRecord
	require.NoError(t, json.Unmarshal([]byte(body), &d))

	require.Len(t, d.Authors, 2)
	assert.Equal(t, "Frank Herbert", d.Authors[0].DisplayName())
	assert.Equal(t, "Direct Name", d.Authors[1].DisplayName())
	assert.Equal(t, []string{"Science fiction"}, d.Subjects)
	text, ok := d.Description.Text()
	assert.True(t, ok)
	assert.Equal(t, "Spice.", text)
}

func TestDescriptionMarshalKeepsShape(t *testing.T) {
	plain, err := json.Marshal(PlainDescription("x"))
	require.NoError(t, err)
	assert.JSONEq(t, `"x"`, string(plain))

	structured, err := json.Marshal(StructuredDescription("x"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"value":"x"}`, string(structured))

	absent, err := json.Marshal(Description{})
	require.NoError(t, err)
	assert.Equal(t, "null", string(absent))
}

func TestSearchRecordLookupKey(t *testing.T) {
	assert.Equal(t, "/works/OL1W", SearchRecord{Key: "/works/OL1W", EditionKeys: []string{"OL1M"}}.LookupKey())
	assert.Equal(t, "OL1M", SearchRecord{EditionKeys: []string{"OL1M", "OL2M"}}.LookupKey())
	assert.Empty(t, SearchRecord{}.LookupKey())
}

func TestSearchRecordWireNames(t *testing.T) {
	body := `{"key":"/works/OL1W","title":"Dune","author_name":["Frank Herbert"],"first_publish_year":1965,"cover_i":12,"edition_key":["OL1M"]}`

	var r SearchRecord
	require.NoError(t, json.Unmarshal([]byte(body), &r))
	assert.Equal(t, SearchRecord{
		Key:              "/works/OL1W",
		Title:            "Dune",
		AuthorNames:      []string{"Frank Herbert"},
		FirstPublishYear: 1965,
		CoverID:          12,
		EditionKeys:      []string{"OL1M"},
	}, r)
}

func TestParseSearchMode(t *testing.T) {
	for in, want := range map[string]SearchMode{"": ModeTitle, "title": ModeTitle, " Author ": ModeAuthor} {
		got, err := ParseSearchMode(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	_, err := ParseSearchMode("isbn")
	assert.Error(t, err)
}
