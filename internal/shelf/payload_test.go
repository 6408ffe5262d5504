// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package shelf

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/book-nook/pkg/types"
)

func TestMarshalNilIsEmptyArray(t *testing.T) {
	data, err := Marshal(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}

func TestMarshalUsesCatalogFieldNames(t *testing.T) {
	data, err := Marshal([]types.SearchRecord{{
		Key: "/works/OL1W", Title: "One", AuthorNames: []string{"A"},
		FirstPublishYear: 1999, CoverID: 7, EditionKeys: []string{"OL1M"},
	}})
	require.NoError(t, err)
	assert.JSONEq(t, `[{"key":"/works/OL1W","title":"One","author_name":["A"],
		"first_publish_year":1999,"cover_i":7,"edition_key":["OL1M"]}]`, string(data))
}

func TestUnmarshalCollapsesDuplicateKeys(t *testing.T) {
	entries, err := Unmarshal([]byte(`[
		{"key":"A","title":"first"},
		{"key":"B","title":"b"},
		{"key":"A","title":"second"}
	]`))
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "first", entries[0].Title)
	assert.Equal(t, "B", entries[1].Key)
}

func TestUnmarshalIgnoresUnknownFields(t *testing.T) {
	entries, err := Unmarshal([]byte(`[{"key":"A","title":"a","ebook_access":"borrowable"}]`))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestUnmarshalMalformed(t *testing.T) {
	for _, payload := range []string{`nope`, `[{`, `[{"key":""," title":"x"}]`, `[1,2]`} {
		_, err := Unmarshal([]byte(payload))
		assert.ErrorIs(t, err, ErrMalformedState, payload)
	}
}

func TestExport(t *testing.T) {
	s := NewStore(NewMemoryStorage(nil))
	s.Add(types.SearchRecord{Key: "/works/OL1W", Title: "Dune", AuthorNames: []string{"Frank Herbert"}})
	s.Add(types.SearchRecord{Key: "/works/OL2W", Title: "Emma"})

	t.Run("yaml", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, s.Export(&buf, "yaml"))

		var got []types.SearchRecord
		require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
		assert.Equal(t, s.List(), got)
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, s.Export(&buf, "json"))
		entries, err := Unmarshal(buf.Bytes())
		require.NoError(t, err)
		assert.Equal(t, s.List(), entries)
	})

	t.Run("unsupported", func(t *testing.T) {
		err := s.Export(&bytes.Buffer{}, "csv")
		require.Error(t, err)
		assert.True(t, strings.Contains(err.Error(), "unsupported format"))
	})
}
