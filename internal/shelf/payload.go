// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package shelf

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/pdiddy/book-nook/pkg/types"
)

// ErrMalformedState is wrapped by Unmarshal when a stored payload cannot be
// used. The store recovers from it by starting empty.
var ErrMalformedState = errors.New("malformed persisted bookshelf")

const payloadSchemaJSON = `{
  "type": "array",
  "items": {
    "type": "object",
    "required": ["key", "title"],
    "properties": {
      "key": {"type": "string", "minLength": 1},
      "title": {"type": "string"},
      "author_name": {"type": "array", "items": {"type": "string"}},
      "first_publish_year": {"type": "integer"},
      "cover_i": {"type": "integer"},
      "edition_key": {"type": "array", "items": {"type": "string"}}
    }
  }
}`

var payloadSchema = mustCompileSchema(payloadSchemaJSON)

func mustCompileSchema(src string) *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
	if err != nil {
		panic(fmt.Sprintf("compiling bookshelf schema: %v", err))
	}
	return s
}

// Marshal serializes entries as the persisted JSON array.
func Marshal(entries []types.SearchRecord) ([]byte, error) {
	if entries == nil {
		entries = []types.SearchRecord{}
	}
	return json.Marshal(entries)
}

// Unmarshal parses a persisted payload. Any payload that is not valid JSON
// or does not match the bookshelf schema yields an error wrapping
// ErrMalformedState. Duplicate keys collapse to their first occurrence.
func Unmarshal(payload []byte) ([]types.SearchRecord, error) {
	result, err := payloadSchema.Validate(gojsonschema.NewBytesLoader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedState, err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return nil, fmt.Errorf("%w: %s", ErrMalformedState, strings.Join(msgs, "; "))
	}

	var entries []types.SearchRecord
	if err := json.Unmarshal(payload, &entries); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedState, err)
	}
	return dedup(entries), nil
}

func dedup(entries []types.SearchRecord) []types.SearchRecord {
	seen := make(map[string]bool, len(entries))
	out := make([]types.SearchRecord, 0, len(entries))
	for _, e := range entries {
		if seen[e.Key] {
			continue
		}
		seen[e.Key] = true
		out = append(out, e)
	}
	return out
}
