// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package shelf

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStorages(t *testing.T) map[string]Storage {
	t.Helper()
	sq, err := OpenSQLite(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { sq.Close() })

	return map[string]Storage{
		"sqlite": sq,
		"file":   NewFileStorage(filepath.Join(t.TempDir(), "nested")),
		"memory": NewMemoryStorage(nil),
	}
}

func TestStorageContract(t *testing.T) {
	ctx := context.Background()
	for name, st := range testStorages(t) {
		t.Run(name, func(t *testing.T) {
			_, err := st.Load(ctx)
			assert.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, st.Save(ctx, []byte(`[{"key":"A","title":"a"}]`)))
			got, err := st.Load(ctx)
			require.NoError(t, err)
			assert.JSONEq(t, `[{"key":"A","title":"a"}]`, string(got))

			require.NoError(t, st.Save(ctx, []byte(`[]`)))
			got, err = st.Load(ctx)
			require.NoError(t, err)
			assert.Equal(t, `[]`, string(got), "save replaces the whole payload")
		})
	}
}

func TestSQLiteSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	first, err := OpenSQLite(dir)
	require.NoError(t, err)
	s := NewStore(first)
	s.Add(rec("/works/OL1W", "One"))
	s.Add(rec("/works/OL2W", "Two"))
	require.NoError(t, first.Close())

	second, err := OpenSQLite(dir)
	require.NoError(t, err)
	defer second.Close()

	payload, err := second.Load(ctx)
	require.NoError(t, err)
	entries, err := Unmarshal(payload)
	require.NoError(t, err)
	assert.Equal(t, []string{"/works/OL1W", "/works/OL2W"}, keys(entries))
}

func TestFileStorageLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	fs := NewFileStorage(dir)
	s := NewStore(fs)
	s.Add(rec("A", "a"))
	s.Add(rec("B", "b"))
	s.Remove("A")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, Namespace+".json", entries[0].Name())
	assert.Equal(t, filepath.Join(dir, Namespace+".json"), fs.Path())
}

func TestFileStorageCorruptFileRecovered(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, Namespace+".json"), []byte(`[{"key":"A",`), 0o644))

	s := NewStore(NewFileStorage(dir))
	assert.Empty(t, s.List())

	s.Add(rec("B", "b"))
	reloaded := NewStore(NewFileStorage(dir))
	assert.Equal(t, []string{"B"}, keys(reloaded.List()))
}
