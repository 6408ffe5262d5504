// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package shelf keeps the user's saved works: a deduplicated,
// insertion-ordered set mirrored to durable storage after every change.
package shelf

import (
	"context"
	"errors"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/pdiddy/book-nook/internal/logging"
	"github.com/pdiddy/book-nook/internal/metrics"
	"github.com/pdiddy/book-nook/pkg/types"
)

// Store is the in-memory authoritative bookshelf. Storage is read once, on
// first use; every change writes the full list back. Write failures are
// logged and swallowed, leaving memory authoritative for the session.
type Store struct {
	storage Storage
	log     logrus.FieldLogger
	metrics *metrics.Metrics

	loadOnce sync.Once

	mu      sync.Mutex
	entries []types.SearchRecord
	index   map[string]int
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger. The default discards output.
func WithLogger(log logrus.FieldLogger) Option {
	return func(s *Store) { s.log = log }
}

// WithMetrics records snapshot writes on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Store) { s.metrics = m }
}

// NewStore returns a Store backed by storage. Nothing is read until the
// store is first used.
func NewStore(storage Storage, opts ...Option) *Store {
	s := &Store{
		storage: storage,
		log:     logging.Discard(),
		index:   make(map[string]int),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Add appends r unless an entry with the same key exists, in which case
// the existing entry is kept untouched. It reports whether r was added.
// Records without a key are not saved.
func (s *Store) Add(r types.SearchRecord) bool {
	s.ensureLoaded()
	s.mu.Lock()
	defer s.mu.Unlock()

	if r.Key == "" {
		s.log.WithField("title", r.Title).Warn("refusing to save a work without a key")
		return false
	}
	if _, ok := s.index[r.Key]; ok {
		return false
	}

	r.AuthorNames = cloneStrings(r.AuthorNames)
	r.EditionKeys = cloneStrings(r.EditionKeys)
	s.index[r.Key] = len(s.entries)
	s.entries = append(s.entries, r)
	s.persist()
	return true
}

// Remove deletes the entry with key. Removing an absent key is a no-op.
// It reports whether an entry was removed.
func (s *Store) Remove(key string) bool {
	s.ensureLoaded()
	s.mu.Lock()
	defer s.mu.Unlock()

	pos, ok := s.index[key]
	if !ok {
		return false
	}

	s.entries = append(s.entries[:pos], s.entries[pos+1:]...)
	delete(s.index, key)
	for i := pos; i < len(s.entries); i++ {
		s.index[s.entries[i].Key] = i
	}
	s.persist()
	return true
}

// Has reports whether an entry with key is saved.
func (s *Store) Has(key string) bool {
	s.ensureLoaded()
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.index[key]
	return ok
}

// List returns the saved entries in insertion order. The slice is a copy.
func (s *Store) List() []types.SearchRecord {
	s.ensureLoaded()
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]types.SearchRecord, len(s.entries))
	copy(out, s.entries)
	return out
}

// Len returns the number of saved entries.
func (s *Store) Len() int {
	s.ensureLoaded()
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *Store) ensureLoaded() {
	s.loadOnce.Do(s.load)
}

// load reads storage once. A missing or malformed payload leaves the
// bookshelf empty.
func (s *Store) load() {
	s.mu.Lock()
	defer s.mu.Unlock()

	payload, err := s.storage.Load(context.Background())
	if errors.Is(err, ErrNotFound) {
		return
	}
	if err != nil {
		s.log.WithError(err).Warn("could not read stored bookshelf, starting empty")
		return
	}

	entries, err := Unmarshal(payload)
	if err != nil {
		s.log.WithError(err).Warn("stored bookshelf is malformed, starting empty")
		return
	}

	s.entries = entries
	for i, e := range entries {
		s.index[e.Key] = i
	}
	s.log.WithField("entries", len(entries)).Debug("bookshelf loaded")
}

// persist writes the full snapshot. Callers hold s.mu.
func (s *Store) persist() {
	payload, err := Marshal(s.entries)
	if err == nil {
		err = s.storage.Save(context.Background(), payload)
	}
	if err != nil {
		s.metrics.ShelfWrite("error")
		s.log.WithError(err).Warn("could not persist bookshelf, keeping it in memory")
		return
	}
	s.metrics.ShelfWrite("ok")
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append([]string(nil), in...)
}
