// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package search owns the interactive search session: query text, mode,
// language filter, results and request lifecycle.
//
// Each issued request captures a generation number. When a response
// arrives it is applied only if its generation is still current; any newer
// action (another submit, a mode or filter change, teardown) bumps the
// generation, so a slow superseded response can never overwrite a newer one.
package search

import (
	"context"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/pdiddy/book-nook/internal/logging"
	"github.com/pdiddy/book-nook/internal/metrics"
	"github.com/pdiddy/book-nook/pkg/types"
)

// Searcher runs one catalog search. *catalog.Client implements it.
type Searcher interface {
	Search(ctx context.Context, mode types.SearchMode, text, language string) (types.SearchPage, error)
}

// Orchestrator drives the Idle → Loading → Ready|Failed state machine.
// It is safe for concurrent use. Observers are called outside the lock,
// possibly from a request goroutine.
type Orchestrator struct {
	searcher Searcher
	log      logrus.FieldLogger
	metrics  *metrics.Metrics
	observer func(types.QueryState)

	mu     sync.Mutex
	state  types.QueryState
	gen    uint64
	cancel context.CancelFunc
	closed bool
	seq    uint64
	wg     sync.WaitGroup

	// notifyMu orders observer calls; a snapshot older than the last one
	// delivered is dropped.
	notifyMu  sync.Mutex
	delivered uint64
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger. The default discards output.
func WithLogger(log logrus.FieldLogger) Option {
	return func(o *Orchestrator) { o.log = log }
}

// WithMetrics counts discarded stale responses on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *Orchestrator) { o.metrics = m }
}

// WithObserver registers fn to receive a snapshot after every state change.
func WithObserver(fn func(types.QueryState)) Option {
	return func(o *Orchestrator) { o.observer = fn }
}

// WithLanguage sets the initial language filter.
func WithLanguage(language string) Option {
	return func(o *Orchestrator) { o.state.Language = strings.TrimSpace(language) }
}

// WithMode sets the initial search mode.
func WithMode(mode types.SearchMode) Option {
	return func(o *Orchestrator) { o.state.Mode = mode }
}

// NewOrchestrator returns an idle orchestrator searching by title.
func NewOrchestrator(s Searcher, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		searcher: s,
		log:      logging.Discard(),
		state: types.QueryState{
			Mode:    types.ModeTitle,
			Results: []types.SearchRecord{},
			Status:  types.StatusIdle,
		},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// State returns a snapshot of the current session.
func (o *Orchestrator) State() types.QueryState {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.snapshotLocked()
}

// SetQuery updates the query text without searching.
func (o *Orchestrator) SetQuery(text string) {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return
	}
	o.state.QueryText = text
	snap, seq := o.publishLocked()
	o.mu.Unlock()
	o.notify(snap, seq)
}

// Submit searches for the current query text. A blank query clears the
// results without a network call. The returned channel is closed once the
// request has resolved, whether its response was applied or discarded.
func (o *Orchestrator) Submit(ctx context.Context) <-chan struct{} {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return closedChan()
	}
	done := o.searchOrClearLocked(ctx)
	snap, seq := o.publishLocked()
	o.mu.Unlock()

	o.notify(snap, seq)
	return done
}

// SetMode switches between title and author search. A change is a hard
// reset: query text, results and error are cleared and nothing is
// re-searched. Setting the current mode does nothing.
func (o *Orchestrator) SetMode(mode types.SearchMode) {
	o.mu.Lock()
	if o.closed || o.state.Mode == mode {
		o.mu.Unlock()
		return
	}
	o.invalidateLocked()
	o.state.Mode = mode
	o.state.QueryText = ""
	o.state.Results = []types.SearchRecord{}
	o.state.Total = 0
	o.state.Status = types.StatusIdle
	o.state.Error = ""
	snap, seq := o.publishLocked()
	o.mu.Unlock()

	o.notify(snap, seq)
}

// SetLanguage changes the language filter. With a non-blank query the
// search is re-issued immediately; otherwise results are cleared without
// a network call.
func (o *Orchestrator) SetLanguage(ctx context.Context, language string) <-chan struct{} {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return closedChan()
	}
	o.state.Language = strings.TrimSpace(language)
	done := o.searchOrClearLocked(ctx)
	snap, seq := o.publishLocked()
	o.mu.Unlock()

	o.notify(snap, seq)
	return done
}

// Close tears the orchestrator down. In-flight responses are discarded and
// Close waits for their goroutines to finish.
func (o *Orchestrator) Close() {
	o.mu.Lock()
	o.closed = true
	o.invalidateLocked()
	o.mu.Unlock()
	o.wg.Wait()
}

// searchOrClearLocked starts a search for the current query, or clears
// the results when the query is blank. Callers hold o.mu.
func (o *Orchestrator) searchOrClearLocked(ctx context.Context) <-chan struct{} {
	o.invalidateLocked()

	text := strings.TrimSpace(o.state.QueryText)
	if text == "" {
		o.state.Results = []types.SearchRecord{}
		o.state.Total = 0
		o.state.Status = types.StatusIdle
		o.state.Error = ""
		return closedChan()
	}

	gen := o.gen
	reqCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	mode, lang := o.state.Mode, o.state.Language
	o.state.Status = types.StatusLoading
	o.state.Error = ""

	log := o.log.WithFields(logrus.Fields{"generation": gen, "mode": mode, "query": text, "language": lang})
	log.Debug("search issued")

	done := make(chan struct{})
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		defer close(done)
		defer cancel()

		page, err := o.searcher.Search(reqCtx, mode, text, lang)
		o.complete(gen, page, err, log)
	}()
	return done
}

// complete applies a response if it belongs to the current generation.
func (o *Orchestrator) complete(gen uint64, page types.SearchPage, err error, log logrus.FieldLogger) {
	o.mu.Lock()
	if current := o.gen; gen != current {
		o.mu.Unlock()
		log.WithField("current", current).Debug("discarding stale search response")
		o.metrics.StaleDiscarded("search")
		return
	}

	o.cancel = nil
	if err != nil {
		o.state.Status = types.StatusFailed
		o.state.Results = []types.SearchRecord{}
		o.state.Total = 0
		o.state.Error = err.Error()
		log.WithError(err).Info("search failed")
	} else {
		docs := page.Docs
		if docs == nil {
			docs = []types.SearchRecord{}
		}
		o.state.Status = types.StatusReady
		o.state.Results = docs
		o.state.Total = page.NumFound
		o.state.Error = ""
		log.WithField("results", len(docs)).Debug("search applied")
	}
	snap, seq := o.publishLocked()
	o.mu.Unlock()

	o.notify(snap, seq)
}

// invalidateLocked supersedes any in-flight request. Callers hold o.mu.
func (o *Orchestrator) invalidateLocked() {
	o.gen++
	if o.cancel != nil {
		o.cancel()
		o.cancel = nil
	}
}

func (o *Orchestrator) snapshotLocked() types.QueryState {
	snap := o.state
	snap.Results = append([]types.SearchRecord(nil), o.state.Results...)
	if snap.Results == nil {
		snap.Results = []types.SearchRecord{}
	}
	return snap
}

// publishLocked snapshots the state for observers. Callers hold o.mu.
func (o *Orchestrator) publishLocked() (types.QueryState, uint64) {
	o.seq++
	return o.snapshotLocked(), o.seq
}

func (o *Orchestrator) notify(snap types.QueryState, seq uint64) {
	if o.observer == nil {
		return
	}
	o.notifyMu.Lock()
	defer o.notifyMu.Unlock()
	if seq <= o.delivered {
		return
	}
	o.delivered = seq
	o.observer(snap)
}

func closedChan() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
