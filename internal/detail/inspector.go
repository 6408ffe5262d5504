// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package detail

import (
	"context"
	"errors"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/pdiddy/book-nook/internal/logging"
	"github.com/pdiddy/book-nook/internal/metrics"
	"github.com/pdiddy/book-nook/pkg/types"
)

// ErrNoKey is reported when a record carries neither a work key nor an
// edition key to fetch details with.
var ErrNoKey = errors.New("no catalog key for this work")

// DetailFetcher fetches the detail record of one work. *catalog.Client
// implements it.
type DetailFetcher interface {
	FetchDetail(ctx context.Context, key string) (types.DetailRecord, error)
}

// View is what the detail view shows.
type View struct {
	Open    bool                `json:"open"`
	Record  types.DisplayRecord `json:"record"`
	Loading bool                `json:"loading"`
	Error   string              `json:"error,omitempty"`
}

// Inspector controls the detail view of one work at a time. Opening a
// different work, or closing the view, supersedes an outstanding fetch;
// its eventual result is discarded.
type Inspector struct {
	fetcher  DetailFetcher
	covers   CoverResolver
	log      logrus.FieldLogger
	metrics  *metrics.Metrics
	observer func(View)

	mu     sync.Mutex
	view   View
	gen    uint64
	cancel context.CancelFunc
	seq    uint64
	wg     sync.WaitGroup

	notifyMu  sync.Mutex
	delivered uint64
}

// Option configures an Inspector.
type Option func(*Inspector)

// WithLogger sets the logger. The default discards output.
func WithLogger(log logrus.FieldLogger) Option {
	return func(i *Inspector) { i.log = log }
}

// WithMetrics counts discarded stale fetches on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(i *Inspector) { i.metrics = m }
}

// WithObserver registers fn to receive the view after every change.
func WithObserver(fn func(View)) Option {
	return func(i *Inspector) { i.observer = fn }
}

// NewInspector returns a closed detail view.
func NewInspector(f DetailFetcher, covers CoverResolver, opts ...Option) *Inspector {
	i := &Inspector{
		fetcher: f,
		covers:  covers,
		log:     logging.Discard(),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// View returns the current view.
func (i *Inspector) View() View {
	i.mu.Lock()
	defer i.mu.Unlock()
	return cloneView(i.view)
}

// Open shows rec immediately with its search fields and a loading
// description, then fetches its detail record. The returned channel is
// closed when the fetch resolves, whether it was applied or discarded.
func (i *Inspector) Open(ctx context.Context, rec types.SearchRecord) <-chan struct{} {
	i.mu.Lock()
	i.invalidateLocked()
	gen := i.gen

	key := rec.LookupKey()
	if key == "" {
		i.view = View{Open: true, Record: Merge(rec, &types.DetailRecord{}, i.covers), Error: ErrNoKey.Error()}
		view, seq := i.publishLocked()
		i.mu.Unlock()
		i.notify(view, seq)

		done := make(chan struct{})
		close(done)
		return done
	}

	i.view = View{Open: true, Record: Merge(rec, nil, i.covers), Loading: true}
	reqCtx, cancel := context.WithCancel(ctx)
	i.cancel = cancel
	view, seq := i.publishLocked()
	i.mu.Unlock()
	i.notify(view, seq)

	log := i.log.WithFields(logrus.Fields{"generation": gen, "key": key})
	log.Debug("detail fetch issued")

	done := make(chan struct{})
	i.wg.Add(1)
	go func() {
		defer i.wg.Done()
		defer close(done)
		defer cancel()

		d, err := i.fetcher.FetchDetail(reqCtx, key)
		i.complete(gen, rec, d, err, log)
	}()
	return done
}

// Close hides the view and discards any detail record, fetched or pending.
func (i *Inspector) Close() {
	i.mu.Lock()
	i.invalidateLocked()
	i.view = View{}
	view, seq := i.publishLocked()
	i.mu.Unlock()
	i.notify(view, seq)
}

// Wait blocks until every fetch goroutine has finished.
func (i *Inspector) Wait() {
	i.wg.Wait()
}

func (i *Inspector) complete(gen uint64, base types.SearchRecord, d types.DetailRecord, err error, log logrus.FieldLogger) {
	i.mu.Lock()
	if current := i.gen; gen != current {
		i.mu.Unlock()
		log.WithField("current", current).Debug("discarding stale detail response")
		i.metrics.StaleDiscarded("detail")
		return
	}

	i.cancel = nil
	if err != nil {
		i.view = View{Open: true, Record: Merge(base, &types.DetailRecord{}, i.covers), Error: err.Error()}
		log.WithError(err).Info("detail fetch failed")
	} else {
		i.view = View{Open: true, Record: Merge(base, &d, i.covers)}
	}
	view, seq := i.publishLocked()
	i.mu.Unlock()

	i.notify(view, seq)
}

func (i *Inspector) invalidateLocked() {
	i.gen++
	if i.cancel != nil {
		i.cancel()
		i.cancel = nil
	}
}

func (i *Inspector) publishLocked() (View, uint64) {
	i.seq++
	return cloneView(i.view), i.seq
}

func (i *Inspector) notify(v View, seq uint64) {
	if i.observer == nil {
		return
	}
	i.notifyMu.Lock()
	defer i.notifyMu.Unlock()
	if seq <= i.delivered {
		return
	}
	i.delivered = seq
	i.observer(v)
}

func cloneView(v View) View {
	v.Record.Authors = append([]string{}, v.Record.Authors...)
	v.Record.Subjects = append([]string{}, v.Record.Subjects...)
	return v
}
