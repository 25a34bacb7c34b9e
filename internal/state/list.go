// Package state holds the list and detail containers the admin screens
// render from. A container owns the last page it fetched, a loading flag and
// the last failure message, and tells subscribers whenever they change.
//
// Every fetch is tagged with a per-container sequence number when it is
// dispatched. A response is committed only if no later fetch was dispatched
// in the meantime, so a slow response to an old query never overwrites the
// result of a newer one.
package state

import (
	"context"
	"sync"

	"github.com/prohmpiriya/glownatura-admin/internal/apierror"
	"github.com/prohmpiriya/glownatura-admin/internal/resource"
	"github.com/prohmpiriya/glownatura-admin/pkg/logger"
	"go.uber.org/zap"
)

// FetchFunc loads one page for a query, typically a repository List
type FetchFunc[T any] func(ctx context.Context, q resource.Query) (*resource.Page[T], error)

// Snapshot is an immutable view of a list container
type Snapshot[T any] struct {
	Items      []T
	Pagination resource.Pagination
	Query      resource.Query
	Loading    bool
	// Err is the message of the last failure, "" after a successful fetch
	Err string
}

// Options configures a container
type Options struct {
	Notifier Notifier
	Logger   *logger.Logger
	// LoadError is the notification summary used when a fetch fails
	LoadError string
}

func (o Options) withDefaults(name string) Options {
	if o.Notifier == nil {
		o.Notifier = nopNotifier{}
	}
	if o.Logger == nil {
		o.Logger = logger.NewNop()
	}
	o.Logger = o.Logger.Named(name)
	if o.LoadError == "" {
		o.LoadError = "Failed to load data"
	}
	return o
}

// List is the state of one paginated listing
type List[T any] struct {
	fetch FetchFunc[T]
	opts  Options
	subs  subscribers[Snapshot[T]]

	mu         sync.Mutex
	seq        uint64
	query      resource.Query
	items      []T
	pagination resource.Pagination
	loading    bool
	err        string
}

// NewList creates an idle container. Nothing is fetched until SetQuery or
// Refetch is called.
func NewList[T any](fetch FetchFunc[T], q resource.Query, opts Options) *List[T] {
	return &List[T]{
		fetch: fetch,
		opts:  opts.withDefaults("state"),
		query: q,
		items: []T{},
	}
}

// Subscribe registers fn to receive a snapshot after every state change and
// returns a function that removes it.
func (l *List[T]) Subscribe(fn func(Snapshot[T])) func() {
	return l.subs.add(fn)
}

func (l *List[T]) snapshotLocked() Snapshot[T] {
	return Snapshot[T]{
		Items:      append([]T(nil), l.items...),
		Pagination: l.pagination,
		Query:      l.query,
		Loading:    l.loading,
		Err:        l.err,
	}
}

// Snapshot returns the current state
func (l *List[T]) Snapshot() Snapshot[T] {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snapshotLocked()
}

// Query returns the query the next Refetch will use
func (l *List[T]) Query() resource.Query {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.query
}

// SetQuery replaces the query and fetches once with it
func (l *List[T]) SetQuery(ctx context.Context, q resource.Query) error {
	return l.load(ctx, &q)
}

// Refetch fetches again with the current query
func (l *List[T]) Refetch(ctx context.Context) error {
	return l.load(ctx, nil)
}

func (l *List[T]) load(ctx context.Context, next *resource.Query) error {
	l.mu.Lock()
	if next != nil {
		l.query = *next
	}
	l.seq++
	seq, q := l.seq, l.query
	l.loading = true
	l.err = ""
	snap := l.snapshotLocked()
	l.mu.Unlock()
	l.subs.publish(snap)

	page, err := l.fetch(ctx, q)

	l.mu.Lock()
	if seq != l.seq {
		l.mu.Unlock()
		l.opts.Logger.Debug("discarding stale response", zap.Uint64("seq", seq))
		return err
	}
	l.loading = false
	if err != nil {
		l.err = failureMessage(err, l.opts.LoadError)
	} else {
		l.items = page.Items
		if l.items == nil {
			l.items = []T{}
		}
		l.pagination = page.Pagination
	}
	snap = l.snapshotLocked()
	l.mu.Unlock()

	l.subs.publish(snap)
	if err != nil {
		l.opts.Logger.Warn("fetch failed", zap.Error(err))
		l.opts.Notifier.Error(l.opts.LoadError, snap.Err)
	}
	return err
}

func (l *List[T]) setErr(msg string) {
	l.mu.Lock()
	l.err = msg
	snap := l.snapshotLocked()
	l.mu.Unlock()
	l.subs.publish(snap)
}

// Mutate runs fn. On success it notifies successMsg and refetches the
// listing; on failure it records the error, notifies once and returns the
// error unchanged without refetching.
func (l *List[T]) Mutate(ctx context.Context, successMsg, failMsg string, fn func(ctx context.Context) error) error {
	return mutate(ctx, l.opts, l.setErr, l.Refetch, successMsg, failMsg, fn)
}

func mutate(ctx context.Context, opts Options, setErr func(string), refetch func(context.Context) error,
	successMsg, failMsg string, fn func(ctx context.Context) error) error {
	if err := fn(ctx); err != nil {
		msg := failureMessage(err, failMsg)
		setErr(msg)
		opts.Logger.Warn("mutation failed", zap.String("action", failMsg), zap.Error(err))
		opts.Notifier.Error(failMsg, msg)
		return err
	}

	opts.Notifier.Success(successMsg)
	// the refetch reports its own failure through Err
	_ = refetch(ctx)
	return nil
}

func failureMessage(err error, fallback string) string {
	if msg := apierror.MessageOf(err); msg != "" {
		return msg
	}
	return fallback
}

type subscribers[S any] struct {
	mu   sync.Mutex
	next int
	fns  map[int]func(S)
}

func (s *subscribers[S]) add(fn func(S)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fns == nil {
		s.fns = make(map[int]func(S))
	}
	id := s.next
	s.next++
	s.fns[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.fns, id)
	}
}

func (s *subscribers[S]) publish(snap S) {
	s.mu.Lock()
	fns := make([]func(S), 0, len(s.fns))
	for _, fn := range s.fns {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}
