package state

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// LoadFunc fetches a single value, typically a repository Get bound to an id
type LoadFunc[T any] func(ctx context.Context) (*T, error)

// DetailSnapshot is an immutable view of a detail container
type DetailSnapshot[T any] struct {
	Value   *T
	Loading bool
	Err     string
}

// Detail is the state of one record or aggregate
type Detail[T any] struct {
	load LoadFunc[T]
	opts Options
	subs subscribers[DetailSnapshot[T]]

	mu      sync.Mutex
	seq     uint64
	value   *T
	loading bool
	err     string
}

func NewDetail[T any](load LoadFunc[T], opts Options) *Detail[T] {
	return &Detail[T]{load: load, opts: opts.withDefaults("state")}
}

func (d *Detail[T]) Subscribe(fn func(DetailSnapshot[T])) func() {
	return d.subs.add(fn)
}

func (d *Detail[T]) snapshotLocked() DetailSnapshot[T] {
	return DetailSnapshot[T]{Value: d.value, Loading: d.loading, Err: d.err}
}

func (d *Detail[T]) Snapshot() DetailSnapshot[T] {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.snapshotLocked()
}

// Load fetches the value. A failed load keeps the previous value.
func (d *Detail[T]) Load(ctx context.Context) error {
	d.mu.Lock()
	d.seq++
	seq := d.seq
	d.loading = true
	d.err = ""
	snap := d.snapshotLocked()
	d.mu.Unlock()
	d.subs.publish(snap)

	v, err := d.load(ctx)

	d.mu.Lock()
	if seq != d.seq {
		d.mu.Unlock()
		d.opts.Logger.Debug("discarding stale response", zap.Uint64("seq", seq))
		return err
	}
	d.loading = false
	if err != nil {
		d.err = failureMessage(err, d.opts.LoadError)
	} else {
		d.value = v
	}
	snap = d.snapshotLocked()
	d.mu.Unlock()

	d.subs.publish(snap)
	if err != nil {
		d.opts.Logger.Warn("load failed", zap.Error(err))
		d.opts.Notifier.Error(d.opts.LoadError, snap.Err)
	}
	return err
}

// Refetch is Load under the name list containers use
func (d *Detail[T]) Refetch(ctx context.Context) error {
	return d.Load(ctx)
}

func (d *Detail[T]) setErr(msg string) {
	d.mu.Lock()
	d.err = msg
	snap := d.snapshotLocked()
	d.mu.Unlock()
	d.subs.publish(snap)
}

// Mutate runs fn and reloads the value on success, like List.Mutate
func (d *Detail[T]) Mutate(ctx context.Context, successMsg, failMsg string, fn func(ctx context.Context) error) error {
	return mutate(ctx, d.opts, d.setErr, d.Load, successMsg, failMsg, fn)
}
