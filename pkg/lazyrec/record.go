package lazyrec

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/randalmurphal/lazyrec/pkg/lazyrec/observability"
)

// View is the read-only handle a compute function receives for the
// record it is computing. Reads through a View follow the normal lazy
// path, so sibling fields are computed and memoized on first access.
//
// View deliberately omits Set and Delete: compute functions must not
// issue destructive mutations on each other.
type View interface {
	// Has reports whether the field is materialized or declared in
	// the specification. Note the asymmetry with Get: a declared
	// field that has been deleted still reports true here even
	// though reading it yields absent.
	Has(name string) bool

	// Get returns the field's value. ok is false when the field is
	// absent (never declared and never written, or tombstoned by
	// Delete). A non-nil error is a propagated compute failure.
	Get(name string) (value any, ok bool, err error)

	// MustGet returns the field's value, nil when absent.
	// Panics if the field's compute function fails.
	MustGet(name string) any

	// Keys returns the live field names: specification fields in
	// their fixed enumeration order, then expando fields in
	// insertion order, with tombstoned fields excluded.
	Keys() []string
}

// Record is one lazily-computed, mutable, record-like value.
//
// A Record starts empty: no compute function has run. Fields
// materialize into the record on first read or on explicit write.
// Delete tombstones a field: its stored value is discarded and every
// read reports absent until a Set clears the tombstone.
//
// Record is NOT safe for concurrent use. Each record is exclusively
// owned by its creator; callers sharing a record across goroutines
// must supply their own mutual exclusion.
type Record[S any] struct {
	factory *Factory[S]
	ctx     context.Context
	logger  *slog.Logger
	id      string
	source  S

	store      map[string]any
	order      []string // expando insertion order
	tombstones map[string]struct{}
	inflight   []string // compute stack, tracked only with the cycle guard
}

// New allocates an independent record bound to the given source.
// No compute function runs until a field is read.
func (f *Factory[S]) New(source S) *Record[S] {
	return f.NewContext(context.Background(), source)
}

// NewContext is like New but binds ctx to the record for metric and
// span recording. The context is not consulted for cancellation;
// accessor operations are synchronous and run to completion.
func (f *Factory[S]) NewContext(ctx context.Context, source S) *Record[S] {
	if ctx == nil {
		ctx = context.Background()
	}
	id := uuid.NewString()
	return &Record[S]{
		factory:    f,
		ctx:        ctx,
		logger:     observability.EnrichLogger(f.cfg.logger, id),
		id:         id,
		source:     source,
		store:      make(map[string]any),
		tombstones: make(map[string]struct{}),
	}
}

// ID returns the record's unique identifier, used in logs and spans.
func (r *Record[S]) ID() string {
	return r.id
}

// Source returns the source value the record was constructed with.
// The record never mutates it.
func (r *Record[S]) Source() S {
	return r.source
}

// Has reports whether name is materialized in the record or declared
// in the specification.
//
// Has ignores tombstones: a declared field that has been deleted
// still reports true, even though Get yields absent for it. This
// asymmetry is part of the contract; callers wanting "would Get
// return a value or trigger a computation" should combine Has with
// a tombstone-respecting read.
func (r *Record[S]) Has(name string) bool {
	if _, ok := r.store[name]; ok {
		return true
	}
	_, ok := r.factory.compute(name)
	return ok
}

// Get returns the field's value, computing and memoizing it on first
// access when the field is declared in the specification.
//
// ok is false when the field is absent: never declared and never
// written, or currently tombstoned by Delete. A non-nil error is a
// compute function failure wrapped in *ComputeError; the failure is
// not memoized, so a later Get re-invokes the function.
func (r *Record[S]) Get(name string) (any, bool, error) {
	if _, dead := r.tombstones[name]; dead {
		return nil, false, nil
	}

	if v, ok := r.store[name]; ok {
		r.factory.cfg.metrics.RecordMemoHit(r.ctx, name)
		return v, true, nil
	}

	fn, ok := r.factory.compute(name)
	if !ok {
		return nil, false, nil
	}

	v, err := r.computeField(name, fn)
	if err != nil {
		return nil, false, err
	}
	r.store[name] = v
	return v, true, nil
}

// computeField runs one compute function with observability around it.
// The result is NOT stored here; memoization happens in Get only on
// success.
func (r *Record[S]) computeField(name string, fn ComputeFunc[S]) (any, error) {
	if r.factory.cfg.cycleGuard {
		for _, active := range r.inflight {
			if active == name {
				path := make([]string, len(r.inflight), len(r.inflight)+1)
				copy(path, r.inflight)
				return nil, &CycleError{Field: name, Path: append(path, name)}
			}
		}
		r.inflight = append(r.inflight, name)
		defer func() {
			r.inflight = r.inflight[:len(r.inflight)-1]
		}()
	}

	ctx, span := r.factory.cfg.spans.StartComputeSpan(r.ctx, name, r.id)
	observability.LogComputeStart(r.logger, name)
	start := time.Now()

	// Sibling reads during fn see the span-bearing context, so their
	// compute spans nest under this one.
	prevCtx := r.ctx
	r.ctx = ctx
	defer func() { r.ctx = prevCtx }()

	v, err := fn(r, r.source)

	duration := time.Since(start)
	r.factory.cfg.metrics.RecordCompute(ctx, name, duration, err)
	r.factory.cfg.spans.EndSpanWithError(span, err)

	if err != nil {
		observability.LogComputeError(r.logger, name, err)
		return nil, &ComputeError{Field: name, RecordID: r.id, Err: err}
	}
	observability.LogComputeComplete(r.logger, name, float64(duration.Milliseconds()))
	return v, nil
}

// MustGet returns the field's value, nil when absent.
// Panics if the field's compute function fails.
func (r *Record[S]) MustGet(name string) any {
	v, ok, err := r.Get(name)
	if err != nil {
		panic(err)
	}
	if !ok {
		return nil
	}
	return v
}

// Peek returns the field's stored value without triggering
// computation. ok is false for tombstoned fields and for declared
// fields that have not materialized yet.
func (r *Record[S]) Peek(name string) (any, bool) {
	if _, dead := r.tombstones[name]; dead {
		return nil, false
	}
	v, ok := r.store[name]
	return v, ok
}

// Set writes value into the record and returns it. Set clears any
// tombstone on the field and overrides any memoized or
// specification-derived value. Fields not declared in the
// specification ("expando" fields) are permitted and enumerate after
// the declared fields, in insertion order.
func (r *Record[S]) Set(name string, value any) any {
	delete(r.tombstones, name)

	if _, declared := r.factory.compute(name); !declared {
		if _, stored := r.store[name]; !stored {
			r.order = append(r.order, name)
		}
	}
	r.store[name] = value

	observability.LogFieldSet(r.logger, name)
	r.factory.cfg.metrics.RecordMutation(r.ctx, name, observability.MutationSet)
	return value
}

// Delete tombstones the field: its stored value (memoized or written)
// is discarded and reads report absent until a later Set clears the
// tombstone. Because the memoized value is discarded too, a declared
// field deleted after Set-then-Delete churn never resurfaces a stale
// value. Deleting an absent or already-deleted field is a no-op.
//
// Note that Has and Describe still report declared fields after
// deletion; only the value is suppressed.
func (r *Record[S]) Delete(name string) {
	if _, stored := r.store[name]; stored {
		delete(r.store, name)
		// An expando loses its enumeration slot; a rewrite re-appends.
		for i, k := range r.order {
			if k == name {
				r.order = append(r.order[:i], r.order[i+1:]...)
				break
			}
		}
	}
	r.tombstones[name] = struct{}{}

	observability.LogFieldDelete(r.logger, name)
	r.factory.cfg.metrics.RecordMutation(r.ctx, name, observability.MutationDelete)
}

// Keys returns the live field names: declared fields in the
// factory's fixed enumeration order, then expando fields in insertion
// order. Tombstoned fields are excluded. The slice is rebuilt on
// every call and reflects current state.
func (r *Record[S]) Keys() []string {
	keys := make([]string, 0, len(r.factory.keys)+len(r.order))
	for _, name := range r.factory.keys {
		if _, dead := r.tombstones[name]; dead {
			continue
		}
		keys = append(keys, name)
	}
	keys = append(keys, r.order...)
	return keys
}

// Len returns the number of live fields, matching len(Keys()).
func (r *Record[S]) Len() int {
	n := len(r.order)
	for _, name := range r.factory.keys {
		if _, dead := r.tombstones[name]; !dead {
			n++
		}
	}
	return n
}

// Compile-time interface check.
var _ View = (*Record[struct{}])(nil)
