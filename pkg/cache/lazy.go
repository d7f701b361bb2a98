// Package cache provides in-process, populate-once values.
//
// A [Lazy] holds a value that is fetched on first access and then kept for
// the lifetime of the Lazy. Concurrent first accesses share one fetch. A
// fetch that reports no value leaves the Lazy empty so the next access tries
// again:
//
//	orgs := cache.NewLazy(func(ctx context.Context) ([]string, bool) {
//	    names, ok := client.OrganizationList(ctx)
//	    return names, ok && len(names) > 0
//	})
//	names, ok := orgs.Get(ctx)
//
// Nothing is persisted across processes and nothing expires.
package cache

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Fetch produces a value. ok=false means "nothing to cache".
type Fetch[T any] func(ctx context.Context) (value T, ok bool)

// Lazy is a value populated at most once by a [Fetch].
// It is safe for concurrent use.
type Lazy[T any] struct {
	fetch Fetch[T]
	group singleflight.Group

	mu     sync.RWMutex
	value  T
	filled bool
}

// NewLazy returns an empty Lazy that populates itself with fetch.
func NewLazy[T any](fetch Fetch[T]) *Lazy[T] {
	return &Lazy[T]{fetch: fetch}
}

type outcome[T any] struct {
	value T
	ok    bool
}

// Get returns the cached value, fetching it first if the Lazy is empty.
// Callers arriving while a fetch is in flight wait for it instead of
// starting their own. If ctx ends while waiting, Get returns absent without
// affecting the in-flight fetch. The shared fetch keeps the values of the
// first caller's ctx but not its cancellation, so one caller giving up does
// not fail the others.
func (l *Lazy[T]) Get(ctx context.Context) (T, bool) {
	if v, ok := l.Peek(); ok {
		return v, true
	}

	fetchCtx := context.WithoutCancel(ctx)
	ch := l.group.DoChan("", func() (any, error) {
		if v, ok := l.Peek(); ok {
			return outcome[T]{v, true}, nil
		}
		v, ok := l.fetch(fetchCtx)
		if !ok {
			return outcome[T]{}, nil
		}
		l.mu.Lock()
		l.value, l.filled = v, true
		l.mu.Unlock()
		return outcome[T]{v, true}, nil
	})

	select {
	case res := <-ch:
		o := res.Val.(outcome[T])
		return o.value, o.ok
	case <-ctx.Done():
		var zero T
		return zero, false
	}
}

// Peek returns the value without fetching.
func (l *Lazy[T]) Peek() (T, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.value, l.filled
}

// Populated reports whether a value has been cached.
func (l *Lazy[T]) Populated() bool {
	_, ok := l.Peek()
	return ok
}
