package cache

import (
	"context"
	"slices"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestLazyFetchesOnce(t *testing.T) {
	var calls atomic.Int32
	l := NewLazy(func(context.Context) ([]string, bool) {
		calls.Add(1)
		return []string{"a", "b"}, true
	})

	if l.Populated() {
		t.Fatal("new Lazy should be empty")
	}
	for range 3 {
		v, ok := l.Get(context.Background())
		if !ok || !slices.Equal(v, []string{"a", "b"}) {
			t.Fatalf("Get() = %v, %v", v, ok)
		}
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("fetch calls = %d, want 1", n)
	}
	if !l.Populated() {
		t.Error("Lazy should be populated after a successful fetch")
	}
}

func TestLazyRetriesAfterAbsent(t *testing.T) {
	var calls atomic.Int32
	l := NewLazy(func(context.Context) (int, bool) {
		n := calls.Add(1)
		return 42, n > 1
	})

	if _, ok := l.Get(context.Background()); ok {
		t.Fatal("first Get() should be absent")
	}
	if l.Populated() {
		t.Fatal("absent fetch must not populate")
	}
	if v, ok := l.Get(context.Background()); !ok || v != 42 {
		t.Fatalf("second Get() = %d, %v; want 42, true", v, ok)
	}
	if n := calls.Load(); n != 2 {
		t.Errorf("fetch calls = %d, want 2", n)
	}
}

func TestLazyConcurrentFirstAccess(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	l := NewLazy(func(context.Context) ([]string, bool) {
		calls.Add(1)
		<-release
		return []string{"org"}, true
	})

	const n = 20
	var (
		wg      sync.WaitGroup
		started sync.WaitGroup
		results = make([][]string, n)
	)
	started.Add(n)
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			started.Done()
			v, ok := l.Get(context.Background())
			if !ok {
				t.Error("Get() absent")
			}
			results[i] = v
		}()
	}
	started.Wait()
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	if c := calls.Load(); c != 1 {
		t.Errorf("fetch calls = %d, want 1", c)
	}
	for i, r := range results {
		if !slices.Equal(r, []string{"org"}) {
			t.Errorf("caller %d saw %v", i, r)
		}
	}
}

func TestLazyContextCancelled(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	l := NewLazy(func(context.Context) (string, bool) {
		<-release
		return "late", true
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, ok := l.Get(ctx); ok {
		t.Error("Get() with expired context should be absent")
	}
}

func TestLazyFirstCallerCancelled(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	l := NewLazy(func(ctx context.Context) (string, bool) {
		close(started)
		select {
		case <-release:
			return "orgs", true
		case <-ctx.Done():
			return "", false
		}
	})

	ctxA, cancelA := context.WithCancel(context.Background())
	doneA := make(chan bool)
	go func() {
		_, ok := l.Get(ctxA)
		doneA <- ok
	}()
	<-started

	type result struct {
		v  string
		ok bool
	}
	doneB := make(chan result)
	go func() {
		v, ok := l.Get(context.Background())
		doneB <- result{v, ok}
	}()

	time.Sleep(10 * time.Millisecond)
	cancelA()
	if ok := <-doneA; ok {
		t.Error("cancelled caller should get absent")
	}
	close(release)

	if r := <-doneB; !r.ok || r.v != "orgs" {
		t.Fatalf("live caller Get() = %q, %v; want \"orgs\", true", r.v, r.ok)
	}
	if !l.Populated() {
		t.Error("fetch should have populated the Lazy")
	}
}

func TestLazyPeekDoesNotFetch(t *testing.T) {
	l := NewLazy(func(context.Context) (string, bool) {
		t.Error("Peek() must not fetch")
		return "", false
	})
	if _, ok := l.Peek(); ok {
		t.Error("Peek() on empty Lazy should be absent")
	}
}
