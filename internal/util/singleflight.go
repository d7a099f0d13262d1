// Package util holds small concurrency helpers shared by the services.
package util

import (
	"context"
	"fmt"
	"sync"
)

// Group collapses concurrent calls for the same key into one execution.
// The zero value is ready to use.
type Group[V any] struct {
	mu sync.Mutex
	m  map[string]*call[V]
}

type call[V any] struct {
	done chan struct{}
	val  V
	err  error
	dups int
}

// Do runs fn once for all callers that ask for key while it is in flight.
// shared reports whether the result went to more than one caller.
func (g *Group[V]) Do(key string, fn func() (V, error)) (v V, err error, shared bool) {
	g.mu.Lock()
	if g.m == nil {
		g.m = make(map[string]*call[V])
	}
	if c, ok := g.m[key]; ok {
		c.dups++
		g.mu.Unlock()
		<-c.done
		return c.val, c.err, true
	}
	c := &call[V]{done: make(chan struct{})}
	g.m[key] = c
	g.mu.Unlock()

	g.run(c, key, fn)
	return c.val, c.err, c.dups > 0
}

// DoContext is Do, except the caller stops waiting when ctx is done. The
// shared execution keeps running for the other callers.
func (g *Group[V]) DoContext(ctx context.Context, key string, fn func() (V, error)) (V, error, bool) {
	g.mu.Lock()
	if g.m == nil {
		g.m = make(map[string]*call[V])
	}
	c, ok := g.m[key]
	if ok {
		c.dups++
	} else {
		c = &call[V]{done: make(chan struct{})}
		g.m[key] = c
		go g.run(c, key, fn)
	}
	g.mu.Unlock()

	select {
	case <-c.done:
		return c.val, c.err, ok || c.dups > 0
	case <-ctx.Done():
		var zero V
		return zero, ctx.Err(), ok
	}
}

// Forget drops key so the next call executes fn again.
func (g *Group[V]) Forget(key string) {
	g.mu.Lock()
	delete(g.m, key)
	g.mu.Unlock()
}

func (g *Group[V]) run(c *call[V], key string, fn func() (V, error)) {
	defer func() {
		if r := recover(); r != nil {
			c.err = fmt.Errorf("singleflight %q panicked: %v", key, r)
		}
		g.mu.Lock()
		if g.m[key] == c {
			delete(g.m, key)
		}
		g.mu.Unlock()
		close(c.done)
	}()
	c.val, c.err = fn()
}
