package util

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDo(t *testing.T) {
	var g Group[string]
	v, err, shared := g.Do("key", func() (string, error) { return "bar", nil })
	require.NoError(t, err)
	assert.Equal(t, "bar", v)
	assert.False(t, shared)

	someErr := errors.New("boom")
	_, err, _ = g.Do("key", func() (string, error) { return "", someErr })
	assert.ErrorIs(t, err, someErr)
}

func TestDoDeduplicates(t *testing.T) {
	var g Group[int]
	var calls atomic.Int32
	release := make(chan struct{})
	started := make(chan struct{})

	fn := func() (int, error) {
		if calls.Add(1) == 1 {
			close(started)
		}
		<-release
		return 42, nil
	}

	var wg sync.WaitGroup
	results := make([]int, 5)
	wg.Add(1)
	go func() {
		defer wg.Done()
		results[0], _, _ = g.Do("key", fn)
	}()
	<-started
	for i := 1; i < len(results); i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _, _ = g.Do("key", fn)
		}(i)
	}
	// let the duplicates block on the in-flight call
	require.Eventually(t, func() bool {
		g.mu.Lock()
		defer g.mu.Unlock()
		return g.m["key"] != nil && g.m["key"].dups == len(results)-1
	}, time.Second, time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for _, r := range results {
		assert.Equal(t, 42, r)
	}
}

func TestDoRecoversPanic(t *testing.T) {
	var g Group[int]
	_, err, _ := g.Do("key", func() (int, error) { panic("bad") })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad")

	v, err, _ := g.Do("key", func() (int, error) { return 1, nil })
	require.NoError(t, err)
	assert.Equal(t, 1, v)
}

func TestDoContextCancel(t *testing.T) {
	var g Group[int]
	release := make(chan struct{})
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err, _ := g.DoContext(ctx, "key", func() (int, error) {
		<-release
		return 1, nil
	})
	assert.ErrorIs(t, err, context.Canceled)
}
