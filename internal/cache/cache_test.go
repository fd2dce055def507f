package cache_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/workforce-analytics-api/internal/cache"
	"github.com/workforce-analytics-api/internal/clock"
	"github.com/workforce-analytics-api/internal/monitoring"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type counter struct {
	calls atomic.Int64
}

func (c *counter) compute(value string) func(context.Context) (string, error) {
	return func(context.Context) (string, error) {
		n := c.calls.Add(1)
		return fmt.Sprintf("%s#%d", value, n), nil
	}
}

func TestCache_RespectsTTL(t *testing.T) {
	const ttl = 60 * time.Second
	const eps = time.Millisecond

	clk := clock.NewManual(t0)
	c := cache.New[string]("company", ttl, clk)
	cnt := &counter{}
	ctx := context.Background()

	v, err := c.GetOrCompute(ctx, "company", cnt.compute("v"))
	require.NoError(t, err)
	assert.Equal(t, "v#1", v)

	clk.Set(t0.Add(ttl - eps))
	v, err = c.GetOrCompute(ctx, "company", cnt.compute("v"))
	require.NoError(t, err)
	assert.Equal(t, "v#1", v, "value read before ttl must come from cache")
	assert.EqualValues(t, 1, cnt.calls.Load())

	clk.Set(t0.Add(ttl + eps))
	v, err = c.GetOrCompute(ctx, "company", cnt.compute("v"))
	require.NoError(t, err)
	assert.Equal(t, "v#2", v, "value read after ttl must be recomputed")
	assert.EqualValues(t, 2, cnt.calls.Load())
}

func TestCache_ExactlyAtTTLIsStale(t *testing.T) {
	clk := clock.NewManual(t0)
	c := cache.New[int]("department", time.Minute, clk)
	c.Set("department:1", 7)

	clk.Advance(time.Minute)
	_, ok := c.Get("department:1")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len(), "stale entry is evicted lazily on read")
}

func TestCache_NoProactiveEviction(t *testing.T) {
	clk := clock.NewManual(t0)
	c := cache.New[int]("department", time.Second, clk)
	c.Set("department:1", 1)
	c.Set("department:2", 2)

	clk.Advance(time.Hour)
	assert.Equal(t, 2, c.Len())

	_, ok := c.Get("department:1")
	assert.False(t, ok)
	assert.Equal(t, 1, c.Len())
}

func TestCache_ErrorsAreNotCached(t *testing.T) {
	c := cache.New[string]("employee", time.Minute, clock.NewManual(t0))
	boom := errors.New("boom")
	calls := 0

	_, err := c.GetOrCompute(context.Background(), "employee:1", func(context.Context) (string, error) {
		calls++
		return "", boom
	})
	require.ErrorIs(t, err, boom)

	v, err := c.GetOrCompute(context.Background(), "employee:1", func(context.Context) (string, error) {
		calls++
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", v)
	assert.Equal(t, 2, calls)
}

func TestCache_KeysAreIndependent(t *testing.T) {
	c := cache.New[string]("department", time.Minute, clock.NewManual(t0))
	cnt := &counter{}
	ctx := context.Background()

	a, _ := c.GetOrCompute(ctx, "department:1", cnt.compute("a"))
	b, _ := c.GetOrCompute(ctx, "department:2", cnt.compute("b"))
	assert.Equal(t, "a#1", a)
	assert.Equal(t, "b#2", b)

	c.Invalidate("department:1")
	a, _ = c.GetOrCompute(ctx, "department:1", cnt.compute("a"))
	b, _ = c.GetOrCompute(ctx, "department:2", cnt.compute("b"))
	assert.Equal(t, "a#3", a)
	assert.Equal(t, "b#2", b)

	c.Purge()
	assert.Equal(t, 0, c.Len())
}

func TestCache_ConcurrentMissesCoalesce(t *testing.T) {
	c := cache.New[string]("company", time.Minute, clock.NewManual(t0))
	release := make(chan struct{})
	var calls atomic.Int64

	compute := func(context.Context) (string, error) {
		calls.Add(1)
		<-release
		return "payload", nil
	}

	const workers = 16
	var wg sync.WaitGroup
	results := make([]string, workers)
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := c.GetOrCompute(context.Background(), "company", compute)
			if err == nil {
				results[i] = v
			}
		}()
	}

	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.EqualValues(t, 1, calls.Load())
	for _, r := range results {
		assert.Equal(t, "payload", r)
	}
}

func TestCache_ConcurrentReadWrite(t *testing.T) {
	clk := clock.NewManual(t0)
	c := cache.New[[]int]("department", time.Second, clk)

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := range 200 {
				c.Set("department:1", []int{i, j, i + j})
			}
		}()
		go func() {
			defer wg.Done()
			for range 200 {
				if v, ok := c.Get("department:1"); ok {
					// запись целиком от одного писателя
					assert.Equal(t, v[0]+v[1], v[2])
				}
				clk.Advance(time.Millisecond)
			}
		}()
	}
	wg.Wait()
}

func TestCache_ReportsMetrics(t *testing.T) {
	m := monitoring.New()
	clk := clock.NewManual(t0)
	c := cache.New[int]("company", time.Second, clk, cache.WithMetrics[int](m))

	c.Set("company", 1)
	c.Get("company")
	clk.Advance(2 * time.Second)
	c.Get("company")

	count, err := testutil.GatherAndCount(m.Registry(), "workforce_analytics_cache_evictions_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestCache_CancelledCallerDoesNotFailOthers(t *testing.T) {
	c := cache.New[string]("department", time.Minute, clock.NewManual(t0))
	started := make(chan struct{})
	release := make(chan struct{})
	var calls atomic.Int64

	compute := func(ctx context.Context) (string, error) {
		calls.Add(1)
		close(started)
		select {
		case <-release:
			return "payload", nil
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := c.GetOrCompute(firstCtx, "department:1", compute)
		firstErr <- err
	}()
	<-started

	type result struct {
		v   string
		err error
	}
	second := make(chan result, 1)
	go func() {
		v, err := c.GetOrCompute(context.Background(), "department:1", compute)
		second <- result{v, err}
	}()

	time.Sleep(20 * time.Millisecond)
	cancelFirst()
	require.ErrorIs(t, <-firstErr, context.Canceled)

	close(release)
	got := <-second
	require.NoError(t, got.err)
	assert.Equal(t, "payload", got.v)
	assert.EqualValues(t, 1, calls.Load())

	v, ok := c.Get("department:1")
	assert.True(t, ok)
	assert.Equal(t, "payload", v)
}
