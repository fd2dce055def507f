// Package cache реализует кэш результатов аналитики с ограниченным временем жизни.
//
// Устаревшие записи удаляются лениво при чтении, фонового очистителя нет.
// Одновременные промахи по одному ключу объединяются в одно вычисление.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/workforce-analytics-api/internal/clock"
	"github.com/workforce-analytics-api/internal/monitoring"
	"golang.org/x/sync/singleflight"
)

// Entry - запись кэша. После вставки не изменяется.
type Entry[V any] struct {
	Key        string
	Payload    V
	InsertedAt time.Time
	TTL        time.Duration
}

func (e *Entry[V]) fresh(now time.Time) bool {
	return now.Sub(e.InsertedAt) < e.TTL
}

// Cache - отображение ключа области в запись с TTL
type Cache[V any] struct {
	name    string
	ttl     time.Duration
	clock   clock.Clock
	metrics *monitoring.Metrics

	mu      sync.RWMutex
	entries map[string]*Entry[V]
	group   singleflight.Group
}

// Option настраивает кэш
type Option[V any] func(*Cache[V])

// WithMetrics включает экспорт попаданий и промахов
func WithMetrics[V any](m *monitoring.Metrics) Option[V] {
	return func(c *Cache[V]) {
		c.metrics = m
	}
}

// New создаёт кэш с временем жизни ttl. При ttl <= 0 каждое чтение пересчитывает значение.
func New[V any](name string, ttl time.Duration, clk clock.Clock, opts ...Option[V]) *Cache[V] {
	if clk == nil {
		clk = clock.Real{}
	}
	c := &Cache[V]{
		name:    name,
		ttl:     ttl,
		clock:   clk,
		entries: make(map[string]*Entry[V]),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get возвращает значение, если запись существует и ещё не устарела
func (c *Cache[V]) Get(key string) (V, bool) {
	now := c.clock.Now()

	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if ok && entry.fresh(now) {
		c.metrics.CacheHit(c.name)
		return entry.Payload, true
	}

	if ok {
		c.evict(key, entry)
	}
	c.metrics.CacheMiss(c.name)

	var zero V
	return zero, false
}

// Set сохраняет значение с текущей меткой времени
func (c *Cache[V]) Set(key string, value V) {
	entry := &Entry[V]{
		Key:        key,
		Payload:    value,
		InsertedAt: c.clock.Now(),
		TTL:        c.ttl,
	}

	c.mu.Lock()
	c.entries[key] = entry
	c.mu.Unlock()
}

// GetOrCompute возвращает значение из кэша или вычисляет его через compute.
// Ошибки compute не кэшируются. Общее вычисление не зависит от отмены
// контекста отдельного вызывающего: каждый ждёт результат только до отмены своего ctx.
func (c *Cache[V]) GetOrCompute(ctx context.Context, key string, compute func(ctx context.Context) (V, error)) (V, error) {
	var zero V
	if v, ok := c.Get(key); ok {
		return v, nil
	}

	fillCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (any, error) {
		// повторная проверка: запись могла появиться, пока ждали группу
		c.mu.RLock()
		entry, ok := c.entries[key]
		c.mu.RUnlock()
		if ok && entry.fresh(c.clock.Now()) {
			return entry.Payload, nil
		}

		v, err := compute(fillCtx)
		if err != nil {
			return nil, err
		}
		c.Set(key, v)
		return v, nil
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		return zero, ctx.Err()
	}
	if res.Err != nil {
		return zero, res.Err
	}

	v, ok := res.Val.(V)
	if !ok {
		// несовпадение типа трактуем как промах
		return compute(ctx)
	}
	return v, nil
}

// Invalidate удаляет запись по ключу
func (c *Cache[V]) Invalidate(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// Purge очищает кэш
func (c *Cache[V]) Purge() {
	c.mu.Lock()
	c.entries = make(map[string]*Entry[V])
	c.mu.Unlock()
}

// Len возвращает количество записей, включая устаревшие
func (c *Cache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// TTL возвращает время жизни записей
func (c *Cache[V]) TTL() time.Duration {
	return c.ttl
}

func (c *Cache[V]) evict(key string, stale *Entry[V]) {
	c.mu.Lock()
	defer c.mu.Unlock()
	// запись могла быть заменена свежей между чтением и блокировкой
	if current, ok := c.entries[key]; ok && current == stale {
		delete(c.entries, key)
		c.metrics.CacheEviction(c.name)
	}
}
