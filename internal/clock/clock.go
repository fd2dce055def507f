// Package clock предоставляет источник времени, который можно подменить в тестах.
package clock

import (
	"sync"
	"time"
)

// Clock - источник текущего времени
type Clock interface {
	Now() time.Time
}

// Real возвращает системное время
type Real struct{}

func (Real) Now() time.Time {
	return time.Now()
}

// Manual - управляемые часы для тестов
type Manual struct {
	mu  sync.Mutex
	now time.Time
}

// NewManual создаёт часы, остановленные на моменте t
func NewManual(t time.Time) *Manual {
	return &Manual{now: t}
}

func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Advance сдвигает время вперёд на d
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	m.now = m.now.Add(d)
	m.mu.Unlock()
}

// Set устанавливает текущее время
func (m *Manual) Set(t time.Time) {
	m.mu.Lock()
	m.now = t
	m.mu.Unlock()
}
