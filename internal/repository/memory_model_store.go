package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/workforce-analytics-api/internal/domain"
)

// MemoryModelStore хранит модели в памяти процесса.
// Записи неизменяемы: Save подменяет указатели под блокировкой.
type MemoryModelStore struct {
	mu     sync.RWMutex
	models map[string]*domain.TrainedModel
}

// NewMemoryModelStore создаёт пустое хранилище
func NewMemoryModelStore() *MemoryModelStore {
	return &MemoryModelStore{models: make(map[string]*domain.TrainedModel)}
}

func memoryKey(departmentID int64, target string) string {
	return fmt.Sprintf("%d/%s", departmentID, target)
}

func (s *MemoryModelStore) Save(_ context.Context, models ...*domain.TrainedModel) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, m := range models {
		key := memoryKey(m.DepartmentID, m.Target)
		stored := *m
		stored.Version = 1
		if prev, ok := s.models[key]; ok {
			stored.Version = prev.Version + 1
		}
		s.models[key] = &stored
		m.Version = stored.Version
	}
	return nil
}

func (s *MemoryModelStore) Load(_ context.Context, departmentID int64, target string) (*domain.TrainedModel, error) {
	s.mu.RLock()
	m, ok := s.models[memoryKey(departmentID, target)]
	s.mu.RUnlock()

	if !ok {
		return nil, domain.ErrModelNotFound
	}
	model := *m
	return &model, nil
}

func (s *MemoryModelStore) LoadSet(_ context.Context, departmentID int64, targets ...string) (map[string]*domain.TrainedModel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[string]*domain.TrainedModel, len(targets))
	for _, target := range targets {
		if m, ok := s.models[memoryKey(departmentID, target)]; ok {
			model := *m
			result[target] = &model
		}
	}
	return result, nil
}
