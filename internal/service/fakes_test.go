package service_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/workforce-analytics-api/internal/domain"
	"github.com/workforce-analytics-api/internal/dto"
)

var t0 = time.Date(2026, 3, 16, 10, 0, 0, 0, time.UTC)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

// fakeReader отдаёт заранее подготовленные срезы
type fakeReader struct {
	mu        sync.Mutex
	snapshots map[string]domain.Snapshot
	employees []domain.Employee
	projects  []domain.Project
	hours     float64
	calls     int
	err       error
}

func newFakeReader() *fakeReader {
	return &fakeReader{snapshots: make(map[string]domain.Snapshot)}
}

func (f *fakeReader) put(snap domain.Snapshot) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.snapshots[snap.Scope.Key()] = snap
}

func (f *fakeReader) Snapshot(_ context.Context, scope domain.Scope) (domain.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return domain.Snapshot{}, f.err
	}
	snap, ok := f.snapshots[scope.Key()]
	if !ok {
		return domain.Snapshot{}, &domain.ScopeNotFoundError{Scope: scope}
	}
	return snap, nil
}

func (f *fakeReader) TopEmployees(_ context.Context, limit int) ([]domain.Employee, error) {
	if limit > len(f.employees) {
		limit = len(f.employees)
	}
	return f.employees[:limit], nil
}

func (f *fakeReader) TopProjects(_ context.Context, limit int) ([]domain.Project, error) {
	if limit > len(f.projects) {
		limit = len(f.projects)
	}
	return f.projects[:limit], nil
}

func (f *fakeReader) HoursSince(context.Context, int64, time.Time) (float64, error) {
	return f.hours, nil
}

func (f *fakeReader) snapshotCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// scenarioA - подразделение с одним сотрудником и одним проектом
func scenarioA(id int64) domain.Snapshot {
	return domain.Snapshot{
		Scope:           domain.DepartmentScope(id),
		Name:            "Engineering",
		DepartmentID:    id,
		DepartmentName:  "Engineering",
		DepartmentCount: 1,
		EmployeeCount:   1,
		ProjectCount:    1,
		TotalSalary:     80000,
		ProjectCost:     50000,
		EmployeeRevenue: 100000,
		ProjectRevenue:  70000,
		TotalHours:      160,
		Budget:          200000,
		ComputedAt:      t0,
	}
}

// fakeTrainer управляет результатом обучения из теста
type fakeTrainer struct {
	mu      sync.Mutex
	calls   []int64
	release chan struct{}
	err     error
}

func (f *fakeTrainer) Train(ctx context.Context, departmentID int64) (*dto.TrainingResponse, error) {
	f.mu.Lock()
	f.calls = append(f.calls, departmentID)
	release, err := f.release, f.err
	f.mu.Unlock()

	if release != nil {
		select {
		case <-release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	return &dto.TrainingResponse{DepartmentID: departmentID, RunID: "run"}, nil
}

var errBoom = errors.New("boom")
