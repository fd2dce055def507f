package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/workforce-analytics-api/internal/clock"
	"github.com/workforce-analytics-api/internal/domain"
	"github.com/workforce-analytics-api/internal/dto"
)

// Статусы задачи обучения
const (
	TaskPending   = "pending"
	TaskRunning   = "running"
	TaskSucceeded = "succeeded"
	TaskFailed    = "failed"
)

const (
	defaultWorkers   = 2
	defaultRetention = time.Hour
	queueSize        = 64
)

// Task - фоновая задача обучения моделей подразделения
type Task struct {
	ID           string
	DepartmentID int64
	Status       string
	SubmittedAt  time.Time
	StartedAt    *time.Time
	FinishedAt   *time.Time
	Result       *dto.TrainingResponse
	Err          error
}

// Response переводит задачу в ответ API
func (t Task) Response() *dto.TaskResponse {
	resp := &dto.TaskResponse{
		ID:           t.ID,
		DepartmentID: t.DepartmentID,
		Status:       t.Status,
		SubmittedAt:  t.SubmittedAt,
		StartedAt:    t.StartedAt,
		FinishedAt:   t.FinishedAt,
		Result:       t.Result,
	}
	if t.Err != nil {
		resp.Error = t.Err.Error()
	}
	return resp
}

// Runner выполняет обучение вне запроса на ограниченном пуле воркеров.
// Параллельные обучения одного подразделения не блокируют друг друга:
// каждое сохраняет свой набор, побеждает завершившееся последним.
type Runner struct {
	trainer   TrainingService
	retention time.Duration
	clock     clock.Clock
	logger    *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	queue  chan string
	wg     sync.WaitGroup

	mu     sync.Mutex
	tasks  map[string]*Task
	closed bool
}

// NewRunner запускает workers воркеров. Задачи хранятся retention после завершения.
func NewRunner(trainer TrainingService, workers int, retention time.Duration, clk clock.Clock, logger *slog.Logger) *Runner {
	if workers <= 0 {
		workers = defaultWorkers
	}
	if retention <= 0 {
		retention = defaultRetention
	}
	if clk == nil {
		clk = clock.Real{}
	}
	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())
	r := &Runner{
		trainer:   trainer,
		retention: retention,
		clock:     clk,
		logger:    logger,
		ctx:       ctx,
		cancel:    cancel,
		queue:     make(chan string, queueSize),
		tasks:     make(map[string]*Task),
	}

	r.wg.Add(workers)
	for range workers {
		go r.work()
	}
	return r
}

// Submit ставит обучение подразделения в очередь и сразу возвращает задачу
func (r *Runner) Submit(departmentID int64) (Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return Task{}, domain.ErrRunnerClosed
	}
	r.pruneLocked()

	task := &Task{
		ID:           uuid.NewString(),
		DepartmentID: departmentID,
		Status:       TaskPending,
		SubmittedAt:  r.clock.Now(),
	}

	select {
	case r.queue <- task.ID:
	default:
		return Task{}, domain.ErrTrainingQueueFull
	}
	r.tasks[task.ID] = task

	return *task, nil
}

// Task возвращает текущее состояние задачи
func (r *Runner) Task(id string) (Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	task, ok := r.tasks[id]
	if !ok {
		return Task{}, domain.ErrTaskNotFound
	}
	return *task, nil
}

// Shutdown прекращает приём задач и ждёт завершения начатых.
// При истечении ctx незавершённые обучения отменяются.
func (r *Runner) Shutdown(ctx context.Context) error {
	r.mu.Lock()
	if !r.closed {
		r.closed = true
		close(r.queue)
	}
	r.mu.Unlock()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		r.cancel()
		return nil
	case <-ctx.Done():
		r.cancel()
		<-done
		return ctx.Err()
	}
}

func (r *Runner) work() {
	defer r.wg.Done()
	for id := range r.queue {
		r.run(id)
	}
}

func (r *Runner) run(id string) {
	r.mu.Lock()
	task, ok := r.tasks[id]
	if !ok {
		r.mu.Unlock()
		return
	}
	started := r.clock.Now()
	task.Status = TaskRunning
	task.StartedAt = &started
	departmentID := task.DepartmentID
	r.mu.Unlock()

	result, err := r.trainer.Train(r.ctx, departmentID)

	r.mu.Lock()
	finished := r.clock.Now()
	task.FinishedAt = &finished
	if err != nil {
		task.Status = TaskFailed
		task.Err = err
	} else {
		task.Status = TaskSucceeded
		task.Result = result
	}
	r.mu.Unlock()

	if err != nil {
		r.logger.Error("training task failed",
			slog.String("task_id", id),
			slog.Int64("department_id", departmentID),
			slog.Any("error", err),
		)
		return
	}
	r.logger.Info("training task finished",
		slog.String("task_id", id),
		slog.Int64("department_id", departmentID),
		slog.Duration("duration", finished.Sub(started)),
	)
}

func (r *Runner) pruneLocked() {
	now := r.clock.Now()
	for id, task := range r.tasks {
		if task.FinishedAt != nil && now.Sub(*task.FinishedAt) > r.retention {
			delete(r.tasks, id)
		}
	}
}
