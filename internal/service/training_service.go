package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/workforce-analytics-api/internal/clock"
	"github.com/workforce-analytics-api/internal/domain"
	"github.com/workforce-analytics-api/internal/dto"
	"github.com/workforce-analytics-api/internal/learner"
	"github.com/workforce-analytics-api/internal/monitoring"
	"github.com/workforce-analytics-api/internal/repository"
	"github.com/workforce-analytics-api/internal/synth"
	"golang.org/x/sync/errgroup"
)

// TrainingConfig - параметры обучения моделей
type TrainingConfig struct {
	Periods      int
	Seed         int64
	Noise        float64
	Learner      string
	Lambda       float64
	TrainRevenue bool
}

// TrainingService определяет интерфейс обучения прогнозных моделей
type TrainingService interface {
	Train(ctx context.Context, departmentID int64) (*dto.TrainingResponse, error)
}

type trainingService struct {
	reader  SnapshotReader
	synth   *synth.Synthesizer
	store   repository.ModelStore
	cfg     TrainingConfig
	clock   clock.Clock
	metrics *monitoring.Metrics
	logger  *slog.Logger
}

// NewTrainingService создаёт новый экземпляр сервиса
func NewTrainingService(
	reader SnapshotReader,
	store repository.ModelStore,
	cfg TrainingConfig,
	clk clock.Clock,
	metrics *monitoring.Metrics,
	logger *slog.Logger,
) TrainingService {
	if cfg.Periods == 0 {
		cfg.Periods = synth.DefaultPeriods
	}
	if cfg.Learner == "" {
		cfg.Learner = learner.KindRidge
	}
	if clk == nil {
		clk = clock.Real{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &trainingService{
		reader:  reader,
		synth:   synth.New(cfg.Noise),
		store:   store,
		cfg:     cfg,
		clock:   clk,
		metrics: metrics,
		logger:  logger,
	}
}

func (s *trainingService) Train(ctx context.Context, departmentID int64) (*dto.TrainingResponse, error) {
	done := s.metrics.TrainingStarted()
	resp, err := s.train(ctx, departmentID)
	done(err)
	return resp, err
}

func (s *trainingService) train(ctx context.Context, departmentID int64) (*dto.TrainingResponse, error) {
	snap, err := s.reader.Snapshot(ctx, domain.DepartmentScope(departmentID))
	if err != nil {
		return nil, err
	}

	history, err := s.synth.Synthesize(snap, s.cfg.Periods, s.cfg.Seed)
	if err != nil {
		return nil, err
	}

	targets := []string{domain.TargetROI, domain.TargetCost}
	if s.cfg.TrainRevenue {
		targets = append(targets, domain.TargetRevenue)
	}

	runID := uuid.NewString()
	trainedAt := s.clock.Now()
	x := history.Matrix()
	models := make([]*domain.TrainedModel, len(targets))

	g, gctx := errgroup.WithContext(ctx)
	for i, target := range targets {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			m, err := s.fit(departmentID, target, x, history.Targets(target))
			if err != nil {
				return err
			}
			m.RunID = runID
			m.TrainedAt = trainedAt
			models[i] = m
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// все цели заменяются одной записью
	if err := s.store.Save(ctx, models...); err != nil {
		return nil, err
	}

	resp := &dto.TrainingResponse{
		DepartmentID:   departmentID,
		RunID:          runID,
		DataProvenance: history.Provenance,
		Periods:        len(history.Periods),
		Seed:           history.Seed,
		Features:       domain.FeatureNames,
		TrainedAt:      trainedAt,
		Models:         make([]dto.ModelMetricsResponse, 0, len(models)),
	}
	for _, m := range models {
		resp.Models = append(resp.Models, dto.ModelMetricsResponse{
			Target:  m.Target,
			Kind:    m.Kind,
			Version: m.Version,
			R2:      m.R2,
			MAE:     m.MAE,
			MSE:     m.MSE,
			Samples: m.Samples,
		})
	}

	s.logger.Info("department models trained",
		slog.Int64("department_id", departmentID),
		slog.String("run_id", runID),
		slog.String("learner", s.cfg.Learner),
		slog.Int("periods", len(history.Periods)),
	)

	return resp, nil
}

func (s *trainingService) fit(departmentID int64, target string, x [][]float64, y []float64) (*domain.TrainedModel, error) {
	reg, err := learner.New(s.cfg.Learner, learner.Options{Lambda: s.cfg.Lambda})
	if err != nil {
		return nil, err
	}

	if err := reg.Fit(x, y); err != nil {
		return nil, &domain.InsufficientDataError{
			DepartmentID: departmentID,
			Reason:       fmt.Sprintf("failed to fit %s model: %v", target, err),
		}
	}

	metrics, err := learner.Evaluate(reg, x, y)
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate %s model: %w", target, err)
	}

	state, err := reg.MarshalState()
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s model: %w", target, err)
	}

	return &domain.TrainedModel{
		DepartmentID: departmentID,
		Target:       target,
		Kind:         reg.Kind(),
		Features:     strings.Join(domain.FeatureNames, ","),
		Seed:         s.cfg.Seed,
		Periods:      len(y),
		R2:           metrics.R2,
		MAE:          metrics.MAE,
		MSE:          metrics.MSE,
		Samples:      len(y),
		State:        state,
	}, nil
}
