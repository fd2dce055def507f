package service

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/workforce-analytics-api/internal/clock"
	"github.com/workforce-analytics-api/internal/domain"
	"github.com/workforce-analytics-api/internal/dto"
	"github.com/workforce-analytics-api/internal/learner"
	"github.com/workforce-analytics-api/internal/monitoring"
	"github.com/workforce-analytics-api/internal/repository"
	"github.com/workforce-analytics-api/internal/synth"
)

// PredictionService определяет интерфейс прогноза показателей подразделения
type PredictionService interface {
	Predict(ctx context.Context, departmentID int64) (*dto.PredictionResponse, error)
}

type predictionService struct {
	reader  SnapshotReader
	store   repository.ModelStore
	maxAge  time.Duration
	clock   clock.Clock
	metrics *monitoring.Metrics
}

// NewPredictionService создаёт новый экземпляр сервиса.
// Модели старше maxAge помечаются как устаревшие; maxAge <= 0 отключает проверку.
func NewPredictionService(
	reader SnapshotReader,
	store repository.ModelStore,
	maxAge time.Duration,
	clk clock.Clock,
	metrics *monitoring.Metrics,
) PredictionService {
	if clk == nil {
		clk = clock.Real{}
	}
	return &predictionService{
		reader:  reader,
		store:   store,
		maxAge:  maxAge,
		clock:   clk,
		metrics: metrics,
	}
}

func (s *predictionService) Predict(ctx context.Context, departmentID int64) (*dto.PredictionResponse, error) {
	resp, err := s.predict(ctx, departmentID)
	s.metrics.Prediction(err)
	return resp, err
}

func (s *predictionService) predict(ctx context.Context, departmentID int64) (*dto.PredictionResponse, error) {
	models, err := s.store.LoadSet(ctx, departmentID, domain.TargetROI, domain.TargetCost, domain.TargetRevenue)
	if err != nil {
		if !errors.Is(err, domain.ErrModelStore) {
			err = &domain.ModelStoreError{Op: "load", Err: err}
		}
		return nil, err
	}

	// обучение никогда не запускается неявно
	for _, target := range []string{domain.TargetROI, domain.TargetCost} {
		if _, ok := models[target]; !ok {
			return nil, &domain.ModelNotTrainedError{DepartmentID: departmentID, Target: target}
		}
	}
	roiModel := models[domain.TargetROI]
	costModel := models[domain.TargetCost]

	// свежий срез в обход кэша
	snap, err := s.reader.Snapshot(ctx, domain.DepartmentScope(departmentID))
	if err != nil {
		return nil, err
	}
	features := synth.CurrentFeatures(snap)

	roi, err := forecast(roiModel, snap, features)
	if err != nil {
		return nil, err
	}
	cost, err := forecast(costModel, snap, features)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	resp := &dto.PredictionResponse{
		DepartmentID:   departmentID,
		DepartmentName: snap.Name,
		PredictionDate: now.Format(time.DateOnly),
		NextMonth:      int(time.Date(now.Year(), now.Month()+1, 1, 0, 0, 0, 0, now.Location()).Month()),
		DataProvenance: domain.ProvenanceSynthetic,
		ModelKind:      roiModel.Kind,
		RunID:          roiModel.RunID,
		TrainedAt:      roiModel.TrainedAt,
		Stale:          s.maxAge > 0 && now.Sub(roiModel.TrainedAt) > s.maxAge,
		ROI:            roi,
		Cost:           cost,
	}

	// модель выручки из другого запуска не смешивается с текущим набором
	if revenueModel, ok := models[domain.TargetRevenue]; ok && revenueModel.RunID == roiModel.RunID {
		revenue, err := forecast(revenueModel, snap, features)
		if err != nil {
			return nil, err
		}
		resp.Revenue = &revenue
	}

	resp.Recommendations = Recommend(RecommendationInput{
		ROI:   roi,
		Cost:  cost,
		Stale: resp.Stale,
	})

	return resp, nil
}

func forecast(model *domain.TrainedModel, snap domain.Snapshot, features []float64) (dto.ForecastResponse, error) {
	reg, err := learner.Restore(model.Kind, model.State)
	if err != nil {
		return dto.ForecastResponse{}, &domain.ModelStoreError{Op: "decode", Err: err}
	}

	predicted, err := reg.Predict(features)
	if err != nil {
		return dto.ForecastResponse{}, &domain.ModelStoreError{Op: "predict", Err: err}
	}

	current := synth.CurrentTarget(snap, model.Target)
	trend := predicted - current
	var pct float64
	if current != 0 {
		pct = trend / math.Abs(current) * 100
	}

	return dto.ForecastResponse{
		Current:         current,
		Predicted:       predicted,
		Trend:           trend,
		TrendPercentage: pct,
		Confidence:      Confidence(model.R2),
		ModelVersion:    model.Version,
	}, nil
}

// Confidence приводит R² к диапазону [0, 1]
func Confidence(r2 float64) float64 {
	if math.IsNaN(r2) || r2 < 0 {
		return 0
	}
	if r2 > 1 {
		return 1
	}
	return r2
}
