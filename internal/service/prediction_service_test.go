package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/workforce-analytics-api/internal/clock"
	"github.com/workforce-analytics-api/internal/domain"
	"github.com/workforce-analytics-api/internal/learner"
	"github.com/workforce-analytics-api/internal/repository"
	"github.com/workforce-analytics-api/internal/service"
)

type engine struct {
	reader    *fakeReader
	store     *repository.MemoryModelStore
	clock     *clock.Manual
	trainer   service.TrainingService
	predictor service.PredictionService
}

func newEngine(t *testing.T, cfg service.TrainingConfig) *engine {
	t.Helper()
	e := &engine{
		reader: newFakeReader(),
		store:  repository.NewMemoryModelStore(),
		clock:  clock.NewManual(t0),
	}
	e.trainer = service.NewTrainingService(e.reader, e.store, cfg, e.clock, nil, discard)
	e.predictor = service.NewPredictionService(e.reader, e.store, 7*24*time.Hour, e.clock, nil)
	return e
}

func defaultConfig() service.TrainingConfig {
	return service.TrainingConfig{Periods: 12, Seed: 42, Noise: 0.15, Learner: learner.KindRidge}
}

func TestTrain_SavesConsistentModelSet(t *testing.T) {
	e := newEngine(t, defaultConfig())
	e.reader.put(scenarioA(1))
	ctx := context.Background()

	resp, err := e.trainer.Train(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.ProvenanceSynthetic, resp.DataProvenance)
	assert.Equal(t, 12, resp.Periods)
	require.Len(t, resp.Models, 2)
	for _, m := range resp.Models {
		assert.EqualValues(t, 1, m.Version)
		assert.Equal(t, learner.KindRidge, m.Kind)
		assert.Equal(t, 12, m.Samples)
	}

	set, err := e.store.LoadSet(ctx, 1, domain.TargetROI, domain.TargetCost)
	require.NoError(t, err)
	require.Len(t, set, 2)
	assert.Equal(t, resp.RunID, set[domain.TargetROI].RunID)
	assert.Equal(t, resp.RunID, set[domain.TargetCost].RunID)
	assert.Equal(t, t0, set[domain.TargetROI].TrainedAt)

	again, err := e.trainer.Train(ctx, 1)
	require.NoError(t, err)
	assert.NotEqual(t, resp.RunID, again.RunID)
	assert.EqualValues(t, 2, again.Models[0].Version)
}

func TestTrain_ScenarioB_NoEmployees(t *testing.T) {
	e := newEngine(t, defaultConfig())
	snap := scenarioA(2)
	snap.EmployeeCount = 0
	snap.TotalSalary = 0
	snap.EmployeeRevenue = 0
	e.reader.put(snap)

	_, err := e.trainer.Train(context.Background(), 2)
	require.ErrorIs(t, err, domain.ErrInsufficientData)

	set, err := e.store.LoadSet(context.Background(), 2, domain.TargetROI, domain.TargetCost)
	require.NoError(t, err)
	assert.Empty(t, set)
}

func TestTrain_UnknownDepartment(t *testing.T) {
	e := newEngine(t, defaultConfig())
	_, err := e.trainer.Train(context.Background(), 404)
	assert.ErrorIs(t, err, domain.ErrScopeNotFound)
}

func TestTrain_OLSAndRevenue(t *testing.T) {
	cfg := defaultConfig()
	cfg.Learner = learner.KindOLS
	cfg.TrainRevenue = true
	e := newEngine(t, cfg)
	e.reader.put(scenarioA(1))

	resp, err := e.trainer.Train(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, resp.Models, 3)

	pred, err := e.predictor.Predict(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, learner.KindOLS, pred.ModelKind)
	require.NotNil(t, pred.Revenue)
	assert.InDelta(t, 170000, pred.Revenue.Current, 1e-9)
}

func TestPredict_ScenarioC_NotTrained(t *testing.T) {
	e := newEngine(t, defaultConfig())
	e.reader.put(scenarioA(3))

	_, err := e.predictor.Predict(context.Background(), 3)
	require.ErrorIs(t, err, domain.ErrModelNotTrained)

	var notTrained *domain.ModelNotTrainedError
	require.ErrorAs(t, err, &notTrained)
	assert.EqualValues(t, 3, notTrained.DepartmentID)
	assert.Contains(t, err.Error(), "train the department model first")
}

func TestPredict_AfterTraining(t *testing.T) {
	e := newEngine(t, defaultConfig())
	e.reader.put(scenarioA(1))
	ctx := context.Background()

	trained, err := e.trainer.Train(ctx, 1)
	require.NoError(t, err)

	pred, err := e.predictor.Predict(ctx, 1)
	require.NoError(t, err)

	assert.Equal(t, domain.ProvenanceSynthetic, pred.DataProvenance)
	assert.Equal(t, trained.RunID, pred.RunID)
	assert.Equal(t, "2026-03-16", pred.PredictionDate)
	assert.Equal(t, 4, pred.NextMonth)
	assert.False(t, pred.Stale)
	assert.Nil(t, pred.Revenue)

	assert.InDelta(t, 0.3077, pred.ROI.Current, 1e-4)
	assert.InDelta(t, 130000, pred.Cost.Current, 1e-9)
	assert.InDelta(t, pred.ROI.Predicted-pred.ROI.Current, pred.ROI.Trend, 1e-12)
	for _, f := range []float64{pred.ROI.Confidence, pred.Cost.Confidence} {
		assert.GreaterOrEqual(t, f, 0.0)
		assert.LessOrEqual(t, f, 1.0)
	}
	assert.NotEmpty(t, pred.Recommendations)
}

func TestPredict_StaleModel(t *testing.T) {
	e := newEngine(t, defaultConfig())
	e.reader.put(scenarioA(1))
	ctx := context.Background()

	_, err := e.trainer.Train(ctx, 1)
	require.NoError(t, err)

	e.clock.Advance(8 * 24 * time.Hour)
	pred, err := e.predictor.Predict(ctx, 1)
	require.NoError(t, err)
	assert.True(t, pred.Stale)
	assert.Contains(t, pred.Recommendations, "The department model is outdated. Retrain it to reflect current operations.")
}

func TestPredict_IgnoresRevenueFromOtherRun(t *testing.T) {
	cfg := defaultConfig()
	cfg.TrainRevenue = true
	e := newEngine(t, cfg)
	e.reader.put(scenarioA(1))
	ctx := context.Background()

	_, err := e.trainer.Train(ctx, 1)
	require.NoError(t, err)

	plain := service.NewTrainingService(e.reader, e.store, defaultConfig(), e.clock, nil, discard)
	_, err = plain.Train(ctx, 1)
	require.NoError(t, err)

	pred, err := e.predictor.Predict(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, pred.Revenue)
}

func TestScenarioD_ConcurrentTrainsKeepOneCoherentSet(t *testing.T) {
	e := newEngine(t, defaultConfig())
	e.reader.put(scenarioA(1))
	ctx := context.Background()

	var wg sync.WaitGroup
	runs := make([]string, 2)
	errs := make([]error, 2)
	for i := range 2 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := e.trainer.Train(ctx, 1)
			errs[i] = err
			if err == nil {
				runs[i] = resp.RunID
			}
		}()
	}
	wg.Wait()
	require.NoError(t, errs[0])
	require.NoError(t, errs[1])

	pred, err := e.predictor.Predict(ctx, 1)
	require.NoError(t, err)
	assert.Contains(t, runs, pred.RunID)

	set, err := e.store.LoadSet(ctx, 1, domain.TargetROI, domain.TargetCost)
	require.NoError(t, err)
	assert.Equal(t, set[domain.TargetROI].RunID, set[domain.TargetCost].RunID)
	assert.EqualValues(t, 2, set[domain.TargetROI].Version)
}

func TestPredict_AtomicReplacementUnderConcurrentReads(t *testing.T) {
	e := newEngine(t, defaultConfig())
	e.reader.put(scenarioA(1))
	ctx := context.Background()

	_, err := e.trainer.Train(ctx, 1)
	require.NoError(t, err)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for range 20 {
			_, _ = e.trainer.Train(ctx, 1)
		}
	}()
	go func() {
		defer wg.Done()
		for range 50 {
			set, err := e.store.LoadSet(ctx, 1, domain.TargetROI, domain.TargetCost)
			if assert.NoError(t, err) {
				assert.Equal(t, set[domain.TargetROI].RunID, set[domain.TargetCost].RunID)
			}
			_, err = e.predictor.Predict(ctx, 1)
			assert.NoError(t, err)
		}
	}()
	wg.Wait()
}

func TestConfidence(t *testing.T) {
	assert.Equal(t, 0.0, service.Confidence(-3.2))
	assert.Equal(t, 0.0, service.Confidence(0))
	assert.Equal(t, 0.42, service.Confidence(0.42))
	assert.Equal(t, 1.0, service.Confidence(1.5))
}
