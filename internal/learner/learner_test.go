package learner_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/workforce-analytics-api/internal/domain"
	"github.com/workforce-analytics-api/internal/learner"
)

// y = 3 + 2*x0 - x1, третий признак константный
func linearSample() ([][]float64, []float64) {
	x := [][]float64{
		{1, 5, 7}, {2, 3, 7}, {3, 8, 7}, {4, 1, 7}, {5, 6, 7},
		{6, 2, 7}, {7, 9, 7}, {8, 4, 7}, {9, 7, 7}, {10, 3, 7},
	}
	y := make([]float64, len(x))
	for i, row := range x {
		y[i] = 3 + 2*row[0] - row[1]
	}
	return x, y
}

func TestRegressors_FitLinearData(t *testing.T) {
	x, y := linearSample()

	for _, kind := range []string{learner.KindRidge, learner.KindOLS} {
		t.Run(kind, func(t *testing.T) {
			r, err := learner.New(kind, learner.Options{Lambda: 1e-6})
			require.NoError(t, err)
			assert.Equal(t, kind, r.Kind())
			require.NoError(t, r.Fit(x, y))

			got, err := r.Predict([]float64{11, 2, 7})
			require.NoError(t, err)
			assert.InDelta(t, 23, got, 1e-3)

			m, err := learner.Evaluate(r, x, y)
			require.NoError(t, err)
			assert.InDelta(t, 1, m.R2, 1e-6)
			assert.InDelta(t, 0, m.MAE, 1e-3)
		})
	}
}

func TestRegressors_StateRoundTripPredictsTheSame(t *testing.T) {
	x, y := linearSample()

	for _, kind := range []string{learner.KindRidge, learner.KindOLS} {
		t.Run(kind, func(t *testing.T) {
			r, err := learner.New(kind, learner.Options{})
			require.NoError(t, err)
			require.NoError(t, r.Fit(x, y))

			state, err := r.MarshalState()
			require.NoError(t, err)
			restored, err := learner.Restore(kind, state)
			require.NoError(t, err)

			for _, row := range x {
				want, _ := r.Predict(row)
				got, err := restored.Predict(row)
				require.NoError(t, err)
				assert.Equal(t, want, got)
			}
		})
	}
}

func TestNew_UnsupportedKind(t *testing.T) {
	_, err := learner.New("forest", learner.Options{})
	assert.ErrorIs(t, err, domain.ErrUnsupportedLearner)

	_, err = learner.Restore("forest", []byte(`{}`))
	assert.ErrorIs(t, err, domain.ErrUnsupportedLearner)

	_, err = learner.Restore(learner.KindRidge, []byte(`{"coef":[1],"means":[]}`))
	assert.Error(t, err)
}

func TestPredict_Errors(t *testing.T) {
	r, err := learner.New(learner.KindRidge, learner.Options{})
	require.NoError(t, err)
	_, err = r.Predict([]float64{1})
	assert.Error(t, err, "unfitted model must not predict")

	x, y := linearSample()
	require.NoError(t, r.Fit(x, y))
	_, err = r.Predict([]float64{1, 2})
	assert.Error(t, err)

	assert.Error(t, r.Fit(nil, nil))
	assert.Error(t, r.Fit(x, y[:3]))
}

func TestEvaluate_ConstantTarget(t *testing.T) {
	x, _ := linearSample()
	y := make([]float64, len(x))
	for i := range y {
		y[i] = 0.25
	}

	r, err := learner.New(learner.KindRidge, learner.Options{})
	require.NoError(t, err)
	require.NoError(t, r.Fit(x, y))

	m, err := learner.Evaluate(r, x, y)
	require.NoError(t, err)
	assert.Equal(t, 1.0, m.R2)
}

func TestEvaluate_NegativeR2(t *testing.T) {
	x, y := linearSample()
	r, err := learner.New(learner.KindOLS, learner.Options{})
	require.NoError(t, err)
	require.NoError(t, r.Fit(x, y))

	reversed := make([]float64, len(y))
	for i := range y {
		reversed[i] = y[len(y)-1-i]
	}
	m, err := learner.Evaluate(r, x, reversed)
	require.NoError(t, err)
	assert.Less(t, m.R2, 0.0)
}
