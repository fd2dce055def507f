// Package learner содержит регрессоры, которыми обучаются прогнозные модели.
//
// Тренер и прогнозист работают только через интерфейс Regressor; конкретный
// вид модели хранится рядом с её состоянием и восстанавливается через Restore.
package learner

import (
	"errors"
	"fmt"
	"math"

	"github.com/workforce-analytics-api/internal/domain"
	"gonum.org/v1/gonum/stat"
)

// Виды регрессоров
const (
	KindRidge = "ridge"
	KindOLS   = "ols"
)

// DefaultLambda - коэффициент регуляризации ridge по умолчанию
const DefaultLambda = 1e-3

var (
	errEmptySample     = errors.New("empty training sample")
	errShapeMismatch   = errors.New("features and targets differ in length")
	errNotFitted       = errors.New("regressor is not fitted")
	errFeatureMismatch = errors.New("feature vector has wrong length")
)

// Regressor - обучаемая модель с единым интерфейсом
type Regressor interface {
	Kind() string
	Fit(x [][]float64, y []float64) error
	Predict(x []float64) (float64, error)
	MarshalState() ([]byte, error)
}

// Options - параметры создания регрессора
type Options struct {
	Lambda float64
}

// New создаёт необученный регрессор указанного вида
func New(kind string, opts Options) (Regressor, error) {
	switch kind {
	case KindRidge, "":
		lambda := opts.Lambda
		if lambda <= 0 {
			lambda = DefaultLambda
		}
		return &Ridge{Lambda: lambda}, nil
	case KindOLS:
		return &OLS{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedLearner, kind)
	}
}

// Restore восстанавливает обученный регрессор из сохранённого состояния
func Restore(kind string, state []byte) (Regressor, error) {
	var r Regressor
	switch kind {
	case KindRidge:
		r = &Ridge{}
	case KindOLS:
		r = &OLS{}
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedLearner, kind)
	}

	if err := unmarshalState(r, state); err != nil {
		return nil, fmt.Errorf("failed to restore %s model: %w", kind, err)
	}
	return r, nil
}

// Metrics - качество модели на обучающем ряду
type Metrics struct {
	R2  float64 `json:"r2"`
	MAE float64 `json:"mae"`
	MSE float64 `json:"mse"`
}

// Evaluate считает R², MAE и MSE предсказаний модели на выборке
func Evaluate(r Regressor, x [][]float64, y []float64) (Metrics, error) {
	if err := checkSample(x, y); err != nil {
		return Metrics{}, err
	}

	estimates := make([]float64, len(y))
	var absSum, sqSum float64
	for i := range x {
		p, err := r.Predict(x[i])
		if err != nil {
			return Metrics{}, err
		}
		estimates[i] = p
		diff := y[i] - p
		absSum += math.Abs(diff)
		sqSum += diff * diff
	}

	n := float64(len(y))
	return Metrics{
		R2:  rSquared(estimates, y, sqSum),
		MAE: absSum / n,
		MSE: sqSum / n,
	}, nil
}

func rSquared(estimates, values []float64, residual float64) float64 {
	if len(values) < 2 || stat.Variance(values, nil) == 0 {
		// константная цель: R² определён только при нулевой ошибке
		scale := 1.0
		if len(values) > 0 {
			scale = math.Max(1, values[0]*values[0])
		}
		if residual <= 1e-12*scale*float64(len(values)) {
			return 1
		}
		return 0
	}
	r2 := stat.RSquaredFrom(estimates, values, nil)
	if math.IsNaN(r2) {
		return 0
	}
	return r2
}

func checkSample(x [][]float64, y []float64) error {
	if len(x) == 0 {
		return errEmptySample
	}
	if len(x) != len(y) {
		return errShapeMismatch
	}
	width := len(x[0])
	for _, row := range x {
		if len(row) != width {
			return errFeatureMismatch
		}
	}
	return nil
}
