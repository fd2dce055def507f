package learner

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Ridge - линейная регрессия с L2-регуляризацией на стандартизованных признаках.
// Свободный член не штрафуется. Константные признаки получают нулевой вес.
type Ridge struct {
	Lambda    float64   `json:"lambda"`
	Intercept float64   `json:"intercept"`
	Coef      []float64 `json:"coef"`
	Means     []float64 `json:"means"`
	Scales    []float64 `json:"scales"`
}

func (r *Ridge) Kind() string {
	return KindRidge
}

func (r *Ridge) Fit(x [][]float64, y []float64) error {
	if err := checkSample(x, y); err != nil {
		return err
	}

	n, p := len(x), len(x[0])
	means := make([]float64, p)
	scales := make([]float64, p)
	col := make([]float64, n)
	for j := range p {
		for i := range n {
			col[i] = x[i][j]
		}
		mean, std := stat.MeanStdDev(col, nil)
		means[j] = mean
		if std > 0 && !math.IsNaN(std) {
			scales[j] = std
		}
	}

	z := mat.NewDense(n, p, nil)
	for i := range n {
		for j := range p {
			if scales[j] > 0 {
				z.Set(i, j, (x[i][j]-means[j])/scales[j])
			}
		}
	}

	yMean := stat.Mean(y, nil)
	yc := mat.NewVecDense(n, nil)
	for i := range n {
		yc.SetVec(i, y[i]-yMean)
	}

	var a mat.Dense
	a.Mul(z.T(), z)
	for j := range p {
		a.Set(j, j, a.At(j, j)+r.Lambda)
	}

	var b mat.VecDense
	b.MulVec(z.T(), yc)

	var beta mat.VecDense
	if err := beta.SolveVec(&a, &b); err != nil {
		var cond mat.Condition
		if !errors.As(err, &cond) {
			return fmt.Errorf("ridge solve: %w", err)
		}
	}

	coef := make([]float64, p)
	for j := range p {
		coef[j] = beta.AtVec(j)
		if math.IsNaN(coef[j]) || math.IsInf(coef[j], 0) {
			return fmt.Errorf("ridge solve: non-finite coefficient for feature %d", j)
		}
	}

	r.Intercept = yMean
	r.Coef = coef
	r.Means = means
	r.Scales = scales
	return nil
}

func (r *Ridge) Predict(x []float64) (float64, error) {
	if r.Coef == nil {
		return 0, errNotFitted
	}
	if len(x) != len(r.Coef) {
		return 0, errFeatureMismatch
	}

	y := r.Intercept
	for j, v := range x {
		if r.Scales[j] > 0 {
			y += r.Coef[j] * (v - r.Means[j]) / r.Scales[j]
		}
	}
	return y, nil
}

func (r *Ridge) MarshalState() ([]byte, error) {
	return json.Marshal(r)
}

func unmarshalState(r Regressor, state []byte) error {
	if err := json.Unmarshal(state, r); err != nil {
		return err
	}

	switch m := r.(type) {
	case *Ridge:
		if len(m.Coef) != len(m.Means) || len(m.Coef) != len(m.Scales) {
			return errors.New("inconsistent ridge state")
		}
	case *OLS:
		if len(m.Coef) != len(m.Active)+1 {
			return errors.New("inconsistent ols state")
		}
	}
	return nil
}
