package learner

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/sajari/regression"
	"gonum.org/v1/gonum/stat"
)

// OLS - обычный метод наименьших квадратов.
// Константные признаки исключаются до обучения, иначе система вырождена.
type OLS struct {
	Width  int       `json:"width"`
	Active []int     `json:"active"`
	Coef   []float64 `json:"coef"` // Coef[0] - свободный член
}

func (o *OLS) Kind() string {
	return KindOLS
}

func (o *OLS) Fit(x [][]float64, y []float64) error {
	if err := checkSample(x, y); err != nil {
		return err
	}

	width := len(x[0])
	active := make([]int, 0, width)
	col := make([]float64, len(x))
	for j := range width {
		for i := range x {
			col[i] = x[i][j]
		}
		if v := stat.Variance(col, nil); v > 0 && !math.IsNaN(v) {
			active = append(active, j)
		}
	}

	if len(active) == 0 {
		o.Width = width
		o.Active = active
		o.Coef = []float64{stat.Mean(y, nil)}
		return nil
	}

	var r regression.Regression
	r.SetObserved("target")
	for k, j := range active {
		r.SetVar(k, fmt.Sprintf("x%d", j))
	}
	for i := range x {
		vars := make([]float64, len(active))
		for k, j := range active {
			vars[k] = x[i][j]
		}
		r.Train(regression.DataPoint(y[i], vars))
	}

	if err := r.Run(); err != nil {
		return fmt.Errorf("ols: %w", err)
	}

	coef := r.GetCoeffs()
	if len(coef) != len(active)+1 {
		return fmt.Errorf("ols: expected %d coefficients, got %d", len(active)+1, len(coef))
	}
	for _, c := range coef {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return errors.New("ols: non-finite coefficient")
		}
	}

	o.Width = width
	o.Active = active
	o.Coef = coef
	return nil
}

func (o *OLS) Predict(x []float64) (float64, error) {
	if o.Coef == nil {
		return 0, errNotFitted
	}
	if len(x) != o.Width {
		return 0, errFeatureMismatch
	}

	y := o.Coef[0]
	for k, j := range o.Active {
		y += o.Coef[k+1] * x[j]
	}
	return y, nil
}

func (o *OLS) MarshalState() ([]byte, error) {
	return json.Marshal(o)
}
