package calculator_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/workforce-analytics-api/internal/calculator"
)

func TestROI(t *testing.T) {
	tests := []struct {
		name    string
		revenue float64
		cost    float64
		want    float64
	}{
		{"profit", 150, 100, 0.5},
		{"loss", 50, 100, -0.5},
		{"break even", 100, 100, 0},
		{"zero cost", 100, 0, 0},
		{"negative cost", 100, -10, 0},
		{"nan cost", 100, math.NaN(), 0},
		{"infinite revenue", math.Inf(1), 10, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, calculator.ROI(tt.revenue, tt.cost), 1e-12)
		})
	}
}

func TestROI_NonPositiveCostAlwaysZero(t *testing.T) {
	for _, cost := range []float64{0, -0.0001, -1, -1e9, math.Inf(-1)} {
		for _, revenue := range []float64{-100, 0, 1, 1e9} {
			assert.Equal(t, 0.0, calculator.ROI(revenue, cost), "revenue=%v cost=%v", revenue, cost)
		}
	}
}

func TestProductivityIndex(t *testing.T) {
	assert.Equal(t, 50.0, calculator.ProductivityIndex(1000, 20))
	for _, hours := range []float64{0, -1, -40} {
		assert.Equal(t, 0.0, calculator.ProductivityIndex(1000, hours))
	}
}

func TestBudgetUtilization_NotClamped(t *testing.T) {
	assert.Equal(t, 1.5, calculator.BudgetUtilization(150, 100))
	assert.Equal(t, 0.25, calculator.BudgetUtilization(25, 100))
	assert.Equal(t, 0.0, calculator.BudgetUtilization(25, 0))
}

func TestProfitMarginAndRates(t *testing.T) {
	assert.InDelta(t, 25.0, calculator.ProfitMargin(200, 150), 1e-9)
	assert.Equal(t, 0.0, calculator.ProfitMargin(0, 150))
	assert.Equal(t, 500.0, calculator.HourlyRate(80000))
	assert.InDelta(t, 50.0, calculator.UtilizationRate(84, 168), 1e-9)
	assert.Equal(t, 0.0, calculator.UtilizationRate(10, 0))
}
