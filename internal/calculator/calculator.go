// Package calculator содержит чистые функции расчёта финансовых метрик.
// Все функции тотальные: не паникуют и не возвращают ошибок, а при нулевом
// или отрицательном знаменателе возвращают 0.
package calculator

import "math"

// MonthlyWorkingHours - норма часов в месяц для расчёта почасовой ставки
const MonthlyWorkingHours = 160.0

// ROI возвращает (revenue - cost) / cost, 0 при cost <= 0
func ROI(revenue, cost float64) float64 {
	return ratio(revenue-cost, cost)
}

// ProductivityIndex возвращает revenue / hours, 0 при hours <= 0
func ProductivityIndex(revenue, hours float64) float64 {
	return ratio(revenue, hours)
}

// BudgetUtilization возвращает spent / allocated, 0 при allocated <= 0.
// Результат не ограничивается сверху: перерасход виден как значение > 1.
func BudgetUtilization(spent, allocated float64) float64 {
	return ratio(spent, allocated)
}

// ProfitMargin - доля прибыли в выручке в процентах
func ProfitMargin(revenue, cost float64) float64 {
	return ratio(revenue-cost, revenue) * 100
}

// HourlyRate - почасовая ставка из месячной зарплаты
func HourlyRate(salary float64) float64 {
	return ratio(salary, MonthlyWorkingHours)
}

// UtilizationRate - отработанные часы относительно ожидаемых, в процентах
func UtilizationRate(hours, expected float64) float64 {
	return ratio(hours, expected) * 100
}

func ratio(num, den float64) float64 {
	if !finite(num) || !finite(den) || den <= 0 {
		return 0
	}
	return num / den
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
