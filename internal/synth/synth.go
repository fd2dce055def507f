// Package synth строит псевдоисторию подразделения из одного текущего среза.
//
// История не наблюдалась в реальности: каждый период - это текущий срез с
// наложенным равномерным шумом. Результат всегда помечен как synthetic.
package synth

import (
	"encoding/binary"
	"hash/fnv"
	"math"
	"math/rand/v2"

	"github.com/workforce-analytics-api/internal/calculator"
	"github.com/workforce-analytics-api/internal/domain"
)

const (
	// MinPeriods - минимальная длина ряда для обучения
	MinPeriods = 3
	// DefaultPeriods - длина ряда по умолчанию, месяцы
	DefaultPeriods = 12
	// DefaultNoise - амплитуда равномерного шума
	DefaultNoise = 0.15
	// DefaultSeed - зерно генератора по умолчанию
	DefaultSeed = 42
)

// Period - один синтетический месяц
type Period struct {
	// Offset - смещение в месяцах относительно текущего: -N для самого старого, -1 для последнего
	Offset int

	EmployeeCount     float64
	TotalHours        float64
	ProjectCount      float64
	Budget            float64
	BudgetUtilization float64

	Cost    float64
	Revenue float64
	ROI     float64
}

// Features возвращает признаки в порядке domain.FeatureNames
func (p Period) Features() []float64 {
	return []float64{p.EmployeeCount, p.TotalHours, p.ProjectCount, p.BudgetUtilization}
}

// Target возвращает значение целевой метрики периода
func (p Period) Target(name string) (float64, bool) {
	switch name {
	case domain.TargetROI:
		return p.ROI, true
	case domain.TargetCost:
		return p.Cost, true
	case domain.TargetRevenue:
		return p.Revenue, true
	default:
		return 0, false
	}
}

// History - упорядоченный от старого к новому синтетический ряд
type History struct {
	DepartmentID int64
	Seed         int64
	Noise        float64
	Provenance   string
	Periods      []Period
}

// Matrix возвращает матрицу признаков, строка на период
func (h History) Matrix() [][]float64 {
	x := make([][]float64, len(h.Periods))
	for i, p := range h.Periods {
		x[i] = p.Features()
	}
	return x
}

// Targets возвращает ряд целевой метрики
func (h History) Targets(name string) []float64 {
	y := make([]float64, len(h.Periods))
	for i, p := range h.Periods {
		y[i], _ = p.Target(name)
	}
	return y
}

// Synthesizer генерирует историю с заданной амплитудой шума
type Synthesizer struct {
	noise float64
}

// New создаёт генератор. Амплитуда вне (0, 1) заменяется значением по умолчанию.
func New(noise float64) *Synthesizer {
	if !(noise > 0 && noise < 1) {
		noise = DefaultNoise
	}
	return &Synthesizer{noise: noise}
}

// Noise возвращает амплитуду шума
func (s *Synthesizer) Noise() float64 {
	return s.noise
}

// Synthesize строит ряд из periods месяцев. Одинаковые срез, длина и зерно дают одинаковый ряд.
func (s *Synthesizer) Synthesize(snap domain.Snapshot, periods int, seed int64) (History, error) {
	if periods < MinPeriods {
		return History{}, &domain.InsufficientDataError{
			DepartmentID: snap.DepartmentID,
			Reason:       "at least 3 periods are required",
		}
	}
	if err := validate(snap); err != nil {
		return History{}, err
	}
	if snap.EmployeeCount == 0 {
		return History{}, &domain.InsufficientDataError{
			DepartmentID: snap.DepartmentID,
			Reason:       "department has no employees",
		}
	}

	employees := float64(snap.EmployeeCount)
	projects := float64(snap.ProjectCount)

	avgSalary := snap.TotalSalary / employees
	avgEmployeeRevenue := snap.EmployeeRevenue / employees
	var avgProjectCost, avgProjectRevenue float64
	if projects > 0 {
		avgProjectCost = snap.ProjectCost / projects
		avgProjectRevenue = snap.ProjectRevenue / projects
	}

	history := History{
		DepartmentID: snap.DepartmentID,
		Seed:         seed,
		Noise:        s.noise,
		Provenance:   domain.ProvenanceSynthetic,
		Periods:      make([]Period, periods),
	}

	for i := range periods {
		rng := periodRand(seed, snap.DepartmentID, i)

		// порядок выборок фиксирован
		p := Period{
			Offset:        i - periods,
			EmployeeCount: employees * (1 + s.draw(rng)),
			TotalHours:    snap.TotalHours * (1 + s.draw(rng)),
			ProjectCount:  projects * (1 + s.draw(rng)),
			Budget:        snap.Budget * (1 + s.draw(rng)),
		}

		p.Cost = p.EmployeeCount*avgSalary + p.ProjectCount*avgProjectCost
		p.Revenue = p.EmployeeCount*avgEmployeeRevenue + p.ProjectCount*avgProjectRevenue
		p.ROI = calculator.ROI(p.Revenue, p.Cost)
		p.BudgetUtilization = calculator.BudgetUtilization(p.Cost, p.Budget)

		history.Periods[i] = p
	}

	return history, nil
}

// CurrentFeatures - вектор признаков текущего среза
func CurrentFeatures(snap domain.Snapshot) []float64 {
	return []float64{
		float64(snap.EmployeeCount),
		snap.TotalHours,
		float64(snap.ProjectCount),
		calculator.BudgetUtilization(snap.TotalCost(), snap.Budget),
	}
}

// CurrentTarget - текущее значение целевой метрики по срезу
func CurrentTarget(snap domain.Snapshot, target string) float64 {
	switch target {
	case domain.TargetROI:
		return calculator.ROI(snap.TotalRevenue(), snap.TotalCost())
	case domain.TargetCost:
		return snap.TotalCost()
	case domain.TargetRevenue:
		return snap.TotalRevenue()
	default:
		return 0
	}
}

func (s *Synthesizer) draw(rng *rand.Rand) float64 {
	return (2*rng.Float64() - 1) * s.noise
}

func periodRand(seed, departmentID int64, period int) *rand.Rand {
	h := fnv.New64a()
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(departmentID))
	_, _ = h.Write(buf[:])
	binary.LittleEndian.PutUint64(buf[:], uint64(period))
	_, _ = h.Write(buf[:])
	return rand.New(rand.NewPCG(uint64(seed), h.Sum64()))
}

func validate(snap domain.Snapshot) error {
	fields := []struct {
		name  string
		value float64
	}{
		{"employee_count", float64(snap.EmployeeCount)},
		{"project_count", float64(snap.ProjectCount)},
		{"total_salary", snap.TotalSalary},
		{"project_cost", snap.ProjectCost},
		{"employee_revenue", snap.EmployeeRevenue},
		{"project_revenue", snap.ProjectRevenue},
		{"total_hours", snap.TotalHours},
		{"budget", snap.Budget},
	}
	for _, f := range fields {
		if f.value < 0 || math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return &domain.InvalidMetricInputError{Field: f.name, Value: f.value}
		}
	}
	return nil
}
