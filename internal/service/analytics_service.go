package service

import (
	"context"
	"time"

	"github.com/workforce-analytics-api/internal/cache"
	"github.com/workforce-analytics-api/internal/calculator"
	"github.com/workforce-analytics-api/internal/clock"
	"github.com/workforce-analytics-api/internal/domain"
	"github.com/workforce-analytics-api/internal/dto"
	"github.com/workforce-analytics-api/internal/monitoring"
)

const (
	// пороги предупреждений
	budgetAlertThreshold       = 0.9
	productivityAlertThreshold = 50.0
	utilizationAlertThreshold  = 70.0

	hoursPerWorkday = 8.0
)

// SnapshotReader читает агрегаты из хранилища
type SnapshotReader interface {
	Snapshot(ctx context.Context, scope domain.Scope) (domain.Snapshot, error)
	TopEmployees(ctx context.Context, limit int) ([]domain.Employee, error)
	TopProjects(ctx context.Context, limit int) ([]domain.Project, error)
	HoursSince(ctx context.Context, employeeID int64, from time.Time) (float64, error)
}

// AnalyticsService определяет интерфейс аналитики компании
type AnalyticsService interface {
	CompanyAnalytics(ctx context.Context) (*dto.CompanyAnalyticsResponse, error)
	DepartmentAnalytics(ctx context.Context, id int64) (*dto.DepartmentAnalyticsResponse, error)
	EmployeeAnalytics(ctx context.Context, id int64) (*dto.EmployeeAnalyticsResponse, error)
	ProjectAnalytics(ctx context.Context, id int64) (*dto.ProjectAnalyticsResponse, error)
	TopPerformers(ctx context.Context, query *dto.TopQuery) ([]dto.TopPerformerResponse, error)
	TopProjects(ctx context.Context, query *dto.TopQuery) ([]dto.TopProjectResponse, error)
}

// AnalyticsCaches - отдельные кэши для каждого уровня аналитики
type AnalyticsCaches struct {
	Company    *cache.Cache[*dto.CompanyAnalyticsResponse]
	Department *cache.Cache[*dto.DepartmentAnalyticsResponse]
	Employee   *cache.Cache[*dto.EmployeeAnalyticsResponse]
}

// NewAnalyticsCaches создаёт кэши с общим временем жизни
func NewAnalyticsCaches(ttl time.Duration, clk clock.Clock, m *monitoring.Metrics) AnalyticsCaches {
	return AnalyticsCaches{
		Company:    cache.New("company", ttl, clk, cache.WithMetrics[*dto.CompanyAnalyticsResponse](m)),
		Department: cache.New("department", ttl, clk, cache.WithMetrics[*dto.DepartmentAnalyticsResponse](m)),
		Employee:   cache.New("employee", ttl, clk, cache.WithMetrics[*dto.EmployeeAnalyticsResponse](m)),
	}
}

type analyticsService struct {
	reader SnapshotReader
	caches AnalyticsCaches
	clock  clock.Clock
}

// NewAnalyticsService создаёт новый экземпляр сервиса
func NewAnalyticsService(reader SnapshotReader, caches AnalyticsCaches, clk clock.Clock) AnalyticsService {
	if clk == nil {
		clk = clock.Real{}
	}
	return &analyticsService{
		reader: reader,
		caches: caches,
		clock:  clk,
	}
}

func (s *analyticsService) CompanyAnalytics(ctx context.Context) (*dto.CompanyAnalyticsResponse, error) {
	scope := domain.CompanyScope()
	return s.caches.Company.GetOrCompute(ctx, scope.Key(), func(ctx context.Context) (*dto.CompanyAnalyticsResponse, error) {
		snap, err := s.reader.Snapshot(ctx, scope)
		if err != nil {
			return nil, err
		}

		revenue := snap.TotalRevenue()
		cost := snap.TotalCost()
		resp := &dto.CompanyAnalyticsResponse{
			DepartmentCount:      snap.DepartmentCount,
			EmployeeCount:        snap.EmployeeCount,
			ProjectCount:         snap.ProjectCount,
			TotalSalary:          snap.TotalSalary,
			TotalProjectCost:     snap.ProjectCost,
			TotalCost:            cost,
			TotalEmployeeRevenue: snap.EmployeeRevenue,
			TotalProjectRevenue:  snap.ProjectRevenue,
			TotalRevenue:         revenue,
			Profit:               snap.Profit(),
			ProfitMargin:         calculator.ProfitMargin(revenue, cost),
			TotalBudget:          snap.Budget,
			BudgetUtilization:    calculator.BudgetUtilization(cost, snap.Budget),
			TotalHours:           snap.TotalHours,
			RevenuePerHour:       calculator.ProductivityIndex(revenue, snap.TotalHours),
			ROI:                  calculator.ROI(revenue, cost),
			ProductivityIndex:    calculator.ProductivityIndex(revenue, snap.TotalHours),
			ComputedAt:           snap.ComputedAt,
		}

		resp.Alerts = []string{}
		if resp.ROI < 0 {
			resp.Alerts = append(resp.Alerts, "Company is operating at a loss")
		}
		if resp.BudgetUtilization > budgetAlertThreshold {
			resp.Alerts = append(resp.Alerts, "Company is approaching budget limit")
		}
		if lowProductivity(resp.ProductivityIndex, resp.TotalHours) {
			resp.Alerts = append(resp.Alerts, "Low overall productivity detected")
		}
		return resp, nil
	})
}

func (s *analyticsService) DepartmentAnalytics(ctx context.Context, id int64) (*dto.DepartmentAnalyticsResponse, error) {
	scope := domain.DepartmentScope(id)
	return s.caches.Department.GetOrCompute(ctx, scope.Key(), func(ctx context.Context) (*dto.DepartmentAnalyticsResponse, error) {
		snap, err := s.reader.Snapshot(ctx, scope)
		if err != nil {
			return nil, err
		}

		revenue := snap.TotalRevenue()
		cost := snap.TotalCost()
		resp := &dto.DepartmentAnalyticsResponse{
			DepartmentID:      snap.DepartmentID,
			DepartmentName:    snap.Name,
			Budget:            snap.Budget,
			EmployeeCount:     snap.EmployeeCount,
			ProjectCount:      snap.ProjectCount,
			TotalSalaryCost:   snap.TotalSalary,
			TotalProjectCost:  snap.ProjectCost,
			TotalRevenue:      revenue,
			Profit:            snap.Profit(),
			ProfitMargin:      calculator.ProfitMargin(revenue, cost),
			BudgetUtilization: calculator.BudgetUtilization(cost, snap.Budget),
			ROI:               calculator.ROI(revenue, cost),
			ProductivityIndex: calculator.ProductivityIndex(revenue, snap.TotalHours),
			TotalHours:        snap.TotalHours,
			ComputedAt:        snap.ComputedAt,
		}

		resp.Alerts = []string{}
		if resp.ROI < 0 {
			resp.Alerts = append(resp.Alerts, "Department is operating at a loss")
		}
		if resp.BudgetUtilization > budgetAlertThreshold {
			resp.Alerts = append(resp.Alerts, "Department is approaching budget limit")
		}
		if lowProductivity(resp.ProductivityIndex, resp.TotalHours) {
			resp.Alerts = append(resp.Alerts, "Low productivity detected")
		}
		return resp, nil
	})
}

func (s *analyticsService) EmployeeAnalytics(ctx context.Context, id int64) (*dto.EmployeeAnalyticsResponse, error) {
	scope := domain.EmployeeScope(id)
	return s.caches.Employee.GetOrCompute(ctx, scope.Key(), func(ctx context.Context) (*dto.EmployeeAnalyticsResponse, error) {
		snap, err := s.reader.Snapshot(ctx, scope)
		if err != nil {
			return nil, err
		}

		monthStart, expected := expectedMonthlyHours(s.clock.Now())
		monthHours, err := s.reader.HoursSince(ctx, id, monthStart)
		if err != nil {
			return nil, err
		}

		salary := snap.TotalSalary
		revenue := snap.EmployeeRevenue
		costPerHour := calculator.HourlyRate(salary)
		revenuePerHour := calculator.ProductivityIndex(revenue, snap.TotalHours)

		resp := &dto.EmployeeAnalyticsResponse{
			EmployeeID:        id,
			EmployeeName:      snap.Name,
			DepartmentID:      snap.DepartmentID,
			DepartmentName:    snap.DepartmentName,
			Salary:            salary,
			RevenueGenerated:  revenue,
			Profit:            revenue - salary,
			TotalHours:        snap.TotalHours,
			ProjectCount:      snap.ProjectCount,
			CostPerHour:       costPerHour,
			RevenuePerHour:    revenuePerHour,
			ProfitPerHour:     revenuePerHour - costPerHour,
			UtilizationRate:   calculator.UtilizationRate(monthHours, expected),
			ROI:               calculator.ROI(revenue, salary),
			ProductivityIndex: revenuePerHour,
			ComputedAt:        snap.ComputedAt,
		}

		resp.Alerts = []string{}
		if resp.ROI < 0 {
			resp.Alerts = append(resp.Alerts, "Employee is operating at a loss")
		}
		if resp.UtilizationRate < utilizationAlertThreshold {
			resp.Alerts = append(resp.Alerts, "Low utilization rate")
		}
		if lowProductivity(resp.ProductivityIndex, resp.TotalHours) {
			resp.Alerts = append(resp.Alerts, "Low productivity detected")
		}
		return resp, nil
	})
}

func (s *analyticsService) ProjectAnalytics(ctx context.Context, id int64) (*dto.ProjectAnalyticsResponse, error) {
	snap, err := s.reader.Snapshot(ctx, domain.ProjectScope(id))
	if err != nil {
		return nil, err
	}

	totalCost := snap.ProjectCost + snap.LaborCost
	return &dto.ProjectAnalyticsResponse{
		ProjectID:      id,
		ProjectName:    snap.Name,
		DepartmentID:   snap.DepartmentID,
		DepartmentName: snap.DepartmentName,
		Cost:           snap.ProjectCost,
		LaborCost:      snap.LaborCost,
		TotalCost:      totalCost,
		Revenue:        snap.ProjectRevenue,
		Profit:         snap.ProjectRevenue - totalCost,
		ProfitMargin:   calculator.ProfitMargin(snap.ProjectRevenue, totalCost),
		TotalHours:     snap.TotalHours,
		EmployeeCount:  snap.EmployeeCount,
	}, nil
}

func (s *analyticsService) TopPerformers(ctx context.Context, query *dto.TopQuery) ([]dto.TopPerformerResponse, error) {
	employees, err := s.reader.TopEmployees(ctx, query.Limit)
	if err != nil {
		return nil, err
	}

	result := make([]dto.TopPerformerResponse, 0, len(employees))
	for _, emp := range employees {
		row := dto.TopPerformerResponse{
			EmployeeID:       emp.ID,
			EmployeeName:     emp.Name,
			DepartmentID:     emp.DepartmentID,
			RevenueGenerated: emp.RevenueGenerated,
			Salary:           emp.Salary,
			Profit:           emp.RevenueGenerated - emp.Salary,
			ProfitMargin:     calculator.ProfitMargin(emp.RevenueGenerated, emp.Salary),
		}
		if emp.Department != nil {
			row.DepartmentName = emp.Department.Name
		}
		result = append(result, row)
	}
	return result, nil
}

func (s *analyticsService) TopProjects(ctx context.Context, query *dto.TopQuery) ([]dto.TopProjectResponse, error) {
	projects, err := s.reader.TopProjects(ctx, query.Limit)
	if err != nil {
		return nil, err
	}

	result := make([]dto.TopProjectResponse, 0, len(projects))
	for _, p := range projects {
		row := dto.TopProjectResponse{
			ProjectID:    p.ID,
			ProjectName:  p.Name,
			DepartmentID: p.DepartmentID,
			Revenue:      p.Revenue,
			Cost:         p.Cost,
			Profit:       p.Revenue - p.Cost,
			ProfitMargin: calculator.ProfitMargin(p.Revenue, p.Cost),
		}
		if p.Department != nil {
			row.DepartmentName = p.Department.Name
		}
		result = append(result, row)
	}
	return result, nil
}

func lowProductivity(index, hours float64) bool {
	return index < productivityAlertThreshold && hours > 0
}

// expectedMonthlyHours возвращает начало месяца и норму часов: 8 часов на каждый будний день
func expectedMonthlyHours(now time.Time) (time.Time, float64) {
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	workdays := 0
	for d := start; d.Month() == start.Month(); d = d.AddDate(0, 0, 1) {
		if wd := d.Weekday(); wd != time.Saturday && wd != time.Sunday {
			workdays++
		}
	}
	return start, float64(workdays) * hoursPerWorkday
}
