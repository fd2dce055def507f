package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/workforce-analytics-api/internal/clock"
	"github.com/workforce-analytics-api/internal/domain"
	"github.com/workforce-analytics-api/internal/dto"
	"github.com/workforce-analytics-api/internal/service"
)

func newAnalytics(reader *fakeReader, clk *clock.Manual) service.AnalyticsService {
	caches := service.NewAnalyticsCaches(5*time.Minute, clk, nil)
	return service.NewAnalyticsService(reader, caches, clk)
}

func TestDepartmentAnalytics_ScenarioA(t *testing.T) {
	reader := newFakeReader()
	reader.put(scenarioA(1))
	svc := newAnalytics(reader, clock.NewManual(t0))

	resp, err := svc.DepartmentAnalytics(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, "Engineering", resp.DepartmentName)
	assert.InDelta(t, 0.3077, resp.ROI, 1e-4)
	assert.InDelta(t, 170000, resp.TotalRevenue, 1e-9)
	assert.InDelta(t, 40000, resp.Profit, 1e-9)
	assert.InDelta(t, 0.65, resp.BudgetUtilization, 1e-12)
	assert.InDelta(t, 170000.0/160, resp.ProductivityIndex, 1e-9)
	assert.Empty(t, resp.Alerts)
}

func TestDepartmentAnalytics_Alerts(t *testing.T) {
	snap := scenarioA(2)
	snap.EmployeeRevenue = 0
	snap.ProjectRevenue = 1000
	snap.Budget = 100000
	snap.TotalHours = 100

	reader := newFakeReader()
	reader.put(snap)
	svc := newAnalytics(reader, clock.NewManual(t0))

	resp, err := svc.DepartmentAnalytics(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"Department is operating at a loss",
		"Department is approaching budget limit",
		"Low productivity detected",
	}, resp.Alerts)
}

func TestDepartmentAnalytics_CachedUntilTTL(t *testing.T) {
	reader := newFakeReader()
	reader.put(scenarioA(1))
	clk := clock.NewManual(t0)
	svc := newAnalytics(reader, clk)
	ctx := context.Background()

	_, err := svc.DepartmentAnalytics(ctx, 1)
	require.NoError(t, err)
	clk.Advance(5*time.Minute - time.Millisecond)
	_, err = svc.DepartmentAnalytics(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, reader.snapshotCalls())

	clk.Advance(2 * time.Millisecond)
	_, err = svc.DepartmentAnalytics(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, reader.snapshotCalls())
}

func TestDepartmentAnalytics_NotFoundIsNotCached(t *testing.T) {
	reader := newFakeReader()
	svc := newAnalytics(reader, clock.NewManual(t0))
	ctx := context.Background()

	_, err := svc.DepartmentAnalytics(ctx, 9)
	require.ErrorIs(t, err, domain.ErrScopeNotFound)

	reader.put(scenarioA(9))
	resp, err := svc.DepartmentAnalytics(ctx, 9)
	require.NoError(t, err)
	assert.EqualValues(t, 9, resp.DepartmentID)
}

func TestCompanyAnalytics(t *testing.T) {
	snap := scenarioA(0)
	snap.Scope = domain.CompanyScope()
	snap.DepartmentCount = 3
	snap.Budget = 140000

	reader := newFakeReader()
	reader.put(snap)
	svc := newAnalytics(reader, clock.NewManual(t0))

	resp, err := svc.CompanyAnalytics(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 3, resp.DepartmentCount)
	assert.InDelta(t, 130000, resp.TotalCost, 1e-9)
	assert.InDelta(t, 40000.0/170000*100, resp.ProfitMargin, 1e-9)
	assert.InDelta(t, resp.ProductivityIndex, resp.RevenuePerHour, 1e-12)
	assert.Equal(t, []string{"Company is approaching budget limit"}, resp.Alerts)
}

func TestEmployeeAnalytics_Utilization(t *testing.T) {
	reader := newFakeReader()
	reader.put(domain.Snapshot{
		Scope:           domain.EmployeeScope(5),
		Name:            "Ada",
		DepartmentID:    1,
		DepartmentName:  "Engineering",
		EmployeeCount:   1,
		ProjectCount:    2,
		TotalSalary:     16000,
		EmployeeRevenue: 32000,
		TotalHours:      200,
	})
	// в марте 2026 года 22 будних дня: норма 176 часов
	reader.hours = 88
	svc := newAnalytics(reader, clock.NewManual(t0))

	resp, err := svc.EmployeeAnalytics(context.Background(), 5)
	require.NoError(t, err)
	assert.InDelta(t, 50, resp.UtilizationRate, 1e-9)
	assert.InDelta(t, 100, resp.CostPerHour, 1e-9)
	assert.InDelta(t, 160, resp.RevenuePerHour, 1e-9)
	assert.InDelta(t, 60, resp.ProfitPerHour, 1e-9)
	assert.InDelta(t, 1, resp.ROI, 1e-12)
	assert.Equal(t, []string{"Low utilization rate"}, resp.Alerts)
}

func TestProjectAnalytics(t *testing.T) {
	reader := newFakeReader()
	reader.put(domain.Snapshot{
		Scope:          domain.ProjectScope(3),
		Name:           "Atlas",
		DepartmentID:   1,
		ProjectCount:   1,
		EmployeeCount:  2,
		ProjectCost:    50000,
		ProjectRevenue: 70000,
		TotalHours:     80,
		LaborCost:      10000,
	})
	svc := newAnalytics(reader, clock.NewManual(t0))

	resp, err := svc.ProjectAnalytics(context.Background(), 3)
	require.NoError(t, err)
	assert.InDelta(t, 60000, resp.TotalCost, 1e-9)
	assert.InDelta(t, 10000, resp.Profit, 1e-9)
	assert.EqualValues(t, 2, resp.EmployeeCount)

	_, err = svc.ProjectAnalytics(context.Background(), 4)
	assert.ErrorIs(t, err, domain.ErrScopeNotFound)
}

func TestTopPerformersAndProjects(t *testing.T) {
	reader := newFakeReader()
	dept := &domain.Department{ID: 1, Name: "Engineering"}
	reader.employees = []domain.Employee{
		{ID: 1, DepartmentID: 1, Name: "Ada", Salary: 100, RevenueGenerated: 400, Department: dept},
		{ID: 2, DepartmentID: 1, Name: "Bob", Salary: 100, RevenueGenerated: 0},
	}
	reader.projects = []domain.Project{{ID: 7, DepartmentID: 1, Name: "Atlas", Cost: 10, Revenue: 40, Department: dept}}
	svc := newAnalytics(reader, clock.NewManual(t0))
	ctx := context.Background()

	top, err := svc.TopPerformers(ctx, &dto.TopQuery{Limit: 5})
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "Engineering", top[0].DepartmentName)
	assert.InDelta(t, 75, top[0].ProfitMargin, 1e-9)
	assert.Zero(t, top[1].ProfitMargin)
	assert.Empty(t, top[1].DepartmentName)

	projects, err := svc.TopProjects(ctx, &dto.TopQuery{Limit: 1})
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.InDelta(t, 30, projects[0].Profit, 1e-9)
}
