// Package aggregator сводит операционные записи в срезы показателей.
//
// Все суммы одного среза читаются в одной транзакции хранилища. Пакет
// ничего не изменяет в данных.
package aggregator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/workforce-analytics-api/internal/calculator"
	"github.com/workforce-analytics-api/internal/clock"
	"github.com/workforce-analytics-api/internal/domain"
	"github.com/workforce-analytics-api/internal/repository"
)

// Store открывает единицу чтения над репозиториями
type Store interface {
	View(ctx context.Context, fn func(src repository.Source) error) error
}

// Reader строит срезы показателей по областям
type Reader struct {
	store Store
	clock clock.Clock
}

// NewReader создаёт читателя агрегатов
func NewReader(store Store, clk clock.Clock) *Reader {
	if clk == nil {
		clk = clock.Real{}
	}
	return &Reader{store: store, clock: clk}
}

// Snapshot возвращает срез показателей для области
func (r *Reader) Snapshot(ctx context.Context, scope domain.Scope) (domain.Snapshot, error) {
	snap := domain.Snapshot{Scope: scope}

	err := r.store.View(ctx, func(src repository.Source) error {
		switch scope.Kind {
		case domain.ScopeCompany:
			return readCompany(ctx, src, &snap)
		case domain.ScopeDepartment:
			return readDepartment(ctx, src, scope.ID, &snap)
		case domain.ScopeEmployee:
			return readEmployee(ctx, src, scope.ID, &snap)
		case domain.ScopeProject:
			return readProject(ctx, src, scope.ID, &snap)
		default:
			return fmt.Errorf("unknown scope kind %q", scope.Kind)
		}
	})
	if err != nil {
		return domain.Snapshot{}, scopeError(scope, err)
	}

	snap.ComputedAt = r.clock.Now()
	return snap, nil
}

// TopEmployees возвращает сотрудников с наибольшей выручкой
func (r *Reader) TopEmployees(ctx context.Context, limit int) ([]domain.Employee, error) {
	var employees []domain.Employee
	err := r.store.View(ctx, func(src repository.Source) error {
		var err error
		employees, err = src.Employees().TopByRevenue(ctx, limit)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read top employees: %w", err)
	}
	return employees, nil
}

// TopProjects возвращает проекты с наибольшей выручкой
func (r *Reader) TopProjects(ctx context.Context, limit int) ([]domain.Project, error) {
	var projects []domain.Project
	err := r.store.View(ctx, func(src repository.Source) error {
		var err error
		projects, err = src.Projects().TopByRevenue(ctx, limit)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read top projects: %w", err)
	}
	return projects, nil
}

// HoursSince суммирует часы сотрудника начиная с from
func (r *Reader) HoursSince(ctx context.Context, employeeID int64, from time.Time) (float64, error) {
	var hours float64
	err := r.store.View(ctx, func(src repository.Source) error {
		var err error
		hours, err = src.Timesheets().SumHours(ctx, domain.TimesheetFilter{EmployeeID: &employeeID, From: &from})
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("failed to read hours of employee %d: %w", employeeID, err)
	}
	return hours, nil
}

func readCompany(ctx context.Context, src repository.Source, snap *domain.Snapshot) error {
	var err error
	snap.Name = "company"

	if snap.DepartmentCount, err = src.Departments().Count(ctx); err != nil {
		return err
	}
	if snap.Budget, err = src.Departments().TotalBudget(ctx); err != nil {
		return err
	}
	if err = readTotals(ctx, src, nil, snap); err != nil {
		return err
	}
	snap.TotalHours, err = src.Timesheets().SumHours(ctx, domain.TimesheetFilter{})
	return err
}

func readDepartment(ctx context.Context, src repository.Source, id int64, snap *domain.Snapshot) error {
	dept, err := src.Departments().GetByID(ctx, id)
	if err != nil {
		return err
	}

	snap.Name = dept.Name
	snap.DepartmentID = dept.ID
	snap.DepartmentName = dept.Name
	snap.DepartmentCount = 1
	snap.Budget = dept.Budget

	if err = readTotals(ctx, src, &id, snap); err != nil {
		return err
	}
	snap.TotalHours, err = src.Timesheets().SumHours(ctx, domain.TimesheetFilter{DepartmentID: &id})
	return err
}

func readEmployee(ctx context.Context, src repository.Source, id int64, snap *domain.Snapshot) error {
	emp, err := src.Employees().GetByID(ctx, id)
	if err != nil {
		return err
	}

	snap.Name = emp.Name
	snap.DepartmentID = emp.DepartmentID
	if emp.Department != nil {
		snap.DepartmentName = emp.Department.Name
	}
	snap.EmployeeCount = 1
	snap.TotalSalary = emp.Salary
	snap.EmployeeRevenue = emp.RevenueGenerated

	if snap.TotalHours, err = src.Timesheets().SumHours(ctx, domain.TimesheetFilter{EmployeeID: &id}); err != nil {
		return err
	}
	snap.ProjectCount, err = src.Timesheets().CountProjects(ctx, id)
	return err
}

func readProject(ctx context.Context, src repository.Source, id int64, snap *domain.Snapshot) error {
	project, err := src.Projects().GetByID(ctx, id)
	if err != nil {
		return err
	}

	snap.Name = project.Name
	snap.DepartmentID = project.DepartmentID
	if project.Department != nil {
		snap.DepartmentName = project.Department.Name
	}
	snap.ProjectCount = 1
	snap.ProjectCost = project.Cost
	snap.ProjectRevenue = project.Revenue

	contributions, err := src.Timesheets().Contributions(ctx, id)
	if err != nil {
		return err
	}

	hours := decimal.Zero
	labor := decimal.Zero
	for _, c := range contributions {
		h := decimal.NewFromFloat(c.Hours)
		hours = hours.Add(h)
		labor = labor.Add(decimal.NewFromFloat(calculator.HourlyRate(c.Salary)).Mul(h))
	}

	snap.EmployeeCount = int64(len(contributions))
	snap.TotalHours = hours.InexactFloat64()
	snap.LaborCost = labor.InexactFloat64()
	return nil
}

func readTotals(ctx context.Context, src repository.Source, departmentID *int64, snap *domain.Snapshot) error {
	employees, err := src.Employees().Totals(ctx, departmentID)
	if err != nil {
		return err
	}
	projects, err := src.Projects().Totals(ctx, departmentID)
	if err != nil {
		return err
	}

	snap.EmployeeCount = employees.Count
	snap.TotalSalary = money(employees.Salary)
	snap.EmployeeRevenue = money(employees.Revenue)
	snap.ProjectCount = projects.Count
	snap.ProjectCost = money(projects.Cost)
	snap.ProjectRevenue = money(projects.Revenue)
	return nil
}

// money убирает хвост двоичной погрешности, накопленный SUM по REAL-колонкам
func money(v float64) float64 {
	return decimal.NewFromFloat(v).Round(6).InexactFloat64()
}

func scopeError(scope domain.Scope, err error) error {
	switch {
	case errors.Is(err, domain.ErrDepartmentNotFound),
		errors.Is(err, domain.ErrEmployeeNotFound),
		errors.Is(err, domain.ErrProjectNotFound):
		return &domain.ScopeNotFoundError{Scope: scope}
	default:
		return fmt.Errorf("failed to aggregate %s: %w", scope, err)
	}
}
