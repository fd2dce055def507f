package repository

import (
	"context"

	"github.com/workforce-analytics-api/internal/domain"
	"gorm.io/gorm"
)

// Contribution - часы одного сотрудника на проекте
type Contribution struct {
	EmployeeID int64
	Salary     float64
	Hours      float64
}

// TimesheetRepository определяет интерфейс для работы с табелями
type TimesheetRepository interface {
	SumHours(ctx context.Context, filter domain.TimesheetFilter) (float64, error)
	CountProjects(ctx context.Context, employeeID int64) (int64, error)
	Contributions(ctx context.Context, projectID int64) ([]Contribution, error)
}

type timesheetRepository struct {
	db *gorm.DB
}

// NewTimesheetRepository создаёт новый экземпляр репозитория
func NewTimesheetRepository(db *gorm.DB) TimesheetRepository {
	return &timesheetRepository{db: db}
}

func (r *timesheetRepository) SumHours(ctx context.Context, filter domain.TimesheetFilter) (float64, error) {
	var total float64
	query := r.db.WithContext(ctx).
		Model(&domain.Timesheet{}).
		Select("COALESCE(SUM(timesheets.hours_worked), 0)")

	if filter.DepartmentID != nil {
		query = query.
			Joins("JOIN employees ON employees.id = timesheets.employee_id").
			Where("employees.department_id = ?", *filter.DepartmentID)
	}
	if filter.EmployeeID != nil {
		query = query.Where("timesheets.employee_id = ?", *filter.EmployeeID)
	}
	if filter.ProjectID != nil {
		query = query.Where("timesheets.project_id = ?", *filter.ProjectID)
	}
	if filter.From != nil {
		query = query.Where("timesheets.date >= ?", *filter.From)
	}

	err := query.Scan(&total).Error
	return total, err
}

func (r *timesheetRepository) CountProjects(ctx context.Context, employeeID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.Timesheet{}).
		Where("employee_id = ?", employeeID).
		Distinct("project_id").
		Count(&count).Error
	return count, err
}

func (r *timesheetRepository) Contributions(ctx context.Context, projectID int64) ([]Contribution, error) {
	var result []Contribution
	err := r.db.WithContext(ctx).
		Model(&domain.Timesheet{}).
		Select("employees.id AS employee_id, employees.salary AS salary, SUM(timesheets.hours_worked) AS hours").
		Joins("JOIN employees ON employees.id = timesheets.employee_id").
		Where("timesheets.project_id = ?", projectID).
		Group("employees.id, employees.salary").
		Order("employees.id ASC").
		Scan(&result).Error
	return result, err
}
