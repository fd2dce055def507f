package repository

import (
	"context"
	"errors"

	"github.com/workforce-analytics-api/internal/domain"
	"gorm.io/gorm"
)

// EmployeeTotals - суммарные показатели сотрудников
type EmployeeTotals struct {
	Count   int64
	Salary  float64
	Revenue float64
}

// EmployeeRepository определяет интерфейс для работы с сотрудниками
type EmployeeRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Employee, error)
	TopByRevenue(ctx context.Context, limit int) ([]domain.Employee, error)
	// Totals считает итоги по подразделению или, если departmentID == nil, по всей компании
	Totals(ctx context.Context, departmentID *int64) (EmployeeTotals, error)
}

type employeeRepository struct {
	db *gorm.DB
}

// NewEmployeeRepository создаёт новый экземпляр репозитория
func NewEmployeeRepository(db *gorm.DB) EmployeeRepository {
	return &employeeRepository{db: db}
}

func (r *employeeRepository) GetByID(ctx context.Context, id int64) (*domain.Employee, error) {
	var emp domain.Employee
	err := r.db.WithContext(ctx).Preload("Department").First(&emp, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrEmployeeNotFound
		}
		return nil, err
	}
	return &emp, nil
}

func (r *employeeRepository) TopByRevenue(ctx context.Context, limit int) ([]domain.Employee, error) {
	var employees []domain.Employee
	err := r.db.WithContext(ctx).
		Preload("Department").
		Order("revenue_generated DESC").
		Order("id ASC").
		Limit(limit).
		Find(&employees).Error
	return employees, err
}

func (r *employeeRepository) Totals(ctx context.Context, departmentID *int64) (EmployeeTotals, error) {
	var totals EmployeeTotals
	query := r.db.WithContext(ctx).
		Model(&domain.Employee{}).
		Select("COUNT(*) AS count, COALESCE(SUM(salary), 0) AS salary, COALESCE(SUM(revenue_generated), 0) AS revenue")
	if departmentID != nil {
		query = query.Where("department_id = ?", *departmentID)
	}
	err := query.Scan(&totals).Error
	return totals, err
}
