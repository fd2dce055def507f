package repository

import (
	"context"
	"errors"

	"github.com/workforce-analytics-api/internal/domain"
	"gorm.io/gorm"
)

// DepartmentRepository определяет интерфейс для чтения подразделений
type DepartmentRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Department, error)
	Count(ctx context.Context) (int64, error)
	TotalBudget(ctx context.Context) (float64, error)
}

type departmentRepository struct {
	db *gorm.DB
}

// NewDepartmentRepository создаёт новый экземпляр репозитория
func NewDepartmentRepository(db *gorm.DB) DepartmentRepository {
	return &departmentRepository{db: db}
}

func (r *departmentRepository) GetByID(ctx context.Context, id int64) (*domain.Department, error) {
	var dept domain.Department
	err := r.db.WithContext(ctx).First(&dept, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrDepartmentNotFound
		}
		return nil, err
	}
	return &dept, nil
}

func (r *departmentRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Department{}).Count(&count).Error
	return count, err
}

func (r *departmentRepository) TotalBudget(ctx context.Context) (float64, error) {
	var total float64
	err := r.db.WithContext(ctx).
		Model(&domain.Department{}).
		Select("COALESCE(SUM(budget), 0)").
		Scan(&total).Error
	return total, err
}
