package repository

import (
	"context"
	"errors"

	"github.com/workforce-analytics-api/internal/domain"
	"gorm.io/gorm"
)

// ProjectTotals - суммарные показатели проектов
type ProjectTotals struct {
	Count   int64
	Cost    float64
	Revenue float64
}

// ProjectRepository определяет интерфейс для работы с проектами
type ProjectRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Project, error)
	TopByRevenue(ctx context.Context, limit int) ([]domain.Project, error)
	Totals(ctx context.Context, departmentID *int64) (ProjectTotals, error)
}

type projectRepository struct {
	db *gorm.DB
}

// NewProjectRepository создаёт новый экземпляр репозитория
func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &projectRepository{db: db}
}

func (r *projectRepository) GetByID(ctx context.Context, id int64) (*domain.Project, error) {
	var project domain.Project
	err := r.db.WithContext(ctx).Preload("Department").First(&project, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrProjectNotFound
		}
		return nil, err
	}
	return &project, nil
}

func (r *projectRepository) TopByRevenue(ctx context.Context, limit int) ([]domain.Project, error) {
	var projects []domain.Project
	err := r.db.WithContext(ctx).
		Preload("Department").
		Order("revenue DESC").
		Order("id ASC").
		Limit(limit).
		Find(&projects).Error
	return projects, err
}

func (r *projectRepository) Totals(ctx context.Context, departmentID *int64) (ProjectTotals, error) {
	var totals ProjectTotals
	query := r.db.WithContext(ctx).
		Model(&domain.Project{}).
		Select("COUNT(*) AS count, COALESCE(SUM(cost), 0) AS cost, COALESCE(SUM(revenue), 0) AS revenue")
	if departmentID != nil {
		query = query.Where("department_id = ?", *departmentID)
	}
	err := query.Scan(&totals).Error
	return totals, err
}
