package repository

import (
	"context"
	"errors"

	"github.com/workforce-analytics-api/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ModelStore хранит обученные модели по ключу (подразделение, целевая метрика).
//
// Save заменяет все переданные ключи одной атомарной записью и проставляет
// каждой модели версию на единицу больше предыдущей. Читатели видят либо
// старый набор, либо новый целиком.
type ModelStore interface {
	Save(ctx context.Context, models ...*domain.TrainedModel) error
	Load(ctx context.Context, departmentID int64, target string) (*domain.TrainedModel, error)
	// LoadSet читает несколько целей согласованно. Отсутствующие цели не попадают в результат.
	LoadSet(ctx context.Context, departmentID int64, targets ...string) (map[string]*domain.TrainedModel, error)
}

type modelRepository struct {
	db *gorm.DB
}

// NewModelRepository создаёт хранилище моделей в таблице trained_models
func NewModelRepository(db *gorm.DB) ModelStore {
	return &modelRepository{db: db}
}

var upsertColumns = []string{
	"kind", "run_id", "features", "seed", "periods",
	"r2", "mae", "mse", "samples", "state", "trained_at",
}

func (r *modelRepository) Save(ctx context.Context, models ...*domain.TrainedModel) error {
	if len(models) == 0 {
		return nil
	}

	rows := make([]domain.TrainedModel, len(models))
	for i, m := range models {
		rows[i] = *m
		rows[i].Version = 1
	}

	// версия считается самим upsert, поэтому параллельные сохранения не теряют приращения
	updates := append(clause.Set{{
		Column: clause.Column{Name: "version"},
		Value:  gorm.Expr("trained_models.version + 1"),
	}}, clause.AssignmentColumns(upsertColumns)...)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "department_id"}, {Name: "target"}},
			DoUpdates: updates,
		}).Create(&rows).Error
		if err != nil {
			return err
		}

		for i := range rows {
			var saved domain.TrainedModel
			err := tx.Select("version").
				Where("department_id = ? AND target = ?", rows[i].DepartmentID, rows[i].Target).
				Take(&saved).Error
			if err != nil {
				return err
			}
			rows[i].Version = saved.Version
		}
		return nil
	})
	if err != nil {
		return &domain.ModelStoreError{Op: "save", Err: err}
	}

	for i, m := range models {
		m.Version = rows[i].Version
	}
	return nil
}

func (r *modelRepository) Load(ctx context.Context, departmentID int64, target string) (*domain.TrainedModel, error) {
	var model domain.TrainedModel
	err := r.db.WithContext(ctx).
		Where("department_id = ? AND target = ?", departmentID, target).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrModelNotFound
		}
		return nil, &domain.ModelStoreError{Op: "load", Err: err}
	}
	return &model, nil
}

func (r *modelRepository) LoadSet(ctx context.Context, departmentID int64, targets ...string) (map[string]*domain.TrainedModel, error) {
	result := make(map[string]*domain.TrainedModel, len(targets))
	if len(targets) == 0 {
		return result, nil
	}

	var rows []domain.TrainedModel
	err := r.db.WithContext(ctx).
		Where("department_id = ? AND target IN ?", departmentID, targets).
		Find(&rows).Error
	if err != nil {
		return nil, &domain.ModelStoreError{Op: "load", Err: err}
	}

	for i := range rows {
		result[rows[i].Target] = &rows[i]
	}
	return result, nil
}
