package domain

import (
	"time"
)

// Целевые метрики прогнозных моделей
const (
	TargetROI     = "roi"
	TargetCost    = "cost"
	TargetRevenue = "revenue"
)

// ProvenanceSynthetic помечает результаты, полученные на синтетической истории
const ProvenanceSynthetic = "synthetic"

// FeatureNames - фиксированный порядок признаков модели
var FeatureNames = []string{"employee_count", "total_hours", "project_count", "budget_utilization"}

// TrainedModel - обученный регрессор для пары (подразделение, целевая метрика).
// Переобучение полностью заменяет предыдущую версию.
type TrainedModel struct {
	DepartmentID int64     `json:"department_id" gorm:"primaryKey;autoIncrement:false"`
	Target       string    `json:"target" gorm:"primaryKey;type:varchar(32)"`
	Kind         string    `json:"kind" gorm:"type:varchar(32);not null"`
	Version      int64     `json:"version" gorm:"not null"`
	RunID        string    `json:"run_id" gorm:"type:varchar(36);not null"`
	Features     string    `json:"features" gorm:"type:text;not null"`
	Seed         int64     `json:"seed" gorm:"not null"`
	Periods      int       `json:"periods" gorm:"not null"`
	R2           float64   `json:"r2" gorm:"column:r2;not null"`
	MAE          float64   `json:"mae" gorm:"column:mae;not null"`
	MSE          float64   `json:"mse" gorm:"column:mse;not null"`
	Samples      int       `json:"samples" gorm:"not null"`
	State        []byte    `json:"state" gorm:"not null"`
	TrainedAt    time.Time `json:"trained_at" gorm:"not null"`
}

// TableName задаёт имя таблицы для GORM
func (TrainedModel) TableName() string {
	return "trained_models"
}
