// Package repotest поднимает SQLite с применёнными миграциями для тестов.
package repotest

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/workforce-analytics-api/internal/domain"
	"github.com/workforce-analytics-api/internal/migrations"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open создаёт файловую БД во временном каталоге теста и применяет миграции
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "analytics.db") + "?_foreign_keys=on&_busy_timeout=5000"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, migrations.Up(context.Background(), sqlDB, "sqlite"))
	return db
}

// Fixture - набор сущностей, созданных Seed
type Fixture struct {
	Department *domain.Department
	Employee   *domain.Employee
	Project    *domain.Project
}

// Seed создаёт подразделение с одним сотрудником, одним проектом и табелем:
// зарплата 80000, выручка 100000, проект стоит 50000 и приносит 70000.
func Seed(t testing.TB, db *gorm.DB, name string, hoursDate time.Time) Fixture {
	t.Helper()

	dept := &domain.Department{Name: name, Budget: 200000}
	require.NoError(t, db.Create(dept).Error)

	emp := &domain.Employee{DepartmentID: dept.ID, Name: name + " engineer", Salary: 80000, RevenueGenerated: 100000}
	require.NoError(t, db.Create(emp).Error)

	project := &domain.Project{DepartmentID: dept.ID, Name: name + " project", Cost: 50000, Revenue: 70000}
	require.NoError(t, db.Create(project).Error)

	ts := &domain.Timesheet{EmployeeID: emp.ID, ProjectID: project.ID, HoursWorked: 40, Date: hoursDate}
	require.NoError(t, db.Create(ts).Error)

	return Fixture{Department: dept, Employee: emp, Project: project}
}
