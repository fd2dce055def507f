package repository

import (
	"context"

	"gorm.io/gorm"
)

// Source - набор репозиториев, привязанных к одному соединению или транзакции
type Source interface {
	Departments() DepartmentRepository
	Employees() EmployeeRepository
	Projects() ProjectRepository
	Timesheets() TimesheetRepository
}

type source struct {
	departments DepartmentRepository
	employees   EmployeeRepository
	projects    ProjectRepository
	timesheets  TimesheetRepository
}

func newSource(db *gorm.DB) *source {
	return &source{
		departments: NewDepartmentRepository(db),
		employees:   NewEmployeeRepository(db),
		projects:    NewProjectRepository(db),
		timesheets:  NewTimesheetRepository(db),
	}
}

func (s *source) Departments() DepartmentRepository { return s.departments }
func (s *source) Employees() EmployeeRepository { return s.employees }
func (s *source) Projects() ProjectRepository { return s.projects }
func (s *source) Timesheets() TimesheetRepository { return s.timesheets }

// Store - доступ к операционным данным. Вне View репозитории работают без транзакции.
type Store struct {
	*source
	db *gorm.DB
}

// NewStore создаёт хранилище поверх соединения GORM
func NewStore(db *gorm.DB) *Store {
	return &Store{source: newSource(db), db: db}
}

// View выполняет fn в одной транзакции, чтобы все агрегаты видели одно состояние.
// Изоляция - по умолчанию для БД, поэтому параллельные записи могут отразиться частично.
func (s *Store) View(ctx context.Context, fn func(src Source) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(newSource(tx))
	})
}
