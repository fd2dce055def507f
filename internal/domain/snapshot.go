package domain

import (
	"fmt"
	"time"
)

// ScopeKind определяет уровень агрегации
type ScopeKind string

const (
	ScopeCompany    ScopeKind = "company"
	ScopeDepartment ScopeKind = "department"
	ScopeEmployee   ScopeKind = "employee"
	ScopeProject    ScopeKind = "project"
)

// Scope - область агрегации: вся компания или конкретная сущность
type Scope struct {
	Kind ScopeKind
	ID   int64
}

func CompanyScope() Scope { return Scope{Kind: ScopeCompany} }
func DepartmentScope(id int64) Scope { return Scope{Kind: ScopeDepartment, ID: id} }
func EmployeeScope(id int64) Scope { return Scope{Kind: ScopeEmployee, ID: id} }
func ProjectScope(id int64) Scope { return Scope{Kind: ScopeProject, ID: id} }

// Key возвращает стабильный ключ области, используется кэшем
func (s Scope) Key() string {
	if s.Kind == ScopeCompany {
		return string(ScopeCompany)
	}
	return fmt.Sprintf("%s:%d", s.Kind, s.ID)
}

func (s Scope) String() string {
	if s.Kind == ScopeCompany {
		return "company"
	}
	return fmt.Sprintf("%s %d", s.Kind, s.ID)
}

// Snapshot - неизменяемый срез агрегатов на момент времени.
// Суммы считаются в рамках одного чтения из хранилища.
type Snapshot struct {
	Scope      Scope
	ComputedAt time.Time

	Name            string
	DepartmentID    int64
	DepartmentName  string
	DepartmentCount int64
	EmployeeCount   int64
	ProjectCount    int64

	TotalSalary     float64
	ProjectCost     float64
	EmployeeRevenue float64
	ProjectRevenue  float64
	TotalHours      float64
	Budget          float64

	// только для проекта: стоимость часов участников по ставке оклада
	LaborCost float64
}

// TotalRevenue - выручка сотрудников и проектов
func (s Snapshot) TotalRevenue() float64 {
	return s.EmployeeRevenue + s.ProjectRevenue
}

// TotalCost - зарплаты и затраты на проекты
func (s Snapshot) TotalCost() float64 {
	return s.TotalSalary + s.ProjectCost
}

// Profit - разница между выручкой и затратами
func (s Snapshot) Profit() float64 {
	return s.TotalRevenue() - s.TotalCost()
}
