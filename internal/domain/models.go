package domain

import (
	"time"
)

// Department представляет подразделение организации
type Department struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Name      string    `json:"name" gorm:"type:varchar(200);not null;uniqueIndex"`
	Budget    float64   `json:"budget" gorm:"not null;default:0"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`

	Employees []Employee `json:"employees,omitempty" gorm:"foreignKey:DepartmentID;constraint:OnDelete:CASCADE"`
	Projects  []Project  `json:"projects,omitempty" gorm:"foreignKey:DepartmentID;constraint:OnDelete:CASCADE"`
}

// TableName задаёт имя таблицы для GORM
func (Department) TableName() string {
	return "departments"
}

// Employee представляет сотрудника
type Employee struct {
	ID               int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	DepartmentID     int64     `json:"department_id" gorm:"not null;index"`
	Name             string    `json:"name" gorm:"type:varchar(200);not null"`
	Salary           float64   `json:"salary" gorm:"not null"`
	RevenueGenerated float64   `json:"revenue_generated" gorm:"not null;default:0"`
	CreatedAt        time.Time `json:"created_at" gorm:"autoCreateTime"`

	Department *Department `json:"-" gorm:"foreignKey:DepartmentID"`
}

// TableName задаёт имя таблицы для GORM
func (Employee) TableName() string {
	return "employees"
}

// Project представляет проект подразделения
type Project struct {
	ID           int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	DepartmentID int64     `json:"department_id" gorm:"not null;index"`
	Name         string    `json:"name" gorm:"type:varchar(200);not null"`
	Cost         float64   `json:"cost" gorm:"not null;default:0"`
	Revenue      float64   `json:"revenue" gorm:"not null;default:0"`
	CreatedAt    time.Time `json:"created_at" gorm:"autoCreateTime"`

	Department *Department `json:"-" gorm:"foreignKey:DepartmentID"`
}

// TableName задаёт имя таблицы для GORM
func (Project) TableName() string {
	return "projects"
}

// Timesheet - запись об отработанных часах сотрудника на проекте
type Timesheet struct {
	ID          int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	EmployeeID  int64     `json:"employee_id" gorm:"not null;index"`
	ProjectID   int64     `json:"project_id" gorm:"not null;index"`
	HoursWorked float64   `json:"hours_worked" gorm:"not null"`
	Date        time.Time `json:"date" gorm:"type:date;not null"`

	Employee *Employee `json:"-" gorm:"foreignKey:EmployeeID"`
	Project  *Project  `json:"-" gorm:"foreignKey:ProjectID"`
}

// TableName задаёт имя таблицы для GORM
func (Timesheet) TableName() string {
	return "timesheets"
}

// TimesheetFilter - условия выборки табелей. Пустые поля не участвуют в фильтре.
type TimesheetFilter struct {
	EmployeeID   *int64
	ProjectID    *int64
	DepartmentID *int64
	From         *time.Time
}
