package dto

import (
	"time"
)

// TopQuery - параметры запроса рейтинга
type TopQuery struct {
	Limit int `validate:"min=1,max=20"`
}

// TrainQuery - параметры запроса обучения
type TrainQuery struct {
	Wait bool
}

// CompanyAnalyticsResponse - показатели компании
type CompanyAnalyticsResponse struct {
	DepartmentCount      int64     `json:"department_count"`
	EmployeeCount        int64     `json:"employee_count"`
	ProjectCount         int64     `json:"project_count"`
	TotalSalary          float64   `json:"total_salary"`
	TotalProjectCost     float64   `json:"total_project_cost"`
	TotalCost            float64   `json:"total_cost"`
	TotalEmployeeRevenue float64   `json:"total_employee_revenue"`
	TotalProjectRevenue  float64   `json:"total_project_revenue"`
	TotalRevenue         float64   `json:"total_revenue"`
	Profit               float64   `json:"profit"`
	ProfitMargin         float64   `json:"profit_margin"`
	TotalBudget          float64   `json:"total_budget"`
	BudgetUtilization    float64   `json:"budget_utilization"`
	TotalHours           float64   `json:"total_hours"`
	RevenuePerHour       float64   `json:"revenue_per_hour"`
	ROI                  float64   `json:"roi"`
	ProductivityIndex    float64   `json:"productivity_index"`
	Alerts               []string  `json:"alerts"`
	ComputedAt           time.Time `json:"computed_at"`
}

// DepartmentAnalyticsResponse - показатели подразделения
type DepartmentAnalyticsResponse struct {
	DepartmentID      int64     `json:"department_id"`
	DepartmentName    string    `json:"department_name"`
	Budget            float64   `json:"budget"`
	EmployeeCount     int64     `json:"employee_count"`
	ProjectCount      int64     `json:"project_count"`
	TotalSalaryCost   float64   `json:"total_salary_cost"`
	TotalProjectCost  float64   `json:"total_project_cost"`
	TotalRevenue      float64   `json:"total_revenue"`
	Profit            float64   `json:"profit"`
	ProfitMargin      float64   `json:"profit_margin"`
	BudgetUtilization float64   `json:"budget_utilization"`
	ROI               float64   `json:"roi"`
	ProductivityIndex float64   `json:"productivity_index"`
	TotalHours        float64   `json:"total_hours"`
	Alerts            []string  `json:"alerts"`
	ComputedAt        time.Time `json:"computed_at"`
}

// EmployeeAnalyticsResponse - показатели сотрудника
type EmployeeAnalyticsResponse struct {
	EmployeeID        int64     `json:"employee_id"`
	EmployeeName      string    `json:"employee_name"`
	DepartmentID      int64     `json:"department_id"`
	DepartmentName    string    `json:"department_name"`
	Salary            float64   `json:"salary"`
	RevenueGenerated  float64   `json:"revenue_generated"`
	Profit            float64   `json:"profit"`
	TotalHours        float64   `json:"total_hours"`
	ProjectCount      int64     `json:"project_count"`
	CostPerHour       float64   `json:"cost_per_hour"`
	RevenuePerHour    float64   `json:"revenue_per_hour"`
	ProfitPerHour     float64   `json:"profit_per_hour"`
	UtilizationRate   float64   `json:"utilization_rate"`
	ROI               float64   `json:"roi"`
	ProductivityIndex float64   `json:"productivity_index"`
	Alerts            []string  `json:"alerts"`
	ComputedAt        time.Time `json:"computed_at"`
}

// ProjectAnalyticsResponse - показатели проекта
type ProjectAnalyticsResponse struct {
	ProjectID      int64   `json:"project_id"`
	ProjectName    string  `json:"project_name"`
	DepartmentID   int64   `json:"department_id"`
	DepartmentName string  `json:"department_name"`
	Cost           float64 `json:"cost"`
	LaborCost      float64 `json:"labor_cost"`
	TotalCost      float64 `json:"total_cost"`
	Revenue        float64 `json:"revenue"`
	Profit         float64 `json:"profit"`
	ProfitMargin   float64 `json:"profit_margin"`
	TotalHours     float64 `json:"total_hours"`
	EmployeeCount  int64   `json:"employee_count"`
}

// TopPerformerResponse - строка рейтинга сотрудников
type TopPerformerResponse struct {
	EmployeeID       int64   `json:"employee_id"`
	EmployeeName     string  `json:"employee_name"`
	DepartmentID     int64   `json:"department_id"`
	DepartmentName   string  `json:"department_name"`
	RevenueGenerated float64 `json:"revenue_generated"`
	Salary           float64 `json:"salary"`
	Profit           float64 `json:"profit"`
	ProfitMargin     float64 `json:"profit_margin"`
}

// TopProjectResponse - строка рейтинга проектов
type TopProjectResponse struct {
	ProjectID      int64   `json:"project_id"`
	ProjectName    string  `json:"project_name"`
	DepartmentID   int64   `json:"department_id"`
	DepartmentName string  `json:"department_name"`
	Revenue        float64 `json:"revenue"`
	Cost           float64 `json:"cost"`
	Profit         float64 `json:"profit"`
	ProfitMargin   float64 `json:"profit_margin"`
}

// ModelMetricsResponse - качество обученной модели
type ModelMetricsResponse struct {
	Target  string  `json:"target"`
	Kind    string  `json:"kind"`
	Version int64   `json:"version"`
	R2      float64 `json:"r2"`
	MAE     float64 `json:"mae"`
	MSE     float64 `json:"mse"`
	Samples int     `json:"samples"`
}

// TrainingResponse - результат обучения моделей подразделения
type TrainingResponse struct {
	DepartmentID   int64                  `json:"department_id"`
	RunID          string                 `json:"run_id"`
	DataProvenance string                 `json:"data_provenance"`
	Periods        int                    `json:"periods"`
	Seed           int64                  `json:"seed"`
	Features       []string               `json:"features"`
	TrainedAt      time.Time              `json:"trained_at"`
	Models         []ModelMetricsResponse `json:"models"`
}

// TaskResponse - состояние фоновой задачи обучения
type TaskResponse struct {
	ID           string            `json:"id"`
	DepartmentID int64             `json:"department_id"`
	Status       string            `json:"status"`
	SubmittedAt  time.Time         `json:"submitted_at"`
	StartedAt    *time.Time        `json:"started_at,omitempty"`
	FinishedAt   *time.Time        `json:"finished_at,omitempty"`
	Result       *TrainingResponse `json:"result,omitempty"`
	Error        string            `json:"error,omitempty"`
}

// ForecastResponse - прогноз одной целевой метрики
type ForecastResponse struct {
	Current         float64 `json:"current"`
	Predicted       float64 `json:"predicted"`
	Trend           float64 `json:"trend"`
	TrendPercentage float64 `json:"trend_percentage"`
	Confidence      float64 `json:"confidence"`
	ModelVersion    int64   `json:"model_version"`
}

// PredictionResponse - прогноз показателей подразделения на следующий месяц
type PredictionResponse struct {
	DepartmentID    int64             `json:"department_id"`
	DepartmentName  string            `json:"department_name"`
	PredictionDate  string            `json:"prediction_date"`
	NextMonth       int               `json:"next_month"`
	DataProvenance  string            `json:"data_provenance"`
	ModelKind       string            `json:"model_kind"`
	RunID           string            `json:"run_id"`
	TrainedAt       time.Time         `json:"trained_at"`
	Stale           bool              `json:"stale"`
	ROI             ForecastResponse  `json:"roi"`
	Cost            ForecastResponse  `json:"cost"`
	Revenue         *ForecastResponse `json:"revenue,omitempty"`
	Recommendations []string          `json:"recommendations"`
}

// ErrorResponse - стандартный ответ с ошибкой
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
