package domain

import (
	"errors"
	"fmt"
)

// Определение бизнес-ошибок
var (
	ErrScopeNotFound      = errors.New("scope not found")
	ErrInsufficientData   = errors.New("insufficient data")
	ErrModelNotTrained    = errors.New("model not trained")
	ErrModelStore         = errors.New("model store failure")
	ErrInvalidMetricInput = errors.New("invalid metric input")
	ErrModelNotFound      = errors.New("model not found")
	ErrTaskNotFound       = errors.New("training task not found")
	ErrRunnerClosed       = errors.New("training runner is closed")
	ErrTrainingQueueFull  = errors.New("training queue is full")
	ErrUnsupportedLearner = errors.New("unsupported learner kind")
	ErrDepartmentNotFound = errors.New("department not found")
	ErrEmployeeNotFound   = errors.New("employee not found")
	ErrProjectNotFound    = errors.New("project not found")
)

// ScopeNotFoundError - запрошенное подразделение, сотрудник или проект не существует
type ScopeNotFoundError struct {
	Scope Scope
}

func (e *ScopeNotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.Scope)
}

func (e *ScopeNotFoundError) Is(target error) bool {
	return target == ErrScopeNotFound
}

// InsufficientDataError - данных недостаточно для построения обучающего ряда
type InsufficientDataError struct {
	DepartmentID int64
	Reason       string
}

func (e *InsufficientDataError) Error() string {
	if e.DepartmentID == 0 {
		return fmt.Sprintf("insufficient data: %s", e.Reason)
	}
	return fmt.Sprintf("insufficient data for department %d: %s", e.DepartmentID, e.Reason)
}

func (e *InsufficientDataError) Is(target error) bool {
	return target == ErrInsufficientData
}

// ModelNotTrainedError - прогноз запрошен до обучения модели
type ModelNotTrainedError struct {
	DepartmentID int64
	Target       string
}

func (e *ModelNotTrainedError) Error() string {
	return fmt.Sprintf("no trained %s model for department %d, train the department model first", e.Target, e.DepartmentID)
}

func (e *ModelNotTrainedError) Is(target error) bool {
	return target == ErrModelNotTrained
}

// ModelStoreError - сбой при чтении или записи модели
type ModelStoreError struct {
	Op  string
	Err error
}

func (e *ModelStoreError) Error() string {
	return fmt.Sprintf("model store %s: %v", e.Op, e.Err)
}

func (e *ModelStoreError) Is(target error) bool {
	return target == ErrModelStore
}

func (e *ModelStoreError) Unwrap() error {
	return e.Err
}

// InvalidMetricInputError - некорректный агрегат (например, отрицательные часы)
type InvalidMetricInputError struct {
	Field string
	Value float64
}

func (e *InvalidMetricInputError) Error() string {
	return fmt.Sprintf("invalid metric input %s=%v", e.Field, e.Value)
}

func (e *InvalidMetricInputError) Is(target error) bool {
	return target == ErrInvalidMetricInput
}
