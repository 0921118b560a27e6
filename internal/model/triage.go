package model

import (
	"time"

	"github.com/google/uuid"
)

// Department отделение, в которое направляется пациент
type Department string

const (
	DepartmentCardiology      Department = "Cardiology"
	DepartmentOrthopedics     Department = "Orthopedics"
	DepartmentGeneralMedicine Department = "General Medicine"
	DepartmentNeurology       Department = "Neurology"
	DepartmentPediatrics      Department = "Pediatrics"
)

// CandidateDepartments фиксированный набор меток для классификатора
var CandidateDepartments = []Department{
	DepartmentCardiology,
	DepartmentOrthopedics,
	DepartmentGeneralMedicine,
	DepartmentNeurology,
	DepartmentPediatrics,
}

// IsKnownDepartment проверяет что отделение входит в фиксированный набор
func IsKnownDepartment(d Department) bool {
	for _, c := range CandidateDepartments {
		if c == d {
			return true
		}
	}
	return false
}

type TriageSource string

const (
	TriageSourcePrimary  TriageSource = "primary"
	TriageSourceFallback TriageSource = "fallback"
)

// FallbackConfidence фиксированная уверенность эвристики
const FallbackConfidence = 0.5

// TriageResult результат классификации симптомов
type TriageResult struct {
	Department Department   `json:"department"`
	Confidence float64      `json:"confidence"`
	Source     TriageSource `json:"source"`
}

// TriageAudit запись журнала классификаций
type TriageAudit struct {
	ID         uuid.UUID    `json:"id"`
	Symptoms   string       `json:"symptoms"`
	Department Department   `json:"department"`
	Confidence float64      `json:"confidence"`
	Source     TriageSource `json:"source"`
	CreatedAt  time.Time    `json:"created_at"`
}
