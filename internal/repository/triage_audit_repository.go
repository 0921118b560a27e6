package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/smartcare/internal/model"
	"github.com/Freeeeeet/smartcare/internal/repository/base"
	"github.com/google/uuid"
)

type TriageAuditRepository struct {
	*base.Repository
}

func NewTriageAuditRepository(db base.DB) *TriageAuditRepository {
	return &TriageAuditRepository{Repository: base.NewRepository(db)}
}

// Create сохраняет результат классификации
func (r *TriageAuditRepository) Create(ctx context.Context, audit *model.TriageAudit) error {
	if audit.ID == uuid.Nil {
		audit.ID = uuid.New()
	}

	query := `
		INSERT INTO triage_audits (id, symptoms, department, confidence, source)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`

	err := r.QueryRow(ctx, query,
		audit.ID,
		audit.Symptoms,
		audit.Department,
		audit.Confidence,
		audit.Source,
	).Scan(&audit.CreatedAt)

	if err != nil {
		return fmt.Errorf("create triage audit: %w", err)
	}

	return nil
}
