package memory

import (
	"context"
	"sync"
	"time"

	"github.com/Freeeeeet/smartcare/internal/model"
	"github.com/google/uuid"
)

// TriageAudits журнал классификаций в памяти
type TriageAudits struct {
	mu     sync.Mutex
	audits []model.TriageAudit
}

func NewTriageAudits() *TriageAudits {
	return &TriageAudits{}
}

func (a *TriageAudits) Create(_ context.Context, audit *model.TriageAudit) error {
	if audit.ID == uuid.Nil {
		audit.ID = uuid.New()
	}
	audit.CreatedAt = time.Now()

	a.mu.Lock()
	a.audits = append(a.audits, *audit)
	a.mu.Unlock()
	return nil
}

// All возвращает копию журнала
func (a *TriageAudits) All() []model.TriageAudit {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]model.TriageAudit(nil), a.audits...)
}
