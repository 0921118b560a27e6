package handlers

import (
	"github.com/Freeeeeet/smartcare/internal/service"
	"go.uber.org/zap"
)

// Handlers содержит все зависимости HTTP обработчиков
type Handlers struct {
	reservations *service.ReservationService
	resources    *service.ResourceService
	triage       *service.TriageService
	auth         *service.AuthService
	logger       *zap.Logger
}

// NewHandlers создаёт обработчики
func NewHandlers(
	reservations *service.ReservationService,
	resources *service.ResourceService,
	triage *service.TriageService,
	auth *service.AuthService,
	logger *zap.Logger,
) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{
		reservations: reservations,
		resources:    resources,
		triage:       triage,
		auth:         auth,
		logger:       logger,
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

type reservationRequest struct {
	ResourceID  int64  `json:"resourceId"`
	SlotTime    string `json:"slotTime"`
	RequesterID string `json:"requesterId"`
	Notes       string `json:"notes"`
}

// reservationResponse ответ на попытку бронирования
type reservationResponse struct {
	Status        string `json:"status"`
	ReservationID string `json:"reservationId,omitempty"`
	Message       string `json:"message,omitempty"`
}

type triageRequest struct {
	Symptoms string `json:"symptoms"`
}

type createResourceRequest struct {
	Name           string   `json:"name"`
	Email          string   `json:"email"`
	Specialization string   `json:"specialization"`
	Bio            string   `json:"bio"`
	Slots          []string `json:"slots"`
}

type addSlotRequest struct {
	SlotTime string `json:"slotTime"`
}

type loginRequest struct {
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expiresAt"`
}
