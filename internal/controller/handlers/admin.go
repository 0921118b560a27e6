package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/Freeeeeet/smartcare/internal/controller/middleware"
	"github.com/Freeeeeet/smartcare/internal/service"
	"go.uber.org/zap"
)

// Login POST /admin/login
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Password == "" {
		writeError(w, http.StatusBadRequest, "password required")
		return
	}

	token, expires, err := h.auth.Login(req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, service.ErrAdminDisabled):
			writeError(w, http.StatusUnauthorized, service.ErrInvalidCredentials.Error())
		default:
			h.internalError(w, r, "Admin login failed", err)
		}
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		Token:     token,
		ExpiresAt: expires.UTC().Format(time.RFC3339),
	})
}

// Reconciliation GET /admin/reconciliation: только отчёт
func (h *Handlers) Reconciliation(w http.ResponseWriter, r *http.Request) {
	h.reconcile(w, r, false)
}

// RepairReconciliation POST /admin/reconciliation: отчёт и дозапись журнала
func (h *Handlers) RepairReconciliation(w http.ResponseWriter, r *http.Request) {
	h.reconcile(w, r, true)
}

func (h *Handlers) reconcile(w http.ResponseWriter, r *http.Request, repair bool) {
	opts := service.ReconcileOptions{Repair: repair}
	if raw := r.URL.Query().Get("grace"); raw != "" {
		grace, err := time.ParseDuration(raw)
		if err != nil || grace < 0 {
			writeError(w, http.StatusBadRequest, "invalid grace duration")
			return
		}
		opts.Grace = grace
	}

	if claims, ok := middleware.AdminClaimsFromContext(r.Context()); ok {
		h.logger.Info("Reconciliation requested",
			zap.String("subject", claims.Subject),
			zap.Bool("repair", repair),
			zap.Duration("grace", opts.Grace),
		)
	}

	report, err := h.reservations.Reconcile(r.Context(), opts)
	if err != nil {
		h.internalError(w, r, "Reconciliation failed", err)
		return
	}

	writeJSON(w, http.StatusOK, report)
}
