package handlers

import (
	"errors"
	"net/http"

	"github.com/Freeeeeet/smartcare/internal/service"
)

// Triage POST /triage
func (h *Handlers) Triage(w http.ResponseWriter, r *http.Request) {
	var req triageRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.triage.Classify(r.Context(), req.Symptoms)
	if err != nil {
		if errors.Is(err, service.ErrEmptySymptoms) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.internalError(w, r, "Triage failed", err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}
