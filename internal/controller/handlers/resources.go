package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/Freeeeeet/smartcare/internal/model"
	"github.com/Freeeeeet/smartcare/internal/service"
)

// ListResources GET /resources?department=X
func (h *Handlers) ListResources(w http.ResponseWriter, r *http.Request) {
	resources, err := h.resources.ListResources(r.Context(), r.URL.Query().Get("department"))
	if err != nil {
		h.internalError(w, r, "Failed to list resources", err)
		return
	}
	if resources == nil {
		resources = []*model.Resource{}
	}
	writeJSON(w, http.StatusOK, resources)
}

// GetResource GET /resources/{id}
func (h *Handlers) GetResource(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	resource, err := h.resources.GetResource(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrResourceNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		h.internalError(w, r, "Failed to get resource", err)
		return
	}

	writeJSON(w, http.StatusOK, resource)
}

// CreateResource POST /resources (admin)
func (h *Handlers) CreateResource(w http.ResponseWriter, r *http.Request) {
	var req createResourceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	slotTimes := make([]time.Time, 0, len(req.Slots))
	for _, raw := range req.Slots {
		t, err := parseSlotTime(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		slotTimes = append(slotTimes, t)
	}

	resource, err := h.resources.CreateResource(r.Context(), service.CreateResourceInput{
		Name:           req.Name,
		Email:          req.Email,
		Specialization: req.Specialization,
		Bio:            req.Bio,
		SlotTimes:      slotTimes,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrDuplicateSlot):
			writeError(w, http.StatusConflict, err.Error())
		default:
			h.internalError(w, r, "Failed to create resource", err)
		}
		return
	}

	writeJSON(w, http.StatusCreated, resource)
}

// AddSlot POST /resources/{id}/slots (admin)
func (h *Handlers) AddSlot(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req addSlotRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	slotTime, err := parseSlotTime(req.SlotTime)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	slot, err := h.resources.AddSlot(r.Context(), id, slotTime)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrResourceNotFound):
			writeError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrDuplicateSlot):
			writeError(w, http.StatusConflict, err.Error())
		case errors.Is(err, service.ErrValidation):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			h.internalError(w, r, "Failed to add slot", err)
		}
		return
	}

	writeJSON(w, http.StatusCreated, slot)
}

// DeleteSlot DELETE /resources/{id}/slots/{slotID} (admin)
func (h *Handlers) DeleteSlot(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	slotID, err := pathID(r, "slotID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	err = h.resources.DeleteSlot(r.Context(), id, slotID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSlotNotFound):
			writeError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrSlotReserved):
			writeError(w, http.StatusConflict, err.Error())
		default:
			h.internalError(w, r, "Failed to delete slot", err)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DeleteResource DELETE /resources/{id} (admin)
func (h *Handlers) DeleteResource(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.resources.DeleteResource(r.Context(), id); err != nil {
		if errors.Is(err, service.ErrResourceNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		h.internalError(w, r, "Failed to delete resource", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
