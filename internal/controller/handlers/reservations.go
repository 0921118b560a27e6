package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/Freeeeeet/smartcare/internal/model"
	"github.com/Freeeeeet/smartcare/internal/service"
	"go.uber.org/zap"
)

// CreateReservation POST /reservations
func (h *Handlers) CreateReservation(w http.ResponseWriter, r *http.Request) {
	var req reservationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeFailed(w, http.StatusBadRequest, err.Error())
		return
	}

	if req.ResourceID <= 0 || strings.TrimSpace(req.RequesterID) == "" {
		writeFailed(w, http.StatusBadRequest, "resourceId, slotTime and requesterId are required")
		return
	}
	slotTime, err := parseSlotTime(req.SlotTime)
	if err != nil {
		writeFailed(w, http.StatusBadRequest, err.Error())
		return
	}

	reservation, err := h.reservations.Reserve(r.Context(), service.ReserveRequest{
		ResourceID:  req.ResourceID,
		SlotTime:    slotTime,
		RequesterID: req.RequesterID,
		Notes:       req.Notes,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSlotUnavailable):
			writeFailed(w, http.StatusConflict, service.ErrSlotUnavailable.Error())
		case errors.Is(err, service.ErrValidation):
			writeFailed(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrLedgerWrite):
			// исход неизвестен клиенту: слот занят, записи нет
			writeFailed(w, http.StatusInternalServerError, service.ErrLedgerWrite.Error())
		default:
			h.logger.Error("Reservation failed",
				zap.Int64("resource_id", req.ResourceID),
				zap.Error(err),
			)
			writeFailed(w, http.StatusInternalServerError, "reservation failed")
		}
		return
	}

	writeJSON(w, http.StatusOK, reservationResponse{
		Status:        string(model.ReservationStatusConfirmed),
		ReservationID: reservation.ID.String(),
	})
}

// ListReservations GET /reservations?requesterId=X или ?resourceId=Y
func (h *Handlers) ListReservations(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	requesterID := strings.TrimSpace(query.Get("requesterId"))
	rawResourceID := strings.TrimSpace(query.Get("resourceId"))

	var (
		reservations []*model.Reservation
		err          error
	)
	switch {
	case requesterID != "":
		reservations, err = h.reservations.ListByRequester(r.Context(), requesterID)
	case rawResourceID != "":
		resourceID, perr := strconv.ParseInt(rawResourceID, 10, 64)
		if perr != nil || resourceID <= 0 {
			writeError(w, http.StatusBadRequest, "invalid resourceId")
			return
		}
		reservations, err = h.reservations.ListByResource(r.Context(), resourceID)
	default:
		writeError(w, http.StatusBadRequest, "requesterId or resourceId required")
		return
	}
	if err != nil {
		h.internalError(w, r, "Failed to list reservations", err)
		return
	}

	if reservations == nil {
		reservations = []*model.Reservation{}
	}
	writeJSON(w, http.StatusOK, reservations)
}

// SlotStatus GET /reservations/slot-status?resourceId&slotTime&requesterId
func (h *Handlers) SlotStatus(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	resourceID, err := strconv.ParseInt(strings.TrimSpace(query.Get("resourceId")), 10, 64)
	if err != nil || resourceID <= 0 {
		writeError(w, http.StatusBadRequest, "invalid resourceId")
		return
	}
	slotTime, err := parseSlotTime(query.Get("slotTime"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	state, err := h.reservations.CheckSlot(r.Context(), resourceID, slotTime, query.Get("requesterId"))
	if err != nil {
		h.internalError(w, r, "Failed to check slot", err)
		return
	}

	writeJSON(w, http.StatusOK, state)
}

func writeFailed(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, reservationResponse{
		Status:  string(model.ReservationStatusFailed),
		Message: message,
	})
}
