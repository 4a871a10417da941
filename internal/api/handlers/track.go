package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/doxastic/beliefd/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type TrackHandler struct {
	svc *service.TrackerService
}

func NewTrackHandler(svc *service.TrackerService) *TrackHandler {
	return &TrackHandler{svc: svc}
}

func (h *TrackHandler) Reinforce(w http.ResponseWriter, r *http.Request) {
	h.track(w, r, h.svc.Reinforce)
}

func (h *TrackHandler) Contradict(w http.ResponseWriter, r *http.Request) {
	h.track(w, r, h.svc.Contradict)
}

func (h *TrackHandler) track(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, id uuid.UUID) error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid belief id")
		return
	}

	if err := op(r.Context(), id); err != nil {
		if errors.Is(err, service.ErrBeliefNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to record signal")
		return
	}

	status, err := h.svc.Status(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to read counters")
		return
	}

	writeJSON(w, http.StatusOK, status)
}

// Review exposes the observe-only flagged-for-review predicate.
func (h *TrackHandler) Review(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid belief id")
		return
	}

	status, err := h.svc.Status(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrBeliefNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to read review status")
		return
	}

	writeJSON(w, http.StatusOK, status)
}
