package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/doxastic/beliefd/internal/domain"
	"github.com/doxastic/beliefd/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// EventHandler fronts the append-only event log. The handler talks to the
// store directly; there is no engine logic on this path.
type EventHandler struct {
	events domain.EventStore
}

func NewEventHandler(events domain.EventStore) *EventHandler {
	return &EventHandler{events: events}
}

type appendEventRequest struct {
	SessionID string         `json:"session_id,omitempty"`
	Kind      string         `json:"kind"`
	Content   string         `json:"content"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

func (h *EventHandler) Append(w http.ResponseWriter, r *http.Request) {
	var req appendEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Kind == "" {
		writeError(w, http.StatusBadRequest, "kind is required")
		return
	}
	if req.Content == "" {
		writeError(w, http.StatusBadRequest, "content is required")
		return
	}

	event := &domain.Event{
		Kind:     req.Kind,
		Content:  req.Content,
		Metadata: req.Metadata,
	}

	if req.SessionID != "" {
		sessionID, err := uuid.Parse(req.SessionID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid session_id")
			return
		}
		event.SessionID = &sessionID
	}

	if err := h.events.Append(r.Context(), event); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to append event")
		return
	}

	writeJSON(w, http.StatusCreated, event)
}

func (h *EventHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid event id")
		return
	}

	event, err := h.events.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "event not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to get event")
		return
	}

	writeJSON(w, http.StatusOK, event)
}

type listEventsResponse struct {
	Events []domain.Event `json:"events"`
	Count  int            `json:"count"`
}

func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	var filter domain.EventFilter

	if sid := r.URL.Query().Get("session_id"); sid != "" {
		sessionID, err := uuid.Parse(sid)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid session_id parameter")
			return
		}
		filter.SessionID = &sessionID
	}
	if kind := r.URL.Query().Get("kind"); kind != "" {
		filter.Kind = &kind
	}
	if l := r.URL.Query().Get("limit"); l != "" {
		v, err := strconv.Atoi(l)
		if err != nil || v <= 0 {
			writeError(w, http.StatusBadRequest, "invalid limit parameter")
			return
		}
		filter.Limit = v
	}

	var events []domain.Event
	var err error

	// A query parameter switches the listing to a full-text search.
	if query := r.URL.Query().Get("query"); query != "" {
		events, err = h.events.SearchKeyword(r.Context(), query, filter.Limit)
	} else {
		events, err = h.events.List(r.Context(), filter)
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list events")
		return
	}
	if events == nil {
		events = []domain.Event{}
	}

	writeJSON(w, http.StatusOK, listEventsResponse{Events: events, Count: len(events)})
}
