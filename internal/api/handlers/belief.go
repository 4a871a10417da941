package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/doxastic/beliefd/internal/domain"
	"github.com/doxastic/beliefd/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type BeliefHandler struct {
	svc *service.BeliefService
}

func NewBeliefHandler(svc *service.BeliefService) *BeliefHandler {
	return &BeliefHandler{svc: svc}
}

type createBeliefRequest struct {
	Statement    string   `json:"statement"`
	Domain       string   `json:"domain"`
	Confidence   float32  `json:"confidence,omitempty"`
	EvidenceIDs  []string `json:"evidence_ids,omitempty"`
	Importance   int      `json:"importance,omitempty"`
	Tags         []string `json:"tags,omitempty"`
	SupersedesID string   `json:"supersedes_id,omitempty"`
}

func (h *BeliefHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createBeliefRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	belief := &domain.Belief{
		Statement:   req.Statement,
		Domain:      domain.BeliefDomain(req.Domain),
		Confidence:  req.Confidence,
		EvidenceIDs: req.EvidenceIDs,
		Importance:  req.Importance,
		Tags:        req.Tags,
	}

	if req.SupersedesID != "" {
		supersedes, err := uuid.Parse(req.SupersedesID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid supersedes_id")
			return
		}
		belief.SupersedesID = &supersedes
	}

	if err := h.svc.Create(r.Context(), belief); err != nil {
		switch {
		case errors.Is(err, service.ErrStatementEmpty),
			errors.Is(err, service.ErrInvalidDomain),
			errors.Is(err, service.ErrInvalidConfidence):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "failed to create belief")
		}
		return
	}

	writeJSON(w, http.StatusCreated, belief)
}

func (h *BeliefHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid belief id")
		return
	}

	belief, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrBeliefNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to get belief")
		return
	}

	writeJSON(w, http.StatusOK, belief)
}

type listBeliefsResponse struct {
	Beliefs []domain.Belief `json:"beliefs"`
	Count   int             `json:"count"`
}

func (h *BeliefHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, ok := beliefFilterFromQuery(w, r)
	if !ok {
		return
	}

	beliefs, err := h.svc.GetActive(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list beliefs")
		return
	}
	if beliefs == nil {
		beliefs = []domain.Belief{}
	}

	writeJSON(w, http.StatusOK, listBeliefsResponse{Beliefs: beliefs, Count: len(beliefs)})
}

type updateBeliefRequest struct {
	Statement   *string    `json:"statement,omitempty"`
	Confidence  *float32   `json:"confidence,omitempty"`
	Importance  *int       `json:"importance,omitempty"`
	Tags        *[]string  `json:"tags,omitempty"`
	EvidenceIDs *[]string  `json:"evidence_ids,omitempty"`
	Fingerprint *[]float32 `json:"fingerprint,omitempty"`
}

func (h *BeliefHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid belief id")
		return
	}

	var req updateBeliefRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	changes := domain.BeliefChanges{
		Statement:   req.Statement,
		Confidence:  req.Confidence,
		Importance:  req.Importance,
		Tags:        req.Tags,
		EvidenceIDs: req.EvidenceIDs,
		Fingerprint: req.Fingerprint,
	}

	belief, err := h.svc.Update(r.Context(), id, changes)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBeliefNotFound):
			writeError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrStatementEmpty),
			errors.Is(err, service.ErrInvalidConfidence):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "failed to update belief")
		}
		return
	}

	writeJSON(w, http.StatusOK, belief)
}

type invalidateRequest struct {
	Reason string `json:"reason"`
}

type invalidateResponse struct {
	Invalidated bool `json:"invalidated"`
}

// Invalidate is the terminal deactivation transition. Repeating it on the
// same belief reports invalidated=false.
func (h *BeliefHandler) Invalidate(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid belief id")
		return
	}

	var req invalidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ok, err := h.svc.Invalidate(r.Context(), id, req.Reason)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBeliefNotFound):
			writeError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrReasonEmpty):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "failed to invalidate belief")
		}
		return
	}

	writeJSON(w, http.StatusOK, invalidateResponse{Invalidated: ok})
}

func (h *BeliefHandler) ByDomain(w http.ResponseWriter, r *http.Request) {
	d := chi.URLParam(r, "domain")
	includeInactive := r.URL.Query().Get("include_inactive") == "true"

	beliefs, err := h.svc.GetByDomain(r.Context(), domain.BeliefDomain(d), includeInactive)
	if err != nil {
		if errors.Is(err, service.ErrInvalidDomain) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to list beliefs")
		return
	}
	if beliefs == nil {
		beliefs = []domain.Belief{}
	}

	writeJSON(w, http.StatusOK, listBeliefsResponse{Beliefs: beliefs, Count: len(beliefs)})
}

// beliefFilterFromQuery parses the shared domain/min_confidence/limit query
// parameters. It writes the error response itself and returns ok=false when
// the input is malformed.
func beliefFilterFromQuery(w http.ResponseWriter, r *http.Request) (domain.BeliefFilter, bool) {
	var filter domain.BeliefFilter

	if d := r.URL.Query().Get("domain"); d != "" {
		if !domain.ValidBeliefDomain(d) {
			writeError(w, http.StatusBadRequest, "invalid domain parameter")
			return filter, false
		}
		bd := domain.BeliefDomain(d)
		filter.Domain = &bd
	}

	if mc := r.URL.Query().Get("min_confidence"); mc != "" {
		v, err := strconv.ParseFloat(mc, 32)
		if err != nil || v < 0 || v > 1 {
			writeError(w, http.StatusBadRequest, "invalid min_confidence parameter")
			return filter, false
		}
		filter.MinConfidence = float32(v)
	}

	if l := r.URL.Query().Get("limit"); l != "" {
		v, err := strconv.Atoi(l)
		if err != nil || v <= 0 {
			writeError(w, http.StatusBadRequest, "invalid limit parameter")
			return filter, false
		}
		filter.Limit = v
	}

	return filter, true
}
