package handlers

import (
	"net/http"

	"github.com/doxastic/beliefd/internal/domain"
	"github.com/doxastic/beliefd/internal/service"
)

type CognitiveHandler struct {
	decaySvc  *service.DecayService
	beliefSvc *service.BeliefService
}

func NewCognitiveHandler(decaySvc *service.DecayService, beliefSvc *service.BeliefService) *CognitiveHandler {
	return &CognitiveHandler{decaySvc: decaySvc, beliefSvc: beliefSvc}
}

type decayResponse struct {
	BeliefsDecayed int64 `json:"beliefs_decayed"`
}

// TriggerDecay runs one decay sweep on demand, outside the worker schedule.
func (h *CognitiveHandler) TriggerDecay(w http.ResponseWriter, r *http.Request) {
	touched, err := h.decaySvc.Run(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "decay sweep failed")
		return
	}
	writeJSON(w, http.StatusOK, decayResponse{BeliefsDecayed: touched})
}

type statsResponse struct {
	Domains     []domain.DomainStats `json:"domains"`
	TotalActive int                  `json:"total_active"`
}

func (h *CognitiveHandler) DomainStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.beliefSvc.StatsPerDomain(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to compute stats")
		return
	}
	if stats == nil {
		stats = []domain.DomainStats{}
	}

	total := 0
	for _, st := range stats {
		total += st.Count
	}

	writeJSON(w, http.StatusOK, statsResponse{Domains: stats, TotalActive: total})
}
