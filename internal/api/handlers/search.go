package handlers

import (
	"errors"
	"net/http"

	"github.com/doxastic/beliefd/internal/domain"
	"github.com/doxastic/beliefd/internal/service"
)

type SearchHandler struct {
	svc *service.RetrievalService
}

func NewSearchHandler(svc *service.RetrievalService) *SearchHandler {
	return &SearchHandler{svc: svc}
}

type searchResponse struct {
	Results []domain.ScoredBelief `json:"results"`
	Query   string                `json:"query"`
	Mode    string                `json:"mode"`
	Count   int                   `json:"count"`
}

// Search dispatches on mode=keyword|semantic|hybrid (hybrid by default).
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	if query == "" {
		writeError(w, http.StatusBadRequest, "query parameter is required")
		return
	}

	mode := r.URL.Query().Get("mode")
	if mode == "" {
		mode = "hybrid"
	}

	filter, ok := beliefFilterFromQuery(w, r)
	if !ok {
		return
	}

	var results []domain.ScoredBelief
	var err error

	switch mode {
	case "keyword":
		results, err = h.svc.SearchKeyword(r.Context(), query, filter)
	case "semantic":
		results, err = h.svc.SearchSemantic(r.Context(), query, filter)
	case "hybrid":
		results, err = h.svc.SearchHybrid(r.Context(), query, filter)
	default:
		writeError(w, http.StatusBadRequest, "invalid mode parameter")
		return
	}

	if err != nil {
		if errors.Is(err, service.ErrSearchQueryEmpty) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "search failed")
		return
	}

	if results == nil {
		results = []domain.ScoredBelief{}
	}

	writeJSON(w, http.StatusOK, searchResponse{
		Results: results,
		Query:   query,
		Mode:    mode,
		Count:   len(results),
	})
}
