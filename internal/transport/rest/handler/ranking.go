package handler

import (
	"net/http"
	"strconv"

	"kenolive/internal/model"
	"kenolive/internal/service"
)

const (
	defaultRankingSize = 20
	maxRankingSize     = 100
)

// RankingHandler serves the global ranking
type RankingHandler struct {
	rankingSvc *service.RankingService
}

// NewRankingHandler creates a new ranking handler
func NewRankingHandler(rankingSvc *service.RankingService) *RankingHandler {
	return &RankingHandler{rankingSvc: rankingSvc}
}

// RankingResponse wraps the ranking rows
type RankingResponse struct {
	Ranking []model.RankingEntry `json:"ranking"`
}

// Top handles GET /v1/ranking
func (h *RankingHandler) Top(w http.ResponseWriter, r *http.Request) {
	limit := defaultRankingSize
	if s := r.URL.Query().Get("top"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "invalid top")
			return
		}
		if n > maxRankingSize {
			n = maxRankingSize
		}
		limit = n
	}

	ranking, err := h.rankingSvc.Top(r.Context(), limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, RankingResponse{Ranking: ranking})
}
