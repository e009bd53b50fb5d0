package handlers

import (
	"CaseKeeper/internal/risk"
	"CaseKeeper/internal/service"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const defaultTopLimit = 10

// RiskHandler прогноз по городам. Facade == nil значит, что набор данных не загрузился.
type RiskHandler struct {
	Facade *risk.Facade
	Logger *zap.SugaredLogger
}

type cityPredictionResponse struct {
	risk.Prediction
	ModelRiskLevel risk.Level `json:"modelRiskLevel"`
}

func (h *RiskHandler) ready(w http.ResponseWriter) bool {
	if h.Facade == nil {
		respondError(w, h.Logger, "Predictions", risk.ErrNotReady)
		return false
	}
	return true
}

func (h *RiskHandler) All(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	writeJSON(w, http.StatusOK, h.Facade.AllPredictions())
}

func (h *RiskHandler) Top(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	limit := defaultTopLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			respondError(w, h.Logger, "TopRiskCities", fieldsError("limit"))
			return
		}
		limit = n
	}
	writeJSON(w, http.StatusOK, h.Facade.TopRiskCities(limit))
}

func (h *RiskHandler) City(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	name := chi.URLParam(r, "name")
	p, ok := h.Facade.CityPrediction(name)
	if !ok {
		writeError(w, http.StatusNotFound, "city not found")
		return
	}
	lvl, _ := h.Facade.ModelLevel(name)
	writeJSON(w, http.StatusOK, cityPredictionResponse{Prediction: p, ModelRiskLevel: lvl})
}

func (h *RiskHandler) Distribution(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	writeJSON(w, http.StatusOK, h.Facade.CrimeDistribution())
}

func (h *RiskHandler) Statistics(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	writeJSON(w, http.StatusOK, h.Facade.Statistics())
}

// StatsHandler сводка по записям.
type StatsHandler struct {
	StatsService *service.StatsService
	Logger       *zap.SugaredLogger
}

func (h *StatsHandler) Statistics(w http.ResponseWriter, r *http.Request) {
	st, err := h.StatsService.Statistics(r.Context())
	if err != nil {
		respondError(w, h.Logger, "Statistics", err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}
