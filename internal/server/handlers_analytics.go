package server

import (
	"errors"
	"net/http"

	"github.com/tranvn/folio/internal/services/analytics"
)

// handleProfit handles GET /api/analytics/profit.
func (s *Server) handleProfit(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	userID := requireUser(w, r)
	if userID == "" {
		return
	}

	summary, err := s.app.AnalyticsService.CalculateProfit(r.Context(), userID)
	if err != nil {
		s.writeAnalyticsError(w, userID, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"data":   summary,
	})
}

// handleProfitDetail handles GET /api/analytics/profit/detail.
func (s *Server) handleProfitDetail(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	userID := requireUser(w, r)
	if userID == "" {
		return
	}

	detail, err := s.app.AnalyticsService.CalculateProfitDetail(r.Context(), userID)
	if err != nil {
		s.writeAnalyticsError(w, userID, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"data":   detail,
	})
}

// handleAllocationChart handles GET /api/analytics/chart, returning the
// category allocation donut as a PNG.
func (s *Server) handleAllocationChart(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	userID := requireUser(w, r)
	if userID == "" {
		return
	}

	png, err := s.app.AnalyticsService.RenderAllocationChart(r.Context(), userID)
	if err != nil {
		if errors.Is(err, analytics.ErrEmptyChart) {
			WriteError(w, http.StatusNotFound, "no holdings to chart")
			return
		}
		s.writeAnalyticsError(w, userID, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

// handleInsight handles GET /api/analytics/insight.
func (s *Server) handleInsight(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	userID := requireUser(w, r)
	if userID == "" {
		return
	}

	if s.app.GeminiClient == nil {
		WriteError(w, http.StatusServiceUnavailable, "insight generation is not configured")
		return
	}

	text, err := s.app.InsightService.GenerateInsight(r.Context(), userID)
	if err != nil {
		s.writeAnalyticsError(w, userID, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"data": map[string]interface{}{
			"insight": text,
		},
	})
}

// writeAnalyticsError maps an analytics failure to a response. An oversold
// position is a data problem the caller must fix, so it surfaces as 422
// rather than 500.
func (s *Server) writeAnalyticsError(w http.ResponseWriter, userID string, err error) {
	if analytics.IsOversell(err) {
		WriteErrorWithCode(w, http.StatusUnprocessableEntity, err.Error(), "oversell")
		return
	}
	s.logger.Error().Err(err).Str("user_id", userID).Msg("Analytics computation failed")
	WriteError(w, http.StatusInternalServerError, "failed to compute analytics")
}
