// Package handlers holds the HTTP handlers for the index API.
package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/hedgineer/eqindex/internal/build"
	"github.com/hedgineer/eqindex/internal/query"
	"github.com/hedgineer/eqindex/pkg/logger"
)

const dateLayout = "2006-01-02"

// IndexHandler handles index build and read endpoints.
type IndexHandler struct {
	reader       *query.Reader
	orchestrator *build.Orchestrator
	logger       *logger.Logger
}

// NewIndexHandler creates a new index handler.
func NewIndexHandler(reader *query.Reader, orchestrator *build.Orchestrator, log *logger.Logger) *IndexHandler {
	return &IndexHandler{
		reader:       reader,
		orchestrator: orchestrator,
		logger:       log,
	}
}

// buildRequest is the body of POST /api/index/build.
type buildRequest struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// Build triggers an incremental build over a date range.
// POST /api/index/build
func (h *IndexHandler) Build(w http.ResponseWriter, r *http.Request) {
	var req buildRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	start, err := time.Parse(dateLayout, req.StartDate)
	if err != nil {
		respondError(w, http.StatusBadRequest, "start_date must be YYYY-MM-DD")
		return
	}

	end := start
	if req.EndDate != "" {
		end, err = time.Parse(dateLayout, req.EndDate)
		if err != nil {
			respondError(w, http.StatusBadRequest, "end_date must be YYYY-MM-DD")
			return
		}
	}
	if end.Before(start) {
		respondError(w, http.StatusBadRequest, "end_date must not precede start_date")
		return
	}

	result := h.orchestrator.Build(r.Context(), start, end)
	if !result.Success {
		respondJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"success": false,
			"data":    result,
		})
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    result,
	})
}

// GetComposition returns the constituents and weights for one date.
// GET /api/index/composition?date=YYYY-MM-DD
func (h *IndexHandler) GetComposition(w http.ResponseWriter, r *http.Request) {
	date, ok := h.parseDateParam(w, r, "date", time.Now().UTC())
	if !ok {
		return
	}

	composition, err := h.reader.GetComposition(r.Context(), date)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load composition")
		respondError(w, http.StatusInternalServerError, "Failed to load composition")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data": map[string]interface{}{
			"date":  date.Format(dateLayout),
			"count": len(composition),
			"items": composition,
		},
	})
}

// GetPerformance returns the performance series over a date range.
// GET /api/index/performance?start_date=YYYY-MM-DD&end_date=YYYY-MM-DD
func (h *IndexHandler) GetPerformance(w http.ResponseWriter, r *http.Request) {
	start, end, ok := h.parseRangeParams(w, r)
	if !ok {
		return
	}

	performance, err := h.reader.GetPerformance(r.Context(), start, end)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load performance")
		respondError(w, http.StatusInternalServerError, "Failed to load performance")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data": map[string]interface{}{
			"start_date": start.Format(dateLayout),
			"end_date":   end.Format(dateLayout),
			"count":      len(performance),
			"items":      performance,
		},
	})
}

// GetCompositionChanges returns constituent entries and exits over a range.
// GET /api/index/changes?start_date=YYYY-MM-DD&end_date=YYYY-MM-DD
func (h *IndexHandler) GetCompositionChanges(w http.ResponseWriter, r *http.Request) {
	start, end, ok := h.parseRangeParams(w, r)
	if !ok {
		return
	}

	changes, err := h.reader.GetCompositionChanges(r.Context(), start, end)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load composition changes")
		respondError(w, http.StatusInternalServerError, "Failed to load composition changes")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data": map[string]interface{}{
			"start_date": start.Format(dateLayout),
			"end_date":   end.Format(dateLayout),
			"count":      len(changes),
			"items":      changes,
		},
	})
}

// parseDateParam reads one optional date query parameter, writing a 400
// response on malformed input.
func (h *IndexHandler) parseDateParam(w http.ResponseWriter, r *http.Request, name string, fallback time.Time) (time.Time, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, true
	}

	date, err := time.Parse(dateLayout, raw)
	if err != nil {
		respondError(w, http.StatusBadRequest, name+" must be YYYY-MM-DD")
		return time.Time{}, false
	}
	return date, true
}

// parseRangeParams reads start_date and end_date, defaulting to the last
// 30 days.
func (h *IndexHandler) parseRangeParams(w http.ResponseWriter, r *http.Request) (time.Time, time.Time, bool) {
	now := time.Now().UTC()

	start, ok := h.parseDateParam(w, r, "start_date", now.AddDate(0, 0, -30))
	if !ok {
		return time.Time{}, time.Time{}, false
	}
	end, ok := h.parseDateParam(w, r, "end_date", now)
	if !ok {
		return time.Time{}, time.Time{}, false
	}
	if end.Before(start) {
		respondError(w, http.StatusBadRequest, "end_date must not precede start_date")
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}
