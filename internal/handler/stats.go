package handler

import (
	"net/http"
	"strconv"

	"github.com/sakif/hackathon-api/internal/apperror"
	"github.com/sakif/hackathon-api/internal/repository"
	"github.com/sakif/hackathon-api/internal/service"
)

// StatsHandler exposes the read-only analytics endpoints.
type StatsHandler struct {
	stats *service.StatsService
}

// NewStatsHandler creates a StatsHandler.
func NewStatsHandler(stats *service.StatsService) *StatsHandler {
	return &StatsHandler{stats: stats}
}

// ScanStats handles GET /scan-stats with optional query filters:
// min_frequency, max_frequency, activity_name, activity_category.
func (h *StatsHandler) ScanStats(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := repository.StatsFilter{
		ActivityName:     q.Get("activity_name"),
		ActivityCategory: q.Get("activity_category"),
	}

	if raw := q.Get("min_frequency"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, apperror.ValidationFailed("min_frequency", "min_frequency must be a non-negative integer"))
			return
		}
		filter.MinFrequency = n
	}
	if raw := q.Get("max_frequency"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, apperror.ValidationFailed("max_frequency", "max_frequency must be a non-negative integer"))
			return
		}
		filter.MaxFrequency = &n
	}

	stats, err := h.stats.ScanStats(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// ScanTimeline handles GET /scan-timeline?activity_name=... — hourly scan
// counts for one activity, oldest first.
func (h *StatsHandler) ScanTimeline(w http.ResponseWriter, r *http.Request) {
	entries, err := h.stats.ScanTimeline(r.Context(), r.URL.Query().Get("activity_name"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// Leaderboard handles GET /leaderboard — top users by scan count.
func (h *StatsHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	entries, err := h.stats.Leaderboard(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// PopularActivities handles GET /popular-activities.
func (h *StatsHandler) PopularActivities(w http.ResponseWriter, r *http.Request) {
	activities, err := h.stats.PopularActivities(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, activities)
}

// PeakTimes handles GET /peak-times — hour-range labels mapped to counts.
func (h *StatsHandler) PeakTimes(w http.ResponseWriter, r *http.Request) {
	peaks, err := h.stats.PeakTimes(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, peaks)
}

// ActivityLog handles GET /users/{id}/activity-log.
func (h *StatsHandler) ActivityLog(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	entries, err := h.stats.ActivityLog(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// RandomWinner handles GET /random-winner — draws one user from everyone
// with enough scans to qualify.
func (h *StatsHandler) RandomWinner(w http.ResponseWriter, r *http.Request) {
	winner, err := h.stats.RandomWinner(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, winner)
}
