package handler

import (
	"net/http"

	"github.com/sakif/hackathon-api/internal/apperror"
	"github.com/sakif/hackathon-api/internal/service"
)

// ScanHandler exposes scan recording, badge check-in/out, connections and
// the snack claim.
type ScanHandler struct {
	scans *service.ScanService
}

// NewScanHandler creates a ScanHandler.
func NewScanHandler(scans *service.ScanService) *ScanHandler {
	return &ScanHandler{scans: scans}
}

// Record handles POST /scans/{user_id}.
func (h *ScanHandler) Record(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "user_id")
	if err != nil {
		writeError(w, err)
		return
	}

	var in service.ScanInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}

	scan, err := h.scans.Record(r.Context(), userID, in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, scan)
}

// List handles GET /scans?activity_category=... — all scans, newest first.
func (h *ScanHandler) List(w http.ResponseWriter, r *http.Request) {
	scans, err := h.scans.List(r.Context(), r.URL.Query().Get("activity_category"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, scans)
}

// ListByUser handles GET /users/{id}/scans — one user's history, oldest
// first. Unknown users yield an empty list.
func (h *ScanHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	scans, err := h.scans.ListByUser(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, scans)
}

// badgeRequest is the body for the check-in/check-out endpoints. Badges are
// what staff actually hold at the door, so these routes key on badge_code
// rather than user id.
type badgeRequest struct {
	BadgeCode string `json:"badge_code"`
}

// CheckIn handles POST /check-in.
func (h *ScanHandler) CheckIn(w http.ResponseWriter, r *http.Request) {
	badge, err := decodeBadge(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if _, err := h.scans.CheckIn(r.Context(), badge); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "User checked in successfully"})
}

// CheckOut handles POST /check-out. Idempotent — checking out an already
// checked-out badge still succeeds.
func (h *ScanHandler) CheckOut(w http.ResponseWriter, r *http.Request) {
	badge, err := decodeBadge(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if _, err := h.scans.CheckOut(r.Context(), badge); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "User checked out successfully"})
}

// Connect handles POST /connect/{user_id1}/{user_id2}.
func (h *ScanHandler) Connect(w http.ResponseWriter, r *http.Request) {
	id1, err := pathID(r, "user_id1")
	if err != nil {
		writeError(w, err)
		return
	}
	id2, err := pathID(r, "user_id2")
	if err != nil {
		writeError(w, err)
		return
	}

	if _, err := h.scans.Connect(r.Context(), id1, id2); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, MessageResponse{Message: "Users connected successfully"})
}

// ClaimSnack handles POST /snacks/{user_id} — the one-per-user midnight
// snack claim.
func (h *ScanHandler) ClaimSnack(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "user_id")
	if err != nil {
		writeError(w, err)
		return
	}

	scan, err := h.scans.ClaimSnack(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, scan)
}

func decodeBadge(r *http.Request) (string, error) {
	var in badgeRequest
	if err := decodeJSON(r, &in); err != nil {
		return "", err
	}
	if in.BadgeCode == "" {
		return "", apperror.ValidationFailed("badge_code", "badge_code is required")
	}
	return in.BadgeCode, nil
}
