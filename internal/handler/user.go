package handler

import (
	"fmt"
	"net/http"

	"github.com/sakif/hackathon-api/internal/service"
)

// UserHandler exposes the user lifecycle endpoints.
type UserHandler struct {
	users *service.UserService
}

// NewUserHandler creates a UserHandler.
func NewUserHandler(users *service.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// List handles GET /users — every user with their scan history attached.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// Get handles GET /users/{id}.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	user, err := h.users.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// Register handles POST /users.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var in service.RegisterInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}

	user, err := h.users.Register(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

// updateUserRequest is the partial-update body. Pointer fields distinguish
// "not sent" (nil) from "sent as empty" — only sent fields change.
type updateUserRequest struct {
	Name  *string `json:"name"`
	Phone *string `json:"phone"`
}

// Update handles PUT /users/{id}.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	var in updateUserRequest
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}

	user, err := h.users.Update(r.Context(), id, in.Name, in.Phone)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// Delete handles DELETE /users/{id}. Admin-only — the route is wrapped in
// the RequireAdmin guard at registration time.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.users.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{
		Message: fmt.Sprintf("User %d deleted successfully", id),
	})
}

// Promote handles PUT /promote-admin/{id}. Admin-only.
func (h *UserHandler) Promote(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	user, err := h.users.Promote(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{
		Message: fmt.Sprintf("User %s is now an admin", user.Name),
	})
}
