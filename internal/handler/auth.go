package handler

import (
	"fmt"
	"net/http"

	"github.com/sakif/hackathon-api/internal/apperror"
	"github.com/sakif/hackathon-api/internal/middleware"
	"github.com/sakif/hackathon-api/internal/service"
)

// AuthHandler exposes login and the token-protected demo route.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Login handles POST /login. On success the response carries a bearer
// token; on any credential failure it is a uniform 401.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var in loginRequest
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}

	result, err := h.auth.Login(r.Context(), in.Email, in.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		AccessToken: result.Token,
		TokenType:   "bearer",
	})
}

// Protected handles GET /protected — a smoke-test route behind the
// Authenticate guard. It resolves the token subject to a live user, so a
// valid token for a deleted account still fails.
func (h *AuthHandler) Protected(w http.ResponseWriter, r *http.Request) {
	email, ok := middleware.SubjectFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("valid bearer token required"))
		return
	}

	user, err := h.auth.UserByEmail(r.Context(), email)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{
		Message: fmt.Sprintf("Hello %s, you accessed a protected route!", user.Email),
	})
}
