package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/sakif/hackathon-api/internal/auth"
	"github.com/sakif/hackathon-api/internal/repository"
)

// contextKey is an unexported type used for context keys in this package.
// Using a package-private type prevents collisions: only this package can
// read or write values stored under these keys.
type contextKey string

const subjectKey contextKey = "subject"

var errMissingToken = errors.New("middleware: missing bearer token")

// Authenticate enforces a valid bearer token on protected routes.
//
// It reads "Authorization: Bearer <token>", validates the JWT, and stores
// the subject email in the request context. Missing or invalid tokens stop
// the chain with 401 Unauthorized.
//
// The guard takes and returns plain data — no framework container, no
// request-scoped session. Handlers read the subject via SubjectFromContext.
func Authenticate(tokens *auth.TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			email, err := extractSubject(r, tokens)
			if err != nil {
				unauthorized(w)
				return
			}

			ctx := context.WithValue(r.Context(), subjectKey, email)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin enforces a valid bearer token AND the admin flag.
//
// Guard chain: extract bearer token → validate → look up the subject user →
// require is_admin. An invalid token is 401; a valid token belonging to a
// non-admin (or to a user that no longer exists) is 403.
func RequireAdmin(tokens *auth.TokenService, users repository.UserRepository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			email, err := extractSubject(r, tokens)
			if err != nil {
				unauthorized(w)
				return
			}

			user, err := users.GetByEmail(r.Context(), email)
			if err != nil || !user.IsAdmin {
				writeGuardError(w, http.StatusForbidden, `{"error":"forbidden","message":"admin access required"}`)
				return
			}

			ctx := context.WithValue(r.Context(), subjectKey, email)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SubjectFromContext retrieves the authenticated subject email set by the
// guards. Returns ("", false) on routes that ran without a guard.
func SubjectFromContext(ctx context.Context) (string, bool) {
	email, ok := ctx.Value(subjectKey).(string)
	return email, ok && email != ""
}

// extractSubject reads and validates the bearer token from the
// Authorization header.
func extractSubject(r *http.Request, tokens *auth.TokenService) (string, error) {
	header := r.Header.Get("Authorization")
	tokenStr, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || tokenStr == "" {
		return "", errMissingToken
	}

	return tokens.Validate(tokenStr)
}

func unauthorized(w http.ResponseWriter) {
	writeGuardError(w, http.StatusUnauthorized, `{"error":"unauthorized","message":"valid bearer token required"}`)
}

// writeGuardError emits a fixed JSON error body. http.Error is avoided on
// purpose — it forces a text/plain content type.
func writeGuardError(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(body + "\n"))
}
