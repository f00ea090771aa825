package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/redmonkez12/recipe-api/internal/httputil"
	"github.com/redmonkez12/recipe-api/internal/logging"
	"github.com/redmonkez12/recipe-api/internal/user"
)

// Middleware handles authentication for protected routes
type Middleware struct {
	service *Service
}

func NewMiddleware(service *Service) *Middleware {
	return &Middleware{service: service}
}

// RequireAuth resolves the request's token to a user and stores it in the
// context. Requests without a usable token stop here with 401.
func (m *Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := tokenFromHeader(r.Header.Get("Authorization"))
		if !ok {
			unauthorized(w, "Authentication credentials were not provided.", httputil.CodeMissingAuth)
			return
		}
		if token == "" {
			unauthorized(w, "Invalid token header. No credentials provided.", httputil.CodeInvalidAuthHeader)
			return
		}

		u, err := m.service.Authenticate(r.Context(), token)
		if err != nil {
			switch {
			case errors.Is(err, ErrExpiredToken):
				unauthorized(w, "Token has expired.", httputil.CodeTokenExpired)
			case errors.Is(err, ErrInvalidToken):
				unauthorized(w, "Invalid token.", httputil.CodeInvalidToken)
			default:
				logging.GetLoggerFromContext(r.Context()).Error("token lookup failed", "error", err.Error())
				httputil.RespondInternalError(w)
			}
			return
		}

		ctx := user.NewContext(r.Context(), u)
		ctx = logging.WithLogger(ctx, logging.GetLoggerFromContext(ctx).WithFields(map[string]any{"user_id": u.ID}))

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// tokenFromHeader accepts "Token <key>" and "Bearer <key>". ok is false when
// no supported scheme is present; an empty token means the scheme came alone.
func tokenFromHeader(header string) (token string, ok bool) {
	parts := strings.Fields(header)
	if len(parts) == 0 {
		return "", false
	}

	switch strings.ToLower(parts[0]) {
	case "token", "bearer":
	default:
		return "", false
	}

	if len(parts) != 2 {
		return "", true
	}
	return parts[1], true
}

func unauthorized(w http.ResponseWriter, message, code string) {
	w.Header().Set("WWW-Authenticate", "Token")
	httputil.RespondErrorWithCode(w, message, code, http.StatusUnauthorized)
}
