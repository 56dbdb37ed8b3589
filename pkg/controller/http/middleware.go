package http

import (
	"net/http"

	"github.com/secmon-lab/tablero/pkg/domain/model/auth"
	"github.com/secmon-lab/tablero/pkg/utils/logging"
)

// sessionCookie carries the signed session JWT
const sessionCookie = "tablero_session"

// authMiddleware resolves the session cookie to a live session and stores it
// in the request context. In no-auth mode the cookie is optional and every
// value resolves to the fixed user.
func authMiddleware(authUC AuthUseCase) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var raw string
			if cookie, err := r.Cookie(sessionCookie); err == nil {
				raw = cookie.Value
			} else if !authUC.IsNoAuthn() {
				writeJSON(r.Context(), w, http.StatusUnauthorized, errorResponse{Error: "Authentication required"})
				return
			}

			token, err := resolveSession(r, authUC, raw)
			if err != nil {
				logging.From(r.Context()).Debug("rejected session", "error", err)
				writeJSON(r.Context(), w, http.StatusUnauthorized, errorResponse{Error: "Invalid authentication token"})
				return
			}

			ctx := auth.ContextWithToken(r.Context(), token)
			ctx = logging.With(ctx, logging.From(ctx).With("user_id", token.UserID))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func resolveSession(r *http.Request, authUC AuthUseCase, raw string) (*auth.Token, error) {
	tokenID, err := authUC.ParseSession(raw)
	if err != nil {
		return nil, err
	}
	return authUC.ValidateToken(r.Context(), tokenID)
}
