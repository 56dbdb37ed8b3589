package http

import (
	"net/http"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/tablero/pkg/domain/model/auth"
	"github.com/secmon-lab/tablero/pkg/usecase"
	"github.com/secmon-lab/tablero/pkg/utils/errutil"
)

type AuthUseCase = usecase.AuthUseCaseInterface

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password" masq:"secret"`
}

type userMeResponse struct {
	Sub   string `json:"sub"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

func meOf(token *auth.Token) userMeResponse {
	return userMeResponse{Sub: token.UserID, Email: token.Email, Name: token.Name}
}

// authLoginHandler checks the password and sets the session cookie
func authLoginHandler(authUC AuthUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		token, err := authUC.Login(r.Context(), req.Email, req.Password)
		if err != nil {
			handleError(w, r, err)
			return
		}

		// NoAuthn mode has no session to keep
		if authUC.IsNoAuthn() {
			writeJSON(r.Context(), w, http.StatusOK, meOf(token))
			return
		}

		signed, err := authUC.SignToken(token)
		if err != nil {
			errutil.HandleHTTP(r.Context(), w, err, http.StatusInternalServerError)
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     sessionCookie,
			Value:    signed,
			Path:     "/",
			HttpOnly: true,
			Secure:   r.TLS != nil,
			SameSite: http.SameSiteLaxMode,
			Expires:  token.ExpiresAt,
		})

		writeJSON(r.Context(), w, http.StatusOK, meOf(token))
	}
}

// authLogoutHandler ends the session and clears the cookie
func authLogoutHandler(authUC AuthUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cookie, err := r.Cookie(sessionCookie); err == nil && !authUC.IsNoAuthn() {
			// an invalid cookie only needs clearing
			if tokenID, err := authUC.ParseSession(cookie.Value); err == nil {
				if err := authUC.Logout(r.Context(), tokenID); err != nil {
					errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "failed to logout"), http.StatusInternalServerError)
					return
				}
			}
		}

		http.SetCookie(w, &http.Cookie{
			Name:     sessionCookie,
			Value:    "",
			Path:     "/",
			HttpOnly: true,
			Secure:   r.TLS != nil,
			SameSite: http.SameSiteLaxMode,
			MaxAge:   -1,
		})

		writeJSON(r.Context(), w, http.StatusOK, successResponse{Success: true})
	}
}

// authMeHandler returns the signed-in user. It runs behind authMiddleware.
func authMeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := auth.TokenFromContext(r.Context())
		if token == nil {
			writeJSON(r.Context(), w, http.StatusUnauthorized, errorResponse{Error: "Authentication required"})
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, meOf(token))
	}
}
