package middleware

import (
	"context"
	"net/http"

	"github.com/coolAppl3/hangoutio/internal/services"
	"github.com/coolAppl3/hangoutio/internal/utils"
)

// AuthenticateSession resolves the session cookie to an identity and stores
// it in the request context under "identity". The cookie is cleared whenever
// the session is missing, unknown or expired.
func AuthenticateSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(utils.SessionCookieName)
		if err != nil || cookie.Value == "" {
			utils.RespondError(w, http.StatusUnauthorized, services.ReasonAuthRequired, "Sign in required.", nil)
			return
		}

		identity, err := auth.ValidateSession(cookie.Value)
		if err != nil {
			utils.ClearSessionCookie(w)
			respondServiceError(w, err)
			return
		}

		ctx := context.WithValue(r.Context(), "identity", identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
