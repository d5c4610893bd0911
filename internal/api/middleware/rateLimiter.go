package middleware

import (
	"net/http"

	"github.com/coolAppl3/hangoutio/internal/utils"
)

// RateLimiter enforces the general request budget per client.
func RateLimiter(next http.Handler) http.Handler {
	return rateLimit(next, false)
}

// ChatRateLimiter enforces the tighter chat budget. Chat routes pass through
// this instead of the general limiter, not in addition to it.
func ChatRateLimiter(next http.Handler) http.Handler {
	return rateLimit(next, true)
}

func rateLimit(next http.Handler, chat bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var rateID string
		if cookie, err := r.Cookie(utils.RateCookieName); err == nil {
			// A bad or forged signature counts as no cookie at all.
			if id, verifyErr := utils.VerifyRateID(cookie.Value); verifyErr == nil {
				rateID = id
			}
		}

		id, err := limiter.Track(rateID, chat)
		if id != rateID {
			if signed, signErr := utils.SignRateID(id); signErr == nil {
				utils.SetRateCookie(w, signed)
			}
		}
		if err != nil {
			respondServiceError(w, err)
			return
		}

		next.ServeHTTP(w, r)
	})
}
