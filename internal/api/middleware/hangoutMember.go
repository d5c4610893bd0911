package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/coolAppl3/hangoutio/internal/models"
	"github.com/coolAppl3/hangoutio/internal/services"
	"github.com/coolAppl3/hangoutio/internal/utils"
	"gorm.io/gorm"
)

// HangoutMemberMiddleware verifies that the authenticated identity belongs to
// the hangout in the path and stores the membership row in the context under
// "member". Positive lookups are cached briefly; leave/kick invalidate the
// cache so removals take effect right away.
func HangoutMemberMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := r.Context().Value("identity").(models.Identity)
		if !ok {
			utils.RespondError(w, http.StatusUnauthorized, services.ReasonAuthRequired, "Sign in required.", nil)
			return
		}

		hangoutID := r.PathValue("hangoutId")
		if hangoutID == "" {
			utils.RespondError(w, http.StatusBadRequest, services.ReasonValidation, "Hangout id is required.", nil)
			return
		}

		cacheKey := utils.MembershipCacheKey(string(identity.Kind), identity.ID, hangoutID)
		if cached, found := utils.MembershipCache.Get(cacheKey); found {
			if member, ok := cached.(models.HangoutMember); ok {
				ctx := context.WithValue(r.Context(), "member", member)
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}
		}

		var member models.HangoutMember
		err := db.First(&member, "hangout_id = ? AND user_kind = ? AND user_id = ?",
			hangoutID, identity.Kind, identity.ID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				// Non-members cannot tell a hangout they were kicked from
				// apart from one that never existed.
				utils.RespondError(w, http.StatusNotFound, services.ReasonNotFound, "Hangout not found.", nil)
			} else {
				utils.RespondError(w, http.StatusInternalServerError, services.ReasonInternal, "Something went wrong.", nil)
			}
			return
		}

		utils.MembershipCache.Set(cacheKey, member, time.Minute*5)
		ctx := context.WithValue(r.Context(), "member", member)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
