package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/coolAppl3/hangoutio/internal/api/ws"
	"github.com/coolAppl3/hangoutio/internal/models"
	"github.com/coolAppl3/hangoutio/internal/services"
	"github.com/coolAppl3/hangoutio/internal/utils"
	"gorm.io/gorm"
)

// HangoutWebSocket upgrades a member's connection for real-time hangout
// events. Both connection parameters are proven against the database on
// every handshake; the middleware cache is not trusted here because a kicked
// member must not be able to reattach.
func HangoutWebSocket(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	hangoutID := r.URL.Query().Get("hangoutId")
	if hangoutID == "" {
		respondBadRequest(w, "Hangout id is required.")
		return
	}

	memberID, err := strconv.ParseUint(r.URL.Query().Get("hangoutMemberId"), 10, 64)
	if err != nil {
		respondBadRequest(w, "Hangout member id is required.")
		return
	}

	var member models.HangoutMember
	err = db.First(&member, "hangout_id = ? AND user_kind = ? AND user_id = ?",
		hangoutID, identity.Kind, identity.ID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondError(w, http.StatusNotFound, services.ReasonNotFound, "Hangout not found.", nil)
			return
		}
		utils.RespondError(w, http.StatusInternalServerError, services.ReasonInternal, "Something went wrong.", nil)
		return
	}

	// The named member must be the caller's own membership row.
	if member.ID != uint(memberID) {
		utils.RespondError(w, http.StatusNotFound, services.ReasonNotFound, "Hangout not found.", nil)
		return
	}

	if err := ws.Serve(w, r, hangoutID, member.ID); err != nil {
		// Upgrade failures already wrote their own response.
		return
	}
}
