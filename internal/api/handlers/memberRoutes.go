package handlers

import (
	"net/http"

	"github.com/coolAppl3/hangoutio/internal/models"
	"github.com/coolAppl3/hangoutio/internal/services"
	"github.com/coolAppl3/hangoutio/internal/utils"
)

type joinHangoutRequest struct {
	Password string `json:"password"`
}

// JoinHangout adds the signed-in account to the hangout.
func JoinHangout(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	if identity.Kind != models.UserKindAccount {
		utils.RespondError(w, http.StatusForbidden, services.ReasonGuestBound, "Guests are bound to the hangout they joined through.", nil)
		return
	}

	var req joinHangoutRequest
	if err := decodeJSON(r, &req); err != nil {
		respondBadRequest(w, "Invalid join details.")
		return
	}

	member, err := Svcs.Member.JoinAsAccount(r.PathValue("hangoutId"), identity.ID, req.Password)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusCreated, map[string]any{"member": member})
}

type joinAsGuestRequest struct {
	Username        string `json:"username" validate:"required,min=3,max=25"`
	DisplayName     string `json:"displayName" validate:"required,min=1,max=25"`
	Password        string `json:"password" validate:"required"`
	HangoutPassword string `json:"hangoutPassword"`
}

// JoinHangoutAsGuest creates a guest identity bound to this hangout, joins
// it, and signs the new guest in.
func JoinHangoutAsGuest(w http.ResponseWriter, r *http.Request) {
	var req joinAsGuestRequest
	if err := decodeJSON(r, &req); err != nil {
		respondBadRequest(w, "Invalid guest details.")
		return
	}

	guest, member, err := Svcs.Member.JoinAsGuest(r.PathValue("hangoutId"), req.Username, req.DisplayName, req.Password, req.HangoutPassword)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	session, err := Svcs.Auth.CreateSession(models.Identity{Kind: models.UserKindGuest, ID: guest.ID}, false)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	utils.SetSessionCookie(w, session.Token, models.SessionMaxAge)
	utils.RespondJSON(w, http.StatusCreated, map[string]any{"guest": guest, "member": member})
}

func LeaveHangout(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	hangoutDeleted, err := Svcs.Member.Leave(r.PathValue("hangoutId"), identity)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if identity.Kind == models.UserKindGuest {
		// Guest identities do not outlive their membership.
		utils.ClearSessionCookie(w)
	}
	utils.RespondJSON(w, http.StatusOK, map[string]any{"left": true, "hangoutDeleted": hangoutDeleted})
}

func KickMember(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	memberID, ok := pathID(w, r, "memberId")
	if !ok {
		return
	}

	hangoutDeleted, err := Svcs.Member.Kick(r.PathValue("hangoutId"), identity, memberID)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]any{"kicked": true, "hangoutDeleted": hangoutDeleted})
}

func TransferLeadership(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	memberID, ok := pathID(w, r, "memberId")
	if !ok {
		return
	}

	if err := Svcs.Member.TransferLeadership(r.PathValue("hangoutId"), identity, memberID); err != nil {
		handleServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]any{"leadershipTransferred": true})
}

func ClaimLeadership(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	if err := Svcs.Member.ClaimLeadership(r.PathValue("hangoutId"), identity); err != nil {
		handleServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]any{"leadershipClaimed": true})
}

type updateDisplayNameRequest struct {
	DisplayName string `json:"displayName" validate:"required,min=1,max=25"`
}

func UpdateMemberDisplayName(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	var req updateDisplayNameRequest
	if err := decodeJSON(r, &req); err != nil {
		respondBadRequest(w, "Invalid display name.")
		return
	}

	member, err := Svcs.Member.UpdateDisplayName(r.PathValue("hangoutId"), identity, req.DisplayName)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]any{"member": member})
}
