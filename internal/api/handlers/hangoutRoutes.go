package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/coolAppl3/hangoutio/internal/models"
	"github.com/coolAppl3/hangoutio/internal/services"
	"github.com/coolAppl3/hangoutio/internal/utils"
)

const day = 24 * time.Hour

type createHangoutRequest struct {
	Title                  string `json:"title" validate:"required,min=3,max=25"`
	Password               string `json:"password"`
	MembersLimit           int    `json:"membersLimit" validate:"required"`
	AvailabilityPeriodDays int    `json:"availabilityPeriodDays" validate:"required,min=1,max=14"`
	SuggestionsPeriodDays  int    `json:"suggestionsPeriodDays" validate:"required,min=1,max=14"`
	VotingPeriodDays       int    `json:"votingPeriodDays" validate:"required,min=1,max=14"`
}

func CreateHangout(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	if identity.Kind != models.UserKindAccount {
		utils.RespondError(w, http.StatusForbidden, services.ReasonForbidden, "Guests cannot create hangouts.", nil)
		return
	}

	var req createHangoutRequest
	if err := decodeJSON(r, &req); err != nil {
		respondBadRequest(w, "Invalid hangout details.")
		return
	}

	hangout, leader, err := Svcs.Hangout.Create(identity.ID, services.CreateHangoutInput{
		Title:              req.Title,
		Password:           req.Password,
		MembersLimit:       req.MembersLimit,
		AvailabilityPeriod: time.Duration(req.AvailabilityPeriodDays) * day,
		SuggestionsPeriod:  time.Duration(req.SuggestionsPeriodDays) * day,
		VotingPeriod:       time.Duration(req.VotingPeriodDays) * day,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusCreated, map[string]any{"hangout": hangout, "member": leader})
}

func GetHangout(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	details, err := Svcs.Hangout.GetDetails(r.PathValue("hangoutId"), identity)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, details)
}

func DeleteHangout(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	if err := Svcs.Hangout.Delete(r.PathValue("hangoutId"), identity); err != nil {
		handleServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]any{"hangoutDeleted": true})
}

type updateTitleRequest struct {
	Title string `json:"title" validate:"required,min=3,max=25"`
}

func UpdateHangoutTitle(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	var req updateTitleRequest
	if err := decodeJSON(r, &req); err != nil {
		respondBadRequest(w, "Invalid title.")
		return
	}

	if err := Svcs.Hangout.UpdateTitle(r.PathValue("hangoutId"), identity, req.Title); err != nil {
		handleServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]any{"title": req.Title})
}

type updatePasswordRequest struct {
	NewPassword string `json:"newPassword"`
}

func UpdateHangoutPassword(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	var req updatePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		respondBadRequest(w, "Invalid password details.")
		return
	}

	if err := Svcs.Hangout.UpdatePassword(r.PathValue("hangoutId"), identity, req.NewPassword); err != nil {
		handleServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]any{"passwordUpdated": true})
}

type updateMembersLimitRequest struct {
	MembersLimit int `json:"membersLimit" validate:"required"`
}

func UpdateHangoutMembersLimit(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	var req updateMembersLimitRequest
	if err := decodeJSON(r, &req); err != nil {
		respondBadRequest(w, "Invalid members limit.")
		return
	}

	if err := Svcs.Hangout.UpdateMembersLimit(r.PathValue("hangoutId"), identity, req.MembersLimit); err != nil {
		handleServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]any{"membersLimit": req.MembersLimit})
}

type updatePeriodsRequest struct {
	AvailabilityPeriodDays int `json:"availabilityPeriodDays" validate:"required,min=1,max=14"`
	SuggestionsPeriodDays  int `json:"suggestionsPeriodDays" validate:"required,min=1,max=14"`
	VotingPeriodDays       int `json:"votingPeriodDays" validate:"required,min=1,max=14"`
}

func UpdateHangoutPeriods(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	var req updatePeriodsRequest
	if err := decodeJSON(r, &req); err != nil {
		respondBadRequest(w, "Invalid stage periods.")
		return
	}

	err := Svcs.Hangout.UpdatePeriods(r.PathValue("hangoutId"), identity,
		time.Duration(req.AvailabilityPeriodDays)*day,
		time.Duration(req.SuggestionsPeriodDays)*day,
		time.Duration(req.VotingPeriodDays)*day)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]any{"periodsUpdated": true})
}

// ProgressHangoutStage advances the hangout to its next stage ahead of
// schedule; leaders only.
func ProgressHangoutStage(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	hangout, err := Svcs.Stage.Progress(r.PathValue("hangoutId"), identity)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]any{"hangout": hangout, "conclusion": hangout.Conclusion()})
}

func ListHangoutEvents(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	events, err := Svcs.Hangout.ListEvents(r.PathValue("hangoutId"), identity, limit)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]any{"events": events})
}
