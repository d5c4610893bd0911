package handlers

import (
	"net/http"

	"github.com/coolAppl3/hangoutio/internal/mailer"
	"github.com/coolAppl3/hangoutio/internal/models"
	"github.com/coolAppl3/hangoutio/internal/services"
	"github.com/coolAppl3/hangoutio/internal/utils"
)

type signUpRequest struct {
	Username    string `json:"username" validate:"required,min=3,max=25"`
	DisplayName string `json:"displayName" validate:"required,min=1,max=25"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required"`
}

func SignUp(w http.ResponseWriter, r *http.Request) {
	var req signUpRequest
	if err := decodeJSON(r, &req); err != nil {
		respondBadRequest(w, "Invalid sign up details.")
		return
	}

	account, code, err := Svcs.Auth.SignUp(req.Username, req.DisplayName, req.Email, req.Password)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	mailer.Default.SendVerificationCode(account.Email, code)

	utils.RespondJSON(w, http.StatusCreated, map[string]any{"account": account})
}

type verifyEmailRequest struct {
	AccountID        uint   `json:"accountId" validate:"required"`
	VerificationCode string `json:"verificationCode" validate:"required"`
}

func VerifyEmail(w http.ResponseWriter, r *http.Request) {
	var req verifyEmailRequest
	if err := decodeJSON(r, &req); err != nil {
		respondBadRequest(w, "Invalid verification details.")
		return
	}

	if err := Svcs.Auth.VerifyEmail(req.AccountID, req.VerificationCode); err != nil {
		handleServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]any{"verified": true})
}

type signInRequest struct {
	Username     string `json:"username" validate:"required"`
	Password     string `json:"password" validate:"required"`
	KeepSignedIn bool   `json:"keepSignedIn"`
}

func SignIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if err := decodeJSON(r, &req); err != nil {
		respondBadRequest(w, "Invalid sign in details.")
		return
	}

	account, session, err := Svcs.Auth.SignIn(req.Username, req.Password, req.KeepSignedIn)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	maxAge := models.SessionMaxAge
	if req.KeepSignedIn {
		maxAge = models.SessionMaxAgeExtended
	}
	utils.SetSessionCookie(w, session.Token, maxAge)
	utils.RespondJSON(w, http.StatusOK, map[string]any{"account": account})
}

type guestSignInRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func SignInGuest(w http.ResponseWriter, r *http.Request) {
	var req guestSignInRequest
	if err := decodeJSON(r, &req); err != nil {
		respondBadRequest(w, "Invalid sign in details.")
		return
	}

	guest, session, err := Svcs.Auth.SignInGuest(req.Username, req.Password)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	utils.SetSessionCookie(w, session.Token, models.SessionMaxAge)
	utils.RespondJSON(w, http.StatusOK, map[string]any{"guest": guest})
}

func SignOut(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(utils.SessionCookieName); err == nil && cookie.Value != "" {
		if err := Svcs.Auth.DestroySession(cookie.Value); err != nil {
			handleServiceError(w, err)
			return
		}
	}
	utils.ClearSessionCookie(w)
	utils.RespondJSON(w, http.StatusOK, map[string]any{"signedOut": true})
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required"`
}

func ChangePassword(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	if identity.Kind != models.UserKindAccount {
		utils.RespondError(w, http.StatusForbidden, services.ReasonForbidden, "Guests cannot change their password.", nil)
		return
	}

	var req changePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		respondBadRequest(w, "Invalid password details.")
		return
	}

	if err := Svcs.Auth.ChangePassword(identity.ID, req.CurrentPassword, req.NewPassword); err != nil {
		handleServiceError(w, err)
		return
	}

	// Every session was purged, including this one.
	utils.ClearSessionCookie(w)
	utils.RespondJSON(w, http.StatusOK, map[string]any{"passwordChanged": true})
}

func DeleteAccount(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	if identity.Kind != models.UserKindAccount {
		utils.RespondError(w, http.StatusForbidden, services.ReasonForbidden, "Guests cannot delete an account.", nil)
		return
	}

	email, err := Svcs.Member.DeleteAccount(identity.ID)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	mailer.Default.SendAccountDeleted(email)

	utils.ClearSessionCookie(w)
	utils.RespondJSON(w, http.StatusOK, map[string]any{"accountDeleted": true})
}
