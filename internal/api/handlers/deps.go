package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/coolAppl3/hangoutio/internal/models"
	"github.com/coolAppl3/hangoutio/internal/services"
	"github.com/coolAppl3/hangoutio/internal/utils"
	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

// Svcs holds initialized service singletons for handlers to use.
var Svcs struct {
	Auth         *services.AuthService
	Hangout      *services.HangoutService
	Member       *services.MemberService
	Stage        *services.StageService
	Availability *services.AvailabilityService
	Suggestion   *services.SuggestionService
	Vote         *services.VoteService
	Chat         *services.ChatService
	RateLimit    *services.RateLimitService
}

var (
	db       *gorm.DB
	validate = validator.New()
)

func InitHandlers(gdb *gorm.DB, notify services.Notifier) {
	db = gdb
	if notify == nil {
		notify = func(string, services.Event) {}
	}

	Svcs.Auth = services.NewAuthService(gdb)
	Svcs.Hangout = services.NewHangoutService(gdb, notify)
	Svcs.Member = services.NewMemberService(gdb, notify)
	Svcs.Stage = services.NewStageService(gdb, notify)
	Svcs.Availability = services.NewAvailabilityService(gdb, notify)
	Svcs.Suggestion = services.NewSuggestionService(gdb, notify)
	Svcs.Vote = services.NewVoteService(gdb, notify)
	Svcs.Chat = services.NewChatService(gdb, notify)
	Svcs.RateLimit = services.NewRateLimitService(gdb)
}

// decodeJSON decodes the request body into dst and runs struct validation.
func decodeJSON(r *http.Request, dst any) error {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return err
	}
	return validate.Struct(dst)
}

func respondBadRequest(w http.ResponseWriter, message string) {
	utils.RespondError(w, http.StatusBadRequest, services.ReasonValidation, message, nil)
}

// handleServiceError maps a service failure onto the wire error shape.
func handleServiceError(w http.ResponseWriter, err error) {
	if svcErr, ok := services.AsServiceError(err); ok {
		utils.RespondError(w, svcErr.Status, svcErr.Reason, svcErr.Message, svcErr.Data)
		return
	}
	utils.RespondError(w, http.StatusInternalServerError, services.ReasonInternal, "Something went wrong.", nil)
}

func identityFrom(r *http.Request) (models.Identity, bool) {
	identity, ok := r.Context().Value("identity").(models.Identity)
	return identity, ok
}

func memberFrom(r *http.Request) (models.HangoutMember, bool) {
	member, ok := r.Context().Value("member").(models.HangoutMember)
	return member, ok
}

// pathID parses a numeric path segment; responds with 400 on garbage.
func pathID(w http.ResponseWriter, r *http.Request, name string) (uint, bool) {
	id, err := strconv.Atoi(r.PathValue(name))
	if err != nil || id <= 0 {
		respondBadRequest(w, "Invalid "+name+".")
		return 0, false
	}
	return uint(id), true
}

func requireIdentity(w http.ResponseWriter, r *http.Request) (models.Identity, bool) {
	identity, ok := identityFrom(r)
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, services.ReasonAuthRequired, "Sign in required.", nil)
	}
	return identity, ok
}
