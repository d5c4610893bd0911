package api

import (
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/coolAppl3/hangoutio/internal/api/handlers"
	"github.com/coolAppl3/hangoutio/internal/api/middleware"
)

// public routes only pass the rate limiter.
func public(h http.HandlerFunc) http.Handler {
	return middleware.RateLimiter(h)
}

// authed routes require a session on top of the rate limiter.
func authed(h http.HandlerFunc) http.Handler {
	return middleware.RateLimiter(middleware.AuthenticateSession(h))
}

// member routes additionally require membership of the hangout in the path.
func member(h http.HandlerFunc) http.Handler {
	return middleware.RateLimiter(middleware.AuthenticateSession(middleware.HangoutMemberMiddleware(h)))
}

// chat routes swap the general limiter for the tighter chat limiter.
func chat(h http.HandlerFunc) http.Handler {
	return middleware.ChatRateLimiter(middleware.AuthenticateSession(middleware.HangoutMemberMiddleware(h)))
}

// NewRouter builds the full route table.
func NewRouter() http.Handler {
	mux := http.NewServeMux()

	// Accounts and sessions
	mux.Handle("POST /api/accounts/signup", public(handlers.SignUp))
	mux.Handle("POST /api/accounts/verification", public(handlers.VerifyEmail))
	mux.Handle("POST /api/accounts/signin", public(handlers.SignIn))
	mux.Handle("POST /api/guests/signin", public(handlers.SignInGuest))
	mux.Handle("POST /api/auth/signout", authed(handlers.SignOut))
	mux.Handle("PATCH /api/accounts/password", authed(handlers.ChangePassword))
	mux.Handle("DELETE /api/accounts", authed(handlers.DeleteAccount))

	// Hangouts
	mux.Handle("POST /api/hangouts", authed(handlers.CreateHangout))
	mux.Handle("GET /api/hangouts/{hangoutId}", member(handlers.GetHangout))
	mux.Handle("DELETE /api/hangouts/{hangoutId}", member(handlers.DeleteHangout))
	mux.Handle("PATCH /api/hangouts/{hangoutId}/title", member(handlers.UpdateHangoutTitle))
	mux.Handle("PATCH /api/hangouts/{hangoutId}/password", member(handlers.UpdateHangoutPassword))
	mux.Handle("PATCH /api/hangouts/{hangoutId}/membersLimit", member(handlers.UpdateHangoutMembersLimit))
	mux.Handle("PATCH /api/hangouts/{hangoutId}/periods", member(handlers.UpdateHangoutPeriods))
	mux.Handle("POST /api/hangouts/{hangoutId}/progress", member(handlers.ProgressHangoutStage))
	mux.Handle("GET /api/hangouts/{hangoutId}/events", member(handlers.ListHangoutEvents))

	// Membership; join routes run before membership exists
	mux.Handle("POST /api/hangouts/{hangoutId}/members", authed(handlers.JoinHangout))
	mux.Handle("POST /api/hangouts/{hangoutId}/guests", public(handlers.JoinHangoutAsGuest))
	mux.Handle("DELETE /api/hangouts/{hangoutId}/members", member(handlers.LeaveHangout))
	mux.Handle("DELETE /api/hangouts/{hangoutId}/members/{memberId}", member(handlers.KickMember))
	mux.Handle("PATCH /api/hangouts/{hangoutId}/members/displayName", member(handlers.UpdateMemberDisplayName))
	mux.Handle("POST /api/hangouts/{hangoutId}/leadership/transfer/{memberId}", member(handlers.TransferLeadership))
	mux.Handle("POST /api/hangouts/{hangoutId}/leadership/claim", member(handlers.ClaimLeadership))

	// Availability slots
	mux.Handle("POST /api/hangouts/{hangoutId}/availabilitySlots", member(handlers.AddAvailabilitySlot))
	mux.Handle("PATCH /api/hangouts/{hangoutId}/availabilitySlots/{slotId}", member(handlers.UpdateAvailabilitySlot))
	mux.Handle("DELETE /api/hangouts/{hangoutId}/availabilitySlots/{slotId}", member(handlers.DeleteAvailabilitySlot))
	mux.Handle("DELETE /api/hangouts/{hangoutId}/availabilitySlots", member(handlers.ClearAvailabilitySlots))

	// Suggestions and votes
	mux.Handle("POST /api/hangouts/{hangoutId}/suggestions", member(handlers.AddSuggestion))
	mux.Handle("GET /api/hangouts/{hangoutId}/suggestions", member(handlers.ListSuggestions))
	mux.Handle("PATCH /api/hangouts/{hangoutId}/suggestions/{suggestionId}", member(handlers.UpdateSuggestion))
	mux.Handle("DELETE /api/hangouts/{hangoutId}/suggestions/{suggestionId}", member(handlers.DeleteSuggestion))
	mux.Handle("POST /api/hangouts/{hangoutId}/suggestions/{suggestionId}/votes", member(handlers.AddVote))
	mux.Handle("DELETE /api/hangouts/{hangoutId}/suggestions/{suggestionId}/votes", member(handlers.RemoveVote))

	// Chat
	mux.Handle("POST /api/hangouts/{hangoutId}/chat", chat(handlers.SendChatMessage))
	mux.Handle("GET /api/hangouts/{hangoutId}/chat", chat(handlers.ListChatMessages))

	// Websocket handshake; rate limiting is skipped because the upgrade
	// response cannot carry a fresh rate cookie.
	mux.Handle("GET /ws/hangout", middleware.AuthenticateSession(http.HandlerFunc(handlers.HangoutWebSocket)))

	return middleware.CheckCORS(mux)
}

// NewServer starts the HTTP server on PORT (default 8080).
func NewServer() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	fmt.Printf("Server starting on port %s...\n", port)
	log.Fatal(http.ListenAndServe(":"+port, NewRouter()))
}
