package handlers

import (
	"net/http"
	"strconv"

	"github.com/coolAppl3/hangoutio/internal/utils"
)

type sendMessageRequest struct {
	Content string `json:"content" validate:"required"`
}

func SendChatMessage(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	var req sendMessageRequest
	if err := decodeJSON(r, &req); err != nil {
		respondBadRequest(w, "Invalid message.")
		return
	}

	message, err := Svcs.Chat.Send(r.PathValue("hangoutId"), identity, req.Content)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusCreated, map[string]any{"message": message})
}

func ListChatMessages(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	messages, err := Svcs.Chat.List(r.PathValue("hangoutId"), identity, limit)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]any{"messages": messages})
}
