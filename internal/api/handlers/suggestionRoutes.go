package handlers

import (
	"net/http"
	"time"

	"github.com/coolAppl3/hangoutio/internal/utils"
)

type suggestionRequest struct {
	Title          string    `json:"title" validate:"required,min=3,max=40"`
	Description    string    `json:"description" validate:"required,min=10,max=500"`
	StartTimestamp time.Time `json:"startTimestamp" validate:"required"`
	EndTimestamp   time.Time `json:"endTimestamp" validate:"required"`
}

func AddSuggestion(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	var req suggestionRequest
	if err := decodeJSON(r, &req); err != nil {
		respondBadRequest(w, "Invalid suggestion details.")
		return
	}

	suggestion, err := Svcs.Suggestion.Add(r.PathValue("hangoutId"), identity, req.Title, req.Description, req.StartTimestamp, req.EndTimestamp)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusCreated, map[string]any{"suggestion": suggestion})
}

func UpdateSuggestion(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	suggestionID, ok := pathID(w, r, "suggestionId")
	if !ok {
		return
	}

	var req suggestionRequest
	if err := decodeJSON(r, &req); err != nil {
		respondBadRequest(w, "Invalid suggestion details.")
		return
	}

	suggestion, err := Svcs.Suggestion.Update(r.PathValue("hangoutId"), identity, suggestionID, req.Title, req.Description, req.StartTimestamp, req.EndTimestamp)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]any{"suggestion": suggestion})
}

func DeleteSuggestion(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	suggestionID, ok := pathID(w, r, "suggestionId")
	if !ok {
		return
	}

	if err := Svcs.Suggestion.Delete(r.PathValue("hangoutId"), identity, suggestionID); err != nil {
		handleServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]any{"suggestionDeleted": true})
}

func ListSuggestions(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	suggestions, voteCounts, err := Svcs.Suggestion.List(r.PathValue("hangoutId"), identity)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]any{"suggestions": suggestions, "voteCounts": voteCounts})
}
