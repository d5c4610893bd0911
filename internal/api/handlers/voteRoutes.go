package handlers

import (
	"net/http"

	"github.com/coolAppl3/hangoutio/internal/utils"
)

func AddVote(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	suggestionID, ok := pathID(w, r, "suggestionId")
	if !ok {
		return
	}

	vote, err := Svcs.Vote.Add(r.PathValue("hangoutId"), identity, suggestionID)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusCreated, map[string]any{"vote": vote})
}

func RemoveVote(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	suggestionID, ok := pathID(w, r, "suggestionId")
	if !ok {
		return
	}

	if err := Svcs.Vote.Remove(r.PathValue("hangoutId"), identity, suggestionID); err != nil {
		handleServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]any{"voteRemoved": true})
}
