package handlers

import (
	"net/http"
	"time"

	"github.com/coolAppl3/hangoutio/internal/utils"
)

type slotRequest struct {
	StartTimestamp time.Time `json:"startTimestamp" validate:"required"`
	EndTimestamp   time.Time `json:"endTimestamp" validate:"required"`
}

func AddAvailabilitySlot(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	var req slotRequest
	if err := decodeJSON(r, &req); err != nil {
		respondBadRequest(w, "Invalid slot details.")
		return
	}

	slot, err := Svcs.Availability.Add(r.PathValue("hangoutId"), identity, req.StartTimestamp, req.EndTimestamp)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusCreated, map[string]any{"slot": slot})
}

func UpdateAvailabilitySlot(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	slotID, ok := pathID(w, r, "slotId")
	if !ok {
		return
	}

	var req slotRequest
	if err := decodeJSON(r, &req); err != nil {
		respondBadRequest(w, "Invalid slot details.")
		return
	}

	slot, err := Svcs.Availability.Update(r.PathValue("hangoutId"), identity, slotID, req.StartTimestamp, req.EndTimestamp)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]any{"slot": slot})
}

func DeleteAvailabilitySlot(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	slotID, ok := pathID(w, r, "slotId")
	if !ok {
		return
	}

	if err := Svcs.Availability.Delete(r.PathValue("hangoutId"), identity, slotID); err != nil {
		handleServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]any{"slotDeleted": true})
}

func ClearAvailabilitySlots(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	deleted, err := Svcs.Availability.Clear(r.PathValue("hangoutId"), identity)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]any{"slotsDeleted": deleted})
}
