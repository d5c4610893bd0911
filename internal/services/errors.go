package services

import (
	"errors"
	"net/http"
)

// Machine-readable reason codes carried on every rejected operation so
// clients can branch without string matching.
const (
	ReasonValidation     = "validation"
	ReasonAuthRequired   = "authRequired"
	ReasonSessionExpired = "sessionExpired"
	ReasonForbidden      = "forbidden"
	ReasonNotFound       = "notFound"
	ReasonHangoutFull    = "hangoutFull"
	ReasonAlreadyMember  = "alreadyMember"
	ReasonWrongPassword  = "wrongPassword"
	ReasonOngoingLimit   = "ongoingHangoutsLimit"
	ReasonGuestBound     = "guestSingleHangout"
	ReasonWrongStage     = "wrongStage"
	ReasonConcluded      = "hangoutConcluded"
	ReasonNotLeader      = "notLeader"
	ReasonLeaderExists   = "leaderExists"
	ReasonSlotOverlap    = "slotOverlap"
	ReasonSlotLimit      = "slotLimit"
	ReasonSuggestionCap  = "suggestionLimit"
	ReasonVoteCap        = "voteLimit"
	ReasonDuplicateVote  = "duplicateVote"
	ReasonNotEligible    = "noOverlappingAvailability"
	ReasonRateLimited    = "rateLimited"
	ReasonInternal       = "internal"
)

// ServiceError is a caller-visible failure: an HTTP status, a reason code and
// a message, plus optional data (e.g. the conflicting slot on an overlap).
type ServiceError struct {
	Status  int
	Reason  string
	Message string
	Data    any
}

func (e *ServiceError) Error() string { return e.Message }

// AsServiceError unwraps err into a *ServiceError if it carries one.
func AsServiceError(err error) (*ServiceError, bool) {
	var se *ServiceError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

func errValidation(message string) *ServiceError {
	return &ServiceError{Status: http.StatusBadRequest, Reason: ReasonValidation, Message: message}
}

func errAuth(reason, message string) *ServiceError {
	return &ServiceError{Status: http.StatusUnauthorized, Reason: reason, Message: message}
}

func errForbidden(reason, message string) *ServiceError {
	return &ServiceError{Status: http.StatusForbidden, Reason: reason, Message: message}
}

// errNotFound covers both absent resources and resources the caller is not
// entitled to see; the two are intentionally indistinguishable.
func errNotFound(message string) *ServiceError {
	return &ServiceError{Status: http.StatusNotFound, Reason: ReasonNotFound, Message: message}
}

func errConflict(reason, message string) *ServiceError {
	return &ServiceError{Status: http.StatusConflict, Reason: reason, Message: message}
}

func errConflictData(reason, message string, data any) *ServiceError {
	return &ServiceError{Status: http.StatusConflict, Reason: reason, Message: message, Data: data}
}
