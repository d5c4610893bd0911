package models

import (
	"time"
)

// Hangout stages, strictly forward.
const (
	StageAvailability = 1
	StageSuggestions  = 2
	StageVoting       = 3
	StageConcluded    = 4
)

const (
	MinMembersLimit = 2
	MaxMembersLimit = 20

	MinStagePeriod = 24 * time.Hour
	MaxStagePeriod = 14 * 24 * time.Hour
)

type Hangout struct {
	ID                 string        `gorm:"primaryKey;type:varchar(48)" json:"id"`
	Title              string        `gorm:"type:varchar(100);not null" json:"title"`
	PasswordHash       *string       `gorm:"type:varchar(100)" json:"-"`
	MembersLimit       int           `gorm:"not null" json:"membersLimit"`
	AvailabilityPeriod time.Duration `gorm:"not null" json:"availabilityPeriod"`
	SuggestionsPeriod  time.Duration `gorm:"not null" json:"suggestionsPeriod"`
	VotingPeriod       time.Duration `gorm:"not null" json:"votingPeriod"`
	CurrentStage       int           `gorm:"not null;default:1" json:"currentStage"`
	StageStartedAt     time.Time     `gorm:"not null" json:"stageStartedAt"`
	IsConcluded        bool          `gorm:"not null;default:false" json:"isConcluded"`
	CreatedAt          time.Time     `gorm:"autoCreateTime" json:"createdAt"`
}

// StagePeriod returns the configured duration of the given stage.
func (h *Hangout) StagePeriod(stage int) time.Duration {
	switch stage {
	case StageAvailability:
		return h.AvailabilityPeriod
	case StageSuggestions:
		return h.SuggestionsPeriod
	case StageVoting:
		return h.VotingPeriod
	}
	return 0
}

// Conclusion projects the timestamp at which the hangout concludes: the start
// of the current stage plus every remaining stage period. For a concluded
// hangout this is the moment voting ended.
func (h *Hangout) Conclusion() time.Time {
	t := h.StageStartedAt
	for stage := h.CurrentStage; stage <= StageVoting; stage++ {
		t = t.Add(h.StagePeriod(stage))
	}
	return t
}

// StageDueAt is when the current stage runs out of time.
func (h *Hangout) StageDueAt() time.Time {
	return h.StageStartedAt.Add(h.StagePeriod(h.CurrentStage))
}

func (h *Hangout) HasPassword() bool { return h.PasswordHash != nil && *h.PasswordHash != "" }
