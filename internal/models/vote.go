package models

import (
	"time"
)

const MaxVotesPerMember = 3

type Vote struct {
	ID              uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	HangoutMemberID uint       `gorm:"not null;index:idx_member_suggestion,unique" json:"hangoutMemberId"`
	SuggestionID    uint       `gorm:"not null;index:idx_member_suggestion,unique" json:"suggestionId"`
	Suggestion      Suggestion `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	HangoutID       string     `gorm:"type:varchar(48);not null;index" json:"hangoutId"`
	CreatedAt       time.Time  `gorm:"autoCreateTime" json:"createdAt"`
}
