package models

import (
	"time"
)

const MaxSuggestionsPerMember = 3

type Suggestion struct {
	ID              uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	HangoutMemberID *uint     `gorm:"index" json:"hangoutMemberId"` // nil once the author left
	HangoutID       string    `gorm:"type:varchar(48);not null;index" json:"hangoutId"`
	Hangout         Hangout   `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Title           string    `gorm:"type:varchar(40);not null" json:"title"`
	Description     string    `gorm:"type:varchar(500);not null" json:"description"`
	StartTimestamp  time.Time `gorm:"not null" json:"startTimestamp"`
	EndTimestamp    time.Time `gorm:"not null" json:"endTimestamp"`
	IsEdited        bool      `gorm:"not null;default:false" json:"isEdited"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"createdAt"`
}
