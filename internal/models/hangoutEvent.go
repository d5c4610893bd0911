package models

import (
	"time"
)

// HangoutEvent is an append-only audit log entry for a hangout.
type HangoutEvent struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	HangoutID   string    `gorm:"type:varchar(48);not null;index" json:"hangoutId"`
	Hangout     Hangout   `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Description string    `gorm:"type:varchar(500);not null" json:"description"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"createdAt"`
}
