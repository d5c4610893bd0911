package models

import (
	"time"
)

type ChatMessage struct {
	ID              uint          `gorm:"primaryKey;autoIncrement" json:"id"`
	HangoutMemberID uint          `gorm:"not null;index" json:"hangoutMemberId"`
	HangoutMember   HangoutMember `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	HangoutID       string        `gorm:"type:varchar(48);not null;index" json:"hangoutId"`
	Content         string        `gorm:"type:varchar(2000);not null" json:"content"`
	CreatedAt       time.Time     `gorm:"autoCreateTime" json:"createdAt"`
}

// ChatMessageWithAuthor is the read shape joined with the author's name.
type ChatMessageWithAuthor struct {
	Content     string    `json:"content"`
	CreatedAt   time.Time `json:"createdAt"`
	DisplayName string    `json:"displayName"`
}
