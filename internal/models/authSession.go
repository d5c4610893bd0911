package models

import (
	"time"
)

const (
	SessionMaxAge         = 6 * time.Hour
	SessionMaxAgeExtended = 7 * 24 * time.Hour
)

type AuthSession struct {
	Token     string    `gorm:"primaryKey;type:varchar(40)" json:"-"`
	UserKind  UserKind  `gorm:"type:varchar(10);not null;index:idx_session_user" json:"userKind"`
	UserID    uint      `gorm:"not null;index:idx_session_user" json:"userId"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	ExpiresAt time.Time `gorm:"not null;index" json:"expiresAt"`
}

func (s *AuthSession) Identity() Identity {
	return Identity{Kind: s.UserKind, ID: s.UserID}
}
