package models

import (
	"time"
)

type HangoutMember struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	HangoutID   string    `gorm:"type:varchar(48);not null;index:idx_hangout_user,unique" json:"hangoutId"`
	Hangout     Hangout   `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	UserKind    UserKind  `gorm:"type:varchar(10);not null;index:idx_hangout_user,unique" json:"userKind"`
	UserID      uint      `gorm:"not null;index:idx_hangout_user,unique" json:"userId"`
	DisplayName string    `gorm:"type:varchar(40);not null" json:"displayName"`
	IsLeader    bool      `gorm:"not null;default:false" json:"isLeader"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

func (m *HangoutMember) Identity() Identity {
	return Identity{Kind: m.UserKind, ID: m.UserID}
}
