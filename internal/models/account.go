package models

import (
	"time"
)

// OngoingHangoutsLimit caps how many unconcluded hangouts a registered
// account may belong to at once.
const OngoingHangoutsLimit = 12

type Account struct {
	ID               uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	Username         string     `gorm:"type:varchar(40);not null;uniqueIndex" json:"username"`
	DisplayName      string     `gorm:"type:varchar(40);not null" json:"displayName"`
	Email            string     `gorm:"type:varchar(100);not null;uniqueIndex" json:"email"`
	Password         string     `gorm:"type:varchar(100);not null" json:"-"`
	IsVerified       bool       `gorm:"not null;default:false" json:"isVerified"`
	VerificationCode *string    `gorm:"type:varchar(40)" json:"-"`
	CreatedAt        time.Time  `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt        time.Time  `gorm:"autoUpdateTime" json:"updatedAt"`
	LastLogin        *time.Time `json:"lastLogin"`
}
