package models

import (
	"time"
)

// Guest is a single-hangout identity created on guest join and deleted with
// its membership.
type Guest struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Username    string    `gorm:"type:varchar(40);not null;uniqueIndex" json:"username"`
	DisplayName string    `gorm:"type:varchar(40);not null" json:"displayName"`
	Password    string    `gorm:"type:varchar(100);not null" json:"-"`
	HangoutID   string    `gorm:"type:varchar(48);not null;index" json:"hangoutId"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"createdAt"`
}
