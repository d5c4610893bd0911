package models

import (
	"time"
)

const (
	MinSlotLength     = time.Hour
	MaxSlotLength     = 24 * time.Hour
	SlotWindowCeiling = 6 * 30 * 24 * time.Hour // 6 months past conclusion
	MaxSlotsPerMember = 10
)

type AvailabilitySlot struct {
	ID              uint          `gorm:"primaryKey;autoIncrement" json:"id"`
	HangoutMemberID uint          `gorm:"not null;index" json:"hangoutMemberId"`
	HangoutMember   HangoutMember `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	HangoutID       string        `gorm:"type:varchar(48);not null;index" json:"hangoutId"`
	StartTimestamp  time.Time     `gorm:"not null" json:"startTimestamp"`
	EndTimestamp    time.Time     `gorm:"not null" json:"endTimestamp"`
	CreatedAt       time.Time     `gorm:"autoCreateTime" json:"createdAt"`
}
