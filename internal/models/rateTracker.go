package models

import (
	"time"
)

const (
	GeneralRequestsLimit = 40
	ChatRequestsLimit    = 20

	RateWindow      = time.Minute
	RateStaleCutoff = time.Hour
)

// RateTracker is the decaying per-client request counter pair. One row per
// rate cookie; counts never go negative.
type RateTracker struct {
	RateID          string    `gorm:"primaryKey;type:varchar(40)" json:"-"`
	GeneralCount    int       `gorm:"not null;default:0" json:"generalCount"`
	ChatCount       int       `gorm:"not null;default:0" json:"chatCount"`
	WindowStartedAt time.Time `gorm:"not null;index" json:"windowStartedAt"`
}
