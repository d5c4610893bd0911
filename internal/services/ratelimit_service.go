package services

import (
	"errors"
	"net/http"
	"time"

	"github.com/coolAppl3/hangoutio/internal/models"
	"github.com/coolAppl3/hangoutio/internal/utils"
	"gorm.io/gorm"
)

// RateLimitService keeps one decaying counter pair per client. Requests
// increment even when rejected, so hammering keeps counting against the
// client; the periodic decay halves counters instead of tracking per-request
// timestamps.
type RateLimitService struct {
	db *gorm.DB
}

func NewRateLimitService(db *gorm.DB) *RateLimitService {
	return &RateLimitService{db: db}
}

var errRateLimited = &ServiceError{
	Status:  http.StatusTooManyRequests,
	Reason:  ReasonRateLimited,
	Message: "Too many requests. Slow down and try again shortly.",
}

// Track records one request against the given rate id and reports whether it
// may proceed. An empty or unknown id gets a fresh row and is allowed; the
// returned id is the one the caller must re-bind to the client's cookie.
func (s *RateLimitService) Track(rateID string, chat bool) (string, error) {
	if rateID == "" {
		rateID = utils.GenerateRateID()
	}

	var limited bool
	err := serializable(s.db, func(tx *gorm.DB) error {
		var row models.RateTracker
		err := tx.First(&row, "rate_id = ?", rateID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			row = models.RateTracker{RateID: rateID, WindowStartedAt: time.Now()}
			if chat {
				row.ChatCount = 1
			} else {
				row.GeneralCount = 1
			}
			return tx.Create(&row).Error
		}
		if err != nil {
			return err
		}

		count, limit := row.GeneralCount, models.GeneralRequestsLimit
		if chat {
			count, limit = row.ChatCount, models.ChatRequestsLimit
		}
		limited = count >= limit

		column := "general_count"
		if chat {
			column = "chat_count"
		}
		return tx.Model(&models.RateTracker{}).
			Where("rate_id = ?", rateID).
			Update(column, gorm.Expr(column+" + 1")).Error
	})
	if err != nil {
		return rateID, err
	}
	if limited {
		return rateID, errRateLimited
	}
	return rateID, nil
}

// Decay is the cron sweep: halve the counters of rows whose window has aged
// out, then drop rows that have sat at zero long enough. Rows already at
// zero keep their window timestamp so they can go stale and be deleted.
func (s *RateLimitService) Decay(now time.Time) error {
	windowCutoff := now.Add(-models.RateWindow)
	staleCutoff := now.Add(-models.RateStaleCutoff)

	err := s.db.Model(&models.RateTracker{}).
		Where("window_started_at <= ? AND (general_count > 0 OR chat_count > 0)", windowCutoff).
		Updates(map[string]any{
			"general_count":     gorm.Expr("general_count / 2"),
			"chat_count":        gorm.Expr("chat_count / 2"),
			"window_started_at": now,
		}).Error
	if err != nil {
		return err
	}

	return s.db.Delete(&models.RateTracker{},
		"general_count = 0 AND chat_count = 0 AND window_started_at <= ?", staleCutoff).Error
}
