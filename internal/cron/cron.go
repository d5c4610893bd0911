package cron

import (
	"log"
	"time"

	"github.com/coolAppl3/hangoutio/internal/api/ws"
	"github.com/coolAppl3/hangoutio/internal/services"
	"github.com/go-co-op/gocron"
	"gorm.io/gorm"
)

// StartCronJobs wires the periodic sweeps. Run a single instance of this
// process per database; the sweeps assume no sibling sweeper races them.
func StartCronJobs(db *gorm.DB, notify services.Notifier) {
	stage := services.NewStageService(db, notify)
	rate := services.NewRateLimitService(db)
	auth := services.NewAuthService(db)
	hangouts := services.NewHangoutService(db, notify)

	s := gocron.NewScheduler(time.Local)

	s.Every(1).Minute().Do(func() { progressStages(stage) })
	s.Every(1).Minute().Do(func() { decayRateCounters(rate) })
	s.Every(30).Seconds().Do(ws.SweepDead)
	s.Every(1).Hour().Do(func() { purgeSessions(auth) })
	s.Every(1).Day().Do(func() { cleanupOrphans(hangouts) })

	s.StartAsync()
}

func progressStages(stage *services.StageService) {
	advanced, err := stage.ProgressDue(time.Now())
	if err != nil {
		log.Printf("Stage sweep failed: %v", err)
		return
	}
	if advanced > 0 {
		log.Printf("Advanced %v hangouts to their next stage", advanced)
	}
}

func decayRateCounters(rate *services.RateLimitService) {
	if err := rate.Decay(time.Now()); err != nil {
		log.Printf("Rate counter decay failed: %v", err)
	}
}

func purgeSessions(auth *services.AuthService) {
	purged, err := auth.PurgeExpiredSessions(time.Now())
	if err != nil {
		log.Printf("Failed to purge expired sessions: %v", err)
		return
	}
	if purged > 0 {
		log.Printf("Purged %v expired sessions", purged)
	}
}

func cleanupOrphans(hangouts *services.HangoutService) {
	removed, err := hangouts.DeleteOrphaned()
	if err != nil {
		log.Printf("Failed to remove orphaned hangouts: %v", err)
		return
	}
	if removed > 0 {
		log.Printf("Removed %v orphaned hangouts", removed)
	}
}
