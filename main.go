package main

import (
	"log"

	"github.com/coolAppl3/hangoutio/internal/api"
	"github.com/coolAppl3/hangoutio/internal/api/handlers"
	"github.com/coolAppl3/hangoutio/internal/api/middleware"
	"github.com/coolAppl3/hangoutio/internal/api/ws"
	"github.com/coolAppl3/hangoutio/internal/config"
	"github.com/coolAppl3/hangoutio/internal/cron"
	"github.com/coolAppl3/hangoutio/internal/services"
)

func main() {

	err := config.InitDB()
	if err != nil {
		log.Fatal("DB not initialized")
	}

	// Service events reach websocket clients only after their transaction
	// has committed.
	notify := func(hangoutID string, evt services.Event) {
		ws.Broadcast(hangoutID, ws.Event{Type: evt.Type, Reason: evt.Reason, Data: evt.Data})
	}

	middleware.Init(config.DB)
	handlers.InitHandlers(config.DB, notify)
	cron.StartCronJobs(config.DB, notify)

	api.NewServer()
}
