package config

import (
	"log"
	"os"

	"github.com/coolAppl3/hangoutio/internal/models"
	"github.com/joho/godotenv"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

var DB *gorm.DB // global instance

func InitDB() error {

	err := godotenv.Load()
	if err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	dsn := os.Getenv("SERVICE_URI")
	if dsn == "" {
		log.Fatal("CANNOT READ SERVICE_URI IN ENVIRONMENT")
	}

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		return err
	}

	if err := Migrate(db); err != nil {
		return err
	}

	DB = db

	log.Println("DB SYNC")
	return nil
}

// Migrate syncs the schema on the given connection. Split out so tests can
// run it against their own database.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Account{},
		&models.Guest{},
		&models.AuthSession{},
		&models.RateTracker{},
		&models.Hangout{},
		&models.HangoutMember{},
		&models.AvailabilitySlot{},
		&models.Suggestion{},
		&models.Vote{},
		&models.HangoutEvent{},
		&models.ChatMessage{},
	)
}
