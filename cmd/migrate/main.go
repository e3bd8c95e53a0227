package main

import (
	"log"

	"civic-grant-be/internal/config"
	"civic-grant-be/internal/model"
	"civic-grant-be/pkg/database"
)

func main() {
	cfg := config.Load()

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Fatalf("Unable to connect to GORM DB: %v", err)
	}

	log.Println("Running migrations...")
	if err := db.AutoMigrate(
		&model.ChatSession{},
		&model.ChatMessage{},
		&model.GrantDraft{},
	); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	log.Println("Migrations complete.")
}
