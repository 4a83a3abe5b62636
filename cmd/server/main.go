package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/grupo123/gameday-api/internal/auth"
	"github.com/grupo123/gameday-api/internal/config"
	"github.com/grupo123/gameday-api/internal/database"
	"github.com/grupo123/gameday-api/internal/handlers"
	"github.com/grupo123/gameday-api/internal/notifier"
	"github.com/joho/godotenv"
)

func main() {
	// Local development config, ignored when absent
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	// Load Configuration
	cfg := config.LoadConfig()

	// Connect to Database
	db := database.Connect(cfg)

	// Initialize Handlers
	discordNotifier, err := notifier.NewDiscordNotifier(cfg)
	if err != nil {
		log.Printf("Discord notifier not initialized: %v", err)
	}

	var n notifier.Notifier
	if discordNotifier != nil {
		n = discordNotifier
	}

	authHandler := auth.NewAuthHandler(cfg, db)
	sportHandler := handlers.NewSportHandler(db, authHandler)
	gameHandler := handlers.NewGameHandler(db, n, authHandler)
	attendanceHandler := handlers.NewAttendanceHandler(db, n, authHandler)
	userHandler := handlers.NewUserHandler(db, authHandler)
	domainHandler := handlers.NewDomainHandler(db, authHandler)

	// Initialize Router
	r := chi.NewRouter()

	// Register Routes
	handlers.RegisterRoutes(r, authHandler, sportHandler, gameHandler, attendanceHandler, userHandler, domainHandler)

	// Start Server
	log.Printf("Starting server on port %s", cfg.Port)
	if err := http.ListenAndServe(fmt.Sprintf(":%s", cfg.Port), r); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
