package main

import (
	"log"
	"net/http"
	"os"
	"path/filepath"

	"github.com/clydesc/sailscore/internal/api"
	"github.com/clydesc/sailscore/internal/config"
	"github.com/clydesc/sailscore/internal/database"
	"github.com/clydesc/sailscore/internal/email"
	"github.com/clydesc/sailscore/internal/results"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
)

// main is the entry point for the Sailscore backend server.
func main() {
	// --- 1. Load Configuration ---
	// Configuration comes from a .env file during development and from
	// real environment variables in production.
	if err := godotenv.Load(); err != nil {
		log.Println("INFO: No .env file found, using environment variables from the system.")
	}

	cfg, err := config.New()
	if err != nil {
		// A valid configuration is required to run, so we exit if it fails.
		log.Fatalf("FATAL: Failed to load application configuration: %v", err)
	}

	// --- 2. Ensure Required Directories Exist ---
	if err := os.MkdirAll(cfg.DbPath, 0755); err != nil {
		log.Fatalf("FATAL: Failed to create database directory at %s: %v", cfg.DbPath, err)
	}

	log.Println("INFO: Application directories verified.")

	emailService := email.NewEmailService(email.SMTPServerConfig{
		Host:     cfg.SmtpHost,
		Port:     cfg.SmtpPort,
		Username: cfg.SmtpUser,
		Password: cfg.SmtpPass,
		Sender:   cfg.SmtpSender,
	})

	log.Println("INFO: Email service initialized.")

	// --- 3. Initialize Database Service ---
	// The database service manages all connections and ensures thread-safe writes.
	dbFullPath := filepath.Join(cfg.DbPath, "sailscore.db")
	dbService, err := database.NewService(dbFullPath)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize database service: %v", err)
	}
	// 'defer' ensures open database connections are closed when main exits.
	defer dbService.Close()

	log.Println("INFO: Database service initialized successfully.")

	// --- 4. Initialize Database Schema ---
	// Creates the tables (members, races, result sets, etc.) if they do
	// not already exist. Safe to run on every startup.
	if err := dbService.InitSchema(); err != nil {
		log.Fatalf("FATAL: Failed to initialize database schema: %v", err)
	}

	log.Println("INFO: Database schema verified.")

	// --- 5. Set Up Scoring Core and API Server ---
	// The results service holds the replay and scoring logic and talks
	// to the database through its store interface.
	resultsService := results.NewService(results.NewSQLStore(dbService), cfg.MaxPoints)

	serverAPI := api.NewServer(cfg, dbService, resultsService, emailService)

	router := chi.NewRouter()
	serverAPI.RegisterRoutes(router)

	log.Println("INFO: API routes registered.")

	// --- 6. Start the HTTP Server ---
	log.Printf("INFO: Sailscore server starting on %s", cfg.ServerAddr)

	if err := http.ListenAndServe(cfg.ServerAddr, router); err != nil {
		log.Fatalf("FATAL: Failed to start server: %v", err)
	}
}
