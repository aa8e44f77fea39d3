package config

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
)

// Config holds all configuration for the application. Centralizing
// these settings makes the server easier to manage and deploy.
type Config struct {
	// --- Server & Paths ---
	ServerAddr  string
	DataPath    string
	DbPath      string
	FrontendURL string

	// --- Security ---
	JwtSecret string

	// --- Scoring ---
	// Points awarded for first place; each place after loses one point.
	MaxPoints int

	// --- Email (SMTP) ---
	SmtpHost   string
	SmtpPort   int
	SmtpUser   string
	SmtpPass   string
	SmtpSender string
	// Address that receives publish notifications, typically the
	// sailing secretary. Empty disables notifications.
	ResultsNotifyAddr string
}

// New creates a Config from environment variables. Critical values are
// validated so the server fails fast on an invalid deployment instead
// of misbehaving later.
func New() (*Config, error) {
	smtpPort, _ := strconv.Atoi(os.Getenv("SMTP_PORT"))
	maxPoints, _ := strconv.Atoi(os.Getenv("SCORING_MAX_POINTS"))

	cfg := &Config{
		ServerAddr:        os.Getenv("SERVER_ADDR"),
		DataPath:          os.Getenv("DATA_PATH"),
		JwtSecret:         os.Getenv("JWT_SECRET"),
		FrontendURL:       os.Getenv("FRONTEND_URL"),
		MaxPoints:         maxPoints,
		SmtpHost:          os.Getenv("SMTP_HOST"),
		SmtpPort:          smtpPort,
		SmtpUser:          os.Getenv("SMTP_USER"),
		SmtpPass:          os.Getenv("SMTP_PASS"),
		SmtpSender:        os.Getenv("SMTP_SENDER"),
		ResultsNotifyAddr: os.Getenv("RESULTS_NOTIFY_ADDR"),
	}

	// --- Defaults for non-critical values ---
	if cfg.DataPath == "" {
		cfg.DataPath = "./data"
	}
	if cfg.ServerAddr == "" {
		cfg.ServerAddr = ":8080"
	}
	if cfg.MaxPoints == 0 {
		cfg.MaxPoints = 14
	}

	// --- Validate critical required values ---
	if cfg.JwtSecret == "" {
		return nil, errors.New("FATAL: JWT_SECRET environment variable is not set")
	}
	if cfg.MaxPoints < 0 {
		return nil, errors.New("FATAL: SCORING_MAX_POINTS must be positive")
	}

	cfg.DbPath = filepath.Join(cfg.DataPath, "databases")

	return cfg, nil
}
