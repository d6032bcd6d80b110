package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"ledgerpay/pkg/db" // Import db package for its Config struct

	"github.com/joho/godotenv"
)

// AppConfig holds all application-wide configurations.
type AppConfig struct {
	ServerPort string
	Debug      bool
	JWTSecret  string
	TokenTTL   time.Duration
	DB         db.Config
}

// LoadConfig loads configuration from a .env file (if present) and the
// environment. It returns an AppConfig instance or an error if any
// required variable is missing or invalid.
func LoadConfig() (*AppConfig, error) {
	_ = godotenv.Load() // .env is optional; real env vars win

	serverPort := os.Getenv("SERVER_PORT")
	if serverPort == "" {
		serverPort = "8080" // Default port
	}

	debug := os.Getenv("APP_DEBUG") == "true"

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET must be set")
	}

	tokenTTLStr := os.Getenv("TOKEN_TTL_MINUTES")
	if tokenTTLStr == "" {
		tokenTTLStr = "60" // Default token lifetime
	}
	tokenTTLMinutes, err := strconv.Atoi(tokenTTLStr)
	if err != nil || tokenTTLMinutes <= 0 {
		return nil, fmt.Errorf("invalid TOKEN_TTL_MINUTES: %q", tokenTTLStr)
	}

	dbHost := os.Getenv("DB_HOST")
	if dbHost == "" {
		dbHost = "localhost" // Default to localhost for local development
	}
	dbPortStr := os.Getenv("DB_PORT")
	if dbPortStr == "" {
		dbPortStr = "5432" // Default PostgreSQL port
	}
	dbPort, err := strconv.Atoi(dbPortStr)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}
	dbUser := os.Getenv("DB_USER")
	if dbUser == "" {
		dbUser = "user" // Default user for local development
	}
	dbPassword := os.Getenv("DB_PASSWORD")
	if dbPassword == "" {
		dbPassword = "password" // Default password for local development
	}
	dbName := os.Getenv("DB_NAME")
	if dbName == "" {
		dbName = "ledgerdb" // Default database name for local development
	}
	dbSSLMode := os.Getenv("DB_SSLMODE")
	if dbSSLMode == "" {
		dbSSLMode = "disable" // Default to disable for local development
	}

	return &AppConfig{
		ServerPort: serverPort,
		Debug:      debug,
		JWTSecret:  jwtSecret,
		TokenTTL:   time.Duration(tokenTTLMinutes) * time.Minute,
		DB: db.Config{
			Host:     dbHost,
			Port:     dbPort,
			User:     dbUser,
			Password: dbPassword,
			DBName:   dbName,
			SSLMode:  dbSSLMode,
		},
	}, nil
}
