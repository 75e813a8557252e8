package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// Environment
	Environment string

	// Redis (empty disables the round feed)
	RedisURL string

	// Server
	Port        string
	FrontendURL string

	// Simulation
	TickHz     int
	TuningFile string

	// Sessions
	SessionTokenTTLMinutes int
	SessionIdleSeconds     int
	ReaperIntervalSeconds  int
	MaxBodiesPerSession    int

	// Security
	JWTSecret string
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	return &Config{
		// Environment
		Environment: getEnv("APP_ENV", "development"),

		// Redis
		RedisURL: getEnv("REDIS_URL", ""),

		// Server
		Port:        getEnv("APP_PORT", "8080"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:5173"),

		// Simulation
		TickHz:     getEnvInt("TICK_HZ", 60),
		TuningFile: getEnv("TUNING_FILE", ""),

		// Sessions
		SessionTokenTTLMinutes: getEnvInt("SESSION_TOKEN_TTL_MINUTES", 120),
		SessionIdleSeconds:     getEnvInt("SESSION_IDLE_SECONDS", 300),
		ReaperIntervalSeconds:  getEnvInt("REAPER_INTERVAL_SECONDS", 30),
		MaxBodiesPerSession:    getEnvInt("MAX_BODIES_PER_SESSION", 400),

		// Security
		JWTSecret: getEnv("JWT_SECRET", "change-me-in-production"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
