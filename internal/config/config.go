package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the process configuration, loaded from the environment with
// per-variable defaults.
type Config struct {
	Port      string
	MongoURI  string
	RedisAddr string
	JWTSecret string

	// TurnTimeout is the per-turn deadline; zero disables auto-advancement.
	TurnTimeout time.Duration
	// SnapshotDebounce coalesces persistence writes per room.
	SnapshotDebounce time.Duration
	// RoomIdleEvict is how long a fully disconnected room survives before
	// the sweeper removes it.
	RoomIdleEvict time.Duration
}

// Load reads the configuration from the environment. A .env file is applied
// first if present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:             getEnv("PORT", "8080"),
		MongoURI:         getEnv("MONGO_URI", "mongodb://localhost:27017"),
		RedisAddr:        getEnv("REDIS_URI", "localhost:6379"),
		JWTSecret:        getEnv("JWT_SECRET", "super-secret-key-change-in-production"),
		TurnTimeout:      time.Duration(getEnvInt("TURN_TIMEOUT_SEC", 90)) * time.Second,
		SnapshotDebounce: time.Duration(getEnvInt("SNAPSHOT_DEBOUNCE_MS", 300)) * time.Millisecond,
		RoomIdleEvict:    time.Duration(getEnvInt("ROOM_IDLE_EVICT_MIN", 60)) * time.Minute,
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil && n >= 0 {
			return n
		}
	}
	return defaultVal
}
