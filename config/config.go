package config

import (
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	Env                     string
	FirebaseDatabaseURL     string
	FirebaseCredentialsFile string
	RedisURL                string
}

func Load() Config {
	// Best effort; env vars win over the file.
	_ = godotenv.Load()

	return Config{
		Env:                     getEnv("ENV", "development"),
		FirebaseDatabaseURL:     getEnv("FIREBASE_DATABASE_URL", ""),
		FirebaseCredentialsFile: getEnv("FIREBASE_CREDENTIALS_FILE", os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")),
		RedisURL:                getEnv("REDIS_URL", "redis://localhost:6379"),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
