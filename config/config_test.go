package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ENV", "")
	t.Setenv("FIREBASE_DATABASE_URL", "")
	t.Setenv("FIREBASE_CREDENTIALS_FILE", "")
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")
	t.Setenv("REDIS_URL", "")

	cfg := Load()
	assert.Equal(t, "development", cfg.Env)
	assert.Empty(t, cfg.FirebaseDatabaseURL)
	assert.Empty(t, cfg.FirebaseCredentialsFile)
	assert.Equal(t, "redis://localhost:6379", cfg.RedisURL)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("FIREBASE_DATABASE_URL", "https://wastebank.firebaseio.com")
	t.Setenv("FIREBASE_CREDENTIALS_FILE", "/etc/secrets/sa.json")
	t.Setenv("REDIS_URL", "redis://cache:6380")

	cfg := Load()
	assert.Equal(t, "production", cfg.Env)
	assert.Equal(t, "https://wastebank.firebaseio.com", cfg.FirebaseDatabaseURL)
	assert.Equal(t, "/etc/secrets/sa.json", cfg.FirebaseCredentialsFile)
	assert.Equal(t, "redis://cache:6380", cfg.RedisURL)
}

func TestLoad_ADCFallbackForCredentials(t *testing.T) {
	t.Setenv("FIREBASE_CREDENTIALS_FILE", "")
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "/etc/secrets/adc.json")

	cfg := Load()
	assert.Equal(t, "/etc/secrets/adc.json", cfg.FirebaseCredentialsFile)
}
