package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"APP_ENV", "STORE", "MONGO_URI", "JWT_SECRET", "KAFKA_BROKERS", "CORS_ORIGINS",
		"RETRY_BACKOFF", "SEED_FIXTURES", "RATE_LIMIT_PER_MINUTE", "RATE_LIMIT_BURST",
		"IDEMP_TTL", "S3_ENDPOINT", "S3_PUBLIC_ENDPOINT", "ADMIN_EMAILS",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.Env)
	assert.Equal(t, StoreMemory, cfg.Store)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, 24*time.Hour, cfg.IdempotencyTTL)
	assert.Equal(t, []time.Duration{time.Second, 5 * time.Second, 30 * time.Second}, cfg.RetryBackoff)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORSOrigins)
	assert.True(t, cfg.SeedFixtures)
	assert.Equal(t, []byte(DevJWTSecret), cfg.SigningSecret())
}

func TestLoadParsesLists(t *testing.T) {
	clearEnv(t)
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("ADMIN_EMAILS", "admin@rara.dev")
	t.Setenv("RETRY_BACKOFF", "2s,1m")
	t.Setenv("S3_ENDPOINT", "minio:9000")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, []string{"admin@rara.dev"}, cfg.AdminEmails)
	assert.Equal(t, []time.Duration{2 * time.Second, time.Minute}, cfg.RetryBackoff)
	assert.Equal(t, "minio:9000", cfg.S3PublicEndpoint)
}

func TestLoadRejectsInvalidSettings(t *testing.T) {
	cases := map[string]map[string]string{
		"unknown store":       {"STORE": "sqlite"},
		"mongo without uri":   {"STORE": "mongo"},
		"prod without secret": {"APP_ENV": "prod"},
		"bad duration":        {"IDEMP_TTL": "soon"},
		"bad boolean":         {"SEED_FIXTURES": "maybe"},
		"zero rate":           {"RATE_LIMIT_PER_MINUTE": "0"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestMongoStoreDoesNotSeedByDefault(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORE", "mongo")
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")

	cfg, err := Load()
	require.NoError(t, err)

	assert.False(t, cfg.SeedFixtures)
}
