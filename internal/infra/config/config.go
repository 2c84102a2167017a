package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreMemory = "memory"
	StoreMongo  = "mongo"
)

// Config aggregates application configuration values loaded from environment variables.
type Config struct {
	Env      string
	LogLevel string
	HTTPAddr string
	Store    string

	MongoURI string
	MongoDB  string

	KafkaBrokers     []string
	KafkaTopicPrefix string
	KafkaGroupID     string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	ScyllaHosts       []string
	ScyllaKeyspace    string
	ScyllaUsername    string
	ScyllaPassword    string
	ScyllaConsistency string
	ScyllaTimeout     time.Duration

	S3Endpoint       string
	S3PublicEndpoint string
	S3AccessKey      string
	S3SecretKey      string
	S3Bucket         string
	S3UseSSL         bool

	OpenAIAPIKey  string
	OpenAIBaseURL string
	OpenAIModel   string
	AITimeout     time.Duration

	GRPCHealthAddr string

	JWTSecret          string
	JWTTTL             time.Duration
	AdminEmails        []string
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
	AuthSuccessURL     string
	CORSOrigins        []string

	IdempotencyTTL     time.Duration
	OutboxPollInterval time.Duration
	RetryBackoff       []time.Duration

	CompletionSweepEnabled bool
	CompletionSweepSpec    string

	RateLimitPerMinute int
	RateLimitBurst     int

	SeedFixtures bool
}

// Load reads an optional .env file and parses configuration from the environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	cfg := Config{
		Env:                 getEnv("APP_ENV", "dev"),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		HTTPAddr:            getEnv("HTTP_ADDR", ":8080"),
		Store:               strings.ToLower(getEnv("STORE", StoreMemory)),
		MongoURI:            os.Getenv("MONGO_URI"),
		MongoDB:             getEnv("MONGO_DB", "rara"),
		KafkaBrokers:        parseListEnv("KAFKA_BROKERS"),
		KafkaTopicPrefix:    getEnv("KAFKA_TOPIC_PREFIX", ""),
		KafkaGroupID:        getEnv("KAFKA_GROUP_ID", "rara-notifications"),
		RedisAddr:           os.Getenv("REDIS_ADDR"),
		RedisPassword:       os.Getenv("REDIS_PASSWORD"),
		ScyllaHosts:         parseListEnv("SCYLLA_HOSTS"),
		ScyllaKeyspace:      getEnv("SCYLLA_KEYSPACE", "rara_messaging"),
		ScyllaUsername:      os.Getenv("SCYLLA_USERNAME"),
		ScyllaPassword:      os.Getenv("SCYLLA_PASSWORD"),
		ScyllaConsistency:   getEnv("SCYLLA_CONSISTENCY", "quorum"),
		S3Endpoint:          os.Getenv("S3_ENDPOINT"),
		S3PublicEndpoint:    getEnv("S3_PUBLIC_ENDPOINT", ""),
		S3AccessKey:         getEnv("S3_ACCESS_KEY", "minioadmin"),
		S3SecretKey:         getEnv("S3_SECRET_KEY", "minioadmin"),
		S3Bucket:            getEnv("S3_BUCKET", "rara-photos"),
		OpenAIAPIKey:        os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:       getEnv("OPENAI_BASE_URL", ""),
		OpenAIModel:         getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		GRPCHealthAddr:      os.Getenv("GRPC_HEALTH_ADDR"),
		JWTSecret:           os.Getenv("JWT_SECRET"),
		AdminEmails:         parseListEnv("ADMIN_EMAILS"),
		GoogleClientID:      os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret:  os.Getenv("GOOGLE_CLIENT_SECRET"),
		GoogleRedirectURL:   getEnv("GOOGLE_REDIRECT_URL", "http://localhost:8080/api/auth/google/callback"),
		AuthSuccessURL:      getEnv("AUTH_SUCCESS_URL", "http://localhost:3000/auth/success"),
		CORSOrigins:         parseListEnv("CORS_ORIGINS"),
		CompletionSweepSpec: getEnv("COMPLETION_SWEEP_SPEC", "@every 1h"),
	}

	var err error
	if cfg.RedisDB, err = parseIntEnv("REDIS_DB", 0); err != nil {
		return Config{}, err
	}
	if cfg.ScyllaTimeout, err = parseDurationEnv("SCYLLA_TIMEOUT", 5*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.S3UseSSL, err = parseBoolEnv("S3_USE_SSL", false); err != nil {
		return Config{}, err
	}
	if cfg.AITimeout, err = parseDurationEnv("AI_TIMEOUT", 30*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.JWTTTL, err = parseDurationEnv("JWT_TTL", 7*24*time.Hour); err != nil {
		return Config{}, err
	}
	if cfg.IdempotencyTTL, err = parseDurationEnv("IDEMP_TTL", 24*time.Hour); err != nil {
		return Config{}, err
	}
	if cfg.OutboxPollInterval, err = parseDurationEnv("OUTBOX_POLL_INTERVAL", 500*time.Millisecond); err != nil {
		return Config{}, err
	}
	if cfg.CompletionSweepEnabled, err = parseBoolEnv("COMPLETION_SWEEP_ENABLED", true); err != nil {
		return Config{}, err
	}
	if cfg.RateLimitPerMinute, err = parseIntEnv("RATE_LIMIT_PER_MINUTE", 30); err != nil {
		return Config{}, err
	}
	if cfg.RateLimitBurst, err = parseIntEnv("RATE_LIMIT_BURST", 10); err != nil {
		return Config{}, err
	}
	if cfg.SeedFixtures, err = parseBoolEnv("SEED_FIXTURES", cfg.Store == StoreMemory); err != nil {
		return Config{}, err
	}
	for _, raw := range strings.Split(getEnv("RETRY_BACKOFF", "1s,5s,30s"), ",") {
		val := strings.TrimSpace(raw)
		if val == "" {
			continue
		}
		d, err := time.ParseDuration(val)
		if err != nil {
			return Config{}, fmt.Errorf("invalid RETRY_BACKOFF component %q: %w", raw, err)
		}
		cfg.RetryBackoff = append(cfg.RetryBackoff, d)
	}
	if cfg.S3PublicEndpoint == "" {
		cfg.S3PublicEndpoint = cfg.S3Endpoint
	}
	if len(cfg.CORSOrigins) == 0 {
		cfg.CORSOrigins = []string{"http://localhost:3000"}
	}
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	switch c.Store {
	case StoreMemory:
	case StoreMongo:
		if c.MongoURI == "" {
			return fmt.Errorf("MONGO_URI is required when STORE=mongo")
		}
	default:
		return fmt.Errorf("invalid STORE %q: want memory or mongo", c.Store)
	}
	if c.JWTSecret == "" {
		if c.Env != "dev" && c.Env != "local" && c.Env != "test" {
			return fmt.Errorf("JWT_SECRET is required outside dev")
		}
	}
	if c.RateLimitPerMinute <= 0 || c.RateLimitBurst <= 0 {
		return fmt.Errorf("rate limits must be positive")
	}
	return nil
}

// DevJWTSecret is used when JWT_SECRET is unset in dev.
const DevJWTSecret = "rara-dev-secret"

func (c Config) SigningSecret() []byte {
	if c.JWTSecret == "" {
		return []byte(DevJWTSecret)
	}
	return []byte(c.JWTSecret)
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseListEnv(key string) []string {
	raw := os.Getenv(key)
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseIntEnv(key string, def int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s integer: %w", key, err)
	}
	return v, nil
}

func parseDurationEnv(key string, def time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s duration: %w", key, err)
	}
	return d, nil
}

func parseBoolEnv(key string, def bool) (bool, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "t", "true", "yes", "y", "on":
		return true, nil
	case "0", "f", "false", "no", "n", "off":
		return false, nil
	default:
		return false, fmt.Errorf("invalid %s boolean: %q", key, raw)
	}
}
