package app

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Notifier kinds.
const (
	NotifierLog   = "log"
	NotifierNATS  = "nats"
	NotifierQueue = "queue"
)

type Config struct {
	Issuer       string // issuer claim of access tokens (default: vaultkey)
	NumKeys      int    // number of ephemeral signing keys (default: 3, max: 10)
	DatabaseFile string // path to the SQLite database file (default: ./vault.db)
	PepperFile   string // path to the pepper for proof hashing, created if missing (default: ./pepper)

	SessionTTL time.Duration // lifetime of a login session (default: 30 days)
	TokenTTL   time.Duration // lifetime of an access token (default: 15m)

	Notifier      string        // log, nats or queue (default: log)
	NotifyTimeout time.Duration // bound on delivering one logout notification (default: 10s)
	NotifyRetries int           // delivery attempts before giving up (default: 3)

	NATSURL           string // NATS server; required for the nats notifier, optional delivery for queue
	NATSSubjectPrefix string // subject prefix of logout events (default: vault)

	RedisAddr        string // asynq broker for the queue notifier (default: 127.0.0.1:6379)
	RedisPassword    string
	RedisDB          int
	QueueConcurrency int // logout delivery workers (default: 10)
	QueueMaxRetry    int // asynq retries per logout task (default: 5)

	Env                  string        // environment (dev, staging, prod) (default: dev)
	LogLevel             string        // debug, info, warn, error (default: info)
	LogFormat            string        // json or text (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // stale session cleanup interval (default: 1h)
}

// LoadConfig reads the configuration from the environment. Variables from
// envFile are loaded first without overriding the real environment; a missing
// ".env" is ignored, any other missing file is an error.
func LoadConfig(envFile string) (Config, error) {
	if envFile == "" {
		envFile = ".env"
		if _, err := os.Stat(envFile); errors.Is(err, os.ErrNotExist) {
			envFile = ""
		}
	}
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return Config{}, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	cfg := Config{
		Issuer:       getEnvOrDefault("VAULT_ISSUER", "vaultkey"),
		NumKeys:      getEnvIntOrDefault("VAULT_NUM_KEYS", 3),
		DatabaseFile: getEnvOrDefault("VAULT_DATABASE_FILE", "vault.db"),
		PepperFile:   getEnvOrDefault("VAULT_PEPPER_FILE", "pepper"),

		SessionTTL: getEnvDurationOrDefault("VAULT_SESSION_TTL", 30*24*time.Hour),
		TokenTTL:   getEnvDurationOrDefault("VAULT_TOKEN_TTL", 15*time.Minute),

		Notifier:      getEnvOrDefault("VAULT_NOTIFIER", NotifierLog),
		NotifyTimeout: getEnvDurationOrDefault("VAULT_NOTIFY_TIMEOUT", 10*time.Second),
		NotifyRetries: getEnvIntOrDefault("VAULT_NOTIFY_RETRIES", 3),

		NATSURL:           os.Getenv("VAULT_NATS_URL"),
		NATSSubjectPrefix: getEnvOrDefault("VAULT_NATS_SUBJECT_PREFIX", "vault"),

		RedisAddr:        getEnvOrDefault("VAULT_REDIS_ADDR", "127.0.0.1:6379"),
		RedisPassword:    os.Getenv("VAULT_REDIS_PASSWORD"),
		RedisDB:          getEnvIntOrDefault("VAULT_REDIS_DB", 0),
		QueueConcurrency: getEnvIntOrDefault("VAULT_QUEUE_CONCURRENCY", 10),
		QueueMaxRetry:    getEnvIntOrDefault("VAULT_QUEUE_MAX_RETRY", 5),

		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", time.Hour),
	}

	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	switch c.Notifier {
	case NotifierLog, NotifierQueue:
	case NotifierNATS:
		if c.NATSURL == "" {
			return errors.New("VAULT_NATS_URL is required for the nats notifier")
		}
	default:
		return fmt.Errorf("unknown notifier %q (want log, nats or queue)", c.Notifier)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Bare integers are minutes.
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
