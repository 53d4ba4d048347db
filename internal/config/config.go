// Package config loads application configuration from environment variables.
// A .env file in the working directory is read first when present; values
// already set in the process environment win.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultAIModel is the generation model used when AI_MODEL is unset.
const DefaultAIModel = "gemini-3-flash-preview"

// Config holds all runtime configuration values.
type Config struct {
	Env  string // dev, test or prod
	Port string

	DBUser string
	DBPass string
	DBHost string
	DBPort string
	DBName string

	JWTSecret  string
	AccessTTL  time.Duration // lifetime of access tokens
	SessionTTL time.Duration // lifetime of a session slot
	BcryptCost int

	AIKey   string // empty disables generation, callers get fallback text
	AIModel string

	RabbitURL string // empty disables event publishing
	EventsLog string // file the consumer appends events to
}

// ErrMissingSecret is returned by Load when JWT_SECRET is unset in prod.
var ErrMissingSecret = errors.New("JWT_SECRET is required in prod")

// LoadDotEnv reads .env files into the process environment. A missing file
// is not an error.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	var present []string
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			present = append(present, f)
		}
	}
	if len(present) == 0 {
		return nil
	}
	return godotenv.Load(present...)
}

// Load builds a Config from the environment, applying defaults for every
// optional variable.
func Load() (Config, error) {
	cfg := Config{
		Env:        envStr("APP_ENV", "dev"),
		Port:       envStr("APP_PORT", "8080"),
		DBUser:     envStr("DB_USER", "root"),
		DBPass:     os.Getenv("DB_PASS"),
		DBHost:     envStr("DB_HOST", "127.0.0.1"),
		DBPort:     envStr("DB_PORT", "3306"),
		DBName:     envStr("DB_NAME", "colocetudiant"),
		JWTSecret:  os.Getenv("JWT_SECRET"),
		AccessTTL:  time.Duration(envInt("ACCESS_TOKEN_TTL_MIN", 60)) * time.Minute,
		SessionTTL: envDur("SESSION_TTL", 7*24*time.Hour),
		BcryptCost: envInt("BCRYPT_COST", 10),
		AIKey:      envStr("API_KEY", os.Getenv("GEMINI_API_KEY")),
		AIModel:    envStr("AI_MODEL", DefaultAIModel),
		RabbitURL:  os.Getenv("RABBITMQ_URL"),
		EventsLog:  envStr("EVENTS_LOG", "logs/events.log"),
	}
	if cfg.JWTSecret == "" {
		if strings.EqualFold(cfg.Env, "prod") {
			return Config{}, ErrMissingSecret
		}
		cfg.JWTSecret = "dev-secret"
	}
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = time.Hour
	}
	if cfg.SessionTTL < cfg.AccessTTL {
		cfg.SessionTTL = cfg.AccessTTL
	}
	return cfg, nil
}

func envStr(k, d string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return d
}

func envBool(k string, d bool) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(k))) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return d
}

func envInt(k string, d int) int {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	return d
}

func envDur(k string, d time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if dur, err := time.ParseDuration(v); err == nil {
		return dur
	}
	return d
}
