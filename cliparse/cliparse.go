package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Port         int
	DatabaseURL  string
	DatabaseType string
	Environment  string

	LogLevel  string
	LogFormat string
	LogFile   string

	ElectionFile string

	RedisURL     string
	CacheTTL     time.Duration
	WarmInterval time.Duration

	JWTSecret          string
	JWTPublicKeyFile   string
	JWTKeysURL         string
	JWTAudience        string
	JWTIssuer          string
	AllowedEmailDomain string

	KafkaBrokers  []string
	KafkaTopic    string
	VoterHashSalt string
}

func (c Config) IsDevelopment() bool {
	return c.Environment == EnvDevelopment
}

// ParseFlags validates flags and fills the rest from the environment.
// A .env file in the working directory is loaded first if present;
// variables already set in the environment win.
func ParseFlags(args []string) (Config, error) {
	var cfg Config

	_ = godotenv.Load()

	fs := flag.NewFlagSet("ballotbox", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite, postgres or memory)")
	fs.StringVar(&cfg.Environment, "env", "", "Environment (development or production)")
	fs.StringVar(&cfg.ElectionFile, "election", "", "Election definition file (yaml)")

	// Logging
	fs.StringVar(&cfg.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.StringVar(&cfg.LogFormat, "log-format", "", "Log format (text or json)")
	fs.StringVar(&cfg.LogFile, "log-file", "", "Also write logs to this file, rotated")

	// Result cache
	fs.StringVar(&cfg.RedisURL, "redis", "", "Redis URL for the result cache")
	fs.DurationVar(&cfg.CacheTTL, "cache-ttl", 0, "Result cache TTL")
	fs.DurationVar(&cfg.WarmInterval, "warm-interval", 0, "Result cache refresh interval after announcement")

	// Identity
	fs.StringVar(&cfg.JWTSecret, "jwt-secret", "", "HS256 secret for ID tokens (prefer env)")
	fs.StringVar(&cfg.JWTPublicKeyFile, "jwt-public-key", "", "PEM file with the RS256 public key for ID tokens")
	fs.StringVar(&cfg.JWTKeysURL, "jwt-keys-url", "", "URL of a kid to PEM key set for rotating RS256 keys")
	fs.StringVar(&cfg.JWTAudience, "jwt-audience", "", "Required ID token audience")
	fs.StringVar(&cfg.JWTIssuer, "jwt-issuer", "", "Required ID token issuer")
	fs.StringVar(&cfg.AllowedEmailDomain, "email-domain", "", "Allowed voter email domain")

	// Audit events
	var brokers string
	fs.StringVar(&brokers, "kafka-brokers", "", "Comma separated Kafka brokers for ballot cast events")
	fs.StringVar(&cfg.KafkaTopic, "kafka-topic", "", "Kafka topic for ballot cast events")
	fs.StringVar(&cfg.VoterHashSalt, "hash-salt", "", "Voter hash salt (prefer env)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	// Fall back to environment variables
	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = 3318 // default
		}
	}

	fallback(&cfg.DatabaseType, "DATABASE_TYPE", "sqlite")
	fallback(&cfg.DatabaseURL, "DATABASE_URL", "")
	if cfg.DatabaseURL == "" && cfg.DatabaseType != "memory" {
		return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
	}
	switch cfg.DatabaseType {
	case "sqlite", "postgres", "memory":
	default:
		return Config{}, fmt.Errorf("unsupported database type %q", cfg.DatabaseType)
	}

	fallback(&cfg.Environment, "ENVIRONMENT", EnvProduction)
	if cfg.Environment != EnvDevelopment && cfg.Environment != EnvProduction {
		return Config{}, fmt.Errorf("unknown environment %q", cfg.Environment)
	}

	fallback(&cfg.ElectionFile, "ELECTION_FILE", "election.yaml")
	fallback(&cfg.LogLevel, "LOG_LEVEL", "info")
	fallback(&cfg.LogFormat, "LOG_FORMAT", "text")
	fallback(&cfg.LogFile, "LOG_FILE", "")
	fallback(&cfg.RedisURL, "REDIS_URL", "")

	if err := durationFallback(&cfg.CacheTTL, "CACHE_TTL", 300*time.Second); err != nil {
		return Config{}, err
	}
	if err := durationFallback(&cfg.WarmInterval, "WARM_INTERVAL", time.Minute); err != nil {
		return Config{}, err
	}

	fallback(&cfg.JWTSecret, "JWT_SECRET", "")
	fallback(&cfg.JWTPublicKeyFile, "JWT_PUBLIC_KEY_FILE", "")
	fallback(&cfg.JWTKeysURL, "JWT_KEYS_URL", "")
	fallback(&cfg.JWTAudience, "JWT_AUDIENCE", "")
	fallback(&cfg.JWTIssuer, "JWT_ISSUER", "")
	fallback(&cfg.AllowedEmailDomain, "ALLOWED_EMAIL_DOMAIN", "chula.ac.th")

	fallback(&brokers, "KAFKA_BROKERS", "")
	cfg.KafkaBrokers = splitList(brokers)
	fallback(&cfg.KafkaTopic, "KAFKA_TOPIC", "ballots.cast")

	// Secrets - MUST be provided outside development
	fallback(&cfg.VoterHashSalt, "VOTER_HASH_SALT", "")
	if !cfg.IsDevelopment() {
		if cfg.JWTSecret == "" && cfg.JWTPublicKeyFile == "" && cfg.JWTKeysURL == "" {
			return Config{}, errors.New("JWT_SECRET, JWT_PUBLIC_KEY_FILE or JWT_KEYS_URL required")
		}
		if len(cfg.KafkaBrokers) > 0 && cfg.VoterHashSalt == "" {
			return Config{}, errors.New("VOTER_HASH_SALT required when KAFKA_BROKERS is set")
		}
	}

	return cfg, nil
}

func fallback(dst *string, env, def string) {
	if *dst != "" {
		return
	}
	if v := os.Getenv(env); v != "" {
		*dst = v
		return
	}
	*dst = def
}

func durationFallback(dst *time.Duration, env string, def time.Duration) error {
	if *dst != 0 {
		return nil
	}
	v := os.Getenv(env)
	if v == "" {
		*dst = def
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid %s env variable: %w", env, err)
	}
	*dst = d
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
