package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"sherk_portal/internal/logger"

	"github.com/joho/godotenv"
)

const (
	StoreSupabase = "supabase"
	StorePostgres = "postgres"
)

type Config struct {
	AppPort    string
	AppVersion string

	// Hosted identity/store service
	SupabaseURL     string
	SupabaseAnonKey string
	ServiceRoleKey  string // only used by the export command

	StoreBackend string
	DatabaseURL  string
	StoreRetries int

	JWTSecret  string
	SessionTTL time.Duration

	StakeSubmitTimeout time.Duration
	LockIdentityFields bool

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	APIRateLimit     int
	APIRateWindow    time.Duration
	AuthRateLimit    int
	AuthRateWindow   time.Duration
	SubmitRateLimit  int
	SubmitRateWindow time.Duration

	LogLevel      string
	LogJSON       bool
	AllowedOrigin string
	FrontendDir   string
}

// Load reads .env (if present) and the environment. Invalid config is fatal.
func Load() *Config {
	_ = godotenv.Load()

	cfg, err := Parse(os.Getenv)
	if err != nil {
		logger.Fatal("invalid configuration", "error", err)
	}
	return cfg
}

// Parse builds the config from getenv, applying defaults.
func Parse(getenv func(string) string) (*Config, error) {
	rawURL := strings.TrimRight(strings.TrimSpace(getenv("SUPABASE_URL")), "/")
	if rawURL == "" {
		return nil, errors.New("SUPABASE_URL is not set")
	}
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("SUPABASE_URL %q is not a valid http(s) URL, expected https://your-project.supabase.co", rawURL)
	}

	anonKey := getenv("SUPABASE_ANON_KEY")
	if anonKey == "" {
		return nil, errors.New("SUPABASE_ANON_KEY is not set")
	}

	jwtSecret := getenv("JWT_SECRET")
	if jwtSecret == "" {
		return nil, errors.New("JWT_SECRET is not set")
	}

	backend := strings.ToLower(getenv("STORE_BACKEND"))
	if backend == "" {
		backend = StoreSupabase
	}
	if backend != StoreSupabase && backend != StorePostgres {
		return nil, fmt.Errorf("STORE_BACKEND must be %q or %q, got %q", StoreSupabase, StorePostgres, backend)
	}

	dbURL := getenv("DATABASE_URL")
	if backend == StorePostgres && dbURL == "" {
		return nil, errors.New("DATABASE_URL is required when STORE_BACKEND=postgres")
	}

	port := getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	version := getenv("APP_VERSION")
	if version == "" {
		version = "dev"
	}

	frontendDir := getenv("FRONTEND_DIR")
	if frontendDir == "" {
		frontendDir = "../frontend"
	}

	logLevel := getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}

	return &Config{
		AppPort:         port,
		AppVersion:      version,
		SupabaseURL:     rawURL,
		SupabaseAnonKey: anonKey,
		ServiceRoleKey:  getenv("SUPABASE_SERVICE_ROLE_KEY"),

		StoreBackend: backend,
		DatabaseURL:  dbURL,
		StoreRetries: intEnv(getenv, "STORE_RETRIES", 2),

		JWTSecret:  jwtSecret,
		SessionTTL: durationEnv(getenv, "SESSION_TTL", 24*time.Hour),

		StakeSubmitTimeout: durationEnv(getenv, "STAKE_SUBMIT_TIMEOUT", 8*time.Second),
		LockIdentityFields: getenv("LOCK_IDENTITY_FIELDS") != "false",

		RedisAddr:     getenv("REDIS_ADDR"),
		RedisPassword: getenv("REDIS_PASSWORD"),
		RedisDB:       intEnv(getenv, "REDIS_DB", 0),

		APIRateLimit:     intEnv(getenv, "API_RATE_LIMIT", 120),
		APIRateWindow:    secondsEnv(getenv, "API_RATE_WINDOW_SECONDS", time.Minute),
		AuthRateLimit:    intEnv(getenv, "AUTH_RATE_LIMIT", 5),
		AuthRateWindow:   secondsEnv(getenv, "AUTH_RATE_WINDOW_SECONDS", time.Minute),
		SubmitRateLimit:  intEnv(getenv, "SUBMIT_RATE_LIMIT", 10),
		SubmitRateWindow: secondsEnv(getenv, "SUBMIT_RATE_WINDOW_SECONDS", time.Minute),

		LogLevel:      logLevel,
		LogJSON:       getenv("LOG_JSON") == "true",
		AllowedOrigin: getenv("ALLOWED_ORIGIN"),
		FrontendDir:   frontendDir,
	}, nil
}

func intEnv(getenv func(string) string, key string, def int) int {
	if v := getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
	}
	return def
}

func secondsEnv(getenv func(string) string, key string, def time.Duration) time.Duration {
	if v := getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return time.Duration(n) * time.Second
		}
	}
	return def
}

// durationEnv accepts Go durations ("8s") or plain seconds ("8").
func durationEnv(getenv func(string) string, key string, def time.Duration) time.Duration {
	v := getenv(key)
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil && d > 0 {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil && n > 0 {
		return time.Duration(n) * time.Second
	}
	return def
}
