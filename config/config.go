package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Annany2002/projecthub-backend/internal/logger"
	"github.com/joho/godotenv"
)

var (
	customLog = logger.NewLogger()
)

// Supported storage drivers
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "pgx"
)

// Config holds application configuration values
type Config struct {
	ServerPort    string
	JWTSecret     string
	JWTExpiration time.Duration
	AuthHeader    string

	DBDriver       string
	DatabaseURL    string
	DatabaseDir    string
	DatabaseFile   string
	DBQueryTimeout time.Duration

	// ListMaxLimit clamps the page size of listing endpoints. Zero leaves it unbounded.
	ListMaxLimit int

	UploadDir      string
	MaxUploadBytes int64

	LoginRateLimit  int
	LoginRateWindow time.Duration

	CORSAllowedOrigins []string

	AdminEmail    string
	AdminPassword string
	AdminName     string

	LogLevel  string
	LogFormat string
}

// LoadConfig loads configuration from environment variables.
// It uses a .env file for local development if present (ignores it for production).
func LoadConfig() (*Config, error) {
	customLog.Println("Loading configuration from environment variables...")

	if os.Getenv("APP_ENV") != "production" {
		if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
			customLog.Warnf("Warning: Error loading .env file: %v", err)
		}
	}

	jwtSecret := getEnv("JWT_SECRET", "")
	if jwtSecret == "" {
		return nil, errors.New("JWT_SECRET environment variable must be set")
	}
	if jwtSecret == "!!replace_this_with_a_real_secret_key!!" {
		customLog.Warnln("WARNING: JWT_SECRET is set to the default placeholder!")
	}

	jwtExpHours := getEnvInt("JWT_EXPIRATION_HOURS", 1)
	if jwtExpHours <= 0 {
		customLog.Warnf("Invalid JWT_EXPIRATION_HOURS '%d'. Using default 1h.", jwtExpHours)
		jwtExpHours = 1
	}

	driver := strings.ToLower(getEnv("DB_DRIVER", DriverSQLite))
	if driver != DriverSQLite && driver != DriverPostgres {
		return nil, fmt.Errorf("unsupported DB_DRIVER '%s' (use %s or %s)", driver, DriverSQLite, DriverPostgres)
	}
	dbURL := getEnv("DATABASE_URL", "")
	if driver == DriverPostgres && dbURL == "" {
		return nil, errors.New("DATABASE_URL must be set when DB_DRIVER=pgx")
	}

	listMax := getEnvInt("LIST_MAX_LIMIT", 0)
	if listMax < 0 {
		listMax = 0
	}
	if listMax == 0 {
		customLog.Warnln("LIST_MAX_LIMIT is not set: listing page size is unbounded")
	}

	uploadMB := getEnvInt("MAX_UPLOAD_MB", 10)
	if uploadMB <= 0 {
		uploadMB = 10
	}

	rateLimit := getEnvInt("LOGIN_RATE_LIMIT", 10)
	if rateLimit <= 0 {
		rateLimit = 10
	}

	cfg := &Config{
		ServerPort:    strings.TrimPrefix(getEnv("SERVER_PORT", "8080"), ":"),
		JWTSecret:     jwtSecret,
		JWTExpiration: time.Hour * time.Duration(jwtExpHours),
		AuthHeader:    getEnv("AUTH_HEADER", "x-access-token"),

		DBDriver:       driver,
		DatabaseURL:    dbURL,
		DatabaseDir:    getEnv("DATABASE_DIRECTORY", "data"),
		DatabaseFile:   getEnv("DATABASE_FILE", "projecthub.db"),
		DBQueryTimeout: getEnvDuration("DB_QUERY_TIMEOUT", 5*time.Second),

		ListMaxLimit: listMax,

		UploadDir:      getEnv("UPLOAD_DIRECTORY", "uploads"),
		MaxUploadBytes: int64(uploadMB) << 20,

		LoginRateLimit:  rateLimit,
		LoginRateWindow: getEnvDuration("LOGIN_RATE_WINDOW", time.Minute),

		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),

		AdminEmail:    getEnv("ADMIN_EMAIL", ""),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),
		AdminName:     getEnv("ADMIN_NAME", "Administrator"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
	}

	customLog.Printf("Configuration loaded successfully. Port: %s, Driver: %s, JWT Exp: %v", cfg.ServerPort, cfg.DBDriver, cfg.JWTExpiration)
	return cfg, nil
}

// getEnv reads an environment variable or returns a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return strings.TrimSpace(value)
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	raw, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		customLog.Warnf("Invalid %s '%s'. Using default %d. Error: %v", key, raw, fallback, err)
		return fallback
	}
	return v
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	raw, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	d, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil || d <= 0 {
		customLog.Warnf("Invalid %s '%s'. Using default %v.", key, raw, fallback)
		return fallback
	}
	return d
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
