package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration loaded from environment.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	AWS      AWSConfig
	Display  DisplayConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port               string
	ReadTimeout        int
	WriteTimeout       int
	CORSAllowedOrigins string // comma-separated, or "*" for all (e.g. http://localhost:3000,http://localhost:3001)
	DebugPprof         bool
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	URL      string // if set, used as-is (e.g. postgres://localhost:5432/agro_ad?sslmode=disable)
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	MaxConns int32
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// JWTConfig holds JWT signing and session cookie settings.
type JWTConfig struct {
	Secret       string
	ExpireHours  int
	CookieName   string
	CookieDomain string
	CookieSecure bool
}

// AWSConfig holds AWS credentials and the media bucket.
type AWSConfig struct {
	Region               string
	AccessKeyID          string
	SecretAccessKey      string
	MediaBucket          string
	Endpoint             string // optional, for S3-compatible stores (MinIO, LocalStack)
	PublicBaseURL        string // optional CDN prefix for media URLs
	PresignExpireMinutes int
}

// Enabled reports whether uploads can be served. Without a bucket the media routes answer 503.
func (c AWSConfig) Enabled() bool {
	return c.MediaBucket != ""
}

// DisplayConfig holds settings for the headless display client.
type DisplayConfig struct {
	ServerURL            string
	TVIDs                []string
	PollSeconds          int
	VideoFallbackSeconds int
	ProbeTimeoutSeconds  int
	HTTPTimeoutSeconds   int
}

// PollInterval is how often each TV re-fetches its queue.
func (c DisplayConfig) PollInterval() time.Duration {
	return seconds(c.PollSeconds, 60)
}

// VideoFallback is the dwell used for video ads.
func (c DisplayConfig) VideoFallback() time.Duration {
	return seconds(c.VideoFallbackSeconds, 30)
}

// ProbeTimeout bounds each media HEAD probe.
func (c DisplayConfig) ProbeTimeout() time.Duration {
	return seconds(c.ProbeTimeoutSeconds, 5)
}

// HTTPTimeout bounds each queue fetch.
func (c DisplayConfig) HTTPTimeout() time.Duration {
	return seconds(c.HTTPTimeoutSeconds, 10)
}

func seconds(n, fallback int) time.Duration {
	if n <= 0 {
		n = fallback
	}
	return time.Duration(n) * time.Second
}

// DSN returns the PostgreSQL connection string.
// If DatabaseConfig.URL is set (e.g. DATABASE_URL env), it is used as-is; otherwise built from components.
func (c DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode,
	)
}

// Load reads configuration from environment, with optional .env file.
func Load() (*Config, error) {
	_ = godotenv.Load()      // .env
	_ = godotenv.Load("env") // env (no leading dot)

	cfg := &Config{
		Server: ServerConfig{
			Port:               getEnv("PORT", "8080"),
			ReadTimeout:        getEnvInt("READ_TIMEOUT_SEC", 30),
			WriteTimeout:       getEnvInt("WRITE_TIMEOUT_SEC", 30),
			CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:3001"),
			DebugPprof:         getEnvBool("DEBUG_PPROF", false),
		},
		Database: DatabaseConfig{
			URL:      getEnv("DATABASE_URL", ""),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "agro_ad"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			MaxConns: int32(getEnvInt("DB_MAX_CONNS", 10)),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			Secret:       getEnv("JWT_SECRET", "change-me-in-production"),
			ExpireHours:  getEnvInt("JWT_EXPIRE_HOURS", 24),
			CookieName:   getEnv("SESSION_COOKIE_NAME", "agro_ad_session"),
			CookieDomain: getEnv("SESSION_COOKIE_DOMAIN", ""),
			CookieSecure: getEnvBool("SESSION_COOKIE_SECURE", false),
		},
		AWS: AWSConfig{
			Region:               getEnv("AWS_REGION", "us-east-1"),
			AccessKeyID:          getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey:      getEnv("AWS_SECRET_ACCESS_KEY", ""),
			MediaBucket:          getEnv("AWS_S3_MEDIA_BUCKET", ""),
			Endpoint:             getEnv("AWS_S3_ENDPOINT", ""),
			PublicBaseURL:        getEnv("MEDIA_PUBLIC_BASE_URL", ""),
			PresignExpireMinutes: getEnvInt("AWS_PRESIGN_EXPIRE_MINUTES", 15),
		},
		Display: DisplayConfig{
			ServerURL:            getEnv("DISPLAY_SERVER_URL", "http://localhost:8080"),
			TVIDs:                splitTrim(getEnv("DISPLAY_TV_IDS", ""), ","),
			PollSeconds:          getEnvInt("DISPLAY_POLL_SECONDS", 60),
			VideoFallbackSeconds: getEnvInt("DISPLAY_VIDEO_SECONDS", 30),
			ProbeTimeoutSeconds:  getEnvInt("DISPLAY_PROBE_TIMEOUT_SEC", 5),
			HTTPTimeoutSeconds:   getEnvInt("DISPLAY_HTTP_TIMEOUT_SEC", 10),
		},
	}
	if cfg.JWT.ExpireHours <= 0 {
		return nil, fmt.Errorf("JWT_EXPIRE_HOURS must be positive, got %d", cfg.JWT.ExpireHours)
	}
	return cfg, nil
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func splitTrim(s, sep string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, v := range strings.Split(s, sep) {
		if t := strings.TrimSpace(v); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
