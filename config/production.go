// Package config provides environment-driven configuration for the dashboard service
package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// ProductionConfig holds every knob the service reads from the environment
type ProductionConfig struct {
	App      AppConfig      `json:"app"`
	Server   ServerConfig   `json:"server"`
	Database DatabaseConfig `json:"database"`
	Redis    RedisConfig    `json:"redis"`
	Security SecurityConfig `json:"security"`
	Admin    AdminConfig    `json:"admin"`
	Realtime RealtimeConfig `json:"realtime"`
	Logging  LoggingConfig  `json:"logging"`
	Metrics  MetricsConfig  `json:"metrics"`
}

// AppConfig holds application identity settings
type AppConfig struct {
	Name        string `json:"name"`
	Environment string `json:"environment"`
	Version     string `json:"version"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Host            string        `json:"host"`
	Port            int           `json:"port"`
	ReadTimeout     time.Duration `json:"read_timeout"`
	WriteTimeout    time.Duration `json:"write_timeout"`
	IdleTimeout     time.Duration `json:"idle_timeout"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout"`
	BodyLimit       int           `json:"body_limit"`
	EnableCORS      bool          `json:"enable_cors"`
	AllowedOrigins  []string      `json:"allowed_origins"`
	RateLimitMax    int           `json:"rate_limit_max"`
	RateLimitWindow time.Duration `json:"rate_limit_window"`
}

// DatabaseConfig holds PostgreSQL settings
type DatabaseConfig struct {
	Host            string        `json:"host"`
	Port            int           `json:"port"`
	User            string        `json:"user"`
	Password        string        `json:"-"`
	Name            string        `json:"name"`
	SSLMode         string        `json:"ssl_mode"`
	MaxOpenConns    int           `json:"max_open_conns"`
	MaxIdleConns    int           `json:"max_idle_conns"`
	ConnMaxLifetime time.Duration `json:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `json:"conn_max_idle_time"`
	AutoMigrate     bool          `json:"auto_migrate"`
}

// DSN builds the PostgreSQL connection string
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

// RedisConfig holds Redis settings for the realtime backplane
type RedisConfig struct {
	Enabled  bool   `json:"enabled"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Password string `json:"-"`
	DB       int    `json:"db"`
}

// Addr returns host:port for the Redis client
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// SecurityConfig holds JWT and captcha settings
type SecurityConfig struct {
	JWTSecretKey     string        `json:"-"`
	JWTUseRSAKeys    bool          `json:"jwt_use_rsa_keys"`
	JWTPrivateKeyPEM string        `json:"-"`
	JWTPublicKeyPEM  string        `json:"-"`
	JWTIssuer        string        `json:"jwt_issuer"`
	JWTAudience      string        `json:"jwt_audience"`
	CaptchaTTL       time.Duration `json:"captcha_ttl"`
	CaptchaPadding   int           `json:"captcha_padding"`
	CaptchaImageSize int           `json:"captcha_image_size"`
}

// AdminConfig holds the single-admin deployment settings
type AdminConfig struct {
	// AllowedEmail is the only email accepted at the admin login.
	AllowedEmail string `json:"allowed_email"`
	// BootstrapPassword seeds the admin row on first start when no admin
	// exists yet. Ignored afterwards.
	BootstrapPassword string `json:"-"`
}

// RealtimeConfig holds the WebSocket fan-out listener settings
type RealtimeConfig struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

// LoggingConfig holds log output and rotation settings
type LoggingConfig struct {
	Level      string `json:"level"`
	FilePath   string `json:"file_path"`
	MaxSizeMB  int    `json:"max_size_mb"`
	MaxBackups int    `json:"max_backups"`
	MaxAgeDays int    `json:"max_age_days"`
	Compress   bool   `json:"compress"`
}

// MetricsConfig holds Prometheus settings
type MetricsConfig struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

// LoadProductionConfig reads configuration from the environment, with an
// optional .env file for local development.
func LoadProductionConfig() (*ProductionConfig, error) {
	loadEnvFile(".env")

	cfg := &ProductionConfig{
		App: AppConfig{
			Name:        getEnvString("APP_NAME", "tasksms-dashboard"),
			Environment: getEnvString("APP_ENV", "production"),
			Version:     getEnvString("APP_VERSION", "dev"),
		},
		Server: ServerConfig{
			Host:            getEnvString("SERVER_HOST", "0.0.0.0"),
			Port:            getEnvInt("SERVER_PORT", 8080),
			ReadTimeout:     getEnvDuration("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    getEnvDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:     getEnvDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
			ShutdownTimeout: getEnvDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
			BodyLimit:       getEnvInt("SERVER_BODY_LIMIT", 4*1024*1024),
			EnableCORS:      getEnvBool("SERVER_ENABLE_CORS", true),
			AllowedOrigins:  getEnvStringSlice("SERVER_ALLOWED_ORIGINS", []string{"*"}),
			RateLimitMax:    getEnvInt("SERVER_RATE_LIMIT_MAX", 120),
			RateLimitWindow: getEnvDuration("SERVER_RATE_LIMIT_WINDOW", time.Minute),
		},
		Database: DatabaseConfig{
			Host:            getEnvString("DB_HOST", "localhost"),
			Port:            getEnvInt("DB_PORT", 5432),
			User:            getEnvString("DB_USER", "dashboard"),
			Password:        getEnvString("DB_PASSWORD", ""),
			Name:            getEnvString("DB_NAME", "dashboard"),
			SSLMode:         getEnvString("DB_SSL_MODE", "require"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
			ConnMaxIdleTime: getEnvDuration("DB_CONN_MAX_IDLE_TIME", 15*time.Minute),
			AutoMigrate:     getEnvBool("DB_AUTO_MIGRATE", false),
		},
		Redis: RedisConfig{
			Enabled:  getEnvBool("REDIS_ENABLED", false),
			Host:     getEnvString("REDIS_HOST", "localhost"),
			Port:     getEnvInt("REDIS_PORT", 6379),
			Password: getEnvString("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Security: SecurityConfig{
			JWTSecretKey:     getEnvString("JWT_SECRET_KEY", ""),
			JWTUseRSAKeys:    getEnvBool("JWT_USE_RSA_KEYS", false),
			JWTPrivateKeyPEM: getEnvString("JWT_PRIVATE_KEY_PEM", ""),
			JWTPublicKeyPEM:  getEnvString("JWT_PUBLIC_KEY_PEM", ""),
			JWTIssuer:        getEnvString("JWT_ISSUER", "tasksms-dashboard"),
			JWTAudience:      getEnvString("JWT_AUDIENCE", "tasksms-dashboard-clients"),
			CaptchaTTL:       getEnvDuration("CAPTCHA_TTL", 2*time.Minute),
			CaptchaPadding:   getEnvInt("CAPTCHA_PADDING", 10),
			CaptchaImageSize: getEnvInt("CAPTCHA_IMAGE_SIZE", 220),
		},
		Admin: AdminConfig{
			AllowedEmail:      getEnvString("ADMIN_ALLOWED_EMAIL", "admin@tasksms.com"),
			BootstrapPassword: getEnvString("ADMIN_BOOTSTRAP_PASSWORD", ""),
		},
		Realtime: RealtimeConfig{
			Host: getEnvString("REALTIME_HOST", "0.0.0.0"),
			Port: getEnvInt("REALTIME_PORT", 8081),
		},
		Logging: LoggingConfig{
			Level:      getEnvString("LOG_LEVEL", "info"),
			FilePath:   getEnvString("LOG_FILE_PATH", ""),
			MaxSizeMB:  getEnvInt("LOG_MAX_SIZE_MB", 100),
			MaxBackups: getEnvInt("LOG_MAX_BACKUPS", 7),
			MaxAgeDays: getEnvInt("LOG_MAX_AGE_DAYS", 30),
			Compress:   getEnvBool("LOG_COMPRESS", true),
		},
		Metrics: MetricsConfig{
			Enabled: getEnvBool("METRICS_ENABLED", true),
			Path:    getEnvString("METRICS_PATH", "/metrics"),
		},
	}

	if err := ValidateProductionConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ValidateProductionConfig rejects configurations that cannot possibly run
func ValidateProductionConfig(cfg *ProductionConfig) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", cfg.Server.Port)
	}
	if cfg.Realtime.Port <= 0 || cfg.Realtime.Port > 65535 {
		return fmt.Errorf("invalid realtime port: %d", cfg.Realtime.Port)
	}
	if cfg.Server.Port == cfg.Realtime.Port {
		return fmt.Errorf("server and realtime listeners cannot share port %d", cfg.Server.Port)
	}
	if cfg.Database.Host == "" || cfg.Database.Name == "" || cfg.Database.User == "" {
		return fmt.Errorf("database host, name, and user are required")
	}
	if cfg.Security.JWTUseRSAKeys {
		if cfg.Security.JWTPrivateKeyPEM == "" || cfg.Security.JWTPublicKeyPEM == "" {
			return fmt.Errorf("JWT RSA keys are enabled but not provided")
		}
	} else if cfg.Security.JWTSecretKey == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	} else if len(cfg.Security.JWTSecretKey) < 32 {
		return fmt.Errorf("JWT_SECRET_KEY must be at least 32 characters")
	}
	if cfg.Admin.AllowedEmail == "" {
		return fmt.Errorf("ADMIN_ALLOWED_EMAIL is required")
	}
	if cfg.Redis.Enabled && cfg.Redis.Host == "" {
		return fmt.Errorf("REDIS_HOST is required when Redis is enabled")
	}
	return nil
}

// loadEnvFile loads KEY=VALUE pairs from a file into the process environment.
// Existing environment variables win over file values.
func loadEnvFile(path string) {
	file, err := os.Open(path)
	if err != nil {
		return
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), `"'`)
		if _, exists := os.LookupEnv(key); !exists {
			os.Setenv(key, value)
		}
	}
}

func getEnvString(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvStringSlice(key string, fallback []string) []string {
	if value, ok := os.LookupEnv(key); ok {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return fallback
}
