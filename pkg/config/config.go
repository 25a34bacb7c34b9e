package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App     AppConfig     `mapstructure:"app"`
	API     APIConfig     `mapstructure:"api"`
	Session SessionConfig `mapstructure:"session"`
	Redis   RedisConfig   `mapstructure:"redis"`
	Poll    PollConfig    `mapstructure:"poll"`
	OTel    OTelConfig    `mapstructure:"otel"`
	FakeAPI FakeAPIConfig `mapstructure:"fakeapi"`
}

// AppConfig holds application-level settings
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"` // development, staging, production
	Debug       bool   `mapstructure:"debug"`
	Version     string `mapstructure:"version"`
}

// APIConfig holds settings for the remote storefront API
type APIConfig struct {
	BaseURL       string        `mapstructure:"base_url"`
	Timeout       time.Duration `mapstructure:"timeout"`
	UserAgent     string        `mapstructure:"user_agent"`
	RedirectDelay time.Duration `mapstructure:"redirect_delay"`

	// Retry on transport failures is off unless RetryMax > 0
	RetryMax             int           `mapstructure:"retry_max"`
	RetryInitialInterval time.Duration `mapstructure:"retry_initial_interval"`
	RetryMaxInterval     time.Duration `mapstructure:"retry_max_interval"`
}

// SessionConfig holds bearer token store settings
type SessionConfig struct {
	Store string        `mapstructure:"store"` // file, memory, redis
	File  string        `mapstructure:"file"`
	Key   string        `mapstructure:"key"`
	TTL   time.Duration `mapstructure:"ttl"`
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// Addr returns the Redis address
func (r *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// PollConfig holds background refresh intervals
type PollConfig struct {
	PendingReviewsInterval time.Duration `mapstructure:"pending_reviews_interval"`
}

// OTelConfig holds OpenTelemetry settings
type OTelConfig struct {
	Enabled       bool    `mapstructure:"enabled"`
	ServiceName   string  `mapstructure:"service_name"`
	CollectorAddr string  `mapstructure:"collector_addr"`
	SampleRatio   float64 `mapstructure:"sample_ratio"`
}

// FakeAPIConfig holds settings for the local fixture backend
type FakeAPIConfig struct {
	Host          string `mapstructure:"host"`
	Port          int    `mapstructure:"port"`
	JWTSecret     string `mapstructure:"jwt_secret"`
	AdminEmail    string `mapstructure:"admin_email"`
	AdminPassword string `mapstructure:"admin_password"`
}

// Session store kinds
const (
	StoreFile   = "file"
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

const defaultFakeAPISecret = "fakeapi-secret-change-me"

// Load loads configuration from environment variables and .env file
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")

	// A missing .env is fine, environment variables still apply
	_ = v.ReadInConfig()

	return load(v)
}

// LoadWithPath loads configuration from a specific path
func LoadWithPath(path string) (*Config, error) {
	v := viper.New()

	v.SetConfigFile(path)
	v.SetConfigType("env")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return load(v)
}

func load(v *viper.Viper) (*Config, error) {
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	cfg := &Config{}
	bindConfig(v, cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("APP_NAME", "glownatura-admin")
	v.SetDefault("APP_ENVIRONMENT", "development")
	v.SetDefault("APP_DEBUG", false)
	v.SetDefault("APP_VERSION", "1.0.0")

	// API defaults; the long timeout rides out backend cold starts
	v.SetDefault("API_BASE_URL", "https://backendglownaturas.onrender.com")
	v.SetDefault("API_TIMEOUT", "60s")
	v.SetDefault("API_USER_AGENT", "glownatura-admin/1.0")
	v.SetDefault("API_REDIRECT_DELAY", "100ms")
	v.SetDefault("API_RETRY_MAX", 0)
	v.SetDefault("API_RETRY_INITIAL_INTERVAL", "1s")
	v.SetDefault("API_RETRY_MAX_INTERVAL", "10s")

	// Session defaults
	v.SetDefault("SESSION_STORE", StoreFile)
	v.SetDefault("SESSION_FILE", defaultSessionFile())
	v.SetDefault("SESSION_KEY", "auth_token")
	v.SetDefault("SESSION_TTL", "168h") // 7 days

	// Redis defaults
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_POOL_SIZE", 10)
	v.SetDefault("REDIS_DIAL_TIMEOUT", "5s")
	v.SetDefault("REDIS_READ_TIMEOUT", "3s")
	v.SetDefault("REDIS_WRITE_TIMEOUT", "3s")

	// Poll defaults
	v.SetDefault("POLL_PENDING_REVIEWS_INTERVAL", "60s")

	// OTel defaults
	v.SetDefault("OTEL_ENABLED", false)
	v.SetDefault("OTEL_SERVICE_NAME", "glownatura-admin")
	v.SetDefault("OTEL_COLLECTOR_ADDR", "localhost:4317")
	v.SetDefault("OTEL_SAMPLE_RATIO", 1.0)

	// Fixture backend defaults
	v.SetDefault("FAKEAPI_HOST", "127.0.0.1")
	v.SetDefault("FAKEAPI_PORT", 8090)
	v.SetDefault("FAKEAPI_JWT_SECRET", defaultFakeAPISecret)
	v.SetDefault("FAKEAPI_ADMIN_EMAIL", "admin@glownatura.test")
	v.SetDefault("FAKEAPI_ADMIN_PASSWORD", "glownatura123")
}

func bindConfig(v *viper.Viper, cfg *Config) {
	// App
	cfg.App.Name = v.GetString("APP_NAME")
	cfg.App.Environment = v.GetString("APP_ENVIRONMENT")
	cfg.App.Debug = v.GetBool("APP_DEBUG")
	cfg.App.Version = v.GetString("APP_VERSION")

	// API
	cfg.API.BaseURL = strings.TrimRight(v.GetString("API_BASE_URL"), "/")
	cfg.API.Timeout = v.GetDuration("API_TIMEOUT")
	cfg.API.UserAgent = v.GetString("API_USER_AGENT")
	cfg.API.RedirectDelay = v.GetDuration("API_REDIRECT_DELAY")
	cfg.API.RetryMax = v.GetInt("API_RETRY_MAX")
	cfg.API.RetryInitialInterval = v.GetDuration("API_RETRY_INITIAL_INTERVAL")
	cfg.API.RetryMaxInterval = v.GetDuration("API_RETRY_MAX_INTERVAL")

	// Session
	cfg.Session.Store = strings.ToLower(v.GetString("SESSION_STORE"))
	cfg.Session.File = v.GetString("SESSION_FILE")
	cfg.Session.Key = v.GetString("SESSION_KEY")
	cfg.Session.TTL = v.GetDuration("SESSION_TTL")

	// Redis
	cfg.Redis.Host = v.GetString("REDIS_HOST")
	cfg.Redis.Port = v.GetInt("REDIS_PORT")
	cfg.Redis.Password = v.GetString("REDIS_PASSWORD")
	cfg.Redis.DB = v.GetInt("REDIS_DB")
	cfg.Redis.PoolSize = v.GetInt("REDIS_POOL_SIZE")
	cfg.Redis.DialTimeout = v.GetDuration("REDIS_DIAL_TIMEOUT")
	cfg.Redis.ReadTimeout = v.GetDuration("REDIS_READ_TIMEOUT")
	cfg.Redis.WriteTimeout = v.GetDuration("REDIS_WRITE_TIMEOUT")

	// Poll
	cfg.Poll.PendingReviewsInterval = v.GetDuration("POLL_PENDING_REVIEWS_INTERVAL")

	// OTel
	cfg.OTel.Enabled = v.GetBool("OTEL_ENABLED")
	cfg.OTel.ServiceName = v.GetString("OTEL_SERVICE_NAME")
	cfg.OTel.CollectorAddr = v.GetString("OTEL_COLLECTOR_ADDR")
	cfg.OTel.SampleRatio = v.GetFloat64("OTEL_SAMPLE_RATIO")

	// Fixture backend
	cfg.FakeAPI.Host = v.GetString("FAKEAPI_HOST")
	cfg.FakeAPI.Port = v.GetInt("FAKEAPI_PORT")
	cfg.FakeAPI.JWTSecret = v.GetString("FAKEAPI_JWT_SECRET")
	cfg.FakeAPI.AdminEmail = v.GetString("FAKEAPI_ADMIN_EMAIL")
	cfg.FakeAPI.AdminPassword = v.GetString("FAKEAPI_ADMIN_PASSWORD")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.App.Name == "" {
		return fmt.Errorf("app name is required")
	}

	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("invalid API base URL: %q", c.API.BaseURL)
	}

	// The backend is only reachable over HTTPS outside development
	if c.IsProduction() && u.Scheme != "https" {
		return fmt.Errorf("API base URL must use https in production")
	}

	if c.API.Timeout <= 0 {
		return fmt.Errorf("API timeout must be positive, got %s", c.API.Timeout)
	}

	if c.API.RetryMax < 0 {
		return fmt.Errorf("API retry max must not be negative, got %d", c.API.RetryMax)
	}

	switch c.Session.Store {
	case StoreFile:
		if c.Session.File == "" {
			return fmt.Errorf("SESSION_FILE is required for the file session store")
		}
	case StoreMemory, StoreRedis:
	default:
		return fmt.Errorf("unknown session store: %q", c.Session.Store)
	}

	if c.Session.Key == "" {
		return fmt.Errorf("session key is required")
	}

	if c.Session.TTL <= 0 {
		return fmt.Errorf("session TTL must be positive, got %s", c.Session.TTL)
	}

	return nil
}

// ValidateFakeAPI validates the fixture backend configuration
func (c *Config) ValidateFakeAPI() error {
	if c.FakeAPI.Port <= 0 || c.FakeAPI.Port > 65535 {
		return fmt.Errorf("invalid fakeapi port: %d", c.FakeAPI.Port)
	}
	if c.FakeAPI.JWTSecret == "" {
		return fmt.Errorf("FAKEAPI_JWT_SECRET is required")
	}
	if c.IsProduction() && c.FakeAPI.JWTSecret == defaultFakeAPISecret {
		return fmt.Errorf("FAKEAPI_JWT_SECRET must be changed in production")
	}
	return nil
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

func defaultSessionFile() string {
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "glownatura", "session.json")
}
