package config

import (
	"fmt"
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"studio-api/core/constants"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Auth     AuthConfig
	Booking  BookingConfig
}

type ServerConfig struct {
	Host     string
	Port     int
	LogLevel string
	Timezone string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type AuthConfig struct {
	JWTSecret          string
	AccessTokenTTLMin  int
	RefreshTokenTTLMin int
}

// BookingConfig carries the booking-engine tunables.
type BookingConfig struct {
	CancellationCutoffHours int
	DefaultWindowDays       int
}

var (
	mu       sync.RWMutex
	instance *Config
)

// Load reads configuration from environment variables, falling back to a
// local .env file when present, and caches the result for Get/GetSafe.
func Load() (*Config, error) {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", 7070)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("SERVER_TIMEZONE", "UTC")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "")
	v.SetDefault("DB_NAME", "studio")
	v.SetDefault("DB_SSLMODE", constants.DatabaseSSLMode)

	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("ACCESS_TOKEN_TTL_MIN", 60)
	v.SetDefault("REFRESH_TOKEN_TTL_MIN", 60*24*7)

	v.SetDefault("BOOKING_CUTOFF_HOURS", constants.DefaultCancellationCutoffHours)
	v.SetDefault("BOOKING_WINDOW_DAYS", constants.DefaultTimetableWindowDays)

	cfg := &Config{
		Server: ServerConfig{
			Host:     v.GetString("SERVER_HOST"),
			Port:     v.GetInt("SERVER_PORT"),
			LogLevel: v.GetString("LOG_LEVEL"),
			Timezone: v.GetString("SERVER_TIMEZONE"),
		},
		Database: DatabaseConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetInt("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			DBName:   v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSLMODE"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		Auth: AuthConfig{
			JWTSecret:          v.GetString("JWT_SECRET"),
			AccessTokenTTLMin:  v.GetInt("ACCESS_TOKEN_TTL_MIN"),
			RefreshTokenTTLMin: v.GetInt("REFRESH_TOKEN_TTL_MIN"),
		},
		Booking: BookingConfig{
			CancellationCutoffHours: v.GetInt("BOOKING_CUTOFF_HOURS"),
			DefaultWindowDays:       v.GetInt("BOOKING_WINDOW_DAYS"),
		},
	}

	if cfg.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.Booking.CancellationCutoffHours < 0 {
		return nil, fmt.Errorf("BOOKING_CUTOFF_HOURS must not be negative")
	}

	mu.Lock()
	instance = cfg
	mu.Unlock()

	return cfg, nil
}

// Get returns the loaded config. It panics when called before Load;
// use GetSafe in paths that may run before initialization.
func Get() *Config {
	mu.RLock()
	defer mu.RUnlock()
	if instance == nil {
		panic("config: Get called before Load")
	}
	return instance
}

func GetSafe() (*Config, bool) {
	mu.RLock()
	defer mu.RUnlock()
	return instance, instance != nil
}

// Set overrides the cached config. Intended for tests.
func Set(cfg *Config) {
	mu.Lock()
	instance = cfg
	mu.Unlock()
}
