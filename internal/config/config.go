package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App      AppConfig
	Mongo    MongoConfig
	Redis    RedisConfig
	Logger   LoggerConfig
	Auth     AuthConfig
	Dispatch DispatchConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// MongoConfig holds document store connection values.
type MongoConfig struct {
	URI            string
	Database       string
	ConnectTimeout time.Duration
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	JWTSecret             string
	AccessTokenTTLMinutes int
	BcryptCost            int
}

// DispatchConfig tunes the assignment, scheduling and quoting engine.
type DispatchConfig struct {
	SearchRadiusKM      float64
	DistanceWeight      float64
	EarliestWeight      float64
	WorkloadWeight      float64
	RatingWeight        float64
	JobDurationMins     int
	BreakMins           int
	LaborRatePerHour    float64
	Currency            string
	DefaultMaxDailyJobs int
	DefaultWorkStart    string
	DefaultWorkEnd      string
	LeaseTTLSeconds     int
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "dispatch-service"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Mongo: MongoConfig{
			URI:            getEnv("MONGO_URI", "mongodb://127.0.0.1:27017"),
			Database:       getEnv("MONGO_DATABASE", "dispatch"),
			ConnectTimeout: time.Duration(getEnvAsInt("MONGO_CONNECT_TIMEOUT_SECONDS", 10)) * time.Second,
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:             getEnv("AUTH_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
			BcryptCost:            getEnvAsInt("AUTH_BCRYPT_COST", 12),
		},
		Dispatch: DispatchConfig{
			SearchRadiusKM:      getEnvAsFloat("DISPATCH_SEARCH_RADIUS_KM", 15),
			DistanceWeight:      getEnvAsFloat("DISPATCH_DISTANCE_WEIGHT", 0.3),
			EarliestWeight:      getEnvAsFloat("DISPATCH_EARLIEST_WEIGHT", 0.3),
			WorkloadWeight:      getEnvAsFloat("DISPATCH_WORKLOAD_WEIGHT", 0.2),
			RatingWeight:        getEnvAsFloat("DISPATCH_RATING_WEIGHT", 0.2),
			JobDurationMins:     getEnvAsInt("DISPATCH_JOB_DURATION_MINS", 180),
			BreakMins:           getEnvAsInt("DISPATCH_BREAK_MINS", 30),
			LaborRatePerHour:    getEnvAsFloat("DISPATCH_LABOR_RATE_PER_HOUR", 1000),
			Currency:            getEnv("DISPATCH_CURRENCY", "KES"),
			DefaultMaxDailyJobs: getEnvAsInt("DISPATCH_DEFAULT_MAX_DAILY_JOBS", 5),
			DefaultWorkStart:    getEnv("DISPATCH_DEFAULT_WORK_START", "08:00"),
			DefaultWorkEnd:      getEnv("DISPATCH_DEFAULT_WORK_END", "17:00"),
			LeaseTTLSeconds:     getEnvAsInt("DISPATCH_LEASE_TTL_SECONDS", 30),
		},
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// LeaseTTL returns the advisory lock TTL.
func (d DispatchConfig) LeaseTTL() time.Duration {
	if d.LeaseTTLSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(d.LeaseTTLSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsFloat(key string, fallback float64) float64 {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return fallback
	}
	return parsed
}
