package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the configuration settings for the geocoding queue service.
//
// Fields:
// - Env: The current environment (e.g., local, development, production).
// - Port: The port for the HTTP API, health and metrics endpoints.
// - MonthlyLimit: The number of jobs a user may create per calendar month.
// - PollInterval: The interval of the in-process scheduler; zero disables it.
// - Location: The time zone used to compute calendar-month boundaries.
// - WorkerToken: The shared secret expected by the worker trigger.
// - Geocoder: Settings of the external geocoding provider and its rate limit.
// - RedisURL: Redis connection string, required by the redis limiter.
// - Database: Configuration settings for the PostgreSQL database.
type Config struct {
	Env          string         `yaml:"env"`
	Port         int            `yaml:"port"`
	MonthlyLimit int            `yaml:"queue.monthly_limit"`
	PollInterval time.Duration  `yaml:"queue.poll_interval"`
	Location     *time.Location `yaml:"queue.location"`
	WorkerToken  string         `yaml:"worker_token"`
	Geocoder     GeocoderConfig `yaml:"geocoder"`
	RedisURL     string         `yaml:"redis_url"`
	Database     PostgresConfig `yaml:"postgres"`
}

// GeocoderConfig holds the provider selection and outbound request settings.
type GeocoderConfig struct {
	Provider  string        `yaml:"provider"`   // Provider is nominatim or google.
	APIKey    string        `yaml:"api_key"`    // APIKey is required for google.
	BaseURL   string        `yaml:"base_url"`   // BaseURL overrides the Nominatim endpoint.
	UserAgent string        `yaml:"user_agent"` // UserAgent identifies this client to the provider.
	Language  string        `yaml:"language"`   // Language is sent as Accept-Language.
	Interval  time.Duration `yaml:"interval"`   // Interval is the minimum spacing between provider calls.
	Limiter   string        `yaml:"limiter"`    // Limiter is fixed, bucket or redis.
}

// PostgresConfig struct holds the configuration details for connecting to a PostgreSQL database.
type PostgresConfig struct {
	Host     string `yaml:"host"`                        // Host is the database server address.
	Port     string `yaml:"port"     env-default:"5432"` // Port is the database server port.
	User     string `yaml:"user"`                        // User is the database user.
	Password string `yaml:"password"`                    // Password is the database user's password.
	Name     string `yaml:"db_name"`                     // Name is the name of the database.
}

// MinGeocoderInterval is the smallest spacing between provider calls accepted
// outside the local environment.
const MinGeocoderInterval = time.Second

const envLocal = "local"

// MustLoad reads the configuration from the environment (and an optional .env file).
// It panics when a value is present but malformed.
func MustLoad() *Config {
	_ = godotenv.Load()

	port, err := strconv.Atoi(setDefaultEnv("QUEUE_PORT", "8080"))
	if err != nil {
		panic("failed to parse port from configuration")
	}

	limit, err := strconv.Atoi(setDefaultEnv("QUEUE_MONTHLY_LIMIT", "200"))
	if err != nil || limit < 0 {
		panic("failed to parse monthly limit from configuration, must be a non-negative integer")
	}

	pollInterval, err := time.ParseDuration(setDefaultEnv("QUEUE_POLL_INTERVAL", "0s"))
	if err != nil {
		panic("failed to parse poll interval from configuration")
	}

	loc, err := time.LoadLocation(setDefaultEnv("QUEUE_LOCATION", "UTC"))
	if err != nil {
		panic("failed to load quota time zone from configuration")
	}

	geoInterval, err := time.ParseDuration(setDefaultEnv("GEOCODER_INTERVAL", "1.1s"))
	if err != nil {
		panic("failed to parse geocoder interval from configuration")
	}

	env := setDefaultEnv("QUEUE_ENV", "production")
	limiter := setDefaultEnv("GEOCODER_LIMITER", "fixed")
	if env != envLocal {
		if geoInterval < MinGeocoderInterval {
			panic("geocoder interval must be at least 1s outside the local environment")
		}
		if limiter == "none" {
			panic("geocoder limiter none is only allowed in the local environment")
		}
	}

	return &Config{
		Env:          env,
		Port:         port,
		MonthlyLimit: limit,
		PollInterval: pollInterval,
		Location:     loc,
		WorkerToken:  os.Getenv("WORKER_TOKEN"),
		Geocoder: GeocoderConfig{
			Provider:  setDefaultEnv("GEOCODER_PROVIDER", "nominatim"),
			APIKey:    os.Getenv("GEOCODER_API_KEY"),
			BaseURL:   os.Getenv("GEOCODER_BASE_URL"),
			UserAgent: os.Getenv("GEOCODER_USER_AGENT"),
			Language:  setDefaultEnv("GEOCODER_LANGUAGE", "en"),
			Interval:  geoInterval,
			Limiter:   limiter,
		},
		RedisURL: os.Getenv("REDIS_URL"),
		Database: PostgresConfig{
			Host:     os.Getenv("DB_HOST"),
			Port:     setDefaultEnv("DB_PORT", "5432"),
			User:     os.Getenv("DB_USERNAME"),
			Password: os.Getenv("DB_PASSWORD"),
			Name:     os.Getenv("DB_NAME"),
		},
	}
}

func setDefaultEnv(key, override string) string {
	value, exists := os.LookupEnv(key)
	if !exists {
		value = override
	}

	return value
}
