package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server    ServerConfig
	DB        DatabaseConfig
	Logging   LoggingConfig
	Matching  MatchingConfig
	Notify    NotifyConfig
	Feeds     FeedsConfig
	Cache     CacheConfig
	Geocode   GeocodeConfig
	RateLimit RateLimitConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type DatabaseConfig struct {
	Driver string // "sqlite" or "memory"
	Path   string
}

type LoggingConfig struct {
	Level string
}

type MatchingConfig struct {
	RadiusKm float64
}

type NotifyConfig struct {
	Provider    string // "log", "twilio" or "sns"
	Timeout     time.Duration
	Concurrency int

	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioFromNumber string

	SNSRegion string
}

type FeedsConfig struct {
	ReliefWebEnabled bool
	ReliefWebURL     string
	ReliefWebAppName string
	GDACSEnabled     bool
	GDACSURL         string
	NewsEnabled      bool
	NewsURL          string
	Timeout          time.Duration
	CacheTTL         time.Duration
	RefreshSchedule  string // cron spec, empty disables background refresh
}

type CacheConfig struct {
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

type GeocodeConfig struct {
	GoogleMapsAPIKey string
	Timeout          time.Duration
}

type RateLimitConfig struct {
	RPS int
}

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "localhost"),
			Port: getEnvInt("SERVER_PORT", 8080),
		},
		DB: DatabaseConfig{
			Driver: getEnv("DB_DRIVER", "sqlite"),
			Path:   getEnv("DB_PATH", "./data/relief.db"),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Matching: MatchingConfig{
			RadiusKm: getEnvFloat("MATCH_RADIUS_KM", 50),
		},
		Notify: NotifyConfig{
			Provider:         getEnv("NOTIFY_PROVIDER", "log"),
			Timeout:          getEnvDuration("NOTIFY_TIMEOUT", 10*time.Second),
			Concurrency:      getEnvInt("NOTIFY_CONCURRENCY", 4),
			TwilioAccountSID: getEnv("TWILIO_ACCOUNT_SID", ""),
			TwilioAuthToken:  getEnv("TWILIO_AUTH_TOKEN", ""),
			TwilioFromNumber: getEnv("TWILIO_FROM_NUMBER", ""),
			SNSRegion:        getEnv("SNS_REGION", "ap-south-1"),
		},
		Feeds: FeedsConfig{
			ReliefWebEnabled: getEnvBool("RELIEFWEB_ENABLED", true),
			ReliefWebURL:     getEnv("RELIEFWEB_URL", "https://api.reliefweb.int/v1"),
			ReliefWebAppName: getEnv("RELIEFWEB_APPNAME", "relief-coordinator"),
			GDACSEnabled:     getEnvBool("GDACS_ENABLED", true),
			GDACSURL:         getEnv("GDACS_URL", "https://www.gdacs.org/xml/rss.xml"),
			NewsEnabled:      getEnvBool("NEWS_RSS_ENABLED", true),
			NewsURL:          getEnv("NEWS_RSS_URL", "https://reliefweb.int/updates/rss.xml"),
			Timeout:          getEnvDuration("FEED_TIMEOUT", 15*time.Second),
			CacheTTL:         getEnvDuration("FEED_CACHE_TTL", 30*time.Minute),
			RefreshSchedule:  getEnv("FEED_REFRESH_SCHEDULE", ""),
		},
		Cache: CacheConfig{
			RedisAddr:     getEnv("REDIS_ADDR", ""),
			RedisPassword: getEnv("REDIS_PASSWORD", ""),
			RedisDB:       getEnvInt("REDIS_DB", 0),
		},
		Geocode: GeocodeConfig{
			GoogleMapsAPIKey: getEnv("GOOGLE_MAPS_API_KEY", ""),
			Timeout:          getEnvDuration("GEOCODE_TIMEOUT", 5*time.Second),
		},
		RateLimit: RateLimitConfig{
			RPS: getEnvInt("RATE_LIMIT_RPS", 20),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	if c.DB.Driver != "sqlite" && c.DB.Driver != "memory" {
		return fmt.Errorf("invalid db driver: %s", c.DB.Driver)
	}

	if c.Matching.RadiusKm <= 0 {
		return fmt.Errorf("match radius must be positive, got %v", c.Matching.RadiusKm)
	}

	switch c.Notify.Provider {
	case "log", "sns":
	case "twilio":
		if c.Notify.TwilioAccountSID == "" || c.Notify.TwilioAuthToken == "" || c.Notify.TwilioFromNumber == "" {
			return fmt.Errorf("twilio provider requires TWILIO_ACCOUNT_SID, TWILIO_AUTH_TOKEN and TWILIO_FROM_NUMBER")
		}
	default:
		return fmt.Errorf("invalid notify provider: %s", c.Notify.Provider)
	}
	if c.Notify.Timeout <= 0 {
		return fmt.Errorf("notify timeout must be positive")
	}
	if c.Notify.Concurrency < 1 {
		return fmt.Errorf("notify concurrency must be at least 1")
	}

	if c.Feeds.Timeout <= 0 {
		return fmt.Errorf("feed timeout must be positive")
	}
	if c.Feeds.CacheTTL < time.Minute {
		return fmt.Errorf("feed cache TTL must be at least 1 minute")
	}

	if c.Geocode.Timeout <= 0 {
		return fmt.Errorf("geocode timeout must be positive")
	}

	if c.RateLimit.RPS < 1 {
		return fmt.Errorf("rate limit must be at least 1 req/s")
	}

	return nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return fallback
}
