package app

import (
	"errors"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds runtime configuration for the application.
type Config struct {
	AppEnv            string        `envconfig:"APP_ENV" default:"development"`
	AppAddr           string        `envconfig:"APP_ADDR" default:":8080"`
	AppReadTimeout    time.Duration `envconfig:"APP_READ_TIMEOUT" default:"15s"`
	AppWriteTimeout   time.Duration `envconfig:"APP_WRITE_TIMEOUT" default:"15s"`
	AppRequestTimeout time.Duration `envconfig:"APP_REQUEST_TIMEOUT" default:"30s"`

	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`

	RedisAddr     string        `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"`
	SessionSecret string        `envconfig:"SESSION_SECRET" required:"true"`
	SessionTTL    time.Duration `envconfig:"SESSION_TTL" default:"12h"`

	CSRFSecret string `envconfig:"CSRF_SECRET" required:"true"`

	APIBaseURL string        `envconfig:"API_BASE_URL" default:"http://localhost:5010/api/v1"`
	APITimeout time.Duration `envconfig:"API_TIMEOUT" default:"10s"`

	KeycloakURL          string `envconfig:"KEYCLOAK_URL" default:"http://localhost:8180"`
	KeycloakRealm        string `envconfig:"KEYCLOAK_REALM" default:"webapp"`
	KeycloakClientID     string `envconfig:"KEYCLOAK_CLIENT_ID" default:"jwt-headless"`
	KeycloakClientSecret string `envconfig:"KEYCLOAK_CLIENT_SECRET"`

	FormStateTTL  time.Duration `envconfig:"FORM_STATE_TTL" default:"1h"`
	InFlightTTL   time.Duration `envconfig:"IN_FLIGHT_TTL" default:"30s"`
	ViewCacheTTL  time.Duration `envconfig:"VIEW_CACHE_TTL" default:"30s"`
	DefaultLocale string        `envconfig:"DEFAULT_LOCALE" default:"bg"`

	RateLimitPerMinute int `envconfig:"RATE_LIMIT_PER_MINUTE" default:"300"`
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if cfg.SessionSecret == "" {
		return nil, errors.New("session secret must be provided")
	}
	if cfg.CSRFSecret == "" {
		return nil, errors.New("csrf secret must be provided")
	}
	if cfg.APIBaseURL == "" {
		return nil, errors.New("api base url must be provided")
	}
	return &cfg, nil
}

// IsProduction returns true when the application runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}
