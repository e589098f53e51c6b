package app

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is loaded once at startup from the environment. The OIDC section is
// optional: when the provider settings are absent the federation path runs
// disabled while every local flow keeps working.
type Config struct {
	Issuer string `env:"AUTHCORE_ISSUER" envDefault:"authcore"`

	// Two independent signing secrets, one per token kind, so leaking one
	// cannot forge the other.
	AccessSecret  string `env:"AUTHCORE_ACCESS_SECRET,required,notEmpty"`
	RefreshSecret string `env:"AUTHCORE_REFRESH_SECRET,required,notEmpty"`

	DatabaseFile string `env:"AUTHCORE_DATABASE_FILE" envDefault:"authcore.db"`

	Env       string `env:"ENV" envDefault:"dev"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	ShutdownGracePeriod  time.Duration `env:"SHUTDOWN_GRACE_PERIOD" envDefault:"10s"`
	HousekeepingInterval time.Duration `env:"HOUSEKEEPING_INTERVAL" envDefault:"1h"`

	OIDC OIDCConfig `envPrefix:"OIDC_"`
}

// OIDCConfig carries the external provider settings. ClientSecret is the
// PEM-encoded RSA private key used to sign client assertions.
type OIDCConfig struct {
	ClientID         string `env:"CLIENT_ID"`
	ClientSecret     string `env:"CLIENT_SECRET"`
	Issuer           string `env:"ISSUER"`
	IntrospectionURL string `env:"INTROSPECTION_URL"`
	UserInfoURL      string `env:"USERINFO_URL"`
	KeyID            string `env:"KEY_ID"`
}

// Enabled reports whether enough provider settings are present to run the
// federation path.
func (c OIDCConfig) Enabled() bool {
	return c.ClientID != "" &&
		c.ClientSecret != "" &&
		c.Issuer != "" &&
		c.IntrospectionURL != "" &&
		c.UserInfoURL != ""
}

// LoadConfig parses the environment. Missing required settings fail here,
// at startup, never mid-request.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
