package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/Netflix/go-env"
)

const (
	MailTransportSMTP  = "smtp"
	MailTransportRelay = "relay"
)

type Config struct {
	DatabaseDSN string `env:"DATABASE_DSN,required=true"`
	RedisURL    string `env:"REDIS_URL,required=true"`
	APIPort     int    `env:"API_PORT,default=8080"`
	LogLevel    string `env:"LOG_LEVEL,default=info"`

	MailTransport  string `env:"MAIL_TRANSPORT,default=smtp"`
	MailRelayURL   string `env:"MAIL_RELAY_URL"`
	SMTPUsername   string `env:"SMTP_USERNAME"`
	SMTPPassword   string `env:"SMTP_PASSWORD"`
	SMTPTLSPolicy  string `env:"SMTP_TLS_POLICY,default=opportunistic"`
	SMTPTimeoutSec int    `env:"SMTP_TIMEOUT_SEC,default=15"`

	TemplateDir  string `env:"TEMPLATE_DIR"`
	SiteBasePath string `env:"SITE_BASE_PATH,default=/geonetwork"`

	SettingsCacheTTLSec       int `env:"SETTINGS_CACHE_TTL_SEC,default=30"`
	RegistrationRateLimit     int `env:"REGISTRATION_RATE_LIMIT,default=10"`
	RegistrationRateWindowSec int `env:"REGISTRATION_RATE_WINDOW_SEC,default=60"`
	BcryptCost                int `env:"BCRYPT_COST,default=10"`
	ShutdownTimeoutSec        int `env:"SHUTDOWN_TIMEOUT_SEC,default=10"`
}

func Load() (*Config, error) {
	var cfg Config
	_, err := env.UnmarshalFromEnviron(&cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	c.MailTransport = strings.ToLower(strings.TrimSpace(c.MailTransport))
	c.SMTPTLSPolicy = strings.ToLower(strings.TrimSpace(c.SMTPTLSPolicy))

	switch c.MailTransport {
	case MailTransportSMTP:
	case MailTransportRelay:
		if strings.TrimSpace(c.MailRelayURL) == "" {
			return fmt.Errorf("MAIL_RELAY_URL is required when MAIL_TRANSPORT=%s", MailTransportRelay)
		}
	default:
		return fmt.Errorf("unsupported MAIL_TRANSPORT %q", c.MailTransport)
	}

	switch c.SMTPTLSPolicy {
	case "opportunistic", "mandatory", "none":
	default:
		return fmt.Errorf("unsupported SMTP_TLS_POLICY %q", c.SMTPTLSPolicy)
	}

	if c.RegistrationRateLimit < 0 {
		return fmt.Errorf("REGISTRATION_RATE_LIMIT must not be negative")
	}
	if c.RegistrationRateWindowSec <= 0 {
		return fmt.Errorf("REGISTRATION_RATE_WINDOW_SEC must be positive")
	}
	return nil
}

func (c *Config) SMTPTimeout() time.Duration {
	return time.Duration(c.SMTPTimeoutSec) * time.Second
}

func (c *Config) SettingsCacheTTL() time.Duration {
	return time.Duration(c.SettingsCacheTTLSec) * time.Second
}

func (c *Config) RegistrationRateWindow() time.Duration {
	return time.Duration(c.RegistrationRateWindowSec) * time.Second
}

func (c *Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownTimeoutSec) * time.Second
}
