package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config captures all runtime configuration for the mail sender. Everything
// has a working default so the binary runs with no environment at all; the
// environment (or a .env file) overrides individual values.
type Config struct {
	App      AppConfig
	SMTP     SMTPConfig
	Tags     TagConfig
	Timeouts TimeoutConfig
}

// AppConfig contains generic application level settings.
type AppConfig struct {
	LogLevel string
}

// SMTPConfig identifies the SMTP submission endpoint.
type SMTPConfig struct {
	Host string
	Port int
}

// TagConfig holds the default secrets-file tags for the credential pair.
type TagConfig struct {
	Username string
	Password string
}

// TimeoutConfig contains timeout thresholds for outbound delivery.
type TimeoutConfig struct {
	SendTimeoutSeconds int
}

// Load reads environment variables, applies defaults, validates values and
// returns a populated Config instance. A .env file in the working directory
// is honored when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	ldr := &envLoader{}

	cfg := &Config{}
	cfg.App.LogLevel = ldr.getString("LOG_LEVEL", "debug")
	cfg.SMTP.Host = ldr.getString("SMTP_HOST", "smtp.gmail.com")
	cfg.SMTP.Port = ldr.getInt("SMTP_PORT", 587)
	cfg.Tags.Username = ldr.getString("USERNAME_TAG", "gmail_username")
	cfg.Tags.Password = ldr.getString("PASSWORD_TAG", "gmail_password")
	cfg.Timeouts.SendTimeoutSeconds = ldr.getInt("SEND_TIMEOUT_SECONDS", 30)

	if cfg.SMTP.Port <= 0 || cfg.SMTP.Port > 65535 {
		ldr.addError(fmt.Sprintf("SMTP_PORT must be between 1 and 65535; got %d", cfg.SMTP.Port))
	}
	if cfg.Timeouts.SendTimeoutSeconds <= 0 {
		ldr.addError(fmt.Sprintf("SEND_TIMEOUT_SECONDS must be positive; got %d", cfg.Timeouts.SendTimeoutSeconds))
	}

	if err := ldr.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

type envLoader struct {
	errs []string
}

func (l *envLoader) validate() error {
	if len(l.errs) == 0 {
		return nil
	}
	return fmt.Errorf("config validation failed: %s", strings.Join(l.errs, "; "))
}

func (l *envLoader) getString(key, def string) string {
	if val, ok := os.LookupEnv(key); ok {
		val = strings.TrimSpace(val)
		if val != "" {
			return val
		}
	}
	return def
}

func (l *envLoader) getInt(key string, def int) int {
	if val, ok := os.LookupEnv(key); ok {
		val = strings.TrimSpace(val)
		if val == "" {
			return def
		}
		i, err := strconv.Atoi(val)
		if err != nil {
			l.addError(fmt.Sprintf("%s must be a valid integer", key))
			return def
		}
		return i
	}
	return def
}

func (l *envLoader) addError(err string) {
	l.errs = append(l.errs, err)
}
