package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// ErrInvalidOrigin is returned when ALLOWED_ORIGIN is neither "*" nor an
// http(s) origin.
var ErrInvalidOrigin = errors.New("ALLOWED_ORIGIN must be * or start with http:// or https://")

// OrderAPI holds the configuration of the order API server.
type OrderAPI struct {
	Port          int    `envconfig:"ORDER_API_PORT"`
	FallbackPort  int    `envconfig:"PORT" default:"8080"`
	AllowedOrigin string `envconfig:"ALLOWED_ORIGIN" default:"*"`
	RatePerMinute int    `envconfig:"ORDER_RATE_PER_MINUTE" default:"30"`

	SMTP SMTP `ignored:"true"`
}

// SMTP holds the outgoing mail settings.
type SMTP struct {
	Host     string        `envconfig:"SMTP_HOST" default:"smtp.yandex.ru"`
	Port     int           `envconfig:"SMTP_PORT" default:"465"`
	Secure   bool          `envconfig:"SMTP_SECURE" default:"true"`
	User     string        `envconfig:"SMTP_USER"`
	Pass     string        `envconfig:"SMTP_PASS"`
	MailTo   string        `envconfig:"MAIL_TO"`
	MailFrom string        `envconfig:"MAIL_FROM"`
	Timeout  time.Duration `envconfig:"SMTP_TIMEOUT" default:"20s"`

	// Upper bound for retrying a failed delivery
	RetryFor time.Duration `envconfig:"SMTP_RETRY_FOR" default:"1m"`
}

// Addr returns the listen address of the order API.
func (c *OrderAPI) Addr() string {
	port := c.Port
	if port == 0 {
		port = c.FallbackPort
	}
	return ":" + strconv.Itoa(port)
}

func NewOrderAPI(_ *EnvFile) (*OrderAPI, error) {
	var cfg OrderAPI
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := envconfig.Process("", &cfg.SMTP); err != nil {
		return nil, err
	}

	cfg.AllowedOrigin = strings.TrimSpace(cfg.AllowedOrigin)
	if cfg.AllowedOrigin == "" {
		cfg.AllowedOrigin = "*"
	}
	if !validOrigin(cfg.AllowedOrigin) {
		return nil, fmt.Errorf("invalid origin %q: %w", cfg.AllowedOrigin, ErrInvalidOrigin)
	}

	smtp := &cfg.SMTP
	smtp.Host = strings.TrimSpace(smtp.Host)
	smtp.User = strings.TrimSpace(smtp.User)
	smtp.Pass = strings.TrimSpace(smtp.Pass)
	smtp.MailTo = strings.TrimSpace(smtp.MailTo)
	smtp.MailFrom = strings.TrimSpace(smtp.MailFrom)
	if smtp.MailTo == "" {
		smtp.MailTo = smtp.User
	}
	if smtp.MailFrom == "" {
		smtp.MailFrom = smtp.User
	}

	return &cfg, nil
}

func validOrigin(origin string) bool {
	if origin == "*" {
		return true
	}
	return strings.HasPrefix(origin, "http://") || strings.HasPrefix(origin, "https://")
}
