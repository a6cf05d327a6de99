package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

var botKeys = []string{
	"BOT_TOKEN", "WEBAPP_URL", "LOGO_PATH", "WELCOME_TEXT",
	"TELEGRAM_API_URL", "APP_DIR", "TEXTS_FILE", "SEND_TIMEOUT",
}

func TestNewConfigMissingToken(t *testing.T) {
	unsetenv(t, botKeys...)

	_, err := NewConfig(&EnvFile{})
	if !errors.Is(err, ErrMissingToken) {
		t.Fatalf("err = %v, want ErrMissingToken", err)
	}
}

func TestNewConfigBlankToken(t *testing.T) {
	unsetenv(t, botKeys...)
	t.Setenv("BOT_TOKEN", "   ")

	_, err := NewConfig(&EnvFile{})
	if !errors.Is(err, ErrMissingToken) {
		t.Fatalf("err = %v, want ErrMissingToken", err)
	}
}

func TestNewConfigDefaults(t *testing.T) {
	unsetenv(t, botKeys...)
	t.Setenv("BOT_TOKEN", "abc123")
	t.Setenv("APP_DIR", t.TempDir())

	cfg, err := NewConfig(&EnvFile{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Token != "abc123" {
		t.Errorf("Token = %q", cfg.Token)
	}
	if cfg.WebAppURL != "" {
		t.Errorf("WebAppURL = %q, want empty", cfg.WebAppURL)
	}
	if cfg.LogoPath != DefaultLogoPath {
		t.Errorf("LogoPath = %q, want %q", cfg.LogoPath, DefaultLogoPath)
	}
	if cfg.WelcomeText != DefaultWelcomeText {
		t.Errorf("WelcomeText = %q, want default", cfg.WelcomeText)
	}
	if cfg.CatalogButton != DefaultCatalogButton {
		t.Errorf("CatalogButton = %q, want %q", cfg.CatalogButton, DefaultCatalogButton)
	}
}

func TestNewConfigBlankValuesFallBack(t *testing.T) {
	unsetenv(t, botKeys...)
	t.Setenv("BOT_TOKEN", "abc123")
	t.Setenv("LOGO_PATH", " ")
	t.Setenv("WELCOME_TEXT", "")
	t.Setenv("WEBAPP_URL", "  ")

	cfg, err := NewConfig(&EnvFile{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.LogoPath != DefaultLogoPath {
		t.Errorf("LogoPath = %q, want default", cfg.LogoPath)
	}
	if cfg.WelcomeText != DefaultWelcomeText {
		t.Errorf("WelcomeText = %q, want default", cfg.WelcomeText)
	}
	if cfg.WebAppURL != "" {
		t.Errorf("WebAppURL = %q, want empty", cfg.WebAppURL)
	}
}

func TestNewConfigFromEnvFile(t *testing.T) {
	unsetenv(t, botKeys...)
	path := writeFile(t, "BOT_TOKEN=abc123\nWELCOME_TEXT=\"Hi there\"\n")

	envFile, err := LoadEnvFile(path)
	if err != nil {
		t.Fatalf("load env file: %v", err)
	}

	cfg, err := NewConfig(envFile)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Token != "abc123" {
		t.Errorf("Token = %q, want %q", cfg.Token, "abc123")
	}
	if cfg.WelcomeText != "Hi there" {
		t.Errorf("WelcomeText = %q, want %q", cfg.WelcomeText, "Hi there")
	}
	if cfg.WebAppURL != "" {
		t.Errorf("WebAppURL = %q, want empty", cfg.WebAppURL)
	}
}

func TestNewConfigTextsFile(t *testing.T) {
	unsetenv(t, botKeys...)
	dir := t.TempDir()
	textsPath := filepath.Join(dir, "texts.toml")
	texts := "[start]\nwelcome = \"Из файла\"\ncatalog_button = \"Открыть каталог\"\n"
	if err := os.WriteFile(textsPath, []byte(texts), 0o600); err != nil {
		t.Fatalf("write texts: %v", err)
	}

	t.Setenv("BOT_TOKEN", "abc123")
	t.Setenv("TEXTS_FILE", textsPath)

	cfg, err := NewConfig(&EnvFile{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.WelcomeText != "Из файла" {
		t.Errorf("WelcomeText = %q, want text from file", cfg.WelcomeText)
	}
	if cfg.CatalogButton != "Открыть каталог" {
		t.Errorf("CatalogButton = %q, want label from file", cfg.CatalogButton)
	}

	t.Setenv("WELCOME_TEXT", "Из окружения")

	cfg, err = NewConfig(&EnvFile{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.WelcomeText != "Из окружения" {
		t.Errorf("WelcomeText = %q, environment must win over the texts file", cfg.WelcomeText)
	}
}

func TestNewConfigBadTextsFile(t *testing.T) {
	unsetenv(t, botKeys...)
	textsPath := filepath.Join(t.TempDir(), "texts.toml")
	if err := os.WriteFile(textsPath, []byte("[start\nwelcome = "), 0o600); err != nil {
		t.Fatalf("write texts: %v", err)
	}
	t.Setenv("BOT_TOKEN", "abc123")
	t.Setenv("TEXTS_FILE", textsPath)

	if _, err := NewConfig(&EnvFile{}); err == nil {
		t.Fatal("expected a decode error for a broken texts file")
	}
}

func TestNewOrderAPI(t *testing.T) {
	unsetenv(t,
		"ORDER_API_PORT", "PORT", "ALLOWED_ORIGIN", "ORDER_RATE_PER_MINUTE",
		"SMTP_HOST", "SMTP_PORT", "SMTP_SECURE", "SMTP_USER", "SMTP_PASS",
		"MAIL_TO", "MAIL_FROM", "SMTP_TIMEOUT", "SMTP_RETRY_FOR",
	)
	t.Setenv("PORT", "9000")
	t.Setenv("SMTP_USER", "shop@example.com")
	t.Setenv("SMTP_SECURE", "false")

	cfg, err := NewOrderAPI(&EnvFile{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := cfg.Addr(); got != ":9000" {
		t.Errorf("Addr() = %q, want :9000", got)
	}
	if cfg.AllowedOrigin != "*" {
		t.Errorf("AllowedOrigin = %q, want *", cfg.AllowedOrigin)
	}
	if cfg.SMTP.Host != "smtp.yandex.ru" || cfg.SMTP.Port != 465 || cfg.SMTP.Secure {
		t.Errorf("unexpected SMTP settings: %+v", cfg.SMTP)
	}
	if cfg.SMTP.MailTo != "shop@example.com" || cfg.SMTP.MailFrom != "shop@example.com" {
		t.Errorf("MailTo/MailFrom must default to SMTP_USER, got %q/%q", cfg.SMTP.MailTo, cfg.SMTP.MailFrom)
	}

	t.Setenv("ORDER_API_PORT", "8181")
	cfg, err = NewOrderAPI(&EnvFile{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := cfg.Addr(); got != ":8181" {
		t.Errorf("Addr() = %q, ORDER_API_PORT must win over PORT", got)
	}
}

func TestNewOrderAPIOrigin(t *testing.T) {
	tests := []struct {
		origin  string
		want    string
		wantErr bool
	}{
		{origin: "", want: "*"},
		{origin: " * ", want: "*"},
		{origin: "https://shop.example.com", want: "https://shop.example.com"},
		{origin: "http://localhost:5173", want: "http://localhost:5173"},
		{origin: "shop.example.com", wantErr: true},
		{origin: "ftp://shop.example.com", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.origin, func(t *testing.T) {
			unsetenv(t, "ORDER_API_PORT", "PORT", "ORDER_RATE_PER_MINUTE")
			t.Setenv("ALLOWED_ORIGIN", tt.origin)

			cfg, err := NewOrderAPI(&EnvFile{})
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidOrigin) {
					t.Fatalf("err = %v, want ErrInvalidOrigin", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if cfg.AllowedOrigin != tt.want {
				t.Errorf("AllowedOrigin = %q, want %q", cfg.AllowedOrigin, tt.want)
			}
		})
	}
}
