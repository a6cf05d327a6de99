package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/kelseyhightower/envconfig"
	"go.uber.org/fx"
)

// ErrMissingToken is returned when BOT_TOKEN is absent or blank.
var ErrMissingToken = errors.New("BOT_TOKEN is required: set it in the environment or in config.env")

const (
	DefaultLogoPath      = "./assets/logo.png"
	DefaultCatalogButton = "Каталог"
	DefaultWelcomeText   = "Ламбриз — поставка оборудования и изделий из нержавейки. Откройте каталог и оформите заявку прямо в Mini App."
)

// Config holds the bot configuration. It is resolved once at startup and
// never changed afterwards.
type Config struct {
	Token       string        `envconfig:"BOT_TOKEN"`
	WebAppURL   string        `envconfig:"WEBAPP_URL"`
	LogoPath    string        `envconfig:"LOGO_PATH" default:"./assets/logo.png"`
	WelcomeText string        `envconfig:"WELCOME_TEXT"`
	APIURL      string        `envconfig:"TELEGRAM_API_URL"`
	SendTimeout time.Duration `envconfig:"SEND_TIMEOUT" default:"30s"`

	// Directory relative paths such as LogoPath are resolved against.
	// Defaults to the directory of the running executable.
	BaseDir string `envconfig:"APP_DIR"`

	// Path to the optional texts.toml file
	TextsFile string `envconfig:"TEXTS_FILE" default:"texts.toml"`

	// Label of the web app button, loaded from texts.toml
	CatalogButton string `ignored:"true"`
}

// Texts holds user-facing strings loaded from texts.toml.
type Texts struct {
	Welcome       string `toml:"welcome"`
	CatalogButton string `toml:"catalog_button"`
}

// TextsFile represents the structure of texts.toml.
type TextsFile struct {
	Start Texts `toml:"start"`
}

// LoadEnv loads the configuration from environment variables.
func (c Config) LoadEnv() (Config, error) {
	cfg := c

	if err := envconfig.Process("", &cfg); err != nil {
		return c, err
	}

	return cfg, nil
}

// LoadFile loads texts from the texts file. WELCOME_TEXT set in the
// environment takes precedence over the file.
func (c *Config) LoadFile() error {
	var texts TextsFile

	path := resolvePath(c.TextsFile)
	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, &texts); err != nil {
			return err
		}
	}

	if strings.TrimSpace(c.WelcomeText) == "" {
		c.WelcomeText = texts.Start.Welcome
	}
	if strings.TrimSpace(c.WelcomeText) == "" {
		c.WelcomeText = DefaultWelcomeText
	}

	c.CatalogButton = strings.TrimSpace(texts.Start.CatalogButton)
	if c.CatalogButton == "" {
		c.CatalogButton = DefaultCatalogButton
	}

	return nil
}

// Normalize fills defaults for values that were set but left blank.
func (c *Config) Normalize() {
	c.Token = strings.TrimSpace(c.Token)
	c.WebAppURL = strings.TrimSpace(c.WebAppURL)
	c.APIURL = strings.TrimSpace(c.APIURL)

	if strings.TrimSpace(c.LogoPath) == "" {
		c.LogoPath = DefaultLogoPath
	}

	if c.BaseDir == "" {
		if execPath, err := os.Executable(); err == nil {
			c.BaseDir = filepath.Dir(execPath)
		}
	}
}

// Validate ensures the configuration includes mandatory values.
func (c *Config) Validate() error {
	if c.Token == "" {
		return ErrMissingToken
	}
	return nil
}

// NewConfig resolves the bot configuration. The env file must be loaded
// first, which is why it is taken as a parameter.
func NewConfig(_ *EnvFile) (*Config, error) {
	var cfg Config
	loadedCfg, err := cfg.LoadEnv()
	if err != nil {
		return nil, err
	}

	loadedCfg.Normalize()

	if err := loadedCfg.Validate(); err != nil {
		return nil, err
	}

	if err := loadedCfg.LoadFile(); err != nil {
		return nil, err
	}

	return &loadedCfg, nil
}

func Module() fx.Option {
	return fx.Module(
		"config",
		fx.Provide(
			NewEnvFile,
			NewConfig,
			NewLogging,
			NewOrderAPI,
		),
	)
}
