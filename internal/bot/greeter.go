package bot

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/lambriz/catalogbot/internal/config"
)

// Greeter builds and sends the /start reply.
type Greeter struct {
	cfg *config.Config
}

func NewGreeter(cfg *config.Config) *Greeter {
	return &Greeter{cfg: cfg}
}

// LogoFile returns the logo location. Relative paths are taken from the
// installation directory.
func (g *Greeter) LogoFile() string {
	if filepath.IsAbs(g.cfg.LogoPath) {
		return g.cfg.LogoPath
	}
	return filepath.Join(g.cfg.BaseDir, g.cfg.LogoPath)
}

// Keyboard returns the catalog button markup, or nil when no web app URL is
// configured.
func (g *Greeter) Keyboard() *models.InlineKeyboardMarkup {
	if g.cfg.WebAppURL == "" {
		return nil
	}

	return &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{
				{
					Text:   g.cfg.CatalogButton,
					WebApp: &models.WebAppInfo{URL: g.cfg.WebAppURL},
				},
			},
		},
	}
}

// Greet sends the logo, when present, and then the welcome text. The photo
// is always delivered before the text; a failed photo stops the reply.
func (g *Greeter) Greet(ctx context.Context, s Sender, chatID int64) error {
	logo := g.LogoFile()
	if info, err := os.Stat(logo); err == nil && info.Mode().IsRegular() {
		if err := g.sendLogo(ctx, s, chatID, logo); err != nil {
			return fmt.Errorf("unable to send logo: %w", err)
		}
	}

	params := &tbot.SendMessageParams{
		ChatID: chatID,
		Text:   g.cfg.WelcomeText,
	}
	if kb := g.Keyboard(); kb != nil {
		params.ReplyMarkup = kb
	}

	if _, err := s.SendMessage(ctx, params); err != nil {
		return fmt.Errorf("unable to send welcome text: %w", err)
	}

	return nil
}

func (g *Greeter) sendLogo(ctx context.Context, s Sender, chatID int64, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = s.SendPhoto(ctx, &tbot.SendPhotoParams{
		ChatID: chatID,
		Photo: &models.InputFileUpload{
			Filename: filepath.Base(path),
			Data:     f,
		},
	})
	return err
}

// IsStartCommand reports whether the update is a /start command, with or
// without a bot mention or deep link payload.
func IsStartCommand(update *models.Update) bool {
	if update == nil || update.Message == nil {
		return false
	}

	fields := strings.Fields(update.Message.Text)
	if len(fields) == 0 {
		return false
	}

	command, _, _ := strings.Cut(fields[0], "@")
	return command == "/start"
}
