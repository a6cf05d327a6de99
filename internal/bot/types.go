package bot

import (
	"context"

	tbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// Sender is the part of the Telegram client used to answer /start.
type Sender interface {
	SendPhoto(ctx context.Context, params *tbot.SendPhotoParams) (*models.Message, error)
	SendMessage(ctx context.Context, params *tbot.SendMessageParams) (*models.Message, error)
}

// Poller runs the receive loop until ctx is cancelled.
type Poller interface {
	Start(ctx context.Context)
}
