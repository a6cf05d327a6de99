package bot

import (
	"context"
	"time"

	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog"

	"github.com/lambriz/catalogbot/internal/config"
)

// Session owns the receive loop and dispatches /start to the greeter.
type Session struct {
	greeter     *Greeter
	poller      Poller
	sendTimeout time.Duration
	log         zerolog.Logger

	cancel context.CancelFunc
	done   chan struct{}
}

func NewSession(greeter *Greeter, cfg *config.Config, log zerolog.Logger) *Session {
	return &Session{
		greeter:     greeter,
		sendTimeout: cfg.SendTimeout,
		log:         log,
	}
}

// HandleStart answers a /start update. Replies are sent on a context that
// outlives the receive loop so shutdown does not cut them off halfway.
func (s *Session) HandleStart(ctx context.Context, sender Sender, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	sendCtx := context.WithoutCancel(ctx)
	if s.sendTimeout > 0 {
		var cancel context.CancelFunc
		sendCtx, cancel = context.WithTimeout(sendCtx, s.sendTimeout)
		defer cancel()
	}

	if err := s.greeter.Greet(sendCtx, sender, chatID); err != nil {
		s.log.Error().Err(err).Int64("chat_id", chatID).Msg("unable to answer start command")
		return
	}

	s.log.Info().Int64("chat_id", chatID).Msg("start command answered")
}

// Ignore drops any update that is not a /start command.
func (s *Session) Ignore(_ context.Context, update *models.Update) {
	s.log.Debug().Int64("update_id", update.ID).Msg("update ignored")
}

// Start launches the receive loop in the background.
func (s *Session) Start(_ context.Context) error {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})

	s.log.Info().Msg("starting telegram bot...")
	go func() {
		defer close(s.done)
		s.poller.Start(ctx)
	}()

	return nil
}

// Stop cancels the receive loop and waits for it, and for any handler still
// running, to return.
func (s *Session) Stop(ctx context.Context) error {
	if s.cancel == nil {
		return nil
	}

	s.log.Info().Msg("stopping telegram bot...")
	s.cancel()

	select {
	case <-s.done:
		s.log.Info().Msg("telegram bot stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
