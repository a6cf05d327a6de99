package bot

import (
	"context"

	tbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"github.com/lambriz/catalogbot/internal/config"
)

type Params struct {
	fx.In

	Config  *config.Config
	EnvFile *config.EnvFile
}

type Result struct {
	fx.Out

	Bot     *tbot.Bot
	Session *Session
}

func New(lc fx.Lifecycle, p Params, log zerolog.Logger) (Result, error) {
	log.Debug().
		Str("path", p.EnvFile.Path).
		Bool("found", p.EnvFile.Found).
		Strs("applied", p.EnvFile.Applied).
		Int("skipped_lines", p.EnvFile.Skipped).
		Msg("env file loaded")

	session := NewSession(NewGreeter(p.Config), p.Config, log)

	opts := []tbot.Option{
		// validate the token on first use, not at construction
		tbot.WithSkipGetMe(),
		// handlers run inside the receive loop so Start waits for them
		tbot.WithNotAsyncHandlers(),
		tbot.WithDefaultHandler(
			func(ctx context.Context, _ *tbot.Bot, update *models.Update) {
				session.Ignore(ctx, update)
			},
		),
		tbot.WithErrorsHandler(
			func(err error) {
				log.Error().Err(err).Msg("telegram client error")
			},
		),
	}
	if p.Config.APIURL != "" {
		opts = append(opts, tbot.WithServerURL(p.Config.APIURL))
	}

	tg, err := tbot.New(p.Config.Token, opts...)
	if err != nil {
		return Result{}, err
	}

	tg.RegisterHandlerMatchFunc(
		IsStartCommand,
		func(ctx context.Context, tg *tbot.Bot, update *models.Update) {
			session.HandleStart(ctx, tg, update)
		},
	)
	session.poller = tg

	lc.Append(
		fx.Hook{
			OnStart: session.Start,
			OnStop:  session.Stop,
		},
	)

	return Result{
		Bot:     tg,
		Session: session,
	}, nil
}

func Module() fx.Option {
	return fx.Module(
		"bot",
		fx.Provide(
			New,
		),
		fx.Invoke(
			func(bot *tbot.Bot) {},
		),
	)
}
