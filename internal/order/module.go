package order

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"github.com/lambriz/catalogbot/internal/config"
	"github.com/lambriz/catalogbot/internal/mail"
)

type Params struct {
	fx.In

	Config *config.OrderAPI
	Sender mail.Sender
	Logger zerolog.Logger
}

type Result struct {
	fx.Out

	Server *http.Server
}

func New(lc fx.Lifecycle, p Params) Result {
	if p.Logger.GetLevel() > zerolog.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}

	handler := NewHandler(p.Sender, NewRenderer(), p.Logger)
	server := &http.Server{
		Addr:              p.Config.Addr(),
		Handler:           NewRouter(p.Config, handler, p.Logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(
		fx.Hook{
			OnStart: func(ctx context.Context) error {
				ln, err := net.Listen("tcp", server.Addr)
				if err != nil {
					return err
				}
				p.Logger.Info().Str("addr", server.Addr).Msg("order api started")
				go func() {
					if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
						p.Logger.Error().Err(err).Msg("order api stopped unexpectedly")
					}
				}()
				return nil
			},
			OnStop: func(ctx context.Context) error {
				p.Logger.Info().Msg("stopping order api...")
				return server.Shutdown(ctx)
			},
		},
	)

	return Result{Server: server}
}

func Module() fx.Option {
	return fx.Module(
		"order",
		fx.Provide(
			New,
		),
		fx.Invoke(
			func(*http.Server) {},
		),
	)
}
