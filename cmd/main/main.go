package main

import (
	"github.com/lambriz/catalogbot/internal/bot"
	"github.com/lambriz/catalogbot/internal/config"
	"github.com/lambriz/catalogbot/internal/log"
	"go.uber.org/fx"
)

func main() {

	fx.New(
		config.Module(),
		log.Module(),
		bot.Module(),
	).Run()
}
