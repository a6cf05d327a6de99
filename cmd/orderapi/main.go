package main

import (
	"github.com/lambriz/catalogbot/internal/config"
	"github.com/lambriz/catalogbot/internal/log"
	"github.com/lambriz/catalogbot/internal/mail"
	"github.com/lambriz/catalogbot/internal/order"
	"go.uber.org/fx"
)

func main() {
	fx.New(
		config.Module(),
		log.Module(),
		mail.Module(),
		order.Module(),
	).Run()
}
