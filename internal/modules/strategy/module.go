package strategy

import (
	"signal_bot/internal/modules/strategy/service"

	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module("strategy",
		fx.Provide(
			service.NewParams,  // func(*config.Config) service.Params
			service.NewMachine, // *service.Machine
		),
	)
}
