package state

import (
	"signal_bot/internal/modules/state/service"

	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module("state",
		fx.Provide(
			service.NewStore, // func(*config.Config) *service.Store
		),
	)
}
