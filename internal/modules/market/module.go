package market

import (
	"signal_bot/internal/modules/market/service"

	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module("market",
		fx.Provide(
			service.NewClient, // func(*config.Config, *metrics.Recorder) *service.Client
		),
	)
}
