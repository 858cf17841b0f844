package notify

import (
	"signal_bot/internal/modules/notify/service"

	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module("notify",
		fx.Provide(
			service.NewTelegram, // *service.Telegram
			service.NewGate,     // *service.Gate
			// адаптер: *service.Telegram -> service.Sender
			func(t *service.Telegram) service.Sender {
				return t
			},
			service.NewNotifier, // *service.Notifier
		),
	)
}
