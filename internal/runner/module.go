package runner

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/fx"

	"signal_bot/internal/modules/config"
	health "signal_bot/internal/modules/health/service"
	market "signal_bot/internal/modules/market/service"
	notify "signal_bot/internal/modules/notify/service"
	state "signal_bot/internal/modules/state/service"
	strategy "signal_bot/internal/modules/strategy/service"
	"signal_bot/pkg/logger"
	"signal_bot/pkg/metrics"
)

func newMonitor(
	cfg *config.Config,
	fetcher *market.Client,
	store *state.Store,
	notifier *notify.Notifier,
	machine *strategy.Machine,
	hs *health.State,
	m *metrics.Recorder,
) *Monitor {
	return NewMonitor(cfg, fetcher, store, notifier, machine, hs, m)
}

func Module() fx.Option {
	return fx.Module("runner",
		fx.Provide(
			newMonitor, // *Monitor
		),
		fx.Invoke(func(
			lc fx.Lifecycle,
			m *Monitor,
			ctx context.Context,
		) {
			runCtx, cancel := context.WithCancel(ctx)
			done := make(chan struct{})

			lc.Append(fx.Hook{
				OnStart: func(_ context.Context) error {
					go func() {
						defer close(done)
						m.Bootstrap(runCtx)
						m.Run(runCtx)
					}()
					return nil
				},
				OnStop: func(stopCtx context.Context) error {
					// текущий инструмент дорабатывает, state сохраняется в конце цикла
					cancel()
					select {
					case <-done:
						logger.Info("monitor stopped")
						return nil
					case <-stopCtx.Done():
						return errors.Wrap(stopCtx.Err(), "wait for monitor")
					}
				},
			})
		}),
	)
}
