package main

import (
	"context"

	"go.uber.org/fx"

	"signal_bot/internal/modules/config"
	"signal_bot/pkg/tracing"
)

func runTracing(lc fx.Lifecycle, cfg *config.Config) error {
	_, closer, err := tracing.Init(tracing.Config{
		Enabled: cfg.Tracing.Enabled,
		Host:    cfg.Tracing.Host,
		Port:    cfg.Tracing.Port,
	})
	if err != nil {
		return err
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return closer.Close()
		},
	})
	return nil
}
