package main

import (
	"context"
	"log"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap/zapcore"

	"signal_bot/internal/modules/config"
	"signal_bot/internal/modules/health"
	"signal_bot/internal/modules/market"
	"signal_bot/internal/modules/notify"
	"signal_bot/internal/modules/state"
	"signal_bot/internal/modules/strategy"
	"signal_bot/internal/runner"
	"signal_bot/pkg/logger"
)

func main() {
	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatal(err)
	}

	closeLog, err := logger.Init(logger.Config{
		Path:    cfg.Log.Path,
		MaxSize: int64(cfg.Log.MaxSizeMB) * 1024 * 1024,
		Backups: cfg.Log.Backups,
		Level:   zapcore.InfoLevel,
	})
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = closeLog() }()

	app := fx.New(
		fx.StopTimeout(cfg.Runner.ShutdownTimeout),
		fx.WithLogger(func() fxevent.Logger {
			return &fxevent.ZapLogger{Logger: logger.InfoLogger.Named("fx")}
		}),
		fx.Provide(
			func() context.Context {
				return context.Background()
			},
		),
		config.Module(cfg),
		fx.Invoke(runTracing),
		health.Module(),
		state.Module(),
		market.Module(),
		strategy.Module(),
		notify.Module(),
		runner.Module(),
	)
	app.Run()
}
