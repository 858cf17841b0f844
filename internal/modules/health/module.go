package health

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"

	"signal_bot/internal/modules/config"
	"signal_bot/internal/modules/health/service"
	"signal_bot/pkg/logger"
	"signal_bot/pkg/metrics"
)

type Config struct {
	Addr string // например ":8080"; пусто, HTTP не поднимаем
}

func NewConfig(cfg *config.Config) Config {
	return Config{Addr: cfg.Service.Addr}
}

func NewMux(state *service.State, reg *prometheus.Registry) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/livez", func(w http.ResponseWriter, r *http.Request) {
		// liveness: процесс жив
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		// readiness: прошёл хотя бы один цикл
		if !state.Ready() {
			http.Error(w, "not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		var lastCycle int64
		if t := state.LastCycle(); !t.IsZero() {
			lastCycle = t.Unix()
		}
		resp := map[string]any{
			"ready":         state.Ready(),
			"uptimeSec":     int64(state.Uptime().Seconds()),
			"cycles":        state.Cycles(),
			"lastCycleUnix": lastCycle,
			"lastCycleMs":   state.LastCycleDuration().Milliseconds(),
			"openPositions": state.OpenPositions(),
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	})

	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	return mux
}

func RunHTTP(lc fx.Lifecycle, cfg Config, mux *http.ServeMux) {
	if cfg.Addr == "" {
		return
	}
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", cfg.Addr)
			if err != nil {
				return errors.Wrapf(err, "listen %s", cfg.Addr)
			}
			logger.Info("health server listening on %s", cfg.Addr)
			go func() { _ = srv.Serve(ln) }()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}

func Module() fx.Option {
	return fx.Module("health",
		fx.Provide(
			service.NewState,
			metrics.NewRegistry,
			metrics.New,
			NewConfig,
			NewMux,
		),
		fx.Invoke(RunHTTP),
	)
}
