package tracing

import (
	"fmt"
	"io"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"
	jCfg "github.com/uber/jaeger-client-go/config"
	"github.com/uber/jaeger-lib/metrics"

	"signal_bot/pkg/logger"
)

const ServiceName = "signal_bot"

type Config struct {
	Enabled bool
	Host    string
	Port    int
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Init ставит глобальный трейсер. При Enabled=false остаётся NoopTracer,
// спаны в цикле создаются, но никуда не уходят.
func Init(conf Config) (opentracing.Tracer, io.Closer, error) {
	if !conf.Enabled {
		tracer := opentracing.NoopTracer{}
		opentracing.SetGlobalTracer(tracer)
		return tracer, nopCloser{}, nil
	}

	cfg := &jCfg.Configuration{
		ServiceName: ServiceName,
		Sampler: &jCfg.SamplerConfig{
			Type:  "const",
			Param: 1,
		},
		Reporter: &jCfg.ReporterConfig{
			LogSpans:           true,
			LocalAgentHostPort: fmt.Sprintf("%s:%d", conf.Host, conf.Port),
		},
	}

	tracer, closer, err := cfg.NewTracer(jCfg.Metrics(metrics.NullFactory))
	if err != nil {
		return nil, nil, errors.Wrap(err, "init jaeger tracer")
	}

	opentracing.SetGlobalTracer(tracer)
	logger.Info("jaeger tracing enabled, agent %s:%d", conf.Host, conf.Port)
	return tracer, closer, nil
}
