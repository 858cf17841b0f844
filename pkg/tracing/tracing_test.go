package tracing

import (
	"testing"

	"github.com/opentracing/opentracing-go"
)

func TestInitDisabledIsNoop(t *testing.T) {
	tracer, closer, err := Init(Config{})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := tracer.(opentracing.NoopTracer); !ok {
		t.Fatalf("tracer %T, want NoopTracer", tracer)
	}
	if _, ok := opentracing.GlobalTracer().(opentracing.NoopTracer); !ok {
		t.Fatalf("global tracer %T", opentracing.GlobalTracer())
	}
	if err := closer.Close(); err != nil {
		t.Fatal(err)
	}
}
