package tracing

import (
	"fmt"

	"github.com/go-redis/redis/extra/redisotel/v8"
	"github.com/go-redis/redis/v8"
	"github.com/honeycombio/honeycomb-opentelemetry-go"
	"github.com/honeycombio/otel-config-go/otelconfig"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var GlobalTracer = otel.Tracer("weight-tracker")

// HoneycombSetup instruments the redis client and, if enabled, configures the
// OpenTelemetry SDK to export to honeycomb (API key and endpoint are read from
// the HONEYCOMB_* / OTEL_* env vars by the distro).
// The returned func flushes and shuts the exporter down.
func HoneycombSetup(honeycombEnabled bool, serviceName string, rdb *redis.Client) (func(), error) {
	if rdb != nil {
		rdb.AddHook(redisotel.NewTracingHook())
	}

	if !honeycombEnabled {
		log.Debugln("honeycomb tracing disabled, spans are not exported")
		return func() {}, nil
	}

	otelShutdown, err := otelconfig.ConfigureOpenTelemetry(
		otelconfig.WithServiceName(serviceName),
		otelconfig.WithSpanProcessor(honeycomb.NewBaggageSpanProcessor()),
	)
	if err != nil {
		return nil, fmt.Errorf("configure opentelemetry: %w", err)
	}

	log.Debugf("honeycomb tracing set up for service [%s]", serviceName)
	return otelShutdown, nil
}

func EndSpanWithErrCheck(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
