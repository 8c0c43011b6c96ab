package main

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

var telemetryShutdown func(context.Context) error

// startTelemetry installs stdout-backed trace and metric providers when
// --telemetry is set. It runs once per invocation, from the root command's
// PersistentPreRunE, so every subcommand honors the flag.
func startTelemetry(ctx context.Context) error {
	if !flags.telemetry {
		return nil
	}

	traceExp, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
	if err != nil {
		return err
	}
	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(traceExp))
	otel.SetTracerProvider(tp)

	metricExp, err := stdoutmetric.New()
	if err != nil {
		_ = tp.Shutdown(ctx)
		return err
	}
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(
		sdkmetric.NewPeriodicReader(metricExp, sdkmetric.WithInterval(10*time.Second)),
	))
	otel.SetMeterProvider(mp)

	telemetryShutdown = func(ctx context.Context) error {
		return errors.Join(tp.Shutdown(ctx), mp.Shutdown(ctx))
	}
	return nil
}

// stopTelemetry flushes both providers. It runs after command execution,
// on the error path too, so spans and metrics are not lost.
func stopTelemetry() error {
	if telemetryShutdown == nil {
		return nil
	}
	err := telemetryShutdown(context.Background())
	telemetryShutdown = nil
	return err
}
