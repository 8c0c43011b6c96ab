package client

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const (
	// Instrumentation library name
	instrumentationName = "github.com/copdips/snowkit/src/client"
)

// ObservabilityConfig controls telemetry collection
type ObservabilityConfig struct {
	// EnableTracing enables OpenTelemetry distributed tracing
	EnableTracing bool

	// EnableMetrics enables OpenTelemetry metrics collection
	EnableMetrics bool

	// TracingAttributes are additional attributes to add to all spans
	TracingAttributes []attribute.KeyValue

	// MetricAttributes are additional attributes to add to all metrics
	MetricAttributes []attribute.KeyValue
}

// DefaultObservabilityConfig returns default observability configuration
func DefaultObservabilityConfig() *ObservabilityConfig {
	return &ObservabilityConfig{
		EnableTracing: true,
		EnableMetrics: true,
		TracingAttributes: []attribute.KeyValue{
			attribute.String("db.system", "snowflake"),
			attribute.String("db.client", "snowkit"),
			attribute.String("db.client.version", Version()),
		},
		MetricAttributes: []attribute.KeyValue{
			attribute.String("db.system", "snowflake"),
			attribute.String("db.client", "snowkit"),
		},
	}
}

// observabilityInstruments holds OpenTelemetry instruments
type observabilityInstruments struct {
	tracer trace.Tracer
	meter  metric.Meter

	// Metrics
	queryDuration    metric.Float64Histogram
	queryCount       metric.Int64Counter
	queryErrors      metric.Int64Counter
	sessionCount     metric.Int64UpDownCounter
	sessionErrors    metric.Int64Counter
	rollbackCount    metric.Int64Counter
	asyncSubmissions metric.Int64Counter
	rowsFetched      metric.Int64Counter
	batchesFetched   metric.Int64Counter
}

// initObservability initializes OpenTelemetry instruments
func initObservability() *observabilityInstruments {
	tracer := otel.Tracer(instrumentationName, trace.WithInstrumentationVersion(Version()))
	meter := otel.Meter(instrumentationName, metric.WithInstrumentationVersion(Version()))

	instruments := &observabilityInstruments{
		tracer: tracer,
		meter:  meter,
	}

	var err error

	instruments.queryDuration, err = meter.Float64Histogram(
		"db.query.duration",
		metric.WithDescription("Duration of warehouse queries"),
		metric.WithUnit("s"),
	)
	if err != nil {
		otel.Handle(err)
	}

	instruments.queryCount, err = meter.Int64Counter(
		"db.query.count",
		metric.WithDescription("Number of warehouse queries executed"),
	)
	if err != nil {
		otel.Handle(err)
	}

	instruments.queryErrors, err = meter.Int64Counter(
		"db.query.errors",
		metric.WithDescription("Number of query execution errors"),
	)
	if err != nil {
		otel.Handle(err)
	}

	instruments.sessionCount, err = meter.Int64UpDownCounter(
		"db.session.count",
		metric.WithDescription("Number of open query sessions"),
	)
	if err != nil {
		otel.Handle(err)
	}

	instruments.sessionErrors, err = meter.Int64Counter(
		"db.session.errors",
		metric.WithDescription("Number of session acquisition errors"),
	)
	if err != nil {
		otel.Handle(err)
	}

	instruments.rollbackCount, err = meter.Int64Counter(
		"db.session.rollbacks",
		metric.WithDescription("Number of rollbacks issued after driver errors"),
	)
	if err != nil {
		otel.Handle(err)
	}

	instruments.asyncSubmissions, err = meter.Int64Counter(
		"db.query.async_submissions",
		metric.WithDescription("Number of asynchronous query submissions"),
	)
	if err != nil {
		otel.Handle(err)
	}

	instruments.rowsFetched, err = meter.Int64Counter(
		"db.query.rows",
		metric.WithDescription("Number of rows fetched from result sets"),
	)
	if err != nil {
		otel.Handle(err)
	}

	instruments.batchesFetched, err = meter.Int64Counter(
		"db.query.batches",
		metric.WithDescription("Number of tabular batches fetched"),
	)
	if err != nil {
		otel.Handle(err)
	}

	return instruments
}

// ResultSummary contains query execution metadata
type ResultSummary struct {
	QueryText     string
	QueryID       string
	ExecutionTime time.Duration

	RowsFetched int64

	// Statement classification: QUERY, DML, DDL, TCL, UNKNOWN
	StatementType string
}

// spanContext holds span-specific context information
type spanContext struct {
	span      trace.Span
	startTime time.Time
}

// startQuerySpan creates a new tracing span for a query
func (oi *observabilityInstruments) startQuerySpan(ctx context.Context, name, query string, config *ObservabilityConfig) (context.Context, *spanContext) {
	if !config.EnableTracing {
		return ctx, &spanContext{startTime: time.Now()}
	}

	attrs := make([]attribute.KeyValue, 0, len(config.TracingAttributes)+2)
	attrs = append(attrs, config.TracingAttributes...)
	attrs = append(attrs,
		attribute.String("db.statement", query),
		attribute.String("db.operation", inferStatementType(query)),
	)

	ctx, span := oi.tracer.Start(ctx, name,
		trace.WithAttributes(attrs...),
		trace.WithSpanKind(trace.SpanKindClient),
	)

	return ctx, &spanContext{
		span:      span,
		startTime: time.Now(),
	}
}

// finishQuerySpan completes a query span with results
func (oi *observabilityInstruments) finishQuerySpan(spanCtx *spanContext, summary *ResultSummary, err error, config *ObservabilityConfig) {
	duration := time.Since(spanCtx.startTime)

	if config.EnableMetrics {
		attrs := metric.WithAttributes(config.MetricAttributes...)

		oi.queryDuration.Record(context.Background(), duration.Seconds(), attrs)

		typeAttr := attribute.String("statement.type", summary.StatementType)
		if err != nil {
			oi.queryErrors.Add(context.Background(), 1, metric.WithAttributes(append(config.MetricAttributes, typeAttr)...))
		} else {
			oi.queryCount.Add(context.Background(), 1, metric.WithAttributes(append(config.MetricAttributes, typeAttr)...))
			if summary.RowsFetched > 0 {
				oi.rowsFetched.Add(context.Background(), summary.RowsFetched, attrs)
			}
		}
	}

	if config.EnableTracing && spanCtx.span != nil {
		spanCtx.span.SetAttributes(
			attribute.Float64("db.query.duration_ms", float64(duration.Nanoseconds())/1e6),
			attribute.String("db.query.type", summary.StatementType),
		)
		if summary.QueryID != "" {
			spanCtx.span.SetAttributes(attribute.String("db.query.id", summary.QueryID))
		}

		if err != nil {
			spanCtx.span.RecordError(err)
			spanCtx.span.SetStatus(codes.Error, err.Error())
		} else {
			spanCtx.span.SetStatus(codes.Ok, "")
		}

		spanCtx.span.End()
	}
}

// recordSessionEvent records session-related metrics
func (oi *observabilityInstruments) recordSessionEvent(eventType string, config *ObservabilityConfig, err error) {
	if !config.EnableMetrics {
		return
	}

	attrs := metric.WithAttributes(config.MetricAttributes...)

	switch eventType {
	case "acquire":
		if err != nil {
			oi.sessionErrors.Add(context.Background(), 1, attrs)
		} else {
			oi.sessionCount.Add(context.Background(), 1, attrs)
		}
	case "release":
		oi.sessionCount.Add(context.Background(), -1, attrs)
	case "rollback":
		oi.rollbackCount.Add(context.Background(), 1, attrs)
	case "async_submit":
		oi.asyncSubmissions.Add(context.Background(), 1, attrs)
	}
}

// recordBatches records tabular batch retrieval metrics
func (oi *observabilityInstruments) recordBatches(n int64, config *ObservabilityConfig) {
	if !config.EnableMetrics || n <= 0 {
		return
	}
	oi.batchesFetched.Add(context.Background(), n, metric.WithAttributes(config.MetricAttributes...))
}

func withMetricAttrs(config *ObservabilityConfig) metric.MeasurementOption {
	return metric.WithAttributes(config.MetricAttributes...)
}

// inferStatementType attempts to determine the type of statement from its text
func inferStatementType(query string) string {
	fields := strings.Fields(strings.ToUpper(query))
	if len(fields) == 0 {
		return "UNKNOWN"
	}

	switch fields[0] {
	case "SELECT", "WITH", "SHOW", "DESCRIBE", "DESC", "LIST", "EXPLAIN":
		return "QUERY"
	case "INSERT", "UPDATE", "DELETE", "MERGE", "COPY", "TRUNCATE", "PUT", "GET":
		return "DML"
	case "CREATE", "ALTER", "DROP", "UNDROP", "GRANT", "REVOKE", "USE", "COMMENT":
		return "DDL"
	case "BEGIN", "COMMIT", "ROLLBACK":
		return "TCL"
	default:
		return "UNKNOWN"
	}
}
