// Package observe provides application-wide observability primitives for
// Dhvani: OpenTelemetry metrics, distributed tracing, structured logging,
// and HTTP middleware that ties them together.
//
// Metrics are recorded through the OpenTelemetry Metrics API. A Prometheus
// exporter bridge is available via [InitProvider] so that metrics can still be
// scraped via the standard /metrics endpoint. A package-level default
// [Metrics] instance ([DefaultMetrics]) is provided for convenience; tests
// should use [NewMetrics] with a custom [metric.MeterProvider] to avoid
// cross-test pollution.
package observe

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all Dhvani metrics.
const meterName = "github.com/dhvanibank/dhvani"

// Metrics holds all OpenTelemetry metric instruments for the application.
// All fields are safe for concurrent use — the underlying OTel types handle
// their own synchronisation.
type Metrics struct {
	// RecognitionDuration tracks capture-start-to-final-transcript latency.
	RecognitionDuration metric.Float64Histogram

	// IntentMatches counts transcripts resolved to a route. Use with attributes:
	//   attribute.String("target", ...), attribute.String("method", ...), attribute.String("locale", ...)
	IntentMatches metric.Int64Counter

	// IntentNoMatch counts transcripts that resolved to nothing after all
	// attempts. Use with attribute:
	//   attribute.String("locale", ...)
	IntentNoMatch metric.Int64Counter

	// FallbackAttempts counts secondary recognition passes spawned for
	// under-resourced locales.
	FallbackAttempts metric.Int64Counter

	// RecognitionErrors counts capture failures by session kind.
	RecognitionErrors metric.Int64Counter

	// SynthesisRequests counts text-to-speech requests by status.
	SynthesisRequests metric.Int64Counter

	// ActiveBridges tracks the number of connected speech bridge clients.
	ActiveBridges metric.Int64UpDownCounter

	// HTTPRequestDuration tracks HTTP request processing time. Use with attributes:
	//   attribute.String("method", ...), attribute.String("path", ...), attribute.String("status", ...)
	HTTPRequestDuration metric.Float64Histogram
}

// latencyBuckets defines histogram bucket boundaries (in seconds) optimised
// for speech recognition latencies.
var latencyBuckets = []float64{
	0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10,
}

// NewMetrics creates a fully initialised [Metrics] struct using the given
// [metric.MeterProvider]. Returns an error if any instrument creation fails.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.RecognitionDuration, err = m.Float64Histogram("dhvani.recognition.duration",
		metric.WithDescription("Latency from capture start to final transcript."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}

	if met.IntentMatches, err = m.Int64Counter("dhvani.intent.matches",
		metric.WithDescription("Total transcripts resolved to a route, by target, method, and locale."),
	); err != nil {
		return nil, err
	}
	if met.IntentNoMatch, err = m.Int64Counter("dhvani.intent.no_match",
		metric.WithDescription("Total transcripts that resolved to no route, by locale."),
	); err != nil {
		return nil, err
	}
	if met.FallbackAttempts, err = m.Int64Counter("dhvani.recognition.fallbacks",
		metric.WithDescription("Total secondary recognition passes for under-resourced locales."),
	); err != nil {
		return nil, err
	}
	if met.RecognitionErrors, err = m.Int64Counter("dhvani.recognition.errors",
		metric.WithDescription("Total recognition failures by session kind."),
	); err != nil {
		return nil, err
	}
	if met.SynthesisRequests, err = m.Int64Counter("dhvani.synthesis.requests",
		metric.WithDescription("Total text-to-speech requests by status."),
	); err != nil {
		return nil, err
	}

	if met.ActiveBridges, err = m.Int64UpDownCounter("dhvani.active_bridges",
		metric.WithDescription("Number of connected speech bridge clients."),
	); err != nil {
		return nil, err
	}

	if met.HTTPRequestDuration, err = m.Float64Histogram("dhvani.http.request.duration",
		metric.WithDescription("HTTP request latency by method, path, and status."),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	return met, nil
}

// defaultMetrics is the lazily-initialised package-level Metrics instance.
var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level [Metrics] instance, creating it on
// first call using [otel.GetMeterProvider]. Subsequent calls return the same
// pointer. Panics if instrument creation fails (should not happen with the
// global provider).
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

// Attr is a convenience alias for [attribute.String] to reduce verbosity at
// call sites.
func Attr(key, value string) attribute.KeyValue {
	return attribute.String(key, value)
}

// RecordRecognitionDuration records one capture-to-transcript latency sample.
func (m *Metrics) RecordRecognitionDuration(ctx context.Context, d time.Duration, kind, locale string) {
	m.RecognitionDuration.Record(ctx, d.Seconds(),
		metric.WithAttributes(
			attribute.String("kind", kind),
			attribute.String("locale", locale),
		),
	)
}

// RecordIntentMatch records a successful intent resolution.
func (m *Metrics) RecordIntentMatch(ctx context.Context, target, method, locale string) {
	m.IntentMatches.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("target", target),
			attribute.String("method", method),
			attribute.String("locale", locale),
		),
	)
}

// RecordIntentNoMatch records a transcript that matched no route.
func (m *Metrics) RecordIntentNoMatch(ctx context.Context, locale string) {
	m.IntentNoMatch.Add(ctx, 1,
		metric.WithAttributes(attribute.String("locale", locale)),
	)
}

// RecordFallbackAttempt records one secondary recognition pass.
func (m *Metrics) RecordFallbackAttempt(ctx context.Context, locale string) {
	m.FallbackAttempts.Add(ctx, 1,
		metric.WithAttributes(attribute.String("locale", locale)),
	)
}

// RecordRecognitionError records a capture failure.
func (m *Metrics) RecordRecognitionError(ctx context.Context, kind string) {
	m.RecognitionErrors.Add(ctx, 1,
		metric.WithAttributes(attribute.String("kind", kind)),
	)
}

// RecordSynthesis records one text-to-speech request outcome.
func (m *Metrics) RecordSynthesis(ctx context.Context, ok bool) {
	status := "ok"
	if !ok {
		status = "error"
	}
	m.SynthesisRequests.Add(ctx, 1,
		metric.WithAttributes(attribute.String("status", status)),
	)
}
