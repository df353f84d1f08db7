package observability

import (
	"context"
	"log"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
)

type Observability struct {
	meterProvider *metric.MeterProvider
	meter         otelmetric.Meter
	saveCounter   otelmetric.Int64Counter
	loadCounter   otelmetric.Int64Counter
	saveDuration  otelmetric.Float64Histogram
}

func New(serviceName string) *Observability {
	exporter, err := prometheus.New()
	if err != nil {
		log.Printf("Failed to create Prometheus exporter: %v", err)
		return &Observability{}
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	meter := provider.Meter(serviceName)

	saveCounter, _ := meter.Int64Counter(
		"settings.saves",
		otelmetric.WithDescription("Number of notification settings saves"),
	)

	loadCounter, _ := meter.Int64Counter(
		"settings.loads",
		otelmetric.WithDescription("Number of notification settings loads"),
	)

	saveDuration, _ := meter.Float64Histogram(
		"settings.save.duration",
		otelmetric.WithDescription("Settings save duration"),
		otelmetric.WithUnit("ms"),
	)

	return &Observability{
		meterProvider: provider,
		meter:         meter,
		saveCounter:   saveCounter,
		loadCounter:   loadCounter,
		saveDuration:  saveDuration,
	}
}

func (o *Observability) RecordSave(ctx context.Context, scope string, status string) {
	if o.saveCounter != nil {
		o.saveCounter.Add(ctx, 1, otelmetric.WithAttributes(
			attribute.String("scope", scope),
			attribute.String("status", status),
		))
	}
}

func (o *Observability) RecordLoad(ctx context.Context, scope string, status string) {
	if o.loadCounter != nil {
		o.loadCounter.Add(ctx, 1, otelmetric.WithAttributes(
			attribute.String("scope", scope),
			attribute.String("status", status),
		))
	}
}

func (o *Observability) RecordSaveDuration(ctx context.Context, duration time.Duration, scope string) {
	if o.saveDuration != nil {
		o.saveDuration.Record(ctx, float64(duration.Milliseconds()), otelmetric.WithAttributes(
			attribute.String("scope", scope),
		))
	}
}

func (o *Observability) Shutdown() {
	if o.meterProvider != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		o.meterProvider.Shutdown(ctx)
	}
}
