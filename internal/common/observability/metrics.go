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
	meterProvider     *metric.MeterProvider
	meter             otelmetric.Meter
	documentsLoaded   otelmetric.Int64Counter
	workersRegistered otelmetric.Int64Counter
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

	documentsLoaded, _ := meter.Int64Counter(
		"campus.documents.loaded",
		otelmetric.WithDescription("Entries loaded from campus documents at startup"),
	)

	workersRegistered, _ := meter.Int64Counter(
		"workers.registered",
		otelmetric.WithDescription("Job workers opened against the broker"),
	)

	return &Observability{
		meterProvider:     provider,
		meter:             meter,
		documentsLoaded:   documentsLoaded,
		workersRegistered: workersRegistered,
	}
}

// RecordDocumentLoad counts the entries read from one campus document
// (locations catalog, pricing table, reply registry).
func (o *Observability) RecordDocumentLoad(ctx context.Context, document string, entries int) {
	if o.documentsLoaded != nil {
		o.documentsLoaded.Add(ctx, int64(entries), otelmetric.WithAttributes(
			attribute.String("document", document),
		))
	}
}

// RecordWorkerRegistered marks one job worker subscription as opened.
func (o *Observability) RecordWorkerRegistered(ctx context.Context, taskType string) {
	if o.workersRegistered != nil {
		o.workersRegistered.Add(ctx, 1, otelmetric.WithAttributes(
			attribute.String("task_type", taskType),
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
