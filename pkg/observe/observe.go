// Package observe provides OpenTelemetry metrics for the diktátOR frontend
// service, bridged to a Prometheus /metrics endpoint.
package observe

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

const meterName = "github.com/mirecekd/diktatOR"

// Metrics holds the metric instruments recorded by the wizard and history
// flows. A nil *Metrics is valid and records nothing.
type Metrics struct {
	// Operations counts remote API operations. Attributes:
	//   operation (generate|synthesize|evaluate|history), status (ok|error)
	Operations metric.Int64Counter
}

// NewMetrics creates the metric instruments on the given provider. Pass nil
// to use the global provider.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	if mp == nil {
		mp = otel.GetMeterProvider()
	}

	meter := mp.Meter(meterName)

	ops, err := meter.Int64Counter("diktator.operations",
		metric.WithDescription("Remote dictation API operations by outcome"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{Operations: ops}, nil
}

// RecordOperation counts one remote operation with its outcome.
func (m *Metrics) RecordOperation(ctx context.Context, operation string, err error) {
	if m == nil {
		return
	}

	status := "ok"
	if err != nil {
		status = "error"
	}

	m.Operations.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("operation", operation),
			attribute.String("status", status),
		))
}

// InitProvider registers a global meter provider backed by a Prometheus
// exporter. The returned shutdown function flushes the provider; call it in a
// defer from main().
func InitProvider(ctx context.Context, serviceName, serviceVersion string) (func(context.Context) error, error) {
	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(serviceVersion),
		),
	)
	if err != nil {
		return nil, err
	}

	exp, err := promexporter.New()
	if err != nil {
		return nil, err
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(exp),
	)
	otel.SetMeterProvider(mp)

	return mp.Shutdown, nil
}

// Handler returns the HTTP handler serving the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
