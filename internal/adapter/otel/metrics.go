package otel

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "scenariogen"

// Metrics holds the compiler's metric instruments.
type Metrics struct {
	Compilations   metric.Int64Counter
	CompileFailed  metric.Int64Counter
	Lookups        metric.Int64Counter
	LookupDuration metric.Float64Histogram
}

// NewMetrics creates all metric instruments on the global meter provider.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(meterName)
	m := &Metrics{}
	var err error

	m.Compilations, err = meter.Int64Counter("scenariogen.compilations",
		metric.WithDescription("Number of successful scenario compilations"))
	if err != nil {
		return nil, err
	}

	m.CompileFailed, err = meter.Int64Counter("scenariogen.compilations.failed",
		metric.WithDescription("Number of failed scenario compilations"))
	if err != nil {
		return nil, err
	}

	m.Lookups, err = meter.Int64Counter("scenariogen.catalog.lookups",
		metric.WithDescription("Number of catalog lookups"))
	if err != nil {
		return nil, err
	}

	m.LookupDuration, err = meter.Float64Histogram("scenariogen.catalog.lookup.duration_seconds",
		metric.WithDescription("Catalog lookup duration in seconds"))
	if err != nil {
		return nil, err
	}

	return m, nil
}
