package otel

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "cartforge"

// Metrics holds the cart metric instruments.
type Metrics struct {
	CartsCreated   metric.Int64Counter
	CartsMerged    metric.Int64Counter
	CartsPurchased metric.Int64Counter
	ItemMutations  metric.Int64Counter
	AccessDenied   metric.Int64Counter
	CartSubtotal   metric.Int64Histogram
}

// NewMetrics creates all metric instruments.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(meterName)
	m := &Metrics{}
	var err error

	m.CartsCreated, err = meter.Int64Counter("cartforge.carts.created",
		metric.WithDescription("Number of carts created"))
	if err != nil {
		return nil, err
	}

	m.CartsMerged, err = meter.Int64Counter("cartforge.carts.merged",
		metric.WithDescription("Number of cart merges"))
	if err != nil {
		return nil, err
	}

	m.CartsPurchased, err = meter.Int64Counter("cartforge.carts.purchased",
		metric.WithDescription("Number of carts marked purchased"))
	if err != nil {
		return nil, err
	}

	m.ItemMutations, err = meter.Int64Counter("cartforge.carts.item_mutations",
		metric.WithDescription("Number of cart item mutations"))
	if err != nil {
		return nil, err
	}

	m.AccessDenied, err = meter.Int64Counter("cartforge.access.denied",
		metric.WithDescription("Number of requests denied by access resolution"))
	if err != nil {
		return nil, err
	}

	m.CartSubtotal, err = meter.Int64Histogram("cartforge.carts.subtotal_minor_units",
		metric.WithDescription("Cart subtotal in minor currency units at mutation time"))
	if err != nil {
		return nil, err
	}

	return m, nil
}
