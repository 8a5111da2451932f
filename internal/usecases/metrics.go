package usecases

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	OrdersPlaced   prometheus.Counter
	OrdersFilled   prometheus.Counter
	OrdersCanceled prometheus.Counter
	OrdersRejected prometheus.Counter
	RealizedPL     prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		OrdersPlaced: factory.NewCounter(prometheus.CounterOpts{
			Name: "papertrade_orders_placed_total",
			Help: "Orders accepted by the router.",
		}),
		OrdersFilled: factory.NewCounter(prometheus.CounterOpts{
			Name: "papertrade_orders_filled_total",
			Help: "Orders fully filled by the execution engine.",
		}),
		OrdersCanceled: factory.NewCounter(prometheus.CounterOpts{
			Name: "papertrade_orders_canceled_total",
			Help: "Orders canceled while resting.",
		}),
		OrdersRejected: factory.NewCounter(prometheus.CounterOpts{
			Name: "papertrade_orders_rejected_total",
			Help: "Orders rejected by validation, pricing or persistence.",
		}),
		RealizedPL: factory.NewGauge(prometheus.GaugeOpts{
			Name: "papertrade_realized_pl",
			Help: "Cumulative realized P&L posted to equity.",
		}),
	}
}
