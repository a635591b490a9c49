package exchange

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"go-currency-converter"
)

// Metrics collected around conversions
type Metrics struct {
	// Conversions counts conversions by outcome: ok, unknown_rate, error.
	Conversions *prometheus.CounterVec
	// Duration observes conversion latency in seconds, fetch included.
	Duration prometheus.Histogram
}

// NewMetrics creates the conversion metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Conversions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "currency",
				Subsystem: "exchange",
				Name:      "conversions_total",
				Help:      "Number of currency conversions by outcome.",
			},
			[]string{"outcome"},
		),
		Duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "currency",
				Subsystem: "exchange",
				Name:      "conversion_duration_seconds",
				Help:      "Time spent converting, including the rate fetch.",
				Buckets:   prometheus.DefBuckets,
			},
		),
	}
	reg.MustRegister(m.Conversions, m.Duration)
	return m
}

// instrumentingService decorates an exchange.Service with metrics
type instrumentingService struct {
	metrics *Metrics
	next    Service
}

// NewInstrumentingService returns a new instance of an instrumenting Service
func NewInstrumentingService(metrics *Metrics, s Service) Service {
	return &instrumentingService{
		metrics: metrics,
		next:    s,
	}
}

func (s *instrumentingService) Convert(ctx context.Context, amount decimal.Decimal, from currency.Currency, to currency.Currency) (ex currency.Exchanged, err error) {
	defer func(begin time.Time) {
		s.metrics.Conversions.WithLabelValues(outcome(err)).Inc()
		s.metrics.Duration.Observe(time.Since(begin).Seconds())
	}(time.Now())
	return s.next.Convert(ctx, amount, from, to)
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrUnknownRate):
		return "unknown_rate"
	default:
		return "error"
	}
}
