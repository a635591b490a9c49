package exchange

import (
	"context"

	"go-currency-converter"
)

// RateSource produces a fresh rate table for a base currency.
// Implementations must accept upper case codes and must either return rates
// or an error, never a silent default. Implementations shared between
// goroutines must be concurrency-safe.
//
//go:generate mockgen -package=exchange_test -destination=mock_rate_source_test.go -source=source.go RateSource
type RateSource interface {
	Fetch(ctx context.Context, base currency.Currency) (currency.Rates, error)
}

// RateSourceFunc adapts an ordinary function to a RateSource.
type RateSourceFunc func(ctx context.Context, base currency.Currency) (currency.Rates, error)

// Fetch calls f(ctx, base).
func (f RateSourceFunc) Fetch(ctx context.Context, base currency.Currency) (currency.Rates, error) {
	return f(ctx, base)
}
