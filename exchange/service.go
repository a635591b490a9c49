package exchange

import (
	"context"
	"fmt"
	"reflect"

	"github.com/shopspring/decimal"
	"go-currency-converter"
)

// Service interface for converting from one currency to another
type Service interface {
	Convert(ctx context.Context, amount decimal.Decimal, from currency.Currency, to currency.Currency) (currency.Exchanged, error)
}

// service converts amounts with rates from a RateSource
type service struct {
	// source to fetch a rate table per conversion. Never cached.
	source RateSource
}

// NewService constructs a valid Service. It fails with ErrIncompatibleClient
// when source is nil, so a bad client is reported at construction rather
// than on the first conversion.
func NewService(source RateSource) (Service, error) {
	if isNil(source) {
		return nil, ErrIncompatibleClient
	}
	return &service{
		source: source,
	}, nil
}

// Convert fetches the rate table for from and multiplies amount by the rate
// of to. Every call performs exactly one fetch. Fetch errors are returned
// as-is; a missing target rate yields an *UnknownRateError. Amounts or rates
// outside currency.MaxExponent fail with currency.ErrOutOfRange.
func (s *service) Convert(ctx context.Context, amount decimal.Decimal, from currency.Currency, to currency.Currency) (currency.Exchanged, error) {
	if err := currency.CheckRange(amount); err != nil {
		return currency.Exchanged{}, fmt.Errorf("amount: %w", err)
	}

	rates, err := s.source.Fetch(ctx, from.Upper())
	if err != nil {
		return currency.Exchanged{}, err
	}

	rate, ok := rates[to.Lower()]
	if !ok {
		return currency.Exchanged{}, &UnknownRateError{From: from, To: to}
	}
	if err := currency.CheckRange(rate); err != nil {
		return currency.Exchanged{}, fmt.Errorf("rate %v->%v: %w", from, to, err)
	}

	return currency.Exchanged{
		Rate:   rate,
		Amount: amount.Mul(rate),
	}, nil
}

func isNil(source RateSource) bool {
	if source == nil {
		return true
	}
	switch v := reflect.ValueOf(source); v.Kind() {
	case reflect.Ptr, reflect.Func:
		return v.IsNil()
	}
	return false
}
