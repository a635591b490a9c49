package exchange

import (
	"errors"
	"fmt"

	"go-currency-converter"
)

var (
	// ErrIncompatibleClient is returned by NewService when the supplied
	// RateSource cannot be called.
	ErrIncompatibleClient = errors.New("incompatible client: rate source must implement Fetch")

	// ErrUnknownRate matches any *UnknownRateError via errors.Is.
	ErrUnknownRate = errors.New("unknown rate")
)

// UnknownRateError reports a target currency missing from an otherwise
// successful fetch. From and To hold the codes as the caller passed them.
type UnknownRateError struct {
	From currency.Currency
	To   currency.Currency
}

func (e *UnknownRateError) Error() string {
	return fmt.Sprintf("Couldn't discover conversion rate from %s to %s", e.From, e.To)
}

func (e *UnknownRateError) Is(target error) bool {
	return target == ErrUnknownRate
}
