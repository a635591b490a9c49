package currency

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Currency a currency code, e.g. "USD". Codes are case-insensitive; the
// original form is kept so errors can echo what the caller asked for.
type Currency string

// Lower the form used for Rates keys
func (c Currency) Lower() Currency {
	return Currency(strings.ToLower(string(c)))
}

// Upper the form used for outbound provider requests
func (c Currency) Upper() Currency {
	return Currency(strings.ToUpper(string(c)))
}

// Valid reports whether c has the shape of a currency code: three ASCII letters.
func (c Currency) Valid() bool {
	if len(c) != 3 {
		return false
	}
	for i := 0; i < len(c); i++ {
		b := c[i] | 0x20
		if b < 'a' || b > 'z' {
			return false
		}
	}
	return true
}

// MaxExponent bounds the decimal exponent of amounts and rates. Products of
// values within the bound cannot overflow the int32 exponent of decimal.
const MaxExponent = 1 << 16

var ErrOutOfRange = errors.New("decimal exponent out of range")

// CheckRange rejects decimals whose exponent lies outside ±MaxExponent.
func CheckRange(d decimal.Decimal) error {
	if exp := d.Exponent(); exp > MaxExponent || exp < -MaxExponent {
		return fmt.Errorf("%w: %d", ErrOutOfRange, exp)
	}
	return nil
}

// Rates maps lowercase currency codes to the number of units of that currency
// per one unit of the base currency the table was fetched for.
type Rates map[Currency]decimal.Decimal

// Exchanged the result of a conversion
type Exchanged struct {
	Rate   decimal.Decimal
	Amount decimal.Decimal
}

// ParseAmount parses a decimal amount without passing through float64.
func ParseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse amount %q: %w", s, err)
	}
	if err := CheckRange(d); err != nil {
		return decimal.Zero, fmt.Errorf("parse amount %q: %w", s, err)
	}
	return d, nil
}
