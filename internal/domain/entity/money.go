package entity

import (
	"strings"

	errs "github.com/amirhossein-jamali/promo-ledger/internal/domain/error"
	"github.com/shopspring/decimal"
)

// MaxDecimalPlaces defines the maximum number of decimal places allowed for money amounts
const MaxDecimalPlaces = 2

// Money is an amount in minor currency units (kopecks). Negative values are debits.
type Money int64

// MaxAmount bounds the magnitude of a single amount: 100 billion roubles
const MaxAmount Money = 10_000_000_000_000

var maxAmount = decimal.NewFromInt(int64(MaxAmount))

// MajorUnits converts whole roubles to Money
func MajorUnits(v int64) Money {
	return Money(v * 100)
}

// ParseMoney parses a signed decimal string with at most two fractional digits.
// "125430", "50000.5" and "-5000.00" are valid; "1.234", "1e3" and "1,000" are not.
func ParseMoney(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errs.NewValidationError("amount", "empty value")
	}
	if strings.ContainsAny(s, "eE") {
		return 0, errs.NewValidationError("amount", "invalid number format")
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, errs.NewValidationError("amount", "invalid number format")
	}
	if !d.Equal(d.Truncate(MaxDecimalPlaces)) {
		return 0, errs.NewValidationError("amount", "maximum 2 decimal places allowed")
	}

	minor := d.Shift(MaxDecimalPlaces)
	if minor.Abs().GreaterThan(maxAmount) {
		return 0, errs.NewValidationError("amount", "exceeds "+MaxAmount.String())
	}
	return Money(minor.IntPart()), nil
}

// MoneyFromDecimal rounds d half away from zero to kopecks
func MoneyFromDecimal(d decimal.Decimal) Money {
	return Money(d.Round(MaxDecimalPlaces).Shift(MaxDecimalPlaces).IntPart())
}

// Decimal returns the amount in major units
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(int64(m), -MaxDecimalPlaces)
}

// String formats the amount with exactly two decimal places, e.g. "-5000.00"
func (m Money) String() string {
	return m.Decimal().StringFixed(MaxDecimalPlaces)
}

// InRange reports whether |m| <= MaxAmount
func (m Money) InRange() bool {
	return m >= -MaxAmount && m <= MaxAmount
}

// Add returns m+o, failing with a validation error when the sum leaves the int64 range
func (m Money) Add(o Money) (Money, error) {
	sum := m + o
	if (o > 0 && sum < m) || (o < 0 && sum > m) {
		return 0, errs.NewValidationError("amount", "total is out of range")
	}
	return sum, nil
}

// Sub returns m-o with the same range check as Add
func (m Money) Sub(o Money) (Money, error) {
	sum := m - o
	if (o < 0 && sum < m) || (o > 0 && sum > m) {
		return 0, errs.NewValidationError("amount", "total is out of range")
	}
	return sum, nil
}

// Neg returns the amount with the opposite sign
func (m Money) Neg() Money {
	return -m
}

// Abs returns the absolute amount
func (m Money) Abs() Money {
	if m < 0 {
		return -m
	}
	return m
}

// IsZero reports whether the amount is zero
func (m Money) IsZero() bool {
	return m == 0
}
