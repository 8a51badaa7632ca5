// Package moneypkg provides fixed-point monetary arithmetic.
//
// Amounts travel through the application as decimal strings with at most two
// fractional digits. All arithmetic results are rounded to two places with
// banker's rounding (round half to even).
package moneypkg

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Scale is the number of fractional digits carried by monetary amounts.
const Scale = 2

// ErrInvalidAmount indicates that a string is not a valid monetary amount.
var ErrInvalidAmount = errors.New("invalid monetary amount")

// Zero is the zero monetary amount.
var Zero = decimal.Zero

// Parse converts a decimal string into a monetary amount. Strings with more
// than Scale fractional digits are rejected rather than silently rounded.
func Parse(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, ErrInvalidAmount
	}

	if d.Exponent() < -Scale {
		return decimal.Decimal{}, ErrInvalidAmount
	}

	return d, nil
}

// Round rounds an amount to monetary precision using banker's rounding.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.RoundBank(Scale)
}

// String renders an amount with exactly Scale fractional digits.
func String(d decimal.Decimal) string {
	return d.StringFixed(Scale)
}

// MonthlyInterest computes one month of interest on a balance at the given
// annual percentage yield, rounded to monetary precision.
func MonthlyInterest(balance decimal.Decimal, apy float64) decimal.Decimal {
	rate := decimal.NewFromFloat(apy / 12 / 100)
	return Round(balance.Mul(rate))
}

// ValidAmount validates that a binding field holds a parseable monetary amount.
var ValidAmount validator.Func = func(fl validator.FieldLevel) bool {
	if s, ok := fl.Field().Interface().(string); ok {
		_, err := Parse(s)
		return err == nil
	}

	return false
}
