package models

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// decimalExponentLimit bounds the exponent of client supplied numbers.
// Arithmetic on a decimal costs time proportional to its exponent.
const decimalExponentLimit = 20

// CheckAmount checks a client supplied non-negative amount against intDigits
// integer digits and places decimal places. It returns the amount with any
// zero made canonical, and what is wrong with it or "". Nothing is computed
// from the value until its exponent is known to be small.
func CheckAmount(d decimal.Decimal, intDigits, places int) (decimal.Decimal, string) {
	exp := int(d.Exponent())
	switch {
	case d.IsNegative():
		return d, "must be at least 0"
	case d.IsZero():
		return decimal.Zero, ""
	case exp < -decimalExponentLimit:
		return d, fmt.Sprintf("must have at most %d decimal places", places)
	case exp > decimalExponentLimit || d.NumDigits()+exp > intDigits:
		return d, "must be at most " + maxAmount(intDigits, places).String()
	case exp < -places && !d.Equal(d.Round(int32(places))):
		return d, fmt.Sprintf("must have at most %d decimal places", places)
	}
	return d, ""
}

// maxAmount is the largest value with intDigits integer digits and places
// decimal places, 99999.99 for (5, 2).
func maxAmount(intDigits, places int) decimal.Decimal {
	return decimal.New(1, int32(intDigits)).Sub(decimal.New(1, int32(-places)))
}
