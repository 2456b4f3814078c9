// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Amount is an exact, signed, fixed-point monetary value. It is backed by
// an arbitrary-precision decimal so that no balance path ever observes a
// floating-point rounding error. Four fractional digits is the precision
// the report renders at; arithmetic itself carries whatever precision the
// input amount was parsed with.
type Amount struct {
	d decimal.Decimal
}

// Zero is the additive identity.
var Zero = Amount{}

// ParseAmount parses a signed decimal string such as "1.5" or "-0.0001".
// Whitespace must already be trimmed by the caller.
func ParseAmount(s string) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return Amount{d: d}, nil
}

func (a Amount) Add(b Amount) Amount { return Amount{d: a.d.Add(b.d)} }
func (a Amount) Sub(b Amount) Amount { return Amount{d: a.d.Sub(b.d)} }

// GreaterThan reports whether a > b, exactly.
func (a Amount) GreaterThan(b Amount) bool { return a.d.GreaterThan(b.d) }

// LessThan reports whether a < b, exactly.
func (a Amount) LessThan(b Amount) bool { return a.d.LessThan(b.d) }

// Equal reports whether a == b, exactly.
func (a Amount) Equal(b Amount) bool { return a.d.Equal(b.d) }

// IsNegative reports whether a < 0.
func (a Amount) IsNegative() bool { return a.d.IsNegative() }

// String renders the amount fixed at four fractional digits.
func (a Amount) String() string { return a.d.StringFixed(4) }

// Format implements fmt.Formatter so that "%14.4f"-style verbs used by the
// report printer render the underlying decimal directly, never through a
// float64 conversion. The verb's precision sets the fractional digits
// (four when absent) and its width right-aligns the result ("-" flag
// left-aligns); the verb letter itself is not inspected.
func (a Amount) Format(f fmt.State, verb rune) {
	prec, ok := f.Precision()
	if !ok {
		prec = 4
	}
	width, _ := f.Width()
	if f.Flag('-') {
		width = -width
	}
	fmt.Fprintf(f, "%*s", width, a.d.StringFixed(int32(prec)))
}
