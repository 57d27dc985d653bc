/*
Package generic provides the domain-agnostic primitives the reconciliation
engines are built on.

PURPOSE:
  Quantities, prices and balances are all decimal values. Order lines and
  delivery lines are joined on a (product, unit) pair. Both concerns are
  independent of bakery specifics, so they live here and the bakery package
  only composes them.

KEY CONCEPTS IN THIS FILE (types.go):
  - LineKey: The (product name, unit) join key between order and delivery lines
  - MustParseDecimal / LenientDecimal: Tolerant parsing, garbage becomes zero
  - RoundMoney: Half-away-from-zero rounding to cents
  - Percent: Clamped completion percentage

DESIGN PRINCIPLES:
  1. Precision: decimal.Decimal everywhere, never float64 arithmetic
  2. Totality: helpers never fail on bad input, they degrade to zero
  3. Round late: callers sum unrounded values and round only for output

SEE ALSO:
  - time.go: Day normalization and inclusive periods
  - errors.go: Sentinel and structured errors
*/
package generic

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// LINE KEY - Composite join key
// =============================================================================

// LineKey identifies a product line by its denormalized product name and unit.
// Matching is case-sensitive and exact; normalize casing at data entry.
type LineKey struct {
	Product string
	Unit    string
}

func (k LineKey) String() string { return k.Product + "_" + k.Unit }

// =============================================================================
// DECIMAL HELPERS
// =============================================================================

var hundred = decimal.NewFromInt(100)

// MustParseDecimal parses s, returning zero for empty or non-numeric input.
func MustParseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero
	}
	return d
}

// LenientDecimal decodes a JSON number, a numeric string, or anything else.
// Anything that is not a number decodes to zero.
func LenientDecimal(raw json.RawMessage) decimal.Decimal {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return decimal.Zero
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return decimal.Zero
		}
		return MustParseDecimal(strings.ReplaceAll(s, ",", "."))
	}
	return MustParseDecimal(string(raw))
}

// RoundMoney rounds to two places, half away from zero.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Percent returns part/whole*100 clamped to [0, 100]. A non-positive whole yields 0.
func Percent(part, whole decimal.Decimal) decimal.Decimal {
	if !whole.IsPositive() {
		return decimal.Zero
	}
	return Clamp(part.Div(whole).Mul(hundred), decimal.Zero, hundred)
}

// Clamp bounds d to [lo, hi].
func Clamp(d, lo, hi decimal.Decimal) decimal.Decimal {
	if d.LessThan(lo) {
		return lo
	}
	if d.GreaterThan(hi) {
		return hi
	}
	return d
}
