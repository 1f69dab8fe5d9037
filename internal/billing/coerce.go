// Package billing computes rental utility invoices from meter readings, room
// rent, shared-equipment sharing rules and selected add-on services.
//
// Every function in this package is pure: no I/O, no errors. Malformed
// numeric input degrades to zero through Coerce.
package billing

import (
	"encoding/json"
	"math"
	"math/big"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	// "1.234.567" or "2,000,000": separators between exact groups of three digits.
	dotGrouped   = regexp.MustCompile(`^-?\d{1,3}(\.\d{3})+$`)
	commaGrouped = regexp.MustCompile(`^-?\d{1,3}(,\d{3})+$`)
	nonNumeric   = regexp.MustCompile(`[^0-9.,-]`)
)

// Coerce converts a number, numeric text (possibly using thousands
// separators), nil, or anything else into a decimal. It never fails:
// unparsable or non-finite input yields zero.
//
// Coerce is idempotent: Coerce(Coerce(x)) == Coerce(x).
func Coerce(v any) decimal.Decimal {
	switch n := v.(type) {
	case nil:
		return decimal.Zero
	case decimal.Decimal:
		return n
	case *decimal.Decimal:
		if n == nil {
			return decimal.Zero
		}
		return *n
	case decimal.NullDecimal:
		if !n.Valid {
			return decimal.Zero
		}
		return n.Decimal
	case int:
		return decimal.NewFromInt(int64(n))
	case int8:
		return decimal.NewFromInt(int64(n))
	case int16:
		return decimal.NewFromInt(int64(n))
	case int32:
		return decimal.NewFromInt32(n)
	case int64:
		return decimal.NewFromInt(n)
	case uint:
		return fromUint(uint64(n))
	case uint8:
		return fromUint(uint64(n))
	case uint16:
		return fromUint(uint64(n))
	case uint32:
		return fromUint(uint64(n))
	case uint64:
		return fromUint(n)
	case float32:
		return fromFloat(float64(n))
	case float64:
		return fromFloat(n)
	case json.Number:
		// exponent form ("1e3") is a number, not free text
		if d, err := decimal.NewFromString(string(n)); err == nil {
			return d
		}
		return parse(string(n))
	case string:
		return parse(n)
	case *string:
		if n == nil {
			return decimal.Zero
		}
		return parse(*n)
	default:
		return decimal.Zero
	}
}

func fromUint(u uint64) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(u), 0)
}

func fromFloat(f float64) decimal.Decimal {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(f)
}

func parse(s string) decimal.Decimal {
	s = nonNumeric.ReplaceAllString(strings.TrimSpace(s), "")
	if s == "" {
		return decimal.Zero
	}
	switch {
	case dotGrouped.MatchString(s):
		s = strings.ReplaceAll(s, ".", "")
	case commaGrouped.MatchString(s):
		s = strings.ReplaceAll(s, ",", "")
	default:
		s = strings.ReplaceAll(s, ",", "")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
