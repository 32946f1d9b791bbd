package normalize

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"manifest-pipeline/internal/mapping"
)

// currencyCleaner removes currency symbols, thousands separators and
// surrounding whitespace before numeric parsing.
var currencyCleaner = strings.NewReplacer(
	"$", "",
	"€", "",
	"£", "",
	",", "",
	" ", "",
	" ", "",
)

// cellString extracts a trimmed string from a raw scalar, mapping null
// sentinels to "".
func cellString(v any) string {
	s, ok := v.(string)
	if !ok {
		if v == nil {
			return ""
		}
		if f, isNum := cellFloat(v); isNum {
			s = decimal.NewFromFloat(f).String()
		} else {
			return ""
		}
	}
	s = strings.TrimSpace(s)
	if mapping.IsNullValue(s) {
		return ""
	}
	return s
}

// cellFloat reports a raw scalar as a float when it already is numeric.
func cellFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

// cellDecimal coerces a raw scalar to a non-negative decimal. Currency
// symbols and thousands separators are stripped from strings; NaN,
// negative, sentinel and unparsable values all coerce to zero.
func cellDecimal(v any) decimal.Decimal {
	if f, ok := cellFloat(v); ok {
		if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
			return decimal.Zero
		}
		return decimal.NewFromFloat(f)
	}
	s, _ := v.(string)
	s = strings.TrimSpace(s)
	if mapping.IsNullValue(s) {
		return decimal.Zero
	}
	s = currencyCleaner.Replace(s)
	// Accounting negatives: (12.34)
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// cellQuantity coerces a raw scalar to a positive item count:
// max(1, round(value)), with absent or unparsable values defaulting to 1.
func cellQuantity(v any) int {
	if f, ok := cellFloat(v); ok {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return 1
		}
		n := int(math.Round(f))
		if n < 1 {
			return 1
		}
		return n
	}
	s, _ := v.(string)
	s = strings.TrimSpace(s)
	if mapping.IsNullValue(s) {
		return 1
	}
	s = currencyCleaner.Replace(s)
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 1
	}
	n := int(d.Round(0).IntPart())
	if n < 1 {
		return 1
	}
	return n
}
