package results

import (
	"encoding/json"
	"strconv"
	"strings"
)

// number is a JSON numeric value that remembers whether it was integral, so
// derived labels and fields keep the integer/float distinction of the input.
type number struct {
	i     int64
	f     float64
	isInt bool
}

func intNumber(i int64) number { return number{i: i, f: float64(i), isInt: true} }

func floatNumber(f float64) number { return number{f: f} }

// numberOf converts a decoded JSON value. Booleans count as 0/1.
func numberOf(v any) (number, bool) {
	switch n := v.(type) {
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return intNumber(i), true
		}
		f, err := n.Float64()
		if err != nil {
			return number{}, false
		}
		return floatNumber(f), true
	case float64:
		return floatNumber(n), true
	case int:
		return intNumber(int64(n)), true
	case int64:
		return intNumber(n), true
	case bool:
		if n {
			return intNumber(1), true
		}
		return intNumber(0), true
	}
	return number{}, false
}

// numberOr returns the numeric value stored under key, or def when the key is
// absent or not numeric.
func numberOr(m map[string]any, key string, def number) number {
	v, ok := m[key]
	if !ok {
		return def
	}
	if n, ok := numberOf(v); ok {
		return n
	}
	return def
}

func (n number) mul(o number) number {
	if n.isInt && o.isInt {
		return intNumber(n.i * o.i)
	}
	return floatNumber(n.f * o.f)
}

func (n number) String() string {
	if n.isInt {
		return strconv.FormatInt(n.i, 10)
	}
	return formatFloat(n.f)
}

// formatFloat renders f the way a float is conventionally printed in results
// documents: shortest form, always with a fractional part.
func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eEn") {
		s += ".0"
	}
	return s
}

// round rounds f to the given number of decimal places using round-half-even
// on the exact binary value.
func round(f float64, places int) float64 {
	r, err := strconv.ParseFloat(strconv.FormatFloat(f, 'f', places, 64), 64)
	if err != nil {
		return f
	}
	return r
}

func floatField(f float64) json.Number { return json.Number(formatFloat(f)) }
