package table

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Value is a single cell value. Supported dynamic types are nil, bool,
// int64, float64, string, and time.Time. Normalize converts the wider set
// of driver-supplied types into this canonical set.
type Value any

// Normalize converts a raw value (as produced by a database driver or a
// test fixture) into the canonical Value types. Unknown types are
// stringified so they remain comparable and printable.
func Normalize(v any) Value {
	switch x := v.(type) {
	case nil:
		return nil
	case bool, int64, float64, string, time.Time:
		return x
	case int:
		return int64(x)
	case int8:
		return int64(x)
	case int16:
		return int64(x)
	case int32:
		return int64(x)
	case uint:
		return int64(x)
	case uint8:
		return int64(x)
	case uint16:
		return int64(x)
	case uint32:
		return int64(x)
	case uint64:
		return int64(x)
	case float32:
		return float64(x)
	case []byte:
		return string(x)
	default:
		return fmt.Sprint(x)
	}
}

// Equal reports whether two cell values are equal by value, not by
// incidental string form. Numeric values compare numerically across
// int64/float64, temporal values compare as instants.
func Equal(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	if an, aok := asNumber(a); aok {
		if bn, bok := asNumber(b); bok {
			return an == bn
		}
		return false
	}

	if at, aok := a.(time.Time); aok {
		if bt, bok := b.(time.Time); bok {
			return at.Equal(bt)
		}
		return false
	}

	return a == b
}

// Numeric projects a value onto a float64 sort key. Values with no
// numeric interpretation report ok=false; callers sort those last.
func Numeric(v Value) (float64, bool) {
	if n, ok := asNumber(v); ok {
		return n, true
	}
	switch x := v.(type) {
	case time.Time:
		return float64(x.UnixMicro()), true
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(x), 64); err == nil {
			return f, true
		}
	}
	return math.Inf(1), false
}

// Format renders a value for presentation. Dates print as dates when they
// carry no intra-day component, otherwise as RFC 3339 timestamps.
func Format(v Value) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case time.Time:
		if x.Equal(x.Truncate(24 * time.Hour)) {
			return x.Format("2006-01-02")
		}
		return x.Format(time.RFC3339)
	default:
		return fmt.Sprint(x)
	}
}

// Key renders a value into a canonical, type-tagged form usable as a map
// key component. Numeric values with the same magnitude encode identically
// regardless of int64/float64 representation, matching Equal.
func Key(v Value) string {
	switch x := v.(type) {
	case nil:
		return "_"
	case int64:
		return "n:" + strconv.FormatInt(x, 10)
	case float64:
		if x == math.Trunc(x) && !math.IsInf(x, 0) {
			return "n:" + strconv.FormatInt(int64(x), 10)
		}
		return "n:" + strconv.FormatFloat(x, 'g', -1, 64)
	case bool:
		return "b:" + strconv.FormatBool(x)
	case time.Time:
		return "t:" + strconv.FormatInt(x.UnixMicro(), 10)
	case string:
		return "s:" + x
	default:
		return "s:" + fmt.Sprint(x)
	}
}

// Compare orders two values: nil first, then numerics (including temporal
// instants), then strings, then everything else by formatted form.
func Compare(a, b Value) int {
	if a == nil || b == nil {
		switch {
		case a == nil && b == nil:
			return 0
		case a == nil:
			return -1
		default:
			return 1
		}
	}

	an, aok := Numeric(a)
	bn, bok := Numeric(b)
	switch {
	case aok && bok:
		switch {
		case an < bn:
			return -1
		case an > bn:
			return 1
		default:
			return 0
		}
	case aok:
		return -1
	case bok:
		return 1
	}

	return strings.Compare(Format(a), Format(b))
}

func asNumber(v Value) (float64, bool) {
	switch x := v.(type) {
	case int64:
		return float64(x), true
	case float64:
		return x, true
	}
	return 0, false
}
