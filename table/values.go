package table

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Timestamp layouts accepted by AsTime, tried in order.
var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// IsNull reports whether a cell is null: nil, or a float64 NaN.
func IsNull(v any) bool {
	if v == nil {
		return true
	}
	if f, ok := v.(float64); ok {
		return math.IsNaN(f)
	}

	return false
}

// AsString coerces a cell to string. Null cells report false.
func AsString(v any) (string, bool) {
	switch c := v.(type) {
	case nil:
		return "", false
	case string:
		return c, true
	case bool:
		return strconv.FormatBool(c), true
	case int64:
		return strconv.FormatInt(c, 10), true
	case int:
		return strconv.FormatInt(int64(c), 10), true
	case int32:
		return strconv.FormatInt(int64(c), 10), true
	case float32:
		if math.IsNaN(float64(c)) {
			return "", false
		}

		return strconv.FormatFloat(float64(c), 'g', -1, 32), true
	case float64:
		if math.IsNaN(c) {
			return "", false
		}

		return strconv.FormatFloat(c, 'g', -1, 64), true
	case time.Time:
		return c.UTC().Format(time.RFC3339), true
	default:
		return fmt.Sprintf("%v", c), true
	}
}

// AsFloat coerces a cell to float64, parsing numeric strings.
// Null cells and unparseable values report false.
func AsFloat(v any) (float64, bool) {
	switch c := v.(type) {
	case int64:
		return float64(c), true
	case int:
		return float64(c), true
	case int32:
		return float64(c), true
	case float32:
		if math.IsNaN(float64(c)) {
			return 0, false
		}

		return float64(c), true
	case float64:
		if math.IsNaN(c) {
			return 0, false
		}

		return c, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(c), 64)
		if err != nil {
			return 0, false
		}

		return f, true
	default:
		return 0, false
	}
}

// AsInt coerces a cell to int64. Floats must be integral.
func AsInt(v any) (int64, bool) {
	switch c := v.(type) {
	case int64:
		return c, true
	case int:
		return int64(c), true
	case int32:
		return int64(c), true
	case float32:
		f := float64(c)
		if math.IsNaN(f) || f != math.Trunc(f) {
			return 0, false
		}

		return int64(c), true
	case float64:
		if math.IsNaN(c) || c != math.Trunc(c) {
			return 0, false
		}

		return int64(c), true
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(c), 10, 64)
		if err != nil {
			return 0, false
		}

		return i, true
	default:
		return 0, false
	}
}

// AsTime coerces a cell to a time.Time. Strings are parsed against the
// accepted layouts; int64 cells are Unix seconds.
func AsTime(v any) (time.Time, bool) {
	switch c := v.(type) {
	case time.Time:
		return c, true
	case int64:
		return time.Unix(c, 0).UTC(), true
	case string:
		s := strings.TrimSpace(c)
		for _, layout := range timeLayouts {
			if ts, err := time.Parse(layout, s); err == nil {
				return ts, true
			}
		}

		return time.Time{}, false
	default:
		return time.Time{}, false
	}
}

// Compare orders two cells: nulls first, then numerics by value, times
// chronologically, everything else by KeyString. Returns -1, 0 or +1.
func Compare(a, b any) int {
	an, bn := IsNull(a), IsNull(b)
	switch {
	case an && bn:
		return 0
	case an:
		return -1
	case bn:
		return 1
	}
	if af, aok := AsFloat(a); aok {
		if bf, bok := AsFloat(b); bok {
			switch {
			case af < bf:
				return -1
			case af > bf:
				return 1
			default:
				return 0
			}
		}
	}
	if at, aok := a.(time.Time); aok {
		if bt, bok := b.(time.Time); bok {
			switch {
			case at.Before(bt):
				return -1
			case at.After(bt):
				return 1
			default:
				return 0
			}
		}
	}

	return strings.Compare(KeyString(a), KeyString(b))
}

// KeyString renders a cell for use in group and duplicate keys.
// Nulls render as "\x00" so they group together without colliding with "".
func KeyString(v any) string {
	if IsNull(v) {
		return "\x00"
	}
	s, _ := AsString(v)

	return s
}
