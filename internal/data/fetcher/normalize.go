package fetcher

import (
	"math"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgtype"
)

// NormalizeOffset converts a raw column value into an integer offset.
// Fractional values are rounded to the nearest integer so float noise from
// the source never shows up as a change.
func NormalizeOffset(v interface{}) (int64, error) {
	switch x := v.(type) {
	case nil:
		return 0, malformed("null offset")
	case int64:
		return x, nil
	case int32:
		return int64(x), nil
	case int16:
		return int64(x), nil
	case int8:
		return int64(x), nil
	case int:
		return int64(x), nil
	case uint8:
		return int64(x), nil
	case uint16:
		return int64(x), nil
	case uint32:
		return int64(x), nil
	case uint64:
		if x > math.MaxInt64 {
			return 0, malformed("offset %d overflows int64", x)
		}
		return int64(x), nil
	case uint:
		if uint64(x) > math.MaxInt64 {
			return 0, malformed("offset %d overflows int64", x)
		}
		return int64(x), nil
	case float64:
		return normalizeFloat(x)
	case float32:
		return normalizeFloat(float64(x))
	case pgtype.Numeric:
		return normalizeNumeric(x)
	case string:
		return normalizeString(x)
	case []byte:
		return normalizeString(string(x))
	default:
		return 0, malformed("unsupported offset type %T", v)
	}
}

func normalizeFloat(f float64) (int64, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, malformed("non-finite offset %v", f)
	}
	r := math.Round(f)
	if r >= math.MaxInt64 || r < math.MinInt64 {
		return 0, malformed("offset %v overflows int64", f)
	}
	return int64(r), nil
}

func normalizeNumeric(n pgtype.Numeric) (int64, error) {
	if !n.Valid {
		return 0, malformed("null offset")
	}
	if n.NaN || n.InfinityModifier != pgtype.Finite {
		return 0, malformed("non-finite numeric offset")
	}

	if i, err := n.Int64Value(); err == nil && i.Valid {
		return i.Int64, nil
	}

	f, err := n.Float64Value()
	if err != nil || !f.Valid {
		return 0, malformed("numeric offset cannot be converted: %v", err)
	}
	return normalizeFloat(f.Float64)
}

func normalizeString(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, malformed("empty offset")
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, malformed("offset %q is not numeric", s)
	}
	return normalizeFloat(f)
}
