package sqlite

import (
	"strconv"
	"strings"
	"time"
)

// asInt64 converts a loosely typed column value. SQLite columns accept any
// type, so a value that cannot be read as an integer reports false.
func asInt64(v any) (int64, bool) {
	switch x := v.(type) {
	case int64:
		return x, true
	case float64:
		return int64(x), true
	case bool:
		if x {
			return 1, true
		}
		return 0, true
	case []byte:
		return parseInt(string(x))
	case string:
		return parseInt(x)
	case time.Time:
		return x.UnixMilli(), true
	default:
		return 0, false
	}
}

func parseInt(s string) (int64, bool) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// asString converts a loosely typed column value; NULL reports false.
func asString(v any) (string, bool) {
	switch x := v.(type) {
	case string:
		return x, true
	case []byte:
		return string(x), true
	case int64:
		return strconv.FormatInt(x, 10), true
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), true
	default:
		return "", false
	}
}
