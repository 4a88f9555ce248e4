package core

import (
	"fmt"
	"strconv"
)

// Stringify renders a context value for interpolation. JSON numbers decode as
// float64; integral ones are rendered without a trailing ".0" so that values
// like IDs survive a round trip through a URL or header.
func Stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		if t == float64(int64(t)) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", t)
	}
}
