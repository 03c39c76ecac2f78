package protocol

import (
	"fmt"
	"strconv"
)

// FormatHeader transforms a known header's raw string value into its
// semantic Go type. content-length becomes an int64; version becomes a
// Version. Any other header name is returned unchanged. The returned
// value for "version" is itself keyed "version" by callers — an earlier
// implementation in this lineage mistakenly keyed it "value".
func FormatHeader(name, value string) (any, error) {
	switch name {
	case "content-length":
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("protocol: malformed content-length %q: %w", value, err)
		}
		if n < 0 {
			return nil, fmt.Errorf("protocol: negative content-length %d", n)
		}
		return n, nil
	case "version":
		return NormalizeVersion(value), nil
	default:
		return value, nil
	}
}
