package shared

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var durationRegex = regexp.MustCompile(`^(\d+)\s*(d|h|m|s|ms)$`)

// shared.ParseDuration parses a duration string with support for days
// (e.g., "30d", "24h") into a time.Duration. Values accepted by
// time.ParseDuration ("1m30s") are passed through.
// An empty string and "0" both return 0 (disabled).
func ParseDuration(durationStr string) (time.Duration, error) {
	trimmedStr := strings.TrimSpace(durationStr)
	if trimmedStr == "" || trimmedStr == "0" {
		return 0, nil
	}

	matches := durationRegex.FindStringSubmatch(trimmedStr)
	if len(matches) < 3 {
		d, err := time.ParseDuration(trimmedStr)
		if err != nil {
			return 0, fmt.Errorf("invalid duration format: %s", durationStr)
		}
		if d < 0 {
			return 0, fmt.Errorf("negative duration: %s", durationStr)
		}
		return d, nil
	}

	value, err := strconv.Atoi(matches[1])
	if err != nil {
		return 0, fmt.Errorf("invalid duration number: %s", matches[1])
	}

	switch matches[2] {
	case "d":
		return time.Duration(value) * 24 * time.Hour, nil
	case "h":
		return time.Duration(value) * time.Hour, nil
	case "m":
		return time.Duration(value) * time.Minute, nil
	case "s":
		return time.Duration(value) * time.Second, nil
	case "ms":
		return time.Duration(value) * time.Millisecond, nil
	default:
		return 0, fmt.Errorf("unsupported duration unit: %s", matches[2])
	}
}

// SafeNameRegex matches identifiers that can be used as collection, field
// and index names on every backend without quoting surprises.
var SafeNameRegex = regexp.MustCompile("^[a-zA-Z_][a-zA-Z0-9_]*$")
