package utils

import (
	"errors"
	"strconv"
	"strings"
	"time"

	str2duration "github.com/xhit/go-str2duration/v2"
)

// MaxTimeout is the longest communication timeout the platform accepts.
const MaxTimeout = 28 * 24 * time.Hour

const month = 30 * 24 * time.Hour

var ErrInvalidDuration = errors.New("invalid duration")

// ParseTimeout reads durations such as 10m, 1h, 1d, 1w or 2M (months of 30
// days). The result must be positive; anything above MaxTimeout is capped.
func ParseTimeout(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, ErrInvalidDuration
	}

	var d time.Duration
	if strings.HasSuffix(raw, "M") {
		months, err := strconv.Atoi(strings.TrimSuffix(raw, "M"))
		if err != nil || months <= 0 {
			return 0, ErrInvalidDuration
		}
		d = time.Duration(months) * month
	} else {
		parsed, err := str2duration.ParseDuration(strings.ToLower(raw))
		if err != nil {
			return 0, ErrInvalidDuration
		}
		d = parsed
	}

	if d <= 0 {
		return 0, ErrInvalidDuration
	}
	if d > MaxTimeout {
		d = MaxTimeout
	}
	return d, nil
}
