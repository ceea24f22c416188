package utils

import (
	"strconv"
	"time"
)

// FormatUptime renders d as "1d 2h 3m 4s".
func FormatUptime(d time.Duration) string {
	total := int64(d / time.Second)
	days := total / 86400
	hours := (total % 86400) / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60
	return strconv.FormatInt(days, 10) + "d " + strconv.FormatInt(hours, 10) + "h " + strconv.FormatInt(minutes, 10) + "m " + strconv.FormatInt(seconds, 10) + "s"
}
