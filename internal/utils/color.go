package utils

import (
	"regexp"
	"strconv"
	"strings"
)

var hexColor = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// ParseHexColor converts #RRGGBB into an integer color.
func ParseHexColor(raw string) (int, bool) {
	if !hexColor.MatchString(raw) {
		return 0, false
	}
	value, err := strconv.ParseInt(strings.TrimPrefix(raw, "#"), 16, 32)
	if err != nil {
		return 0, false
	}
	return int(value), true
}
