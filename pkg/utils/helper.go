package utils

import "strconv"

// ParseInt reads a positive integer query value, falling back to
// defaultValue when it is empty, malformed or below one.
func ParseInt(value string, defaultValue int) int {
	if value == "" {
		return defaultValue
	}

	result, err := strconv.Atoi(value)
	if err != nil || result < 1 {
		return defaultValue
	}
	return result
}
