package utils

import "time"

// ParseDuration safely parses duration strings like "30m"
func ParseDuration(d string) time.Duration {
	if d == "" {
		return 30 * time.Minute
	}
	duration, err := time.ParseDuration(d)
	if err != nil {
		return 30 * time.Minute
	}
	return duration
}
