// Package env reads process environment variables with fallbacks. It exists
// for the handful of knobs read before config loads, like the log format.
package env

import "os"

// Get returns the named environment variable, or fallback when unset or empty.
func Get(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
