// Package env reads raw process environment values. It covers the few knobs
// consulted before the typed fleetline config has been loaded, such as the
// log format the logger needs at construction time.
package env

import "os"

// Get returns the named variable, or fallback when it is unset or blank.
func Get(key, fallback string) string {
	val, ok := os.LookupEnv(key)
	if !ok || val == "" {
		return fallback
	}
	return val
}
