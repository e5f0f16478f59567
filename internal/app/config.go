package app

import "time"

// Config holds runtime configuration for the extractor.
type Config struct {
	// Fetch
	UserAgent   string
	Timeout     time.Duration
	MaxAttempts int

	// Page cache
	CacheDir    string
	CacheMaxAge time.Duration
	CacheClear  bool

	// Behavior
	Verbose bool
}
