package cfg

import "time"

type Cfg struct {
	// Application configuration
	SettingsFile string
	Port         string
	APIAccessKey string

	// Transport
	UserAgent    string
	FetchTimeout time.Duration
	RateLimit    float64

	// Logging
	LogLevel string
	LogFile  string

	// Application metadata
	Timezone string
	Version  string
}
