package cfg

import (
	"cmp"
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Application configuration
	SettingsFile string `long:"settings" env:"SETTINGS_FILE" default:"./settings.yml" description:"Path to the YAML file with sources and polling settings"`
	Port         string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	APIAccessKey string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for authentication (optional)"`

	// Transport
	UserAgent    string  `long:"user-agent" env:"USER_AGENT" default:"RSS Notify/1.0" description:"User agent string for HTTP requests"`
	FetchTimeout int     `long:"fetch-timeout" env:"FETCH_TIMEOUT" default:"60" description:"HTTP fetch timeout in seconds"`
	RateLimit    float64 `long:"rate-limit" env:"RATE_LIMIT" default:"0" description:"Maximum fetches per second across all sources (0 = unlimited)"`

	// Logging
	LogLevel string `long:"log-level" env:"LOG_LEVEL" default:"info" choice:"debug" choice:"info" choice:"warn" choice:"error" description:"Log level"`
	LogFile  string `long:"log-file" env:"LOG_FILE" description:"Also write logs to this file, rotated by size (optional)"`

	// Application metadata
	Timezone string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, America/New_York)"`
}

func Load() (*Cfg, error) {
	return load(nil)
}

func load(args []string) (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	var err error
	if args == nil {
		_, err = parser.Parse()
	} else {
		_, err = parser.ParseArgs(args)
	}
	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	if raw.FetchTimeout <= 0 {
		return nil, fmt.Errorf("fetch timeout must be positive")
	}
	if raw.RateLimit < 0 {
		return nil, fmt.Errorf("rate limit must be non-negative")
	}

	cfg := &Cfg{
		SettingsFile: raw.SettingsFile,
		Port:         raw.Port,
		APIAccessKey: raw.APIAccessKey,
		UserAgent:    raw.UserAgent,
		FetchTimeout: time.Duration(raw.FetchTimeout) * time.Second,
		RateLimit:    raw.RateLimit,
		LogLevel:     raw.LogLevel,
		LogFile:      raw.LogFile,
		Timezone:     raw.Timezone,
		Version:      GetVersion(),
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	return cfg, nil
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		loc, err := time.LoadLocation(timezone)
		if err != nil {
			return err
		}
		time.Local = loc
	}
	return nil
}
