// Package settings loads the live, reloadable part of the configuration:
// the ordered source list and the polling and notification knobs.
package settings

import (
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/lysyi3m/rss-notify/app/feed"
	"gopkg.in/yaml.v3"
)

type Loader struct {
	path    string
	current *Snapshot
	mu      sync.RWMutex
}

func NewLoader(path string) *Loader {
	return &Loader{path: path}
}

// Load re-reads the settings file. On failure the previous snapshot stays
// current and is returned together with the error.
func (l *Loader) Load() (*Snapshot, error) {
	snapshot, err := l.parse()
	if err == nil {
		err = validate(snapshot)
	}

	if err != nil {
		return l.Current(), fmt.Errorf("invalid settings %s: %w", l.path, err)
	}

	l.mu.Lock()
	l.current = snapshot
	l.mu.Unlock()

	slog.Debug("Settings loaded", "path", l.path, "sources", len(snapshot.Sources), "update_interval", snapshot.UpdateInterval, "items_visible", snapshot.ItemsVisible)

	return snapshot, nil
}

// Current returns the last valid snapshot, or the defaults when nothing has
// been loaded yet.
func (l *Loader) Current() *Snapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.current == nil {
		return Defaults()
	}
	return l.current
}

func (l *Loader) parse() (*Snapshot, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	// Keys missing from the file keep their defaults
	snapshot := Defaults()
	if err := yaml.Unmarshal(data, snapshot); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	return snapshot, nil
}

func validate(s *Snapshot) error {
	nonNegativeFields := map[string]int{
		"update interval":    s.UpdateInterval,
		"poll delay":         s.PollDelay,
		"items visible":      s.ItemsVisible,
		"notification limit": s.NotificationLimit,
	}

	for fieldName, fieldValue := range nonNegativeFields {
		if fieldValue < 0 {
			return fmt.Errorf("%s must be non-negative", fieldName)
		}
	}

	for i, source := range s.Sources {
		for j, filter := range source.Filters {
			if !feed.FilterFields[filter.Field] {
				return fmt.Errorf("invalid filter field for source %d at index %d: %s", i, j, filter.Field)
			}
			if len(filter.Includes) == 0 && len(filter.Excludes) == 0 {
				return fmt.Errorf("filter for source %d at index %d must have at least one include or exclude rule", i, j)
			}
		}
	}

	return nil
}
