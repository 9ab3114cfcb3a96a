package settings

import (
	"time"

	"github.com/lysyi3m/rss-notify/app/feed"
	"gopkg.in/yaml.v3"
)

const (
	DefaultUpdateInterval    = 30   // minutes
	DefaultPollDelay         = 1500 // milliseconds
	DefaultItemsVisible      = 15
	DefaultNotificationLimit = 10
)

// Source is one configured feed. In YAML it is either a plain URL or a
// mapping with url and filters.
type Source struct {
	URL     string        `yaml:"url" json:"url"`
	Filters []feed.Filter `yaml:"filters" json:"filters,omitempty"`
}

func (s *Source) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		s.URL = node.Value
		return nil
	}

	type plain Source
	return node.Decode((*plain)(s))
}

// Snapshot is an immutable view of the settings file taken at load time.
type Snapshot struct {
	Sources              []Source `yaml:"sources" json:"sources"`
	UpdateInterval       int      `yaml:"update_interval" json:"update_interval"` // minutes
	PollDelay            int      `yaml:"poll_delay" json:"poll_delay"`           // milliseconds
	ItemsVisible         int      `yaml:"items_visible" json:"items_visible"`
	NotificationsEnabled bool     `yaml:"notifications_enabled" json:"notifications_enabled"`
	NotificationLimit    int      `yaml:"notification_limit" json:"notification_limit"`
	NotificationsCleanup bool     `yaml:"notifications_cleanup" json:"notifications_cleanup"`
	DropStaleResponses   bool     `yaml:"drop_stale_responses" json:"drop_stale_responses"`
}

func Defaults() *Snapshot {
	return &Snapshot{
		UpdateInterval:       DefaultUpdateInterval,
		PollDelay:            DefaultPollDelay,
		ItemsVisible:         DefaultItemsVisible,
		NotificationsEnabled: true,
		NotificationLimit:    DefaultNotificationLimit,
	}
}

func (s *Snapshot) UpdateIntervalDuration() time.Duration {
	return time.Duration(s.UpdateInterval) * time.Minute
}

func (s *Snapshot) PollDelayDuration() time.Duration {
	return time.Duration(s.PollDelay) * time.Millisecond
}
