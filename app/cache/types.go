package cache

import (
	"errors"
	"time"

	"github.com/lysyi3m/rss-notify/app/feed"
	"github.com/lysyi3m/rss-notify/app/notify"
)

var (
	ErrSourceNotFound = errors.New("source not found")
	ErrEntryNotFound  = errors.New("entry not found")
)

// Notifier is the part of the notification dispatcher the cache talks to.
type Notifier interface {
	Dispatch(msg notify.Message) notify.Notification
	Live(id string) bool
}

// Entry is one cached article. NotificationID refers to a notification owned
// by the dispatcher and may be stale.
type Entry struct {
	Item           feed.Item `json:"item"`
	Unread         bool      `json:"unread"`
	Update         bool      `json:"update"`
	NotificationID string    `json:"-"`
}

// SourceCache is the reconciled state of one source.
type SourceCache struct {
	Key        string
	Publisher  feed.Publisher
	LastUpdate time.Time

	entries             map[string]*Entry
	order               []string
	unreadCount         int
	previousUnreadCount int
	hasBaseline         bool
}

func newSourceCache(key string) *SourceCache {
	return &SourceCache{
		Key:     key,
		entries: make(map[string]*Entry),
	}
}

type Result struct {
	New          int    `json:"new"`
	Updated      int    `json:"updated"`
	Evicted      int    `json:"evicted"`
	Unread       int    `json:"unread"`
	TotalUnread  int    `json:"total_unread"`
	LabelChanged bool   `json:"label_changed"`
	Label        string `json:"label"`
}

// View is a read-only copy of a source cache.
type View struct {
	Key        string         `json:"key"`
	Publisher  feed.Publisher `json:"publisher"`
	Label      string         `json:"label"`
	Unread     int            `json:"unread"`
	LastUpdate time.Time      `json:"last_update"`
	Items      []EntryView    `json:"items"`
}

type EntryView struct {
	Entry
	Notified bool `json:"notified"`
}
