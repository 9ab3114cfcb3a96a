// Package cache reconciles parsed feed items against what has already been
// seen for each source and keeps the unread accounting.
package cache

import (
	"cmp"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/lysyi3m/rss-notify/app/feed"
	"github.com/lysyi3m/rss-notify/app/notify"
)

const (
	descriptionLimit = 290
	labelLimit       = 128
	updatePrefix     = "UPDATE: "
)

type Store struct {
	sources     map[string]*SourceCache
	totalUnread int
	notifier    Notifier
	now         func() time.Time
	mu          sync.RWMutex
}

// NewStore creates an empty store. A nil notifier disables notifications.
func NewStore(notifier Notifier) *Store {
	return &Store{
		sources:  make(map[string]*SourceCache),
		notifier: notifier,
		now:      time.Now,
	}
}

// Reconcile folds a fresh parse result into the cache of the given source.
//
// Only the first visibleLimit items are considered. Entries missing from them
// are evicted. Entries whose dates changed are replaced and surfaced as
// updates. The first reconciliation of a source establishes the baseline and
// never marks anything unread.
func (s *Store) Reconcile(key string, publisher feed.Publisher, items []feed.Item, visibleLimit int, notificationsEnabled bool) (Result, error) {
	if key == "" {
		return Result{}, fmt.Errorf("source key is required")
	}
	if visibleLimit < 0 {
		return Result{}, fmt.Errorf("visible limit must be non-negative, got %d", visibleLimit)
	}

	if len(items) > visibleLimit {
		items = items[:visibleLimit]
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sc, ok := s.sources[key]
	if len(items) == 0 {
		var res Result
		if ok {
			res.Unread = sc.unreadCount
			res.Label = sc.label()
		}
		res.TotalUnread = s.totalUnread
		return res, nil
	}

	if !ok {
		sc = newSourceCache(key)
		s.sources[key] = sc
	}

	sc.Publisher = publisher

	incoming := make(map[string]feed.Item, len(items))
	for _, item := range items {
		incoming[entryKey(item)] = item
	}

	var res Result
	updates := make(map[string]bool)

	for i := len(sc.order) - 1; i >= 0; i-- {
		k := sc.order[i]
		cached := sc.entries[k]

		item, keep := incoming[k]
		if keep && (item.PublishDate != cached.Item.PublishDate || item.UpdateTime != cached.Item.UpdateTime) {
			updates[k] = true
			keep = false
		}
		if keep {
			continue
		}

		s.evict(sc, i)
		if !updates[k] {
			res.Evicted++
		}
	}

	for i := len(items) - 1; i >= 0; i-- {
		item := items[i]
		k := entryKey(item)

		if _, ok := sc.entries[k]; ok {
			continue
		}

		item.Title = feed.CleanText(item.Title)
		entry := &Entry{Item: item, Update: updates[k]}
		sc.entries[k] = entry
		sc.order = slices.Insert(sc.order, 0, k)

		if !sc.hasBaseline {
			continue
		}

		entry.Unread = true
		sc.unreadCount++
		s.totalUnread++

		if entry.Update {
			res.Updated++
		} else {
			res.New++
		}

		if notificationsEnabled && s.notifier != nil {
			title, body := notificationText(publisher, item, entry.Update)
			n := s.notifier.Dispatch(notify.Message{
				Title:     title,
				Body:      body,
				URL:       item.HttpLink,
				SourceKey: key,
				EntryKey:  k,
			})
			entry.NotificationID = n.ID
		}
	}

	if !sc.hasBaseline {
		slog.Debug("Baseline established", "source", key, "items", len(sc.order))
		sc.hasBaseline = true
	}

	res.LabelChanged = sc.unreadCount != sc.previousUnreadCount
	sc.previousUnreadCount = sc.unreadCount
	sc.LastUpdate = s.now()

	res.Unread = sc.unreadCount
	res.TotalUnread = s.totalUnread
	res.Label = sc.label()

	return res, nil
}

// evict removes the entry at position i of the view order. The notification
// reference is dropped; destroying the notification is up to the dispatcher.
func (s *Store) evict(sc *SourceCache, i int) {
	k := sc.order[i]
	entry := sc.entries[k]

	if entry.Unread {
		entry.Unread = false
		sc.unreadCount--
		s.totalUnread--
	}
	entry.NotificationID = ""

	delete(sc.entries, k)
	sc.order = slices.Delete(sc.order, i, i+1)
}

// Purge drops the whole cache of a source. It reports whether one existed.
func (s *Store) Purge(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	sc, ok := s.sources[key]
	if !ok {
		return false
	}

	s.totalUnread -= sc.unreadCount
	delete(s.sources, key)

	slog.Debug("Source purged", "source", key, "unread", sc.unreadCount)
	return true
}

// Reset drops every source cache.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sources = make(map[string]*SourceCache)
	s.totalUnread = 0
}

func (s *Store) Has(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.sources[key]
	return ok
}

// Keys returns the cached source keys in lexical order.
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.sources))
	for k := range s.sources {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func (s *Store) TotalUnread() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.totalUnread
}

func (s *Store) Snapshot(key string) (View, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sc, ok := s.sources[key]
	if !ok {
		return View{}, fmt.Errorf("%w: %s", ErrSourceNotFound, key)
	}
	return s.view(sc), nil
}

func (s *Store) Snapshots() []View {
	s.mu.RLock()
	defer s.mu.RUnlock()

	views := make([]View, 0, len(s.sources))
	for _, sc := range s.sources {
		views = append(views, s.view(sc))
	}
	slices.SortFunc(views, func(a, b View) int {
		return cmp.Compare(a.Key, b.Key)
	})
	return views
}

// MarkRead acknowledges one article by its entry key (the article link, or
// its id when it has no link). Marking a read article again is a no-op.
func (s *Store) MarkRead(key, entryKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sc, ok := s.sources[key]
	if !ok {
		return fmt.Errorf("%w: %s", ErrSourceNotFound, key)
	}

	entry, ok := sc.entries[entryKey]
	if !ok {
		return fmt.Errorf("%w: %s", ErrEntryNotFound, entryKey)
	}

	if entry.Unread {
		entry.Unread = false
		sc.unreadCount--
		s.totalUnread--
	}
	return nil
}

// MarkAllRead acknowledges every article of a source and returns how many
// were unread.
func (s *Store) MarkAllRead(key string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sc, ok := s.sources[key]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrSourceNotFound, key)
	}

	marked := 0
	for _, entry := range sc.entries {
		if entry.Unread {
			entry.Unread = false
			marked++
		}
	}

	sc.unreadCount = 0
	s.totalUnread -= marked
	return marked, nil
}

func (s *Store) view(sc *SourceCache) View {
	v := View{
		Key:        sc.Key,
		Publisher:  sc.Publisher,
		Label:      sc.label(),
		Unread:     sc.unreadCount,
		LastUpdate: sc.LastUpdate,
		Items:      make([]EntryView, 0, len(sc.order)),
	}

	for _, k := range sc.order {
		entry := sc.entries[k]
		ev := EntryView{Entry: *entry}
		if s.notifier != nil {
			ev.Notified = s.notifier.Live(entry.NotificationID)
		}
		v.Items = append(v.Items, ev)
	}
	return v
}

func (sc *SourceCache) label() string {
	title := feed.CleanText(sc.Publisher.Title)
	if title == "" {
		title = sc.Key
	}
	if sc.unreadCount > 0 {
		title += " (" + strconv.Itoa(sc.unreadCount) + ")"
	}
	return feed.Truncate(title, labelLimit)
}

func entryKey(item feed.Item) string {
	return cmp.Or(item.HttpLink, item.ID)
}

func notificationText(publisher feed.Publisher, item feed.Item, update bool) (string, string) {
	title := item.Title
	if update {
		title = updatePrefix + title
	}

	var body strings.Builder
	body.WriteString("Source: " + feed.CleanText(publisher.Title))
	if author := feed.CleanText(item.Author); author != "" {
		body.WriteString(", Author: " + author)
	}
	body.WriteString("\n\n")

	if description := feed.CleanText(item.Description); description != "" {
		body.WriteString(feed.Truncate(description, descriptionLimit))
	} else {
		body.WriteString(item.Title)
	}

	return title, body.String()
}
