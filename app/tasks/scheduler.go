package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/lysyi3m/rss-notify/app/cache"
	"github.com/lysyi3m/rss-notify/app/feed"
	"github.com/lysyi3m/rss-notify/app/notify"
	"github.com/lysyi3m/rss-notify/app/settings"
	"github.com/lysyi3m/rss-notify/app/transport"
)

var _ TaskSchedulerInterface = (*Scheduler)(nil)

// Scheduler runs polling cycles. Timers and fetches run on their own
// goroutines; every task, and so every cache and dispatcher mutation, runs on
// a single consumer goroutine.
type Scheduler struct {
	settings   SettingsSource
	fetcher    Fetcher
	store      *cache.Store
	dispatcher *notify.Dispatcher
	filterer   *feed.Filterer
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	fetches    sync.WaitGroup
	taskQueue  chan TaskInterface

	mu           sync.Mutex
	pending      map[*time.Timer]struct{}
	recurring    *time.Timer
	generation   uint64
	snapshot     *settings.Snapshot
	itemsVisible int
	lastReload   time.Time
	stopped      bool
}

type cycleStats struct {
	generation uint64
	scheduled  int
	purged     int
	reset      bool
}

func NewScheduler(settingsSource SettingsSource, fetcher Fetcher, store *cache.Store,
	dispatcher *notify.Dispatcher, filterer *feed.Filterer) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		settings:   settingsSource,
		fetcher:    fetcher,
		store:      store,
		dispatcher: dispatcher,
		filterer:   filterer,
		ctx:        ctx,
		cancel:     cancel,
		taskQueue:  make(chan TaskInterface, 300),
		pending:    make(map[*time.Timer]struct{}),
	}
}

// Start launches the consumer and the first polling cycle.
func (s *Scheduler) Start() {
	s.wg.Add(1)
	go s.worker()

	if err := s.Reload(); err != nil {
		slog.Warn("Failed to enqueue initial reload", "error", err)
	}
}

func (s *Scheduler) Stop() {
	s.mu.Lock()
	s.stopped = true
	s.cancelTimersLocked()
	cleanup := s.snapshot != nil && s.snapshot.NotificationsCleanup
	s.mu.Unlock()

	s.cancel()
	s.fetches.Wait()
	s.wg.Wait()

	if cleanup {
		s.dispatcher.Clear()
	}
}

// Reload requests a new polling cycle.
func (s *Scheduler) Reload() error {
	return s.EnqueueTask(NewReloadTask(s))
}

func (s *Scheduler) EnqueueTask(task TaskInterface) error {
	if err := s.ctx.Err(); err != nil {
		return err
	}

	select {
	case s.taskQueue <- task:
		return nil
	case <-s.ctx.Done():
		return s.ctx.Err()
	default:
		return fmt.Errorf("task queue is full")
	}
}

func (s *Scheduler) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

func (s *Scheduler) PendingFetches() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

func (s *Scheduler) LastReload() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastReload
}

func (s *Scheduler) currentSettings() *settings.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.snapshot == nil {
		return settings.Defaults()
	}
	return s.snapshot
}

// startCycle runs on the consumer goroutine.
func (s *Scheduler) startCycle() (cycleStats, error) {
	snapshot, err := s.settings.Load()
	if err != nil {
		slog.Warn("Failed to load settings, keeping previous", "error", err)
	}
	if snapshot == nil {
		return cycleStats{}, fmt.Errorf("no settings available: %w", err)
	}

	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return cycleStats{}, fmt.Errorf("scheduler stopped")
	}

	s.cancelTimersLocked()

	s.generation++
	stats := cycleStats{generation: s.generation}

	// Caches built with a smaller cap cannot tell which older items are new
	if s.snapshot != nil && snapshot.ItemsVisible > s.itemsVisible {
		stats.reset = true
	}
	s.snapshot = snapshot
	s.itemsVisible = snapshot.ItemsVisible
	s.lastReload = time.Now()
	s.mu.Unlock()

	if stats.reset {
		slog.Debug("Visible item count grew, resetting caches", "items_visible", snapshot.ItemsVisible)
		s.store.Reset()
	}

	s.dispatcher.SetLimit(snapshot.NotificationLimit)

	configured := make(map[string]bool, len(snapshot.Sources))
	for _, source := range snapshot.Sources {
		key, _ := transport.SplitSourceURL(source.URL)
		configured[key] = true
	}
	for _, key := range s.store.Keys() {
		if !configured[key] && s.store.Purge(key) {
			stats.purged++
		}
	}

	for i, source := range snapshot.Sources {
		if source.URL == "" {
			continue
		}
		s.scheduleFetch(stats.generation, source, time.Duration(i)*snapshot.PollDelayDuration())
		stats.scheduled++
	}

	if snapshot.UpdateInterval > 0 {
		slog.Debug("Next scheduled reload", "after", snapshot.UpdateIntervalDuration().String())
		s.scheduleReload(snapshot.UpdateIntervalDuration())
	}

	return stats, nil
}

func (s *Scheduler) scheduleFetch(generation uint64, source settings.Source, delay time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var timer *time.Timer
	timer = time.AfterFunc(delay, func() {
		s.mu.Lock()
		if _, ok := s.pending[timer]; !ok || s.stopped {
			s.mu.Unlock()
			return
		}
		delete(s.pending, timer)
		s.fetches.Add(1)
		s.mu.Unlock()

		defer s.fetches.Done()
		s.fetch(generation, source)
	})
	s.pending[timer] = struct{}{}
}

func (s *Scheduler) scheduleReload(after time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var timer *time.Timer
	timer = time.AfterFunc(after, func() {
		s.mu.Lock()
		if s.recurring != timer || s.stopped {
			s.mu.Unlock()
			return
		}
		s.recurring = nil
		s.mu.Unlock()

		if err := s.Reload(); err != nil {
			slog.Warn("Failed to enqueue scheduled reload", "error", err)
		}
	})
	s.recurring = timer
}

func (s *Scheduler) cancelTimersLocked() {
	for timer := range s.pending {
		timer.Stop()
		delete(s.pending, timer)
	}

	if s.recurring != nil {
		s.recurring.Stop()
		s.recurring = nil
	}
}

func (s *Scheduler) fetch(generation uint64, source settings.Source) {
	key, params := transport.SplitSourceURL(source.URL)

	resp, err := s.fetcher.Fetch(s.ctx, key, params)
	if err != nil {
		slog.Debug("HTTP GET failed", "source", key, "status", resp.Status, "error", err)
	} else {
		slog.Debug("HTTP GET", "source", key, "status", resp.Status, "bytes", len(resp.Body))
	}

	task := NewProcessSourceTask(s, generation, key, source.Filters, resp, err)
	if err := s.EnqueueTask(task); err != nil {
		slog.Warn("Failed to enqueue ProcessSourceTask", "source", key, "error", err)
	}
}

func (s *Scheduler) worker() {
	defer s.wg.Done()

	for {
		select {
		case task, ok := <-s.taskQueue:
			if !ok {
				return
			}
			s.executeTask(task)

		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Scheduler) executeTask(task TaskInterface) {
	task.Start()

	taskCtx, cancel := context.WithTimeout(s.ctx, 5*time.Minute)
	defer cancel()

	if err := task.Execute(taskCtx); err != nil {
		slog.Warn("Task failed", "type", string(task.GetType()), "id", task.GetID(), "source", task.GetSourceKey(), "error", err)
	}
}
