package tasks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/lysyi3m/rss-notify/app/feed"
	"github.com/lysyi3m/rss-notify/app/transport"
)

// ProcessSourceTask routes the outcome of one fetch: a transport failure
// skips the source, an unrecognized document purges it, anything else is
// reconciled into the cache.
type ProcessSourceTask struct {
	Task
	generation uint64
	filters    []feed.Filter
	response   transport.Response
	fetchErr   error
	scheduler  *Scheduler
}

func NewProcessSourceTask(scheduler *Scheduler, generation uint64, sourceKey string, filters []feed.Filter, response transport.Response, fetchErr error) *ProcessSourceTask {
	return &ProcessSourceTask{
		Task:       NewTask(TaskTypeProcessSource, sourceKey),
		generation: generation,
		filters:    filters,
		response:   response,
		fetchErr:   fetchErr,
		scheduler:  scheduler,
	}
}

func (t *ProcessSourceTask) Execute(ctx context.Context) error {

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	s := t.scheduler
	snapshot := s.currentSettings()

	if current := s.Generation(); t.generation != current {
		if snapshot.DropStaleResponses {
			slog.Debug("Stale response dropped", "source", t.SourceKey, "generation", t.generation, "current", current)
			return nil
		}
		slog.Debug("Processing stale response", "source", t.SourceKey, "generation", t.generation, "current", current)
	}

	if t.fetchErr != nil {
		return fmt.Errorf("failed to fetch source, skipping: %w", t.fetchErr)
	}

	if len(t.response.Body) == 0 {
		slog.Debug("Empty response body, skipping", "source", t.SourceKey, "status", t.response.Status)
		return nil
	}

	parser, err := feed.Run(t.response.Body)
	if err != nil {
		purged := s.store.Purge(t.SourceKey)
		if errors.Is(err, feed.ErrUnrecognizedFormat) {
			slog.Warn("Unrecognized feed, source purged", "source", t.SourceKey, "purged", purged, "error", err)
			return nil
		}
		return fmt.Errorf("failed to parse source: %w", err)
	}

	total := len(parser.Items())
	items := s.filterer.Run(parser.Items(), t.filters)

	baseline := !s.store.Has(t.SourceKey)

	result, err := s.store.Reconcile(t.SourceKey, parser.Publisher(), items, snapshot.ItemsVisible, snapshot.NotificationsEnabled)
	if err != nil {
		return fmt.Errorf("failed to reconcile source: %w", err)
	}

	if result.LabelChanged {
		slog.Debug("Unread count changed", "source", t.SourceKey, "label", result.Label, "total_unread", result.TotalUnread)
	}

	slog.Info("Task completed",
		"type", "ProcessSource",
		"source", t.SourceKey,
		"format", string(parser.Type()),
		"baseline", baseline,
		"duration", t.GetDuration(),
		"total", total,
		"filtered", total-len(items),
		"new", result.New,
		"updated", result.Updated,
		"evicted", result.Evicted,
		"unread", result.Unread)

	return nil
}
