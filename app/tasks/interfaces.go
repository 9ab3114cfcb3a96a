package tasks

import (
	"context"
	"net/url"

	"github.com/lysyi3m/rss-notify/app/settings"
	"github.com/lysyi3m/rss-notify/app/transport"
)

// TaskSchedulerInterface defines the polling lifecycle used by the main
// application and the HTTP API.
//
//	scheduler := NewScheduler(loader, fetcher, store, dispatcher, filterer)
//	scheduler.Start()
//	defer scheduler.Stop()
//	scheduler.Reload()
type TaskSchedulerInterface interface {
	Start()
	Stop()
	Reload() error
	EnqueueTask(task TaskInterface) error
}

type Fetcher interface {
	Fetch(ctx context.Context, rawURL string, params url.Values) (transport.Response, error)
}

// SettingsSource returns the current settings. On error it still returns the
// last valid snapshot.
type SettingsSource interface {
	Load() (*settings.Snapshot, error)
}
