package api

import (
	"time"

	"github.com/lysyi3m/rss-notify/app/cache"
	"github.com/lysyi3m/rss-notify/app/notify"
	"github.com/lysyi3m/rss-notify/app/tasks"
)

type GeneratorInterface interface {
	Run(view cache.View, selfLink string) (string, error)
}

var _ GeneratorInterface = (*Generator)(nil)

// SchedulerInterface is the scheduler as seen by the HTTP layer.
type SchedulerInterface interface {
	tasks.TaskSchedulerInterface
	Generation() uint64
	PendingFetches() int
	LastReload() time.Time
}

var _ SchedulerInterface = (*tasks.Scheduler)(nil)

type Handler struct {
	store      *cache.Store
	dispatcher *notify.Dispatcher
	scheduler  SchedulerInterface
	generator  GeneratorInterface
}
