package tasks

import (
	"context"
	"log/slog"
)

// ReloadTask starts a new polling cycle.
type ReloadTask struct {
	Task
	scheduler *Scheduler
}

func NewReloadTask(scheduler *Scheduler) *ReloadTask {
	return &ReloadTask{
		Task:      NewTask(TaskTypeReload, ""),
		scheduler: scheduler,
	}
}

func (t *ReloadTask) Execute(ctx context.Context) error {

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	cycle, err := t.scheduler.startCycle()
	if err != nil {
		return err
	}

	slog.Info("Task completed",
		"type", "Reload",
		"generation", cycle.generation,
		"sources", cycle.scheduled,
		"purged", cycle.purged,
		"reset", cycle.reset,
		"duration", t.GetDuration())

	return nil
}
