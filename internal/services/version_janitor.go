package services

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/huangang/bizboard/internal/observability"
	"github.com/huangang/bizboard/internal/store"
	"github.com/huangang/bizboard/pkg/logger"
	"github.com/robfig/cron/v3"
)

const (
	sweepJobName = "version_sweep"
	sweepLockTTL = 10 * time.Minute
)

// VersionJanitor trims version history for configs that are over the
// retention bound, e.g. after the bound was lowered. Mutate already prunes
// the config it writes; the janitor catches everything else.
type VersionJanitor struct {
	store     store.Store
	queue     TaskQueue
	retention int
	metrics   *observability.Metrics
	holder    string

	cron    *cron.Cron
	entryID cron.EntryID
}

func NewVersionJanitor(s store.Store, queue TaskQueue, retention int, metrics *observability.Metrics) *VersionJanitor {
	host, _ := os.Hostname()
	return &VersionJanitor{
		store:     s,
		queue:     queue,
		retention: retention,
		metrics:   metrics,
		holder:    fmt.Sprintf("%s:%d", host, os.Getpid()),
	}
}

// Start schedules the sweep. An empty schedule leaves the janitor idle.
func (j *VersionJanitor) Start(schedule string) error {
	if schedule == "" {
		logger.Infof("[VersionJanitor] Sweep disabled")
		return nil
	}

	j.cron = cron.New()
	entryID, err := j.cron.AddFunc(schedule, j.runScheduled)
	if err != nil {
		return fmt.Errorf("schedule version sweep %q: %w", schedule, err)
	}
	j.entryID = entryID
	j.cron.Start()
	logger.Infof("[VersionJanitor] Scheduled (cron: %s)", schedule)
	return nil
}

// Stop waits for a running sweep to finish.
func (j *VersionJanitor) Stop() {
	if j.cron == nil {
		return
	}
	<-j.cron.Stop().Done()
}

func (j *VersionJanitor) runScheduled() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	slot := time.Now().UTC().Format("200601021504")
	ok, err := j.store.AcquireLock(ctx, sweepJobName, slot, j.holder, sweepLockTTL)
	if err != nil {
		logger.Warnf("[VersionJanitor] Failed to acquire lock: %v", err)
		return
	}
	if !ok {
		logger.Debug().Str("slot", slot).Msg("[VersionJanitor] Another instance owns this run")
		return
	}

	if _, err := j.Sweep(ctx); err != nil {
		logger.Warnf("[VersionJanitor] Sweep failed: %v", err)
	}
}

// Sweep queues a prune task for every config over the retention bound and
// reports how many were queued.
func (j *VersionJanitor) Sweep(ctx context.Context) (int, error) {
	ids, err := j.store.ListConfigIDsOverRetention(ctx, j.retention)
	if err != nil {
		return 0, err
	}

	queued := 0
	for _, id := range ids {
		if err := j.queue.Enqueue(ctx, &VersionSweepTask{ConfigID: id, Keep: j.retention}); err != nil {
			logger.Warnf("[VersionJanitor] Failed to enqueue config %d: %v", id, err)
			continue
		}
		queued++
	}
	if queued > 0 {
		logger.Info().Int("configs", queued).Msg("[VersionJanitor] Sweep queued")
	}
	return queued, nil
}

// Process prunes one config. It is the processor for both queue kinds.
func (j *VersionJanitor) Process(ctx context.Context, task *VersionSweepTask) error {
	keep := task.Keep
	if keep <= 0 {
		keep = j.retention
	}
	deleted, err := j.store.PruneVersions(ctx, task.ConfigID, keep)
	if err != nil {
		return fmt.Errorf("prune config %d: %w", task.ConfigID, err)
	}
	j.metrics.ObservePruned(deleted)
	return nil
}
