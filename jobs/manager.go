// Package jobs provides background job processing functionality.
package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const resetTimeout = 30 * time.Second

// JobManager runs the catalog reset job on a cron schedule
type JobManager struct {
	resetJob *CatalogResetJob
	schedule cron.Schedule
	log      *zap.Logger

	cron    *cron.Cron
	ctx     context.Context
	cancel  context.CancelFunc
	running bool
	mu      sync.RWMutex
}

// NewJobManager creates a job manager for a standard five-field cron
// expression or descriptor such as "@every 24h"
func NewJobManager(resetJob *CatalogResetJob, spec string, log *zap.Logger) (*JobManager, error) {
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("invalid reset schedule %q: %w", spec, err)
	}

	return &JobManager{
		resetJob: resetJob,
		schedule: schedule,
		log:      log,
	}, nil
}

// Start begins the job manager background processing
func (jm *JobManager) Start() {
	jm.mu.Lock()
	defer jm.mu.Unlock()

	if jm.running {
		jm.log.Info("job manager is already running")
		return
	}

	jm.ctx, jm.cancel = context.WithCancel(context.Background())
	jm.cron = cron.New()
	ctx := jm.ctx
	jm.cron.Schedule(jm.schedule, cron.FuncJob(func() { jm.runReset(ctx) }))
	jm.cron.Start()
	jm.running = true

	jm.log.Info("job manager started", zap.Time("next_reset", jm.schedule.Next(time.Now())))
}

// Stop stops the scheduler and waits for a running reset to finish
func (jm *JobManager) Stop() {
	jm.mu.Lock()
	defer jm.mu.Unlock()

	if !jm.running {
		return
	}

	jm.log.Info("stopping job manager")
	jm.cancel()
	<-jm.cron.Stop().Done()
	jm.running = false
	jm.log.Info("job manager stopped")
}

// IsRunning returns whether the job manager is currently running
func (jm *JobManager) IsRunning() bool {
	jm.mu.RLock()
	defer jm.mu.RUnlock()
	return jm.running
}

func (jm *JobManager) runReset(parent context.Context) {
	ctx, cancel := context.WithTimeout(parent, resetTimeout)
	defer cancel()

	jm.log.Info("running scheduled catalog reset")
	if _, err := jm.resetJob.Run(ctx); err != nil {
		jm.log.Error("scheduled catalog reset failed", zap.Error(err))
	}
}
