package CronJobs

import (
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"SmartRoute/Models"
)

// Purgeable is an in-process cache that can be dropped wholesale.
type Purgeable interface {
	Purge()
}

// CachePurger periodically deletes geocode records older than the cache TTL
type CachePurger struct {
	cronScheduler *cron.Cron
	db            *gorm.DB
	ttl           time.Duration
	schedule      string
	memory        Purgeable
	log           *zap.Logger
	now           func() time.Time

	mu    sync.Mutex
	jobID cron.EntryID
}

// NewCachePurger creates a purger. memory may be nil; when set it is flushed
// after every purge so it cannot serve rows that were just deleted.
func NewCachePurger(db *gorm.DB, ttl time.Duration, schedule string, memory Purgeable, log *zap.Logger) *CachePurger {
	if log == nil {
		log = zap.NewNop()
	}
	return &CachePurger{
		cronScheduler: cron.New(cron.WithSeconds()),
		db:            db,
		ttl:           ttl,
		schedule:      schedule,
		memory:        memory,
		log:           log,
		now:           time.Now,
	}
}

// Start schedules the purge job and starts the scheduler
func (p *CachePurger) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	id, err := p.cronScheduler.AddFunc(p.schedule, p.runScheduled)
	if err != nil {
		return fmt.Errorf("error scheduling cron job: %w", err)
	}
	p.jobID = id
	p.cronScheduler.Start()
	p.log.Info("geocode cache purger started", zap.String("schedule", p.schedule), zap.Duration("ttl", p.ttl))
	return nil
}

// Stop terminates the scheduler and waits for a running purge to finish
func (p *CachePurger) Stop() {
	if p.cronScheduler != nil {
		<-p.cronScheduler.Stop().Done()
		p.log.Info("geocode cache purger stopped")
	}
}

// UpdateSchedule changes the schedule of the purge job
// Format: "0 0 3 * * *" = At 03:00:00 AM every day
func (p *CachePurger) UpdateSchedule(schedule string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	id, err := p.cronScheduler.AddFunc(schedule, p.runScheduled)
	if err != nil {
		return fmt.Errorf("error updating schedule: %w", err)
	}
	p.cronScheduler.Remove(p.jobID)
	p.jobID = id
	p.schedule = schedule

	p.log.Info("geocode cache purge schedule updated", zap.String("schedule", schedule))
	return nil
}

// Schedule returns the active cron expression
func (p *CachePurger) Schedule() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.schedule
}

// RunNow purges immediately and returns the number of deleted records
func (p *CachePurger) RunNow() (int64, error) {
	cutoff := p.now().Add(-p.ttl)
	deleted, err := Models.PurgeStaleGeocodes(p.db, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge geocodes: %w", err)
	}
	if p.memory != nil {
		p.memory.Purge()
	}
	return deleted, nil
}

func (p *CachePurger) runScheduled() {
	start := time.Now()
	deleted, err := p.RunNow()
	if err != nil {
		p.log.Error("geocode cache purge failed", zap.Error(err))
		return
	}
	p.log.Info("geocode cache purged", zap.Int64("deleted", deleted), zap.Duration("elapsed", time.Since(start)))
}
