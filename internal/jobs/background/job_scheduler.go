package background

import (
	"context"
	"log"
	"sync"
	"time"

	"ptime/internal/caching"
	"ptime/internal/repositories"

	"github.com/go-co-op/gocron/v2"
)

const listingCacheTTL = 90 * time.Second

// MaintenanceScheduler runs periodic housekeeping: keeping the public
// job listing cache warm and sweeping expired auth artifacts.
type MaintenanceScheduler struct {
	scheduler gocron.Scheduler
	cacheSvc  caching.CacheService
	jobRepo   repositories.JobRepository
	tasks     map[string]gocron.Job
	mu        sync.RWMutex
}

// NewMaintenanceScheduler creates a scheduler with the standard tasks registered.
func NewMaintenanceScheduler(cacheSvc caching.CacheService, jobRepo repositories.JobRepository) *MaintenanceScheduler {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		log.Fatalf("Failed to create scheduler: %v", err)
	}

	ms := &MaintenanceScheduler{
		scheduler: scheduler,
		cacheSvc:  cacheSvc,
		jobRepo:   jobRepo,
		tasks:     make(map[string]gocron.Job),
	}

	ms.registerTasks()

	return ms
}

// Start starts the scheduler
func (ms *MaintenanceScheduler) Start() error {
	log.Printf("Starting background maintenance scheduler")
	ms.scheduler.Start()
	return nil
}

// Stop stops the scheduler
func (ms *MaintenanceScheduler) Stop() error {
	log.Printf("Stopping background maintenance scheduler")
	return ms.scheduler.Shutdown()
}

func (ms *MaintenanceScheduler) registerTasks() {
	// Listing cache warm - every minute, slightly more than the cache TTL
	// so browsers rarely hit a cold read.
	warmJob, err := ms.scheduler.NewJob(
		gocron.DurationJob(1*time.Minute),
		gocron.NewTask(ms.warmJobListingCache, context.Background()),
		gocron.WithName("job-listing-cache-warm"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		log.Printf("Failed to create listing cache warm job: %v", err)
	} else {
		ms.tasks["listing-cache-warm"] = warmJob
	}

	// Auth artifact sweep - hourly. Refresh tokens, blacklist entries and
	// OAuth state claims all carry Redis TTLs, so this only reports.
	sweepJob, err := ms.scheduler.NewJob(
		gocron.DurationJob(1*time.Hour),
		gocron.NewTask(ms.sweepAuthArtifacts),
		gocron.WithName("auth-artifact-sweep"),
	)
	if err != nil {
		log.Printf("Failed to create auth artifact sweep job: %v", err)
	} else {
		ms.tasks["auth-artifact-sweep"] = sweepJob
	}

	log.Printf("Registered %d background tasks", len(ms.tasks))
}

// warmJobListingCache re-reads the active listing from the database and
// rewrites the cache entry so its TTL restarts.
func (ms *MaintenanceScheduler) warmJobListingCache(ctx context.Context) error {
	jobs, err := ms.jobRepo.ListActive(ctx)
	if err != nil {
		log.Printf("Failed to refresh job listing for cache warm: %v", err)
		return err
	}

	if err := ms.cacheSvc.SetActiveJobs(ctx, jobs, listingCacheTTL); err != nil {
		log.Printf("Failed to warm job listing cache: %v", err)
		return err
	}

	return nil
}

// sweepAuthArtifacts reports on auth bookkeeping. Redis expires the
// underlying keys itself.
func (ms *MaintenanceScheduler) sweepAuthArtifacts() error {
	log.Printf("Auth artifact sweep completed (Redis handles TTL automatically)")
	return nil
}

// AddTask adds a custom task to the scheduler
func (ms *MaintenanceScheduler) AddTask(name string, interval time.Duration, taskFn interface{}, params ...interface{}) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	job, err := ms.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(taskFn, params...),
		gocron.WithName(name),
	)
	if err != nil {
		return err
	}

	ms.tasks[name] = job
	return nil
}

// RemoveTask removes a task from the scheduler
func (ms *MaintenanceScheduler) RemoveTask(name string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	if job, exists := ms.tasks[name]; exists {
		err := ms.scheduler.RemoveJob(job.ID())
		delete(ms.tasks, name)
		return err
	}

	return nil
}

// TaskStatus returns the names of the scheduled tasks.
func (ms *MaintenanceScheduler) TaskStatus() map[string]interface{} {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	names := make([]string, 0, len(ms.tasks))
	for name := range ms.tasks {
		names = append(names, name)
	}

	return map[string]interface{}{
		"total_tasks": len(ms.tasks),
		"tasks":       names,
	}
}
