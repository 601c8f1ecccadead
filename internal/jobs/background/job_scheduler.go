package background

import (
	"context"
	"log"
	"sync"
	"time"

	"galleria/internal/caching"
	"galleria/internal/services"

	"github.com/go-co-op/gocron/v2"
)

// JobScheduler manages the recurring maintenance jobs
type JobScheduler struct {
	scheduler   gocron.Scheduler
	authService services.AuthService
	cacheSvc    caching.CacheService
	jobs        map[string]gocron.Job
	mu          sync.RWMutex
}

// NewJobScheduler creates a new job scheduler
func NewJobScheduler(authService services.AuthService, cacheSvc caching.CacheService) *JobScheduler {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		log.Fatalf("Failed to create scheduler: %v", err)
	}

	js := &JobScheduler{
		scheduler:   scheduler,
		authService: authService,
		cacheSvc:    cacheSvc,
		jobs:        make(map[string]gocron.Job),
	}

	js.registerJobs()

	return js
}

// Start starts the job scheduler
func (js *JobScheduler) Start() error {
	log.Printf("Starting background job scheduler")
	js.scheduler.Start()
	return nil
}

// Stop stops the job scheduler
func (js *JobScheduler) Stop() error {
	log.Printf("Stopping background job scheduler")
	return js.scheduler.Shutdown()
}

// registerJobs registers all background jobs
func (js *JobScheduler) registerJobs() {
	// Expired password reset codes - weekly purge
	resetJob, err := js.scheduler.NewJob(
		gocron.DurationJob(7*24*time.Hour),
		gocron.NewTask(js.purgeExpiredResets),
		gocron.WithName("password-reset-purge"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		log.Printf("Failed to create reset purge job: %v", err)
	} else {
		js.jobs["reset-purge"] = resetJob
	}

	// Cache sweep - every hour
	cacheJob, err := js.scheduler.NewJob(
		gocron.DurationJob(1*time.Hour),
		gocron.NewTask(js.sweepCache),
		gocron.WithName("cache-sweep"),
	)
	if err != nil {
		log.Printf("Failed to create cache sweep job: %v", err)
	} else {
		js.jobs["cache-sweep"] = cacheJob
	}

	log.Printf("Registered %d background jobs", len(js.jobs))
}

func (js *JobScheduler) purgeExpiredResets() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	removed, err := js.authService.CleanupExpiredResets(ctx)
	if err != nil {
		log.Printf("Password reset purge failed: %v", err)
		return
	}
	log.Printf("Password reset purge removed %d expired codes", removed)
}

func (js *JobScheduler) sweepCache() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if err := js.cacheSvc.InvalidateAllCache(ctx); err != nil {
		log.Printf("Cache sweep failed: %v", err)
		return
	}
	log.Printf("Cache sweep completed")
}
