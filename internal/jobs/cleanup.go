package jobs

import (
	"log"
	"time"

	"github.com/lexlink/lexlink-backend/internal/storage"
)

// CleanupJob runs periodic maintenance: expired guest sessions are
// dropped so abandoned anonymous counters do not accumulate.
type CleanupJob struct {
	store     storage.Store
	interval  time.Duration
	isRunning bool
	stop      chan struct{}
}

// NewCleanupJob creates a new cleanup job scheduler
func NewCleanupJob(store storage.Store) *CleanupJob {
	return &CleanupJob{
		store:    store,
		interval: time.Hour,
	}
}

// Start begins the cleanup loop. A stopped job can be started again.
func (j *CleanupJob) Start() {
	if j.isRunning {
		log.Println("Cleanup job already running")
		return
	}

	j.isRunning = true
	j.stop = make(chan struct{})
	log.Println("Starting cleanup job...")
	go j.run(j.stop)
}

// Stop halts the cleanup loop
func (j *CleanupJob) Stop() {
	if !j.isRunning {
		return
	}
	j.isRunning = false
	close(j.stop)
	log.Println("Stopping cleanup job...")
}

func (j *CleanupJob) run(stop chan struct{}) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			j.sweep()
		case <-stop:
			return
		}
	}
}

func (j *CleanupJob) sweep() {
	removed, err := j.store.DeleteExpiredGuestSessions()
	if err != nil {
		log.Printf("Error cleaning up guest sessions: %v", err)
		return
	}
	if removed > 0 {
		log.Printf("Cleaned up %d expired guest sessions", removed)
	}
}
