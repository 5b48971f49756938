package cronjobs

import (
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

// Scheduler runs named recurring jobs on a single cron instance.
// Panicking jobs are recovered and a job still running when its next run is due is skipped.
type Scheduler struct {
	c       *cron.Cron
	mu      sync.Mutex
	entries map[string]cron.EntryID
}

func NewScheduler() *Scheduler {
	logger := cron.PrintfLogger(log.StandardLogger())
	return &Scheduler{
		c: cron.New(
			cron.WithLogger(logger),
			cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
		),
		entries: make(map[string]cron.EntryID),
	}
}

// Every runs fn every interval. cron works at a one second resolution, so interval
// must be a whole number of seconds.
func (s *Scheduler) Every(name string, interval time.Duration, fn func()) error {
	if interval < time.Second {
		return fmt.Errorf("job %s: interval %s is below one second", name, interval)
	}
	if interval%time.Second != 0 {
		return fmt.Errorf("job %s: interval %s is not a whole number of seconds", name, interval)
	}
	return s.add(name, "@every "+interval.String(), fn)
}

// Cron runs fn on a cron spec such as "*/10 * * * *" or "@every 1m".
func (s *Scheduler) Cron(name, spec string, fn func()) error {
	return s.add(name, spec, fn)
}

func (s *Scheduler) add(name, spec string, fn func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[name]; ok {
		return fmt.Errorf("job %s is already scheduled", name)
	}

	id, err := s.c.AddFunc(spec, fn)
	if err != nil {
		return fmt.Errorf("scheduling job %s (%s): %w", name, spec, err)
	}
	s.entries[name] = id
	log.WithFields(log.Fields{"job": name, "spec": spec}).Debug("Job scheduled")
	return nil
}

// Cancel removes the job name. Unknown names are ignored.
func (s *Scheduler) Cancel(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.entries[name]
	if !ok {
		return
	}
	s.c.Remove(id)
	delete(s.entries, name)
	log.WithField("job", name).Debug("Job cancelled")
}

// Scheduled reports whether name is currently scheduled.
func (s *Scheduler) Scheduled(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.entries[name]
	return ok
}

// Len is the number of scheduled jobs.
func (s *Scheduler) Len() int {
	return len(s.c.Entries())
}

func (s *Scheduler) Start() {
	log.Info("Starting cron jobs")
	s.c.Start()
}

// Stop stops the scheduler and waits for running jobs to return.
func (s *Scheduler) Stop() {
	<-s.c.Stop().Done()
}
