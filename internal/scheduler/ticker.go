// Package scheduler runs the publish sweep and queue drain in-process on a
// fixed interval, for deployments without an external cron service. The
// jobs themselves are identical to the HTTP-triggered ones; overlapping
// runs are tolerated, not prevented.
package scheduler

import (
	"context"
	"time"

	"github.com/labstack/gommon/log"
)

type Job struct {
	Name string
	Run  func(ctx context.Context, now time.Time) error
}

type Ticker struct {
	interval time.Duration
	jobs     []Job
	stop     chan struct{}
}

func New(interval time.Duration, jobs ...Job) *Ticker {
	return &Ticker{interval: interval, jobs: jobs}
}

// Start begins ticking; the first pass runs immediately. Returns a stop
// function safe to call once.
func (t *Ticker) Start() func() {
	t.stop = make(chan struct{})

	go func() {
		ticker := time.NewTicker(t.interval)
		defer ticker.Stop()

		t.runAll(time.Now())
		for {
			select {
			case now := <-ticker.C:
				t.runAll(now)
			case <-t.stop:
				return
			}
		}
	}()

	return func() {
		close(t.stop)
		log.Info("scheduler: stopped")
	}
}

func (t *Ticker) runAll(now time.Time) {
	for _, job := range t.jobs {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		if err := job.Run(ctx, now); err != nil {
			log.Errorf("scheduler: %s: %v", job.Name, err)
		}
		cancel()
	}
}
