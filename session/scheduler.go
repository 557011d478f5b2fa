package session

import (
	"sync"
	"time"
)

// CancelFunc stops a scheduled job. Safe to call more than once.
type CancelFunc func()

// Scheduler abstracts wall-clock time and periodic callbacks so the burn
// choreography can run on real tickers in production and on synthetic time
// in tests. Implementations must pass the tick's own time to fn, not the
// time fn happens to run, so progress computed from deltas stays exact.
type Scheduler interface {
	Now() time.Time
	// Every invokes fn once per interval until the returned CancelFunc runs.
	Every(interval time.Duration, fn func(now time.Time)) CancelFunc
}

// NewScheduler returns the production Scheduler backed by time.Ticker.
func NewScheduler() Scheduler {
	return tickerScheduler{}
}

type tickerScheduler struct{}

func (tickerScheduler) Now() time.Time {
	return time.Now()
}

func (tickerScheduler) Every(interval time.Duration, fn func(now time.Time)) CancelFunc {
	t := time.NewTicker(interval)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case now := <-t.C:
				fn(now)
			case <-done:
				return
			}
		}
	}()
	var once sync.Once
	return func() {
		once.Do(func() {
			t.Stop()
			close(done)
		})
	}
}
