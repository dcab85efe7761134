package breathing

import (
	"sync"
	"time"

	"github.com/zjrosen/breathe/internal/log"
)

// Handle is the single outstanding scheduled tick owned by a Controller.
type Handle interface {
	// Cancel stops future ticks. It is safe to call more than once.
	Cancel()
}

// Scheduler delivers repeating ticks to the controller.
type Scheduler interface {
	// Every invokes fn once per interval until the returned Handle is canceled.
	// A tick that is already executing when Cancel is called may still run.
	Every(interval time.Duration, fn func()) Handle
}

// TickerScheduler schedules ticks on a time.Ticker in its own goroutine.
type TickerScheduler struct{}

// Every implements Scheduler.
func (TickerScheduler) Every(interval time.Duration, fn func()) Handle {
	h := &tickerHandle{stop: make(chan struct{})}
	ticker := time.NewTicker(interval)

	log.SafeGo("breathing.ticker", func() {
		defer ticker.Stop()
		for {
			select {
			case <-h.stop:
				return
			case <-ticker.C:
				fn()
			}
		}
	})
	return h
}

type tickerHandle struct {
	once sync.Once
	stop chan struct{}
}

func (h *tickerHandle) Cancel() {
	h.once.Do(func() { close(h.stop) })
}
