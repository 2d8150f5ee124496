// Package dashboard keeps the dashboard counters and drifts them while live.
package dashboard

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/phisnet/backend/internal/logger"
	"github.com/phisnet/backend/internal/models"
	"github.com/rs/zerolog"
)

const DefaultRefreshInterval = 5 * time.Second

// Live holds the dashboard snapshot. It has no background activity until Start.
type Live struct {
	mu       sync.Mutex
	snapshot models.DashboardSnapshot
	live     bool
	rng      *rand.Rand // guarded by mu

	interval time.Duration
	cancel   context.CancelFunc
	done     chan struct{}

	log zerolog.Logger
}

// NewLive starts from baseline. A zero interval means DefaultRefreshInterval
// and a zero seed seeds from the clock.
func NewLive(baseline models.DashboardSnapshot, interval time.Duration, seed int64, live bool) *Live {
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Live{
		snapshot: baseline.Clone(),
		live:     live,
		rng:      rand.New(rand.NewSource(seed)),
		interval: interval,
		log:      logger.Component("dashboard"),
	}
}

// Start runs the refresh loop until ctx is done or Stop is called.
// Calling Start on a running dashboard does nothing.
func (l *Live) Start(ctx context.Context) {
	l.mu.Lock()
	if l.cancel != nil {
		l.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	l.cancel = cancel
	l.done = done
	l.mu.Unlock()

	go func() {
		defer close(done)
		ticker := time.NewTicker(l.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				l.Refresh()
			}
		}
	}()
	l.log.Info().Dur("interval", l.interval).Msg("dashboard refresh started")
}

// Stop ends the refresh loop and waits for it to exit.
func (l *Live) Stop() {
	l.mu.Lock()
	cancel, done := l.cancel, l.done
	l.cancel, l.done = nil, nil
	l.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	l.log.Info().Msg("dashboard refresh stopped")
}

// SetLive pauses or resumes the drift without stopping the loop.
func (l *Live) SetLive(live bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.live = live
}

// Refresh applies one drift step if live: total grows by 0..2 and
// processedToday by 0..9.
func (l *Live) Refresh() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.live {
		return
	}
	l.snapshot.Threats.Total += l.rng.Intn(3)
	l.snapshot.SystemStats.ProcessedToday += l.rng.Intn(10)
}

// Snapshot returns a copy of the current dashboard.
func (l *Live) Snapshot() models.DashboardSnapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	snap := l.snapshot.Clone()
	snap.Live = l.live
	return snap
}
