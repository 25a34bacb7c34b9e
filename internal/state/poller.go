package state

import (
	"context"
	"sync"
	"time"

	"github.com/prohmpiriya/glownatura-admin/pkg/logger"
	"go.uber.org/zap"
)

// DefaultPollInterval is how often the pending reviews badge refreshes
const DefaultPollInterval = 60 * time.Second

// CountFunc fetches a counter, such as Reviews.PendingCount
type CountFunc func(ctx context.Context) (int, error)

// Poller keeps a counter fresh in the background. A failed refresh reads as
// zero and is never reported to the user.
type Poller struct {
	fetch    CountFunc
	interval time.Duration
	log      *logger.Logger
	subs     subscribers[int]

	mu      sync.Mutex
	count   int
	loading bool
}

func NewPoller(fetch CountFunc, interval time.Duration, log *logger.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Poller{fetch: fetch, interval: interval, log: log.Named("poller"), loading: true}
}

// Run refreshes immediately and then on every tick until ctx is done
func (p *Poller) Run(ctx context.Context) {
	p.Refresh(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.Refresh(ctx)
		}
	}
}

// Refresh fetches the counter once and returns the stored value
func (p *Poller) Refresh(ctx context.Context) int {
	n, err := p.fetch(ctx)
	if err != nil {
		p.log.Debug("poll failed", zap.Error(err))
		n = 0
	}

	p.mu.Lock()
	p.count = n
	p.loading = false
	p.mu.Unlock()

	p.subs.publish(n)
	return n
}

// Count returns the last fetched value
func (p *Poller) Count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.count
}

// Loading reports whether the first refresh is still outstanding
func (p *Poller) Loading() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loading
}

func (p *Poller) Subscribe(fn func(int)) func() {
	return p.subs.add(fn)
}
