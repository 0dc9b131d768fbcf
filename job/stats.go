package job

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/silinternational/claimflow/api"
	"github.com/silinternational/claimflow/log"
)

const refreshStatsMaxRetries = 3

// Stats is a snapshot of the number of records per status
type Stats struct {
	Counts      map[api.ClaimStatus]int
	Total       int
	RefreshedAt time.Time
}

// StatsCache holds the latest Stats. It is safe for concurrent use.
type StatsCache struct {
	mu    sync.RWMutex
	stats Stats
}

// Cache is refreshed by the RefreshStats job
var Cache = &StatsCache{}

// Set replaces the cached stats. The most recent read always wins.
func (c *StatsCache) Set(s Stats) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stats = s
}

// Get returns a copy of the cached stats
func (c *StatsCache) Get() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := c.stats
	out.Counts = make(map[api.ClaimStatus]int, len(c.stats.Counts))
	for k, v := range c.stats.Counts {
		out.Counts[k] = v
	}
	return out
}

// refreshStatsHandler counts the records by status and stores the result in Cache, retrying with
// exponential backoff when the repository fails
func refreshStatsHandler(ctx context.Context, _ Args) error {
	if service == nil {
		return errors.New("job package is not initialized")
	}

	var counts map[api.ClaimStatus]int
	op := func() error {
		var err error
		counts, err = service.CountByStatus(ctx)
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return backoff.Permanent(err)
		}
		return err
	}

	b := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), refreshStatsMaxRetries), ctx)
	notify := func(err error, wait time.Duration) {
		log.Warningf("refreshing stats failed, retrying in %s: %s", wait, err)
	}
	if err := backoff.RetryNotify(op, b, notify); err != nil {
		return err
	}

	total := 0
	for _, n := range counts {
		total += n
	}
	Cache.Set(Stats{Counts: counts, Total: total, RefreshedAt: time.Now().UTC()})
	return nil
}
