package collector

import (
	"context"
	"sync"
	"time"

	"github.com/amishk599/jobtrend/internal/model"
)

// DefaultCacheTTL is how long an aggregate is served before re-collecting.
const DefaultCacheTTL = time.Hour

// DefaultRunTimeout bounds one collection started by Get.
const DefaultRunTimeout = 10 * time.Minute

// Runner produces an aggregate. *Coordinator implements it.
type Runner interface {
	RunAll(ctx context.Context) []model.JobRecord
}

// Result is a cached aggregate plus its freshness state.
type Result struct {
	Records     []model.JobRecord
	CollectedAt time.Time // when Records were collected, zero if never
	Hit         bool      // served from cache without running
	Stale       bool      // the latest run came back empty or was cut short; Records are older
}

// Cached memoizes a Runner's aggregate for a fixed window. Concurrent callers
// share one run. When a run yields nothing the previous aggregate keeps being
// served, marked stale.
type Cached struct {
	runner     Runner
	ttl        time.Duration
	runTimeout time.Duration
	now        func() time.Time

	// runMu serializes collections; mu guards the cached state only, so Peek
	// never waits on a run in progress.
	runMu sync.Mutex

	mu          sync.Mutex
	records     []model.JobRecord
	collectedAt time.Time
	checkedAt   time.Time
	stale       bool
}

// NewCached wraps runner with a ttl memo. A non-positive ttl uses DefaultCacheTTL.
func NewCached(runner Runner, ttl time.Duration) *Cached {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Cached{runner: runner, ttl: ttl, runTimeout: DefaultRunTimeout, now: time.Now}
}

// Seed primes the cache, e.g. from a snapshot read at startup. Seeded data
// counts as collected at collectedAt but never suppresses the first run.
func (c *Cached) Seed(records []model.JobRecord, collectedAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = records
	c.collectedAt = collectedAt
}

// Get returns the cached aggregate, re-running the collection when the window
// has passed. The run is detached from ctx so a caller that goes away cannot
// truncate the aggregate every other caller will be served; a run that hits
// the run timeout is not memoized.
func (c *Cached) Get(ctx context.Context) Result {
	if res, ok := c.fresh(); ok {
		return res
	}

	c.runMu.Lock()
	defer c.runMu.Unlock()

	// Another caller may have refreshed while we waited.
	if res, ok := c.fresh(); ok {
		return res
	}

	runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.runTimeout)
	defer cancel()
	records := c.runner.RunAll(runCtx)
	interrupted := runCtx.Err() != nil

	c.mu.Lock()
	defer c.mu.Unlock()

	if interrupted {
		if len(c.records) == 0 {
			return resultOf(records, time.Time{}, false, false)
		}
		return resultOf(c.records, c.collectedAt, false, true)
	}

	c.checkedAt = c.now()
	if len(records) == 0 && len(c.records) > 0 {
		c.stale = true
		return c.result(false)
	}
	c.records = records
	c.collectedAt = c.checkedAt
	c.stale = false
	return c.result(false)
}

func (c *Cached) fresh() (Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.checkedAt.IsZero() && c.now().Sub(c.checkedAt) < c.ttl {
		return c.result(true), true
	}
	return Result{}, false
}

// Peek returns whatever is cached without ever running the collection.
func (c *Cached) Peek() Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.result(true)
}

// Invalidate forces the next Get to re-collect.
func (c *Cached) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checkedAt = time.Time{}
}

func (c *Cached) result(hit bool) Result {
	return resultOf(c.records, c.collectedAt, hit, c.stale)
}

func resultOf(records []model.JobRecord, collectedAt time.Time, hit, stale bool) Result {
	out := make([]model.JobRecord, len(records))
	copy(out, records)
	return Result{
		Records:     out,
		CollectedAt: collectedAt,
		Hit:         hit,
		Stale:       stale,
	}
}
