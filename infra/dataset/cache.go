package dataset

import (
	"context"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/kilianp07/ctr/core/dataset"
	"github.com/kilianp07/ctr/core/events"
	"github.com/kilianp07/ctr/core/model"
	"github.com/kilianp07/ctr/infra/logger"
	"github.com/kilianp07/ctr/internal/eventbus"
)

const tableKey = "table"

// CachedSource keeps the last loaded table for a TTL so that a refreshed
// file is picked up without reloading on every request. Failed loads are
// not cached.
type CachedSource struct {
	src   dataset.Source
	cache *cache.Cache
	bus   eventbus.EventBus
	log   logger.Logger
	mu    sync.Mutex
}

// NewCachedSource wraps src. A non-positive ttl caches forever. bus may be nil.
func NewCachedSource(src dataset.Source, ttl time.Duration, bus eventbus.EventBus) *CachedSource {
	exp := ttl
	cleanup := 2 * ttl
	if ttl <= 0 {
		exp = cache.NoExpiration
		cleanup = 0
	}
	return &CachedSource{
		src:   src,
		cache: cache.New(exp, cleanup),
		bus:   bus,
		log:   logger.New("dataset"),
	}
}

// SetLogger replaces the default logger.
func (c *CachedSource) SetLogger(l logger.Logger) {
	if l != nil {
		c.log = l
	}
}

func (c *CachedSource) Name() string { return c.src.Name() }

// Load returns the cached table or loads a fresh one. Concurrent callers
// share a single load.
func (c *CachedSource) Load(ctx context.Context) (*model.Table, error) {
	if t, ok := c.cached(); ok {
		return t, nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if t, ok := c.cached(); ok {
		return t, nil
	}
	start := time.Now()
	t, err := c.src.Load(ctx)
	ev := events.DatasetEvent{Source: c.src.Name(), Duration: time.Since(start), Err: err}
	if err != nil {
		c.log.Errorf("load %s: %v", c.src.Name(), err)
		c.publish(ev)
		return nil, err
	}
	ev.Records = t.Len()
	ev.Issues = len(t.Issues())
	c.log.Infof("loaded %d records from %s (%d cycles, %d issues)", t.Len(), c.src.Name(), len(t.Cycles()), ev.Issues)
	c.cache.SetDefault(tableKey, t)
	c.publish(ev)
	return t, nil
}

// Invalidate drops the cached table.
func (c *CachedSource) Invalidate() { c.cache.Delete(tableKey) }

func (c *CachedSource) cached() (*model.Table, bool) {
	v, ok := c.cache.Get(tableKey)
	if !ok {
		return nil, false
	}
	t, ok := v.(*model.Table)
	return t, ok
}

func (c *CachedSource) publish(ev events.DatasetEvent) {
	if c.bus != nil {
		c.bus.Publish(ev)
	}
}
