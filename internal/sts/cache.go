package sts

import (
	"context"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rotisserie/eris"

	"github.com/sells-group/sts-risk-cli/internal/model"
	"github.com/sells-group/sts-risk-cli/internal/record"
)

// CachedAdapter answers repeated records from memory. Records are keyed by
// their wire fingerprint, so two patients with identical inputs share one
// calculator call. Failures are never cached.
type CachedAdapter struct {
	next   Adapter
	cache  *lru.Cache[string, model.Reply]
	hits   atomic.Int64
	misses atomic.Int64
}

// NewCachedAdapter wraps next with an LRU cache holding size replies.
func NewCachedAdapter(next Adapter, size int) (*CachedAdapter, error) {
	c, err := lru.New[string, model.Reply](size)
	if err != nil {
		return nil, eris.Wrap(err, "sts: create reply cache")
	}
	return &CachedAdapter{next: next, cache: c}, nil
}

// Name implements Adapter.
func (c *CachedAdapter) Name() string { return c.next.Name() }

// Send implements Adapter.
func (c *CachedAdapter) Send(ctx context.Context, rec *record.Canonical) (model.Reply, error) {
	key := rec.Fingerprint()
	if reply, ok := c.cache.Get(key); ok {
		c.hits.Add(1)
		return reply, nil
	}
	c.misses.Add(1)

	reply, err := c.next.Send(ctx, rec)
	if err != nil {
		return model.Reply{}, err
	}
	c.cache.Add(key, reply)
	return reply, nil
}

// Stats returns cache hits and misses so far.
func (c *CachedAdapter) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}
