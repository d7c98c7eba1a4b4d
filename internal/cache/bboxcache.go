// Package cache implements the single-slot memoization of BBOX query
// results that sits in front of the spatial feature index.
//
// The slot holds the result of the most recent spatial query, keyed by
// the bounding box quantized to three decimal places. Paginating the
// same window, the overwhelmingly common access pattern, then never
// touches the spatial store again. This is intentionally not a general
// cache: capacity is exactly one entry, evicted unconditionally on
// every miss.
package cache

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/3dgi/bag-features/internal/index"
	"github.com/3dgi/bag-features/internal/model"
	"github.com/3dgi/bag-features/internal/observability"
)

type BBoxCache struct {
	store   index.SpatialStore
	log     *slog.Logger
	timeout time.Duration

	// Collapses concurrent identical queries into one store call.
	group singleflight.Group

	// Key and value are only ever swapped together under mu, so a
	// reader can never observe a value belonging to another key.
	mu     sync.Mutex
	key    string
	ids    []model.FeatureID
	filled bool
}

// New builds a cache over store. timeout bounds each spatial query
// independently of the request context; zero disables the bound.
func New(store index.SpatialStore, timeout time.Duration, log *slog.Logger) *BBoxCache {
	return &BBoxCache{store: store, timeout: timeout, log: log}
}

// Quantize formats every coordinate to exactly three decimal places.
// Boxes that differ only beyond the third decimal share a key.
func Quantize(b model.BBox) string {
	return fmt.Sprintf("%.3f,%.3f,%.3f,%.3f", b.MinX, b.MinY, b.MaxX, b.MaxY)
}

// Get returns the feature ids intersecting b, from the slot when the
// quantized key matches, from the spatial store otherwise. The returned
// slice is shared and must be treated as immutable.
func (c *BBoxCache) Get(ctx context.Context, b model.BBox) ([]model.FeatureID, error) {
	key := Quantize(b)

	c.mu.Lock()
	if c.filled && c.key == key {
		ids := c.ids
		c.mu.Unlock()
		observability.IncBBoxCacheHit()
		return ids, nil
	}
	c.mu.Unlock()

	// The miss is counted inside the flight so that it tracks actual
	// spatial queries; waiters sharing the flight count as hits.
	executed := false
	v, err, shared := c.group.Do(key, func() (any, error) {
		executed = true
		observability.IncBBoxCacheMiss()
		// The query runs detached from the request context: a client
		// that disconnects mid-flight must not fail the other waiters,
		// nor commit a torn entry afterwards.
		qctx := context.WithoutCancel(ctx)
		if c.timeout > 0 {
			var cancel context.CancelFunc
			qctx, cancel = context.WithTimeout(qctx, c.timeout)
			defer cancel()
		}
		ids, err := c.store.QueryBBox(qctx, b)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.key, c.ids, c.filled = key, ids, true
		c.mu.Unlock()
		return ids, nil
	})
	if err != nil {
		return nil, fmt.Errorf("bbox query %s: %w", key, err)
	}
	if !executed {
		observability.IncBBoxCacheHit()
	}
	if shared {
		c.log.Debug("bbox query shared between concurrent requests", "key", key)
	}
	return v.([]model.FeatureID), nil
}

// Clear resets the slot to the uninitialized state.
func (c *BBoxCache) Clear() {
	c.mu.Lock()
	c.key, c.ids, c.filled = "", nil, false
	c.mu.Unlock()
}
