package store

import (
	"context"
	"encoding/json"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/3dgi/bag-features/internal/model"
	"github.com/3dgi/bag-features/internal/observability"
)

// DocCache keeps feature documents close to the handler. The dataset is
// read-only so entries never go stale; capacity or TTL is the only
// eviction pressure. Implementations are best-effort and must never
// fail a request: a lookup that goes wrong is just a miss.
type DocCache interface {
	MGet(ctx context.Context, ids []model.FeatureID) map[model.FeatureID]json.RawMessage
	Put(ctx context.Context, id model.FeatureID, doc json.RawMessage)
}

// LRUCache is the default in-process DocCache.
type LRUCache struct {
	docs *lru.Cache[model.FeatureID, json.RawMessage]
}

func NewLRUCache(size int) (*LRUCache, error) {
	docs, err := lru.New[model.FeatureID, json.RawMessage](size)
	if err != nil {
		return nil, err
	}
	return &LRUCache{docs: docs}, nil
}

func (c *LRUCache) MGet(_ context.Context, ids []model.FeatureID) map[model.FeatureID]json.RawMessage {
	out := make(map[model.FeatureID]json.RawMessage, len(ids))
	for _, id := range ids {
		if doc, ok := c.docs.Get(id); ok {
			out[id] = doc
		}
	}
	observability.AddDocCacheHits(len(out))
	observability.AddDocCacheMisses(len(ids) - len(out))
	return out
}

func (c *LRUCache) Put(_ context.Context, id model.FeatureID, doc json.RawMessage) {
	c.docs.Add(id, doc)
}
