package store

import (
	"context"
	"encoding/json"

	"github.com/3dgi/bag-features/internal/model"
)

// Cached composes a FeatureStore with a DocCache. Reads go to the cache
// first; anything the cache does not have comes from the inner store
// and is written back.
type Cached struct {
	inner FeatureStore
	docs  DocCache
}

func NewCached(inner FeatureStore, docs DocCache) *Cached {
	return &Cached{inner: inner, docs: docs}
}

func (s *Cached) GetDocument(ctx context.Context, id model.FeatureID) (json.RawMessage, error) {
	if hit := s.docs.MGet(ctx, []model.FeatureID{id}); len(hit) == 1 {
		return hit[id], nil
	}
	doc, err := s.inner.GetDocument(ctx, id)
	if err != nil {
		return nil, err
	}
	s.docs.Put(ctx, id, doc)
	return doc, nil
}

func (s *Cached) GetDocuments(ctx context.Context, ids []model.FeatureID) ([]json.RawMessage, []model.FeatureID, error) {
	if len(ids) == 0 {
		return nil, nil, nil
	}
	cached := s.docs.MGet(ctx, ids)
	// A degraded cache may answer a miss as a nil map; fetched docs
	// still get merged into it below.
	if cached == nil {
		cached = make(map[model.FeatureID]json.RawMessage, len(ids))
	}

	var wanted []model.FeatureID
	for _, id := range ids {
		if _, ok := cached[id]; !ok {
			wanted = append(wanted, id)
		}
	}

	missSet := make(map[model.FeatureID]bool)
	if len(wanted) > 0 {
		fetched, missing, err := s.inner.GetDocuments(ctx, wanted)
		if err != nil {
			return nil, nil, err
		}
		for _, id := range missing {
			missSet[id] = true
		}
		i := 0
		for _, id := range wanted {
			if missSet[id] {
				continue
			}
			cached[id] = fetched[i]
			s.docs.Put(ctx, id, fetched[i])
			i++
		}
	}

	docs := make([]json.RawMessage, 0, len(ids))
	var missing []model.FeatureID
	for _, id := range ids {
		if missSet[id] {
			missing = append(missing, id)
			continue
		}
		docs = append(docs, cached[id])
	}
	return docs, missing, nil
}

func (s *Cached) Metadata(ctx context.Context) (json.RawMessage, error) {
	return s.inner.Metadata(ctx)
}
