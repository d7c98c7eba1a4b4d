package index

import (
	"context"
	"fmt"
	"sort"

	"github.com/dhconnelly/rtreego"

	"github.com/3dgi/bag-features/internal/model"
)

// R-tree node fan-out; reasonable for catalogs up to a few million
// footprints.
const (
	rtreeMin = 25
	rtreeMax = 50
)

// rtreego rejects zero-extent rectangles, so degenerate footprints get
// a hair of width.
const epsilon = 1e-9

type indexedFeature struct {
	id   model.FeatureID
	rect rtreego.Rect
}

func (f *indexedFeature) Bounds() rtreego.Rect { return f.rect }

// MemStore is an in-memory SpatialStore over a feature catalog, backed
// by an R-tree. It also knows the tile each feature belongs to.
type MemStore struct {
	tree    *rtreego.Rtree
	catalog []model.FeatureID
	tiles   map[model.FeatureID]string
}

func NewMemStore(entries []CatalogEntry) (*MemStore, error) {
	s := &MemStore{
		tree:    rtreego.NewTree(2, rtreeMin, rtreeMax),
		catalog: make([]model.FeatureID, 0, len(entries)),
		tiles:   make(map[model.FeatureID]string, len(entries)),
	}
	for _, e := range entries {
		rect, err := rectFor(e.BBox[0], e.BBox[1], e.BBox[2], e.BBox[3])
		if err != nil {
			return nil, fmt.Errorf("catalog entry %s: %w", e.ID, err)
		}
		s.tree.Insert(&indexedFeature{id: e.ID, rect: rect})
		s.catalog = append(s.catalog, e.ID)
		s.tiles[e.ID] = e.Tile
	}
	return s, nil
}

func (s *MemStore) QueryBBox(_ context.Context, b model.BBox) ([]model.FeatureID, error) {
	// SearchIntersect treats rectangles that only share an edge as
	// disjoint. The query box is padded by epsilon on every side so
	// edge-touching footprints stay inside, keeping all four edges
	// inclusive.
	rect, err := rtreego.NewRect(
		rtreego.Point{b.MinX - epsilon, b.MinY - epsilon},
		[]float64{(b.MaxX - b.MinX) + 2*epsilon, (b.MaxY - b.MinY) + 2*epsilon},
	)
	if err != nil {
		return nil, fmt.Errorf("query bbox: %w", err)
	}
	matches := s.tree.SearchIntersect(rect)
	out := make([]model.FeatureID, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.(*indexedFeature).id)
	}
	// The R-tree returns matches in traversal order; sort for the
	// stable order pagination depends on.
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

func (s *MemStore) ListAll(_ context.Context) ([]model.FeatureID, error) {
	out := make([]model.FeatureID, len(s.catalog))
	copy(out, s.catalog)
	return out, nil
}

// TileOf returns the tile holding the feature, looked up by parent id.
func (s *MemStore) TileOf(id model.FeatureID) (string, bool) {
	tile, ok := s.tiles[id.Parent()]
	return tile, ok
}

func rectFor(minX, minY, maxX, maxY float64) (rtreego.Rect, error) {
	w := maxX - minX
	h := maxY - minY
	if w < epsilon {
		w = epsilon
	}
	if h < epsilon {
		h = epsilon
	}
	return rtreego.NewRect(rtreego.Point{minX, minY}, []float64{w, h})
}
