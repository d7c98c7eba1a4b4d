// Package index provides the spatial feature index: given a bounding
// box in storage CRS it returns the ordered set of feature identifiers
// whose footprint intersects the box. Two implementations exist, a
// PostGIS-backed store for full deployments and an in-memory R-tree for
// small datasets and tests. Both return ids in a stable, deterministic
// order so that repeated pagination of the same window never reshuffles.
package index

import (
	"context"

	"github.com/3dgi/bag-features/internal/model"
)

type SpatialStore interface {
	// QueryBBox returns the ids of all features intersecting b,
	// inclusive on all four edges. b must be in storage CRS.
	QueryBBox(ctx context.Context, b model.BBox) ([]model.FeatureID, error)

	// ListAll returns the full feature catalog in canonical order.
	ListAll(ctx context.Context) ([]model.FeatureID, error)
}
