// Package store loads CityJSON feature documents for the features the
// spatial index selected. The primary implementation reads from the
// cjdb schema in PostgreSQL; a cache layer can be put in front for the
// hot single-feature lookups of a read-only dataset.
package store

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/3dgi/bag-features/internal/model"
)

// ErrNotFound signals that the feature store holds no document for the
// requested id.
var ErrNotFound = errors.New("feature not found")

type FeatureStore interface {
	// GetDocument returns the CityJSON feature document for id, or
	// ErrNotFound.
	GetDocument(ctx context.Context, id model.FeatureID) (json.RawMessage, error)

	// GetDocuments returns the documents for ids in the same order as
	// requested. Ids absent from the store are returned separately;
	// their absence does not fail the batch.
	GetDocuments(ctx context.Context, ids []model.FeatureID) ([]json.RawMessage, []model.FeatureID, error)

	// Metadata returns the dataset-level CityJSON metadata object.
	Metadata(ctx context.Context) (json.RawMessage, error)
}
