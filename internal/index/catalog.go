package index

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/3dgi/bag-features/internal/model"
)

// CatalogEntry is one feature in the on-disk catalog: its id, the tile
// it is stored in, and its footprint bounds in storage CRS.
type CatalogEntry struct {
	ID   model.FeatureID `json:"identificatie"`
	Tile string          `json:"tile_id"`
	BBox [4]float64      `json:"bbox"`
}

// LoadCatalog reads a feature catalog from a JSON array file.
func LoadCatalog(path string) ([]CatalogEntry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	var entries []CatalogEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", path, err)
	}
	return entries, nil
}
