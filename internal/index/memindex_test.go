package index

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/3dgi/bag-features/internal/model"
)

func testEntries() []CatalogEntry {
	return []CatalogEntry{
		{ID: "NL.IMBAG.Pand.3", Tile: "t2", BBox: [4]float64{200, 200, 210, 210}},
		{ID: "NL.IMBAG.Pand.1", Tile: "t1", BBox: [4]float64{0, 0, 10, 10}},
		{ID: "NL.IMBAG.Pand.2", Tile: "t1", BBox: [4]float64{5, 5, 15, 15}},
	}
}

func TestMemStoreQueryBBox(t *testing.T) {
	s, err := NewMemStore(testEntries())
	if err != nil {
		t.Fatal(err)
	}

	got, err := s.QueryBBox(context.Background(), model.BBox{MinX: 4, MinY: 4, MaxX: 6, MaxY: 6})
	if err != nil {
		t.Fatal(err)
	}
	want := []model.FeatureID{"NL.IMBAG.Pand.1", "NL.IMBAG.Pand.2"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v (sorted)", got, want)
		}
	}
}

func TestMemStoreQueryBBoxEdgeTouch(t *testing.T) {
	s, err := NewMemStore(testEntries())
	if err != nil {
		t.Fatal(err)
	}

	cases := []struct {
		name string
		box  model.BBox
	}{
		// Box sharing only the corner point (10,10) with feature 1.
		{"corner touch", model.BBox{MinX: 10, MinY: 10, MaxX: 12, MaxY: 12}},
		// Box whose right edge coincides with feature 1's left edge.
		{"edge touch", model.BBox{MinX: -5, MinY: 2, MaxX: 0, MaxY: 8}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := s.QueryBBox(context.Background(), tc.box)
			if err != nil {
				t.Fatal(err)
			}
			found := false
			for _, id := range got {
				if id == "NL.IMBAG.Pand.1" {
					found = true
				}
			}
			if !found {
				t.Fatalf("edge-touching feature not returned: %v", got)
			}
		})
	}
}

func TestMemStoreQueryBBoxNoMatch(t *testing.T) {
	s, err := NewMemStore(testEntries())
	if err != nil {
		t.Fatal(err)
	}
	got, err := s.QueryBBox(context.Background(), model.BBox{MinX: 1000, MinY: 1000, MaxX: 1001, MaxY: 1001})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no matches, got %v", got)
	}
}

func TestMemStoreDegenerateFootprint(t *testing.T) {
	entries := []CatalogEntry{
		{ID: "point", Tile: "t", BBox: [4]float64{50, 50, 50, 50}},
	}
	s, err := NewMemStore(entries)
	if err != nil {
		t.Fatal(err)
	}
	got, err := s.QueryBBox(context.Background(), model.BBox{MinX: 49, MinY: 49, MaxX: 51, MaxY: 51})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0] != "point" {
		t.Fatalf("got %v, want [point]", got)
	}
}

func TestMemStoreListAllKeepsCatalogOrder(t *testing.T) {
	s, err := NewMemStore(testEntries())
	if err != nil {
		t.Fatal(err)
	}
	got, err := s.ListAll(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	want := []model.FeatureID{"NL.IMBAG.Pand.3", "NL.IMBAG.Pand.1", "NL.IMBAG.Pand.2"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}

	// The returned slice is a copy; callers cannot corrupt the catalog.
	got[0] = "mutated"
	again, _ := s.ListAll(context.Background())
	if again[0] != "NL.IMBAG.Pand.3" {
		t.Fatal("ListAll result aliases internal state")
	}
}

func TestMemStoreTileOf(t *testing.T) {
	s, err := NewMemStore(testEntries())
	if err != nil {
		t.Fatal(err)
	}

	cases := []struct {
		id   model.FeatureID
		tile string
		ok   bool
	}{
		{"NL.IMBAG.Pand.2", "t1", true},
		{"NL.IMBAG.Pand.2-0", "t1", true}, // building part resolves via parent
		{"NL.IMBAG.Pand.9", "", false},
	}
	for _, tc := range cases {
		tile, ok := s.TileOf(tc.id)
		if tile != tc.tile || ok != tc.ok {
			t.Errorf("TileOf(%s) = %q, %v; want %q, %v", tc.id, tile, ok, tc.tile, tc.ok)
		}
	}
}

func TestLoadCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	data := `[
		{"identificatie": "NL.IMBAG.Pand.1", "tile_id": "902", "bbox": [85000, 446000, 85010, 446010]}
	]`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	entries, err := LoadCatalog(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d entries", len(entries))
	}
	e := entries[0]
	if e.ID != "NL.IMBAG.Pand.1" || e.Tile != "902" || e.BBox[2] != 85010 {
		t.Fatalf("entry = %+v", e)
	}

	if _, err := LoadCatalog(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
