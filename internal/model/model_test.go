package model

import "testing"

func TestFeatureIDParent(t *testing.T) {
	cases := []struct {
		id     FeatureID
		parent FeatureID
	}{
		{"NL.IMBAG.Pand.123-2", "NL.IMBAG.Pand.123"},
		{"NL.IMBAG.Pand.123", "NL.IMBAG.Pand.123"},
		{"NL.IMBAG.Pand.1655100000488643-0", "NL.IMBAG.Pand.1655100000488643"},
		{"plain", "plain"},
		{"trailing-", "trailing-"},
		{"not-a-part-x", "not-a-part-x"},
	}
	for _, c := range cases {
		if got := c.id.Parent(); got != c.parent {
			t.Errorf("Parent(%q) = %q, want %q", c.id, got, c.parent)
		}
	}
}

func TestBBoxString(t *testing.T) {
	b := BBox{MinX: 10000, MinY: 306250, MaxX: 287760, MaxY: 623690}
	if got := b.String(); got != "10000,306250,287760,623690" {
		t.Fatalf("String() = %q", got)
	}
	b = BBox{MinX: 4.5, MinY: 52.25, MaxX: 4.75, MaxY: 52.5}
	if got := b.String(); got != "4.5,52.25,4.75,52.5" {
		t.Fatalf("String() = %q", got)
	}
}

func TestBBoxInverted(t *testing.T) {
	if (BBox{MinX: 0, MinY: 0, MaxX: 1, MaxY: 1}).Inverted() {
		t.Fatal("regular box reported inverted")
	}
	if (BBox{MinX: 1, MinY: 1, MaxX: 1, MaxY: 1}).Inverted() {
		t.Fatal("degenerate box reported inverted")
	}
	if !(BBox{MinX: 2, MinY: 0, MaxX: 1, MaxY: 1}).Inverted() {
		t.Fatal("inverted box not detected")
	}
}

func TestChildrenOf(t *testing.T) {
	doc := []byte(`{
		"type": "CityJSONFeature",
		"id": "NL.IMBAG.Pand.9",
		"CityObjects": {
			"NL.IMBAG.Pand.9": {"type": "Building", "children": ["NL.IMBAG.Pand.9-1", "NL.IMBAG.Pand.9-0"]},
			"NL.IMBAG.Pand.9-0": {"type": "BuildingPart"},
			"NL.IMBAG.Pand.9-1": {"type": "BuildingPart"}
		}
	}`)
	got := ChildrenOf(doc)
	want := []FeatureID{"NL.IMBAG.Pand.9-0", "NL.IMBAG.Pand.9-1"}
	if len(got) != len(want) {
		t.Fatalf("ChildrenOf = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ChildrenOf = %v, want %v", got, want)
		}
	}

	if got := ChildrenOf([]byte(`{"id":"x","CityObjects":{"x":{"type":"Building"}}}`)); got != nil {
		t.Fatalf("expected nil children, got %v", got)
	}
	if got := ChildrenOf([]byte(`not json`)); got != nil {
		t.Fatalf("expected nil on parse failure, got %v", got)
	}
}
