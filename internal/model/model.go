// Package model defines core domain types shared across the service.
package model

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"
)

// FeatureID is the opaque identifier of a building or building part.
type FeatureID string

// Parent returns the identifier of the parent building. Building parts
// carry a "-<n>" suffix after the parent id; for ids without such a
// suffix the parent is the feature itself.
func (id FeatureID) Parent() FeatureID {
	s := string(id)
	i := strings.LastIndexByte(s, '-')
	if i <= 0 || i == len(s)-1 {
		return id
	}
	for _, r := range s[i+1:] {
		if r < '0' || r > '9' {
			return id
		}
	}
	return FeatureID(s[:i])
}

// BBox is an axis-aligned bounding box. A box is meaningless without a
// CRS, so the identifier travels with the coordinates at all times.
type BBox struct {
	MinX, MinY float64
	MaxX, MaxY float64
	CRS        string
}

// String renders the coordinates in bbox query-parameter form,
// minX,minY,maxX,maxY.
func (b BBox) String() string {
	parts := [4]float64{b.MinX, b.MinY, b.MaxX, b.MaxY}
	out := make([]string, 0, 4)
	for _, v := range parts {
		out = append(out, strconv.FormatFloat(v, 'f', -1, 64))
	}
	return strings.Join(out, ",")
}

// Inverted reports whether a min coordinate exceeds its max counterpart.
// Degenerate (zero-area) boxes are not inverted.
func (b BBox) Inverted() bool {
	return b.MinX > b.MaxX || b.MinY > b.MaxY
}

// Link is a navigation link in an OGC API response.
type Link struct {
	Href  string `json:"href"`
	Rel   string `json:"rel"`
	Type  string `json:"type,omitempty"`
	Title string `json:"title,omitempty"`
}

// FeatureCollection is the paginated response envelope for the items
// endpoint. Features hold raw CityJSON feature documents; the full
// matched set is never materialized here, only the current page.
type FeatureCollection struct {
	Type           string            `json:"type"`
	NumberMatched  int               `json:"numberMatched"`
	NumberReturned int               `json:"numberReturned"`
	Metadata       json.RawMessage   `json:"metadata,omitempty"`
	Links          []Link            `json:"links"`
	Features       []json.RawMessage `json:"features"`
}

// cityJSONFeature mirrors the slice of a CityJSON feature document
// needed for link building.
type cityJSONFeature struct {
	ID          string `json:"id"`
	CityObjects map[string]struct {
		Children []string `json:"children"`
	} `json:"CityObjects"`
}

// ChildrenOf extracts the child object ids of the root city object in
// doc. Returns nil when the document has no children or does not parse.
func ChildrenOf(doc json.RawMessage) []FeatureID {
	var f cityJSONFeature
	if err := json.Unmarshal(doc, &f); err != nil {
		return nil
	}
	root, ok := f.CityObjects[f.ID]
	if !ok || len(root.Children) == 0 {
		return nil
	}
	out := make([]FeatureID, 0, len(root.Children))
	for _, c := range root.Children {
		out = append(out, FeatureID(c))
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
