// Package pagination slices a matched id set into pages and builds the
// self, prev and next navigation links of a FeatureCollection response.
package pagination

import (
	"fmt"

	"github.com/3dgi/bag-features/internal/model"
)

// ContentType is the media type advertised on navigation links.
const ContentType = "application/city+json"

// Page is one window over a matched id set, with the links that locate
// it and its neighbours. Offsets are 1-based.
type Page struct {
	NumberMatched int
	IDs           []model.FeatureID
	Links         []model.Link
}

// Slice returns the window [offset, offset+limit) of all, 1-based. Out
// of range windows are empty, never an error: a client can page one
// step past the end and gets an empty page back.
func Slice(all []model.FeatureID, offset, limit int) []model.FeatureID {
	lo := offset - 1
	if lo < 0 || lo >= len(all) {
		return nil
	}
	hi := lo + limit
	if hi > len(all) {
		hi = len(all)
	}
	return all[lo:hi]
}

// Links builds the navigation links of a page. selfURL is the request
// URL verbatim; baseURL is the items endpoint without query string,
// used for prev and next. A prev link exists when there is anything
// before the window, a next link when anything follows it. The bbox
// filter, when present, is carried over onto prev and next so the
// neighbouring pages select the same matched set.
func Links(selfURL, baseURL string, offset, limit, matched int, bbox *model.BBox) []model.Link {
	links := []model.Link{{
		Href:  selfURL,
		Rel:   "self",
		Type:  ContentType,
		Title: "this document",
	}}

	if offset > 1 {
		// The prev window ends right before this one and is at most
		// limit wide.
		prevOffset := max(1, offset-limit)
		prevLimit := offset - 1
		links = append(links, model.Link{
			Href: pageURL(baseURL, prevOffset, prevLimit, bbox),
			Rel:  "prev",
			Type: ContentType,
		})
	}
	if offset+limit < matched {
		links = append(links, model.Link{
			Href: pageURL(baseURL, offset+limit, limit, bbox),
			Rel:  "next",
			Type: ContentType,
		})
	}
	return links
}

// Paginate combines Slice and Links for one request.
func Paginate(all []model.FeatureID, selfURL, baseURL string, offset, limit int, bbox *model.BBox) Page {
	return Page{
		NumberMatched: len(all),
		IDs:           Slice(all, offset, limit),
		Links:         Links(selfURL, baseURL, offset, limit, len(all), bbox),
	}
}

func pageURL(baseURL string, offset, limit int, bbox *model.BBox) string {
	if bbox != nil {
		return fmt.Sprintf("%s?bbox=%s&offset=%d&limit=%d", baseURL, bbox, offset, limit)
	}
	return fmt.Sprintf("%s?offset=%d&limit=%d", baseURL, offset, limit)
}
