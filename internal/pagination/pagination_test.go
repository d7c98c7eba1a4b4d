package pagination

import (
	"fmt"
	"testing"

	"github.com/3dgi/bag-features/internal/model"
)

const (
	selfURL = "http://example.test/collections/pand/items?offset=11&limit=10"
	baseURL = "http://example.test/collections/pand/items"
)

func matched(n int) []model.FeatureID {
	out := make([]model.FeatureID, n)
	for i := range out {
		out[i] = model.FeatureID(fmt.Sprintf("f%02d", i+1))
	}
	return out
}

func linkByRel(t *testing.T, links []model.Link, rel string) model.Link {
	t.Helper()
	for _, l := range links {
		if l.Rel == rel {
			return l
		}
	}
	t.Fatalf("no %q link in %v", rel, links)
	return model.Link{}
}

func hasRel(links []model.Link, rel string) bool {
	for _, l := range links {
		if l.Rel == rel {
			return true
		}
	}
	return false
}

func TestSliceWindows(t *testing.T) {
	all := matched(25)
	cases := []struct {
		name          string
		offset, limit int
		first, last   model.FeatureID
		n             int
	}{
		{"first page", 1, 10, "f01", "f10", 10},
		{"middle page", 11, 10, "f11", "f20", 10},
		{"short last page", 21, 10, "f21", "f25", 5},
		{"single element", 25, 1, "f25", "f25", 1},
		{"window over the end", 30, 10, "", "", 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Slice(all, tc.offset, tc.limit)
			if len(got) != tc.n {
				t.Fatalf("len = %d, want %d", len(got), tc.n)
			}
			if tc.n == 0 {
				return
			}
			if got[0] != tc.first || got[len(got)-1] != tc.last {
				t.Fatalf("window [%s..%s], want [%s..%s]", got[0], got[len(got)-1], tc.first, tc.last)
			}
		})
	}
}

func TestLinksMiddlePage(t *testing.T) {
	links := Links(selfURL, baseURL, 11, 10, 25, nil)

	self := linkByRel(t, links, "self")
	if self.Href != selfURL || self.Title != "this document" {
		t.Fatalf("self = %+v", self)
	}
	if got, want := linkByRel(t, links, "prev").Href, baseURL+"?offset=1&limit=10"; got != want {
		t.Fatalf("prev = %q, want %q", got, want)
	}
	if got, want := linkByRel(t, links, "next").Href, baseURL+"?offset=21&limit=10"; got != want {
		t.Fatalf("next = %q, want %q", got, want)
	}
}

func TestLinksFirstPageHasNoPrev(t *testing.T) {
	links := Links(selfURL, baseURL, 1, 10, 25, nil)
	if hasRel(links, "prev") {
		t.Fatal("first page must not link prev")
	}
	if got, want := linkByRel(t, links, "next").Href, baseURL+"?offset=11&limit=10"; got != want {
		t.Fatalf("next = %q, want %q", got, want)
	}
}

func TestLinksLastPageHasNoNext(t *testing.T) {
	links := Links(selfURL, baseURL, 21, 10, 25, nil)
	if hasRel(links, "next") {
		t.Fatal("last page must not link next")
	}
	// The prev window covers everything before offset 21.
	if got, want := linkByRel(t, links, "prev").Href, baseURL+"?offset=11&limit=20"; got != want {
		t.Fatalf("prev = %q, want %q", got, want)
	}
}

func TestLinksExactlyLastElementOnPage(t *testing.T) {
	// offset+limit == matched: the final element sits on this page, so
	// there is no next.
	links := Links(selfURL, baseURL, 16, 10, 26, nil)
	if hasRel(links, "next") {
		t.Fatal("no next when offset+limit == matched")
	}
}

func TestLinksCarryBBox(t *testing.T) {
	b := &model.BBox{MinX: 85000, MinY: 446000, MaxX: 85500, MaxY: 446500}
	links := Links(selfURL, baseURL, 11, 10, 25, b)

	wantPrev := baseURL + "?bbox=85000,446000,85500,446500&offset=1&limit=10"
	if got := linkByRel(t, links, "prev").Href; got != wantPrev {
		t.Fatalf("prev = %q, want %q", got, wantPrev)
	}
	wantNext := baseURL + "?bbox=85000,446000,85500,446500&offset=21&limit=10"
	if got := linkByRel(t, links, "next").Href; got != wantNext {
		t.Fatalf("next = %q, want %q", got, wantNext)
	}
}

func TestPaginateEmptyMatchedSet(t *testing.T) {
	p := Paginate(nil, selfURL, baseURL, 1, 10, nil)
	if p.NumberMatched != 0 || len(p.IDs) != 0 {
		t.Fatalf("page = %+v", p)
	}
	if hasRel(p.Links, "prev") || hasRel(p.Links, "next") {
		t.Fatal("empty set must only link self")
	}
}

func TestPaginateBeyondEnd(t *testing.T) {
	p := Paginate(matched(25), selfURL, baseURL, 40, 10, nil)
	if p.NumberMatched != 25 {
		t.Fatalf("numberMatched = %d", p.NumberMatched)
	}
	if len(p.IDs) != 0 {
		t.Fatalf("expected empty window, got %v", p.IDs)
	}
	if hasRel(p.Links, "next") {
		t.Fatal("no next past the end")
	}
	if !hasRel(p.Links, "prev") {
		t.Fatal("prev still points back into the set")
	}
}
