package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/cespare/xxhash/v2"
	"github.com/go-chi/chi/v5"

	"github.com/3dgi/bag-features/internal/apierror"
	"github.com/3dgi/bag-features/internal/crs"
	"github.com/3dgi/bag-features/internal/model"
	"github.com/3dgi/bag-features/internal/pagination"
	"github.com/3dgi/bag-features/internal/params"
	"github.com/3dgi/bag-features/internal/store"
)

const (
	collectionID      = "pand"
	collectionVersion = "v2023.08.09"
	apiVersion        = "0.1"
)

var errNotFoundRoute = apierror.NotFound("no such route")

// datasetExtent is the full spatial extent of the collection, in
// storage CRS.
var datasetExtent = [4]float64{10000, 306250, 287760, 623690}

func (a *API) handleLanding(w http.ResponseWriter, r *http.Request) {
	base := baseURL(r)
	writeJSON(w, http.StatusOK, map[string]any{
		"title": "3DBAG API",
		"description": "3DBAG is an extended version of the 3DBAG data set. " +
			"It contains additional information that is either derived from the 3DBAG, " +
			"or integrated from other data sources.",
		"links": []model.Link{
			{Href: requestURL(r), Rel: "self", Type: "application/json", Title: "this document"},
			{Href: base + "/conformance", Rel: "conformance", Type: "application/json",
				Title: "Conformance classes implemented by this server"},
			{Href: base + "/collections", Rel: "data", Type: "application/json",
				Title: "Information about the feature collections"},
		},
	})
}

func (a *API) handleConformance(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"conformsTo": []string{
			"https://cityjson.org/specs/2.0.0/",
		},
	})
}

func (a *API) handleCollections(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"collections": []any{collectionBody(baseURL(r))},
		"links": []model.Link{
			{Href: baseURL(r) + "/collections", Rel: "self", Type: "application/json", Title: "this document"},
		},
		"crs": []string{crs.Storage},
	})
}

func (a *API) handleCollection(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, collectionBody(baseURL(r)))
}

func collectionBody(base string) map[string]any {
	self := base + "/collections/" + collectionID
	return map[string]any{
		"id":          collectionID,
		"title":       "Pand",
		"description": "3D building models based on the 'pand' layer of the BAG dataset.",
		"extent": map[string]any{
			"spatial": map[string]any{
				"bbox": [][4]float64{datasetExtent},
				"crs":  crs.Storage,
			},
			"temporal": map[string]any{
				"interval": []any{nil, "2019-12-31T24:59:59Z"},
			},
		},
		"itemType":   "feature",
		"crs":        []string{crs.Storage},
		"storageCrs": crs.Storage,
		"version": map[string]string{
			"collection": collectionVersion,
			"api":        apiVersion,
		},
		"links": []model.Link{
			{Href: self, Rel: "self", Type: "application/json", Title: "this document"},
			{Href: self + "/items", Rel: "items", Type: "application/city+json", Title: "Pand items"},
			{Href: "https://creativecommons.org/licenses/by/4.0/", Rel: "license",
				Type: "text/html", Title: "CC BY 4.0"},
		},
	}
}

func (a *API) handleItems(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	p, err := params.ParseItems(r.URL.Query(), a.pcfg)
	if err != nil {
		writeError(w, err)
		return
	}

	var ids []model.FeatureID
	if p.BBox != nil {
		ids, err = a.boxes.Get(ctx, *p.BBox)
	} else {
		ids, err = a.catalog.ListAll(ctx)
	}
	if err != nil {
		a.log.Error("spatial selection failed", "error", err)
		writeError(w, err)
		return
	}

	itemsURL := baseURL(r) + "/collections/" + collectionID + "/items"
	page := pagination.Paginate(ids, requestURL(r), itemsURL, p.Offset, p.Limit, p.BBox)

	out := model.FeatureCollection{
		Type:          "FeatureCollection",
		NumberMatched: page.NumberMatched,
		Links:         page.Links,
		Features:      []json.RawMessage{},
	}
	if len(page.IDs) > 0 {
		docs, missing, err := a.features.GetDocuments(ctx, page.IDs)
		if err != nil {
			a.log.Error("document batch failed", "error", err)
			writeError(w, err)
			return
		}
		if len(missing) > 0 {
			a.log.Error("index and store disagree", "missing", len(missing))
		}
		out.Features = docs
		out.NumberReturned = len(docs)
		if meta, err := a.features.Metadata(ctx); err == nil {
			out.Metadata = meta
		} else {
			a.log.Warn("dataset metadata unavailable", "error", err)
		}
	}

	w.Header().Set("Content-Crs", "<"+p.CRS+">")
	writeJSON(w, http.StatusOK, out)
}

func (a *API) handleFeature(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := model.FeatureID(chi.URLParam(r, "featureId"))

	crsID, err := params.ParseFeature(r.URL.Query())
	if err != nil {
		writeError(w, err)
		return
	}

	// Tile membership is checked against the parent id; building parts
	// live in their parent's tile.
	if a.tiles != nil {
		if _, ok := a.tiles.TileOf(id); !ok {
			writeError(w, apierror.NotFound("feature %s has no known tile", id))
			return
		}
	}

	doc, err := a.features.GetDocument(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, apierror.NotFound("feature %s does not exist", id))
		return
	}
	if err != nil {
		a.log.Error("document load failed", "id", string(id), "error", err)
		writeError(w, err)
		return
	}

	etag := fmt.Sprintf(`W/"%016x"`, xxhash.Sum64(doc))
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Crs", "<"+crsID+">")
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	self := baseURL(r) + "/collections/" + collectionID
	links := []model.Link{
		{Href: requestURL(r), Rel: "self", Type: "application/json", Title: "this document"},
		{Href: self, Rel: "collection", Type: "application/json"},
		{Href: self + "/items/" + string(id.Parent()), Rel: "parent", Type: "application/city+json"},
	}
	for _, child := range model.ChildrenOf(doc) {
		links = append(links, model.Link{
			Href: self + "/items/" + string(child),
			Rel:  "child",
			Type: "application/city+json",
		})
	}

	out := map[string]any{
		"id":      docID(doc, id),
		"feature": doc,
		"links":   links,
	}
	if meta, err := a.features.Metadata(ctx); err == nil {
		out["metadata"] = meta
	} else {
		a.log.Warn("dataset metadata unavailable", "error", err)
	}
	writeJSON(w, http.StatusOK, out)
}

// docID prefers the id recorded in the document itself; a document that
// does not carry one falls back to the requested id.
func docID(doc json.RawMessage, fallback model.FeatureID) string {
	var probe struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(doc, &probe); err == nil && probe.ID != "" {
		return probe.ID
	}
	return string(fallback)
}

func baseURL(r *http.Request) string {
	return scheme(r) + "://" + r.Host
}

func requestURL(r *http.Request) string {
	return baseURL(r) + r.URL.RequestURI()
}

func scheme(r *http.Request) string {
	if p := r.Header.Get("X-Forwarded-Proto"); p != "" {
		return p
	}
	if r.TLS != nil {
		return "https"
	}
	return "http"
}
