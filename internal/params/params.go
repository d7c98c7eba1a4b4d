// Package params parses and validates the query parameters of the
// items endpoints into an invariant-satisfying request descriptor.
// Validation is terminal: a request is either fully valid or rejected,
// never partially applied.
package params

import (
	"errors"
	"net/url"
	"strconv"
	"strings"

	"github.com/3dgi/bag-features/internal/apierror"
	"github.com/3dgi/bag-features/internal/crs"
	"github.com/3dgi/bag-features/internal/model"
)

const (
	DefaultOffset   = 1
	DefaultLimit    = 10
	DefaultMaxLimit = 100
)

type Config struct {
	DefaultLimit int
	MaxLimit     int
	// DefaultExtent is substituted for an absent bbox when set, so that
	// every request goes through the spatial index. The box must be in
	// storage CRS. Nil disables the substitution.
	DefaultExtent *model.BBox
}

// Parameters is the validated request descriptor. BBox, when present,
// is always in storage CRS regardless of the bbox-crs the client used.
type Parameters struct {
	Offset  int
	Limit   int
	CRS     string
	BBoxCRS string
	BBox    *model.BBox
}

var itemsParams = map[string]struct{}{
	"bbox": {}, "offset": {}, "limit": {}, "crs": {}, "bbox-crs": {},
}

// ParseItems validates the query string of the items collection
// endpoint. The validation order is fixed for deterministic error
// reporting: limit, offset, negativity, crs identifiers, bbox syntax,
// bbox transformation.
func ParseItems(q url.Values, cfg Config) (Parameters, error) {
	for key := range q {
		if _, ok := itemsParams[key]; !ok {
			return Parameters{}, apierror.BadRequest("unknown parameter %q", key)
		}
	}

	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = DefaultLimit
	}
	if cfg.MaxLimit <= 0 {
		cfg.MaxLimit = DefaultMaxLimit
	}

	limit, err := parseIntParam(q, "limit", cfg.DefaultLimit)
	if err != nil {
		return Parameters{}, err
	}
	// Too large a limit is clamped, not rejected.
	if limit > cfg.MaxLimit {
		limit = cfg.MaxLimit
	}

	offset, err := parseIntParam(q, "offset", DefaultOffset)
	if err != nil {
		return Parameters{}, err
	}

	if limit < 0 {
		return Parameters{}, apierror.BadRequest("limit must be a positive integer")
	}
	if offset < 0 {
		return Parameters{}, apierror.BadRequest("offset must be a positive integer")
	}

	crsID, err := normalizeParam(q, "crs")
	if err != nil {
		return Parameters{}, err
	}
	bboxCRS, err := normalizeParam(q, "bbox-crs")
	if err != nil {
		return Parameters{}, err
	}

	p := Parameters{Offset: offset, Limit: limit, CRS: crsID, BBoxCRS: bboxCRS}

	if raw := q.Get("bbox"); raw != "" {
		b, err := ParseBBox(raw, bboxCRS)
		if err != nil {
			return Parameters{}, err
		}
		storage, err := crs.Transform(b, bboxCRS, crs.Storage)
		if err != nil {
			return Parameters{}, apierror.BadRequest("bbox cannot be transformed to the storage crs: %v", err)
		}
		p.BBox = &storage
	} else if cfg.DefaultExtent != nil {
		extent := *cfg.DefaultExtent
		extent.CRS = crs.Storage
		p.BBox = &extent
	}

	return p, nil
}

// ParseFeature validates the query string of the single-feature
// endpoint, where only crs is recognized.
func ParseFeature(q url.Values) (string, error) {
	for key := range q {
		if key != "crs" {
			return "", apierror.BadRequest("unknown parameter %q; only crs is available on this endpoint", key)
		}
	}
	return normalizeParam(q, "crs")
}

// ParseBBox parses a raw bbox value: four comma-separated floats,
// optionally wrapped in brackets. Inverted boxes are rejected;
// degenerate ones are allowed.
func ParseBBox(raw, crsID string) (model.BBox, error) {
	trimmed := strings.TrimSpace(raw)
	trimmed = strings.TrimPrefix(trimmed, "[")
	trimmed = strings.TrimSuffix(trimmed, "]")

	parts := strings.Split(trimmed, ",")
	if len(parts) != 4 {
		return model.BBox{}, apierror.BadRequest("bbox needs exactly 4 values, got %d", len(parts))
	}
	var vals [4]float64
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return model.BBox{}, apierror.BadRequest("invalid bbox value %q", strings.TrimSpace(part))
		}
		vals[i] = v
	}
	b := model.BBox{MinX: vals[0], MinY: vals[1], MaxX: vals[2], MaxY: vals[3], CRS: crsID}
	if b.Inverted() {
		return model.BBox{}, apierror.BadRequest("bbox min corner exceeds max corner")
	}
	return b, nil
}

func parseIntParam(q url.Values, key string, def int) (int, error) {
	raw := q.Get(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, apierror.BadRequest("%s must be an integer", key)
	}
	return v, nil
}

func normalizeParam(q url.Values, key string) (string, error) {
	raw := q.Get(key)
	if raw == "" {
		return crs.Storage, nil
	}
	id, err := crs.Normalize(raw)
	if err != nil {
		if errors.Is(err, crs.ErrUnknown) {
			return "", apierror.BadRequest("unknown %s %q", key, raw)
		}
		return "", err
	}
	return id, nil
}
