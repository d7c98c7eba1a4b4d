// Package crs holds the registry of coordinate reference systems the
// service accepts and the bounding-box transformation between them.
//
// Two systems are recognized, each in a 2D and a 3D variant: the
// geographic default (OGC CRS84, longitude/latitude on ETRS89) and the
// storage system (RD New, EPSG:28992, with EPSG:7415 as the compound
// variant carrying NAP height).
package crs

import (
	"errors"
	"fmt"
	"strings"
)

const (
	Default   = "http://www.opengis.net/def/crs/OGC/1.3/CRS84"
	Default3D = "http://www.opengis.net/def/crs/OGC/0/CRS84h"
	Storage   = "http://www.opengis.net/def/crs/EPSG/0/28992"
	Storage3D = "http://www.opengis.net/def/crs/EPSG/0/7415"
)

var (
	ErrUnknown    = errors.New("unknown crs")
	ErrProjection = errors.New("projection failure")
)

var canonical = []string{Default, Default3D, Storage, Storage3D}

// Normalize matches raw case-insensitively against the recognized CRS
// identifiers and returns the canonical form.
func Normalize(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	for _, c := range canonical {
		if strings.EqualFold(trimmed, c) {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknown, raw)
}

// IsGeographic reports whether id denotes the CRS84 family.
func IsGeographic(id string) bool {
	return id == Default || id == Default3D
}
