package crs

import (
	"fmt"
	"math"

	"github.com/3dgi/bag-features/internal/model"
)

// RD New <-> geographic transformation using the approximation
// polynomials published by Schreutelkamp and van Hees ("Benaderings-
// formules voor de transformatie tussen RD- en WGS84-kaartcoordinaten",
// Geodesia 2001). Accuracy is below half a metre inside the Dutch
// national RD domain, which is sufficient for bounding-box selection.

// Bessel/RD reference point: the Onze Lieve Vrouwe tower in Amersfoort.
const (
	rdX0   = 155000.0
	rdY0   = 463000.0
	rdLat0 = 52.15517440
	rdLon0 = 5.38720621
)

// Approximate validity window of the polynomials. Requests far outside
// the RD domain produce garbage coordinates, so they are rejected.
const (
	rdMinX, rdMaxX = -7000.0, 300000.0
	rdMinY, rdMaxY = 289000.0, 629000.0

	geoMinLon, geoMaxLon = 3.2, 7.3
	geoMinLat, geoMaxLat = 50.6, 53.7
)

type term struct {
	c    float64
	p, q int
}

// RD -> geographic, correction in arc seconds on top of the reference
// point. p = (x-x0)*1e-5, q = (y-y0)*1e-5.
var latTerms = []term{
	{3235.65389, 0, 1}, {-32.58297, 2, 0}, {-0.24750, 0, 2},
	{-0.84978, 2, 1}, {-0.06550, 0, 3}, {-0.01709, 2, 2},
	{-0.00738, 1, 0}, {0.00530, 4, 0}, {-0.00039, 2, 3},
	{0.00033, 4, 1}, {-0.00012, 1, 1},
}

var lonTerms = []term{
	{5260.52916, 1, 0}, {105.94684, 1, 1}, {2.45656, 1, 2},
	{-0.81885, 3, 0}, {0.05594, 1, 3}, {-0.05607, 3, 1},
	{0.01199, 0, 1}, {-0.00256, 3, 2}, {0.00128, 1, 4},
	{0.00022, 0, 2}, {-0.00022, 2, 0}, {0.00026, 5, 0},
}

// Geographic -> RD, correction in metres. p/q powers apply to
// dLat = 0.36*(lat-lat0) and dLon = 0.36*(lon-lon0).
var xTerms = []term{
	{190094.945, 0, 1}, {-11832.228, 1, 1}, {-114.221, 2, 1},
	{-32.391, 0, 3}, {-0.705, 1, 0}, {-2.340, 3, 1},
	{-0.608, 1, 3}, {-0.008, 0, 2}, {0.148, 2, 3},
}

var yTerms = []term{
	{309056.544, 1, 0}, {3638.893, 0, 2}, {73.077, 2, 0},
	{-157.984, 1, 2}, {59.788, 3, 0}, {0.433, 0, 1},
	{-6.439, 2, 2}, {-0.032, 1, 1}, {0.092, 0, 4}, {-0.054, 1, 4},
}

func polySum(terms []term, p, q float64) float64 {
	var sum float64
	for _, t := range terms {
		sum += t.c * math.Pow(p, float64(t.p)) * math.Pow(q, float64(t.q))
	}
	return sum
}

func rdToGeographic(x, y float64) (lon, lat float64, err error) {
	if x < rdMinX || x > rdMaxX || y < rdMinY || y > rdMaxY {
		return 0, 0, fmt.Errorf("%w: point (%g, %g) outside the RD domain", ErrProjection, x, y)
	}
	p := (x - rdX0) * 1e-5
	q := (y - rdY0) * 1e-5
	lat = rdLat0 + polySum(latTerms, p, q)/3600
	lon = rdLon0 + polySum(lonTerms, p, q)/3600
	return lon, lat, nil
}

func geographicToRD(lon, lat float64) (x, y float64, err error) {
	if lon < geoMinLon || lon > geoMaxLon || lat < geoMinLat || lat > geoMaxLat {
		return 0, 0, fmt.Errorf("%w: point (%g, %g) outside the RD domain", ErrProjection, lon, lat)
	}
	dLat := 0.36 * (lat - rdLat0)
	dLon := 0.36 * (lon - rdLon0)
	x = rdX0 + polySum(xTerms, dLat, dLon)
	y = rdY0 + polySum(yTerms, dLat, dLon)
	return x, y, nil
}

// Transform reprojects b from one recognized CRS to another. The two
// corner points are reprojected independently and returned in the same
// order, so corner correspondence is preserved even if the projection
// does not preserve min/max ordering. When from and to denote the same
// family the box is returned unchanged apart from the CRS label, with
// no numeric drift.
func Transform(b model.BBox, from, to string) (model.BBox, error) {
	if IsGeographic(from) == IsGeographic(to) {
		b.CRS = to
		return b, nil
	}

	var (
		minX, minY, maxX, maxY float64
		err                    error
	)
	if IsGeographic(from) {
		minX, minY, err = geographicToRD(b.MinX, b.MinY)
		if err != nil {
			return model.BBox{}, err
		}
		maxX, maxY, err = geographicToRD(b.MaxX, b.MaxY)
	} else {
		minX, minY, err = rdToGeographic(b.MinX, b.MinY)
		if err != nil {
			return model.BBox{}, err
		}
		maxX, maxY, err = rdToGeographic(b.MaxX, b.MaxY)
	}
	if err != nil {
		return model.BBox{}, err
	}
	return model.BBox{MinX: minX, MinY: minY, MaxX: maxX, MaxY: maxY, CRS: to}, nil
}
