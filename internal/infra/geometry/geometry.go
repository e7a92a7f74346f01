// Package geometry provides the pure planar operations the containment
// engine is built on: fragment collection, region combination, bounding
// boxes, centroids and point-in-polygon tests over orb geometries.
//
// Every function degrades to an explicit "invalid" result instead of
// panicking when handed malformed or degenerate geometry.
package geometry

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// CollectPolygons flattens any areal geometry into its polygon parts.
// Non-areal geometry (points, lines) is ignored; nested collections are
// walked recursively.
func CollectPolygons(g orb.Geometry) []orb.Polygon {
	switch geom := g.(type) {
	case orb.Polygon:
		return []orb.Polygon{geom}
	case orb.MultiPolygon:
		return geom
	case orb.Collection:
		var polygons []orb.Polygon
		for _, child := range geom {
			polygons = append(polygons, CollectPolygons(child)...)
		}

		return polygons
	default:
		return nil
	}
}

// Combine reduces the fragments of one catchment response into a single
// logical region. Fragments are grouped, not dissolved: a multi-fragment
// catchment is treated as one region for containment purposes, which is
// all the matcher needs. Returns false when no usable fragment remains.
func Combine(fragments []orb.Polygon) (orb.MultiPolygon, bool) {
	region := make(orb.MultiPolygon, 0, len(fragments))
	for _, polygon := range fragments {
		if len(polygon) == 0 || len(polygon[0]) < 3 {
			continue
		}
		region = append(region, polygon)
	}

	if len(region) == 0 {
		return nil, false
	}

	return region, true
}

// Bounds accumulates the min/max of every finite coordinate in the
// region. Returns false when no finite coordinate pair was found, so the
// caller can exclude the region from prefiltering instead of failing.
func Bounds(region orb.MultiPolygon) (orb.Bound, bool) {
	bound := orb.Bound{
		Min: orb.Point{math.MaxFloat64, math.MaxFloat64},
		Max: orb.Point{-math.MaxFloat64, -math.MaxFloat64},
	}
	found := false

	for _, polygon := range region {
		for _, ring := range polygon {
			for _, point := range ring {
				if !finitePoint(point) {
					continue
				}

				if point[0] < bound.Min[0] {
					bound.Min[0] = point[0]
				}
				if point[0] > bound.Max[0] {
					bound.Max[0] = point[0]
				}
				if point[1] < bound.Min[1] {
					bound.Min[1] = point[1]
				}
				if point[1] > bound.Max[1] {
					bound.Max[1] = point[1]
				}
				found = true
			}
		}
	}

	if !found {
		return orb.Bound{}, false
	}

	return bound, true
}

// BoundsOverlap reports whether two axis-aligned boxes overlap. Two boxes
// overlap unless one is entirely to one side of the other on either axis.
// This is a rejection test only: false positives are acceptable, false
// negatives are not.
func BoundsOverlap(a, b orb.Bound) bool {
	if a.Max[0] < b.Min[0] || b.Max[0] < a.Min[0] {
		return false
	}
	if a.Max[1] < b.Min[1] || b.Max[1] < a.Min[1] {
		return false
	}

	return true
}

// Centroid computes the area-weighted centroid of a region. A vertex
// average would drift on rings with uneven vertex density, so the planar
// library definition is used. Returns false on degenerate input.
func Centroid(region orb.MultiPolygon) (orb.Point, bool) {
	if len(region) == 0 {
		return orb.Point{}, false
	}

	center, _ := planar.CentroidArea(region)
	if !finitePoint(center) {
		return orb.Point{}, false
	}

	return center, true
}

// Contains reports whether the point falls inside the region, honoring
// holes. Returns false (never panics) on an empty or degenerate region.
func Contains(region orb.MultiPolygon, point orb.Point) bool {
	if len(region) == 0 || !finitePoint(point) {
		return false
	}

	return planar.MultiPolygonContains(region, point)
}

func finitePoint(point orb.Point) bool {
	return finite(point[0]) && finite(point[1])
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
