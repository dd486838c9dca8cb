// Package geomath holds the pure geometry used by geofenced check-in and
// task-completion verification: great-circle distance between GPS fixes and
// point-in-polygon containment with a tolerance buffer for GPS jitter.
package geomath

import "math"

// EarthRadiusMeters is the mean Earth radius used by the haversine formula.
const EarthRadiusMeters = 6371000.0

// Point is a WGS84 coordinate pair.
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Ring is an ordered closed polygon boundary. The closing edge from the last
// vertex back to the first is implicit.
type Ring []Point

// Distance returns the great-circle distance in whole meters between two
// coordinates (haversine). The result is truncated, not rounded, so it can be
// compared against integer thresholds without ever overstating distance.
func Distance(lat1, lon1, lat2, lon2 float64) int {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	dPhi := (lat2 - lat1) * math.Pi / 180
	dLambda := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return int(EarthRadiusMeters * c)
}

// Contains reports whether p lies strictly inside the ring, using a standard
// ray cast along the +lon axis. A ring with fewer than 3 vertices contains
// nothing.
func (r Ring) Contains(p Point) bool {
	if len(r) < 3 {
		return false
	}

	inside := false
	j := len(r) - 1
	for i := 0; i < len(r); i++ {
		vi, vj := r[i], r[j]
		if (vi.Lat > p.Lat) != (vj.Lat > p.Lat) {
			crossLon := (vj.Lon-vi.Lon)*(p.Lat-vi.Lat)/(vj.Lat-vi.Lat) + vi.Lon
			if p.Lon < crossLon {
				inside = !inside
			}
		}
		j = i
	}
	return inside
}

// DistanceToBoundaryDegrees returns the minimum distance in degrees from p to
// any edge of the ring. Degrees are treated as a flat plane, which is accurate
// enough at the sub-kilometer scale the tolerance buffer operates on.
func (r Ring) DistanceToBoundaryDegrees(p Point) float64 {
	if len(r) < 2 {
		return math.Inf(1)
	}

	min := math.Inf(1)
	j := len(r) - 1
	for i := 0; i < len(r); i++ {
		if d := pointToSegment(p, r[j], r[i]); d < min {
			min = d
		}
		j = i
	}
	return min
}

// ContainsWithTolerance reports whether p is inside the ring, or within
// toleranceDegrees of its boundary. The buffer absorbs GPS jitter for workers
// standing at a zone edge.
func ContainsWithTolerance(r Ring, p Point, toleranceDegrees float64) bool {
	if len(r) < 3 {
		return false
	}
	if r.Contains(p) {
		return true
	}
	return r.DistanceToBoundaryDegrees(p) <= toleranceDegrees
}

func pointToSegment(p, a, b Point) float64 {
	dx := b.Lon - a.Lon
	dy := b.Lat - a.Lat

	if dx == 0 && dy == 0 {
		return math.Hypot(p.Lon-a.Lon, p.Lat-a.Lat)
	}

	// Project p onto the segment, clamped to its endpoints.
	t := ((p.Lon-a.Lon)*dx + (p.Lat-a.Lat)*dy) / (dx*dx + dy*dy)
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}

	return math.Hypot(p.Lon-(a.Lon+t*dx), p.Lat-(a.Lat+t*dy))
}
