package geo

import "math"

// EarthRadius is the mean spherical Earth radius in meters.
const EarthRadius = 6371000.0

// MaxMercatorLat is the latitude limit of the Web Mercator projection.
const MaxMercatorLat = 85.05112878

func toRad(deg float64) float64 { return deg * math.Pi / 180.0 }
func toDeg(rad float64) float64 { return rad * 180.0 / math.Pi }

// Distance returns the great-circle (Haversine) distance in meters.
func Distance(a, b LatLng) float64 {
	lat1, lat2 := toRad(a.Lat), toRad(b.Lat)
	dLat := lat2 - lat1
	dLng := toRad(b.Lng - a.Lng)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	// rounding can push h slightly outside [0, 1]
	h = math.Min(1, math.Max(0, h))

	return 2 * EarthRadius * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// PolygonArea returns the area in square meters enclosed by a ring.
//
// It sums Δλ·(2 + sin φ1 + sin φ2) over consecutive vertices (closing edge
// included) and scales by R²/2. The result is accurate to well under 1% for
// regional polygons: extents below ~100 km that do not cross a pole or the
// antimeridian. Outside that range the error is unbounded.
//
// The second value is false when the ring holds fewer than 3 positions.
func PolygonArea(ring []Position) (float64, bool) {
	if len(ring) < 3 {
		return 0, false
	}

	var sum float64
	n := len(ring)
	for i := 0; i < n; i++ {
		p1, p2 := ring[i], ring[(i+1)%n]
		if len(p1) < 2 || len(p2) < 2 {
			return 0, false
		}
		sum += toRad(p2[0]-p1[0]) * (2 + math.Sin(toRad(p1[1])) + math.Sin(toRad(p2[1])))
	}

	return math.Abs(sum * EarthRadius * EarthRadius / 2), true
}

// LonLatToMercator converts WGS84 coordinates into normalized Web Mercator
// coordinates, x and y both in [0..1] with y growing southwards.
//
// Latitude is clamped to MaxMercatorLat.
func LonLatToMercator(lon, lat float64) (x, y float64) {
	if lat > MaxMercatorLat {
		lat = MaxMercatorLat
	} else if lat < -MaxMercatorLat {
		lat = -MaxMercatorLat
	}

	// lon: [-180..180] -> x: [0..1]
	x = (lon + 180.0) / 360.0

	// forward Mercator projection
	latRad := toRad(lat)
	mercatorY := math.Log(math.Tan(math.Pi/4 + latRad/2))
	y = 0.5 - mercatorY/(2*math.Pi)

	return x, y
}
