package geo

import (
	"math"
	"testing"

	"github.com/matryer/is"
)

func TestDistanceIsSymmetric(t *testing.T) {
	is := is.New(t)

	a := LatLng{Lat: 49.2827, Lng: -123.1207}
	b := LatLng{Lat: 51.0447, Lng: -114.0719}

	is.Equal(Distance(a, b), Distance(b, a))
	is.Equal(Distance(a, a), 0.0)
	is.True(Distance(a, b) > 0)
}

func TestDistanceOneDegreeLongitudeAtVancouver(t *testing.T) {
	is := is.New(t)

	d := Distance(
		LatLng{Lat: 49.2827, Lng: -123.1207},
		LatLng{Lat: 49.2827, Lng: -122.1207},
	)

	// 72.53 km on a 6371 km sphere
	is.True(d > 72400 && d < 72700)
}

func TestPolygonAreaNeedsThreePositions(t *testing.T) {
	is := is.New(t)

	_, ok := PolygonArea([]Position{{0, 0}, {1, 1}})
	is.True(!ok)

	_, ok = PolygonArea(nil)
	is.True(!ok)
}

func TestPolygonAreaOfSquareKilometer(t *testing.T) {
	is := is.New(t)

	// 1 km x 1 km at 49.28N
	dLat := 1000 / (EarthRadius * math.Pi / 180)
	dLng := dLat / math.Cos(49.28*math.Pi/180)
	ring := []Position{
		{-123.12, 49.28},
		{-123.12 + dLng, 49.28},
		{-123.12 + dLng, 49.28 + dLat},
		{-123.12, 49.28 + dLat},
	}

	area, ok := PolygonArea(ring)
	is.True(ok)
	is.True(math.Abs(area-1e6) < 1e4) // within 1%

	// winding and explicit closing do not change the result
	closed := append(append([]Position{}, ring...), ring[0])
	reversed := []Position{ring[3], ring[2], ring[1], ring[0]}
	a2, _ := PolygonArea(closed)
	a3, _ := PolygonArea(reversed)
	is.True(math.Abs(a2-area) < 1e-6)
	is.True(math.Abs(a3-area) < 1e-6)
}

func TestLonLatToMercator(t *testing.T) {
	is := is.New(t)

	x, y := LonLatToMercator(0, 0)
	is.True(math.Abs(x-0.5) < 1e-12)
	is.True(math.Abs(y-0.5) < 1e-12)

	_, top := LonLatToMercator(0, 90)
	is.True(math.Abs(top) < 1e-6) // clamped to the projection edge

	_, north := LonLatToMercator(0, 49)
	is.True(north < 0.5)
}
