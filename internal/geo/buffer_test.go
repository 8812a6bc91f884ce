package geo

import (
	"errors"
	"math"
	"testing"

	"github.com/matryer/is"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

func square() []Position {
	return []Position{
		{-123.12, 49.28},
		{-123.11, 49.28},
		{-123.11, 49.29},
		{-123.12, 49.29},
	}
}

func ringOf(ps []Position) orb.Ring {
	r := make(orb.Ring, 0, len(ps))
	for _, p := range ps {
		r = append(r, p.Orb())
	}
	return r
}

func TestBufferRejectsNonPositiveDistance(t *testing.T) {
	is := is.New(t)

	for _, d := range []float64{0, -10} {
		_, err := Buffer(square(), d)
		is.True(errors.Is(err, ErrInvalidDistance))
	}
}

func TestBufferRejectsDegenerateRings(t *testing.T) {
	is := is.New(t)

	_, err := Buffer([]Position{{0, 0}, {1, 1}}, 100)
	is.True(errors.Is(err, ErrTooFewPoints))

	_, err = Buffer([]Position{{0, 0}, {1, 1}, {1, 1}, {0, 0}}, 100)
	is.True(errors.Is(err, ErrTooFewPoints))

	_, err = Buffer([]Position{{0, 0}, {0.01, 0}, {0.02, 0}}, 100)
	is.True(errors.Is(err, ErrZeroArea))

	_, err = Buffer([]Position{{0, 0}, {0.01, 0.01}, {0.01, 0}, {0, 0.01}}, 100)
	is.True(errors.Is(err, ErrSelfIntersecting))

	_, err = Buffer([]Position{{0, 0}, {0.01, 95}, {0.01, 0}}, 100)
	is.True(errors.Is(err, ErrInvalidPosition))
}

func TestBufferGrowsSquare(t *testing.T) {
	is := is.New(t)

	src := square()
	out, err := Buffer(src, 300)
	is.NoErr(err)
	is.True(len(out) > len(src))
	is.Equal(out[0], out[len(out)-1]) // closed

	srcBound, _ := NewPolygon(src).Bound()
	outBound, _ := NewPolygon(out).Bound()
	is.True(outBound.StrictlyContains(srcBound))

	// every source vertex lies inside the buffer
	ring := ringOf(out)
	for _, p := range src {
		is.True(planar.RingContains(ring, p.Orb()))
	}

	// square area + perimeter * d + pi * d^2
	srcArea, _ := PolygonArea(src)
	outArea, _ := PolygonArea(out)
	is.True(outArea > srcArea)

	// the buffer reaches ~300 m south of the southern edge
	south := Distance(LatLng{Lat: outBound.Min[1], Lng: -123.115}, LatLng{Lat: 49.28, Lng: -123.115})
	is.True(south > 295 && south < 305)
}

func TestBufferSquareAreaMatchesRoundedOffset(t *testing.T) {
	is := is.New(t)

	src := square()
	const d = 100.0

	out, err := Buffer(src, d)
	is.NoErr(err)

	var perimeter float64
	for i := range src {
		a, b := src[i], src[(i+1)%len(src)]
		perimeter += Distance(LatLng{Lat: a.Lat(), Lng: a.Lng()}, LatLng{Lat: b.Lat(), Lng: b.Lng()})
	}
	srcArea, _ := PolygonArea(src)
	outArea, _ := PolygonArea(out)

	// Minkowski sum of a convex ring and a disc
	want := srcArea + perimeter*d + math.Pi*d*d
	is.True(math.Abs(outArea-want)/want < 0.01)
}

func TestBufferHandlesClockwiseAndClosedInput(t *testing.T) {
	is := is.New(t)

	src := square()
	ccw, err := Buffer(src, 100)
	is.NoErr(err)

	cw := []Position{src[0], src[3], src[2], src[1], src[0]}
	out, err := Buffer(cw, 100)
	is.NoErr(err)

	a1, _ := PolygonArea(ccw)
	a2, _ := PolygonArea(out)
	is.True(a1-a2 < 1 && a2-a1 < 1)
}

func TestBufferConcaveRing(t *testing.T) {
	is := is.New(t)

	// U shape with a ~1.1 km wide bay
	u := []Position{
		{0, 0}, {0.03, 0}, {0.03, 0.03}, {0.02, 0.03},
		{0.02, 0.005}, {0.01, 0.005}, {0.01, 0.03}, {0, 0.03},
	}
	bay := orb.Point{0.015, 0.02}

	narrow, err := Buffer(u, 100)
	is.NoErr(err)
	is.True(!planar.RingContains(ringOf(narrow), bay))
	for _, p := range u {
		is.True(planar.RingContains(ringOf(narrow), p.Orb()))
	}

	// buffering only grows the covered area
	narrowArea, _ := PolygonArea(narrow)
	srcArea, _ := PolygonArea(u)
	is.True(narrowArea > srcArea)

	// wider than half the bay: the bay is filled
	wide, err := Buffer(u, 700)
	is.NoErr(err)
	is.True(planar.RingContains(ringOf(wide), bay))
}
