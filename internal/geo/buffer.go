package geo

import (
	"errors"
	"fmt"
	"math"

	"github.com/peterstace/simplefeatures/geom"
)

var (
	// ErrInvalidDistance is returned for a non-positive or non-finite buffer distance.
	ErrInvalidDistance = errors.New("buffer distance must be positive")

	// ErrTooFewPoints is returned when a ring has fewer than 3 distinct positions.
	ErrTooFewPoints = errors.New("ring needs at least 3 distinct positions")

	// ErrInvalidPosition is returned when a ring holds a malformed or out of range position.
	ErrInvalidPosition = errors.New("ring holds an invalid position")

	// ErrZeroArea is returned when all ring positions are collinear.
	ErrZeroArea = errors.New("ring encloses no area")

	// ErrSelfIntersecting is returned when two ring edges cross.
	ErrSelfIntersecting = errors.New("ring is self-intersecting")

	// ErrBufferFailed wraps any other failure while building the buffer.
	ErrBufferFailed = errors.New("buffer failed")
)

const (
	earthRadiusKm = EarthRadius / 1000.0

	// arc segments per quarter circle of a round join
	quadrantSegments = 8

	// relative tolerance of the collinearity test
	collinearEpsilon = 1e-12
)

// Buffer grows a polygon ring outwards by the given distance in meters and
// returns the closed outer ring of the result.
//
// The ring is projected onto an azimuthal equidistant plane centered on its
// bounding box, measured in kilometers, and buffered there with round joins.
// Holes that the buffer would enclose are filled, so the result always
// covers the true buffer.
func Buffer(ring []Position, meters float64) (out []Position, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("%w: %v", ErrBufferFailed, r)
		}
	}()

	if !(meters > 0) || math.IsInf(meters, 1) {
		return nil, ErrInvalidDistance
	}

	pts, err := openRing(ring)
	if err != nil {
		return nil, err
	}

	box, _ := NewPolygon(pts).Bound()
	proj := newAzimuthalEquidistant(box.Center())

	plane := make([]geom.XY, len(pts))
	for i, p := range pts {
		plane[i] = proj.forward(p)
	}
	if collinear(plane) {
		return nil, ErrZeroArea
	}

	flat := make([]float64, 0, 2*len(plane)+2)
	for _, xy := range plane {
		flat = append(flat, xy.X, xy.Y)
	}
	flat = append(flat, plane[0].X, plane[0].Y)

	poly := geom.NewPolygonXY(flat)
	if err := poly.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSelfIntersecting, err)
	}

	buffered, err := geom.Buffer(poly.AsGeometry(), meters/1000.0,
		geom.BufferJoinStyleRound(),
		geom.BufferQuadSegments(quadrantSegments),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBufferFailed, err)
	}

	outer, ok := largestPolygon(buffered)
	if !ok {
		return nil, fmt.Errorf("%w: empty result", ErrBufferFailed)
	}

	seq := outer.ExteriorRing().Coordinates()
	n := seq.Length()
	if n < 4 {
		return nil, fmt.Errorf("%w: result ring collapsed", ErrBufferFailed)
	}

	out = make([]Position, 0, n)
	for i := 0; i < n-1; i++ {
		out = append(out, proj.inverse(seq.GetXY(i)))
	}
	out = append(out, Position{out[0][0], out[0][1]})

	return out, nil
}

// largestPolygon picks the polygon with the largest area out of a buffer result.
func largestPolygon(g geom.Geometry) (geom.Polygon, bool) {
	if p, ok := g.AsPolygon(); ok {
		return p, !p.IsEmpty()
	}

	mp, ok := g.AsMultiPolygon()
	if !ok {
		return geom.Polygon{}, false
	}

	var (
		best geom.Polygon
		area float64
		seen bool
	)
	for i := 0; i < mp.NumPolygons(); i++ {
		p := mp.PolygonN(i)
		if p.IsEmpty() {
			continue
		}
		if a := p.Area(); !seen || a > area {
			best, area, seen = p, a, true
		}
	}
	return best, seen
}

// collinear reports whether every point lies on the line through the first two.
func collinear(pts []geom.XY) bool {
	dir := pts[1].Sub(pts[0])
	for _, p := range pts[2:] {
		d := p.Sub(pts[0])
		if math.Abs(dir.Cross(d)) > collinearEpsilon*dir.Length()*d.Length() {
			return false
		}
	}
	return true
}

// openRing validates a ring, strips altitude, repeated positions and the
// closing position.
func openRing(ring []Position) ([]Position, error) {
	pts := make([]Position, 0, len(ring))
	for _, p := range ring {
		if !p.Valid() {
			return nil, ErrInvalidPosition
		}
		q := Position{p[0], p[1]}
		if len(pts) > 0 && samePosition(pts[len(pts)-1], q) {
			continue
		}
		pts = append(pts, q)
	}
	for len(pts) > 1 && samePosition(pts[0], pts[len(pts)-1]) {
		pts = pts[:len(pts)-1]
	}
	if len(pts) < 3 {
		return nil, ErrTooFewPoints
	}
	return pts, nil
}

func samePosition(a, b Position) bool {
	return a[0] == b[0] && a[1] == b[1]
}

// azimuthalEquidistant projects onto a plane tangent at the origin where
// distances and bearings from the origin are preserved. Units are kilometers.
type azimuthalEquidistant struct {
	lng0, sinLat0, cosLat0 float64
}

func newAzimuthalEquidistant(origin Position) azimuthalEquidistant {
	sinLat0, cosLat0 := math.Sincos(toRad(origin.Lat()))
	return azimuthalEquidistant{lng0: toRad(origin.Lng()), sinLat0: sinLat0, cosLat0: cosLat0}
}

func (p azimuthalEquidistant) forward(pos Position) geom.XY {
	sinLat, cosLat := math.Sincos(toRad(pos.Lat()))
	sinDLng, cosDLng := math.Sincos(toRad(pos.Lng()) - p.lng0)

	cosC := clamp(p.sinLat0*sinLat+p.cosLat0*cosLat*cosDLng, -1, 1)
	c := math.Acos(cosC)
	k := 1.0
	if c > 1e-12 {
		k = c / math.Sin(c)
	}

	return geom.XY{
		X: earthRadiusKm * k * cosLat * sinDLng,
		Y: earthRadiusKm * k * (p.cosLat0*sinLat - p.sinLat0*cosLat*cosDLng),
	}
}

func (p azimuthalEquidistant) inverse(v geom.XY) Position {
	rho := v.Length()
	if rho < 1e-12 {
		return Position{toDeg(p.lng0), toDeg(math.Atan2(p.sinLat0, p.cosLat0))}
	}

	sinC, cosC := math.Sincos(rho / earthRadiusKm)
	lat := math.Asin(clamp(cosC*p.sinLat0+v.Y*sinC*p.cosLat0/rho, -1, 1))
	lng := p.lng0 + math.Atan2(v.X*sinC, rho*p.cosLat0*cosC-v.Y*p.sinLat0*sinC)

	return Position{normalizeLng(toDeg(lng)), toDeg(lat)}
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}

func normalizeLng(lng float64) float64 {
	for lng > 180 {
		lng -= 360
	}
	for lng < -180 {
		lng += 360
	}
	return lng
}
