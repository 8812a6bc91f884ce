// Package geo handles geographic data structures, measurements and buffering.
package geo

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"gopkg.in/yaml.v3"
)

// GeometryType is the GeoJSON geometry type name.
type GeometryType string

// Supported geometry types.
const (
	PointType      GeometryType = "Point"
	PolygonType    GeometryType = "Polygon"
	LineStringType GeometryType = "LineString"
)

// Position is a GeoJSON position: [Lon, Lat] or [Lon, Lat, Alt].
type Position []float64

// Lng returns the longitude or NaN when the position is incomplete.
func (p Position) Lng() float64 {
	if len(p) < 2 {
		return math.NaN()
	}
	return p[0]
}

// Lat returns the latitude or NaN when the position is incomplete.
func (p Position) Lat() float64 {
	if len(p) < 2 {
		return math.NaN()
	}
	return p[1]
}

// Alt returns the altitude and whether one is present.
func (p Position) Alt() (float64, bool) {
	if len(p) < 3 {
		return 0, false
	}
	return p[2], true
}

// Valid reports whether the position holds finite in-range coordinates.
func (p Position) Valid() bool {
	if len(p) < 2 {
		return false
	}
	lng, lat := p[0], p[1]
	if math.IsNaN(lng) || math.IsNaN(lat) || math.IsInf(lng, 0) || math.IsInf(lat, 0) {
		return false
	}
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}

// Orb drops the altitude and returns the planar point.
func (p Position) Orb() orb.Point {
	return orb.Point{p.Lng(), p.Lat()}
}

// LatLng is a plain latitude/longitude pair used by measurement helpers.
type LatLng struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lng float64 `json:"lng" yaml:"lng"`
}

// LatLng converts the position into a LatLng.
func (p Position) LatLng() LatLng {
	return LatLng{Lat: p.Lat(), Lng: p.Lng()}
}

// Geometry is a GeoJSON geometry restricted to Point, Polygon and LineString.
// Only the field matching Type is populated.
type Geometry struct {
	Type  GeometryType
	Point Position
	Line  []Position
	Rings [][]Position
}

// NewPoint builds a Point geometry. An optional altitude may be passed.
func NewPoint(lng, lat float64, alt ...float64) Geometry {
	p := Position{lng, lat}
	if len(alt) > 0 {
		p = append(p, alt[0])
	}
	return Geometry{Type: PointType, Point: p}
}

// NewPolygon builds a Polygon geometry from a single outer ring.
func NewPolygon(ring []Position) Geometry {
	return Geometry{Type: PolygonType, Rings: [][]Position{ring}}
}

// NewLine builds a LineString geometry.
func NewLine(points []Position) Geometry {
	return Geometry{Type: LineStringType, Line: points}
}

// OuterRing returns the first ring of a polygon, nil for other types.
func (g Geometry) OuterRing() []Position {
	if g.Type != PolygonType || len(g.Rings) == 0 {
		return nil
	}
	return g.Rings[0]
}

// Positions lists every coordinate held by the geometry.
func (g Geometry) Positions() []Position {
	switch g.Type {
	case PointType:
		if g.Point == nil {
			return nil
		}
		return []Position{g.Point}
	case LineStringType:
		return g.Line
	case PolygonType:
		var out []Position
		for _, r := range g.Rings {
			out = append(out, r...)
		}
		return out
	}
	return nil
}

// IsEmpty reports whether the geometry has no usable coordinates.
func (g Geometry) IsEmpty() bool {
	for _, p := range g.Positions() {
		if p.Valid() {
			return false
		}
	}
	return true
}

// Bound returns the bounding box of the geometry.
// The second value is false when there is nothing to bound.
func (g Geometry) Bound() (Bounds, bool) {
	var b Bounds
	ok := false
	for _, p := range g.Positions() {
		if !p.Valid() {
			continue
		}
		b = b.extend(p.Orb(), ok)
		ok = true
	}
	return b, ok
}

// Orb converts the geometry for use with orb and orb/geojson.
func (g Geometry) Orb() orb.Geometry {
	switch g.Type {
	case PointType:
		return g.Point.Orb()
	case LineStringType:
		ls := make(orb.LineString, 0, len(g.Line))
		for _, p := range g.Line {
			ls = append(ls, p.Orb())
		}
		return ls
	case PolygonType:
		poly := make(orb.Polygon, 0, len(g.Rings))
		for _, r := range g.Rings {
			ring := make(orb.Ring, 0, len(r)+1)
			for _, p := range r {
				ring = append(ring, p.Orb())
			}
			// GeoJSON rings are closed on the wire
			if len(ring) > 0 && !ring.Closed() {
				ring = append(ring, ring[0])
			}
			poly = append(poly, ring)
		}
		return poly
	}
	return nil
}

// Clone returns a deep copy of the geometry.
func (g Geometry) Clone() Geometry {
	out := Geometry{Type: g.Type}
	if g.Point != nil {
		out.Point = append(Position(nil), g.Point...)
	}
	if g.Line != nil {
		out.Line = clonePositions(g.Line)
	}
	if g.Rings != nil {
		out.Rings = make([][]Position, len(g.Rings))
		for i, r := range g.Rings {
			out.Rings[i] = clonePositions(r)
		}
	}
	return out
}

func clonePositions(in []Position) []Position {
	out := make([]Position, len(in))
	for i, p := range in {
		out[i] = append(Position(nil), p...)
	}
	return out
}

// geometryWire is the GeoJSON form of Geometry.
type geometryWire struct {
	Type        GeometryType    `json:"type" yaml:"type"`
	Coordinates json.RawMessage `json:"coordinates" yaml:"-"`
}

func (g Geometry) coordinates() any {
	switch g.Type {
	case PointType:
		return g.Point
	case LineStringType:
		return g.Line
	case PolygonType:
		return g.Rings
	}
	return nil
}

// MarshalJSON encodes the geometry as GeoJSON.
func (g Geometry) MarshalJSON() ([]byte, error) {
	coords, err := json.Marshal(g.coordinates())
	if err != nil {
		return nil, err
	}
	return json.Marshal(geometryWire{Type: g.Type, Coordinates: coords})
}

// UnmarshalJSON decodes a GeoJSON geometry.
func (g *Geometry) UnmarshalJSON(data []byte) error {
	var w geometryWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	*g = Geometry{Type: w.Type}
	if len(w.Coordinates) == 0 || string(w.Coordinates) == "null" {
		return nil
	}

	if w.Type == "" {
		t, err := inferGeometryType(w.Coordinates)
		if err != nil || t == "" {
			return err
		}
		g.Type = t
	}

	switch g.Type {
	case PointType:
		return json.Unmarshal(w.Coordinates, &g.Point)
	case LineStringType:
		return json.Unmarshal(w.Coordinates, &g.Line)
	case PolygonType:
		return json.Unmarshal(w.Coordinates, &g.Rings)
	default:
		return fmt.Errorf("unsupported geometry type %q", g.Type)
	}
}

// inferGeometryType guesses the type of an untagged geometry from the
// nesting depth of its coordinates. Empty coordinates yield an empty type.
func inferGeometryType(coords json.RawMessage) (GeometryType, error) {
	depth := 0
	for _, c := range coords {
		switch c {
		case ' ', '\t', '\n', '\r':
			continue
		case '[':
			depth++
			continue
		case ']':
			return "", nil
		}
		break
	}

	switch depth {
	case 1:
		return PointType, nil
	case 2:
		return LineStringType, nil
	case 3:
		return PolygonType, nil
	}
	return "", fmt.Errorf("cannot infer geometry type from coordinates nested %d deep", depth)
}

// MarshalYAML encodes the geometry with the same layout as GeoJSON.
func (g Geometry) MarshalYAML() (interface{}, error) {
	return struct {
		Type        GeometryType `yaml:"type"`
		Coordinates any          `yaml:"coordinates"`
	}{g.Type, g.coordinates()}, nil
}

// UnmarshalYAML decodes the geometry by way of its JSON form.
func (g *Geometry) UnmarshalYAML(value *yaml.Node) error {
	var raw map[string]interface{}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return err
	}
	return g.UnmarshalJSON(data)
}
