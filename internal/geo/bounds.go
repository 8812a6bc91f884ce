package geo

import (
	"encoding/json"

	"github.com/paulmach/orb"
)

// Bounds is an axis aligned lon/lat bounding box.
// It encodes as [[minLng, minLat], [maxLng, maxLat]].
type Bounds struct {
	orb.Bound
}

// NewBounds builds bounds from two corners.
func NewBounds(minLng, minLat, maxLng, maxLat float64) Bounds {
	return Bounds{orb.Bound{Min: orb.Point{minLng, minLat}, Max: orb.Point{maxLng, maxLat}}}
}

func (b Bounds) extend(p orb.Point, initialized bool) Bounds {
	if !initialized {
		return Bounds{p.Bound()}
	}
	return Bounds{b.Bound.Extend(p)}
}

// Union returns bounds that cover both b and other.
func (b Bounds) Union(other Bounds) Bounds {
	return Bounds{b.Bound.Union(other.Bound)}
}

// StrictlyContains reports whether other lies inside b without touching its edges.
func (b Bounds) StrictlyContains(other Bounds) bool {
	return b.Min[0] < other.Min[0] && b.Min[1] < other.Min[1] &&
		b.Max[0] > other.Max[0] && b.Max[1] > other.Max[1]
}

// Corners returns [[minLng, minLat], [maxLng, maxLat]].
func (b Bounds) Corners() [2][2]float64 {
	return [2][2]float64{{b.Min[0], b.Min[1]}, {b.Max[0], b.Max[1]}}
}

// Center returns the middle of the box.
func (b Bounds) Center() Position {
	c := b.Bound.Center()
	return Position{c[0], c[1]}
}

// MarshalJSON encodes the corner pair form.
func (b Bounds) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.Corners())
}

// UnmarshalJSON decodes the corner pair form.
func (b *Bounds) UnmarshalJSON(data []byte) error {
	var c [2][2]float64
	if err := json.Unmarshal(data, &c); err != nil {
		return err
	}
	*b = NewBounds(c[0][0], c[0][1], c[1][0], c[1][1])
	return nil
}

// MarshalYAML encodes the corner pair form.
func (b Bounds) MarshalYAML() (interface{}, error) {
	return b.Corners(), nil
}
