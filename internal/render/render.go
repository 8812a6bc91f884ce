// Package render draws site previews.
package render

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/woozymasta/rpasplan/internal/geo"
	"github.com/woozymasta/rpasplan/internal/site"

	"github.com/chai2010/webp"
	"golang.org/x/image/vector"
)

// ErrNoGeometry is returned for sites without any drawable element.
var ErrNoGeometry = errors.New("site has no geometry")

// Options control the preview canvas.
type Options struct {
	Background string // hex color
	Width      int
	Height     int
	Padding    int
}

const (
	defaultSize        = 512
	defaultStrokeWidth = 2.0
	defaultOpacity     = 0.2
	markerRadius       = 5.0

	// spans below this are widened so single points stay centered (normalized mercator units)
	minSpan = 1e-7
)

// Preview renders every element of a site in Web Mercator, fitted to the canvas.
// Polygons are drawn first, then lines, then markers.
func Preview(s *site.Site, opts Options) (*image.RGBA, error) {
	b := site.SiteBounds(s)
	if b == nil {
		return nil, ErrNoGeometry
	}

	if opts.Width <= 0 {
		opts.Width = defaultSize
	}
	if opts.Height <= 0 {
		opts.Height = defaultSize
	}
	if opts.Padding < 0 || 2*opts.Padding >= min(opts.Width, opts.Height) {
		opts.Padding = 0
	}

	bg, err := ParseColor(opts.Background, color.RGBA{0xf8, 0xfa, 0xfc, 0xff})
	if err != nil {
		return nil, err
	}

	img := image.NewRGBA(image.Rect(0, 0, opts.Width, opts.Height))
	draw.Draw(img, img.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)

	c := newCanvas(img, b, opts.Padding)
	elements := s.Elements()

	for _, el := range elements {
		if el.Geometry.Type != geo.PolygonType {
			continue
		}
		fill, stroke := elementColors(el)
		for _, ring := range el.Geometry.Rings {
			c.fillPolygon(ring, fill)
			c.strokePath(ring, true, strokeWidth(el), stroke)
		}
	}

	for _, el := range elements {
		if el.Geometry.Type == geo.LineStringType {
			_, stroke := elementColors(el)
			c.strokePath(el.Geometry.Line, false, strokeWidth(el)+1, stroke)
		}
	}

	for _, m := range s.Missions {
		if m == nil || len(m.FlightPath.Waypoints) < 2 {
			continue
		}
		path := make([]geo.Position, 0, len(m.FlightPath.Waypoints))
		for _, wp := range m.FlightPath.Waypoints {
			if wp != nil && wp.Position.Valid() {
				path = append(path, wp.Position)
			}
		}
		c.strokePath(path, false, defaultStrokeWidth, color.RGBA{0x7c, 0x3a, 0xed, 0xff})
	}

	for _, el := range elements {
		if el.Geometry.Type == geo.PointType && el.Geometry.Point.Valid() {
			_, stroke := elementColors(el)
			c.marker(el.Geometry.Point, stroke)
		}
	}

	return img, nil
}

// EncodeWebP writes img as lossy WebP.
func EncodeWebP(w io.Writer, img image.Image, quality int) error {
	if quality <= 0 || quality > 100 {
		quality = 85
	}
	return webp.Encode(w, img, &webp.Options{Lossless: false, Quality: float32(quality)})
}

// ParseColor parses "#rgb" or "#rrggbb". An empty string yields def.
func ParseColor(s string, def color.RGBA) (color.RGBA, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if s == "" {
		return def, nil
	}
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return def, fmt.Errorf("invalid color %q", s)
	}

	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return def, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return color.RGBA{uint8(v >> 16), uint8(v >> 8), uint8(v), 0xff}, nil
}

func elementColors(el *site.MapElement) (fill, stroke color.RGBA) {
	def, _ := ParseColor(site.DefaultColor(el.ElementType), color.RGBA{0x33, 0x41, 0x55, 0xff})

	stroke, err := ParseColor(el.Properties.Color, def)
	if err != nil {
		stroke = def
	}
	fill, err = ParseColor(el.Properties.FillColor, stroke)
	if err != nil {
		fill = stroke
	}

	opacity := el.Properties.Opacity
	if opacity <= 0 || opacity > 1 {
		opacity = defaultOpacity
	}
	return premultiply(fill, opacity), stroke
}

func strokeWidth(el *site.MapElement) float64 {
	if el.Properties.StrokeWidth > 0 {
		return el.Properties.StrokeWidth
	}
	return defaultStrokeWidth
}

func premultiply(c color.RGBA, alpha float64) color.RGBA {
	return color.RGBA{
		R: uint8(float64(c.R) * alpha),
		G: uint8(float64(c.G) * alpha),
		B: uint8(float64(c.B) * alpha),
		A: uint8(255 * alpha),
	}
}

// canvas maps lon/lat onto image pixels.
type canvas struct {
	dst           *image.RGBA
	cx, cy        float64
	scale         float64
	offX, offY    float64
	width, height int
}

func newCanvas(dst *image.RGBA, b *geo.Bounds, padding int) *canvas {
	x0, y1 := geo.LonLatToMercator(b.Min[0], b.Min[1])
	x1, y0 := geo.LonLatToMercator(b.Max[0], b.Max[1])

	spanX := math.Max(x1-x0, minSpan)
	spanY := math.Max(y1-y0, minSpan)

	w := dst.Bounds().Dx()
	h := dst.Bounds().Dy()
	innerW := float64(w - 2*padding)
	innerH := float64(h - 2*padding)
	scale := math.Min(innerW/spanX, innerH/spanY)

	cx, cy := (x0+x1)/2, (y0+y1)/2
	return &canvas{
		dst:    dst,
		cx:     cx,
		cy:     cy,
		scale:  scale,
		offX:   float64(w) / 2,
		offY:   float64(h) / 2,
		width:  w,
		height: h,
	}
}

func (c *canvas) project(p geo.Position) (float32, float32) {
	x, y := geo.LonLatToMercator(p.Lng(), p.Lat())
	return float32(c.offX + (x-c.cx)*c.scale), float32(c.offY + (y-c.cy)*c.scale)
}

func (c *canvas) paint(r *vector.Rasterizer, col color.RGBA) {
	r.DrawOp = draw.Over
	r.Draw(c.dst, c.dst.Bounds(), image.NewUniform(col), image.Point{})
}

func (c *canvas) fillPolygon(ring []geo.Position, col color.RGBA) {
	if len(ring) < 3 {
		return
	}
	r := vector.NewRasterizer(c.width, c.height)
	for i, p := range ring {
		x, y := c.project(p)
		if i == 0 {
			r.MoveTo(x, y)
		} else {
			r.LineTo(x, y)
		}
	}
	r.ClosePath()
	c.paint(r, col)
}

// strokePath draws every segment as a quad of the given width.
func (c *canvas) strokePath(path []geo.Position, closed bool, width float64, col color.RGBA) {
	if len(path) < 2 {
		return
	}
	r := vector.NewRasterizer(c.width, c.height)
	half := float32(width / 2)

	segment := func(a, b geo.Position) {
		ax, ay := c.project(a)
		bx, by := c.project(b)
		dx, dy := bx-ax, by-ay
		l := float32(math.Hypot(float64(dx), float64(dy)))
		if l == 0 {
			return
		}
		nx, ny := -dy/l*half, dx/l*half
		r.MoveTo(ax+nx, ay+ny)
		r.LineTo(bx+nx, by+ny)
		r.LineTo(bx-nx, by-ny)
		r.LineTo(ax-nx, ay-ny)
		r.ClosePath()
	}

	for i := 1; i < len(path); i++ {
		segment(path[i-1], path[i])
	}
	if closed {
		segment(path[len(path)-1], path[0])
	}
	c.paint(r, col)
}

func (c *canvas) marker(p geo.Position, col color.RGBA) {
	x, y := c.project(p)
	r := vector.NewRasterizer(c.width, c.height)

	const steps = 16
	for i := 0; i <= steps; i++ {
		a := 2 * math.Pi * float64(i) / steps
		px := x + float32(markerRadius*math.Cos(a))
		py := y + float32(markerRadius*math.Sin(a))
		if i == 0 {
			r.MoveTo(px, py)
		} else {
			r.LineTo(px, py)
		}
	}
	r.ClosePath()
	c.paint(r, col)
}
