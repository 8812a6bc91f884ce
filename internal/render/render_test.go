package render

import (
	"bytes"
	"errors"
	"image/color"
	"testing"

	"github.com/woozymasta/rpasplan/internal/geo"
	"github.com/woozymasta/rpasplan/internal/site"

	"github.com/chai2010/webp"
	"github.com/matryer/is"
)

var background = color.RGBA{0xff, 0xff, 0xff, 0xff}

func TestPreviewEmptySite(t *testing.T) {
	is := is.New(t)

	_, err := Preview(site.NewDefaultSite("Empty"), Options{})
	is.True(errors.Is(err, ErrNoGeometry))
}

func TestPreviewSingleMarkerIsCentered(t *testing.T) {
	is := is.New(t)

	s := site.NewDefaultSite("Marker")
	is.NoErr(s.SetElement(site.NewMarker(site.TypeLaunchPoint, -123.1, 49.28, "Launch")))

	img, err := Preview(s, Options{Width: 64, Height: 48, Background: "#fff"})
	is.NoErr(err)
	is.Equal(img.Bounds().Dx(), 64)
	is.Equal(img.Bounds().Dy(), 48)

	is.Equal(img.RGBAAt(32, 24), color.RGBA{0x16, 0xa3, 0x4a, 0xff})
	is.Equal(img.RGBAAt(0, 0), background)
}

func TestPreviewFillsPolygons(t *testing.T) {
	is := is.New(t)

	s := site.NewDefaultSite("Polygon")
	is.NoErr(s.SetElement(site.NewPolygonElement(site.TypeFlightGeography, []geo.Position{
		{-123.12, 49.28}, {-123.11, 49.28}, {-123.11, 49.29}, {-123.12, 49.29},
	}, "Flight Geography")))

	img, err := Preview(s, Options{Width: 100, Height: 100, Padding: 10, Background: "#ffffff"})
	is.NoErr(err)

	inside := img.RGBAAt(50, 50)
	is.True(inside != background)
	is.Equal(inside.A, uint8(0xff))
	is.Equal(img.RGBAAt(2, 2), background)
}

func TestPreviewRejectsBadBackground(t *testing.T) {
	is := is.New(t)

	s := site.NewDefaultSite("Marker")
	is.NoErr(s.SetElement(site.NewMarker(site.TypeLaunchPoint, 0, 0, "Launch")))

	_, err := Preview(s, Options{Background: "#12"})
	is.True(err != nil)
}

func TestParseColor(t *testing.T) {
	is := is.New(t)

	def := color.RGBA{1, 2, 3, 4}

	c, err := ParseColor("", def)
	is.NoErr(err)
	is.Equal(c, def)

	c, err = ParseColor("#22c55e", def)
	is.NoErr(err)
	is.Equal(c, color.RGBA{0x22, 0xc5, 0x5e, 0xff})

	c, err = ParseColor("f00", def)
	is.NoErr(err)
	is.Equal(c, color.RGBA{0xff, 0, 0, 0xff})

	_, err = ParseColor("#zzzzzz", def)
	is.True(err != nil)
}

func TestEncodeWebP(t *testing.T) {
	is := is.New(t)

	s := site.NewDefaultSite("Marker")
	is.NoErr(s.SetElement(site.NewMarker(site.TypeLaunchPoint, 10, 50, "Launch")))

	img, err := Preview(s, Options{Width: 32, Height: 32})
	is.NoErr(err)

	var buf bytes.Buffer
	is.NoErr(EncodeWebP(&buf, img, 0))

	decoded, err := webp.Decode(&buf)
	is.NoErr(err)
	is.Equal(decoded.Bounds().Dx(), 32)
	is.Equal(decoded.Bounds().Dy(), 32)
}
