package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/woozymasta/rpasplan/internal/geo"
	"github.com/woozymasta/rpasplan/internal/site"

	"github.com/matryer/is"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"gopkg.in/yaml.v3"
)

func exportSite() *site.Site {
	s := site.NewDefaultSite("Export")
	_ = s.SetElement(site.NewMapElement(site.TypeLaunchPoint, geo.NewPoint(-123.116, 49.284, 12), site.Properties{Label: "Launch"}))
	_ = s.SetElement(site.NewPolygonElement(site.TypeFlightGeography, []geo.Position{
		{-123.12, 49.28}, {-123.11, 49.28}, {-123.11, 49.29}, {-123.12, 49.29},
	}, "Flight Geography"))
	s.AddObstacle(site.NewObstacle(-123.113, 49.286, "mast", 30, 4))
	return s
}

func findFeature(fc *geojson.FeatureCollection, elementType site.ElementType) *geojson.Feature {
	for _, f := range fc.Features {
		if f.Properties["elementType"] == string(elementType) {
			return f
		}
	}
	return nil
}

func TestFeatureCollection(t *testing.T) {
	is := is.New(t)

	s := exportSite()
	fc := FeatureCollection(s)
	is.Equal(len(fc.Features), 3)

	launch := findFeature(fc, site.TypeLaunchPoint)
	is.True(launch != nil)
	is.Equal(launch.Geometry, orb.Point{-123.116, 49.284})
	is.Equal(launch.Properties["altitude"], 12.0)
	is.Equal(launch.Properties["layer"], site.LayerFlightPlan)
	is.Equal(launch.Properties["label"], "Launch")
	is.Equal(launch.Properties["siteId"], s.ID)

	fg := findFeature(fc, site.TypeFlightGeography)
	poly, ok := fg.Geometry.(orb.Polygon)
	is.True(ok)
	is.True(poly[0].Closed())

	obstacle := findFeature(fc, site.TypeObstacle)
	is.Equal(obstacle.Properties["height"], 30.0)
	is.Equal(obstacle.Properties["obstacleType"], "mast")

	is.Equal(len(FeatureCollection(nil).Features), 0)
}

func TestEncodeFormats(t *testing.T) {
	is := is.New(t)

	fc := FeatureCollection(exportSite())

	pretty, err := Encode(fc, FormatJSON, false)
	is.NoErr(err)
	is.True(strings.Contains(string(pretty), "\n  "))

	small, err := Encode(fc, FormatJSON, true)
	is.NoErr(err)
	is.True(len(small) < len(pretty))
	is.True(!strings.Contains(string(small), "\n"))

	back, err := geojson.UnmarshalFeatureCollection(small)
	is.NoErr(err)
	is.Equal(len(back.Features), 3)

	y, err := Encode(fc, FormatYAML, false)
	is.NoErr(err)
	var doc map[string]any
	is.NoErr(yaml.Unmarshal(y, &doc))
	is.Equal(doc["type"], "FeatureCollection")

	_, err = Encode(fc, Format("xml"), false)
	is.True(err != nil)
}

func TestWriteFile(t *testing.T) {
	is := is.New(t)

	path := filepath.Join(t.TempDir(), "nested", "site.geojson")
	is.NoErr(WriteFile(path, FeatureCollection(exportSite()), FormatJSON, true))

	data, err := os.ReadFile(path)
	is.NoErr(err)

	var raw map[string]any
	is.NoErr(json.Unmarshal(data, &raw))
	is.Equal(raw["type"], "FeatureCollection")
}
