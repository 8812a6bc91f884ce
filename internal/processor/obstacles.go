package processor

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/woozymasta/rpasplan/internal/geo"
	"github.com/woozymasta/rpasplan/internal/site"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
	"github.com/rs/zerolog/log"
)

// FetchObstacles downloads a GeoJSON feature collection of obstacle points.
// Recognized properties are name, type, height and radius (meters).
// Features that are not points are skipped.
func FetchObstacles(ctx context.Context, client *http.Client, url string) ([]*site.Obstacle, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	fc, err := geojson.UnmarshalFeatureCollection(body)
	if err != nil {
		return nil, err
	}

	out := make([]*site.Obstacle, 0, len(fc.Features))
	for _, f := range fc.Features {
		if f == nil || f.Geometry == nil {
			continue
		}
		pt, ok := f.Geometry.(orb.Point)
		if !ok {
			log.Trace().Str("type", f.Geometry.GeoJSONType()).Msg("Skipping non-point obstacle feature")
			continue
		}

		o := site.NewObstacle(pt.Lon(), pt.Lat(),
			strings.ToLower(f.Properties.MustString("type", "")),
			f.Properties.MustFloat64("height", 0),
			f.Properties.MustFloat64("radius", 0))
		if name := f.Properties.MustString("name", ""); name != "" {
			o.Properties.Label = name
		}

		out = append(out, o)
	}

	return out, nil
}

// MergeObstacles copies every obstacle that lies inside the site boundary into
// the site and returns how many were added. Sites without a boundary polygon
// are left unchanged, as are obstacles already present at the same position.
func MergeObstacles(s *site.Site, obstacles []*site.Obstacle) int {
	boundary := s.MapData.SiteSurvey.SiteBoundary
	if boundary == nil || len(obstacles) == 0 {
		return 0
	}

	poly, ok := boundary.Geometry.Orb().(orb.Polygon)
	if !ok {
		return 0
	}

	added := 0
	for _, o := range obstacles {
		if o == nil || !o.Geometry.Point.Valid() {
			continue
		}

		pt := o.Geometry.Point.Orb()
		if !planar.PolygonContains(poly, pt) || hasObstacleAt(s, o.Geometry.Point, o.ObstacleType) {
			continue
		}

		c := site.NewObstacle(pt.Lon(), pt.Lat(), o.ObstacleType, o.Height, o.Radius)
		c.Properties = o.Properties.Clone()
		s.AddObstacle(c)
		added++
	}

	return added
}

func hasObstacleAt(s *site.Site, p geo.Position, obstacleType string) bool {
	for _, o := range s.MapData.SiteSurvey.Obstacles {
		if o == nil || o.ObstacleType != obstacleType {
			continue
		}
		q := o.Geometry.Point
		if q.Valid() && q.Lng() == p.Lng() && q.Lat() == p.Lat() {
			return true
		}
	}
	return false
}
