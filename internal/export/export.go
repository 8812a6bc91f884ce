// Package export converts sites into GeoJSON feature collections.
package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/woozymasta/rpasplan/internal/site"

	"github.com/paulmach/orb/geojson"
	"github.com/rs/zerolog/log"
	"github.com/tdewolff/minify/v2"
	jsonmin "github.com/tdewolff/minify/v2/json"
	"gopkg.in/yaml.v3"
)

// Format is an output encoding.
type Format string

// Supported formats.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

const geoJSONMediaType = "application/json"

// FeatureCollection flattens every map element of a site into a feature.
// Element properties are kept and tagged with id, elementType, layer and
// the site ID. Point altitude is exposed as the altitude property.
func FeatureCollection(s *site.Site) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	if s == nil {
		return fc
	}

	for _, el := range s.Elements() {
		if el.Geometry.IsEmpty() {
			continue
		}

		f := geojson.NewFeature(el.Geometry.Orb())
		f.ID = el.ID
		f.Properties = featureProperties(el)
		f.Properties["siteId"] = s.ID
		if alt, ok := el.Geometry.Point.Alt(); ok {
			f.Properties["altitude"] = alt
		}

		fc.Append(f)
	}

	for _, o := range s.MapData.SiteSurvey.Obstacles {
		if o == nil {
			continue
		}
		for _, f := range fc.Features {
			if f.ID == o.ID {
				f.Properties["obstacleType"] = o.ObstacleType
				f.Properties["height"] = o.Height
				f.Properties["radius"] = o.Radius
			}
		}
	}

	return fc
}

func featureProperties(el *site.MapElement) geojson.Properties {
	props := geojson.Properties{}

	if data, err := json.Marshal(el.Properties); err == nil {
		if err := json.Unmarshal(data, &props); err != nil {
			log.Warn().Err(err).Str("element", el.ID).Msg("Failed to flatten element properties")
		}
	}

	props["id"] = el.ID
	props["elementType"] = string(el.ElementType)
	if layer := site.LayerOf(el.ElementType); layer != "" {
		props["layer"] = layer
	}

	return props
}

// Encode serializes a feature collection. Minification applies to JSON only.
func Encode(fc *geojson.FeatureCollection, format Format, minified bool) ([]byte, error) {
	data, err := json.Marshal(fc)
	if err != nil {
		return nil, err
	}

	switch format {
	case FormatYAML:
		var doc any
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
		return yaml.Marshal(doc)

	case FormatJSON, "":
		if minified {
			m := minify.New()
			m.AddFunc(geoJSONMediaType, jsonmin.Minify)
			return m.Bytes(geoJSONMediaType, data)
		}

		var buf bytes.Buffer
		if err := json.Indent(&buf, data, "", "  "); err != nil {
			return nil, err
		}
		buf.WriteByte('\n')
		return buf.Bytes(), nil
	}

	return nil, fmt.Errorf("unsupported format %q", format)
}

// WriteFile encodes a feature collection into path, creating parent directories.
func WriteFile(path string, fc *geojson.FeatureCollection, format Format, minified bool) error {
	data, err := Encode(fc, format, minified)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
