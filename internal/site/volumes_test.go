package site

import (
	"encoding/json"
	"testing"

	"github.com/woozymasta/rpasplan/internal/geo"

	"github.com/matryer/is"
)

func flightGeography() *MapElement {
	return NewPolygonElement(TypeFlightGeography, []geo.Position{
		{-123.12, 49.28},
		{-123.11, 49.28},
		{-123.11, 49.29},
		{-123.12, 49.29},
	}, "Flight Geography")
}

func TestCalculateDistance(t *testing.T) {
	is := is.New(t)

	a := geo.LatLng{Lat: 49.2827, Lng: -123.1207}
	b := geo.LatLng{Lat: 49.2827, Lng: -122.1207}

	d := CalculateDistance(a, b)
	is.Equal(d, CalculateDistance(b, a))
	is.Equal(CalculateDistance(a, a), 0.0)
	is.True(d > 71700 && d < 72700)
}

func TestCalculatePolygonArea(t *testing.T) {
	is := is.New(t)

	// geometry without type tag, two positions only
	degenerate := &MapElement{Geometry: geo.Geometry{Rings: [][]geo.Position{{{0, 0}, {1, 1}}}}}
	_, ok := CalculatePolygonArea(degenerate)
	is.True(!ok)

	_, ok = CalculatePolygonArea(nil)
	is.True(!ok)

	area, ok := CalculatePolygonArea(flightGeography())
	is.True(ok)
	is.True(area > 0)

	var untyped MapElement
	is.NoErr(json.Unmarshal([]byte(`{"geometry":{"coordinates":[[[0,0],[0.01,0],[0.01,0.01]]]}}`), &untyped))
	area, ok = CalculatePolygonArea(&untyped)
	is.True(ok)
	is.True(area > 0)
}

func TestGenerateBufferPolygonRejectsNonPositiveDistance(t *testing.T) {
	is := is.New(t)

	fg := flightGeography()
	is.True(GenerateBufferPolygon(fg, 0, TypeContingencyVolume) == nil)
	is.True(GenerateBufferPolygon(fg, -5, TypeContingencyVolume) == nil)
	is.True(GenerateBufferPolygon(nil, 100, TypeContingencyVolume) == nil)

	point := NewMarker(TypeLaunchPoint, -123.1, 49.2, "Launch")
	is.True(GenerateBufferPolygon(point, 100, TypeContingencyVolume) == nil)
}

func TestGenerateBufferPolygonRecordsProvenance(t *testing.T) {
	is := is.New(t)

	fg := flightGeography()
	grb := GenerateBufferPolygon(fg, 100, TypeGroundRiskBuffer)
	is.True(grb != nil)

	is.Equal(grb.ElementType, TypeGroundRiskBuffer)
	is.Equal(grb.Properties.SourcePolygonID, fg.ID)
	is.Equal(grb.Properties.BufferDistance, 100.0)
	is.True(grb.Properties.GeneratedAt != nil)
	is.True(grb.ID != fg.ID)
	is.Equal(grb.Geometry.Type, geo.PolygonType)
}

func TestGenerateBufferPolygonSwallowsSelfIntersection(t *testing.T) {
	is := is.New(t)

	bowTie := NewPolygonElement(TypeFlightGeography, []geo.Position{
		{0, 0}, {0.01, 0.01}, {0.01, 0}, {0, 0.01},
	}, "Bow tie")

	is.True(GenerateBufferPolygon(bowTie, 100, TypeContingencyVolume) == nil)
}

func TestGenerateSORAVolumesChainsSources(t *testing.T) {
	is := is.New(t)

	fg := flightGeography()
	vols := GenerateSORAVolumes(fg, 300, 120)

	is.True(vols.ContingencyVolume != nil)
	is.True(vols.GroundRiskBuffer != nil)
	is.Equal(vols.ContingencyVolume.Properties.SourcePolygonID, fg.ID)
	is.Equal(vols.GroundRiskBuffer.Properties.SourcePolygonID, vols.ContingencyVolume.ID)

	cvBound, _ := vols.ContingencyVolume.Geometry.Bound()
	grbBound, _ := vols.GroundRiskBuffer.Geometry.Bound()
	is.True(grbBound.StrictlyContains(cvBound))
}

func TestGenerateSORAVolumesFallsBackToFlightGeography(t *testing.T) {
	is := is.New(t)

	fg := flightGeography()
	vols := GenerateSORAVolumes(fg, 0, 120)

	is.True(vols.ContingencyVolume == nil)
	is.True(vols.GroundRiskBuffer != nil)
	is.Equal(vols.GroundRiskBuffer.Properties.SourcePolygonID, fg.ID)
}

func TestDefaultSiteSORAScenario(t *testing.T) {
	is := is.New(t)

	s := NewDefaultSite("Scenario")
	fg := flightGeography()
	is.NoErr(s.SetElement(fg))

	vols := GenerateSORAVolumes(s.MapData.FlightPlan.FlightGeography, 300, 120)
	is.True(vols.ContingencyVolume != nil)
	is.True(vols.GroundRiskBuffer != nil)

	fgBound, _ := fg.Geometry.Bound()
	cvBound, _ := vols.ContingencyVolume.Geometry.Bound()
	grbBound, _ := vols.GroundRiskBuffer.Geometry.Bound()
	is.True(cvBound.StrictlyContains(fgBound))
	is.True(grbBound.StrictlyContains(fgBound))
}

func TestRegenerateSORAVolumesUsesFlightPlan(t *testing.T) {
	is := is.New(t)

	s := NewDefaultSite("Regenerate")
	is.NoErr(s.SetElement(flightGeography()))

	vols := RegenerateSORAVolumes(s)
	is.True(vols.ContingencyVolume != nil)
	is.Equal(vols.ContingencyVolume.Properties.BufferDistance, DefaultAircraftMaxSpeed*DefaultReactionTimeSeconds)
	is.Equal(vols.GroundRiskBuffer.Properties.BufferDistance, DefaultMaxAltitudeAGL)
	is.Equal(s.MapData.FlightPlan.ContingencyVolume, vols.ContingencyVolume)

	// without flight geography both volumes are cleared
	is.NoErr(s.ClearElement(TypeFlightGeography))
	RegenerateSORAVolumes(s)
	is.True(s.MapData.FlightPlan.ContingencyVolume == nil)
	is.True(s.MapData.FlightPlan.GroundRiskBuffer == nil)
}

func TestBufferDistanceHelpers(t *testing.T) {
	is := is.New(t)

	is.Equal(ContingencyBufferDistance(20, 15), 300.0)
	is.Equal(ContingencyBufferDistance(0, 15), 0.0)
	is.Equal(GroundRiskBufferDistance(120), 120.0)
	is.Equal(GroundRiskBufferDistance(-1), 0.0)
}
