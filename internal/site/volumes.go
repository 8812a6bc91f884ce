package site

import (
	"github.com/woozymasta/rpasplan/internal/geo"

	"github.com/rs/zerolog/log"
)

// SORAVolumes are the derived buffers around a flight geography.
// Either may be nil when it could not be generated.
type SORAVolumes struct {
	ContingencyVolume *MapElement `json:"contingencyVolume" yaml:"contingencyVolume"`
	GroundRiskBuffer  *MapElement `json:"groundRiskBuffer" yaml:"groundRiskBuffer"`
}

// CalculateDistance returns the great-circle distance between two points in meters.
func CalculateDistance(a, b geo.LatLng) float64 {
	return geo.Distance(a, b)
}

// CalculatePolygonArea returns the area of a polygon element in square meters.
// It reports false for a missing element or a ring under 3 positions.
func CalculatePolygonArea(polygon *MapElement) (float64, bool) {
	if polygon == nil {
		return 0, false
	}
	if len(polygon.Geometry.Rings) == 0 {
		return 0, false
	}
	return geo.PolygonArea(polygon.Geometry.Rings[0])
}

// ContingencyBufferDistance is the distance flown at max speed during the
// pilot reaction time.
func ContingencyBufferDistance(maxSpeed, reactionSeconds float64) float64 {
	if maxSpeed <= 0 || reactionSeconds <= 0 {
		return 0
	}
	return maxSpeed * reactionSeconds
}

// GroundRiskBufferDistance applies the 1:1 rule: horizontal expansion equals
// the maximum planned altitude.
func GroundRiskBufferDistance(maxAltitude float64) float64 {
	if maxAltitude <= 0 {
		return 0
	}
	return maxAltitude
}

// GenerateBufferPolygon buffers the outer ring of source by meters and wraps
// the result in a new element of the given type that records its source.
// It returns nil when the source has no usable ring, the distance is not
// positive or buffering fails.
func GenerateBufferPolygon(source *MapElement, meters float64, elementType ElementType) *MapElement {
	if source == nil || len(source.Geometry.OuterRing()) < 3 || !(meters > 0) {
		return nil
	}

	ring, err := geo.Buffer(source.Geometry.OuterRing(), meters)
	if err != nil {
		log.Error().
			Err(err).
			Str("source_id", source.ID).
			Str("element_type", string(elementType)).
			Float64("distance_m", meters).
			Msg("Failed to generate buffer polygon")
		return nil
	}

	el := NewPolygonElement(elementType, ring, bufferLabel(elementType))
	generated := el.CreatedAt
	el.Properties.SourcePolygonID = source.ID
	el.Properties.BufferDistance = meters
	el.Properties.GeneratedAt = &generated

	log.Debug().
		Str("id", el.ID).
		Str("source_id", source.ID).
		Str("element_type", string(elementType)).
		Float64("distance_m", meters).
		Int("vertices", len(ring)).
		Msg("Buffer polygon generated")

	return el
}

func bufferLabel(t ElementType) string {
	switch t {
	case TypeContingencyVolume:
		return "Contingency Volume"
	case TypeGroundRiskBuffer:
		return "Ground Risk Buffer"
	}
	return string(t)
}

// GenerateContingencyVolume buffers the flight geography by meters.
func GenerateContingencyVolume(flightGeography *MapElement, meters float64) *MapElement {
	return GenerateBufferPolygon(flightGeography, meters, TypeContingencyVolume)
}

// GenerateGroundRiskBuffer buffers source, normally the contingency volume, by meters.
func GenerateGroundRiskBuffer(source *MapElement, meters float64) *MapElement {
	return GenerateBufferPolygon(source, meters, TypeGroundRiskBuffer)
}

// GenerateSORAVolumes derives the contingency volume from the flight
// geography and the ground risk buffer from the contingency volume. The
// flight geography is used as ground risk source only when no contingency
// volume could be generated, so the ground risk buffer always encloses the
// contingency volume.
func GenerateSORAVolumes(flightGeography *MapElement, contingencyMeters, groundRiskMeters float64) SORAVolumes {
	cv := GenerateContingencyVolume(flightGeography, contingencyMeters)

	source := cv
	if source == nil {
		source = flightGeography
	}

	return SORAVolumes{
		ContingencyVolume: cv,
		GroundRiskBuffer:  GenerateGroundRiskBuffer(source, groundRiskMeters),
	}
}

// RegenerateSORAVolumes recomputes both volumes of a site from its flight
// geography and flight plan parameters and stores them in the flight plan
// layer. Volumes that cannot be generated are cleared.
func RegenerateSORAVolumes(s *Site) SORAVolumes {
	if s == nil {
		return SORAVolumes{}
	}

	fp := s.FlightPlan
	vols := GenerateSORAVolumes(
		s.MapData.FlightPlan.FlightGeography,
		ContingencyBufferDistance(fp.AircraftMaxSpeed, fp.ReactionTimeSeconds),
		GroundRiskBufferDistance(fp.MaxAltitudeAGL),
	)

	s.MapData.FlightPlan.ContingencyVolume = vols.ContingencyVolume
	s.MapData.FlightPlan.GroundRiskBuffer = vols.GroundRiskBuffer
	s.Touch()

	return vols
}
