package site

import (
	"time"

	"github.com/woozymasta/rpasplan/internal/geo"

	"github.com/google/uuid"
)

// Flight plan defaults for new sites. With them the contingency buffer is
// 300 m and the ground risk buffer 120 m.
const (
	DefaultMaxAltitudeAGL      = 120.0
	DefaultAircraftMaxSpeed    = 20.0
	DefaultReactionTimeSeconds = 15.0
)

// NewID returns a new time ordered unique identifier.
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

func now() time.Time {
	return time.Now().UTC()
}

// NewMapElement creates an element with a fresh ID and timestamps.
func NewMapElement(t ElementType, g geo.Geometry, props Properties) *MapElement {
	ts := now()
	return &MapElement{
		ID:          NewID(),
		ElementType: t,
		Geometry:    g,
		Properties:  props,
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}
}

// NewMarker creates a point element.
func NewMarker(t ElementType, lng, lat float64, label string) *MapElement {
	return NewMapElement(t, geo.NewPoint(lng, lat), Properties{Label: label, Color: DefaultColor(t)})
}

// NewPolygonElement creates a polygon element from an outer ring.
func NewPolygonElement(t ElementType, ring []geo.Position, label string) *MapElement {
	return NewMapElement(t, geo.NewPolygon(ring), Properties{
		Label:     label,
		Color:     DefaultColor(t),
		FillColor: DefaultColor(t),
		Opacity:   0.2,
	})
}

// NewLineElement creates a line element.
func NewLineElement(t ElementType, points []geo.Position, label string) *MapElement {
	return NewMapElement(t, geo.NewLine(points), Properties{Label: label, Color: DefaultColor(t), StrokeWidth: 3})
}

// NewObstacle creates a point obstacle.
func NewObstacle(lng, lat float64, obstacleType string, height, radius float64) *Obstacle {
	return &Obstacle{
		MapElement:   *NewMarker(TypeObstacle, lng, lat, obstacleType),
		ObstacleType: obstacleType,
		Height:       height,
		Radius:       radius,
	}
}

// NewMusterPoint creates a muster point.
func NewMusterPoint(lng, lat float64, label string, capacity int, primary bool) *MusterPoint {
	return &MusterPoint{
		MapElement: *NewMarker(TypeMusterPoint, lng, lat, label),
		Capacity:   capacity,
		IsPrimary:  primary,
	}
}

// NewEvacuationRoute creates an evacuation route.
func NewEvacuationRoute(points []geo.Position, label, surface string, minutes float64) *EvacuationRoute {
	return &EvacuationRoute{
		MapElement:           *NewLineElement(TypeEvacuationRoute, points, label),
		SurfaceType:          surface,
		EstimatedTimeMinutes: minutes,
	}
}

// DefaultColor returns the display colour used for an element type.
func DefaultColor(t ElementType) string {
	switch t {
	case TypeSiteLocation:
		return "#2563eb"
	case TypeSiteBoundary:
		return "#1e40af"
	case TypeObstacle:
		return "#dc2626"
	case TypeLaunchPoint:
		return "#16a34a"
	case TypeRecoveryPoint:
		return "#0891b2"
	case TypePilotPosition:
		return "#7c3aed"
	case TypeFlightGeography:
		return "#22c55e"
	case TypeContingencyVolume:
		return "#f59e0b"
	case TypeGroundRiskBuffer:
		return "#ef4444"
	case TypeMusterPoint:
		return "#059669"
	case TypeEvacuationRoute:
		return "#ea580c"
	case TypeMissionArea:
		return "#6366f1"
	}
	return "#6b7280"
}

// DefaultSiteMapData returns empty map layers. Collections are non-nil so
// they encode as empty arrays.
func DefaultSiteMapData() SiteMapData {
	return SiteMapData{
		SiteSurvey: SiteSurveyLayer{Obstacles: []*Obstacle{}},
		Emergency: EmergencyLayer{
			MusterPoints:     []*MusterPoint{},
			EvacuationRoutes: []*EvacuationRoute{},
		},
	}
}

// DefaultFlightPlan returns the flight plan parameters of a new site.
func DefaultFlightPlan() FlightPlanInfo {
	return FlightPlanInfo{
		OperationType:       "VLOS",
		MaxAltitudeAGL:      DefaultMaxAltitudeAGL,
		AircraftMaxSpeed:    DefaultAircraftMaxSpeed,
		ReactionTimeSeconds: DefaultReactionTimeSeconds,
		VLOS:                true,
	}
}

// SiteOption customizes a site built by NewDefaultSite.
type SiteOption func(*Site)

// WithProjectID sets the owning project.
func WithProjectID(id string) SiteOption {
	return func(s *Site) { s.ProjectID = id }
}

// WithOrder sets the display order of the site within its project.
func WithOrder(order int) SiteOption {
	return func(s *Site) { s.Order = order }
}

// WithFlightPlan overrides the default flight parameters.
func WithFlightPlan(fp FlightPlanInfo) SiteOption {
	return func(s *Site) { s.FlightPlan = fp }
}

// NewDefaultSite returns a new draft site with empty sections.
func NewDefaultSite(name string, opts ...SiteOption) *Site {
	ts := now()
	s := &Site{
		ID:         NewID(),
		Name:       name,
		Status:     StatusDraft,
		MapData:    DefaultSiteMapData(),
		FlightPlan: DefaultFlightPlan(),
		Emergency:  EmergencyInfo{Contacts: []Contact{}},
		Missions:   []*Mission{},
		CreatedAt:  ts,
		UpdatedAt:  ts,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}
