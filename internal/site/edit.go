package site

import (
	"errors"
	"fmt"

	"github.com/woozymasta/rpasplan/internal/geo"
)

var (
	// ErrNotSingleSlot is returned by SetElement for collection element types.
	ErrNotSingleSlot = errors.New("element type is not a single slot")

	// ErrNotCollection is returned by AddElement for single slot element types.
	ErrNotCollection = errors.New("element type is not a collection")

	// ErrUnknownElementType is returned for element types without a map data slot.
	ErrUnknownElementType = errors.New("unknown element type")
)

// LayerOf returns the map data layer an element type belongs to.
func LayerOf(t ElementType) string {
	switch t {
	case TypeSiteLocation, TypeSiteBoundary, TypeObstacle:
		return LayerSiteSurvey
	case TypeLaunchPoint, TypeRecoveryPoint, TypePilotPosition,
		TypeFlightGeography, TypeContingencyVolume, TypeGroundRiskBuffer:
		return LayerFlightPlan
	case TypeMusterPoint, TypeEvacuationRoute:
		return LayerEmergency
	}
	return ""
}

// singleSlot returns the storage of a single slot element type.
func (d *SiteMapData) singleSlot(t ElementType) **MapElement {
	switch t {
	case TypeSiteLocation:
		return &d.SiteSurvey.SiteLocation
	case TypeSiteBoundary:
		return &d.SiteSurvey.SiteBoundary
	case TypeLaunchPoint:
		return &d.FlightPlan.LaunchPoint
	case TypeRecoveryPoint:
		return &d.FlightPlan.RecoveryPoint
	case TypePilotPosition:
		return &d.FlightPlan.PilotPosition
	case TypeFlightGeography:
		return &d.FlightPlan.FlightGeography
	case TypeContingencyVolume:
		return &d.FlightPlan.ContingencyVolume
	case TypeGroundRiskBuffer:
		return &d.FlightPlan.GroundRiskBuffer
	}
	return nil
}

// Touch bumps the update timestamp.
func (s *Site) Touch() {
	s.UpdatedAt = now()
}

// SetElement places el into its single slot, replacing any previous element.
// Use ClearElement to empty a slot.
func (s *Site) SetElement(el *MapElement) error {
	if el == nil {
		return fmt.Errorf("%w: nil element", ErrUnknownElementType)
	}
	slot := s.MapData.singleSlot(el.ElementType)
	if slot == nil {
		if LayerOf(el.ElementType) != "" {
			return fmt.Errorf("%w: %s", ErrNotSingleSlot, el.ElementType)
		}
		return fmt.Errorf("%w: %s", ErrUnknownElementType, el.ElementType)
	}
	el.UpdatedAt = now()
	*slot = el
	s.Touch()
	return nil
}

// ClearElement empties a single slot.
func (s *Site) ClearElement(t ElementType) error {
	slot := s.MapData.singleSlot(t)
	if slot == nil {
		return fmt.Errorf("%w: %s", ErrNotSingleSlot, t)
	}
	*slot = nil
	s.Touch()
	return nil
}

// AddObstacle appends an obstacle.
func (s *Site) AddObstacle(o *Obstacle) {
	s.MapData.SiteSurvey.Obstacles = append(s.MapData.SiteSurvey.Obstacles, o)
	s.Touch()
}

// AddMusterPoint appends a muster point.
func (s *Site) AddMusterPoint(m *MusterPoint) {
	s.MapData.Emergency.MusterPoints = append(s.MapData.Emergency.MusterPoints, m)
	s.Touch()
}

// AddEvacuationRoute appends an evacuation route.
func (s *Site) AddEvacuationRoute(r *EvacuationRoute) {
	s.MapData.Emergency.EvacuationRoutes = append(s.MapData.Emergency.EvacuationRoutes, r)
	s.Touch()
}

// AddElement appends a plain element to the collection matching its type.
func (s *Site) AddElement(el *MapElement) error {
	if el == nil {
		return fmt.Errorf("%w: nil element", ErrUnknownElementType)
	}
	switch el.ElementType {
	case TypeObstacle:
		s.AddObstacle(&Obstacle{MapElement: *el})
	case TypeMusterPoint:
		s.AddMusterPoint(&MusterPoint{MapElement: *el})
	case TypeEvacuationRoute:
		s.AddEvacuationRoute(&EvacuationRoute{MapElement: *el})
	default:
		if s.MapData.singleSlot(el.ElementType) != nil {
			return fmt.Errorf("%w: %s", ErrNotCollection, el.ElementType)
		}
		return fmt.Errorf("%w: %s", ErrUnknownElementType, el.ElementType)
	}
	return nil
}

// RemoveElement deletes the element with the given ID from any slot,
// mission areas included. It reports whether an element was removed.
func (s *Site) RemoveElement(id string) bool {
	d := &s.MapData
	for _, t := range singleSlotTypes {
		slot := d.singleSlot(t)
		if *slot != nil && (*slot).ID == id {
			*slot = nil
			s.Touch()
			return true
		}
	}

	for i, o := range d.SiteSurvey.Obstacles {
		if o != nil && o.ID == id {
			d.SiteSurvey.Obstacles = append(d.SiteSurvey.Obstacles[:i], d.SiteSurvey.Obstacles[i+1:]...)
			s.Touch()
			return true
		}
	}
	for i, m := range d.Emergency.MusterPoints {
		if m != nil && m.ID == id {
			d.Emergency.MusterPoints = append(d.Emergency.MusterPoints[:i], d.Emergency.MusterPoints[i+1:]...)
			s.Touch()
			return true
		}
	}
	for i, r := range d.Emergency.EvacuationRoutes {
		if r != nil && r.ID == id {
			d.Emergency.EvacuationRoutes = append(d.Emergency.EvacuationRoutes[:i], d.Emergency.EvacuationRoutes[i+1:]...)
			s.Touch()
			return true
		}
	}
	for _, m := range s.Missions {
		if m != nil && m.Area != nil && m.Area.ID == id {
			m.Area = nil
			m.UpdatedAt = now()
			s.Touch()
			return true
		}
	}
	return false
}

// FindElement looks up a map element of the site by ID, mission areas included.
func (s *Site) FindElement(id string) *MapElement {
	for _, el := range s.Elements() {
		if el.ID == id {
			return el
		}
	}
	return nil
}

var singleSlotTypes = []ElementType{
	TypeSiteLocation,
	TypeSiteBoundary,
	TypeLaunchPoint,
	TypeRecoveryPoint,
	TypePilotPosition,
	TypeFlightGeography,
	TypeContingencyVolume,
	TypeGroundRiskBuffer,
}

// Elements lists every populated map element of the site in layer order,
// followed by mission areas. The pointers refer to the site's own data.
func (s *Site) Elements() []*MapElement {
	d := &s.MapData
	var out []*MapElement

	add := func(el *MapElement) {
		if el != nil {
			out = append(out, el)
		}
	}

	add(d.SiteSurvey.SiteLocation)
	add(d.SiteSurvey.SiteBoundary)
	for _, o := range d.SiteSurvey.Obstacles {
		if o != nil {
			add(&o.MapElement)
		}
	}

	add(d.FlightPlan.LaunchPoint)
	add(d.FlightPlan.RecoveryPoint)
	add(d.FlightPlan.PilotPosition)
	add(d.FlightPlan.FlightGeography)
	add(d.FlightPlan.ContingencyVolume)
	add(d.FlightPlan.GroundRiskBuffer)

	for _, m := range d.Emergency.MusterPoints {
		if m != nil {
			add(&m.MapElement)
		}
	}
	for _, r := range d.Emergency.EvacuationRoutes {
		if r != nil {
			add(&r.MapElement)
		}
	}

	for _, m := range s.Missions {
		if m != nil {
			add(m.Area)
		}
	}

	return out
}

// AddMission attaches a mission to the site.
func (s *Site) AddMission(m *Mission) {
	s.Missions = append(s.Missions, m)
	s.Touch()
}

// SetMissionArea sets the area polygon of a mission.
func (m *Mission) SetMissionArea(ring []geo.Position) *MapElement {
	m.Area = NewPolygonElement(TypeMissionArea, ring, m.Name)
	m.UpdatedAt = now()
	return m.Area
}
