package site

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/woozymasta/rpasplan/internal/geo"

	orbgeo "github.com/paulmach/orb/geo"
)

// ErrWaypointOrder is returned when waypoint indexes are not contiguous from 0.
var ErrWaypointOrder = errors.New("waypoint indexes must be contiguous from 0")

// MissionType is the kind of flight a mission performs.
type MissionType string

// Mission types.
const (
	MissionMapping   MissionType = "mapping"
	MissionCorridor  MissionType = "corridor"
	MissionPoint     MissionType = "point"
	MissionPerimeter MissionType = "perimeter"
	MissionFreeform  MissionType = "freeform"
)

// WaypointAction is performed on arrival at a waypoint.
type WaypointAction string

// Waypoint actions.
const (
	ActionHover WaypointAction = "hover"
	ActionPhoto WaypointAction = "photo"
	ActionVideo WaypointAction = "video"
)

// Waypoint is a 3D point of a flight path.
// Position holds [lng, lat, altitude AGL].
type Waypoint struct {
	Speed          *float64       `json:"speed,omitempty" yaml:"speed,omitempty"`     // m/s override
	Heading        *float64       `json:"heading,omitempty" yaml:"heading,omitempty"` // degrees override
	ID             string         `json:"id" yaml:"id"`
	Action         WaypointAction `json:"action,omitempty" yaml:"action,omitempty"`
	Position       geo.Position   `json:"position" yaml:"position"`
	Index          int            `json:"index" yaml:"index"`
	ActionDuration float64        `json:"actionDuration,omitempty" yaml:"actionDuration,omitempty"` // seconds
}

// FlightPath is the ordered route of a mission.
type FlightPath struct {
	Waypoints     []*Waypoint `json:"waypoints" yaml:"waypoints"`
	CorridorWidth float64     `json:"corridorWidth,omitempty" yaml:"corridorWidth,omitempty"` // meters
}

// MissionSettings are camera and speed parameters.
type MissionSettings struct {
	Speed        float64 `json:"speed" yaml:"speed"`               // m/s
	FrontOverlap float64 `json:"frontOverlap" yaml:"frontOverlap"` // percent
	SideOverlap  float64 `json:"sideOverlap" yaml:"sideOverlap"`   // percent
}

// Mission is a named flight within a site. It is the only owner of a flight path.
type Mission struct {
	CreatedAt   time.Time       `json:"createdAt" yaml:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt" yaml:"updatedAt"`
	Area        *MapElement     `json:"area,omitempty" yaml:"area,omitempty"`
	ID          string          `json:"id" yaml:"id"`
	Name        string          `json:"name" yaml:"name"`
	MissionType MissionType     `json:"missionType" yaml:"missionType"`
	FlightPath  FlightPath      `json:"flightPath" yaml:"flightPath"`
	Settings    MissionSettings `json:"settings" yaml:"settings"`
	Altitude    float64         `json:"altitude" yaml:"altitude"` // meters AGL
}

// NewMission returns an empty mission with default settings.
func NewMission(name string, t MissionType) *Mission {
	ts := now()
	return &Mission{
		ID:          NewID(),
		Name:        name,
		MissionType: t,
		Altitude:    DefaultMaxAltitudeAGL,
		FlightPath:  FlightPath{Waypoints: []*Waypoint{}},
		Settings:    MissionSettings{Speed: 10, FrontOverlap: 75, SideOverlap: 65},
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}
}

// AddWaypoint appends a waypoint at the end of the flight path.
// A non-positive altitude falls back to the mission altitude.
func (m *Mission) AddWaypoint(lng, lat, altitude float64) *Waypoint {
	if altitude <= 0 {
		altitude = m.Altitude
	}
	wp := &Waypoint{
		ID:       NewID(),
		Index:    len(m.FlightPath.Waypoints),
		Position: geo.Position{lng, lat, altitude},
	}
	m.FlightPath.Waypoints = append(m.FlightPath.Waypoints, wp)
	m.UpdatedAt = now()
	return wp
}

// RemoveWaypoint drops a waypoint and closes the gap in the ordering.
func (m *Mission) RemoveWaypoint(id string) bool {
	for i, wp := range m.FlightPath.Waypoints {
		if wp != nil && wp.ID == id {
			m.FlightPath.Waypoints = append(m.FlightPath.Waypoints[:i], m.FlightPath.Waypoints[i+1:]...)
			m.ReindexWaypoints()
			return true
		}
	}
	return false
}

// ReindexWaypoints sorts waypoints by index and renumbers them from 0.
// Nil entries are dropped.
func (m *Mission) ReindexWaypoints() {
	wps := m.waypoints()
	m.FlightPath.Waypoints = wps
	sort.SliceStable(wps, func(i, j int) bool { return wps[i].Index < wps[j].Index })
	for i, wp := range wps {
		wp.Index = i
	}
	m.UpdatedAt = now()
}

// ValidateWaypointOrder checks that waypoints are stored in order with
// indexes 0..n-1.
func (m *Mission) ValidateWaypointOrder() error {
	for i, wp := range m.FlightPath.Waypoints {
		if wp == nil {
			return fmt.Errorf("%w: waypoint %d is missing", ErrWaypointOrder, i)
		}
		if wp.Index != i {
			return fmt.Errorf("%w: position %d holds index %d", ErrWaypointOrder, i, wp.Index)
		}
	}
	return nil
}

// waypoints returns the non-nil waypoints in stored order.
func (m *Mission) waypoints() []*Waypoint {
	wps := make([]*Waypoint, 0, len(m.FlightPath.Waypoints))
	for _, wp := range m.FlightPath.Waypoints {
		if wp != nil {
			wps = append(wps, wp)
		}
	}
	return wps
}

// PathLength returns the horizontal length of the flight path in meters.
func (m *Mission) PathLength() float64 {
	var total float64
	wps := m.waypoints()
	for i := 1; i < len(wps); i++ {
		total += geo.Distance(wps[i-1].Position.LatLng(), wps[i].Position.LatLng())
	}
	return total
}

// EstimatedDuration sums leg times at the applicable speed plus action
// durations. Legs without a positive speed are skipped.
func (m *Mission) EstimatedDuration() time.Duration {
	var seconds float64
	wps := m.waypoints()
	for i, wp := range wps {
		seconds += wp.ActionDuration
		if i == len(wps)-1 {
			break
		}
		speed := m.Settings.Speed
		if wp.Speed != nil {
			speed = *wp.Speed
		}
		if speed <= 0 {
			continue
		}
		seconds += geo.Distance(wp.Position.LatLng(), wps[i+1].Position.LatLng()) / speed
	}
	return time.Duration(seconds * float64(time.Second))
}

// Headings returns the heading in degrees [0, 360) for each waypoint.
// Overrides win, otherwise the bearing towards the next waypoint is used
// and the last waypoint keeps the heading of the final leg.
// A nil entry repeats the heading before it.
func (m *Mission) Headings() []float64 {
	wps := m.FlightPath.Waypoints
	out := make([]float64, len(wps))
	var last float64
	for i, wp := range wps {
		var next *Waypoint
		for _, n := range wps[i+1:] {
			if n != nil {
				next = n
				break
			}
		}

		switch {
		case wp == nil:
			out[i] = last
		case wp.Heading != nil:
			out[i] = normalizeHeading(*wp.Heading)
		case next != nil:
			out[i] = normalizeHeading(orbgeo.Bearing(wp.Position.Orb(), next.Position.Orb()))
		default:
			out[i] = last
		}
		last = out[i]
	}
	return out
}

func normalizeHeading(deg float64) float64 {
	h := math.Mod(deg, 360)
	if h < 0 {
		h += 360
	}
	return h
}
