// Package site defines the site, mission and map element model of an
// operations plan together with the measurements and SORA volume
// derivations built on it.
package site

import (
	"time"

	"github.com/woozymasta/rpasplan/internal/geo"
)

// ElementType tags what a map element represents.
type ElementType string

// Known element types.
const (
	TypeSiteLocation      ElementType = "siteLocation"
	TypeSiteBoundary      ElementType = "siteBoundary"
	TypeObstacle          ElementType = "obstacle"
	TypeLaunchPoint       ElementType = "launchPoint"
	TypeRecoveryPoint     ElementType = "recoveryPoint"
	TypePilotPosition     ElementType = "pilotPosition"
	TypeFlightGeography   ElementType = "flightGeography"
	TypeContingencyVolume ElementType = "contingencyVolume"
	TypeGroundRiskBuffer  ElementType = "groundRiskBuffer"
	TypeMusterPoint       ElementType = "musterPoint"
	TypeEvacuationRoute   ElementType = "evacuationRoute"
	TypeMissionArea       ElementType = "missionArea"
)

// Layer names of SiteMapData.
const (
	LayerSiteSurvey = "siteSurvey"
	LayerFlightPlan = "flightPlan"
	LayerEmergency  = "emergency"
)

// Status of a site. It is a plain field without transition rules.
type Status string

// Site statuses.
const (
	StatusDraft    Status = "draft"
	StatusActive   Status = "active"
	StatusArchived Status = "archived"
)

// MaxSitesPerProject caps the number of sites a project may hold.
const MaxSitesPerProject = 10

// MapElement is a marker, polygon or line drawn on the site map.
type MapElement struct {
	CreatedAt   time.Time    `json:"createdAt" yaml:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt" yaml:"updatedAt"`
	ID          string       `json:"id" yaml:"id"`
	ElementType ElementType  `json:"elementType" yaml:"elementType"`
	Properties  Properties   `json:"properties" yaml:"properties"`
	Geometry    geo.Geometry `json:"geometry" yaml:"geometry"`
}

// Obstacle is a hazard surveyed on site.
type Obstacle struct {
	MapElement   `yaml:",inline"`
	ObstacleType string  `json:"obstacleType,omitempty" yaml:"obstacleType,omitempty"`
	Height       float64 `json:"height,omitempty" yaml:"height,omitempty"` // meters
	Radius       float64 `json:"radius,omitempty" yaml:"radius,omitempty"` // meters
}

// MusterPoint is an emergency gathering point.
type MusterPoint struct {
	MapElement `yaml:",inline"`
	Capacity   int  `json:"capacity,omitempty" yaml:"capacity,omitempty"`
	IsPrimary  bool `json:"isPrimary,omitempty" yaml:"isPrimary,omitempty"`
}

// EvacuationRoute is a path off site used in emergencies.
type EvacuationRoute struct {
	MapElement           `yaml:",inline"`
	SurfaceType          string  `json:"surfaceType,omitempty" yaml:"surfaceType,omitempty"`
	EstimatedTimeMinutes float64 `json:"estimatedTimeMinutes,omitempty" yaml:"estimatedTimeMinutes,omitempty"`
}

// SiteSurveyLayer holds the surveyed geometry of a site.
type SiteSurveyLayer struct {
	SiteLocation *MapElement `json:"siteLocation" yaml:"siteLocation"`
	SiteBoundary *MapElement `json:"siteBoundary" yaml:"siteBoundary"`
	Obstacles    []*Obstacle `json:"obstacles" yaml:"obstacles"`
}

// FlightPlanLayer holds the planned operating geometry.
type FlightPlanLayer struct {
	LaunchPoint       *MapElement `json:"launchPoint" yaml:"launchPoint"`
	RecoveryPoint     *MapElement `json:"recoveryPoint" yaml:"recoveryPoint"`
	PilotPosition     *MapElement `json:"pilotPosition" yaml:"pilotPosition"`
	FlightGeography   *MapElement `json:"flightGeography" yaml:"flightGeography"`
	ContingencyVolume *MapElement `json:"contingencyVolume" yaml:"contingencyVolume"`
	GroundRiskBuffer  *MapElement `json:"groundRiskBuffer" yaml:"groundRiskBuffer"`
}

// EmergencyLayer holds emergency response geometry.
type EmergencyLayer struct {
	MusterPoints     []*MusterPoint     `json:"musterPoints" yaml:"musterPoints"`
	EvacuationRoutes []*EvacuationRoute `json:"evacuationRoutes" yaml:"evacuationRoutes"`
}

// SiteMapData groups the map elements of a site into layers.
type SiteMapData struct {
	SiteSurvey SiteSurveyLayer `json:"siteSurvey" yaml:"siteSurvey"`
	FlightPlan FlightPlanLayer `json:"flightPlan" yaml:"flightPlan"`
	Emergency  EmergencyLayer  `json:"emergency" yaml:"emergency"`
}

// SurveyInfo is the free text part of the site survey.
type SurveyInfo struct {
	PopulationCategory string `json:"populationCategory" yaml:"populationCategory"`
	TerrainType        string `json:"terrainType" yaml:"terrainType"`
	AirspaceClass      string `json:"airspaceClass" yaml:"airspaceClass"`
	Notes              string `json:"notes" yaml:"notes"`
}

// FlightPlanInfo holds flight parameters that size the SORA volumes.
type FlightPlanInfo struct {
	OperationType       string  `json:"operationType" yaml:"operationType"`
	MaxAltitudeAGL      float64 `json:"maxAltitudeAGL" yaml:"maxAltitudeAGL"`           // meters
	AircraftMaxSpeed    float64 `json:"aircraftMaxSpeed" yaml:"aircraftMaxSpeed"`       // m/s
	ReactionTimeSeconds float64 `json:"reactionTimeSeconds" yaml:"reactionTimeSeconds"` // seconds
	VLOS                bool    `json:"vlos" yaml:"vlos"`
}

// Contact is an emergency contact.
type Contact struct {
	Name  string `json:"name" yaml:"name"`
	Role  string `json:"role" yaml:"role"`
	Phone string `json:"phone" yaml:"phone"`
}

// EmergencyInfo holds emergency contacts and facilities.
type EmergencyInfo struct {
	NearestHospital string    `json:"nearestHospital" yaml:"nearestHospital"`
	Contacts        []Contact `json:"contacts" yaml:"contacts"`
}

// SORAInfo stores risk assessment inputs and outputs as entered.
type SORAInfo struct {
	IntrinsicGRC int    `json:"intrinsicGRC" yaml:"intrinsicGRC"`
	FinalGRC     int    `json:"finalGRC" yaml:"finalGRC"`
	ResidualARC  string `json:"residualARC" yaml:"residualARC"`
	SAIL         string `json:"sail" yaml:"sail"`
}

// Site is the top level aggregate of an operations plan.
type Site struct {
	CreatedAt   time.Time      `json:"createdAt" yaml:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt" yaml:"updatedAt"`
	ID          string         `json:"id" yaml:"id"`
	ProjectID   string         `json:"projectId,omitempty" yaml:"projectId,omitempty"`
	Name        string         `json:"name" yaml:"name"`
	Description string         `json:"description,omitempty" yaml:"description,omitempty"`
	Status      Status         `json:"status" yaml:"status"`
	Survey      SurveyInfo     `json:"survey" yaml:"survey"`
	Emergency   EmergencyInfo  `json:"emergency" yaml:"emergency"`
	SORA        SORAInfo       `json:"sora" yaml:"sora"`
	Missions    []*Mission     `json:"missions" yaml:"missions"`
	MapData     SiteMapData    `json:"mapData" yaml:"mapData"`
	FlightPlan  FlightPlanInfo `json:"flightPlan" yaml:"flightPlan"`
	Order       int            `json:"order" yaml:"order"`
}

// Project groups between 1 and MaxSitesPerProject sites.
type Project struct {
	CreatedAt time.Time `json:"createdAt" yaml:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" yaml:"updatedAt"`
	ID        string    `json:"id" yaml:"id"`
	Name      string    `json:"name" yaml:"name"`
	Sites     []*Site   `json:"sites" yaml:"sites"`
}
