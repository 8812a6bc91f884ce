package site

import "strings"

// Issue is a missing piece of information reported by ValidateSiteCompleteness.
type Issue struct {
	Section string `json:"section" yaml:"section"`
	Field   string `json:"field" yaml:"field"`
	Message string `json:"message" yaml:"message"`
}

// Completeness is the outcome of ValidateSiteCompleteness.
type Completeness struct {
	Fields     map[string]bool `json:"completeness" yaml:"completeness"`
	Sections   map[string]bool `json:"sections" yaml:"sections"`
	Issues     []Issue         `json:"issues" yaml:"issues"`
	Percent    int             `json:"percent" yaml:"percent"`
	IsComplete bool            `json:"isComplete" yaml:"isComplete"`
}

type completenessCheck struct {
	present func(*Site) bool
	section string
	field   string
	message string
}

var completenessChecks = []completenessCheck{
	{
		section: LayerSiteSurvey,
		field:   "siteLocation",
		message: "Site location is not set",
		present: func(s *Site) bool { return hasGeometry(s.MapData.SiteSurvey.SiteLocation) },
	},
	{
		section: LayerSiteSurvey,
		field:   "populationCategory",
		message: "Population category is not selected",
		present: func(s *Site) bool { return strings.TrimSpace(s.Survey.PopulationCategory) != "" },
	},
	{
		section: LayerFlightPlan,
		field:   "launchPoint",
		message: "Launch point is not set",
		present: func(s *Site) bool { return hasGeometry(s.MapData.FlightPlan.LaunchPoint) },
	},
	{
		section: LayerFlightPlan,
		field:   "recoveryPoint",
		message: "Recovery point is not set",
		present: func(s *Site) bool { return hasGeometry(s.MapData.FlightPlan.RecoveryPoint) },
	},
	{
		section: LayerEmergency,
		field:   "musterPoints",
		message: "At least one muster point is required",
		present: func(s *Site) bool {
			for _, m := range s.MapData.Emergency.MusterPoints {
				if m != nil && !m.Geometry.IsEmpty() {
					return true
				}
			}
			return false
		},
	},
}

func hasGeometry(el *MapElement) bool {
	return el != nil && !el.Geometry.IsEmpty()
}

// ValidateSiteCompleteness reports which required parts of a site are
// missing. It never fails; a nil site reports every check as missing.
func ValidateSiteCompleteness(s *Site) Completeness {
	res := Completeness{
		Fields:   make(map[string]bool, len(completenessChecks)),
		Sections: make(map[string]bool, 3),
		Issues:   []Issue{},
	}

	passed := 0
	for _, c := range completenessChecks {
		ok := s != nil && c.present(s)
		res.Fields[c.field] = ok

		if prev, seen := res.Sections[c.section]; !seen {
			res.Sections[c.section] = ok
		} else {
			res.Sections[c.section] = prev && ok
		}

		if ok {
			passed++
			continue
		}
		res.Issues = append(res.Issues, Issue{Section: c.section, Field: c.field, Message: c.message})
	}

	res.Percent = passed * 100 / len(completenessChecks)
	res.IsComplete = len(res.Issues) == 0

	return res
}
