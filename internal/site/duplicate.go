package site

// DuplicateOptions customizes DuplicateSite.
type DuplicateOptions struct {
	// Name of the copy. Defaults to "<name> (Copy)".
	Name string

	// ProjectID moves the copy to another project when set.
	ProjectID string
}

// DuplicateSite returns a deep copy of s with the same shape and a disjoint
// identity: the site, every map element, mission and waypoint get new IDs.
// Buffer provenance is remapped to the new IDs, the status is reset to
// draft and timestamps are set to now.
func DuplicateSite(s *Site, opts DuplicateOptions) *Site {
	if s == nil {
		return nil
	}

	c := CloneSite(s)
	ts := now()

	c.ID = NewID()
	c.Status = StatusDraft
	c.CreatedAt = ts
	c.UpdatedAt = ts
	c.Name = opts.Name
	if c.Name == "" {
		c.Name = s.Name + " (Copy)"
	}
	if opts.ProjectID != "" {
		c.ProjectID = opts.ProjectID
	}

	remap := make(map[string]string)
	for _, el := range c.Elements() {
		newID := NewID()
		remap[el.ID] = newID
		el.ID = newID
		el.CreatedAt = ts
		el.UpdatedAt = ts
	}
	for _, el := range c.Elements() {
		if id, ok := remap[el.Properties.SourcePolygonID]; ok {
			el.Properties.SourcePolygonID = id
		}
	}

	for _, m := range c.Missions {
		if m == nil {
			continue
		}
		m.ID = NewID()
		m.CreatedAt = ts
		m.UpdatedAt = ts
		for _, wp := range m.FlightPath.Waypoints {
			if wp != nil {
				wp.ID = NewID()
			}
		}
	}

	return c
}

// CloneSite returns a deep copy of s keeping all identifiers.
func CloneSite(s *Site) *Site {
	if s == nil {
		return nil
	}

	c := *s
	c.Emergency.Contacts = append([]Contact(nil), s.Emergency.Contacts...)
	c.MapData = cloneMapData(s.MapData)

	if s.Missions != nil {
		c.Missions = make([]*Mission, len(s.Missions))
		for i, m := range s.Missions {
			c.Missions[i] = cloneMission(m)
		}
	}

	return &c
}

func cloneMapData(d SiteMapData) SiteMapData {
	out := SiteMapData{
		SiteSurvey: SiteSurveyLayer{
			SiteLocation: cloneElement(d.SiteSurvey.SiteLocation),
			SiteBoundary: cloneElement(d.SiteSurvey.SiteBoundary),
		},
		FlightPlan: FlightPlanLayer{
			LaunchPoint:       cloneElement(d.FlightPlan.LaunchPoint),
			RecoveryPoint:     cloneElement(d.FlightPlan.RecoveryPoint),
			PilotPosition:     cloneElement(d.FlightPlan.PilotPosition),
			FlightGeography:   cloneElement(d.FlightPlan.FlightGeography),
			ContingencyVolume: cloneElement(d.FlightPlan.ContingencyVolume),
			GroundRiskBuffer:  cloneElement(d.FlightPlan.GroundRiskBuffer),
		},
	}

	if d.SiteSurvey.Obstacles != nil {
		out.SiteSurvey.Obstacles = make([]*Obstacle, len(d.SiteSurvey.Obstacles))
		for i, o := range d.SiteSurvey.Obstacles {
			if o != nil {
				cp := *o
				cp.MapElement = *cloneElement(&o.MapElement)
				out.SiteSurvey.Obstacles[i] = &cp
			}
		}
	}
	if d.Emergency.MusterPoints != nil {
		out.Emergency.MusterPoints = make([]*MusterPoint, len(d.Emergency.MusterPoints))
		for i, m := range d.Emergency.MusterPoints {
			if m != nil {
				cp := *m
				cp.MapElement = *cloneElement(&m.MapElement)
				out.Emergency.MusterPoints[i] = &cp
			}
		}
	}
	if d.Emergency.EvacuationRoutes != nil {
		out.Emergency.EvacuationRoutes = make([]*EvacuationRoute, len(d.Emergency.EvacuationRoutes))
		for i, r := range d.Emergency.EvacuationRoutes {
			if r != nil {
				cp := *r
				cp.MapElement = *cloneElement(&r.MapElement)
				out.Emergency.EvacuationRoutes[i] = &cp
			}
		}
	}

	return out
}

func cloneElement(el *MapElement) *MapElement {
	if el == nil {
		return nil
	}
	cp := *el
	cp.Geometry = el.Geometry.Clone()
	cp.Properties = el.Properties.Clone()
	return &cp
}

func cloneMission(m *Mission) *Mission {
	if m == nil {
		return nil
	}
	cp := *m
	cp.Area = cloneElement(m.Area)
	if m.FlightPath.Waypoints != nil {
		cp.FlightPath.Waypoints = make([]*Waypoint, len(m.FlightPath.Waypoints))
		for i, wp := range m.FlightPath.Waypoints {
			if wp == nil {
				continue
			}
			w := *wp
			w.Position = append(wp.Position[:0:0], wp.Position...)
			if wp.Speed != nil {
				v := *wp.Speed
				w.Speed = &v
			}
			if wp.Heading != nil {
				v := *wp.Heading
				w.Heading = &v
			}
			cp.FlightPath.Waypoints[i] = &w
		}
	}
	return &cp
}
