package site

import "github.com/woozymasta/rpasplan/internal/geo"

// SiteBounds returns the bounding box of every populated map element of a
// site, mission areas and waypoints included. It returns nil when the site
// holds no coordinates.
func SiteBounds(s *Site) *geo.Bounds {
	if s == nil {
		return nil
	}

	var acc *geo.Bounds
	extend := func(b geo.Bounds) {
		if acc == nil {
			acc = &b
			return
		}
		u := acc.Union(b)
		acc = &u
	}

	for _, el := range s.Elements() {
		if b, ok := el.Geometry.Bound(); ok {
			extend(b)
		}
	}

	for _, m := range s.Missions {
		if m == nil {
			continue
		}
		for _, wp := range m.FlightPath.Waypoints {
			if wp == nil || !wp.Position.Valid() {
				continue
			}
			p := wp.Position
			extend(geo.NewBounds(p.Lng(), p.Lat(), p.Lng(), p.Lat()))
		}
	}

	return acc
}

// ProjectBounds unions the bounds of all sites. It returns nil when none of
// the sites holds coordinates.
func ProjectBounds(sites []*Site) *geo.Bounds {
	var acc *geo.Bounds
	for _, s := range sites {
		b := SiteBounds(s)
		if b == nil {
			continue
		}
		if acc == nil {
			acc = b
			continue
		}
		u := acc.Union(*b)
		acc = &u
	}
	return acc
}
