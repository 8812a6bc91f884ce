package site

import (
	"errors"
	"fmt"
)

var (
	// ErrTooManySites is returned when a project already holds MaxSitesPerProject sites.
	ErrTooManySites = errors.New("project site limit reached")

	// ErrLastSite is returned when removing the only site of a project.
	ErrLastSite = errors.New("project must keep at least one site")

	// ErrSiteNotFound is returned when a site ID is not part of the project.
	ErrSiteNotFound = errors.New("site not found")
)

// NewProject returns a project holding one default site.
func NewProject(name string) *Project {
	ts := now()
	p := &Project{
		ID:        NewID(),
		Name:      name,
		CreatedAt: ts,
		UpdatedAt: ts,
	}
	p.Sites = []*Site{NewDefaultSite("Site 1", WithProjectID(p.ID), WithOrder(0))}
	return p
}

// Site returns the site with the given ID or nil.
func (p *Project) Site(id string) *Site {
	for _, s := range p.Sites {
		if s != nil && s.ID == id {
			return s
		}
	}
	return nil
}

// AddSite appends a site, taking ownership of it.
func (p *Project) AddSite(s *Site) error {
	if s == nil {
		return fmt.Errorf("add site: nil site")
	}
	if len(p.Sites) >= MaxSitesPerProject {
		return fmt.Errorf("add site %q: %w (%d)", s.Name, ErrTooManySites, MaxSitesPerProject)
	}
	s.ProjectID = p.ID
	s.Order = len(p.Sites)
	p.Sites = append(p.Sites, s)
	p.UpdatedAt = now()
	return nil
}

// RemoveSite deletes a site and renumbers the display order of the rest.
func (p *Project) RemoveSite(id string) error {
	idx := -1
	for i, s := range p.Sites {
		if s != nil && s.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("remove site %s: %w", id, ErrSiteNotFound)
	}
	if len(p.Sites) == 1 {
		return fmt.Errorf("remove site %s: %w", id, ErrLastSite)
	}

	p.Sites = append(p.Sites[:idx], p.Sites[idx+1:]...)
	for i, s := range p.Sites {
		if s != nil {
			s.Order = i
		}
	}
	p.UpdatedAt = now()
	return nil
}

// DuplicateSite copies a site of the project and appends the copy.
func (p *Project) DuplicateSite(id string, opts DuplicateOptions) (*Site, error) {
	src := p.Site(id)
	if src == nil {
		return nil, fmt.Errorf("duplicate site %s: %w", id, ErrSiteNotFound)
	}
	opts.ProjectID = p.ID
	c := DuplicateSite(src, opts)
	if err := p.AddSite(c); err != nil {
		return nil, err
	}
	return c, nil
}
