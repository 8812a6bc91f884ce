// Package processor imports site documents, enriches them and renders previews.
package processor

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/woozymasta/rpasplan/internal/config"
	"github.com/woozymasta/rpasplan/internal/export"
	"github.com/woozymasta/rpasplan/internal/site"
	"github.com/woozymasta/rpasplan/internal/store"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// ImportOptions control ImportSites.
type ImportOptions struct {
	Client       *http.Client
	ObstaclesURL string      // optional GeoJSON point feed merged into site boundaries
	GeoJSONDir   string      // when set, <dir>/<site id>.geojson is written per site
	SORA         config.SORA // flight plan defaults
	Concurrency  int
	Regenerate   bool // rebuild contingency and ground risk volumes
	Minify       bool
	Force        bool // overwrite existing GeoJSON files
}

type loadResult struct {
	site *site.Site
	err  error
	path string
	idx  int
}

// LoadSiteFile reads a site document. Files ending in .yaml or .yml are YAML,
// everything else is JSON.
func LoadSiteFile(path string) (*site.Site, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var s site.Site
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &s)
	default:
		err = json.Unmarshal(data, &s)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	normalizeSite(&s, strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
	return &s, nil
}

// normalizeSite fills identity, status, timestamps and empty collections of a
// freshly decoded site.
func normalizeSite(s *site.Site, fallbackName string) {
	defaults := site.NewDefaultSite(fallbackName)

	if s.ID == "" {
		s.ID = defaults.ID
	}
	if s.Name == "" {
		s.Name = defaults.Name
	}
	if s.Status == "" {
		s.Status = site.StatusDraft
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = defaults.CreatedAt
	}
	if s.UpdatedAt.IsZero() {
		s.UpdatedAt = defaults.UpdatedAt
	}

	d := &s.MapData
	if d.SiteSurvey.Obstacles == nil {
		d.SiteSurvey.Obstacles = []*site.Obstacle{}
	}
	if d.Emergency.MusterPoints == nil {
		d.Emergency.MusterPoints = []*site.MusterPoint{}
	}
	if d.Emergency.EvacuationRoutes == nil {
		d.Emergency.EvacuationRoutes = []*site.EvacuationRoute{}
	}
	if s.Missions == nil {
		s.Missions = []*site.Mission{}
	}
}

// loadSites decodes files concurrently. The result keeps the order of paths;
// files that fail are logged and skipped.
func loadSites(paths []string, concurrency int) []*site.Site {
	if concurrency <= 0 {
		concurrency = 4
	}

	jobs := make(chan loadResult, len(paths))
	results := make(chan loadResult, len(paths))

	go func() {
		for i, p := range paths {
			jobs <- loadResult{path: p, idx: i}
		}
		close(jobs)
	}()

	var wg sync.WaitGroup
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				j.site, j.err = LoadSiteFile(j.path)
				results <- j
			}
		}()
	}
	wg.Wait()
	close(results)

	ordered := make([]*site.Site, len(paths))
	for res := range results {
		if res.err != nil {
			log.Error().Err(res.err).Str("path", res.path).Msg("Failed to load site file")
			continue
		}
		ordered[res.idx] = res.site
	}

	out := make([]*site.Site, 0, len(paths))
	for _, s := range ordered {
		if s != nil {
			out = append(out, s)
		}
	}
	return out
}

// ImportSites loads site files into a new project and saves it.
// A project can hold at most site.MaxSitesPerProject sites.
func ImportSites(ctx context.Context, st *store.Store, projectName string, paths []string, opts ImportOptions) (*site.Project, error) {
	sites := loadSites(paths, opts.Concurrency)
	if len(sites) == 0 {
		return nil, fmt.Errorf("no site could be loaded from %d files", len(paths))
	}
	if len(sites) > site.MaxSitesPerProject {
		return nil, fmt.Errorf("%d sites: %w", len(sites), site.ErrTooManySites)
	}

	var obstacles []*site.Obstacle
	if opts.ObstaclesURL != "" {
		client := opts.Client
		if client == nil {
			client = http.DefaultClient
		}

		var err error
		obstacles, err = FetchObstacles(ctx, client, opts.ObstaclesURL)
		if err != nil {
			return nil, fmt.Errorf("fetch obstacles: %w", err)
		}
		log.Info().Int("count", len(obstacles)).Str("source", opts.ObstaclesURL).Msg("Obstacle feed loaded")
	}

	p := site.NewProject(projectName)
	p.Sites = p.Sites[:0]

	for _, s := range sites {
		opts.SORA.ApplyFlightDefaults(&s.FlightPlan)

		if n := MergeObstacles(s, obstacles); n > 0 {
			log.Debug().Str("site", s.Name).Int("obstacles", n).Msg("Obstacles merged into site")
		}

		if opts.Regenerate {
			vols := site.RegenerateSORAVolumes(s)
			log.Debug().
				Str("site", s.Name).
				Bool("contingency", vols.ContingencyVolume != nil).
				Bool("ground_risk", vols.GroundRiskBuffer != nil).
				Msg("SORA volumes regenerated")
		}

		if err := p.AddSite(s); err != nil {
			return nil, err
		}

		if opts.GeoJSONDir != "" {
			if err := saveSiteGeoJSON(opts.GeoJSONDir, s, opts.Minify, opts.Force); err != nil {
				log.Error().Err(err).Str("site", s.Name).Msg("Failed to write GeoJSON")
			}
		}
	}

	if err := st.SaveProject(ctx, p); err != nil {
		return nil, err
	}

	log.Info().
		Str("project", p.ID).
		Str("name", p.Name).
		Int("sites", len(p.Sites)).
		Msg("Project imported")

	return p, nil
}

// saveSiteGeoJSON writes the site feature collection unless it already exists.
func saveSiteGeoJSON(dir string, s *site.Site, minified, force bool) error {
	path := filepath.Join(dir, s.ID+".geojson")

	if _, err := os.Stat(path); err == nil && !force {
		log.Debug().Str("site", s.Name).Msg("GeoJSON file exists, skipping")
		return nil
	}

	return export.WriteFile(path, export.FeatureCollection(s), export.FormatJSON, minified)
}
