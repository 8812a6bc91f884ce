// Package server handles HTTP requests and middleware.
package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/woozymasta/rpasplan/internal/export"
	"github.com/woozymasta/rpasplan/internal/geo"
	"github.com/woozymasta/rpasplan/internal/render"
	"github.com/woozymasta/rpasplan/internal/site"
	"github.com/woozymasta/rpasplan/internal/store"

	"github.com/rs/zerolog/log"
)

const (
	etagCap      = 64
	maxBodyBytes = 4 << 20
)

// HandleProjectsList serves project summaries.
func (s *ServerContext) HandleProjectsList(w http.ResponseWriter, r *http.Request) {
	list, err := s.Store.ListProjects(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// HandleProjectCreate stores a new project holding one default site.
func (s *ServerContext) HandleProjectCreate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	p := site.NewProject(req.Name)
	s.Config.SORA.ApplyFlightDefaults(&p.Sites[0].FlightPlan)
	if err := s.Store.SaveProject(r.Context(), p); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// HandleProject serves a full project document.
func (s *ServerContext) HandleProject(w http.ResponseWriter, r *http.Request) {
	p, err := s.Store.GetProject(r.Context(), r.PathValue("id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// HandleProjectDelete removes a project.
func (s *ServerContext) HandleProjectDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.Store.DeleteProject(r.Context(), r.PathValue("id")); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleProjectBounds serves the union bounds of all project sites.
// It answers 204 when no site holds coordinates.
func (s *ServerContext) HandleProjectBounds(w http.ResponseWriter, r *http.Request) {
	p, err := s.Store.GetProject(r.Context(), r.PathValue("id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}

	b := site.ProjectBounds(p.Sites)
	if b == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// HandleSiteGeoJSON serves the site as a GeoJSON feature collection.
func (s *ServerContext) HandleSiteGeoJSON(w http.ResponseWriter, r *http.Request) {
	st, ok := s.loadSite(w, r)
	if !ok {
		return
	}

	data, err := export.Encode(export.FeatureCollection(st), export.FormatJSON, true)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/geo+json")
	_, _ = w.Write(data)
}

// HandleSiteCompleteness serves the completeness report of a site.
func (s *ServerContext) HandleSiteCompleteness(w http.ResponseWriter, r *http.Request) {
	st, ok := s.loadSite(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, site.ValidateSiteCompleteness(st))
}

// HandleSitePreview renders the site preview as WebP with an ETag derived
// from the site update time.
func (s *ServerContext) HandleSitePreview(w http.ResponseWriter, r *http.Request) {
	st, ok := s.loadSite(w, r)
	if !ok {
		return
	}

	buf := make([]byte, 0, etagCap)
	buf = append(buf, '"')
	buf = append(buf, st.ID...)
	buf = append(buf, '-')
	buf = strconv.AppendInt(buf, st.UpdatedAt.UnixNano(), 16)
	buf = append(buf, '"')
	etag := string(buf)

	if match := r.Header.Get("If-None-Match"); match == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	pc := s.Config.Preview
	img, err := render.Preview(st, render.Options{
		Width:      pc.Width,
		Height:     pc.Height,
		Padding:    pc.Padding,
		Background: pc.Background,
	})
	if errors.Is(err, render.ErrNoGeometry) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err != nil {
		s.fail(w, r, err)
		return
	}

	var out bytes.Buffer
	if err := render.EncodeWebP(&out, img, pc.Quality); err != nil {
		s.fail(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "image/webp")
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "public, no-cache")
	_, _ = w.Write(out.Bytes())
}

// HandleSiteDuplicate copies a site within its project and stores the result.
func (s *ServerContext) HandleSiteDuplicate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if r.ContentLength != 0 && !decodeBody(w, r, &req) {
		return
	}

	p, err := s.Store.GetProject(r.Context(), r.PathValue("id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}

	dup, err := p.DuplicateSite(r.PathValue("siteId"), site.DuplicateOptions{Name: req.Name})
	if err != nil {
		s.fail(w, r, err)
		return
	}

	if err := s.Store.SaveProject(r.Context(), p); err != nil {
		s.fail(w, r, err)
		return
	}

	log.Info().
		Str("project", p.ID).
		Str("site", dup.ID).
		Str("name", dup.Name).
		Msg("Site duplicated")

	writeJSON(w, http.StatusCreated, dup)
}

type soraVolumesRequest struct {
	FlightGeography   *site.MapElement `json:"flightGeography"`
	ContingencyBuffer *float64         `json:"contingencyBuffer"` // meters
	GroundRiskBuffer  *float64         `json:"groundRiskBuffer"`  // meters
}

// HandleSORAVolumes derives the contingency volume and ground risk buffer of
// a flight geography. Missing distances follow the configured flight defaults.
func (s *ServerContext) HandleSORAVolumes(w http.ResponseWriter, r *http.Request) {
	var req soraVolumesRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.FlightGeography == nil {
		writeError(w, http.StatusBadRequest, "flightGeography is required")
		return
	}

	d := s.Config.SORA
	contingency := site.ContingencyBufferDistance(d.AircraftMaxSpeed, d.ReactionTimeSeconds)
	if req.ContingencyBuffer != nil {
		contingency = *req.ContingencyBuffer
	}
	groundRisk := site.GroundRiskBufferDistance(d.MaxAltitudeAGL)
	if req.GroundRiskBuffer != nil {
		groundRisk = *req.GroundRiskBuffer
	}

	if req.FlightGeography.ID == "" {
		req.FlightGeography.ID = site.NewID()
	}
	writeJSON(w, http.StatusOK, site.GenerateSORAVolumes(req.FlightGeography, contingency, groundRisk))
}

// HandleMeasureDistance returns the great-circle distance between two points.
func (s *ServerContext) HandleMeasureDistance(w http.ResponseWriter, r *http.Request) {
	var req struct {
		From *geo.LatLng `json:"from"`
		To   *geo.LatLng `json:"to"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.From == nil || req.To == nil {
		writeError(w, http.StatusBadRequest, "from and to are required")
		return
	}

	writeJSON(w, http.StatusOK, map[string]float64{"meters": site.CalculateDistance(*req.From, *req.To)})
}

// HandleMeasureArea returns the area of a polygon element in square meters.
func (s *ServerContext) HandleMeasureArea(w http.ResponseWriter, r *http.Request) {
	var el site.MapElement
	if !decodeBody(w, r, &el) {
		return
	}

	area, ok := site.CalculatePolygonArea(&el)
	if !ok {
		writeError(w, http.StatusUnprocessableEntity, "polygon needs at least 3 positions")
		return
	}

	writeJSON(w, http.StatusOK, map[string]float64{"squareMeters": area})
}

// loadSite loads the site addressed by the request path.
func (s *ServerContext) loadSite(w http.ResponseWriter, r *http.Request) (*site.Site, bool) {
	st, err := s.Store.GetSite(r.Context(), r.PathValue("id"), r.PathValue("siteId"))
	if err != nil {
		s.fail(w, r, err)
		return nil, false
	}
	return st, true
}

// fail maps domain errors onto status codes.
func (s *ServerContext) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound), errors.Is(err, site.ErrSiteNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, site.ErrTooManySites):
		writeError(w, http.StatusConflict, err.Error())
	default:
		log.Error().Err(err).Str("path", r.URL.Path).Msg("Request failed")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Ignoring error as we cannot handle client disconnects
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
