package server

import (
	"net/http"

	"github.com/woozymasta/rpasplan/internal/config"
	"github.com/woozymasta/rpasplan/internal/store"

	"github.com/rs/zerolog/log"
)

// ServerContext holds dependencies for request handlers.
type ServerContext struct {
	Config *config.Config
	Store  *store.Store
}

// NewServerContext initializes the context. A nil config falls back to defaults.
func NewServerContext(cfg *config.Config, st *store.Store) *ServerContext {
	if cfg == nil {
		cfg = config.Default()
	}

	log.Info().
		Str("database", cfg.Database).
		Int("preview_width", cfg.Preview.Width).
		Int("preview_height", cfg.Preview.Height).
		Msg("Server context initialized")

	return &ServerContext{Config: cfg, Store: st}
}

// Routes registers every API handler on a new mux.
func (s *ServerContext) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/projects", s.HandleProjectsList)
	mux.HandleFunc("POST /api/projects", s.HandleProjectCreate)
	mux.HandleFunc("GET /api/projects/{id}", s.HandleProject)
	mux.HandleFunc("DELETE /api/projects/{id}", s.HandleProjectDelete)
	mux.HandleFunc("GET /api/projects/{id}/bounds", s.HandleProjectBounds)

	mux.HandleFunc("GET /api/projects/{id}/sites/{siteId}/geojson", s.HandleSiteGeoJSON)
	mux.HandleFunc("GET /api/projects/{id}/sites/{siteId}/completeness", s.HandleSiteCompleteness)
	mux.HandleFunc("GET /api/projects/{id}/sites/{siteId}/preview.webp", s.HandleSitePreview)
	mux.HandleFunc("POST /api/projects/{id}/sites/{siteId}/duplicate", s.HandleSiteDuplicate)

	mux.HandleFunc("POST /api/sora/volumes", s.HandleSORAVolumes)
	mux.HandleFunc("POST /api/measure/distance", s.HandleMeasureDistance)
	mux.HandleFunc("POST /api/measure/area", s.HandleMeasureArea)

	return mux
}

// Handler returns the routes wrapped in the request logger.
func (s *ServerContext) Handler() http.Handler {
	return RequestLogger(s.Routes())
}
