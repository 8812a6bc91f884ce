package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/woozymasta/rpasplan/internal/config"
	"github.com/woozymasta/rpasplan/internal/geo"
	"github.com/woozymasta/rpasplan/internal/site"
	"github.com/woozymasta/rpasplan/internal/store"

	"github.com/matryer/is"
)

type fixture struct {
	handler http.Handler
	store   *store.Store
	project *site.Project
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	st, err := store.Open(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	p := site.NewProject("API")
	s := p.Sites[0]
	_ = s.SetElement(site.NewMarker(site.TypeLaunchPoint, -123.116, 49.284, "Launch"))
	_ = s.SetElement(site.NewPolygonElement(site.TypeFlightGeography, []geo.Position{
		{-123.12, 49.28}, {-123.11, 49.28}, {-123.11, 49.29}, {-123.12, 49.29},
	}, "Flight Geography"))
	if err := st.SaveProject(context.Background(), p); err != nil {
		t.Fatalf("save project: %v", err)
	}

	cfg := config.Default()
	cfg.Preview.Width, cfg.Preview.Height = 64, 64

	return &fixture{handler: NewServerContext(cfg, st).Handler(), store: st, project: p}
}

func (f *fixture) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func (f *fixture) sitePath(suffix string) string {
	return "/api/projects/" + f.project.ID + "/sites/" + f.project.Sites[0].ID + suffix
}

func TestProjectRoutes(t *testing.T) {
	is := is.New(t)
	f := newFixture(t)

	rec := f.do(http.MethodGet, "/api/projects", "")
	is.Equal(rec.Code, http.StatusOK)
	var list []store.ProjectSummary
	is.NoErr(json.NewDecoder(rec.Body).Decode(&list))
	is.Equal(len(list), 1)
	is.Equal(list[0].ID, f.project.ID)

	rec = f.do(http.MethodGet, "/api/projects/"+f.project.ID, "")
	is.Equal(rec.Code, http.StatusOK)
	var p site.Project
	is.NoErr(json.NewDecoder(rec.Body).Decode(&p))
	is.Equal(p.Name, "API")

	rec = f.do(http.MethodGet, "/api/projects/missing", "")
	is.Equal(rec.Code, http.StatusNotFound)

	rec = f.do(http.MethodGet, "/api/projects/"+f.project.ID+"/bounds", "")
	is.Equal(rec.Code, http.StatusOK)
	var b geo.Bounds
	is.NoErr(json.NewDecoder(rec.Body).Decode(&b))
	is.Equal(b.Corners(), [2][2]float64{{-123.12, 49.28}, {-123.11, 49.29}})
}

func TestCreateAndDeleteProject(t *testing.T) {
	is := is.New(t)
	f := newFixture(t)

	rec := f.do(http.MethodPost, "/api/projects", `{"name":"Fresh"}`)
	is.Equal(rec.Code, http.StatusCreated)
	var p site.Project
	is.NoErr(json.NewDecoder(rec.Body).Decode(&p))
	is.Equal(len(p.Sites), 1)

	// a new project has no geometry yet
	rec = f.do(http.MethodGet, "/api/projects/"+p.ID+"/bounds", "")
	is.Equal(rec.Code, http.StatusNoContent)

	rec = f.do(http.MethodPost, "/api/projects", `{}`)
	is.Equal(rec.Code, http.StatusBadRequest)

	rec = f.do(http.MethodDelete, "/api/projects/"+p.ID, "")
	is.Equal(rec.Code, http.StatusNoContent)
	rec = f.do(http.MethodDelete, "/api/projects/"+p.ID, "")
	is.Equal(rec.Code, http.StatusNotFound)
}

func TestSiteRoutes(t *testing.T) {
	is := is.New(t)
	f := newFixture(t)

	rec := f.do(http.MethodGet, f.sitePath("/geojson"), "")
	is.Equal(rec.Code, http.StatusOK)
	is.Equal(rec.Header().Get("Content-Type"), "application/geo+json")
	var fc struct {
		Type     string            `json:"type"`
		Features []json.RawMessage `json:"features"`
	}
	is.NoErr(json.NewDecoder(rec.Body).Decode(&fc))
	is.Equal(fc.Type, "FeatureCollection")
	is.Equal(len(fc.Features), 2)

	rec = f.do(http.MethodGet, f.sitePath("/completeness"), "")
	is.Equal(rec.Code, http.StatusOK)
	var c site.Completeness
	is.NoErr(json.NewDecoder(rec.Body).Decode(&c))
	is.True(!c.IsComplete)
	is.Equal(c.Percent, 20)

	rec = f.do(http.MethodGet, "/api/projects/"+f.project.ID+"/sites/missing/completeness", "")
	is.Equal(rec.Code, http.StatusNotFound)
}

func TestSitePreview(t *testing.T) {
	is := is.New(t)
	f := newFixture(t)

	rec := f.do(http.MethodGet, f.sitePath("/preview.webp"), "")
	is.Equal(rec.Code, http.StatusOK)
	is.Equal(rec.Header().Get("Content-Type"), "image/webp")
	is.True(rec.Body.Len() > 0)

	etag := rec.Header().Get("ETag")
	is.True(etag != "")

	req := httptest.NewRequest(http.MethodGet, f.sitePath("/preview.webp"), nil)
	req.Header.Set("If-None-Match", etag)
	cached := httptest.NewRecorder()
	f.handler.ServeHTTP(cached, req)
	is.Equal(cached.Code, http.StatusNotModified)
}

func TestSiteDuplicate(t *testing.T) {
	is := is.New(t)
	f := newFixture(t)

	rec := f.do(http.MethodPost, f.sitePath("/duplicate"), `{"name":"Copy A"}`)
	is.Equal(rec.Code, http.StatusCreated)
	var dup site.Site
	is.NoErr(json.NewDecoder(rec.Body).Decode(&dup))
	is.Equal(dup.Name, "Copy A")
	is.True(dup.ID != f.project.Sites[0].ID)

	saved, err := f.store.GetProject(context.Background(), f.project.ID)
	is.NoErr(err)
	is.Equal(len(saved.Sites), 2)

	for i := 2; i < site.MaxSitesPerProject; i++ {
		rec = f.do(http.MethodPost, f.sitePath("/duplicate"), "")
		is.Equal(rec.Code, http.StatusCreated)
	}

	rec = f.do(http.MethodPost, f.sitePath("/duplicate"), "")
	is.Equal(rec.Code, http.StatusConflict)
}

func TestSORAVolumes(t *testing.T) {
	is := is.New(t)
	f := newFixture(t)

	fg, err := json.Marshal(f.project.Sites[0].MapData.FlightPlan.FlightGeography)
	is.NoErr(err)

	rec := f.do(http.MethodPost, "/api/sora/volumes", `{"flightGeography":`+string(fg)+`,"contingencyBuffer":0}`)
	is.Equal(rec.Code, http.StatusOK)
	var vols site.SORAVolumes
	is.NoErr(json.NewDecoder(rec.Body).Decode(&vols))
	is.True(vols.ContingencyVolume == nil)
	is.True(vols.GroundRiskBuffer != nil)
	is.Equal(vols.GroundRiskBuffer.Properties.BufferDistance, site.DefaultMaxAltitudeAGL)

	rec = f.do(http.MethodPost, "/api/sora/volumes", `{"flightGeography":`+string(fg)+`}`)
	is.Equal(rec.Code, http.StatusOK)
	vols = site.SORAVolumes{}
	is.NoErr(json.NewDecoder(rec.Body).Decode(&vols))
	is.Equal(vols.ContingencyVolume.Properties.BufferDistance, 300.0)

	rec = f.do(http.MethodPost, "/api/sora/volumes", `{}`)
	is.Equal(rec.Code, http.StatusBadRequest)
}

func TestMeasureRoutes(t *testing.T) {
	is := is.New(t)
	f := newFixture(t)

	rec := f.do(http.MethodPost, "/api/measure/distance",
		`{"from":{"lat":49.2827,"lng":-123.1207},"to":{"lat":49.2827,"lng":-122.1207}}`)
	is.Equal(rec.Code, http.StatusOK)
	var dist map[string]float64
	is.NoErr(json.NewDecoder(rec.Body).Decode(&dist))
	is.True(dist["meters"] > 72400 && dist["meters"] < 72700)

	rec = f.do(http.MethodPost, "/api/measure/area",
		`{"geometry":{"type":"Polygon","coordinates":[[[0,0],[0.01,0],[0.01,0.01],[0,0.01],[0,0]]]}}`)
	is.Equal(rec.Code, http.StatusOK)
	var area map[string]float64
	is.NoErr(json.NewDecoder(rec.Body).Decode(&area))
	is.True(area["squareMeters"] > 1.2e6 && area["squareMeters"] < 1.25e6)

	// untyped geometry is read by its coordinate nesting
	rec = f.do(http.MethodPost, "/api/measure/area",
		`{"geometry":{"coordinates":[[[0,0],[0.01,0],[0.01,0.01]]]}}`)
	is.Equal(rec.Code, http.StatusOK)
	var untyped map[string]float64
	is.NoErr(json.NewDecoder(rec.Body).Decode(&untyped))
	is.True(untyped["squareMeters"] > 0.6e6 && untyped["squareMeters"] < 0.63e6)

	rec = f.do(http.MethodPost, "/api/measure/area", `{"geometry":{"type":"Polygon","coordinates":[[[0,0],[1,1]]]}}`)
	is.Equal(rec.Code, http.StatusUnprocessableEntity)

	rec = f.do(http.MethodPost, "/api/measure/distance", `not json`)
	is.Equal(rec.Code, http.StatusBadRequest)
}
