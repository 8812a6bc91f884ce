package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/woozymasta/rpasplan/internal/site"

	"github.com/matryer/is"
)

func TestLoadFillsDefaults(t *testing.T) {
	is := is.New(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	err := os.WriteFile(path, []byte("database: /tmp/plans.db\nsora:\n  reaction_time_seconds: 5\npreview:\n  width: 256\n"), 0o644)
	is.NoErr(err)

	cfg, err := Load(path)
	is.NoErr(err)
	is.Equal(cfg.Database, "/tmp/plans.db")
	is.Equal(cfg.SORA.ReactionTimeSeconds, 5.0)
	is.Equal(cfg.SORA.MaxAltitudeAGL, site.DefaultMaxAltitudeAGL)
	is.Equal(cfg.Preview.Width, 256)
	is.Equal(cfg.Preview.Height, 512)
	is.Equal(cfg.Server.Port, 8080)
}

func TestLoadMissingFile(t *testing.T) {
	is := is.New(t)

	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	is.True(os.IsNotExist(err))
}

func TestApplyFlightDefaults(t *testing.T) {
	is := is.New(t)

	fp := site.FlightPlanInfo{MaxAltitudeAGL: 60}
	Default().SORA.ApplyFlightDefaults(&fp)

	is.Equal(fp.MaxAltitudeAGL, 60.0)
	is.Equal(fp.AircraftMaxSpeed, site.DefaultAircraftMaxSpeed)
	is.Equal(fp.ReactionTimeSeconds, site.DefaultReactionTimeSeconds)
}
