// Package config handles configuration loading and defaults.
package config

import (
	"os"

	"github.com/woozymasta/rpasplan/internal/site"

	"gopkg.in/yaml.v3"
)

// Config represents the root configuration file structure.
type Config struct {
	Database string  `yaml:"database" json:"database"`
	SORA     SORA    `yaml:"sora" json:"sora"`
	Preview  Preview `yaml:"preview" json:"preview"`
	Server   Server  `yaml:"server" json:"server"`
}

// SORA holds flight plan defaults applied to imported sites that omit them.
type SORA struct {
	MaxAltitudeAGL      float64 `yaml:"max_altitude_agl,omitempty" json:"max_altitude_agl"`
	AircraftMaxSpeed    float64 `yaml:"aircraft_max_speed,omitempty" json:"aircraft_max_speed"`
	ReactionTimeSeconds float64 `yaml:"reaction_time_seconds,omitempty" json:"reaction_time_seconds"`
}

// Preview configures rendered site previews.
type Preview struct {
	Background string `yaml:"background,omitempty" json:"background"`
	Width      int    `yaml:"width,omitempty" json:"width"`
	Height     int    `yaml:"height,omitempty" json:"height"`
	Padding    int    `yaml:"padding,omitempty" json:"padding"`
	Quality    int    `yaml:"quality,omitempty" json:"quality"`
}

// Server configures the HTTP API.
type Server struct {
	Addr string `yaml:"addr,omitempty" json:"addr"`
	Port int    `yaml:"port,omitempty" json:"port"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads and parses the YAML configuration file from the specified path.
// Missing values are filled with defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Database == "" {
		c.Database = "rpasplan.db"
	}

	if c.SORA.MaxAltitudeAGL <= 0 {
		c.SORA.MaxAltitudeAGL = site.DefaultMaxAltitudeAGL
	}
	if c.SORA.AircraftMaxSpeed <= 0 {
		c.SORA.AircraftMaxSpeed = site.DefaultAircraftMaxSpeed
	}
	if c.SORA.ReactionTimeSeconds <= 0 {
		c.SORA.ReactionTimeSeconds = site.DefaultReactionTimeSeconds
	}

	if c.Preview.Width <= 0 {
		c.Preview.Width = 512
	}
	if c.Preview.Height <= 0 {
		c.Preview.Height = 512
	}
	if c.Preview.Padding <= 0 {
		c.Preview.Padding = 24
	}
	if c.Preview.Quality <= 0 || c.Preview.Quality > 100 {
		c.Preview.Quality = 85
	}
	if c.Preview.Background == "" {
		c.Preview.Background = "#f8fafc"
	}

	if c.Server.Addr == "" {
		c.Server.Addr = "0.0.0.0"
	}
	if c.Server.Port <= 0 {
		c.Server.Port = 8080
	}
}

// ApplyFlightDefaults fills zero flight plan parameters of a site.
func (s SORA) ApplyFlightDefaults(fp *site.FlightPlanInfo) {
	if fp.MaxAltitudeAGL <= 0 {
		fp.MaxAltitudeAGL = s.MaxAltitudeAGL
	}
	if fp.AircraftMaxSpeed <= 0 {
		fp.AircraftMaxSpeed = s.AircraftMaxSpeed
	}
	if fp.ReactionTimeSeconds <= 0 {
		fp.ReactionTimeSeconds = s.ReactionTimeSeconds
	}
}
