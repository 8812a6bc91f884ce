package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/woozymasta/rpasplan/internal/config"
	"github.com/woozymasta/rpasplan/internal/export"
	"github.com/woozymasta/rpasplan/internal/logger"
	"github.com/woozymasta/rpasplan/internal/processor"
	"github.com/woozymasta/rpasplan/internal/site"

	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	Input       string  `short:"i" long:"in" description:"Input site document (JSON or YAML). Reads JSON from stdin if empty"`
	Output      string  `short:"o" long:"out" description:"Output file path. Writes to stdout if empty"`
	Format      string  `short:"f" long:"format" description:"Output format" choice:"json" choice:"yaml" default:"json"`
	Contingency float64 `short:"C" long:"contingency" description:"Contingency buffer in meters, derived from the flight plan if 0"`
	GroundRisk  float64 `short:"G" long:"ground-risk" description:"Ground risk buffer in meters, derived from the flight plan if 0"`
	GeoJSON     bool    `short:"g" long:"geojson" description:"Write the whole site as a GeoJSON feature collection"`
	Minify      bool    `short:"m" long:"minify" description:"Minify JSON output"`
}

func main() {
	var opts Options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	opts.Logger.Setup()

	s, err := readSite(opts.Input)
	if err != nil {
		log.Fatal().Err(err).Str("input", opts.Input).Msg("Failed to read site")
	}

	config.Default().SORA.ApplyFlightDefaults(&s.FlightPlan)

	fg := s.MapData.FlightPlan.FlightGeography
	if fg == nil {
		log.Fatal().Str("site", s.ID).Msg("Site has no flight geography")
	}

	contingency := opts.Contingency
	if contingency <= 0 {
		contingency = site.ContingencyBufferDistance(s.FlightPlan.AircraftMaxSpeed, s.FlightPlan.ReactionTimeSeconds)
	}
	groundRisk := opts.GroundRisk
	if groundRisk <= 0 {
		groundRisk = site.GroundRiskBufferDistance(s.FlightPlan.MaxAltitudeAGL)
	}

	vols := site.GenerateSORAVolumes(fg, contingency, groundRisk)
	s.MapData.FlightPlan.ContingencyVolume = vols.ContingencyVolume
	s.MapData.FlightPlan.GroundRiskBuffer = vols.GroundRiskBuffer
	s.Touch()

	// marshal
	var outputData []byte
	switch {
	case opts.GeoJSON:
		outputData, err = export.Encode(export.FeatureCollection(s), export.Format(opts.Format), opts.Minify)
	case opts.Format == "yaml":
		outputData, err = yaml.Marshal(vols)
	case opts.Minify:
		outputData, err = json.Marshal(vols)
	default:
		outputData, err = json.MarshalIndent(vols, "", "  ")
	}

	if err != nil {
		log.Fatal().Err(err).Msg("Failed to marshal volumes")
	}

	if opts.Output != "" {
		if err := os.WriteFile(opts.Output, outputData, 0644); err != nil {
			log.Fatal().Err(err).Str("output", opts.Output).Msg("Failed to write output file")
		}
		log.Info().
			Bool("contingency", vols.ContingencyVolume != nil).
			Bool("groundRisk", vols.GroundRiskBuffer != nil).
			Str("output", opts.Output).
			Str("format", opts.Format).
			Msg("Generated SORA volumes")
	} else {
		fmt.Println(string(outputData))
	}
}

func readSite(path string) (*site.Site, error) {
	if path != "" {
		return processor.LoadSiteFile(path)
	}

	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return nil, err
	}

	var s site.Site
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}
