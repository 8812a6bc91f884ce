package main

import (
	"context"
	"crypto/tls"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/woozymasta/rpasplan/internal/config"
	"github.com/woozymasta/rpasplan/internal/logger"
	"github.com/woozymasta/rpasplan/internal/processor"
	"github.com/woozymasta/rpasplan/internal/render"
	"github.com/woozymasta/rpasplan/internal/store"

	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog/log"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	ConfigFile   string `short:"c" long:"config"       env:"CONFIG_FILE"   description:"Path to configuration file" default:"config.yaml"`
	Database     string `short:"d" long:"database"     env:"DATABASE_PATH" description:"SQLite database path, overrides config"`
	Project      string `short:"n" long:"project"      env:"PROJECT_NAME"  description:"Name of the imported project" default:"Imported project"`
	ObstaclesURL string `short:"o" long:"obstacles"    env:"OBSTACLES_URL" description:"GeoJSON obstacle feed merged into site boundaries"`
	GeoJSONDir   string `short:"g" long:"geojson-dir"  env:"GEOJSON_DIR"   description:"Write a GeoJSON file per site into this directory"`
	PreviewDir   string `short:"w" long:"preview-dir"  env:"PREVIEW_DIR"   description:"Write a WebP preview per site into this directory"`
	Concurrency  int    `short:"p" long:"concurrency"  env:"CONCURRENCY"   description:"Concurrency" default:"4"`
	KeepVolumes  bool   `short:"k" long:"keep-volumes" description:"Keep SORA volumes from the files instead of regenerating them"`
	Minify       bool   `short:"m" long:"minify"       description:"Minify written GeoJSON"`
	Force        bool   `short:"f" long:"force"        description:"Force overwrite of existing files"`

	Args struct {
		Files []string `positional-arg-name:"FILE" required:"1"`
	} `positional-args:"yes"`
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

	cfg, err := config.Load(opts.ConfigFile)
	if errors.Is(err, os.ErrNotExist) {
		cfg = config.Default()
	} else if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if opts.Database != "" {
		cfg.Database = opts.Database
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	client := &http.Client{
		Transport: &http.Transport{
			TLSNextProto:        make(map[string]func(string, *tls.Conn) http.RoundTripper),
			MaxIdleConns:        10,
			MaxIdleConnsPerHost: 10,
		},
		Timeout: 15 * time.Second,
	}

	st, err := store.Open(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Str("database", cfg.Database).Msg("Failed to open project store")
	}
	defer func() { _ = st.Close() }()

	log.Info().
		Int("files", len(opts.Args.Files)).
		Str("project", opts.Project).
		Str("database", cfg.Database).
		Msg("Starting loader")

	p, err := processor.ImportSites(ctx, st, opts.Project, opts.Args.Files, processor.ImportOptions{
		Client:       client,
		ObstaclesURL: opts.ObstaclesURL,
		GeoJSONDir:   opts.GeoJSONDir,
		SORA:         cfg.SORA,
		Concurrency:  opts.Concurrency,
		Regenerate:   !opts.KeepVolumes,
		Minify:       opts.Minify,
		Force:        opts.Force,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Import failed")
	}

	if opts.PreviewDir != "" {
		n, err := processor.RenderPreviews(ctx, p.Sites, filepath.Clean(opts.PreviewDir), processor.PreviewOptions{
			Render: render.Options{
				Width:      cfg.Preview.Width,
				Height:     cfg.Preview.Height,
				Padding:    cfg.Preview.Padding,
				Background: cfg.Preview.Background,
			},
			Quality:     cfg.Preview.Quality,
			Concurrency: opts.Concurrency,
			Force:       opts.Force,
		})
		if err != nil {
			log.Error().Err(err).Msg("Failed to render some previews")
		}
		log.Info().Int("written", n).Str("dir", opts.PreviewDir).Msg("Previews rendered")
	}

	log.Info().Str("project", p.ID).Msg("Loader finished successfully")
}
