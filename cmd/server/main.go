package main

import (
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/woozymasta/rpasplan/internal/config"
	"github.com/woozymasta/rpasplan/internal/logger"
	"github.com/woozymasta/rpasplan/internal/server"
	"github.com/woozymasta/rpasplan/internal/store"

	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog/log"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	ConfigFile string `short:"c" long:"config"   env:"CONFIG_FILE"    description:"Path to configuration file" default:"config.yaml"`
	Database   string `short:"d" long:"database" env:"DATABASE_PATH"  description:"SQLite database path, overrides config"`
	Addr       string `short:"a" long:"addr"     env:"LISTEN_ADDRESS" description:"Address to listen on, overrides config"`
	Port       int    `short:"p" long:"port"     env:"LISTEN_PORT"    description:"Port to listen on, overrides config"`
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

	// Setup Logging
	opts.Logger.Setup()

	// Load Config
	cfg, err := config.Load(opts.ConfigFile)
	if errors.Is(err, os.ErrNotExist) {
		log.Warn().Str("path", opts.ConfigFile).Msg("Configuration file not found, using defaults")
		cfg = config.Default()
	} else if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	if opts.Database != "" {
		cfg.Database = opts.Database
	}
	if opts.Addr != "" {
		cfg.Server.Addr = opts.Addr
	}
	if opts.Port > 0 {
		cfg.Server.Port = opts.Port
	}

	st, err := store.Open(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Str("database", cfg.Database).Msg("Failed to open project store")
	}
	defer func() { _ = st.Close() }()

	srvCtx := server.NewServerContext(cfg, st)

	listenAddr := fmt.Sprintf("%s:%d", cfg.Server.Addr, cfg.Server.Port)
	log.Info().
		Str("addr", listenAddr).
		Str("database", cfg.Database).
		Msg("Web server started")

	if err := http.ListenAndServe(listenAddr, srvCtx.Handler()); err != nil {
		log.Fatal().Err(err).Msg("Server failed")
	}
}
