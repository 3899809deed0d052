package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/woozymasta/mapview/internal/config"
	"github.com/woozymasta/mapview/internal/logger"
	"github.com/woozymasta/mapview/internal/markers"
	"github.com/woozymasta/mapview/internal/server"

	"github.com/jessevdk/go-flags"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	ConfigFile    string  `short:"c" long:"config"         env:"CONFIG_FILE"    description:"Path to configuration file" default:"config.yaml"`
	Addr          string  `short:"a" long:"addr"           env:"LISTEN_ADDRESS" description:"Address to listen on"       default:"0.0.0.0"`
	Port          int     `short:"p" long:"port"           env:"LISTEN_PORT"    description:"Port to listen on"          default:"8080"`
	ViewportWidth float64 `short:"w" long:"viewport-width" env:"VIEWPORT_WIDTH" description:"Viewport width in pixels used for the view scale"`
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
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	if opts.ViewportWidth > 0 {
		cfg.View.ViewportWidth = opts.ViewportWidth
	}

	// Load Markers, a persisted store wins over the seed source
	src := markers.Source{Inline: cfg.MarkersInline, Location: cfg.MarkersSource}
	if cfg.MarkersStore != "" {
		if _, err := os.Stat(cfg.MarkersStore); err == nil {
			src = markers.Source{Location: cfg.MarkersStore}
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	list, err := markers.Load(ctx, &http.Client{Timeout: 15 * time.Second}, src)
	cancel()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load markers")
	}

	store, err := markers.NewStore(list...)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid markers")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	srvCtx, err := server.NewServerContext(cfg, store, reg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize server")
	}

	listenAddr := fmt.Sprintf("%s:%d", opts.Addr, opts.Port)
	log.Info().
		Str("addr", listenAddr).
		Int("markers_loaded", store.Len()).
		Float64("viewport_width", cfg.View.ViewportWidth).
		Msg("Web server started")

	srv := &http.Server{
		Addr:              listenAddr,
		Handler:           srvCtx.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		log.Fatal().Err(err).Msg("Server failed")
	}
}
