package main

import (
	"context"
	"crypto/tls"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/woozymasta/mapview/internal/config"
	"github.com/woozymasta/mapview/internal/logger"
	"github.com/woozymasta/mapview/internal/markers"

	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog/log"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	ConfigFile string        `short:"c" long:"config"  env:"CONFIG_FILE" description:"Path to configuration file" default:"config.yaml"`
	Output     string        `short:"o" long:"out"     env:"MARKERS_OUT" description:"Output GeoJSON path, defaults to markers_store from config"`
	Timeout    time.Duration `short:"t" long:"timeout" env:"TIMEOUT"     description:"Download timeout" default:"30s"`
	Force      bool          `short:"f" long:"force"   description:"Force overwrite of existing files"`
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
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	dest := opts.Output
	if dest == "" {
		dest = cfg.MarkersStore
	}
	if dest == "" {
		log.Fatal().Msg("No output path: set --out or markers_store in config")
	}

	// Check if file exists
	if _, err := os.Stat(dest); err == nil && !opts.Force {
		log.Info().Str("path", dest).Msg("Markers file exists, skipping")
		return
	}

	client := &http.Client{
		Transport: &http.Transport{
			TLSNextProto:        make(map[string]func(string, *tls.Conn) http.RoundTripper),
			MaxIdleConns:        10,
			MaxIdleConnsPerHost: 10,
		},
		Timeout: opts.Timeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	log.Info().
		Str("source", cfg.MarkersSource).
		Bool("inline", cfg.MarkersInline != nil).
		Str("dest", dest).
		Msg("Starting loader")

	list, err := markers.Load(ctx, client, markers.Source{Inline: cfg.MarkersInline, Location: cfg.MarkersSource})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load markers")
	}

	if _, err := markers.NewStore(list...); err != nil {
		log.Fatal().Err(err).Msg("Invalid markers")
	}

	if err := markers.Save(dest, list); err != nil {
		log.Fatal().Err(err).Str("path", dest).Msg("Failed to save markers")
	}

	log.Info().Int("markers", len(list)).Msg("Loader finished successfully")
}
