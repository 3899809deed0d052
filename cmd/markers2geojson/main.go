package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/woozymasta/mapview/internal/logger"
	"github.com/woozymasta/mapview/internal/markers"

	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	Input  string `short:"i" long:"in"  description:"Input file with a YAML or JSON list of markers. Reads from stdin if empty"`
	Output string `short:"o" long:"out" description:"Output file path. Writes to stdout if empty"`
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

	// Read Input
	var inputData []byte
	var err error

	if opts.Input != "" {
		inputData, err = os.ReadFile(opts.Input)
		if err != nil {
			log.Fatal().Err(err).Str("path", opts.Input).Msg("Failed to read input file")
		}
	} else {
		inputData, err = io.ReadAll(os.Stdin)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to read stdin")
		}
	}

	// YAML is a superset of JSON
	var list []markers.Marker
	if err := yaml.Unmarshal(inputData, &list); err != nil {
		log.Fatal().Err(err).Msg("Failed to parse markers")
	}

	// reuse store validation for ids and coordinates
	if _, err := markers.NewStore(list...); err != nil {
		log.Fatal().Err(err).Msg("Invalid markers")
	}

	if opts.Output != "" {
		if err := markers.Save(opts.Output, list); err != nil {
			log.Fatal().Err(err).Str("path", opts.Output).Msg("Failed to write output file")
		}
		log.Info().Int("markers", len(list)).Str("path", opts.Output).Msg("Markers converted")
		return
	}

	outputData, err := json.MarshalIndent(markers.ToFeatureCollection(list), "", "  ")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to marshal GeoJSON")
	}
	fmt.Println(string(outputData))
}
