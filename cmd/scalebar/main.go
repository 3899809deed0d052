package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/woozymasta/mapview/internal/render"
	"github.com/woozymasta/mapview/internal/scale"

	"github.com/jessevdk/go-flags"
	"gopkg.in/yaml.v3"
)

type Options struct {
	Output string  `short:"o" long:"out"    description:"Output file path. Writes to stdout if empty"`
	Format string  `short:"f" long:"format" description:"Output format" choice:"json" choice:"yaml" choice:"webp" choice:"png" choice:"svg" default:"json"`
	Lat    float64 `short:"l" long:"lat"    description:"Center latitude in degrees" required:"true"`
	Span   float64 `short:"s" long:"span"   description:"Visible longitude span in degrees" required:"true"`
	Width  float64 `short:"w" long:"width"  description:"Viewport width in pixels" default:"375"`
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

	vp := scale.Viewport{CenterLatitude: opts.Lat, LongitudeSpan: opts.Span, WidthPixels: opts.Width}
	if !vp.Valid() {
		fmt.Fprintln(os.Stderr, "Error: --lat must be in [-90,90], --span and --width must be > 0")
		os.Exit(1)
	}

	res := scale.EstimateViewport(vp)

	var (
		out bytes.Buffer
		err error
	)
	switch opts.Format {
	case "yaml":
		var data []byte
		data, err = yaml.Marshal(res)
		out.Write(data)
	case "webp":
		err = render.EncodeWebP(&out, res, render.DefaultOptions)
	case "png":
		err = render.EncodePNG(&out, res, render.DefaultOptions)
	case "svg":
		var data []byte
		data, err = render.SVG(res, render.DefaultOptions)
		out.Write(data)
	default:
		var data []byte
		data, err = json.MarshalIndent(res, "", "  ")
		out.Write(data)
		out.WriteByte('\n')
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding %s: %v\n", opts.Format, err)
		os.Exit(1)
	}

	if opts.Output == "" {
		_, _ = os.Stdout.Write(out.Bytes())
		return
	}

	if err := os.WriteFile(opts.Output, out.Bytes(), 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing output file: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "Scale %s (%.0f px) written to %s\n", res.Label, res.BarPixels, opts.Output)
}
