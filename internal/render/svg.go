package render

import (
	"bytes"
	"fmt"
	"html"
	"image/color"
	"math"
	"text/template"

	"github.com/woozymasta/mapview/internal/scale"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/svg"
)

const svgMime = "image/svg+xml"

var svgTemplate = template.Must(template.New("scalebar").Parse(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="{{.Width}}" height="{{.Height}}" viewBox="0 0 {{.Width}} {{.Height}}">
  <title>{{.Label}}</title>
  <g fill="none" stroke-linecap="square">
    <path d="M{{.X0}} {{.Top}} V{{.Base}} H{{.X1}} V{{.Top}}" stroke="{{.Halo}}" stroke-width="{{.HaloWidth}}"/>
    <path d="M{{.X0}} {{.Top}} V{{.Base}} H{{.X1}} V{{.Top}}" stroke="{{.Color}}" stroke-width="{{.Thickness}}"/>
  </g>
  <text x="{{.X0}}" y="{{.TextY}}" font-family="sans-serif" font-size="12" fill="{{.Color}}">{{.Label}}</text>
</svg>
`))

type svgData struct {
	Label, Color, Halo               string
	Width, Height, X0, X1, Top, Base int
	TextY, Thickness, HaloWidth      int
}

var minifier = func() *minify.M {
	m := minify.New()
	m.AddFunc(svgMime, svg.Minify)
	return m
}()

// SVG renders the bar as a minified SVG document.
func SVG(res scale.Result, opts Options) ([]byte, error) {
	opts = opts.withDefaults()

	bar := int(math.Round(res.BarPixels))
	const textHeight = 14
	// rough advance for 12px sans-serif
	labelWidth := len(res.Label) * 7

	data := svgData{
		Label:     html.EscapeString(res.Label),
		Color:     hex(opts.Foreground),
		Halo:      hex(opts.Halo),
		Width:     max(bar, labelWidth) + 2*opts.Padding + 1,
		Height:    textHeight + tickHeight + opts.Thickness + 2*opts.Padding,
		X0:        opts.Padding,
		X1:        opts.Padding + bar,
		TextY:     opts.Padding + 11,
		Thickness: opts.Thickness,
		HaloWidth: opts.Thickness + 2,
	}
	data.Base = data.Height - opts.Padding - opts.Thickness/2 - 1
	data.Top = data.Base - tickHeight

	var buf bytes.Buffer
	if err := svgTemplate.Execute(&buf, data); err != nil {
		return nil, err
	}

	out, err := minifier.Bytes(svgMime, buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("minify svg: %w", err)
	}

	return out, nil
}

func hex(c color.RGBA) string {
	if c.A == 0xff {
		return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
	}

	return fmt.Sprintf("rgba(%d,%d,%d,%.2f)", c.R, c.G, c.B, float64(c.A)/255)
}
