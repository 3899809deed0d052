// Package render draws the map scale indicator as raster or vector images.
package render

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"

	"github.com/woozymasta/mapview/internal/scale"

	"github.com/chai2010/webp"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Options controls the look of the scale bar.
type Options struct {
	Foreground color.RGBA
	Halo       color.RGBA
	Padding    int
	Thickness  int
	Quality    float32 // WebP quality, 0 means 85
	Lossless   bool
}

// DefaultOptions is a dark bar with a white halo, readable on any map type.
var DefaultOptions = Options{
	Foreground: color.RGBA{R: 0x22, G: 0x22, B: 0x22, A: 0xff},
	Halo:       color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xcc},
	Padding:    4,
	Thickness:  3,
	Quality:    85,
}

const tickHeight = 6

// Raster draws the bar with its label above on a transparent canvas.
func Raster(res scale.Result, opts Options) *image.RGBA {
	opts = opts.withDefaults()
	face := basicfont.Face7x13

	bar := int(math.Round(res.BarPixels))
	labelWidth := font.MeasureString(face, res.Label).Ceil()
	textHeight := face.Metrics().Height.Ceil()

	width := max(bar, labelWidth) + 2*opts.Padding + 1
	height := textHeight + tickHeight + opts.Thickness + 2*opts.Padding
	img := image.NewRGBA(image.Rect(0, 0, width, height))

	x0 := opts.Padding
	baseline := height - opts.Padding - opts.Thickness

	// halo first so the bar keeps a light outline on dark tiles
	fill(img, image.Rect(x0-1, baseline-tickHeight-1, x0+bar+2, baseline+opts.Thickness+1), opts.Halo)

	fill(img, image.Rect(x0, baseline, x0+bar+1, baseline+opts.Thickness), opts.Foreground)
	fill(img, image.Rect(x0, baseline-tickHeight, x0+opts.Thickness/2+1, baseline), opts.Foreground)
	fill(img, image.Rect(x0+bar-opts.Thickness/2, baseline-tickHeight, x0+bar+1, baseline), opts.Foreground)

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(opts.Foreground),
		Face: face,
		Dot:  fixed.P(x0, opts.Padding+face.Metrics().Ascent.Ceil()),
	}
	d.DrawString(res.Label)

	return img
}

// EncodeWebP writes the rendered bar as WebP.
func EncodeWebP(w io.Writer, res scale.Result, opts Options) error {
	opts = opts.withDefaults()
	return webp.Encode(w, Raster(res, opts), &webp.Options{Lossless: opts.Lossless, Quality: opts.Quality})
}

// EncodePNG writes the rendered bar as PNG.
func EncodePNG(w io.Writer, res scale.Result, opts Options) error {
	return png.Encode(w, Raster(res, opts))
}

func fill(img *image.RGBA, r image.Rectangle, c color.RGBA) {
	draw.Draw(img, r.Intersect(img.Bounds()), image.NewUniform(c), image.Point{}, draw.Over)
}

func (o Options) withDefaults() Options {
	if o.Foreground == (color.RGBA{}) {
		o.Foreground = DefaultOptions.Foreground
	}
	if o.Padding <= 0 {
		o.Padding = DefaultOptions.Padding
	}
	if o.Thickness <= 0 {
		o.Thickness = DefaultOptions.Thickness
	}
	if o.Quality <= 0 {
		o.Quality = DefaultOptions.Quality
	}

	return o
}
