// Package preview renders an in-memory, downscaled view of a split:
// the flattened document with cell boundaries and page numbers drawn on
// top. No files are written.
//
// The preview computes cell rectangles with the same grid engine as a
// full run against the full-resolution canvas and only then scales them
// down, so what the overlay shows is exactly where the cuts will land.
package preview

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"math"
	"strconv"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/namesheet/namesplit/pkg/config"
	"github.com/namesheet/namesplit/pkg/grid"
	"github.com/namesheet/namesplit/pkg/merge"
	"github.com/namesheet/namesplit/pkg/source"
)

// DefaultMaxDim bounds the longer preview edge when the caller does not
// say otherwise.
const DefaultMaxDim = 1400

// jpegQuality for preview encoding. Lower than page output: previews
// are transient and size matters more than fidelity.
const jpegQuality = 85

var (
	lineColor  = color.RGBA{R: 220, G: 40, B: 40, A: 255}
	labelColor = color.RGBA{R: 220, G: 40, B: 40, A: 255}
)

// Options tunes preview rendering.
type Options struct {
	// MaxDim bounds the longer edge of the preview in pixels.
	// Zero means DefaultMaxDim.
	MaxDim int
}

// Preview is one encoded preview image plus its geometry.
type Preview struct {
	// Data is the JPEG-encoded preview.
	Data []byte

	// Width and Height are the preview dimensions in pixels.
	Width  int
	Height int

	// Scale is the factor applied to full-resolution coordinates.
	Scale float64

	// Pages is the number of cells the grid produced.
	Pages int
}

// Render produces a preview of splitting src with cfg.
func Render(cfg *config.Config, src source.Source, opts Options) (*Preview, error) {
	width, height := src.Bounds()

	cells, err := grid.CellsFor(cfg.Grid, width, height)
	if err != nil {
		return nil, err
	}

	base, err := flattenBase(cfg, src, width, height, opts.MaxDim)
	if err != nil {
		return nil, err
	}
	return Overlay(base, cells, width, height)
}

// Overlay draws the grid on an already-downscaled base image and encodes
// the result. cells and canvas dimensions are full-resolution; the scale
// is derived from the base image size.
func Overlay(base image.Image, cells []grid.CellRect, canvasWidth, canvasHeight int) (*Preview, error) {
	pw := base.Bounds().Dx()
	ph := base.Bounds().Dy()
	scale := float64(pw) / float64(canvasWidth)

	canvas := image.NewRGBA(image.Rect(0, 0, pw, ph))
	draw.Draw(canvas, canvas.Bounds(), base, base.Bounds().Min, draw.Src)

	DrawOverlay(canvas, cells, scale)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, canvas, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, err
	}
	return &Preview{
		Data:   buf.Bytes(),
		Width:  pw,
		Height: ph,
		Scale:  scale,
		Pages:  len(cells),
	}, nil
}

// flattenBase merges and flattens the document, then downscales it to
// fit maxDim. The background is white so transparent regions read as
// paper, matching the JPEG output path.
func flattenBase(cfg *config.Config, src source.Source, width, height, maxDim int) (*image.RGBA, error) {
	res := merge.Apply(src.Layers(), cfg.Merge, cfg.Output.LayerStack)
	composites := merge.Composite(res, cfg.Output.LayerStack, width, height)

	flat := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(flat, flat.Bounds(), image.White, image.Point{}, draw.Src)
	for _, name := range cfg.Output.LayerStack {
		draw.Draw(flat, flat.Bounds(), composites[name], image.Point{}, draw.Over)
	}

	return Downscale(flat, maxDim), nil
}

// Downscale fits img within maxDim on its longer edge, preserving
// aspect ratio. Images already within the bound are returned as is.
func Downscale(img *image.RGBA, maxDim int) *image.RGBA {
	if maxDim <= 0 {
		maxDim = DefaultMaxDim
	}
	w := img.Bounds().Dx()
	h := img.Bounds().Dy()
	longest := w
	if h > longest {
		longest = h
	}
	if longest <= maxDim {
		return img
	}

	scale := float64(maxDim) / float64(longest)
	pw := int(math.Round(float64(w) * scale))
	ph := int(math.Round(float64(h) * scale))
	if pw < 1 {
		pw = 1
	}
	if ph < 1 {
		ph = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, pw, ph))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), xdraw.Src, nil)
	return dst
}

// DrawOverlay draws cell outlines and centered page-number labels onto
// dst. cells carry full-resolution coordinates; scale maps them into
// dst's space (1.0 when dst is the full canvas, as in template sheets).
func DrawOverlay(dst *image.RGBA, cells []grid.CellRect, scale float64) {
	for _, c := range cells {
		r := scaleRect(c, scale)
		drawRectOutline(dst, r, lineColor)
		drawPageLabel(dst, strconv.Itoa(c.Page), r)
	}
}

func scaleRect(c grid.CellRect, scale float64) image.Rectangle {
	x0 := int(math.Round(float64(c.X) * scale))
	y0 := int(math.Round(float64(c.Y) * scale))
	x1 := int(math.Round(float64(c.X+c.W) * scale))
	y1 := int(math.Round(float64(c.Y+c.H) * scale))
	return image.Rect(x0, y0, x1, y1)
}

func drawRectOutline(dst *image.RGBA, r image.Rectangle, col color.RGBA) {
	r = r.Intersect(dst.Bounds())
	if r.Empty() {
		return
	}
	for x := r.Min.X; x < r.Max.X; x++ {
		dst.SetRGBA(x, r.Min.Y, col)
		dst.SetRGBA(x, r.Max.Y-1, col)
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		dst.SetRGBA(r.Min.X, y, col)
		dst.SetRGBA(r.Max.X-1, y, col)
	}
}

// drawPageLabel centers text in r, scaling the bitmap font up for large
// cells so labels stay legible at any preview size.
func drawPageLabel(dst *image.RGBA, text string, r image.Rectangle) {
	face := basicfont.Face7x13
	textW := len(text) * face.Advance
	textH := face.Height

	// Integer upscaling of the bitmap face, bounded so labels never
	// dominate a cell.
	short := r.Dx()
	if r.Dy() < short {
		short = r.Dy()
	}
	k := short / 80
	if k < 1 {
		k = 1
	}
	if k > 6 {
		k = 6
	}
	if textW*k > r.Dx() || textH*k > r.Dy() {
		return
	}

	tmp := image.NewRGBA(image.Rect(0, 0, textW, textH))
	d := font.Drawer{
		Dst:  tmp,
		Src:  image.NewUniform(labelColor),
		Face: face,
		Dot:  fixed.P(0, face.Ascent),
	}
	d.DrawString(text)

	cx := (r.Min.X + r.Max.X) / 2
	cy := (r.Min.Y + r.Max.Y) / 2
	target := image.Rect(cx-textW*k/2, cy-textH*k/2, cx+textW*k/2, cy+textH*k/2)
	xdraw.NearestNeighbor.Scale(dst, target, tmp, tmp.Bounds(), xdraw.Over, nil)
}
