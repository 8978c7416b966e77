// Package template generates blank grid template sheets for standard
// paper sizes: a white canvas at the paper's pixel dimensions with the
// configured grid drawn on top, for printing or as a drawing guide.
package template

import (
	"image"
	"image/draw"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/namesheet/namesplit/pkg/config"
	nserr "github.com/namesheet/namesplit/pkg/errors"
	"github.com/namesheet/namesplit/pkg/grid"
	"github.com/namesheet/namesplit/pkg/preview"
	"github.com/namesheet/namesplit/pkg/render"
	"github.com/namesheet/namesplit/pkg/units"
)

// Orientations.
const (
	Portrait  = "portrait"
	Landscape = "landscape"
)

// Paper is a named sheet size in millimeters, portrait orientation.
type Paper struct {
	Name     string
	WidthMm  float64
	HeightMm float64
}

// B sizes are JIS, the sizes manga name sheets are actually drawn on.
var papers = map[string]Paper{
	"a4": {Name: "a4", WidthMm: 210, HeightMm: 297},
	"a5": {Name: "a5", WidthMm: 148, HeightMm: 210},
	"b4": {Name: "b4", WidthMm: 257, HeightMm: 364},
	"b5": {Name: "b5", WidthMm: 182, HeightMm: 257},
}

// Sizes lists the supported paper names, sorted.
func Sizes() []string {
	names := make([]string, 0, len(papers))
	for name := range papers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve returns the pixel dimensions of a paper at the given DPI.
func Resolve(paper, orientation string, dpi float64) (int, int, error) {
	p, ok := papers[strings.ToLower(paper)]
	if !ok {
		return 0, 0, nserr.New(nserr.ErrCodeConfigInvalid, "unknown paper size %q (supported: %s)", paper, strings.Join(Sizes(), ", "))
	}

	wMm, hMm := p.WidthMm, p.HeightMm
	switch strings.ToLower(orientation) {
	case Portrait, "":
	case Landscape:
		wMm, hMm = hMm, wMm
	default:
		return 0, 0, nserr.New(nserr.ErrCodeConfigInvalid, "orientation must be %q or %q, got %q", Portrait, Landscape, orientation)
	}

	w, err := units.ToPixels(wMm, units.Mm, dpi)
	if err != nil {
		return 0, 0, err
	}
	h, err := units.ToPixels(hMm, units.Mm, dpi)
	if err != nil {
		return 0, 0, err
	}
	return w, h, nil
}

// Generate renders a template sheet: white paper with cfg's grid drawn
// at full resolution. The grid DPI is used for the paper dimensions and
// for resolving mm margins, so a 5mm margin lands at 5mm on the print.
func Generate(cfg *config.Config, paper, orientation string) (*image.RGBA, []grid.CellRect, error) {
	width, height, err := Resolve(paper, orientation, cfg.Grid.DPI)
	if err != nil {
		return nil, nil, err
	}

	cells, err := grid.CellsFor(cfg.Grid, width, height)
	if err != nil {
		return nil, nil, err
	}

	sheet := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(sheet, sheet.Bounds(), image.White, image.Point{}, draw.Src)
	preview.DrawOverlay(sheet, cells, 1.0)
	return sheet, cells, nil
}

// Write persists a generated sheet, inferring the format from the file
// extension and defaulting to PNG.
func Write(path string, sheet image.Image) error {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if ext == "" {
		ext = "png"
	}

	f, err := os.Create(path)
	if err != nil {
		return nserr.Wrap(nserr.ErrCodeRenderIO, err, "failed to create template file: %s", path)
	}
	encErr := render.Encode(f, sheet, ext)
	closeErr := f.Close()
	if encErr != nil {
		_ = os.Remove(path)
		return encErr
	}
	if closeErr != nil {
		_ = os.Remove(path)
		return nserr.Wrap(nserr.ErrCodeRenderIO, closeErr, "failed to write template file: %s", path)
	}
	return nil
}

// Preview renders a downscaled in-memory view of a template sheet.
func Preview(cfg *config.Config, paper, orientation string, maxDim int) (*preview.Preview, error) {
	width, height, err := Resolve(paper, orientation, cfg.Grid.DPI)
	if err != nil {
		return nil, err
	}
	cells, err := grid.CellsFor(cfg.Grid, width, height)
	if err != nil {
		return nil, err
	}

	base := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(base, base.Bounds(), image.White, image.Point{}, draw.Src)
	return preview.Overlay(preview.Downscale(base, maxDim), cells, width, height)
}
