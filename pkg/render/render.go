// Package render crops merged layer composites into page files.
//
// The renderer receives full-canvas composites (one per output layer)
// and a cell rectangle, crops each composite to the cell, and writes the
// result under the output directory. The "pages" layout flattens the
// layer stack bottom to top into one file per page; the "layers" layout
// writes a directory per page with one file per output layer.
//
// A failed cell is recorded and rendering continues with the next cell;
// only resource-exhaustion class failures abort the whole job. That
// classification lives in pkg/errors (IsFatalRender), the renderer just
// returns coded errors.
package render

import (
	"image"
	"image/draw"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"github.com/namesheet/namesplit/pkg/config"
	nserr "github.com/namesheet/namesplit/pkg/errors"
	"github.com/namesheet/namesplit/pkg/grid"
)

// jpegQuality is the encode quality for full-resolution page output.
// Previews use a lower setting, see pkg/preview.
const jpegQuality = 95

// PageFile describes one written output file.
type PageFile struct {
	Page  int    `json:"page"`
	Layer string `json:"layer,omitempty"`
	Path  string `json:"path"`
}

// Renderer writes page files for one job. It is stateless between cells;
// all per-document state lives in the composites passed to RenderCell.
type Renderer struct {
	cfg    *config.Config
	outDir string
}

// New creates a renderer writing under outDir using cfg's output settings.
func New(cfg *config.Config, outDir string) *Renderer {
	return &Renderer{cfg: cfg, outDir: outDir}
}

// OutDir returns the directory the renderer writes into.
func (r *Renderer) OutDir() string { return r.outDir }

// EnsureOutDir creates the output directory.
func (r *Renderer) EnsureOutDir() error {
	if err := os.MkdirAll(r.outDir, 0755); err != nil {
		return nserr.Wrap(nserr.ErrCodeRenderIO, err, "failed to create output directory: %s", r.outDir)
	}
	return nil
}

// RenderCell crops every stack layer to cell and writes the page's
// file(s) according to the configured layout. It returns the files
// written for this page.
func (r *Renderer) RenderCell(cell grid.CellRect, composites map[string]*image.RGBA) ([]PageFile, error) {
	out := r.cfg.Output
	switch out.Layout {
	case config.LayoutLayers:
		return r.renderLayerFiles(cell, composites)
	default:
		return r.renderFlatPage(cell, composites)
	}
}

// renderFlatPage flattens the layer stack bottom to top into one file.
// Output.LayerStack lists layers bottom first, so plain iteration with
// alpha-over gives the correct stacking.
func (r *Renderer) renderFlatPage(cell grid.CellRect, composites map[string]*image.RGBA) ([]PageFile, error) {
	canvas := image.NewRGBA(image.Rect(0, 0, cell.W, cell.H))
	for _, name := range r.cfg.Output.LayerStack {
		comp, ok := composites[name]
		if !ok {
			continue
		}
		draw.Draw(canvas, canvas.Bounds(), comp, image.Pt(cell.X, cell.Y), draw.Over)
	}

	name := config.PageFileName(r.cfg.Output.PageBasename, cell.Page, r.cfg.Output.RasterExt)
	path := filepath.Join(r.outDir, name)
	if err := r.writeImage(path, canvas); err != nil {
		return nil, err
	}
	return []PageFile{{Page: cell.Page, Path: path}}, nil
}

// renderLayerFiles writes a directory per page holding one cropped file
// per output layer, preserving the layer structure for downstream tools.
func (r *Renderer) renderLayerFiles(cell grid.CellRect, composites map[string]*image.RGBA) ([]PageFile, error) {
	pageDir := filepath.Join(r.outDir, config.FormatPage(r.cfg.Output.PageBasename, cell.Page))
	if err := os.MkdirAll(pageDir, 0755); err != nil {
		return nil, nserr.Wrap(nserr.ErrCodeRenderIO, err, "failed to create page directory: %s", pageDir)
	}

	var files []PageFile
	for _, name := range r.cfg.Output.LayerStack {
		comp, ok := composites[name]
		if !ok {
			continue
		}
		crop := image.NewRGBA(image.Rect(0, 0, cell.W, cell.H))
		draw.Draw(crop, crop.Bounds(), comp, image.Pt(cell.X, cell.Y), draw.Src)

		path := filepath.Join(pageDir, name+"."+r.cfg.Output.RasterExt)
		if err := r.writeImage(path, crop); err != nil {
			return files, err
		}
		files = append(files, PageFile{Page: cell.Page, Layer: name, Path: path})
	}
	return files, nil
}

// writeImage encodes img to path in the configured raster format. On
// encode failure the partial file is removed so a page either exists
// completely or not at all.
func (r *Renderer) writeImage(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return nserr.Wrap(nserr.ErrCodeRenderIO, err, "failed to create output file: %s", path)
	}

	encErr := Encode(f, img, r.cfg.Output.RasterExt)
	closeErr := f.Close()
	if encErr != nil {
		_ = os.Remove(path)
		return encErr
	}
	if closeErr != nil {
		_ = os.Remove(path)
		return nserr.Wrap(nserr.ErrCodeRenderIO, closeErr, "failed to write output file: %s", path)
	}
	return nil
}

// Encode writes img to w in the format named by ext (without dot).
func Encode(w io.Writer, img image.Image, ext string) error {
	var err error
	switch ext {
	case "png":
		err = png.Encode(w, img)
	case "jpg", "jpeg":
		// JPEG has no alpha channel; flatten onto white instead of
		// letting transparent pixels turn black.
		err = jpeg.Encode(w, flattenWhite(img), &jpeg.Options{Quality: jpegQuality})
	case "tif", "tiff":
		err = tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	case "bmp":
		err = bmp.Encode(w, img)
	default:
		return nserr.New(nserr.ErrCodeUnsupported, "unsupported raster format: %s", ext)
	}
	if err != nil {
		return nserr.Wrap(nserr.ErrCodeRenderIO, err, "failed to encode %s output", ext)
	}
	return nil
}

func flattenWhite(img image.Image) image.Image {
	b := img.Bounds()
	flat := image.NewRGBA(b)
	draw.Draw(flat, b, image.White, image.Point{}, draw.Src)
	draw.Draw(flat, b, img, b.Min, draw.Over)
	return flat
}
