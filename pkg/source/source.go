// Package source presents a uniform read interface over input documents.
//
// A Source yields the canvas size plus an ordered list of layer records,
// regardless of whether the underlying file is a flat raster (PNG, JPEG,
// TIFF, BMP — one synthetic layer covering the canvas) or a layered
// OpenRaster document (the full group/layer tree flattened to records).
// Records are listed topmost first, matching OpenRaster stack order;
// compositing walks them back to front.
package source

import (
	"image"
	"path/filepath"
	"strings"

	"github.com/namesheet/namesplit/pkg/config"
	nserr "github.com/namesheet/namesplit/pkg/errors"
)

// FlatLayerName is the synthetic layer name given to flat raster inputs.
const FlatLayerName = "flat"

// LayerRecord is one drawable layer of the input document.
// Records are owned by their Source for the lifetime of one job and are
// never shared across jobs.
type LayerRecord struct {
	// Name is the layer's own name.
	Name string

	// GroupPath lists ancestor group names, outermost first. Empty for
	// top-level layers and for flat raster inputs.
	GroupPath []string

	// Visible is the layer's visibility flag in the source document.
	Visible bool

	// Image holds the layer's pixels. Its bounds are relative to the
	// layer's own origin; Offset places it on the canvas.
	Image image.Image

	// Offset is the layer's top-left position on the canvas.
	Offset image.Point

	// Opacity in [0,1]; 1 is fully opaque.
	Opacity float64
}

// Source is the uniform read interface for one input document.
type Source interface {
	// Bounds returns the canvas size in pixels.
	Bounds() (width, height int)

	// Layers returns the document's layers, topmost first.
	Layers() []LayerRecord

	// Flat reports whether the input was a flat raster with a single
	// synthetic layer.
	Flat() bool

	// Close releases pixel data held by the source.
	Close() error
}

// Open reads the document at path, dispatching on the file extension:
// .ora opens as a layered OpenRaster document, everything else as a flat
// raster. Unreadable or corrupt input fails with an IMAGE_READ error.
func Open(path string) (Source, error) {
	if strings.EqualFold(filepath.Ext(path), ".ora") {
		return OpenORA(path)
	}
	return OpenRaster(path)
}

// CheckLimit enforces the configured canvas size limit.
//
// With on_exceed = "error" an oversized canvas is fatal. With "warn" the
// returned warning is recorded in the job's error list and processing
// continues.
func CheckLimit(width, height int, limits config.LimitsConfig) (warning *nserr.Error, err error) {
	if width <= limits.MaxDimPx && height <= limits.MaxDimPx {
		return nil, nil
	}
	e := nserr.New(nserr.ErrCodeLimitExceeded,
		"input size %dx%d exceeds limit %dpx", width, height, limits.MaxDimPx)
	if limits.OnExceed == config.OnExceedWarn {
		return e, nil
	}
	return nil, e
}
