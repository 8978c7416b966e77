package preview

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/png"
	"os"
	"strconv"
	"time"

	"github.com/namesheet/namesplit/pkg/cache"
	"github.com/namesheet/namesplit/pkg/config"
	nserr "github.com/namesheet/namesplit/pkg/errors"
	"github.com/namesheet/namesplit/pkg/grid"
	"github.com/namesheet/namesplit/pkg/source"
)

// Cache TTLs. Entries are keyed on file identity and every render
// parameter, so expiry only bounds disk growth, not correctness.
const (
	baseTTL    = 7 * 24 * time.Hour
	previewTTL = 24 * time.Hour
)

// CachedRenderer renders previews through a cache. Decoding and
// flattening the source dominates preview cost, so the downscaled base
// image is cached by file identity and reused across grid tweaks; fully
// rendered previews are cached one level up.
type CachedRenderer struct {
	store cache.Cache
	keyer cache.Keyer
}

// NewCachedRenderer wraps store and keyer. A nil store disables caching
// via the null cache.
func NewCachedRenderer(store cache.Cache, keyer cache.Keyer) *CachedRenderer {
	if store == nil {
		store = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	return &CachedRenderer{store: store, keyer: keyer}
}

// baseEntry is the cached flattened-and-downscaled document plus the
// full-resolution canvas size the grid must be computed against.
type baseEntry struct {
	CanvasWidth  int    `json:"canvas_width"`
	CanvasHeight int    `json:"canvas_height"`
	PNG          []byte `json:"png"`
}

// previewEntry mirrors Preview for storage.
type previewEntry struct {
	Data   []byte  `json:"data"`
	Width  int     `json:"width"`
	Height int     `json:"height"`
	Scale  float64 `json:"scale"`
	Pages  int     `json:"pages"`
}

// Render produces a preview for imagePath, serving from cache when the
// file and every render parameter are unchanged. Cache failures are
// treated as misses, never as render failures.
func (c *CachedRenderer) Render(ctx context.Context, cfg *config.Config, imagePath string, opts Options) (*Preview, error) {
	info, err := os.Stat(imagePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nserr.Wrap(nserr.ErrCodeFileNotFound, err, "image not found: %s", imagePath)
		}
		return nil, nserr.Wrap(nserr.ErrCodeImageRead, err, "failed to stat image: %s", imagePath)
	}

	params, err := grid.Resolve(cfg.Grid)
	if err != nil {
		return nil, err
	}

	maxDim := opts.MaxDim
	if maxDim <= 0 {
		maxDim = DefaultMaxDim
	}

	sourceKey := c.keyer.SourceKey(imagePath, cache.SourceKeyOpts{
		ModTime: info.ModTime().UnixNano(),
		Size:    info.Size(),
	})
	previewKey := c.keyer.PreviewKey(sourceKey, cache.PreviewKeyOpts{
		MaxDim:       maxDim,
		Rows:         params.Rows,
		Cols:         params.Cols,
		Order:        params.Order,
		MarginTop:    params.MarginTop,
		MarginBottom: params.MarginBottom,
		MarginLeft:   params.MarginLeft,
		MarginRight:  params.MarginRight,
		Gutter:       params.Gutter,
		DPI:          cfg.Grid.DPI,
	})

	if data, hit, err := c.store.Get(ctx, previewKey); err == nil && hit {
		var entry previewEntry
		if json.Unmarshal(data, &entry) == nil {
			return &Preview{
				Data:   entry.Data,
				Width:  entry.Width,
				Height: entry.Height,
				Scale:  entry.Scale,
				Pages:  entry.Pages,
			}, nil
		}
	}

	base, canvasW, canvasH, err := c.baseImage(ctx, cfg, imagePath, sourceKey, maxDim)
	if err != nil {
		return nil, err
	}

	cells, err := grid.ComputeCells(params, canvasW, canvasH)
	if err != nil {
		return nil, err
	}
	p, err := Overlay(base, cells, canvasW, canvasH)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(previewEntry{
		Data: p.Data, Width: p.Width, Height: p.Height, Scale: p.Scale, Pages: p.Pages,
	}); err == nil {
		_ = c.store.Set(ctx, previewKey, data, previewTTL)
	}
	return p, nil
}

// baseImage loads the flattened, downscaled document, from cache when
// possible. On a hit the source file is not opened at all.
func (c *CachedRenderer) baseImage(ctx context.Context, cfg *config.Config, imagePath, sourceKey string, maxDim int) (*image.RGBA, int, int, error) {
	baseKey := sourceKey + ":base:" + strconv.Itoa(maxDim)

	if data, hit, err := c.store.Get(ctx, baseKey); err == nil && hit {
		var entry baseEntry
		if json.Unmarshal(data, &entry) == nil {
			if img, err := png.Decode(bytes.NewReader(entry.PNG)); err == nil {
				return toRGBA(img), entry.CanvasWidth, entry.CanvasHeight, nil
			}
		}
		_ = c.store.Delete(ctx, baseKey)
	}

	src, err := source.Open(imagePath)
	if err != nil {
		return nil, 0, 0, err
	}
	defer src.Close()

	width, height := src.Bounds()
	base, err := flattenBase(cfg, src, width, height, maxDim)
	if err != nil {
		return nil, 0, 0, err
	}

	var buf bytes.Buffer
	if png.Encode(&buf, base) == nil {
		if data, err := json.Marshal(baseEntry{
			CanvasWidth: width, CanvasHeight: height, PNG: buf.Bytes(),
		}); err == nil {
			_ = c.store.Set(ctx, baseKey, data, baseTTL)
		}
	}
	return base, width, height, nil
}

func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			rgba.Set(x, y, img.At(b.Min.X+x, b.Min.Y+y))
		}
	}
	return rgba
}
