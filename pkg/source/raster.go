package source

import (
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	nserr "github.com/namesheet/namesplit/pkg/errors"
)

// rasterSource wraps a flat raster image as a single-layer document.
type rasterSource struct {
	img    image.Image
	layers []LayerRecord
}

// OpenRaster decodes a flat raster file (PNG, JPEG, GIF, TIFF, BMP, WebP)
// into a Source with one synthetic, visible, fully opaque layer covering
// the whole canvas.
func OpenRaster(path string) (Source, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nserr.Wrap(nserr.ErrCodeFileNotFound, err, "image not found: %s", path)
		}
		return nil, nserr.Wrap(nserr.ErrCodeImageRead, err, "failed to open image: %s", path)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, nserr.Wrap(nserr.ErrCodeImageRead, err, "failed to decode image: %s", path)
	}

	return &rasterSource{
		img: img,
		layers: []LayerRecord{{
			Name:    FlatLayerName,
			Visible: true,
			Image:   img,
			Opacity: 1.0,
		}},
	}, nil
}

func (s *rasterSource) Bounds() (int, int) {
	b := s.img.Bounds()
	return b.Dx(), b.Dy()
}

func (s *rasterSource) Layers() []LayerRecord { return s.layers }

func (s *rasterSource) Flat() bool { return true }

func (s *rasterSource) Close() error {
	s.img = nil
	s.layers = nil
	return nil
}
