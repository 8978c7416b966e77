package source

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/namesheet/namesplit/pkg/config"
	nserr "github.com/namesheet/namesplit/pkg/errors"
)

func writePNG(t *testing.T, path string, w, h int, c color.Color) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func TestOpenFlatRaster(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "sheet.png")
	writePNG(t, p, 64, 48, color.RGBA{R: 200, A: 255})

	src, err := Open(p)
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	defer src.Close()

	w, h := src.Bounds()
	if w != 64 || h != 48 {
		t.Errorf("Bounds = %dx%d, want 64x48", w, h)
	}
	if !src.Flat() {
		t.Error("raster source should report Flat")
	}

	layers := src.Layers()
	if len(layers) != 1 {
		t.Fatalf("got %d layers, want 1", len(layers))
	}
	l := layers[0]
	if l.Name != FlatLayerName {
		t.Errorf("layer name = %q, want %q", l.Name, FlatLayerName)
	}
	if !l.Visible || l.Opacity != 1.0 {
		t.Errorf("synthetic layer = %+v, want visible and opaque", l)
	}
	if len(l.GroupPath) != 0 {
		t.Errorf("synthetic layer group path = %v, want empty", l.GroupPath)
	}
	if l.Image.Bounds().Dx() != 64 || l.Image.Bounds().Dy() != 48 {
		t.Error("synthetic layer must cover the canvas")
	}
}

func TestOpenMissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "absent.png"))
	if !nserr.Is(err, nserr.ErrCodeFileNotFound) {
		t.Errorf("error = %v, want FILE_NOT_FOUND", err)
	}
}

func TestOpenCorruptRaster(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "broken.png")
	if err := os.WriteFile(p, []byte("not a png at all"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := Open(p)
	if !nserr.Is(err, nserr.ErrCodeImageRead) {
		t.Errorf("error = %v, want IMAGE_READ", err)
	}
}

func TestCheckLimit(t *testing.T) {
	tests := []struct {
		name     string
		w, h     int
		limits   config.LimitsConfig
		wantWarn bool
		wantErr  bool
	}{
		{"within limit", 100, 100, config.LimitsConfig{MaxDimPx: 200, OnExceed: config.OnExceedError}, false, false},
		{"at limit", 200, 200, config.LimitsConfig{MaxDimPx: 200, OnExceed: config.OnExceedError}, false, false},
		{"over limit error", 201, 100, config.LimitsConfig{MaxDimPx: 200, OnExceed: config.OnExceedError}, false, true},
		{"over limit height", 100, 300, config.LimitsConfig{MaxDimPx: 200, OnExceed: config.OnExceedError}, false, true},
		{"over limit warn", 500, 100, config.LimitsConfig{MaxDimPx: 200, OnExceed: config.OnExceedWarn}, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			warn, err := CheckLimit(tt.w, tt.h, tt.limits)
			if (err != nil) != tt.wantErr {
				t.Errorf("CheckLimit error = %v, wantErr %v", err, tt.wantErr)
			}
			if (warn != nil) != tt.wantWarn {
				t.Errorf("CheckLimit warning = %v, wantWarn %v", warn, tt.wantWarn)
			}
			if err != nil && !nserr.Is(err, nserr.ErrCodeLimitExceeded) {
				t.Errorf("error code = %v, want LIMIT_EXCEEDED", nserr.GetCode(err))
			}
			if warn != nil && warn.Code != nserr.ErrCodeLimitExceeded {
				t.Errorf("warning code = %v, want LIMIT_EXCEEDED", warn.Code)
			}
		})
	}
}
