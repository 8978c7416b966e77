package config

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	nserr "github.com/namesheet/namesplit/pkg/errors"
	"github.com/namesheet/namesplit/pkg/units"
)

func TestParseFullDocument(t *testing.T) {
	doc := `
version = 1

[input]
image_path = "sheet.png"

[grid]
rows = 2
cols = 3
order = "ltr_ttb"
dpi = 600
margin = { value = 5, unit = "mm" }
gutter = { value = 10, unit = "px" }

[[merge.group_rules]]
pattern = "frames*"
output_layer = "line"

[[merge.layer_rules]]
pattern = "sketch"
output_layer = "draft"

[merge]
include_hidden_layers = true

[output]
out_dir = "out"
page_basename = "page_{page:03d}"
layer_stack = ["line", "draft"]
raster_ext = "png"
layout = "pages"

[limits]
max_dim_px = 20000
on_exceed = "warn"
`
	c, err := Parse([]byte(doc))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	if c.Input.ImagePath != "sheet.png" {
		t.Errorf("ImagePath = %q", c.Input.ImagePath)
	}
	if c.Grid.Rows != 2 || c.Grid.Cols != 3 {
		t.Errorf("grid = %dx%d, want 2x3", c.Grid.Rows, c.Grid.Cols)
	}
	if c.Grid.Order != OrderLeftToRight {
		t.Errorf("order = %q", c.Grid.Order)
	}
	if c.Grid.Margin.Unit != units.Mm || c.Grid.Margin.Value != 5 {
		t.Errorf("margin = %+v", c.Grid.Margin)
	}
	if len(c.Merge.GroupRules) != 1 || c.Merge.GroupRules[0].OutputLayer != "line" {
		t.Errorf("group rules = %+v", c.Merge.GroupRules)
	}
	if !c.Merge.IncludeHiddenLayers {
		t.Error("include_hidden_layers should be true")
	}
	if c.Limits.OnExceed != OnExceedWarn {
		t.Errorf("on_exceed = %q", c.Limits.OnExceed)
	}
}

func TestParseDefaults(t *testing.T) {
	c, err := Parse([]byte(""))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if c.Grid.Rows != DefaultRows || c.Grid.Cols != DefaultCols {
		t.Errorf("default grid = %dx%d", c.Grid.Rows, c.Grid.Cols)
	}
	if c.Grid.Order != OrderRightToLeft {
		t.Errorf("default order = %q", c.Grid.Order)
	}
	if c.Grid.DPI != DefaultDPI {
		t.Errorf("default dpi = %g", c.Grid.DPI)
	}
	if c.Output.PageBasename != DefaultPageBasename {
		t.Errorf("default basename = %q", c.Output.PageBasename)
	}
	if len(c.Output.LayerStack) != 1 || c.Output.LayerStack[0] != "flat" {
		t.Errorf("default layer stack = %v", c.Output.LayerStack)
	}
	if c.Output.Layout != LayoutPages {
		t.Errorf("default layout = %q", c.Output.Layout)
	}
	if c.Limits.MaxDimPx != DefaultMaxDimPx || c.Limits.OnExceed != OnExceedError {
		t.Errorf("default limits = %+v", c.Limits)
	}
}

func TestValidateErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad version", func(c *Config) { c.Version = 2 }},
		{"zero rows", func(c *Config) { c.Grid.Rows = -1 }},
		{"bad order", func(c *Config) { c.Grid.Order = "btt_rtl" }},
		{"negative dpi", func(c *Config) { c.Grid.DPI = -300 }},
		{"negative margin", func(c *Config) { c.Grid.Margin = units.PxDim(-4) }},
		{"bad margin unit", func(c *Config) { c.Grid.Margin = units.Dimension{Value: 1, Unit: "pt"} }},
		{"rule missing pattern", func(c *Config) {
			c.Merge.LayerRules = []Rule{{OutputLayer: "flat"}}
		}},
		{"rule missing output", func(c *Config) {
			c.Merge.GroupRules = []Rule{{Pattern: "frames"}}
		}},
		{"rule malformed pattern", func(c *Config) {
			c.Merge.LayerRules = []Rule{{Pattern: "[oops", OutputLayer: "flat"}}
		}},
		{"empty layer stack entry", func(c *Config) { c.Output.LayerStack = []string{""} }},
		{"duplicate layer stack", func(c *Config) { c.Output.LayerStack = []string{"a", "a"} }},
		{"basename with slash", func(c *Config) { c.Output.PageBasename = "a/b" }},
		{"bad raster ext", func(c *Config) { c.Output.RasterExt = ".png" }},
		{"bad layout", func(c *Config) { c.Output.Layout = "both" }},
		{"zero max dim", func(c *Config) { c.Limits.MaxDimPx = -1 }},
		{"bad on_exceed", func(c *Config) { c.Limits.OnExceed = "ignore" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(&c)
			err := c.Validate()
			if err == nil {
				t.Fatal("Validate should fail")
			}
			if !nserr.Is(err, nserr.ErrCodeConfigInvalid) {
				t.Errorf("error code = %v, want CONFIG_INVALID", nserr.GetCode(err))
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if !nserr.Is(err, nserr.ErrCodeFileNotFound) {
		t.Errorf("error = %v, want FILE_NOT_FOUND", err)
	}
}

func TestLoadMalformed(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "bad.toml")
	if err := os.WriteFile(p, []byte("grid = {"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := Load(p)
	if !nserr.Is(err, nserr.ErrCodeConfigInvalid) {
		t.Errorf("error = %v, want CONFIG_INVALID", err)
	}
}

func TestFindForImage(t *testing.T) {
	dir := t.TempDir()
	image := filepath.Join(dir, "sheet.png")

	def := Default()
	def.Grid.Rows = 9

	// No sidecars: default wins.
	got := FindForImage(image, def)
	if got.Grid.Rows != 9 {
		t.Errorf("rows = %d, want default 9", got.Grid.Rows)
	}

	// Directory-level default.
	writeConfig(t, filepath.Join(dir, SidecarName), 3)
	got = FindForImage(image, def)
	if got.Grid.Rows != 3 {
		t.Errorf("rows = %d, want directory sidecar 3", got.Grid.Rows)
	}

	// <stem>.toml beats the directory default.
	writeConfig(t, filepath.Join(dir, "sheet.toml"), 5)
	got = FindForImage(image, def)
	if got.Grid.Rows != 5 {
		t.Errorf("rows = %d, want stem sidecar 5", got.Grid.Rows)
	}

	// <stem>_config.toml beats everything.
	writeConfig(t, filepath.Join(dir, "sheet_config.toml"), 7)
	got = FindForImage(image, def)
	if got.Grid.Rows != 7 {
		t.Errorf("rows = %d, want _config sidecar 7", got.Grid.Rows)
	}
}

func TestFindForImageSkipsBrokenSidecar(t *testing.T) {
	dir := t.TempDir()
	image := filepath.Join(dir, "sheet.png")
	if err := os.WriteFile(filepath.Join(dir, "sheet_config.toml"), []byte("rows = {"), 0o644); err != nil {
		t.Fatal(err)
	}
	writeConfig(t, filepath.Join(dir, "sheet.toml"), 6)

	got := FindForImage(image, Default())
	if got.Grid.Rows != 6 {
		t.Errorf("rows = %d, want fallback sidecar 6", got.Grid.Rows)
	}
}

func writeConfig(t *testing.T, path string, rows int) {
	t.Helper()
	doc := "[grid]\nrows = " + strconv.Itoa(rows) + "\n"
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
}
