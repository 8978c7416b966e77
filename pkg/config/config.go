// Package config defines the declarative split configuration and its loader.
//
// A configuration document is a TOML file with sections input, grid, merge,
// output, and limits. It is parsed once into an immutable Config; engines
// never mutate it, and recomputation means re-parsing.
//
// # Example
//
//	[input]
//	image_path = "name_sheet.png"
//
//	[grid]
//	rows = 4
//	cols = 4
//	order = "rtl_ttb"
//	dpi = 600
//	margin = { value = 5, unit = "mm" }
//	gutter = { value = 10, unit = "px" }
//
//	[[merge.layer_rules]]
//	pattern = "sketch*"
//	output_layer = "draft"
//
//	[output]
//	page_basename = "page_{page:03d}"
//	layer_stack = ["flat"]
//	raster_ext = "png"
//
//	[limits]
//	max_dim_px = 30000
//	on_exceed = "error"
package config

import (
	"path"

	nserr "github.com/namesheet/namesplit/pkg/errors"
	"github.com/namesheet/namesplit/pkg/units"
)

// Grid reading orders. Right-to-left matches Japanese manuscript page flow
// and is the historical default.
const (
	OrderRightToLeft = "rtl_ttb"
	OrderLeftToRight = "ltr_ttb"
)

// Values accepted for limits.on_exceed.
const (
	OnExceedError = "error"
	OnExceedWarn  = "warn"
)

// Output directory layouts.
const (
	// LayoutPages writes one flattened raster per page.
	LayoutPages = "pages"

	// LayoutLayers writes a directory per page with one raster per output layer.
	LayoutLayers = "layers"
)

// Defaults applied by ApplyDefaults.
const (
	DefaultRows         = 4
	DefaultCols         = 4
	DefaultDPI          = 300.0
	DefaultPageBasename = "page_{page:03d}"
	DefaultRasterExt    = "png"
	DefaultMaxDimPx     = 30000
)

// InputConfig names the source image for a single-image run.
type InputConfig struct {
	ImagePath string `toml:"image_path"`
}

// GridConfig declares how the canvas is partitioned.
//
// Margin applies to all four sides unless any of the per-side margins is
// set, in which case the per-side values replace it entirely and unset
// sides fall back to zero.
type GridConfig struct {
	Rows  int    `toml:"rows"`
	Cols  int    `toml:"cols"`
	Order string `toml:"order"`

	Margin       units.Dimension `toml:"margin"`
	MarginTop    units.Dimension `toml:"margin_top"`
	MarginBottom units.Dimension `toml:"margin_bottom"`
	MarginLeft   units.Dimension `toml:"margin_left"`
	MarginRight  units.Dimension `toml:"margin_right"`
	Gutter       units.Dimension `toml:"gutter"`

	// DPI resolves mm dimensions to pixels. It is metadata about the
	// canvas, not read from the image file.
	DPI float64 `toml:"dpi"`
}

// HasSideMargins reports whether any per-side margin override is set.
func (g GridConfig) HasSideMargins() bool {
	return !g.MarginTop.IsZero() || !g.MarginBottom.IsZero() ||
		!g.MarginLeft.IsZero() || !g.MarginRight.IsZero()
}

// Rule maps a layer or group name pattern to an output layer bucket.
// Patterns use path.Match syntax; a pattern without metacharacters is an
// exact name match.
type Rule struct {
	Pattern     string `toml:"pattern"`
	OutputLayer string `toml:"output_layer"`
}

// MergeConfig declares how source layers are grouped into output layers.
// Rule order is significant: the first matching rule wins.
type MergeConfig struct {
	GroupRules          []Rule `toml:"group_rules"`
	LayerRules          []Rule `toml:"layer_rules"`
	IncludeHiddenLayers bool   `toml:"include_hidden_layers"`
}

// OutputConfig declares where and how pages are written.
type OutputConfig struct {
	OutDir       string   `toml:"out_dir"`
	PageBasename string   `toml:"page_basename"`
	LayerStack   []string `toml:"layer_stack"`
	RasterExt    string   `toml:"raster_ext"`
	Layout       string   `toml:"layout"`
}

// LimitsConfig bounds the size of inputs the pipeline accepts.
type LimitsConfig struct {
	MaxDimPx int    `toml:"max_dim_px"`
	OnExceed string `toml:"on_exceed"`
}

// Config is the complete split configuration. Treat as immutable once
// loaded; engines receive it by value or pointer but never write to it.
type Config struct {
	Version int          `toml:"version"`
	Input   InputConfig  `toml:"input"`
	Grid    GridConfig   `toml:"grid"`
	Merge   MergeConfig  `toml:"merge"`
	Output  OutputConfig `toml:"output"`
	Limits  LimitsConfig `toml:"limits"`
}

// ApplyDefaults fills zero-valued fields with their documented defaults.
// It is idempotent.
func (c *Config) ApplyDefaults() {
	if c.Version == 0 {
		c.Version = 1
	}
	if c.Grid.Rows == 0 {
		c.Grid.Rows = DefaultRows
	}
	if c.Grid.Cols == 0 {
		c.Grid.Cols = DefaultCols
	}
	if c.Grid.Order == "" {
		c.Grid.Order = OrderRightToLeft
	}
	if c.Grid.DPI == 0 {
		c.Grid.DPI = DefaultDPI
	}
	if c.Output.PageBasename == "" {
		c.Output.PageBasename = DefaultPageBasename
	}
	if len(c.Output.LayerStack) == 0 {
		c.Output.LayerStack = []string{"flat"}
	}
	if c.Output.RasterExt == "" {
		c.Output.RasterExt = DefaultRasterExt
	}
	if c.Output.Layout == "" {
		c.Output.Layout = LayoutPages
	}
	if c.Limits.MaxDimPx == 0 {
		c.Limits.MaxDimPx = DefaultMaxDimPx
	}
	if c.Limits.OnExceed == "" {
		c.Limits.OnExceed = OnExceedError
	}
}

// Validate checks the configuration for contradictions. It assumes
// ApplyDefaults has run.
func (c *Config) Validate() error {
	if c.Version != 1 {
		return nserr.New(nserr.ErrCodeConfigInvalid, "unsupported config version: %d", c.Version)
	}
	if c.Grid.Rows <= 0 || c.Grid.Cols <= 0 {
		return nserr.New(nserr.ErrCodeConfigInvalid, "grid.rows and grid.cols must be positive, got %dx%d", c.Grid.Rows, c.Grid.Cols)
	}
	if c.Grid.Order != OrderRightToLeft && c.Grid.Order != OrderLeftToRight {
		return nserr.New(nserr.ErrCodeConfigInvalid, "grid.order must be %q or %q, got %q", OrderRightToLeft, OrderLeftToRight, c.Grid.Order)
	}
	if c.Grid.DPI <= 0 {
		return nserr.New(nserr.ErrCodeConfigInvalid, "grid.dpi must be positive, got %g", c.Grid.DPI)
	}
	for _, d := range []struct {
		name string
		dim  units.Dimension
	}{
		{"grid.margin", c.Grid.Margin},
		{"grid.margin_top", c.Grid.MarginTop},
		{"grid.margin_bottom", c.Grid.MarginBottom},
		{"grid.margin_left", c.Grid.MarginLeft},
		{"grid.margin_right", c.Grid.MarginRight},
		{"grid.gutter", c.Grid.Gutter},
	} {
		if d.dim.Value < 0 {
			return nserr.New(nserr.ErrCodeConfigInvalid, "%s must be >= 0, got %g", d.name, d.dim.Value)
		}
		if d.dim.Unit != "" && !d.dim.Unit.Valid() {
			return nserr.New(nserr.ErrCodeConfigInvalid, "%s has unknown unit %q", d.name, d.dim.Unit)
		}
	}
	if err := validateRules(c.Merge.GroupRules, "merge.group_rules"); err != nil {
		return err
	}
	if err := validateRules(c.Merge.LayerRules, "merge.layer_rules"); err != nil {
		return err
	}
	if err := nserr.ValidateBasename(c.Output.PageBasename); err != nil {
		return err
	}
	if len(c.Output.LayerStack) == 0 {
		return nserr.New(nserr.ErrCodeConfigInvalid, "output.layer_stack must not be empty")
	}
	seen := make(map[string]bool, len(c.Output.LayerStack))
	for _, name := range c.Output.LayerStack {
		if name == "" {
			return nserr.New(nserr.ErrCodeConfigInvalid, "output.layer_stack entries must not be empty")
		}
		if seen[name] {
			return nserr.New(nserr.ErrCodeConfigInvalid, "output.layer_stack has duplicate entry %q", name)
		}
		seen[name] = true
	}
	if err := nserr.ValidateRasterExt(c.Output.RasterExt); err != nil {
		return err
	}
	if c.Output.Layout != LayoutPages && c.Output.Layout != LayoutLayers {
		return nserr.New(nserr.ErrCodeConfigInvalid, "output.layout must be %q or %q, got %q", LayoutPages, LayoutLayers, c.Output.Layout)
	}
	if c.Limits.MaxDimPx <= 0 {
		return nserr.New(nserr.ErrCodeConfigInvalid, "limits.max_dim_px must be positive, got %d", c.Limits.MaxDimPx)
	}
	if c.Limits.OnExceed != OnExceedError && c.Limits.OnExceed != OnExceedWarn {
		return nserr.New(nserr.ErrCodeConfigInvalid, "limits.on_exceed must be %q or %q, got %q", OnExceedError, OnExceedWarn, c.Limits.OnExceed)
	}
	return nil
}

func validateRules(rules []Rule, label string) error {
	for i, r := range rules {
		if r.Pattern == "" {
			return nserr.New(nserr.ErrCodeConfigInvalid, "%s[%d].pattern is required", label, i)
		}
		if r.OutputLayer == "" {
			return nserr.New(nserr.ErrCodeConfigInvalid, "%s[%d].output_layer is required", label, i)
		}
		if _, err := path.Match(r.Pattern, ""); err != nil {
			return nserr.New(nserr.ErrCodeConfigInvalid, "%s[%d].pattern %q is malformed", label, i, r.Pattern)
		}
	}
	return nil
}

// Default returns a configuration with all defaults applied.
func Default() Config {
	var c Config
	c.ApplyDefaults()
	return c
}
