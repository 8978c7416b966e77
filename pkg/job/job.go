// Package job orchestrates a split run: open the source, merge layers,
// compute the grid, render every cell, and report progress along the
// way. The engine is the single entry point for CLI and TUI alike;
// neither ever touches the grid or renderer directly.
package job

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/namesheet/namesplit/pkg/config"
	nserr "github.com/namesheet/namesplit/pkg/errors"
	"github.com/namesheet/namesplit/pkg/grid"
	"github.com/namesheet/namesplit/pkg/merge"
	"github.com/namesheet/namesplit/pkg/render"
	"github.com/namesheet/namesplit/pkg/source"
)

// Options configures one run.
type Options struct {
	// Config is the resolved split configuration. Required.
	Config *config.Config

	// ImagePath is the input document. Falls back to Config.Input.ImagePath.
	ImagePath string

	// OutDir overrides the output directory. When empty the configured
	// output.out_dir is used, and failing that "<stem>_pages" beside the
	// input.
	OutDir string

	// TestPage renders only the given 1-based page. Zero renders all.
	TestPage int

	// Progress receives events; may be nil.
	Progress ProgressFunc

	// Cancel is polled at cell boundaries; may be nil.
	Cancel *CancelToken
}

// ErrorRecord ties a recorded error to the page it occurred on.
// Page 0 means the error concerns the job as a whole.
type ErrorRecord struct {
	Page int
	Err  error
}

// Stats times the run's phases.
type Stats struct {
	LoadTime   time.Duration
	MergeTime  time.Duration
	RenderTime time.Duration
}

// Result is the immutable outcome of one run.
type Result struct {
	// Success means every requested cell was rendered with no errors.
	Success bool

	// Cancelled means the run stopped at a cell boundary on request.
	// A cancelled run is not a failure.
	Cancelled bool

	OutDir   string
	PlanPath string

	// Files lists everything written, in page order.
	Files []render.PageFile

	// PagesWritten holds the written file paths, for callers that only
	// care about the flat list.
	PagesWritten []string

	Errors   []ErrorRecord
	Warnings []string
	Stats    Stats
}

// Engine runs jobs. It is stateless between runs; one engine can serve
// any number of sequential jobs.
type Engine struct {
	Logger *log.Logger
}

// NewEngine creates an engine. A nil logger falls back to log.Default.
func NewEngine(logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.Default()
	}
	return &Engine{Logger: logger}
}

// ResolveOutDir decides where a run writes: explicit override, then the
// configured out_dir, then "<stem>_pages" beside the input image.
func ResolveOutDir(cfg *config.Config, imagePath, override string) string {
	if override != "" {
		return override
	}
	if cfg.Output.OutDir != "" {
		return cfg.Output.OutDir
	}
	stem := strings.TrimSuffix(imagePath, filepath.Ext(imagePath))
	return stem + "_pages"
}

// Run executes one split job. The returned Result is never nil; the
// error mirrors the fatal failure recorded in it, so callers may use
// either. Cancellation yields a nil error with Result.Cancelled set.
func (e *Engine) Run(ctx context.Context, opts Options) (*Result, error) {
	res := &Result{}

	cfg := opts.Config
	if cfg == nil {
		err := nserr.New(nserr.ErrCodeConfigInvalid, "job requires a configuration")
		return e.fail(res, err)
	}
	imagePath := opts.ImagePath
	if imagePath == "" {
		imagePath = cfg.Input.ImagePath
	}
	if imagePath == "" {
		err := nserr.New(nserr.ErrCodeConfigInvalid, "job requires an input image")
		return e.fail(res, err)
	}
	res.OutDir = ResolveOutDir(cfg, imagePath, opts.OutDir)

	// Load
	e.emit(opts, ProgressEvent{Phase: PhaseLoad, Done: 0, Total: 1, Message: "opening " + filepath.Base(imagePath)})
	loadStart := time.Now()

	src, err := source.Open(imagePath)
	if err != nil {
		return e.fail(res, err)
	}
	defer src.Close()

	width, height := src.Bounds()
	if warn, err := source.CheckLimit(width, height, cfg.Limits); err != nil {
		return e.fail(res, err)
	} else if warn != nil {
		res.Warnings = append(res.Warnings, warn.Message)
		e.Logger.Warn("canvas exceeds configured limit", "width", width, "height", height, "max", cfg.Limits.MaxDimPx)
	}

	cells, err := grid.CellsFor(cfg.Grid, width, height)
	if err != nil {
		return e.fail(res, err)
	}
	res.Stats.LoadTime = time.Since(loadStart)
	e.Logger.Info("opened source",
		"image", imagePath,
		"size", fmt.Sprintf("%dx%d", width, height),
		"layers", len(src.Layers()),
		"pages", len(cells),
		"duration", res.Stats.LoadTime)

	// Merge runs once for the whole document, not per cell.
	e.emit(opts, ProgressEvent{Phase: PhaseMerge, Done: 0, Total: 1, Message: "merging layers"})
	mergeStart := time.Now()

	mergeRes := merge.Apply(src.Layers(), cfg.Merge, cfg.Output.LayerStack)
	res.Warnings = append(res.Warnings, mergeRes.Warnings...)
	for _, w := range mergeRes.Warnings {
		e.Logger.Warn(w)
	}
	composites := merge.Composite(mergeRes, cfg.Output.LayerStack, width, height)
	res.Stats.MergeTime = time.Since(mergeStart)
	e.Logger.Info("merged layers",
		"buckets", len(mergeRes.Buckets),
		"unmatched", len(mergeRes.Unmatched),
		"duration", res.Stats.MergeTime)

	// Render
	selected := cells
	if opts.TestPage != 0 {
		if opts.TestPage < 1 || opts.TestPage > len(cells) {
			err := nserr.New(nserr.ErrCodePageRange, "test page %d out of range 1..%d", opts.TestPage, len(cells))
			return e.fail(res, err)
		}
		selected = cells[opts.TestPage-1 : opts.TestPage]
	}

	renderer := render.New(cfg, res.OutDir)
	if err := renderer.EnsureOutDir(); err != nil {
		return e.fail(res, err)
	}

	plan := render.BuildPlan(cfg, imagePath, width, height, selected, mergeRes, res.OutDir)
	planPath, err := render.WritePlan(res.OutDir, plan)
	if err != nil {
		return e.fail(res, err)
	}
	res.PlanPath = planPath

	renderStart := time.Now()
	total := len(selected)
	for done, cell := range selected {
		files, err := renderer.RenderCell(cell, composites)
		res.Files = append(res.Files, files...)
		for _, f := range files {
			res.PagesWritten = append(res.PagesWritten, f.Path)
		}
		if err != nil {
			if nserr.IsFatalRender(err) {
				return e.fail(res, err)
			}
			res.Errors = append(res.Errors, ErrorRecord{Page: cell.Page, Err: err})
			e.Logger.Error("page failed", "page", cell.Page, "err", err)
		}

		e.emit(opts, ProgressEvent{
			Phase:   PhaseRender,
			Done:    done + 1,
			Total:   total,
			Message: fmt.Sprintf("page %d/%d", done+1, total),
		})

		// Cancellation is checked once per cell, never mid-page. A
		// cancelled context counts the same as the token.
		if opts.Cancel.Cancelled() || ctx.Err() != nil {
			res.Cancelled = true
			res.Stats.RenderTime = time.Since(renderStart)
			e.Logger.Info("run cancelled", "pages_written", len(res.PagesWritten))
			e.emit(opts, ProgressEvent{Phase: PhaseWrap, Done: 1, Total: 1, Message: "cancelled"})
			return res, nil
		}
	}
	res.Stats.RenderTime = time.Since(renderStart)

	// Wrap
	res.Success = len(res.Errors) == 0
	e.emit(opts, ProgressEvent{Phase: PhaseWrap, Done: 1, Total: 1, Message: "done"})
	e.Logger.Info("run complete",
		"pages", len(res.PagesWritten),
		"errors", len(res.Errors),
		"out", res.OutDir,
		"duration", res.Stats.RenderTime)
	return res, nil
}

// fail records err as the job-level error and returns it alongside the
// partial result.
func (e *Engine) fail(res *Result, err error) (*Result, error) {
	res.Errors = append(res.Errors, ErrorRecord{Err: err})
	e.Logger.Error("run failed", "err", err)
	return res, err
}

func (e *Engine) emit(opts Options, ev ProgressEvent) {
	if opts.Progress != nil {
		opts.Progress(ev)
	}
}
