package render

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/namesheet/namesplit/pkg/config"
	nserr "github.com/namesheet/namesplit/pkg/errors"
	"github.com/namesheet/namesplit/pkg/grid"
	"github.com/namesheet/namesplit/pkg/merge"
)

// PlanFileName is the manifest written alongside the rendered pages.
const PlanFileName = "plan.json"

// Plan records what a run is about to produce: the resolved grid, the
// merge outcome, and the exact page rectangles. It is written before
// rendering starts so a partially rendered run still leaves a readable
// account of what was attempted.
type Plan struct {
	RunID        string     `json:"run_id"`
	CreatedAt    time.Time  `json:"created_at"`
	Input        string     `json:"input"`
	CanvasWidth  int        `json:"canvas_width"`
	CanvasHeight int        `json:"canvas_height"`
	Grid         PlanGrid   `json:"grid"`
	Output       PlanOutput `json:"output"`
	Merge        PlanMerge  `json:"merge"`
	Pages        []PlanPage `json:"pages"`
}

type PlanGrid struct {
	Rows  int     `json:"rows"`
	Cols  int     `json:"cols"`
	Order string  `json:"order"`
	DPI   float64 `json:"dpi,omitempty"`
}

type PlanOutput struct {
	Dir          string   `json:"dir"`
	PageBasename string   `json:"page_basename"`
	RasterExt    string   `json:"raster_ext"`
	Layout       string   `json:"layout"`
	LayerStack   []string `json:"layer_stack"`
}

// PlanMerge summarizes the merge outcome without embedding pixel data.
type PlanMerge struct {
	Buckets   map[string]int `json:"buckets"`
	Unmatched int            `json:"unmatched"`
	Warnings  []string       `json:"warnings,omitempty"`
}

type PlanPage struct {
	Page int `json:"page"`
	Row  int `json:"row"`
	Col  int `json:"col"`
	X    int `json:"x"`
	Y    int `json:"y"`
	W    int `json:"w"`
	H    int `json:"h"`
}

// BuildPlan assembles the manifest for one run. A fresh UUID run id is
// assigned here.
func BuildPlan(cfg *config.Config, input string, width, height int, cells []grid.CellRect, mergeRes *merge.Result, outDir string) *Plan {
	p := &Plan{
		RunID:        uuid.NewString(),
		CreatedAt:    time.Now().UTC(),
		Input:        input,
		CanvasWidth:  width,
		CanvasHeight: height,
		Grid: PlanGrid{
			Rows:  cfg.Grid.Rows,
			Cols:  cfg.Grid.Cols,
			Order: cfg.Grid.Order,
			DPI:   cfg.Grid.DPI,
		},
		Output: PlanOutput{
			Dir:          outDir,
			PageBasename: cfg.Output.PageBasename,
			RasterExt:    cfg.Output.RasterExt,
			Layout:       cfg.Output.Layout,
			LayerStack:   cfg.Output.LayerStack,
		},
	}

	if mergeRes != nil {
		p.Merge = PlanMerge{
			Buckets:   make(map[string]int, len(mergeRes.Buckets)),
			Unmatched: len(mergeRes.Unmatched),
			Warnings:  mergeRes.Warnings,
		}
		for name, bucket := range mergeRes.Buckets {
			p.Merge.Buckets[name] = len(bucket)
		}
	}

	p.Pages = make([]PlanPage, len(cells))
	for i, c := range cells {
		p.Pages[i] = PlanPage{Page: c.Page, Row: c.Row, Col: c.Col, X: c.X, Y: c.Y, W: c.W, H: c.H}
	}
	return p
}

// WritePlan persists the manifest as plan.json in outDir and returns the
// written path.
func WritePlan(outDir string, p *Plan) (string, error) {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return "", nserr.Wrap(nserr.ErrCodeInternal, err, "failed to encode render plan")
	}
	path := filepath.Join(outDir, PlanFileName)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", nserr.Wrap(nserr.ErrCodeRenderIO, err, "failed to write render plan: %s", path)
	}
	return path, nil
}
