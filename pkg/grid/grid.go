// Package grid partitions a canvas into an ordered list of page rectangles.
//
// The grid engine is pure computation: given a grid configuration and the
// canvas size it produces CellRects that exactly tile the effective area
// (canvas minus margins and gutters) with no gaps or overlaps. Integer
// division remainders are absorbed by the last column and last row, so the
// tiling stays exact for any canvas size.
package grid

import (
	"github.com/namesheet/namesplit/pkg/config"
	nserr "github.com/namesheet/namesplit/pkg/errors"
)

// CellRect is one page's pixel rectangle on the source canvas.
// Page numbering is 1-based and contiguous in the configured reading order.
type CellRect struct {
	Page int // 1-based page index
	Row  int // grid row, 0-based, top to bottom
	Col  int // grid column, 0-based, left to right

	X int
	Y int
	W int
	H int
}

// Params are grid settings with every length resolved to whole pixels.
type Params struct {
	Rows  int
	Cols  int
	Order string

	MarginTop    int
	MarginBottom int
	MarginLeft   int
	MarginRight  int
	Gutter       int
}

// Resolve converts a declarative grid configuration into pixel Params,
// resolving mm dimensions through the configured DPI. When any per-side
// margin is set, the per-side values replace the uniform margin entirely.
func Resolve(g config.GridConfig) (Params, error) {
	p := Params{Rows: g.Rows, Cols: g.Cols, Order: g.Order}

	var err error
	if p.Gutter, err = g.Gutter.Pixels(g.DPI); err != nil {
		return Params{}, err
	}

	if g.HasSideMargins() {
		if p.MarginTop, err = g.MarginTop.Pixels(g.DPI); err != nil {
			return Params{}, err
		}
		if p.MarginBottom, err = g.MarginBottom.Pixels(g.DPI); err != nil {
			return Params{}, err
		}
		if p.MarginLeft, err = g.MarginLeft.Pixels(g.DPI); err != nil {
			return Params{}, err
		}
		if p.MarginRight, err = g.MarginRight.Pixels(g.DPI); err != nil {
			return Params{}, err
		}
		return p, nil
	}

	m, err := g.Margin.Pixels(g.DPI)
	if err != nil {
		return Params{}, err
	}
	p.MarginTop, p.MarginBottom, p.MarginLeft, p.MarginRight = m, m, m, m
	return p, nil
}

// ComputeCells partitions a width x height canvas according to p.
//
// Any non-positive effective dimension fails before a single rect is
// produced; the function never returns partial results.
func ComputeCells(p Params, width, height int) ([]CellRect, error) {
	if width <= 0 || height <= 0 {
		return nil, nserr.New(nserr.ErrCodeConfigInvalid, "canvas size must be positive, got %dx%d", width, height)
	}
	if p.Rows <= 0 || p.Cols <= 0 {
		return nil, nserr.New(nserr.ErrCodeConfigInvalid, "grid must have positive rows and cols, got %dx%d", p.Rows, p.Cols)
	}
	if p.Order != config.OrderRightToLeft && p.Order != config.OrderLeftToRight {
		return nil, nserr.New(nserr.ErrCodeConfigInvalid, "unknown grid order %q", p.Order)
	}

	usableW := width - p.MarginLeft - p.MarginRight - (p.Cols-1)*p.Gutter
	usableH := height - p.MarginTop - p.MarginBottom - (p.Rows-1)*p.Gutter
	if usableW <= 0 || usableH <= 0 {
		return nil, nserr.New(nserr.ErrCodeConfigInvalid,
			"grid margins/gutters exceed canvas size (%dx%d effective)", usableW, usableH)
	}

	baseW, remW := usableW/p.Cols, usableW%p.Cols
	baseH, remH := usableH/p.Rows, usableH%p.Rows

	// Last column and row absorb the remainder so the rects tile exactly.
	colWidths := make([]int, p.Cols)
	for c := range colWidths {
		colWidths[c] = baseW
	}
	colWidths[p.Cols-1] += remW

	rowHeights := make([]int, p.Rows)
	for r := range rowHeights {
		rowHeights[r] = baseH
	}
	rowHeights[p.Rows-1] += remH

	colX := make([]int, p.Cols)
	colX[0] = p.MarginLeft
	for c := 1; c < p.Cols; c++ {
		colX[c] = colX[c-1] + colWidths[c-1] + p.Gutter
	}

	rowY := make([]int, p.Rows)
	rowY[0] = p.MarginTop
	for r := 1; r < p.Rows; r++ {
		rowY[r] = rowY[r-1] + rowHeights[r-1] + p.Gutter
	}

	colOrder := make([]int, p.Cols)
	for i := range colOrder {
		if p.Order == config.OrderRightToLeft {
			colOrder[i] = p.Cols - 1 - i
		} else {
			colOrder[i] = i
		}
	}

	cells := make([]CellRect, 0, p.Rows*p.Cols)
	page := 1
	for r := 0; r < p.Rows; r++ {
		for _, c := range colOrder {
			cells = append(cells, CellRect{
				Page: page,
				Row:  r,
				Col:  c,
				X:    colX[c],
				Y:    rowY[r],
				W:    colWidths[c],
				H:    rowHeights[r],
			})
			page++
		}
	}
	return cells, nil
}

// CellsFor resolves g and computes its cells in one step.
func CellsFor(g config.GridConfig, width, height int) ([]CellRect, error) {
	p, err := Resolve(g)
	if err != nil {
		return nil, err
	}
	return ComputeCells(p, width, height)
}
