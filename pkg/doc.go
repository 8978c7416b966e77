// Package pkg provides the core libraries for Namesplit name-sheet splitting.
//
// # Overview
//
// Namesplit partitions a scanned or layered manga name sheet into a grid of
// page images. The pkg directory is organized by pipeline stage:
//
//  1. [config] - Declarative TOML configuration (grid, merge rules, output)
//  2. [source] - Image loading (raster formats and OpenRaster documents)
//  3. [grid] - Deterministic cell geometry in reading order
//  4. [merge] - Layer-to-output-layer bucketing and compositing
//  5. [render] - Page cropping, encoding, and the run plan
//  6. [job] - Orchestration: progress, cancellation, batch runs
//
// Supporting packages: [units] for px/mm conversion, [errors] for coded
// errors, [preview] and [template] for downscaled views and printable
// sheets, [cache] for the preview cache, and [settings] for persisted
// user preferences.
//
// # Quick Start
//
// Split one sheet with defaults:
//
//	cfg := config.Default()
//	engine := job.NewEngine(nil)
//	res, err := engine.Run(ctx, job.Options{
//	    Config:    &cfg,
//	    ImagePath: "chapter01.png",
//	})
//
// The typical data flow:
//
//	image file (PNG/JPEG/TIFF/BMP/WebP/ORA)
//	         ↓
//	    [source] package (decode layers, enforce limits)
//	         ↓
//	    [grid] package (cell rectangles in reading order)
//	         ↓
//	    [merge] package (bucket layers, composite output layers)
//	         ↓
//	    [render] package (crop, encode, plan.json)
//	         ↓
//	    page files on disk
//
// [config]: https://pkg.go.dev/github.com/namesheet/namesplit/pkg/config
// [source]: https://pkg.go.dev/github.com/namesheet/namesplit/pkg/source
// [grid]: https://pkg.go.dev/github.com/namesheet/namesplit/pkg/grid
// [merge]: https://pkg.go.dev/github.com/namesheet/namesplit/pkg/merge
// [render]: https://pkg.go.dev/github.com/namesheet/namesplit/pkg/render
// [job]: https://pkg.go.dev/github.com/namesheet/namesplit/pkg/job
// [units]: https://pkg.go.dev/github.com/namesheet/namesplit/pkg/units
// [errors]: https://pkg.go.dev/github.com/namesheet/namesplit/pkg/errors
// [preview]: https://pkg.go.dev/github.com/namesheet/namesplit/pkg/preview
// [template]: https://pkg.go.dev/github.com/namesheet/namesplit/pkg/template
// [cache]: https://pkg.go.dev/github.com/namesheet/namesplit/pkg/cache
// [settings]: https://pkg.go.dev/github.com/namesheet/namesplit/pkg/settings
package pkg
