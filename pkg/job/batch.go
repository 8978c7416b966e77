package job

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/namesheet/namesplit/pkg/config"
	nserr "github.com/namesheet/namesplit/pkg/errors"
)

// batchExts are the input formats batch discovery considers.
var batchExts = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true,
	".bmp": true, ".tif": true, ".tiff": true, ".webp": true,
	".ora": true,
}

// BatchOptions configures a directory run.
type BatchOptions struct {
	// Dir is the directory to scan. Required.
	Dir string

	// ConfigOverride, when set, is used for every image instead of
	// sidecar discovery.
	ConfigOverride *config.Config

	// Default is the configuration used when an image has no sidecar.
	// Nil means config.Default().
	Default *config.Config

	// OutDir, when set, namespaces output as <OutDir>/<stem>/ per image.
	// When empty each image writes to "<stem>_pages" beside itself.
	OutDir string

	// Progress receives the in-flight image's events; may be nil.
	Progress ProgressFunc

	// OnImage is called before each image starts; may be nil.
	OnImage func(index, total int, path string)

	// Cancel is shared with the in-flight job; may be nil.
	Cancel *CancelToken
}

// BatchItem is the outcome for one discovered image.
type BatchItem struct {
	ImagePath string
	OutDir    string
	Result    *Result
	Err       error
}

// BatchResult aggregates a directory run.
type BatchResult struct {
	Items     []BatchItem
	Succeeded int
	Failed    int

	// Cancelled means the run stopped early on request. Images never
	// scheduled appear in no count.
	Cancelled bool
}

// DiscoverImages lists the batch-eligible images in dir in lexicographic
// order, the same order RunBatch processes them.
func DiscoverImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nserr.Wrap(nserr.ErrCodeFileNotFound, err, "batch directory not found: %s", dir)
		}
		return nil, nserr.Wrap(nserr.ErrCodeImageRead, err, "failed to scan batch directory: %s", dir)
	}

	var images []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if batchExts[strings.ToLower(filepath.Ext(entry.Name()))] {
			images = append(images, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(images)
	return images, nil
}

// RunBatch splits every eligible image in a directory, sequentially and
// in deterministic order. One image's failure is recorded and the batch
// moves on; only cancellation stops scheduling. The error return is
// reserved for the batch itself being unrunnable (unreadable directory,
// nothing to do).
func (e *Engine) RunBatch(ctx context.Context, opts BatchOptions) (*BatchResult, error) {
	images, err := DiscoverImages(opts.Dir)
	if err != nil {
		return nil, err
	}
	if len(images) == 0 {
		return nil, nserr.New(nserr.ErrCodeFileNotFound, "no images found in %s", opts.Dir)
	}

	def := config.Default()
	if opts.Default != nil {
		def = *opts.Default
	}

	batch := &BatchResult{}
	e.Logger.Info("batch started", "dir", opts.Dir, "images", len(images))

	for i, imagePath := range images {
		// Checked before scheduling each image; the in-flight job does
		// its own per-cell checks against the same token.
		if opts.Cancel.Cancelled() || ctx.Err() != nil {
			batch.Cancelled = true
			break
		}

		if opts.OnImage != nil {
			opts.OnImage(i, len(images), imagePath)
		}

		cfg := opts.ConfigOverride
		if cfg == nil {
			resolved := config.FindForImage(imagePath, def)
			cfg = &resolved
		}

		outDir := ""
		if opts.OutDir != "" {
			stem := strings.TrimSuffix(filepath.Base(imagePath), filepath.Ext(imagePath))
			outDir = filepath.Join(opts.OutDir, stem)
		}

		res, err := e.Run(ctx, Options{
			Config:    cfg,
			ImagePath: imagePath,
			OutDir:    outDir,
			Progress:  opts.Progress,
			Cancel:    opts.Cancel,
		})

		item := BatchItem{ImagePath: imagePath, OutDir: res.OutDir, Result: res, Err: err}
		batch.Items = append(batch.Items, item)

		switch {
		case res.Cancelled:
			batch.Cancelled = true
		case err != nil || !res.Success:
			batch.Failed++
		default:
			batch.Succeeded++
		}
		if batch.Cancelled {
			break
		}
	}

	e.Logger.Info("batch finished",
		"succeeded", batch.Succeeded,
		"failed", batch.Failed,
		"cancelled", batch.Cancelled)
	return batch, nil
}
