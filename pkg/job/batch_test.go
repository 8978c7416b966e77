package job

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	nserr "github.com/namesheet/namesplit/pkg/errors"
)

func TestRunBatchPartialFailure(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "a.png"), 32, 32)
	if err := os.WriteFile(filepath.Join(dir, "b.png"), []byte("not a png"), 0o644); err != nil {
		t.Fatal(err)
	}
	writePNG(t, filepath.Join(dir, "c.png"), 32, 32)

	batch, err := testEngine().RunBatch(context.Background(), BatchOptions{Dir: dir})
	if err != nil {
		t.Fatalf("RunBatch error: %v", err)
	}

	if len(batch.Items) != 3 {
		t.Fatalf("items = %d, want 3 (one failure must not stop the batch)", len(batch.Items))
	}
	if batch.Succeeded != 2 || batch.Failed != 1 {
		t.Errorf("succeeded/failed = %d/%d, want 2/1", batch.Succeeded, batch.Failed)
	}
	if batch.Cancelled {
		t.Error("batch should not be cancelled")
	}

	// Deterministic lexicographic order.
	for i, want := range []string{"a.png", "b.png", "c.png"} {
		if filepath.Base(batch.Items[i].ImagePath) != want {
			t.Errorf("items[%d] = %s, want %s", i, filepath.Base(batch.Items[i].ImagePath), want)
		}
	}

	failed := batch.Items[1]
	if failed.Err == nil || !nserr.Is(failed.Err, nserr.ErrCodeImageRead) {
		t.Errorf("corrupt image error = %v, want IMAGE_READ", failed.Err)
	}

	// Per-image output namespacing beside each input.
	if _, err := os.Stat(filepath.Join(dir, "a_pages", "page_001.png")); err != nil {
		t.Errorf("a.png output missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "c_pages", "page_001.png")); err != nil {
		t.Errorf("c.png output missing: %v", err)
	}
}

func TestRunBatchSidecarDiscovery(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "a.png"), 32, 32)
	writePNG(t, filepath.Join(dir, "b.png"), 32, 32)

	// a gets a 1x2 sidecar, b falls back to the 4x4 default.
	sidecar := "[grid]\nrows = 1\ncols = 2\n"
	if err := os.WriteFile(filepath.Join(dir, "a_config.toml"), []byte(sidecar), 0o644); err != nil {
		t.Fatal(err)
	}

	batch, err := testEngine().RunBatch(context.Background(), BatchOptions{Dir: dir})
	if err != nil {
		t.Fatal(err)
	}
	if batch.Succeeded != 2 {
		t.Fatalf("succeeded = %d, want 2", batch.Succeeded)
	}
	if got := len(batch.Items[0].Result.PagesWritten); got != 2 {
		t.Errorf("a.png pages = %d, want 2 (sidecar grid)", got)
	}
	if got := len(batch.Items[1].Result.PagesWritten); got != 16 {
		t.Errorf("b.png pages = %d, want 16 (default grid)", got)
	}
}

func TestRunBatchCancellation(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "a.png"), 64, 64)
	writePNG(t, filepath.Join(dir, "b.png"), 64, 64)
	writePNG(t, filepath.Join(dir, "c.png"), 64, 64)

	token := NewCancelToken()
	batch, err := testEngine().RunBatch(context.Background(), BatchOptions{
		Dir:    dir,
		Cancel: token,
		Progress: func(ev ProgressEvent) {
			if ev.Phase == PhaseRender && ev.Done == 1 {
				token.Cancel()
			}
		},
	})
	if err != nil {
		t.Fatalf("cancellation must not be an error: %v", err)
	}
	if !batch.Cancelled {
		t.Fatal("batch should be marked cancelled")
	}
	if len(batch.Items) != 1 {
		t.Errorf("items = %d, want 1 (no further images scheduled)", len(batch.Items))
	}
	if batch.Failed != 0 {
		t.Errorf("cancelled job counted as failure: failed = %d", batch.Failed)
	}
	if !batch.Items[0].Result.Cancelled {
		t.Error("in-flight job should be marked cancelled")
	}
	if got := len(batch.Items[0].Result.PagesWritten); got != 1 {
		t.Errorf("in-flight job wrote %d pages, want 1", got)
	}
}

func TestRunBatchOutDirNamespacing(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "a.png"), 32, 32)
	writePNG(t, filepath.Join(dir, "b.png"), 32, 32)

	out := filepath.Join(dir, "out")
	batch, err := testEngine().RunBatch(context.Background(), BatchOptions{Dir: dir, OutDir: out})
	if err != nil {
		t.Fatal(err)
	}
	if batch.Succeeded != 2 {
		t.Fatalf("succeeded = %d, want 2", batch.Succeeded)
	}
	if _, err := os.Stat(filepath.Join(out, "a", "page_001.png")); err != nil {
		t.Errorf("namespaced output for a.png missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(out, "b", "page_001.png")); err != nil {
		t.Errorf("namespaced output for b.png missing: %v", err)
	}
}

func TestRunBatchIgnoresNonImages(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "a.png"), 32, 32)
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "namesplit.toml"), []byte("[grid]\nrows = 2\ncols = 2\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}

	images, err := DiscoverImages(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(images) != 1 || filepath.Base(images[0]) != "a.png" {
		t.Errorf("DiscoverImages = %v, want just a.png", images)
	}

	// The directory-level sidecar applies to the discovered image.
	batch, err := testEngine().RunBatch(context.Background(), BatchOptions{Dir: dir})
	if err != nil {
		t.Fatal(err)
	}
	if got := len(batch.Items[0].Result.PagesWritten); got != 4 {
		t.Errorf("pages = %d, want 4 (2x2 directory sidecar)", got)
	}
}

func TestRunBatchEmptyDir(t *testing.T) {
	_, err := testEngine().RunBatch(context.Background(), BatchOptions{Dir: t.TempDir()})
	if !nserr.Is(err, nserr.ErrCodeFileNotFound) {
		t.Errorf("error = %v, want FILE_NOT_FOUND", err)
	}
}
