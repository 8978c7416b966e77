package job

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/namesheet/namesplit/pkg/config"
	nserr "github.com/namesheet/namesplit/pkg/errors"
)

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 128, G: 128, B: 128, A: 255})
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

func testEngine() *Engine {
	return NewEngine(log.New(io.Discard))
}

func jobConfig() *config.Config {
	cfg := config.Default()
	return &cfg
}

func TestRunSplitsAllPages(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "sheet.png")
	writePNG(t, input, 64, 64)

	var events []ProgressEvent
	res, err := testEngine().Run(context.Background(), Options{
		Config:    jobConfig(),
		ImagePath: input,
		Progress:  func(ev ProgressEvent) { events = append(events, ev) },
	})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if !res.Success {
		t.Errorf("result not successful: %+v", res.Errors)
	}
	if res.Cancelled {
		t.Error("result unexpectedly cancelled")
	}
	if len(res.PagesWritten) != 16 {
		t.Fatalf("pages written = %d, want 16 (4x4)", len(res.PagesWritten))
	}

	wantDir := filepath.Join(dir, "sheet_pages")
	if res.OutDir != wantDir {
		t.Errorf("out dir = %s, want %s", res.OutDir, wantDir)
	}
	if _, err := os.Stat(filepath.Join(wantDir, "page_001.png")); err != nil {
		t.Errorf("first page missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(wantDir, "page_016.png")); err != nil {
		t.Errorf("last page missing: %v", err)
	}
	if _, err := os.Stat(res.PlanPath); err != nil {
		t.Errorf("plan manifest missing: %v", err)
	}

	// One boundary event per non-render phase, one render event per cell.
	counts := map[Phase]int{}
	for _, ev := range events {
		counts[ev.Phase]++
	}
	if counts[PhaseLoad] != 1 || counts[PhaseMerge] != 1 || counts[PhaseWrap] != 1 {
		t.Errorf("boundary events = %v", counts)
	}
	if counts[PhaseRender] != 16 {
		t.Errorf("render events = %d, want 16", counts[PhaseRender])
	}
	last := events[len(events)-1]
	if last.Phase != PhaseWrap {
		t.Errorf("final event phase = %s, want wrap", last.Phase)
	}
}

func TestRunCancelledAfterFirstPage(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "sheet.png")
	writePNG(t, input, 64, 64)

	token := NewCancelToken()
	res, err := testEngine().Run(context.Background(), Options{
		Config:    jobConfig(),
		ImagePath: input,
		Cancel:    token,
		Progress: func(ev ProgressEvent) {
			if ev.Phase == PhaseRender && ev.Done == 1 {
				token.Cancel()
			}
		},
	})
	if err != nil {
		t.Fatalf("cancellation must not be an error, got %v", err)
	}
	if !res.Cancelled {
		t.Fatal("result should be marked cancelled")
	}
	if res.Success {
		t.Error("cancelled run must not claim success")
	}
	if len(res.Errors) != 0 {
		t.Errorf("cancellation recorded errors: %v", res.Errors)
	}
	if len(res.PagesWritten) != 1 {
		t.Errorf("pages written = %d, want 1 (already-written pages are kept)", len(res.PagesWritten))
	}
	if _, err := os.Stat(res.PagesWritten[0]); err != nil {
		t.Errorf("written page should survive cancellation: %v", err)
	}
}

func TestRunTestPage(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "sheet.png")
	writePNG(t, input, 64, 64)

	res, err := testEngine().Run(context.Background(), Options{
		Config:    jobConfig(),
		ImagePath: input,
		TestPage:  3,
	})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if len(res.PagesWritten) != 1 {
		t.Fatalf("pages written = %d, want 1", len(res.PagesWritten))
	}
	if filepath.Base(res.PagesWritten[0]) != "page_003.png" {
		t.Errorf("wrote %s, want page_003.png", filepath.Base(res.PagesWritten[0]))
	}
}

func TestRunTestPageOutOfRange(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "sheet.png")
	writePNG(t, input, 64, 64)

	_, err := testEngine().Run(context.Background(), Options{
		Config:    jobConfig(),
		ImagePath: input,
		TestPage:  17,
	})
	if !nserr.Is(err, nserr.ErrCodePageRange) {
		t.Errorf("error = %v, want PAGE_RANGE", err)
	}
}

func TestRunMissingInput(t *testing.T) {
	res, err := testEngine().Run(context.Background(), Options{
		Config:    jobConfig(),
		ImagePath: filepath.Join(t.TempDir(), "absent.png"),
	})
	if !nserr.Is(err, nserr.ErrCodeFileNotFound) {
		t.Errorf("error = %v, want FILE_NOT_FOUND", err)
	}
	if res.Success {
		t.Error("failed run must not claim success")
	}
	if len(res.Errors) != 1 {
		t.Errorf("errors = %v, want the load failure recorded", res.Errors)
	}
}

func TestRunLimitExceeded(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "big.png")
	writePNG(t, input, 64, 64)

	cfg := jobConfig()
	cfg.Limits.MaxDimPx = 32
	cfg.Limits.OnExceed = config.OnExceedError

	_, err := testEngine().Run(context.Background(), Options{Config: cfg, ImagePath: input})
	if !nserr.Is(err, nserr.ErrCodeLimitExceeded) {
		t.Errorf("error = %v, want LIMIT_EXCEEDED", err)
	}
}

func TestRunLimitWarnStillCompletes(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "big.png")
	writePNG(t, input, 64, 64)

	cfg := jobConfig()
	cfg.Limits.MaxDimPx = 32
	cfg.Limits.OnExceed = config.OnExceedWarn

	res, err := testEngine().Run(context.Background(), Options{Config: cfg, ImagePath: input})
	if err != nil {
		t.Fatalf("warn mode must not fail the job: %v", err)
	}
	if !res.Success {
		t.Error("warn mode should complete successfully")
	}
	if len(res.Warnings) == 0 {
		t.Error("the limit warning should be recorded")
	}
	if len(res.PagesWritten) != 16 {
		t.Errorf("pages written = %d, want 16", len(res.PagesWritten))
	}
}

func TestRunExplicitOutDir(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "sheet.png")
	writePNG(t, input, 32, 32)

	out := filepath.Join(dir, "custom")
	res, err := testEngine().Run(context.Background(), Options{
		Config:    jobConfig(),
		ImagePath: input,
		OutDir:    out,
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.OutDir != out {
		t.Errorf("out dir = %s, want %s", res.OutDir, out)
	}
}

func TestCancelToken(t *testing.T) {
	var nilToken *CancelToken
	if nilToken.Cancelled() {
		t.Error("nil token must never report cancelled")
	}

	token := NewCancelToken()
	if token.Cancelled() {
		t.Error("fresh token should not be cancelled")
	}
	token.Cancel()
	token.Cancel()
	if !token.Cancelled() {
		t.Error("token should be cancelled after Cancel")
	}
}
