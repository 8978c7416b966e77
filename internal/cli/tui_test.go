package cli

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/namesheet/namesplit/pkg/job"
)

func TestBatchModelImageStart(t *testing.T) {
	m := newBatchModel(job.NewCancelToken())

	next, _ := m.Update(imageStartMsg{index: 0, total: 3, path: "/sheets/chapter01.png"})
	m = next.(batchModel)

	if m.current != "chapter01.png" {
		t.Errorf("current = %q, want %q", m.current, "chapter01.png")
	}
	if m.total != 3 {
		t.Errorf("total = %d, want 3", m.total)
	}

	view := m.View()
	if !strings.Contains(view, "[1/3] chapter01.png") {
		t.Errorf("view should show the current image, got:\n%s", view)
	}
}

func TestBatchModelFinishedLog(t *testing.T) {
	m := newBatchModel(job.NewCancelToken())

	next, _ := m.Update(imageStartMsg{index: 0, total: 2, path: "a.png"})
	m = next.(batchModel)
	next, _ = m.Update(pageProgressMsg{done: 4, total: 4})
	m = next.(batchModel)
	next, _ = m.Update(imageStartMsg{index: 1, total: 2, path: "b.png"})
	m = next.(batchModel)

	if len(m.finished) != 1 {
		t.Fatalf("finished = %d entries, want 1", len(m.finished))
	}
	if m.pageDone != 0 {
		t.Errorf("pageDone should reset on a new image, got %d", m.pageDone)
	}
}

func TestBatchModelQuitKeyCancels(t *testing.T) {
	token := job.NewCancelToken()
	m := newBatchModel(token)

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	m = next.(batchModel)

	if !token.Cancelled() {
		t.Error("q should cancel the shared token")
	}
	if !m.cancelling {
		t.Error("model should enter the cancelling state")
	}
	view := m.View()
	if !strings.Contains(view, "cancelling") {
		t.Errorf("view should show the cancelling notice, got:\n%s", view)
	}
}

func TestBatchModelDoneQuits(t *testing.T) {
	m := newBatchModel(job.NewCancelToken())

	next, cmd := m.Update(batchDoneMsg{})
	m = next.(batchModel)

	if !m.done {
		t.Error("model should be done after batchDoneMsg")
	}
	if cmd == nil {
		t.Fatal("batchDoneMsg should return tea.Quit")
	}
	if m.View() != "" {
		t.Error("done model should render an empty view")
	}
}

func TestBatchModelBarClamped(t *testing.T) {
	m := newBatchModel(job.NewCancelToken())
	m.pageDone = 10
	m.pageTotal = 4

	bar := m.renderBar()
	if !strings.Contains(bar, "10/4") {
		t.Errorf("bar should report raw counts, got %q", bar)
	}
}
