package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/namesheet/namesplit/pkg/job"
)

// Batch view styles.
var (
	batchCurrentStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	batchBarStyle     = lipgloss.NewStyle().Foreground(colorCyan)
	batchTrackStyle   = lipgloss.NewStyle().Foreground(colorDim)
)

// Messages streamed from the batch goroutine.
type imageStartMsg struct {
	index int
	total int
	path  string
}

type pageProgressMsg struct {
	done  int
	total int
}

type batchDoneMsg struct{}

// batchModel is the bubbletea model for batch progress. It shows the
// in-flight image with a page progress bar and keeps a short log of
// finished images above it.
type batchModel struct {
	token *job.CancelToken

	total      int
	index      int
	current    string
	pageDone   int
	pageTotal  int
	finished   []string
	cancelling bool
	done       bool
}

func newBatchModel(token *job.CancelToken) batchModel {
	return batchModel{token: token}
}

func (m batchModel) Init() tea.Cmd {
	return nil
}

func (m batchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			// Cooperative: the engine stops at the next cell boundary.
			m.token.Cancel()
			m.cancelling = true
		}
	case imageStartMsg:
		if m.current != "" {
			m.finished = append(m.finished, m.renderFinishedLine())
		}
		m.index = msg.index
		m.total = msg.total
		m.current = filepath.Base(msg.path)
		m.pageDone = 0
		m.pageTotal = 0
	case pageProgressMsg:
		m.pageDone = msg.done
		m.pageTotal = msg.total
	case batchDoneMsg:
		m.done = true
		return m, tea.Quit
	}
	return m, nil
}

func (m batchModel) View() string {
	if m.done {
		return ""
	}

	var b strings.Builder
	b.WriteString(StyleTitle.Render("Splitting sheets"))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("q cancel"))
	b.WriteString("\n\n")

	for _, line := range m.finished {
		b.WriteString(line)
		b.WriteString("\n")
	}

	if m.current != "" {
		b.WriteString(batchCurrentStyle.Render(fmt.Sprintf("▸ [%d/%d] %s", m.index+1, m.total, m.current)))
		b.WriteString("  ")
		b.WriteString(m.renderBar())
		b.WriteString("\n")
	}

	if m.cancelling {
		b.WriteString("\n")
		b.WriteString(StyleWarning.Render("cancelling after current page..."))
		b.WriteString("\n")
	}
	return b.String()
}

// renderBar draws a fixed-width page progress bar for the current image.
func (m batchModel) renderBar() string {
	const width = 20
	if m.pageTotal == 0 {
		return batchTrackStyle.Render(strings.Repeat("░", width))
	}
	filled := m.pageDone * width / m.pageTotal
	if filled > width {
		filled = width
	}
	bar := batchBarStyle.Render(strings.Repeat("█", filled)) +
		batchTrackStyle.Render(strings.Repeat("░", width-filled))
	return fmt.Sprintf("%s %d/%d", bar, m.pageDone, m.pageTotal)
}

func (m batchModel) renderFinishedLine() string {
	return StyleDim.Render(fmt.Sprintf("  [%d/%d] %s", m.index+1, m.total, m.current))
}
