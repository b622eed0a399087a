// Package tui renders indexing progress as a Bubble Tea program.
package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"codescope/internal/index"
)

// programRef is an indirect pointer to the tea.Program so the background
// indexing goroutine can send messages. It is set after tea.NewProgram
// returns but before Run.
type programRef struct {
	p *tea.Program
}

// progressMsg is sent as files move through the pipeline.
type progressMsg struct {
	processed int
	total     int
	chunks    int
}

// doneMsg is sent when the indexing pass finishes.
type doneMsg struct {
	result *index.Result
	err    error
}

type model struct {
	spinner   spinner.Model
	bar       progress.Model
	root      string
	processed int
	total     int
	chunks    int
	done      bool
	result    *index.Result
	err       error
	quitting  bool
}

func newModel(root string) model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = spinnerStyle
	return model{
		spinner: sp,
		bar:     progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		root:    root,
	}
}

func (m model) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.quitting = true
			return m, tea.Quit
		}
		if m.done {
			return m, tea.Quit
		}
		return m, nil

	case progressMsg:
		m.processed = msg.processed
		m.total = msg.total
		m.chunks = msg.chunks
		return m, nil

	case doneMsg:
		m.done = true
		m.result = msg.result
		m.err = msg.err
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m model) View() string {
	if m.quitting && !m.done {
		return dimStyle.Render("  Cancelled.") + "\n"
	}

	s := "\n" + titleStyle.Render("  Indexing "+m.root) + "\n\n"

	if m.done {
		if m.err != nil {
			s += errorStyle.Render(fmt.Sprintf("  Error: %v", m.err)) + "\n"
			return s
		}
		r := m.result
		s += successStyle.Render("  ✓ Indexing complete") + "\n\n"
		s += fmt.Sprintf("  Files: %d indexed, %d skipped, %d removed\n",
			r.IndexedFiles, r.SkippedFiles, r.DeletedFiles)
		s += fmt.Sprintf("  Chunks: %d\n", r.ChunkCount)
		if len(r.Errors) > 0 {
			s += warnStyle.Render(fmt.Sprintf("  %d file(s) had errors", len(r.Errors))) + "\n"
		}
		s += dimStyle.Render(fmt.Sprintf("  Took %s", r.Duration.Round(10*time.Millisecond))) + "\n"
		return s
	}

	s += fmt.Sprintf("  %s %d / %d files, %d chunks\n", m.spinner.View(), m.processed, m.total, m.chunks)
	if m.total > 0 {
		s += "  " + m.bar.ViewAs(float64(m.processed)/float64(m.total)) + "\n"
	}
	s += "\n" + dimStyle.Render("  q to cancel") + "\n"
	return s
}

// RunIndexing drives an indexing pass with a live progress display. The
// indexer's progress callback must already be wired with Progress from the
// same Reporter passed here.
func RunIndexing(ctx context.Context, ix *index.Indexer, rep *Reporter, root string, force bool) (*index.Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(newModel(root))
	rep.ref.p = p

	go func() {
		res, err := ix.IndexDirectory(ctx, root, force)
		p.Send(doneMsg{result: res, err: err})
	}()

	final, err := p.Run()
	if err != nil {
		return nil, err
	}
	m := final.(model)
	if m.quitting && !m.done {
		cancel()
		return nil, context.Canceled
	}
	return m.result, m.err
}

// Reporter bridges the indexer's progress callback to a running program.
// Progress calls made before the program starts are dropped.
type Reporter struct {
	ref *programRef
}

func NewReporter() *Reporter {
	return &Reporter{ref: &programRef{}}
}

// Progress is an index.ProgressFunc.
func (r *Reporter) Progress(processed, total, chunks int) {
	if r.ref.p != nil {
		r.ref.p.Send(progressMsg{processed: processed, total: total, chunks: chunks})
	}
}
