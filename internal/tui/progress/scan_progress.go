package progress

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Digital-Shane/bangumi-tidy/internal/core"
	"github.com/Digital-Shane/bangumi-tidy/internal/tui/theme"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ParseFunc runs a parse with the given callbacks installed.
type ParseFunc func(ctx context.Context, opts core.ParseOptions) (*core.ParseResult, core.Library, error)

// Phase is the pipeline stage currently shown.
type Phase int

const (
	PhaseScanning Phase = iota
	PhaseAnalyzing
	PhaseDone
)

func (p Phase) String() string {
	switch p {
	case PhaseScanning:
		return "Scanning"
	case PhaseAnalyzing:
		return "Analyzing"
	default:
		return "Done"
	}
}

// ScanProgressModel shows a full-screen progress UI while a library is
// scanned and analyzed. Once it quits the caller reads Result and Library.
type ScanProgressModel struct {
	root string
	run  ParseFunc

	phase      Phase
	dirs       int
	files      int
	currentDir string
	analyzed   int
	total      int

	width  int
	height int

	result  *core.ParseResult
	library core.Library
	err     error

	progress progress.Model
	msgCh    chan tea.Msg
	ctx      context.Context
	cancel   context.CancelFunc

	theme theme.Theme
}

type scanMsg struct {
	dir   string
	dirs  int
	files int
}

type analyzeMsg struct{ done, total int }

type parseCompleteMsg struct {
	result  *core.ParseResult
	library core.Library
	err     error
}

// NewScanProgressModel creates a model that calls run when started.
func NewScanProgressModel(root string, run ParseFunc, th theme.Theme) *ScanProgressModel {
	from, to := th.ProgressGradient()
	p := progress.New(progress.WithGradient(from, to))
	p.Width = 50
	ctx, cancel := context.WithCancel(context.Background())
	return &ScanProgressModel{
		root:     root,
		run:      run,
		width:    80,
		height:   12,
		progress: p,
		msgCh:    make(chan tea.Msg, 64),
		ctx:      ctx,
		cancel:   cancel,
		theme:    th,
	}
}

// Init starts the parse in the background.
func (m *ScanProgressModel) Init() tea.Cmd {
	go m.parseAsync()
	return m.waitForMsg()
}

func (m *ScanProgressModel) waitForMsg() tea.Cmd { return func() tea.Msg { return <-m.msgCh } }

// send drops intermediate updates when the UI lags; every message carries
// running totals so the next one catches up.
func (m *ScanProgressModel) send(msg tea.Msg) {
	select {
	case m.msgCh <- msg:
	default:
	}
}

func (m *ScanProgressModel) parseAsync() {
	dirs, files := 0, 0
	opts := core.ParseOptions{
		OnScan: func(dir string, n int) {
			dirs++
			files += n
			m.send(scanMsg{dir: dir, dirs: dirs, files: files})
		},
		OnAnalyze: func(done, total int) {
			m.send(analyzeMsg{done: done, total: total})
		},
	}
	res, lib, err := m.run(m.ctx, opts)
	select {
	case m.msgCh <- parseCompleteMsg{result: res, library: lib, err: err}:
	case <-m.ctx.Done():
	}
}

// Update processes Bubble Tea messages.
func (m *ScanProgressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.progress.Width = max(msg.Width-4, 10)
		return m, nil
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || msg.String() == "esc" {
			m.cancel()
			m.err = context.Canceled
			return m, tea.Quit
		}
	case scanMsg:
		m.dirs, m.files, m.currentDir = msg.dirs, msg.files, msg.dir
		return m, m.waitForMsg()
	case analyzeMsg:
		m.phase = PhaseAnalyzing
		m.analyzed, m.total = msg.done, msg.total
		cmd := m.progress.SetPercent(float64(msg.done) / float64(max(msg.total, 1)))
		return m, tea.Batch(cmd, m.waitForMsg())
	case parseCompleteMsg:
		m.phase = PhaseDone
		m.result, m.library, m.err = msg.result, msg.library, msg.err
		return m, tea.Quit
	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		return m, cmd
	}
	return m, nil
}

// View renders the progress UI.
func (m *ScanProgressModel) View() string {
	if m.err != nil && m.phase == PhaseDone {
		return m.theme.ErrorStyle().Render(fmt.Sprintf("%s Error: %v", m.theme.Icon("error"), m.err)) + "\n"
	}

	sections := []string{
		m.theme.HeaderStyle().Width(m.width).Render(m.theme.Icon("scan") + " " + m.phase.String() + " " + m.root),
	}

	var stats []string
	switch m.phase {
	case PhaseScanning:
		stats = []string{
			fmt.Sprintf("Directories: %d", m.dirs),
			fmt.Sprintf("Video files: %d", m.files),
		}
		if m.currentDir != "" {
			stats = append(stats, "Current: "+m.relative(m.currentDir))
		}
	default:
		sections = append(sections, m.progress.View())
		stats = []string{
			fmt.Sprintf("Directories: %d", m.dirs),
			fmt.Sprintf("Files analyzed: %d/%d", m.analyzed, m.total),
		}
	}

	panel := m.theme.PanelStyle()
	panelWidth := max(m.width-panel.GetHorizontalFrameSize(), 0)
	sections = append(sections, panel.Width(panelWidth).Render(strings.Join(stats, "\n")))

	status := m.theme.StatusBarStyle().Width(m.width).Render("Working... esc to cancel")
	sections = append(sections, status)

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *ScanProgressModel) relative(dir string) string {
	if rel, err := filepath.Rel(m.root, dir); err == nil {
		return rel
	}
	return dir
}

// Phase returns the stage the model reached.
func (m *ScanProgressModel) Phase() Phase { return m.phase }

// Result returns the parse result, nil until the parse completes.
func (m *ScanProgressModel) Result() *core.ParseResult { return m.result }

// Library returns the merged library.
func (m *ScanProgressModel) Library() core.Library { return m.library }

// Err returns the parse error, or context.Canceled when the user quit early.
func (m *ScanProgressModel) Err() error { return m.err }
