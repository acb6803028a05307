package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tw93/mole-vfs/internal/logging"
	"github.com/tw93/mole-vfs/internal/units"
	"github.com/tw93/mole-vfs/internal/vfs"
)

type scanResultMsg struct {
	added  int
	failed []error
	err    error
	took   time.Duration
}

type tickMsg time.Time

type model struct {
	tree    *vfs.Tree
	nav     *vfs.Navigator
	filter  *vfs.Filter
	report  *vfs.Report
	workers int

	pending          []string
	selected         int
	offset           int
	status           string
	scanning         bool
	spinner          int
	removeAllConfirm bool
	fingerprint      uint64
	reportKey        uint64
}

func newModel(paths []string, exclude []string, workers int) model {
	tree := vfs.NewTree()
	filter := vfs.NewFilter(exclude...)
	report := vfs.BuildReport(tree, filter)
	nav := vfs.NewNavigator(tree)
	nav.SetSizeFunc(report.IncludedSize)
	status := "Preparing scan..."
	if len(paths) == 0 {
		status = "Nothing to scan"
	}
	return model{
		tree:      tree,
		nav:       nav,
		filter:    filter,
		report:    report,
		reportKey: vfs.ReportKey(tree, filter),
		workers:   workers,
		pending:   paths,
		status:    status,
		scanning:  len(paths) > 0,
	}
}

func (m model) Init() tea.Cmd {
	if !m.scanning {
		return nil
	}
	return tea.Batch(m.scanCmd(m.pending), tickCmd())
}

// scanCmd adds paths to the tree and recomputes every size. The tree is
// owned by the command until its scanResultMsg arrives; nothing else reads
// it while m.scanning is set.
func (m model) scanCmd(paths []string) tea.Cmd {
	tree, workers := m.tree, m.workers
	return func() tea.Msg {
		start := time.Now()
		msg := scanResultMsg{}
		for _, p := range paths {
			if _, err := tree.AddPath(p); err != nil {
				logging.Warn("add path failed", logging.String("path", p), logging.Err(err))
				msg.failed = append(msg.failed, err)
				continue
			}
			msg.added++
		}
		msg.err = tree.ComputeAllSizesParallel(context.Background(), workers)
		msg.took = time.Since(start)
		return msg
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.updateKey(msg)
	case scanResultMsg:
		m.scanning = false
		m.pending = nil
		m.rebuild()
		switch {
		case msg.err != nil:
			logging.Error("size computation failed", logging.Err(msg.err))
			m.status = fmt.Sprintf("Scan failed: %v", msg.err)
		case len(msg.failed) > 0:
			m.status = fmt.Sprintf("Scanned %s, %d path(s) failed: %v",
				units.FormatBytes(m.tree.TotalSize()), len(msg.failed), errors.Join(msg.failed...))
		default:
			m.status = fmt.Sprintf("Scanned %s in %s", units.FormatBytes(m.tree.TotalSize()), msg.took.Round(time.Millisecond))
		}
		return m, nil
	case tickMsg:
		if m.scanning {
			m.spinner = (m.spinner + 1) % len(spinnerFrames)
			return m, tickCmd()
		}
		return m, nil
	default:
		return m, nil
	}
}

func (m model) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" || key == "q" {
		return m, tea.Quit
	}
	if m.scanning {
		return m, nil
	}

	if m.removeAllConfirm {
		m.removeAllConfirm = false
		if key == "y" || key == "D" {
			m.tree.RemoveAll()
			m.nav.ToRoots()
			m.rebuild()
			m.status = "Removed all entries"
			return m, nil
		}
		m.status = "Cancelled"
		return m, nil
	}

	switch key {
	case "esc":
		return m, tea.Quit
	case "up", "k":
		if m.selected > 0 {
			m.selected--
		}
		m.clampSelection()
	case "down", "j":
		if m.selected < len(m.nav.Children())-1 {
			m.selected++
		}
		m.clampSelection()
	case "enter", "right", "l":
		return m.openSelected()
	case "left", "b", "backspace":
		m.back()
	case "t", "home":
		m.nav.ToRoots()
		m.selected, m.offset = 0, 0
		m.rebuild()
		m.status = "Roots"
	case "r":
		m.status = "Recomputing sizes..."
		m.scanning = true
		return m, tea.Batch(m.scanCmd(nil), tickCmd())
	case "x":
		m.toggleExclude()
	case "d", "delete":
		return m.removeSelected()
	case "D":
		if m.tree.Len() > 0 {
			m.removeAllConfirm = true
			m.status = "Remove all entries? Press y to confirm"
		}
	}
	return m, nil
}

func (m model) selection() *vfs.Entry {
	children := m.nav.Children()
	if m.selected < 0 || m.selected >= len(children) {
		return nil
	}
	return children[m.selected]
}

func (m model) openSelected() (tea.Model, tea.Cmd) {
	e := m.selection()
	if e == nil {
		return m, nil
	}
	if !m.nav.Open(e.Path) {
		m.status = fmt.Sprintf("File: %s (%s)", e.Name, units.FormatBytes(e.Size))
		return m, nil
	}
	m.selected, m.offset = 0, 0
	m.rebuild()
	m.status = fmt.Sprintf("Opened %s", displayPath(e.Path))
	return m, nil
}

// back leaves the current directory and selects it in the parent listing.
func (m *model) back() {
	left := m.nav.Current()
	m.nav.Back()
	m.selected, m.offset = 0, 0
	m.rebuild()
	if left == nil {
		return
	}
	for i, c := range m.nav.Children() {
		if c == left {
			m.selected = i
			break
		}
	}
	m.clampSelection()
}

func (m *model) toggleExclude() {
	e := m.selection()
	if e == nil {
		return
	}
	if m.filter.Include(e.Path) {
		m.status = fmt.Sprintf("Included %s", e.Name)
		if rule := m.filter.ExcludedBy(e); rule != "" {
			m.status = fmt.Sprintf("%s is still excluded by rule %q", e.Name, rule)
		}
		m.rebuild()
		return
	}
	if rule := m.filter.ExcludedBy(e); rule != "" {
		m.status = fmt.Sprintf("%s is excluded by rule %q", e.Name, rule)
		return
	}
	m.filter.Exclude(e.Path)
	m.status = fmt.Sprintf("Excluded %s", e.Name)
	m.rebuild()
}

func (m model) removeSelected() (tea.Model, tea.Cmd) {
	e := m.selection()
	if e == nil {
		return m, nil
	}
	if !m.tree.Remove(e.Path) {
		return m, nil
	}
	m.filter.Include(e.Path)
	m.status = fmt.Sprintf("Removed %s", e.Name)
	m.scanning = true
	return m, tea.Batch(m.scanCmd(nil), tickCmd())
}

// rebuild refreshes the navigator listing, rebuilding the report only when
// the tree or the rules changed. When the listing changed, the selected
// entry is looked up again by path so a reorder does not move the cursor
// to a different entry.
func (m *model) rebuild() {
	var selectedPath string
	if e := m.selection(); e != nil {
		selectedPath = e.Path
	}
	if key := vfs.ReportKey(m.tree, m.filter); key != m.reportKey {
		m.report = vfs.BuildReport(m.tree, m.filter)
		m.reportKey = key
	}
	m.nav.SetSizeFunc(m.report.IncludedSize)
	if fp := m.nav.Fingerprint(); fp != m.fingerprint {
		m.fingerprint = fp
		for i, c := range m.nav.Children() {
			if c.Path == selectedPath {
				m.selected = i
				break
			}
		}
	}
	m.clampSelection()
}

func (m *model) clampSelection() {
	n := len(m.nav.Children())
	if n == 0 {
		m.selected, m.offset = 0, 0
		return
	}
	if m.selected >= n {
		m.selected = n - 1
	}
	if m.selected < 0 {
		m.selected = 0
	}
	maxOffset := n - entryViewport
	if maxOffset < 0 {
		maxOffset = 0
	}
	if m.offset > maxOffset {
		m.offset = maxOffset
	}
	if m.selected < m.offset {
		m.offset = m.selected
	}
	if m.selected >= m.offset+entryViewport {
		m.offset = m.selected - entryViewport + 1
	}
}
