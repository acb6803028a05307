package main

import (
	"fmt"
	"strings"

	"github.com/tw93/mole-vfs/internal/units"
	"github.com/tw93/mole-vfs/internal/vfs"
)

func (m model) View() string {
	var b strings.Builder
	fmt.Fprintln(&b)

	if m.scanning {
		fmt.Fprintf(&b, "%s\n", titleStyle.Render("Analyze Disk"))
		fmt.Fprintf(&b, "\n%s %s\n", cursorStyle.Render(spinnerFrames[m.spinner]), m.status)
		for _, p := range m.pending {
			fmt.Fprintf(&b, "%s\n", mutedStyle.Render(shortenPath(displayPath(p), 60)))
		}
		return b.String()
	}

	m.renderHeader(&b)
	fmt.Fprintln(&b)
	m.renderEntries(&b)
	fmt.Fprintln(&b)
	m.renderDetails(&b)

	if m.removeAllConfirm {
		fmt.Fprintf(&b, "%s\n", dangerStyle.Render(m.status))
	} else if m.status != "" {
		fmt.Fprintf(&b, "%s\n", mutedStyle.Render(m.status))
	}
	fmt.Fprintf(&b, "%s\n", mutedStyle.Render(helpLine(m.nav.AtRoots())))
	return b.String()
}

func (m model) renderHeader(b *strings.Builder) {
	location := "roots"
	if cur := m.nav.Current(); cur != nil {
		location = shortenPath(displayPath(cur.Path), 60)
	}
	fmt.Fprintf(b, "%s  %s", titleStyle.Render("Analyze Disk"), mutedStyle.Render(location))
	fmt.Fprintf(b, "  |  Total: %s", sizeStyle.Render(units.FormatBytes(m.tree.TotalSize())))
	fmt.Fprintf(b, "  |  %s dirs, %s files\n",
		countStyle.Render(formatNumber(m.tree.RootDirCount())),
		countStyle.Render(formatNumber(m.tree.RootFileCount())))
	if patterns := m.filter.Patterns(); len(patterns) > 0 {
		fmt.Fprintf(b, "%s\n", mutedStyle.Render("Excluding: "+strings.Join(patterns, ", ")))
	}
}

func (m model) renderEntries(b *strings.Builder) {
	children := m.nav.Children()
	if len(children) == 0 {
		if m.nav.AtRoots() {
			fmt.Fprintln(b, "  No paths loaded")
		} else {
			fmt.Fprintln(b, "  Empty directory")
		}
		return
	}

	var total, maxSize int64
	for _, e := range children {
		size := m.report.IncludedSize(e)
		total += size
		if size > maxSize {
			maxSize = size
		}
	}

	fmt.Fprintf(b, "%s\n", mutedStyle.Render(fmt.Sprintf("    %3s  %-3s %s %-8s  %10s  %10s  %5s %5s %5s %5s",
		"#", " ", fitName("Name", nameWidth), "Status", "Included", "Excluded", "I-D", "I-F", "E-D", "E-F")))

	end := m.offset + entryViewport
	if end > len(children) {
		end = len(children)
	}
	for idx := m.offset; idx < end; idx++ {
		e := children[idx]
		a := m.report.Get(e)

		prefix := "    "
		name := fitName(e.Name, nameWidth)
		if idx == m.selected {
			prefix = " " + cursorStyle.Render(">") + "  "
			name = selectedStyle.Render(name)
		}
		status := fmt.Sprintf("%-8s", a.Status)
		if a.Status == vfs.StatusExcluded {
			status = dangerStyle.Render(status)
		}
		fmt.Fprintf(b, "%s%3d. %-3s %s %s  %s  %s  %5s %5s %5s %5s  %s %s\n",
			prefix, idx+1, e.TypeSymbol(), name, status,
			sizeStyle.Render(units.Column(a.IncludedSize)),
			mutedStyle.Render(units.Column(a.ExcludedSize)),
			formatNumber(a.IncludedDirs), formatNumber(a.IncludedFiles),
			formatNumber(a.ExcludedDirs), formatNumber(a.ExcludedFiles),
			progressBar(a.IncludedSize, maxSize), percentOf(a.IncludedSize, total))
	}
	if len(children) > entryViewport {
		fmt.Fprintf(b, "%s\n", mutedStyle.Render(fmt.Sprintf("    showing %d-%d of %d", m.offset+1, end, len(children))))
	}
}

func (m model) renderDetails(b *strings.Builder) {
	e := m.selection()
	if e == nil {
		return
	}
	a := m.report.Get(e)
	fmt.Fprintf(b, "%-3s %s  %s  size %s, included %s, excluded %s\n",
		e.TypeSymbol(), shortenPath(displayPath(e.Path), 60), a.Status,
		units.FormatBytesAccurate(e.Size), units.FormatBytes(a.IncludedSize), units.FormatBytes(a.ExcludedSize))
}

func helpLine(atRoots bool) string {
	if atRoots {
		return "↑↓ select | enter open | r recompute | x exclude | d remove | D remove all | q quit"
	}
	return "↑↓ select | enter open | ← back | t roots | r recompute | x exclude | d remove | D remove all | q quit"
}
