package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

func displayPath(path string) string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return path
	}
	if path == home || strings.HasPrefix(path, home+string(os.PathSeparator)) {
		return "~" + strings.TrimPrefix(path, home)
	}
	return path
}

func formatNumber(n int) string {
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}
	if n < 1000000 {
		return fmt.Sprintf("%.1fk", float64(n)/1000)
	}
	return fmt.Sprintf("%.1fM", float64(n)/1000000)
}

// fitName truncates name to width display cells, CJK aware, and pads it.
func fitName(name string, width int) string {
	return runewidth.FillRight(runewidth.Truncate(name, width, "..."), width)
}

func shortenPath(path string, width int) string {
	if runewidth.StringWidth(path) <= width {
		return path
	}
	runes := []rune(path)
	keep, used := len(runes), 3
	for keep > 0 {
		w := runewidth.RuneWidth(runes[keep-1])
		if used+w > width {
			break
		}
		used += w
		keep--
	}
	return "..." + string(runes[keep:])
}

func barStyle(percent float64) lipgloss.Style {
	switch {
	case percent >= 50:
		return barRed
	case percent >= 20:
		return barYellow
	case percent >= 5:
		return barCyan
	default:
		return barGreen
	}
}

func progressBar(value, max int64) string {
	if max <= 0 || value < 0 {
		return mutedStyle.Render(strings.Repeat("░", barWidth))
	}
	filled := int((value * int64(barWidth)) / max)
	if filled > barWidth {
		filled = barWidth
	}
	percent := float64(value) / float64(max) * 100
	return barStyle(percent).Render(strings.Repeat("█", filled)) +
		mutedStyle.Render(strings.Repeat("░", barWidth-filled))
}

func percentOf(value, total int64) string {
	if total <= 0 {
		return "  --  "
	}
	return fmt.Sprintf("%5.1f%%", float64(value)/float64(total)*100)
}
