package main

import (
	"time"

	"github.com/charmbracelet/lipgloss"
)

const (
	barWidth      = 20
	nameWidth     = 28
	entryViewport = 14
	tickInterval  = 120 * time.Millisecond
)

var spinnerFrames = []string{"|", "/", "-", "\\", "|", "/", "-", "\\"}

var (
	titleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("5")).Bold(true)
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	selectedStyle = lipgloss.NewStyle().Bold(true)
	cursorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true)
	dangerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	countStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	sizeStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))

	barRed    = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	barYellow = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	barCyan   = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	barGreen  = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
)
