// Command analyze explores a virtual filesystem tree built from the paths
// given on the command line.
package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tw93/mole-vfs/internal/config"
	"github.com/tw93/mole-vfs/internal/logging"
)

func main() {
	cfg := config.Load()

	if err := logging.Init(logging.Config{
		Level:      cfg.LogLevel,
		Format:     cfg.LogFormat,
		OutputPath: cfg.LogFile,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "logging setup failed: %v\n", err)
		os.Exit(1)
	}
	defer logging.Sync()

	targets := resolveTargets(os.Args[1:], cfg.Paths)
	logging.Info("analyzer starting",
		logging.Int("paths", len(targets)),
		logging.Int("workers", cfg.SizeWorkers))

	p := tea.NewProgram(newModel(targets, cfg.Exclude, cfg.SizeWorkers), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		logging.Error("analyzer stopped", logging.Err(err))
		fmt.Fprintf(os.Stderr, "analyzer error: %v\n", err)
		os.Exit(1)
	}
}

// resolveTargets prefers command line arguments, then configured paths,
// then the working directory.
func resolveTargets(args, configured []string) []string {
	if len(args) > 0 {
		return args
	}
	if len(configured) > 0 {
		return configured
	}
	if wd, err := os.Getwd(); err == nil {
		return []string{wd}
	}
	return nil
}
