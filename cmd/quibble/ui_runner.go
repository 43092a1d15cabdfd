package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"quibble/internal/driver"
	"quibble/internal/ui"
)

type lintOutcome struct {
	result *driver.Result
	err    error
}

// runLintWithUI lints paths in the background while a progress view
// consumes the driver's events.
func runLintWithUI(ctx context.Context, title string, paths []string, opts driver.Options) (*driver.Result, error) {
	events := make(chan driver.Event, 256)
	outcomeCh := make(chan lintOutcome, 1)

	go func() {
		opts.Progress = driver.ChannelSink{Ch: events}
		res, err := driver.LintFiles(ctx, opts, paths)
		outcomeCh <- lintOutcome{result: res, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, paths, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout), tea.WithContext(ctx))
	_, uiErr := program.Run()
	// UI мог выйти раньше (ctrl-c): дочитываем события, чтобы воркеры не встали.
	go func() {
		for range events {
		}
	}()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.result, uiErr
	}
	return outcome.result, outcome.err
}
