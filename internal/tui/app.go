// Package tui is the interactive schedule viewer.
package tui

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	apperrors "github.com/Tsess/jira-planning/internal/errors"
	"github.com/Tsess/jira-planning/internal/logging"
	"github.com/Tsess/jira-planning/internal/render"
	"github.com/Tsess/jira-planning/internal/watch"
)

// App wraps the Bubbletea program
type App struct {
	program    *tea.Program
	model      Model
	watchPaths []string
	logger     *logging.Logger
}

// New creates a viewer that calls load for every pass. When watchPaths is
// non-empty the viewer reloads whenever one of those files changes.
func New(load Loader, source string, filter *render.TeamFilter, watchPaths []string, logger *logging.Logger) *App {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &App{
		model:      NewModel(load, source, filter),
		watchPaths: watchPaths,
		logger:     logger,
	}
}

// Run starts the viewer and blocks until the user quits or ctx is done.
func (a *App) Run(ctx context.Context) error {
	a.program = tea.NewProgram(
		a.model,
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigChan)

	done := make(chan struct{})
	defer close(done)
	go relaySignals(sigChan, done, func() { a.program.Send(tea.Quit()) })

	if len(a.watchPaths) > 0 {
		w, err := watch.New(a.watchPaths, func(path string) {
			a.program.Send(ReloadMsg{Path: path})
		}, watch.WithLogger(a.logger))
		if err != nil {
			return err
		}
		w.Start()
		defer w.Stop()
	}

	_, err := a.program.Run()
	if apperrors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

// relaySignals calls quit on the first signal. It returns without calling
// quit once done is closed.
func relaySignals(sigs <-chan os.Signal, done <-chan struct{}, quit func()) {
	select {
	case <-sigs:
		quit()
	case <-done:
	}
}
