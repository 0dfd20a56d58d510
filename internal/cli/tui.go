package cli

import (
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"question-index/internal/infra/logx"
	"question-index/internal/nav"
	"question-index/internal/store"
	"question-index/internal/ui"
)

// errNoSession is returned when no session token is configured.
var errNoSession = errors.New("no session token: run `qindex login` or set MB_SESSION")

func runTUI(cmd *cobra.Command, o *options) error {
	cfg, err := loadConfig(cmd, o)
	if err != nil {
		return err
	}
	// stderr belongs to the alt screen; logs only go to a file in debug mode
	closer, err := setupLogging(o, cfg, nil)
	if err != nil {
		return err
	}
	defer closer.Close()

	if cfg.Session == "" {
		return errNoSession
	}
	client := newClient(cfg, o)

	st := store.New(store.State{})
	unsubscribe := st.Subscribe(func(s store.State) {
		logx.Debugw("state changed",
			"collections", len(s.Collections),
			"lists", len(s.Entities),
			"search", s.SearchText)
	})
	defer unsubscribe()

	app := ui.NewApp(st, client, ui.AppOptions{Host: cfg.Host, Start: nav.Parse(o.start)})
	logx.Infow("starting tui", "host", cfg.Host, "start", o.start)
	_, err = tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()

	if m := client.Metrics(); m != nil {
		s := m.Snapshot()
		logx.Infow("http summary",
			"requests", s.TotalRequests,
			"retries", s.TotalRetries,
			"backoff", s.TotalBackoff.String(),
			"status_429", s.Status429,
			"status_5xx", s.Status5xx)
	}
	return err
}
