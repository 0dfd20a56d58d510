package ui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"question-index/internal/nav"
	"question-index/internal/store"
)

// ---------- Messages / Cmds ----------

// actionMsg carries the result of an async thunk back to the event loop.
type actionMsg struct {
	action store.Action
}

// navigateMsg asks the app shell to change location.
type navigateMsg struct {
	loc     nav.Location
	replace bool
}

// backMsg asks the app shell to go back one history entry.
type backMsg struct{}

// forwardMsg undoes a backMsg.
type forwardMsg struct{}

// defaultLoadTimeout bounds every server call started from the UI.
const defaultLoadTimeout = 20 * time.Second

// runThunk runs t off the event loop with a timeout.
func runThunk(t store.Thunk, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return actionMsg{action: t(ctx)}
	}
}

func navigateCmd(loc nav.Location, replace bool) tea.Cmd {
	return func() tea.Msg { return navigateMsg{loc: loc, replace: replace} }
}

func backCmd() tea.Msg { return backMsg{} }

func forwardCmd() tea.Msg { return forwardMsg{} }
