package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"question-index/internal/infra/logx"
	"question-index/internal/nav"
	"question-index/internal/store"
)

// AppOptions configures NewApp.
type AppOptions struct {
	// Host is the server base URL, used for "open in a browser" hints.
	Host string
	// Start is the initial location; empty means /questions.
	Start nav.Location
}

// App is the top-level bubbletea model: it owns the store, the navigation
// history and the page for the current location.
type App struct {
	store    *store.Store
	api      store.API
	history  *nav.History
	dispatch Dispatcher
	host     string

	page  page
	route string
	size  tea.WindowSizeMsg
}

func NewApp(st *store.Store, api store.API, opts AppOptions) App {
	start := opts.Start
	if start.Path == "" {
		start = nav.Location{Path: "/questions"}
	}
	a := App{
		store:    st,
		api:      api,
		history:  nav.NewHistory(start),
		dispatch: NewDispatcher(st, api),
		host:     opts.Host,
	}
	a.page = newPage(a.deps(), a.host, start)
	a.route = routeKey(start)
	return a
}

func (a App) deps() IndexDeps {
	return IndexDeps{State: a.store.GetState, Dispatch: a.dispatch}
}

// Location returns the current history entry.
func (a App) Location() nav.Location { return a.history.Current() }

func (a App) Init() tea.Cmd {
	return tea.Batch(runThunk(store.LoadCurrentUser(a.api), defaultLoadTimeout), a.page.Init())
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case actionMsg:
		a.store.Dispatch(msg.action)
		return a, nil
	case navigateMsg:
		if msg.replace {
			a.history.Replace(msg.loc)
		} else {
			a.history.Push(msg.loc)
		}
		logx.Debugw("navigate", "to", msg.loc.String(), "replace", msg.replace)
		return a.syncPage()
	case backMsg:
		if !a.history.Back() {
			return a, nil
		}
		return a.syncPage()
	case forwardMsg:
		if !a.history.Forward() {
			return a, nil
		}
		return a.syncPage()
	case tea.WindowSizeMsg:
		a.size = msg
	case tea.KeyMsg:
		if cmd, handled := a.handleGlobalKey(msg); handled {
			return a, cmd
		}
	}
	var cmd tea.Cmd
	a.page, cmd = a.page.Update(msg)
	return a, cmd
}

func (a App) handleGlobalKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	if msg.String() == "ctrl+c" {
		return tea.Quit, true
	}
	if a.page.Capturing() {
		return nil, false
	}
	switch msg.String() {
	case "q":
		return tea.Quit, true
	case "esc", "backspace":
		if a.history.Len() > 1 {
			return backCmd, true
		}
	case "ctrl+f":
		return forwardCmd, true
	}
	return nil, false
}

// syncPage makes the page match the current history entry. A location on
// the same route updates the page in place; anything else mounts a new one.
func (a App) syncPage() (tea.Model, tea.Cmd) {
	loc := a.history.Current()
	key := routeKey(loc)
	if key == a.route {
		var cmd tea.Cmd
		a.page, cmd = a.page.SetLocation(loc)
		return a, cmd
	}
	a.route = key
	a.page = newPage(a.deps(), a.host, loc)
	cmds := []tea.Cmd{a.page.Init()}
	if a.size.Width > 0 {
		var cmd tea.Cmd
		a.page, cmd = a.page.Update(a.size)
		cmds = append(cmds, cmd)
	}
	return a, tea.Batch(cmds...)
}

func (a App) View() string {
	return a.page.View()
}
