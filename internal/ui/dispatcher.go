package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"question-index/internal/nav"
	"question-index/internal/store"
)

// Dispatcher is how pages request state changes and navigation. Async
// work comes back as commands so the event loop stays single-threaded.
type Dispatcher interface {
	Search(query string) tea.Cmd
	LoadCollections() tea.Cmd
	FetchEntities(entityType string, q store.EntityQuery) tea.Cmd
	Push(loc nav.Location) tea.Cmd
	Replace(loc nav.Location) tea.Cmd
}

// StateReader returns the current application state.
type StateReader func() store.State

// storeDispatcher backs Dispatcher with a store and a server client.
type storeDispatcher struct {
	store   *store.Store
	api     store.API
	timeout time.Duration
}

// NewDispatcher wires st and api into a Dispatcher.
func NewDispatcher(st *store.Store, api store.API) Dispatcher {
	return &storeDispatcher{store: st, api: api, timeout: defaultLoadTimeout}
}

func (d *storeDispatcher) Search(query string) tea.Cmd {
	d.store.Dispatch(store.Search(query))
	return nil
}

func (d *storeDispatcher) LoadCollections() tea.Cmd {
	d.store.Dispatch(store.CollectionsRequestedAction{})
	return runThunk(store.LoadCollections(d.api), d.timeout)
}

func (d *storeDispatcher) FetchEntities(entityType string, q store.EntityQuery) tea.Cmd {
	d.store.Dispatch(store.EntitiesRequestedAction{Query: q})
	return runThunk(store.FetchEntities(d.api, entityType, q), d.timeout)
}

func (d *storeDispatcher) Push(loc nav.Location) tea.Cmd    { return navigateCmd(loc, false) }
func (d *storeDispatcher) Replace(loc nav.Location) tea.Cmd { return navigateCmd(loc, true) }
