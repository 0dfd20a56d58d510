package ui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"question-index/internal/mb"
	"question-index/internal/nav"
	"question-index/internal/store"
)

type dispatchCall struct {
	kind  string
	loc   nav.Location
	query store.EntityQuery
	text  string
}

// fakeDispatcher records every call. Navigation returns the real commands
// so results can be fed back into the app.
type fakeDispatcher struct {
	calls []dispatchCall
}

func (f *fakeDispatcher) Search(q string) tea.Cmd {
	f.calls = append(f.calls, dispatchCall{kind: "search", text: q})
	return nil
}

func (f *fakeDispatcher) LoadCollections() tea.Cmd {
	f.calls = append(f.calls, dispatchCall{kind: "loadCollections"})
	return func() tea.Msg { return nil }
}

func (f *fakeDispatcher) FetchEntities(entityType string, q store.EntityQuery) tea.Cmd {
	f.calls = append(f.calls, dispatchCall{kind: "fetch:" + entityType, query: q})
	return func() tea.Msg { return nil }
}

func (f *fakeDispatcher) Push(loc nav.Location) tea.Cmd {
	f.calls = append(f.calls, dispatchCall{kind: "push", loc: loc})
	return navigateCmd(loc, false)
}

func (f *fakeDispatcher) Replace(loc nav.Location) tea.Cmd {
	f.calls = append(f.calls, dispatchCall{kind: "replace", loc: loc})
	return navigateCmd(loc, true)
}

func (f *fakeDispatcher) count(kind string) int {
	n := 0
	for _, c := range f.calls {
		if c.kind == kind {
			n++
		}
	}
	return n
}

func (f *fakeDispatcher) last(kind string) (dispatchCall, bool) {
	for i := len(f.calls) - 1; i >= 0; i-- {
		if f.calls[i].kind == kind {
			return f.calls[i], true
		}
	}
	return dispatchCall{}, false
}

func stateOf(st *store.State) StateReader {
	return func() store.State { return *st }
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	case "ctrl+f":
		return tea.KeyMsg{Type: tea.KeyCtrlF}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func collections(names ...string) []mb.Collection {
	out := make([]mb.Collection, len(names))
	for i, n := range names {
		out[i] = mb.Collection{ID: i + 1, Name: n, Slug: slugOf(n)}
	}
	return out
}

func slugOf(name string) string {
	return collectionSlug(mb.Collection{Name: name})
}

func cards(names ...string) []mb.Card {
	out := make([]mb.Card, len(names))
	for i, n := range names {
		out[i] = mb.Card{ID: i + 1, Name: n, Display: "table"}
	}
	return out
}

// withEntities stores list under the key of q.
func withEntities(st store.State, q store.EntityQuery, list []mb.Card) store.State {
	if st.Entities == nil {
		st.Entities = map[string][]mb.Card{}
	}
	st.Entities[q.Key()] = list
	return st
}

func admin() *mb.User    { return &mb.User{ID: 1, IsSuperuser: true} }
func nonAdmin() *mb.User { return &mb.User{ID: 2} }

type fakeAPI struct{}

func (fakeAPI) ListCollections(context.Context) ([]mb.Collection, error) { return nil, nil }
func (fakeAPI) ListCards(context.Context, mb.CardQuery) ([]mb.Card, error) {
	return nil, nil
}
func (fakeAPI) CurrentUser(context.Context) (mb.User, error) { return mb.User{}, nil }

func typeName(v any) string { return fmt.Sprintf("%T", v) }

func contains(s, sub string) bool { return strings.Contains(s, sub) }
