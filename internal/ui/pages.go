package ui

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"question-index/internal/mb"
	"question-index/internal/nav"
	"question-index/internal/store"
)

// page is one routed screen of the app.
type page interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (page, tea.Cmd)
	View() string
	// SetLocation handles a navigation that stays on the same route.
	SetLocation(loc nav.Location) (page, tea.Cmd)
	// Capturing reports whether the page is consuming raw keystrokes.
	Capturing() bool
}

// ---------- /questions ----------

type indexPage struct{ QuestionIndex }

func (p indexPage) Update(msg tea.Msg) (page, tea.Cmd) {
	var cmd tea.Cmd
	p.QuestionIndex, cmd = p.QuestionIndex.Update(msg)
	return p, cmd
}

func (p indexPage) SetLocation(loc nav.Location) (page, tea.Cmd) {
	var cmd tea.Cmd
	p.QuestionIndex, cmd = p.QuestionIndex.SetLocation(loc)
	return p, cmd
}

// ---------- /questions/collections/<slug> and /questions/archive ----------

// listPage shows a single EntityList under a title. pinned entries are
// forced into the query regardless of the location.
type listPage struct {
	deps   IndexDeps
	pinned map[string]string
	title  func(store.State) string
	list   EntityList
	width  int
}

func newListPage(d IndexDeps, pinned map[string]string, title func(store.State) string) listPage {
	p := listPage{deps: d, pinned: pinned, title: title}
	p.list = NewEntityList(EntityListProps{
		EntityType:      store.EntityTypeCards,
		Query:           p.query(),
		OnChangeSection: p.changeSection,
		State:           d.State,
		Dispatch:        d.Dispatch,
	})
	return p
}

func newCollectionPage(d IndexDeps, slug string) listPage {
	return newListPage(d, map[string]string{"collection": slug}, func(st store.State) string {
		for _, c := range store.GetAllCollections(st) {
			if collectionSlug(c) == slug {
				return c.Name
			}
		}
		return slug
	})
}

func newArchivePage(d IndexDeps) listPage {
	return newListPage(d, map[string]string{"f": "archived", "collection": ""}, func(store.State) string {
		return "Archive"
	})
}

func (p listPage) query() store.EntityQuery {
	q := store.MergeQuery(store.DefaultEntityQuery(), p.deps.Location.Query)
	return store.MergeQuery(q, p.pinned)
}

func (p listPage) changeSection(section string) tea.Cmd {
	return p.deps.Dispatch.Replace(p.deps.Location.WithQuery("f", section))
}

func (p listPage) Init() tea.Cmd {
	cmds := []tea.Cmd{p.list.Init()}
	if !p.deps.State().CollectionsLoaded {
		cmds = append(cmds, p.deps.Dispatch.LoadCollections())
	}
	return tea.Batch(cmds...)
}

func (p listPage) Update(msg tea.Msg) (page, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		p.width = msg.Width
	case tea.KeyMsg:
		var cmd tea.Cmd
		p.list, cmd = p.list.Update(msg)
		return p, cmd
	}
	return p, nil
}

func (p listPage) SetLocation(loc nav.Location) (page, tea.Cmd) {
	p.deps.Location = loc
	p.list.props.OnChangeSection = p.changeSection
	var cmd tea.Cmd
	p.list, cmd = p.list.SetQuery(p.query())
	return p, cmd
}

func (p listPage) Capturing() bool { return false }

func (p listPage) View() string {
	st := p.deps.State()
	var b strings.Builder
	b.WriteString(titleStyle.Render(p.title(st)) + "\n")
	b.WriteString(divider(p.width) + "\n\n")
	b.WriteString(p.list.View() + "\n")
	status := ""
	if st.LastError != nil {
		status = errorStyle.Render("Error: " + st.LastError.Error())
	}
	b.WriteString("\n" + renderFooter(status, "j/k: move • s/S: section • enter: open • esc: back • ctrl+f: forward • q: quit"))
	return b.String()
}

// ---------- static pages ----------

// infoPage renders text computed from state. It fetches nothing.
type infoPage struct {
	state  StateReader
	loc    nav.Location
	host   string
	render func(st store.State, loc nav.Location, host string) string
}

func (p infoPage) Init() tea.Cmd                  { return nil }
func (p infoPage) Update(tea.Msg) (page, tea.Cmd) { return p, nil }
func (p infoPage) Capturing() bool                { return false }

func (p infoPage) SetLocation(loc nav.Location) (page, tea.Cmd) {
	p.loc = loc
	return p, nil
}

func (p infoPage) View() string {
	return p.render(p.state(), p.loc, p.host) + "\n\n" + renderFooter("", "esc: back • ctrl+f: forward • q: quit")
}

func openHint(host string, loc nav.Location) string {
	if host == "" {
		return ""
	}
	return "\n" + subtleStyle.Render("Open in a browser: ") + linkStyle.Render(strings.TrimSuffix(host, "/")+loc.String())
}

func renderPermissionsPage(st store.State, loc nav.Location, host string) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(setPermissionsLabel) + "\n\n")
	if !store.GetUserIsAdmin(st) {
		b.WriteString(warnStyle.Render("Only administrators can change collection permissions.") + "\n")
	}
	for _, c := range store.GetAllCollections(st) {
		b.WriteString("  " + swatch(c.Color) + " " + c.Name + "\n")
	}
	b.WriteString(openHint(host, loc))
	return strings.TrimSuffix(b.String(), "\n")
}

func renderCreateCollectionPage(_ store.State, loc nav.Location, host string) string {
	return titleStyle.Render("New collection") + "\n\n" +
		"Collections are created in the web app." + openHint(host, loc)
}

func renderNewQuestionPage(_ store.State, loc nav.Location, host string) string {
	return titleStyle.Render("Ask a question") + "\n\n" +
		"Questions are built in the web app." + openHint(host, loc)
}

// findCard looks for id among every list fetched so far.
func findCard(st store.State, id int) (mb.Card, bool) {
	for _, cards := range st.Entities {
		for _, c := range cards {
			if c.ID == id {
				return c, true
			}
		}
	}
	return mb.Card{}, false
}

func renderQuestionPage(st store.State, loc nav.Location, host string) string {
	seg := loc.Segments()
	id, err := strconv.Atoi(seg[len(seg)-1])
	if err != nil {
		return errorStyle.Render(fmt.Sprintf("Unknown question %q", seg[len(seg)-1]))
	}
	c, ok := findCard(st, id)
	if !ok {
		return titleStyle.Render(fmt.Sprintf("Question #%d", id)) + openHint(host, loc)
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render(c.Name) + "\n\n")
	if c.Description != "" {
		b.WriteString(c.Description + "\n\n")
	}
	if c.Display != "" {
		b.WriteString(subtleStyle.Render("Display: ") + c.Display + "\n")
	}
	if c.Collection != nil {
		b.WriteString(subtleStyle.Render("Collection: ") + c.Collection.Name + "\n")
	}
	if c.UpdatedAt != "" {
		b.WriteString(subtleStyle.Render("Updated: ") + c.UpdatedAt + "\n")
	}
	if c.Favorite {
		b.WriteString(warnStyle.Render("★ Favorite") + "\n")
	}
	b.WriteString(openHint(host, loc))
	return strings.TrimSuffix(b.String(), "\n")
}

// routeKey identifies which page serves loc. Locations with the same key
// share a page instance.
func routeKey(loc nav.Location) string {
	seg := loc.Segments()
	switch {
	case len(seg) == 0, len(seg) == 1 && seg[0] == "questions":
		return "/questions"
	default:
		return loc.Path
	}
}

// newPage builds the page for loc. Unknown paths fall back to the index.
func newPage(d IndexDeps, host string, loc nav.Location) page {
	d.Location = loc
	seg := loc.Segments()
	info := func(r func(store.State, nav.Location, string) string) page {
		return infoPage{state: d.State, loc: loc, host: host, render: r}
	}
	switch {
	case len(seg) == 3 && seg[0] == "questions" && seg[1] == "collections":
		return newCollectionPage(d, seg[2])
	case len(seg) == 2 && seg[0] == "questions" && seg[1] == "archive":
		return newArchivePage(d)
	case len(seg) == 2 && seg[0] == "collections" && seg[1] == "permissions":
		return info(renderPermissionsPage)
	case len(seg) == 2 && seg[0] == "collections" && seg[1] == "create":
		return info(renderCreateCollectionPage)
	case len(seg) == 1 && seg[0] == "question":
		return info(renderNewQuestionPage)
	case len(seg) == 2 && seg[0] == "question":
		return info(renderQuestionPage)
	}
	return indexPage{NewQuestionIndex(d)}
}
