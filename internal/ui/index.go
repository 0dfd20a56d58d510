package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"question-index/internal/mb"
	"question-index/internal/nav"
	"question-index/internal/store"
)

type indexFocus int

const (
	focusList indexFocus = iota
	focusGrid
)

// IndexDeps is what the question index reads from and writes to.
type IndexDeps struct {
	State    StateReader
	Dispatch Dispatcher
	Location nav.Location
}

// QuestionIndex is the root page at /questions: collections first, then
// the questions that are in no collection.
type QuestionIndex struct {
	deps    IndexDeps
	list    EntityList
	search  textinput.Model
	spin    spinner.Model
	focus   indexFocus
	gridPos int
	width   int
}

func NewQuestionIndex(d IndexDeps) QuestionIndex {
	ti := textinput.New()
	ti.Placeholder = "Search for a question"
	ti.Prompt = "🔍 "
	ti.CharLimit = 200
	ti.Width = 30
	ti.SetValue(d.State().SearchText)

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	q := QuestionIndex{deps: d, search: ti, spin: sp}
	q.list = NewEntityList(EntityListProps{
		EntityType:      store.EntityTypeCards,
		Query:           q.entityQuery(),
		OnChangeSection: q.changeSection,
		State:           d.State,
		Dispatch:        d.Dispatch,
	})
	return q
}

// entityQuery is the default query overlaid with the location's parameters.
func (q QuestionIndex) entityQuery() store.EntityQuery {
	return store.MergeQuery(store.DefaultEntityQuery(), q.deps.Location.Query)
}

// changeSection keeps the rest of the query and replaces the history entry.
func (q QuestionIndex) changeSection(section string) tea.Cmd {
	return q.deps.Dispatch.Replace(q.deps.Location.WithQuery("f", section))
}

// Init loads collections; the list mounts and fetches its own entities.
func (q QuestionIndex) Init() tea.Cmd {
	return tea.Batch(q.spin.Tick, q.deps.Dispatch.LoadCollections(), q.list.Init())
}

// SetLocation updates the location after a navigation within /questions.
func (q QuestionIndex) SetLocation(loc nav.Location) (QuestionIndex, tea.Cmd) {
	q.deps.Location = loc
	var cmd tea.Cmd
	q.list.props.OnChangeSection = q.changeSection
	q.list, cmd = q.list.SetQuery(q.entityQuery())
	return q, cmd
}

// Capturing reports whether keystrokes go to the search field.
func (q QuestionIndex) Capturing() bool { return q.search.Focused() }

func (q QuestionIndex) viewState() ViewState {
	st := q.deps.State()
	return DeriveViewState(
		len(store.GetAllEntities(st, q.entityQuery())),
		len(store.GetAllCollections(st)),
		store.GetUserIsAdmin(st),
	)
}

// gridLen counts the grid cells including the admin "New collection" cell.
func (q QuestionIndex) gridLen(st store.State) int {
	n := len(store.GetAllCollections(st))
	if store.GetUserIsAdmin(st) {
		n++
	}
	return n
}

func (q QuestionIndex) Update(msg tea.Msg) (QuestionIndex, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		q.width = msg.Width
		return q, nil
	case spinner.TickMsg:
		if !q.deps.State().CollectionsLoading {
			return q, nil
		}
		var cmd tea.Cmd
		q.spin, cmd = q.spin.Update(msg)
		return q, cmd
	case tea.KeyMsg:
		if q.search.Focused() {
			return q.handleSearchKey(msg)
		}
		return q.handleIndexKey(msg)
	}
	return q, nil
}

func (q QuestionIndex) handleSearchKey(msg tea.KeyMsg) (QuestionIndex, tea.Cmd) {
	switch msg.String() {
	case "esc", "enter":
		q.search.Blur()
		return q, nil
	}
	before := q.search.Value()
	var cmd tea.Cmd
	q.search, cmd = q.search.Update(msg)
	if v := q.search.Value(); v != before {
		cmd = tea.Batch(cmd, q.deps.Dispatch.Search(v))
	}
	return q, cmd
}

func (q QuestionIndex) handleIndexKey(msg tea.KeyMsg) (QuestionIndex, tea.Cmd) {
	st := q.deps.State()
	vs := q.viewState()

	switch msg.String() {
	case "/":
		if vs.ShowTitleAndSearch {
			return q, q.search.Focus()
		}
		return q, nil
	case "p":
		if vs.ShowSetPermissionsLink {
			return q, q.deps.Dispatch.Push(nav.Location{Path: "/collections/permissions"})
		}
		return q, nil
	case "a":
		return q, q.deps.Dispatch.Push(nav.Location{Path: "/questions/archive"})
	case "n":
		if vs.IsAdmin {
			return q, q.deps.Dispatch.Push(nav.Location{Path: "/collections/create"})
		}
		return q, nil
	case "r":
		return q, tea.Batch(q.spin.Tick, q.deps.Dispatch.LoadCollections(), q.list.Init())
	case "s":
		return q, q.list.changeSection(+1)
	case "S":
		return q, q.list.changeSection(-1)
	case "tab":
		q = q.toggleFocus(vs)
		return q, nil
	}

	if vs.ShowNoSavedQuestionsState && msg.String() == "enter" {
		return q, q.deps.Dispatch.Push(nav.Location{Path: "/question"})
	}

	if q.gridActive(vs) {
		return q.handleGridKey(msg, st)
	}
	var cmd tea.Cmd
	q.list, cmd = q.list.Update(msg)
	return q, cmd
}

// gridActive reports whether keys go to the collection grid. The grid takes
// over when there is no list to focus.
func (q QuestionIndex) gridActive(vs ViewState) bool {
	return vs.HasCollections && (q.focus == focusGrid || !vs.HasQuestionsWithoutCollection)
}

func (q QuestionIndex) toggleFocus(vs ViewState) QuestionIndex {
	switch {
	case q.focus == focusGrid && vs.HasQuestionsWithoutCollection:
		q.focus = focusList
	case q.focus == focusList && vs.HasCollections:
		q.focus = focusGrid
	}
	q.list = q.list.SetFocused(q.focus == focusList)
	return q
}

func (q QuestionIndex) handleGridKey(msg tea.KeyMsg, st store.State) (QuestionIndex, tea.Cmd) {
	n := q.gridLen(st)
	cols := collectionColumns(q.width)
	switch msg.String() {
	case "l", "right":
		if q.gridPos < n-1 {
			q.gridPos++
		}
	case "h", "left":
		if q.gridPos > 0 {
			q.gridPos--
		}
	case "j", "down":
		if q.gridPos+cols < n {
			q.gridPos += cols
		}
	case "k", "up":
		if q.gridPos-cols >= 0 {
			q.gridPos -= cols
		}
	case "enter":
		return q, q.openGridCell(st)
	}
	return q, nil
}

func (q QuestionIndex) openGridCell(st store.State) tea.Cmd {
	cols := store.GetAllCollections(st)
	if q.gridPos < len(cols) {
		return q.deps.Dispatch.Push(nav.Location{Path: "/questions/collections/" + collectionSlug(cols[q.gridPos])})
	}
	if store.GetUserIsAdmin(st) {
		return q.deps.Dispatch.Push(nav.Location{Path: "/collections/create"})
	}
	return nil
}

func collectionSlug(c mb.Collection) string {
	if c.Slug != "" {
		return c.Slug
	}
	return strings.ToLower(strings.ReplaceAll(c.Name, " ", "_"))
}

func (q QuestionIndex) View() string {
	st := q.deps.State()
	vs := q.viewState()

	var b strings.Builder
	if vs.ShowNoCollectionsState {
		b.WriteString(renderCollectionEmptyState() + "\n")
	}
	b.WriteString(renderHeader(headerProps{view: vs, search: q.search.View(), width: q.width}) + "\n")

	if st.CollectionsLoading && !st.CollectionsLoaded {
		b.WriteString(q.spin.View() + " " + subtleStyle.Render("Loading collections…") + "\n")
	}

	if vs.HasCollections {
		focused := -1
		if q.gridActive(vs) {
			focused = min(q.gridPos, q.gridLen(st)-1)
		}
		b.WriteString("\n" + renderCollectionButtons(store.GetAllCollections(st), vs.IsAdmin, focused, q.width) + "\n")
	}
	if vs.ShowNoSavedQuestionsState {
		b.WriteString(renderNoSavedQuestionsState() + "\n")
	}
	if vs.ShowEverythingElseTitle {
		b.WriteString(sectionStyle.Render("Everything Else") + "\n")
		b.WriteString(divider(q.width) + "\n")
	}
	if vs.HasQuestionsWithoutCollection {
		b.WriteString(q.list.View() + "\n")
	}

	status := ""
	if st.LastError != nil {
		status = errorStyle.Render("Error: " + st.LastError.Error())
	}
	help := "/: search • s/S: section • tab: switch focus • enter: open • r: reload • q: quit"
	if q.search.Focused() {
		help = "type to filter • enter/esc: done"
	}
	b.WriteString("\n" + renderFooter(status, help))
	return b.String()
}
