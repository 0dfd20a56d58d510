package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/paginator"
	tea "github.com/charmbracelet/bubbletea"

	"question-index/internal/mb"
	"question-index/internal/nav"
	"question-index/internal/store"
)

// Section is one value of the "f" filter shown as a tab.
type Section struct {
	ID    string
	Label string
}

// Sections lists the tabs in display order. "archived" is reached through
// the archive page and has no tab.
var Sections = []Section{
	{ID: "all", Label: "All questions"},
	{ID: "fav", Label: "Favorites"},
	{ID: "recent", Label: "Recently viewed"},
	{ID: "mine", Label: "Saved by me"},
	{ID: "popular", Label: "Most popular"},
}

func sectionIndex(id string) int {
	for i, s := range Sections {
		if s.ID == id {
			return i
		}
	}
	return -1
}

// EntityListProps configures an EntityList.
type EntityListProps struct {
	EntityType      string
	Query           store.EntityQuery
	OnChangeSection func(section string) tea.Cmd
	State           StateReader
	Dispatch        Dispatcher
	// PerPage defaults to 10.
	PerPage int
}

// EntityList lists the entities matching its query. It fetches its own
// data and filters rows by the store's search text.
type EntityList struct {
	props   EntityListProps
	cursor  int // index within the filtered rows
	pager   paginator.Model
	filter  FilterConfig
	focused bool
}

func NewEntityList(p EntityListProps) EntityList {
	if p.EntityType == "" {
		p.EntityType = store.EntityTypeCards
	}
	if p.Query == nil {
		p.Query = store.DefaultEntityQuery()
	}
	if p.PerPage <= 0 {
		p.PerPage = 10
	}
	pg := paginator.New()
	pg.Type = paginator.Arabic
	pg.PerPage = p.PerPage
	return EntityList{props: p, pager: pg, filter: defaultFilterConfig, focused: true}
}

// Init starts the fetch for the current query.
func (l EntityList) Init() tea.Cmd {
	return l.props.Dispatch.FetchEntities(l.props.EntityType, l.props.Query)
}

// SetQuery switches to q and refetches when it differs from the current one.
func (l EntityList) SetQuery(q store.EntityQuery) (EntityList, tea.Cmd) {
	if q.Key() == l.props.Query.Key() {
		return l, nil
	}
	l.props.Query = q
	l.cursor = 0
	l.pager.Page = 0
	return l, l.Init()
}

func (l EntityList) SetFocused(f bool) EntityList {
	l.focused = f
	return l
}

// rows returns the entities for the query after the search filter.
func (l EntityList) rows() []mb.Card {
	st := l.props.State()
	all := store.GetAllEntities(st, l.props.Query)
	idx := filterCards(all, st.SearchText, l.filter)
	out := make([]mb.Card, len(idx))
	for i, j := range idx {
		out[i] = all[j]
	}
	return out
}

// Selected returns the card under the cursor.
func (l EntityList) Selected() (mb.Card, bool) {
	rows := l.rows()
	if l.cursor < 0 || l.cursor >= len(rows) {
		return mb.Card{}, false
	}
	return rows[l.cursor], true
}

func (l EntityList) showSections() bool {
	return sectionIndex(l.props.Query.Section()) >= 0
}

func (l EntityList) changeSection(delta int) tea.Cmd {
	if !l.showSections() || l.props.OnChangeSection == nil {
		return nil
	}
	i := sectionIndex(l.props.Query.Section())
	next := (i + delta + len(Sections)) % len(Sections)
	return l.props.OnChangeSection(Sections[next].ID)
}

func (l EntityList) Update(msg tea.KeyMsg) (EntityList, tea.Cmd) {
	rows := l.rows()
	l.pager.SetTotalPages(len(rows))
	l.cursor = clampCursor(l.cursor, len(rows))

	switch msg.String() {
	case "s":
		return l, l.changeSection(+1)
	case "S":
		return l, l.changeSection(-1)
	case "j", "down":
		if l.cursor < len(rows)-1 {
			l.cursor++
		}
	case "k", "up":
		if l.cursor > 0 {
			l.cursor--
		}
	case "]", "pgdown":
		if !l.pager.OnLastPage() {
			l.pager.NextPage()
			l.cursor = l.pager.Page * l.pager.PerPage
		}
	case "[", "pgup":
		if l.pager.Page > 0 {
			l.pager.PrevPage()
			l.cursor = l.pager.Page * l.pager.PerPage
		}
	case "enter":
		if c, ok := l.Selected(); ok {
			return l, l.props.Dispatch.Push(nav.Location{Path: "/question/" + strconv.Itoa(c.ID)})
		}
		return l, nil
	}
	if l.pager.PerPage > 0 {
		l.pager.Page = l.cursor / l.pager.PerPage
	}
	return l, nil
}

func clampCursor(cur, n int) int {
	if n == 0 {
		return 0
	}
	return min(max(cur, 0), n-1)
}

func (l EntityList) View() string {
	var b strings.Builder
	if l.showSections() {
		active := sectionIndex(l.props.Query.Section())
		tabs := make([]string, len(Sections))
		for i, s := range Sections {
			if i == active {
				tabs[i] = activeTabStyle.Render(s.Label)
			} else {
				tabs[i] = tabStyle.Render(s.Label)
			}
		}
		b.WriteString(strings.Join(tabs, " ") + "\n\n")
	}

	st := l.props.State()
	rows := l.rows()
	loading := store.IsLoadingEntities(st, l.props.Query)
	switch {
	case len(rows) == 0 && loading:
		b.WriteString(subtleStyle.Render("Loading questions…") + "\n")
	case len(rows) == 0 && st.SearchText != "":
		b.WriteString(subtleStyle.Render(fmt.Sprintf("No questions match %q.", st.SearchText)) + "\n")
	case len(rows) == 0:
		b.WriteString(subtleStyle.Render("No questions here yet.") + "\n")
	default:
		pg := l.pager
		pg.SetTotalPages(len(rows))
		cursor := clampCursor(l.cursor, len(rows))
		if pg.PerPage > 0 {
			pg.Page = cursor / pg.PerPage
		}
		start, end := pg.GetSliceBounds(len(rows))
		for i := start; i < end; i++ {
			line := renderCardLine(rows[i])
			if l.focused && i == cursor {
				line = cursorStyle.Render("▶ " + line)
			} else {
				line = "  " + line
			}
			b.WriteString(line + "\n")
		}
		if pg.TotalPages > 1 {
			b.WriteString("\n" + subtleStyle.Render("Page "+pg.View()) + "\n")
		}
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func renderCardLine(c mb.Card) string {
	name := c.Name
	if name == "" {
		name = fmt.Sprintf("Question #%d", c.ID)
	}
	parts := []string{name}
	if c.Favorite {
		parts = append(parts, warnStyle.Render("★"))
	}
	if c.Display != "" {
		parts = append(parts, subtleStyle.Render("("+c.Display+")"))
	}
	return strings.Join(parts, " ")
}
