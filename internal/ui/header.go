package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const (
	setPermissionsLabel = "🔒 Set permissions for collections"
	viewArchiveLabel    = "🗄 View the archive"
)

// headerProps is everything the header renders from; it holds no state.
type headerProps struct {
	view   ViewState
	search string // rendered search field
	width  int
}

// renderHeader draws the title and search field (when there is anything to
// list) and the permissions / archive links.
func renderHeader(p headerProps) string {
	var left string
	if p.view.ShowTitleAndSearch {
		left = titleStyle.Render(p.view.Title())
	}

	right := make([]string, 0, 3)
	if p.view.ShowTitleAndSearch {
		right = append(right, p.search)
	}
	if p.view.ShowSetPermissionsLink {
		right = append(right, linkStyle.Render("[p] "+setPermissionsLabel))
	}
	right = append(right, linkStyle.Render("[a] "+viewArchiveLabel))
	actions := strings.Join(right, "  ")

	gap := p.width - lipgloss.Width(left) - lipgloss.Width(actions)
	if gap < 2 {
		if left == "" {
			return actions
		}
		return left + "\n" + actions
	}
	return left + strings.Repeat(" ", gap) + actions
}
