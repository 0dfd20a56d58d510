package ui

import (
	"github.com/charmbracelet/lipgloss"

	"question-index/internal/mb"
)

// collectionColumns fits as many buttons as the width allows, at least one.
func collectionColumns(width int) int {
	cell := collectionButtonWidth + 4 // border + padding
	if width <= 0 {
		return 4
	}
	return max(1, width/cell)
}

// renderCollectionButtons lays collections out as a grid of buttons.
// focused is the index of the highlighted button, -1 for none. Admins get
// an extra "New collection" button at the end.
func renderCollectionButtons(collections []mb.Collection, isAdmin bool, focused, width int) string {
	labels := make([]string, 0, len(collections)+1)
	for _, c := range collections {
		labels = append(labels, swatch(c.Color)+" "+truncateLabel(c.Name, collectionButtonWidth-4))
	}
	if isAdmin {
		labels = append(labels, "+ New collection")
	}

	cols := collectionColumns(width)
	rows := make([]string, 0, len(labels)/cols+1)
	for start := 0; start < len(labels); start += cols {
		end := min(start+cols, len(labels))
		cells := make([]string, 0, end-start)
		for i := start; i < end; i++ {
			style := collectionButtonStyle
			if i == focused {
				style = collectionButtonFocusStyle
			}
			cells = append(cells, style.Render(labels[i]))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func truncateLabel(s string, limit int) string {
	r := []rune(s)
	if limit <= 1 || len(r) <= limit {
		return s
	}
	return string(r[:limit-1]) + "…"
}
