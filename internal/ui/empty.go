package ui

import "strings"

const collectionsDocsURL = "http://www.metabase.com/docs/latest/administration-guide/06-collections.html"

// renderCollectionEmptyState prompts admins to create their first collection.
func renderCollectionEmptyState() string {
	var b strings.Builder
	b.WriteString(focusStyle.Render("Create collections for your saved questions") + "\n")
	b.WriteString("Collections help you organize your questions and allow you to decide who gets to see what.\n")
	b.WriteString(subtleStyle.Render("Learn more: "+collectionsDocsURL) + "\n")
	b.WriteString(linkStyle.Render("[n] Create a collection"))
	return promptBoxStyle.Render(b.String())
}

// renderNoSavedQuestionsState is shown when there is nothing to list. It
// does not tell "not loaded yet" apart from "genuinely empty".
func renderNoSavedQuestionsState() string {
	art := strings.Join([]string{
		"   ▁▃▅▇  ",
		"  ╭─────╮",
		"  │ ? ? │",
		"  ╰─────╯",
	}, "\n")
	var b strings.Builder
	b.WriteString(subtleStyle.Render(art) + "\n\n")
	b.WriteString("Explore your data, create charts or maps, and save what you find.\n\n")
	b.WriteString(linkStyle.Render("[enter] Ask a question"))
	return emptyBoxStyle.Render(b.String())
}
