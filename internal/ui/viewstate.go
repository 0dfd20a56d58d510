package ui

// ViewKind classifies the index page by what data is present.
type ViewKind int

const (
	// ViewEmpty: no collections, no uncollected questions, non-admin viewer.
	ViewEmpty ViewKind = iota
	// ViewEmptyNoCollections: nothing at all, admin viewer (gets the create prompt).
	ViewEmptyNoCollections
	ViewCollectionsOnly
	ViewQuestionsOnly
	ViewMixed
)

func (k ViewKind) String() string {
	switch k {
	case ViewEmpty:
		return "empty"
	case ViewEmptyNoCollections:
		return "empty-no-collections"
	case ViewCollectionsOnly:
		return "collections-only"
	case ViewQuestionsOnly:
		return "questions-only"
	case ViewMixed:
		return "mixed"
	default:
		return "unknown"
	}
}

// ViewState is derived on every render and never stored on a model.
type ViewState struct {
	Kind    ViewKind
	IsAdmin bool

	HasCollections                bool
	HasQuestionsWithoutCollection bool
	ShowTitleAndSearch            bool
	ShowSetPermissionsLink        bool
	ShowNoCollectionsState        bool
	ShowNoSavedQuestionsState     bool
	ShowEverythingElseTitle       bool
}

// classify picks the view kind from presence of data and the admin flag.
func classify(questionCount, collectionCount int, isAdmin bool) ViewKind {
	hasCollections := collectionCount > 0
	hasQuestions := questionCount > 0
	switch {
	case hasCollections && hasQuestions:
		return ViewMixed
	case hasCollections:
		return ViewCollectionsOnly
	case hasQuestions:
		return ViewQuestionsOnly
	case isAdmin:
		return ViewEmptyNoCollections
	default:
		return ViewEmpty
	}
}

// DeriveViewState computes what the index renders. Negative counts count as zero.
func DeriveViewState(questionCount, collectionCount int, isAdmin bool) ViewState {
	vs := ViewState{Kind: classify(questionCount, collectionCount, isAdmin), IsAdmin: isAdmin}

	switch vs.Kind {
	case ViewMixed:
		vs.HasCollections = true
		vs.HasQuestionsWithoutCollection = true
		vs.ShowEverythingElseTitle = true
	case ViewCollectionsOnly:
		vs.HasCollections = true
	case ViewQuestionsOnly:
		vs.HasQuestionsWithoutCollection = true
	case ViewEmpty, ViewEmptyNoCollections:
		vs.ShowNoSavedQuestionsState = true
	}

	vs.ShowTitleAndSearch = vs.HasCollections || vs.HasQuestionsWithoutCollection
	vs.ShowSetPermissionsLink = isAdmin && vs.HasCollections
	vs.ShowNoCollectionsState = isAdmin && !vs.HasCollections
	return vs
}

// Title is the header text for the current kind.
func (vs ViewState) Title() string {
	if vs.HasCollections {
		return "Collections of Questions"
	}
	return "Saved Questions"
}
