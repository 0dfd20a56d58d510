package store

import (
	"context"
	"fmt"

	"question-index/internal/mb"
)

const (
	OpLoadCollections = "loadCollections"
	OpFetchEntities   = "fetchEntities"
	OpLoadUser        = "loadCurrentUser"
)

// API is the part of the server client the thunks use.
type API interface {
	ListCollections(ctx context.Context) ([]mb.Collection, error)
	ListCards(ctx context.Context, q mb.CardQuery) ([]mb.Card, error)
	CurrentUser(ctx context.Context) (mb.User, error)
}

// Thunk performs async work and returns the action to dispatch. Failures
// come back as LoadFailedAction, never as a panic or a nil action.
type Thunk func(ctx context.Context) Action

// LoadCollections fetches the collection list.
func LoadCollections(api API) Thunk {
	return func(ctx context.Context) Action {
		cols, err := api.ListCollections(ctx)
		if err != nil {
			return LoadFailedAction{Op: OpLoadCollections, Err: err}
		}
		return CollectionsLoadedAction{Collections: cols}
	}
}

// FetchEntities lists entities of entityType matching q.
func FetchEntities(api API, entityType string, q EntityQuery) Thunk {
	return func(ctx context.Context) Action {
		if entityType != EntityTypeCards {
			return LoadFailedAction{Op: OpFetchEntities, Query: q, Err: fmt.Errorf("unsupported entity type %q", entityType)}
		}
		cards, err := api.ListCards(ctx, q.CardQuery())
		if err != nil {
			return LoadFailedAction{Op: OpFetchEntities, Query: q, Err: err}
		}
		return EntitiesLoadedAction{Query: q, Entities: cards}
	}
}

// LoadCurrentUser fetches the session's user, which carries the admin flag.
func LoadCurrentUser(api API) Thunk {
	return func(ctx context.Context) Action {
		u, err := api.CurrentUser(ctx)
		if err != nil {
			return LoadFailedAction{Op: OpLoadUser, Err: err}
		}
		return UserLoadedAction{User: u}
	}
}

// Search sets the text used to filter listed entities.
func Search(text string) Action { return SearchAction{Text: text} }
