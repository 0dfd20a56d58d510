// Package store is a small redux-style state container for the question
// index: a pure reducer, a mutex-serialized dispatcher, async thunks that
// talk to the server, and read-only selectors.
package store

import (
	"maps"
	"net/url"

	"question-index/internal/mb"
)

// EntityTypeCards is the only entity type the server listing supports.
const EntityTypeCards = "cards"

// EntityQuery selects a subset of entities: "f" is the section filter and
// "collection" the collection slug ("" means not in any collection).
type EntityQuery map[string]string

// DefaultEntityQuery is {f: "all", collection: ""}.
func DefaultEntityQuery() EntityQuery {
	return EntityQuery{"f": "all", "collection": ""}
}

// MergeQuery returns defaults overlaid with over. Neither input is modified.
func MergeQuery(defaults EntityQuery, over map[string]string) EntityQuery {
	out := make(EntityQuery, len(defaults)+len(over))
	maps.Copy(out, defaults)
	maps.Copy(out, over)
	return out
}

func (q EntityQuery) Section() string    { return q["f"] }
func (q EntityQuery) Collection() string { return q["collection"] }

// Key is a canonical string form used to index fetched results. Keys and
// values are escaped, so distinct queries never share a key.
func (q EntityQuery) Key() string {
	v := make(url.Values, len(q))
	for k, val := range q {
		v.Set(k, val)
	}
	return v.Encode()
}

// CardQuery converts q to the client's query type.
func (q EntityQuery) CardQuery() mb.CardQuery {
	return mb.CardQuery{Section: q.Section(), Collection: q.Collection()}
}

// State is the whole application state. Treat values as immutable: the
// reducer always returns fresh maps and slices for anything it changes.
type State struct {
	Collections        []mb.Collection
	CollectionsLoading bool
	CollectionsLoaded  bool

	Entities        map[string][]mb.Card
	LoadingEntities map[string]bool

	User *mb.User

	SearchText string

	// LastError is the most recent failed load, cleared by the next success.
	LastError error
}
