package store

import (
	"maps"

	"question-index/internal/mb"
)

// Action is a state transition request handled by Reduce.
type Action interface{ action() }

type SearchAction struct{ Text string }

type CollectionsRequestedAction struct{}

type CollectionsLoadedAction struct{ Collections []mb.Collection }

type EntitiesRequestedAction struct{ Query EntityQuery }

type EntitiesLoadedAction struct {
	Query    EntityQuery
	Entities []mb.Card
}

type UserLoadedAction struct{ User mb.User }

// LoadFailedAction records a failed async load. Op names the thunk.
type LoadFailedAction struct {
	Op    string
	Query EntityQuery // set for entity fetches
	Err   error
}

func (SearchAction) action()               {}
func (CollectionsRequestedAction) action() {}
func (CollectionsLoadedAction) action()    {}
func (EntitiesRequestedAction) action()    {}
func (EntitiesLoadedAction) action()       {}
func (UserLoadedAction) action()           {}
func (LoadFailedAction) action()           {}

// Reduce returns the state after applying a. It never mutates s.
func Reduce(s State, a Action) State {
	switch a := a.(type) {
	case SearchAction:
		s.SearchText = a.Text
	case CollectionsRequestedAction:
		s.CollectionsLoading = true
	case CollectionsLoadedAction:
		s.Collections = append([]mb.Collection(nil), a.Collections...)
		s.CollectionsLoading = false
		s.CollectionsLoaded = true
		s.LastError = nil
	case EntitiesRequestedAction:
		s.LoadingEntities = withFlag(s.LoadingEntities, a.Query.Key(), true)
	case EntitiesLoadedAction:
		key := a.Query.Key()
		ents := make(map[string][]mb.Card, len(s.Entities)+1)
		maps.Copy(ents, s.Entities)
		ents[key] = append([]mb.Card(nil), a.Entities...)
		s.Entities = ents
		s.LoadingEntities = withFlag(s.LoadingEntities, key, false)
		s.LastError = nil
	case UserLoadedAction:
		u := a.User
		s.User = &u
	case LoadFailedAction:
		s.LastError = a.Err
		switch a.Op {
		case OpLoadCollections:
			s.CollectionsLoading = false
		case OpFetchEntities:
			s.LoadingEntities = withFlag(s.LoadingEntities, a.Query.Key(), false)
		}
	}
	return s
}

func withFlag(m map[string]bool, key string, on bool) map[string]bool {
	out := make(map[string]bool, len(m)+1)
	maps.Copy(out, m)
	if on {
		out[key] = true
	} else {
		delete(out, key)
	}
	return out
}
