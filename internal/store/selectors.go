package store

import "question-index/internal/mb"

// GetAllEntities returns the entities fetched for q, nil when not loaded.
func GetAllEntities(s State, q EntityQuery) []mb.Card {
	return s.Entities[q.Key()]
}

// GetAllCollections returns the loaded collections.
func GetAllCollections(s State) []mb.Collection {
	return s.Collections
}

// GetUserIsAdmin reports whether the current user is a superuser.
func GetUserIsAdmin(s State) bool {
	return s.User != nil && s.User.IsSuperuser
}

// IsLoadingEntities reports whether a fetch for q is in flight.
func IsLoadingEntities(s State, q EntityQuery) bool {
	return s.LoadingEntities[q.Key()]
}
