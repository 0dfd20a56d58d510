package store

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"question-index/internal/mb"
)

type fakeAPI struct {
	cols    []mb.Collection
	cards   map[string][]mb.Card
	user    mb.User
	err     error
	queries []mb.CardQuery
}

func (f *fakeAPI) ListCollections(ctx context.Context) ([]mb.Collection, error) {
	return f.cols, f.err
}

func (f *fakeAPI) ListCards(ctx context.Context, q mb.CardQuery) ([]mb.Card, error) {
	f.queries = append(f.queries, q)
	return f.cards[q.Section+"|"+q.Collection], f.err
}

func (f *fakeAPI) CurrentUser(ctx context.Context) (mb.User, error) {
	return f.user, f.err
}

func TestMergeQuery(t *testing.T) {
	q := MergeQuery(DefaultEntityQuery(), map[string]string{"f": "fav", "label": "x"})
	assert.Equal(t, EntityQuery{"f": "fav", "collection": "", "label": "x"}, q)
	assert.Equal(t, "all", DefaultEntityQuery().Section())

	q = MergeQuery(DefaultEntityQuery(), nil)
	assert.Equal(t, DefaultEntityQuery(), q)
}

func TestQueryKeyIsOrderIndependent(t *testing.T) {
	a := EntityQuery{"f": "all", "collection": ""}
	b := EntityQuery{"collection": "", "f": "all"}
	assert.Equal(t, a.Key(), b.Key())
	assert.Equal(t, "collection=&f=all", a.Key())
}

func TestQueryKeyEscapesSeparators(t *testing.T) {
	packed := EntityQuery{"a": "b&c=d"}
	split := EntityQuery{"a": "b", "c": "d"}
	assert.NotEqual(t, packed.Key(), split.Key())

	st := Reduce(State{}, EntitiesLoadedAction{Query: packed, Entities: []mb.Card{{ID: 1}}})
	assert.Empty(t, GetAllEntities(st, split))
}

func TestReduceDoesNotMutateInput(t *testing.T) {
	q := DefaultEntityQuery()
	before := Reduce(State{}, EntitiesLoadedAction{Query: q, Entities: []mb.Card{{ID: 1}}})
	after := Reduce(before, EntitiesLoadedAction{Query: EntityQuery{"f": "fav"}, Entities: []mb.Card{{ID: 2}}})

	assert.Len(t, before.Entities, 1)
	assert.Len(t, after.Entities, 2)

	again := Reduce(before, SearchAction{Text: "rev"})
	assert.Equal(t, "", before.SearchText)
	assert.Equal(t, "rev", again.SearchText)
}

func TestReduceCollectionsLifecycle(t *testing.T) {
	s := Reduce(State{}, CollectionsRequestedAction{})
	assert.True(t, s.CollectionsLoading)
	assert.False(t, s.CollectionsLoaded)

	s = Reduce(s, CollectionsLoadedAction{Collections: []mb.Collection{{ID: 1}}})
	assert.False(t, s.CollectionsLoading)
	assert.True(t, s.CollectionsLoaded)
	assert.Len(t, GetAllCollections(s), 1)
}

func TestReduceFailureKeepsPreviousData(t *testing.T) {
	s := Reduce(State{}, CollectionsLoadedAction{Collections: []mb.Collection{{ID: 1}}})
	s = Reduce(s, CollectionsRequestedAction{})
	boom := errors.New("boom")
	s = Reduce(s, LoadFailedAction{Op: OpLoadCollections, Err: boom})

	assert.Len(t, s.Collections, 1)
	assert.False(t, s.CollectionsLoading)
	assert.ErrorIs(t, s.LastError, boom)
}

func TestEntityLoadingFlags(t *testing.T) {
	q := DefaultEntityQuery()
	s := Reduce(State{}, EntitiesRequestedAction{Query: q})
	assert.True(t, IsLoadingEntities(s, q))
	s = Reduce(s, LoadFailedAction{Op: OpFetchEntities, Query: q, Err: errors.New("x")})
	assert.False(t, IsLoadingEntities(s, q))
	assert.Nil(t, GetAllEntities(s, q))
}

func TestSelectors(t *testing.T) {
	s := State{}
	assert.False(t, GetUserIsAdmin(s))
	s = Reduce(s, UserLoadedAction{User: mb.User{ID: 1, IsSuperuser: true}})
	assert.True(t, GetUserIsAdmin(s))

	q := DefaultEntityQuery()
	s = Reduce(s, EntitiesLoadedAction{Query: q, Entities: []mb.Card{{ID: 3}, {ID: 4}}})
	assert.Len(t, GetAllEntities(s, EntityQuery{"collection": "", "f": "all"}), 2)
	assert.Empty(t, GetAllEntities(s, EntityQuery{"f": "fav", "collection": ""}))
}

func TestThunks(t *testing.T) {
	api := &fakeAPI{
		cols:  []mb.Collection{{ID: 1, Slug: "ops"}},
		cards: map[string][]mb.Card{"fav|ops": {{ID: 9}}},
		user:  mb.User{ID: 2, IsSuperuser: true},
	}
	ctx := context.Background()

	a := LoadCollections(api)(ctx)
	require.IsType(t, CollectionsLoadedAction{}, a)
	assert.Len(t, a.(CollectionsLoadedAction).Collections, 1)

	q := EntityQuery{"f": "fav", "collection": "ops"}
	a = FetchEntities(api, EntityTypeCards, q)(ctx)
	require.IsType(t, EntitiesLoadedAction{}, a)
	assert.Equal(t, []mb.CardQuery{{Section: "fav", Collection: "ops"}}, api.queries)

	a = LoadCurrentUser(api)(ctx)
	require.IsType(t, UserLoadedAction{}, a)

	a = FetchEntities(api, "dashboards", q)(ctx)
	require.IsType(t, LoadFailedAction{}, a)
}

func TestThunkErrorsBecomeFailedActions(t *testing.T) {
	api := &fakeAPI{err: errors.New("down")}
	a := LoadCollections(api)(context.Background())
	f, ok := a.(LoadFailedAction)
	require.True(t, ok)
	assert.Equal(t, OpLoadCollections, f.Op)
}

func TestStoreDispatchNotifiesSubscribers(t *testing.T) {
	st := New(State{})
	var got []string
	unsub := st.Subscribe(func(s State) { got = append(got, s.SearchText) })

	st.Dispatch(Search("a"))
	st.Dispatch(nil)
	unsub()
	st.Dispatch(Search("ab"))

	assert.Equal(t, []string{"a"}, got)
	assert.Equal(t, "ab", st.GetState().SearchText)
}

func TestStoreConcurrentDispatch(t *testing.T) {
	st := New(State{})
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			q := EntityQuery{"f": "all", "n": string(rune('a' + i%26)), "i": string(rune('A' + i/26))}
			st.Dispatch(EntitiesLoadedAction{Query: q, Entities: []mb.Card{{ID: i}}})
		}(i)
	}
	wg.Wait()
	assert.Len(t, st.GetState().Entities, 50)
}
