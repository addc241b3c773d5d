package combination

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ProyectoSpoon/SPOON-sub000/domain/menu"
	"github.com/ProyectoSpoon/SPOON-sub000/modules/syncqueue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePersister records backend writes and serves canned saved state.
type fakePersister struct {
	mu      sync.Mutex
	states  map[string]menu.CombinationState
	upserts []menu.CombinationState
	toggles []string
	err     error
}

func (f *fakePersister) UpsertCombinationState(_ context.Context, state menu.CombinationState) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.upserts = append(f.upserts, state)
	return nil
}

func (f *fakePersister) ToggleFavorite(_ context.Context, _, productID string, _ menu.FavoriteAction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.toggles = append(f.toggles, productID)
	return nil
}

func (f *fakePersister) CombinationStates(_ context.Context, _ []string) (map[string]menu.CombinationState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]menu.CombinationState, len(f.states))
	for id, state := range f.states {
		out[id] = state
	}
	return out, nil
}

// syncEnqueuer runs enqueued writes inline so tests observe their
// effects without a worker pool.
type syncEnqueuer struct {
	names []string
}

func (e *syncEnqueuer) Enqueue(op syncqueue.Op) {
	e.names = append(e.names, op.Name)
	_ = op.Do(context.Background())
}

func newTestStore(t *testing.T, repo *fakePersister) (*Store, *syncEnqueuer) {
	t.Helper()
	if repo.states == nil {
		repo.states = make(map[string]menu.CombinationState)
	}
	queue := &syncEnqueuer{}
	store := NewStore(repo, queue, "test-user")

	_, err := store.Regenerate(context.Background(), testInput())
	require.NoError(t, err)
	return store, queue
}

func TestStore_Regenerate_SameInputsSkipped(t *testing.T) {
	repo := &fakePersister{}
	store, _ := newTestStore(t, repo)

	first, err := store.Regenerate(context.Background(), testInput())
	require.NoError(t, err)

	// Flip a flag, then regenerate with unchanged inputs. The contents
	// must survive because no regeneration runs.
	_, err = store.ToggleFavorite(context.Background(), "menu-1")
	require.NoError(t, err)

	second, err := store.Regenerate(context.Background(), testInput())
	require.NoError(t, err)
	assert.Equal(t, len(first), len(second))
	assert.True(t, second[0].Favorite, "unchanged inputs must not reset state")
}

func TestStore_Regenerate_ChangedInputsRun(t *testing.T) {
	repo := &fakePersister{}
	store, _ := newTestStore(t, repo)

	in := testInput()
	in.Entrada = products("e1")

	combos, err := store.Regenerate(context.Background(), in)
	require.NoError(t, err)
	assert.Len(t, combos, len(in.Principio)*len(in.Proteina))
}

func TestStore_ToggleFavorite(t *testing.T) {
	repo := &fakePersister{}
	store, queue := newTestStore(t, repo)

	combo, err := store.ToggleFavorite(context.Background(), "menu-1")
	require.NoError(t, err)
	assert.True(t, combo.Favorite)

	// Each toggle mirrors two writes: the combination row upsert and
	// the favorite record toggle.
	assert.Len(t, repo.upserts, 1)
	assert.Equal(t, []string{"menu-1"}, repo.toggles)
	assert.Len(t, queue.names, 2)

	combo, err = store.ToggleFavorite(context.Background(), "menu-1")
	require.NoError(t, err)
	assert.False(t, combo.Favorite, "second toggle must restore the original state")
	assert.Len(t, repo.upserts, 2)
	assert.Len(t, repo.toggles, 2)
}

func TestStore_ToggleFavorite_FailureKeepsMemoryState(t *testing.T) {
	repo := &fakePersister{err: assert.AnError}
	store, _ := newTestStore(t, repo)

	combo, err := store.ToggleFavorite(context.Background(), "menu-1")
	require.NoError(t, err, "persistence failures must not surface")
	assert.True(t, combo.Favorite)

	got, err := store.Get("menu-1")
	require.NoError(t, err)
	assert.True(t, got.Favorite, "failed write must not roll the change back")
}

func TestStore_ToggleSpecial_Window(t *testing.T) {
	repo := &fakePersister{}
	store, _ := newTestStore(t, repo)

	now := time.Date(2024, 5, 20, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	combo, err := store.ToggleSpecial(context.Background(), "menu-2")
	require.NoError(t, err)
	assert.True(t, combo.Special)
	require.NotNil(t, combo.SpecialWindow)
	assert.Equal(t, now, combo.SpecialWindow.From)
	assert.Equal(t, now.Add(7*24*time.Hour), combo.SpecialWindow.To)

	combo, err = store.ToggleSpecial(context.Background(), "menu-2")
	require.NoError(t, err)
	assert.False(t, combo.Special)
	assert.Nil(t, combo.SpecialWindow, "turning the special off must clear the window")
}

func TestStore_UpdateQuantity(t *testing.T) {
	repo := &fakePersister{}
	store, _ := newTestStore(t, repo)

	combo, err := store.UpdateQuantity(context.Background(), "menu-3", 15)
	require.NoError(t, err)
	assert.Equal(t, 15, combo.Quantity)

	require.Len(t, repo.upserts, 1)
	assert.Equal(t, 15, repo.upserts[0].Quantity)
}

func TestStore_UnknownCombination(t *testing.T) {
	repo := &fakePersister{}
	store, _ := newTestStore(t, repo)

	_, err := store.ToggleFavorite(context.Background(), "menu-999")
	assert.ErrorIs(t, err, menu.ErrCombinationNotFound)

	_, err = store.UpdateQuantity(context.Background(), "nope", 1)
	assert.ErrorIs(t, err, menu.ErrCombinationNotFound)
}

func TestStore_Schedule(t *testing.T) {
	repo := &fakePersister{}
	store, _ := newTestStore(t, repo)

	entry := menu.ScheduleEntry{Date: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), Quantity: 10}
	combo, err := store.AddSchedule(context.Background(), "menu-1", entry)
	require.NoError(t, err)
	require.Len(t, combo.Schedule, 1)

	edited := menu.ScheduleEntry{Date: entry.Date, Quantity: 25}
	combo, err = store.EditSchedule(context.Background(), "menu-1", 0, edited)
	require.NoError(t, err)
	assert.Equal(t, 25, combo.Schedule[0].Quantity)

	combo, err = store.RemoveSchedule(context.Background(), "menu-1", 0)
	require.NoError(t, err)
	assert.Empty(t, combo.Schedule)
}

func TestStore_Schedule_OutOfRangeIgnored(t *testing.T) {
	repo := &fakePersister{}
	store, queue := newTestStore(t, repo)

	entry := menu.ScheduleEntry{Date: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), Quantity: 10}
	_, err := store.AddSchedule(context.Background(), "menu-1", entry)
	require.NoError(t, err)
	writesBefore := len(queue.names)

	combo, err := store.EditSchedule(context.Background(), "menu-1", 5, entry)
	require.NoError(t, err, "out-of-range edit must not error")
	assert.Len(t, combo.Schedule, 1)

	combo, err = store.RemoveSchedule(context.Background(), "menu-1", -1)
	require.NoError(t, err, "out-of-range removal must not error")
	assert.Len(t, combo.Schedule, 1)

	assert.Equal(t, writesBefore, len(queue.names), "ignored edits must not enqueue writes")
}

func TestStore_LoadSavedState(t *testing.T) {
	repo := &fakePersister{
		states: map[string]menu.CombinationState{
			"menu-2": {
				ID:       "menu-2",
				Favorite: true,
				Quantity: 7,
				Schedule: `[{"date":"2024-06-15","quantity":30}]`,
			},
			"menu-999": {ID: "menu-999", Special: true},
		},
	}
	store, _ := newTestStore(t, repo)

	combo, err := store.Get("menu-2")
	require.NoError(t, err)
	assert.True(t, combo.Favorite)
	assert.Equal(t, 7, combo.Quantity)
	require.Len(t, combo.Schedule, 1)
	assert.Equal(t, time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC), combo.Schedule[0].Date)
	assert.Equal(t, 30, combo.Schedule[0].Quantity)

	// The persisted row for an id not in the store is ignored.
	_, err = store.Get("menu-999")
	assert.ErrorIs(t, err, menu.ErrCombinationNotFound)
}

func TestStore_LoadSavedState_BadScheduleDropped(t *testing.T) {
	repo := &fakePersister{
		states: map[string]menu.CombinationState{
			"menu-1": {ID: "menu-1", Schedule: `not json`},
			"menu-2": {ID: "menu-2", Schedule: `[{"date":"junk","quantity":1},{"date":"2024-07-01","quantity":2}]`},
		},
	}
	store, _ := newTestStore(t, repo)

	combo, err := store.Get("menu-1")
	require.NoError(t, err)
	assert.Empty(t, combo.Schedule)

	combo, err = store.Get("menu-2")
	require.NoError(t, err)
	require.Len(t, combo.Schedule, 1, "entries with unparseable dates are dropped")
	assert.Equal(t, 2, combo.Schedule[0].Quantity)
}

func TestStore_Views(t *testing.T) {
	repo := &fakePersister{}
	store, _ := newTestStore(t, repo)

	_, err := store.ToggleFavorite(context.Background(), "menu-1")
	require.NoError(t, err)
	_, err = store.ToggleSpecial(context.Background(), "menu-2")
	require.NoError(t, err)

	favorites := store.Favorites()
	require.Len(t, favorites, 1)
	assert.Equal(t, "menu-1", favorites[0].ID)

	specials := store.Specials()
	require.Len(t, specials, 1)
	assert.Equal(t, "menu-2", specials[0].ID)
}

func TestStore_MarkFavorites(t *testing.T) {
	repo := &fakePersister{}
	store, queue := newTestStore(t, repo)
	writesBefore := len(queue.names)

	marked := store.MarkFavoriteCombinations(map[string]bool{"menu-1": true, "menu-404": true})
	assert.Equal(t, 1, marked)

	combos := store.Combinations()
	proteina := combos[1].Proteina.ID
	marked = store.MarkFavoriteProducts(map[string]bool{proteina: true})
	assert.Greater(t, marked, 0)

	assert.Equal(t, writesBefore, len(queue.names), "reconciliation must not write back")
}
