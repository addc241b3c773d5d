package combination

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/ProyectoSpoon/SPOON-sub000/domain/menu"
	"github.com/ProyectoSpoon/SPOON-sub000/modules/syncqueue"
	"golang.org/x/sync/singleflight"
)

// dateLayout is the wire format for schedule dates in persisted state.
const dateLayout = "2006-01-02"

// StatePersister is the backend-of-record surface the store writes to
// and restores saved state from.
type StatePersister interface {
	UpsertCombinationState(ctx context.Context, state menu.CombinationState) error
	ToggleFavorite(ctx context.Context, userID, productID string, action menu.FavoriteAction) error
	CombinationStates(ctx context.Context, ids []string) (map[string]menu.CombinationState, error)
}

// Enqueuer submits fire-and-forget persistence writes.
type Enqueuer interface {
	Enqueue(op syncqueue.Op)
}

// Store holds the generator's output plus per-combination mutable
// state. Every mutation is applied in memory synchronously and then
// mirrored to the backend through the persistence queue; a failed write
// never rolls the in-memory change back.
type Store struct {
	repo   StatePersister
	queue  Enqueuer
	userID string

	mu          sync.RWMutex
	combos      []*menu.Combination
	index       map[string]*menu.Combination
	fingerprint string

	regen singleflight.Group
	now   func() time.Time
}

// NewStore creates an empty combination store for one editor actor.
func NewStore(repo StatePersister, queue Enqueuer, userID string) *Store {
	return &Store{
		repo:   repo,
		queue:  queue,
		userID: userID,
		index:  make(map[string]*menu.Combination),
		now:    time.Now,
	}
}

// Regenerate runs the generator and replaces the store contents, then
// merges saved state from the backend. Regeneration runs at most once
// per unchanged set of inputs: repeated calls with the same product
// lists return the current contents without regenerating.
func (s *Store) Regenerate(ctx context.Context, in menu.GenerationInput) ([]menu.Combination, error) {
	fp := fingerprint(in)

	s.mu.RLock()
	unchanged := s.fingerprint == fp && len(s.combos) > 0
	s.mu.RUnlock()
	if unchanged {
		return s.Combinations(), nil
	}

	_, err, _ := s.regen.Do(fp, func() (interface{}, error) {
		combos, err := Generate(in)
		if err != nil {
			return nil, err
		}

		s.mu.Lock()
		s.combos = combos
		s.index = make(map[string]*menu.Combination, len(combos))
		for _, c := range combos {
			s.index[c.ID] = c
		}
		s.fingerprint = fp
		s.mu.Unlock()

		if err := s.LoadSavedState(ctx); err != nil {
			log.Printf("[combination] Failed to load saved state: %v", err)
		}
		return nil, nil
	})
	if err != nil {
		return nil, err
	}

	return s.Combinations(), nil
}

// LoadSavedState fetches persisted per-combination attributes keyed by
// combination id and merges them into the current contents. Persisted
// ids not present in the store are ignored; combinations without a
// persisted row keep generator defaults.
func (s *Store) LoadSavedState(ctx context.Context) error {
	ids := s.ids()
	if len(ids) == 0 {
		return nil
	}

	states, err := s.repo.CombinationStates(ctx, ids)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for id, state := range states {
		combo, ok := s.index[id]
		if !ok {
			continue
		}
		combo.Favorite = state.Favorite
		combo.Special = state.Special
		combo.Quantity = state.Quantity
		if state.WindowFrom != nil && state.WindowTo != nil {
			combo.SpecialWindow = &menu.SpecialWindow{From: *state.WindowFrom, To: *state.WindowTo}
		} else {
			combo.SpecialWindow = nil
		}
		combo.Schedule = decodeSchedule(id, state.Schedule)
	}
	return nil
}

// Combinations returns a copy of the current contents in generation order.
func (s *Store) Combinations() []menu.Combination {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]menu.Combination, len(s.combos))
	for i, c := range s.combos {
		out[i] = *c
	}
	return out
}

// Get returns a copy of one combination by id.
func (s *Store) Get(id string) (menu.Combination, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	combo, ok := s.index[id]
	if !ok {
		return menu.Combination{}, menu.ErrCombinationNotFound
	}
	return *combo, nil
}

// Favorites returns the combinations currently flagged as favorites.
func (s *Store) Favorites() []menu.Combination {
	return s.filter(func(c *menu.Combination) bool { return c.Favorite })
}

// Specials returns the combinations currently flagged as specials.
func (s *Store) Specials() []menu.Combination {
	return s.filter(func(c *menu.Combination) bool { return c.Special })
}

// ToggleFavorite flips the favorite flag of a combination. The flip is
// visible immediately; the backend favorite toggle is enqueued and its
// failure is only logged.
func (s *Store) ToggleFavorite(ctx context.Context, id string) (menu.Combination, error) {
	s.mu.Lock()
	combo, ok := s.index[id]
	if !ok {
		s.mu.Unlock()
		return menu.Combination{}, menu.ErrCombinationNotFound
	}
	combo.Favorite = !combo.Favorite
	snapshot := *combo
	state := encodeState(combo, s.now())
	s.mu.Unlock()

	s.enqueueUpsert(state)
	s.queue.Enqueue(syncqueue.Op{
		Name: fmt.Sprintf("favorite-toggle %s", id),
		Do: func(ctx context.Context) error {
			return s.repo.ToggleFavorite(ctx, s.userID, id, menu.FavoriteToggle)
		},
		OnDone: func(err error) menu.Event {
			if err != nil {
				return menu.NewCombinationPersistFailedEvent(id, err)
			}
			return menu.NewFavoriteToggledEvent(id)
		},
	})

	return snapshot, nil
}

// ToggleSpecial flips the special flag. Turning it on stamps a default
// one-week availability window; turning it off clears the window.
func (s *Store) ToggleSpecial(ctx context.Context, id string) (menu.Combination, error) {
	s.mu.Lock()
	combo, ok := s.index[id]
	if !ok {
		s.mu.Unlock()
		return menu.Combination{}, menu.ErrCombinationNotFound
	}
	combo.Special = !combo.Special
	if combo.Special {
		from := s.now()
		combo.SpecialWindow = &menu.SpecialWindow{From: from, To: from.Add(menu.SpecialWindowDuration)}
	} else {
		combo.SpecialWindow = nil
	}
	snapshot := *combo
	state := encodeState(combo, s.now())
	s.mu.Unlock()

	s.enqueueUpsert(state)
	return snapshot, nil
}

// UpdateQuantity sets the quantity of a combination.
func (s *Store) UpdateQuantity(ctx context.Context, id string, quantity int) (menu.Combination, error) {
	s.mu.Lock()
	combo, ok := s.index[id]
	if !ok {
		s.mu.Unlock()
		return menu.Combination{}, menu.ErrCombinationNotFound
	}
	combo.Quantity = quantity
	snapshot := *combo
	state := encodeState(combo, s.now())
	s.mu.Unlock()

	s.enqueueUpsert(state)
	return snapshot, nil
}

// AddSchedule appends a scheduled occurrence to a combination.
func (s *Store) AddSchedule(ctx context.Context, id string, entry menu.ScheduleEntry) (menu.Combination, error) {
	s.mu.Lock()
	combo, ok := s.index[id]
	if !ok {
		s.mu.Unlock()
		return menu.Combination{}, menu.ErrCombinationNotFound
	}
	combo.Schedule = append(combo.Schedule, entry)
	snapshot := *combo
	state := encodeState(combo, s.now())
	s.mu.Unlock()

	s.enqueueUpsert(state)
	return snapshot, nil
}

// EditSchedule replaces the schedule entry at the given position. An
// out-of-range index is logged and ignored.
func (s *Store) EditSchedule(ctx context.Context, id string, index int, entry menu.ScheduleEntry) (menu.Combination, error) {
	s.mu.Lock()
	combo, ok := s.index[id]
	if !ok {
		s.mu.Unlock()
		return menu.Combination{}, menu.ErrCombinationNotFound
	}
	if index < 0 || index >= len(combo.Schedule) {
		snapshot := *combo
		s.mu.Unlock()
		log.Printf("[combination] Ignoring schedule edit for %s: %v (index %d)", id, menu.ErrScheduleIndex, index)
		return snapshot, nil
	}
	combo.Schedule[index] = entry
	snapshot := *combo
	state := encodeState(combo, s.now())
	s.mu.Unlock()

	s.enqueueUpsert(state)
	return snapshot, nil
}

// RemoveSchedule removes the schedule entry at the given position. An
// out-of-range index is logged and ignored.
func (s *Store) RemoveSchedule(ctx context.Context, id string, index int) (menu.Combination, error) {
	s.mu.Lock()
	combo, ok := s.index[id]
	if !ok {
		s.mu.Unlock()
		return menu.Combination{}, menu.ErrCombinationNotFound
	}
	if index < 0 || index >= len(combo.Schedule) {
		snapshot := *combo
		s.mu.Unlock()
		log.Printf("[combination] Ignoring schedule removal for %s: %v (index %d)", id, menu.ErrScheduleIndex, index)
		return snapshot, nil
	}
	combo.Schedule = append(combo.Schedule[:index], combo.Schedule[index+1:]...)
	snapshot := *combo
	state := encodeState(combo, s.now())
	s.mu.Unlock()

	s.enqueueUpsert(state)
	return snapshot, nil
}

// MarkFavoriteCombinations sets the favorite flag on combinations whose
// id appears in the given set. Reconciliation only: nothing is written
// back to the backend.
func (s *Store) MarkFavoriteCombinations(ids map[string]bool) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	marked := 0
	for id, combo := range s.index {
		if ids[id] && !combo.Favorite {
			combo.Favorite = true
			marked++
		}
	}
	return marked
}

// MarkFavoriteProducts sets the favorite flag on combinations that
// contain any of the given product ids in any role. Reconciliation
// only: nothing is written back to the backend.
func (s *Store) MarkFavoriteProducts(productIDs map[string]bool) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	marked := 0
	for _, combo := range s.combos {
		if combo.Favorite {
			continue
		}
		for _, p := range combo.Products() {
			if productIDs[p.ID] {
				combo.Favorite = true
				marked++
				break
			}
		}
	}
	return marked
}

// Clear empties the store. The next Regenerate always runs.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.combos = nil
	s.index = make(map[string]*menu.Combination)
	s.fingerprint = ""
}

// Len returns the number of combinations currently held.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.combos)
}

func (s *Store) ids() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, len(s.combos))
	for i, c := range s.combos {
		ids[i] = c.ID
	}
	return ids
}

func (s *Store) filter(keep func(*menu.Combination) bool) []menu.Combination {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []menu.Combination
	for _, c := range s.combos {
		if keep(c) {
			out = append(out, *c)
		}
	}
	return out
}

func (s *Store) enqueueUpsert(state menu.CombinationState) {
	id := state.ID
	s.queue.Enqueue(syncqueue.Op{
		Name: fmt.Sprintf("combination-upsert %s", id),
		Do: func(ctx context.Context) error {
			return s.repo.UpsertCombinationState(ctx, state)
		},
		OnDone: func(err error) menu.Event {
			if err != nil {
				return menu.NewCombinationPersistFailedEvent(id, err)
			}
			return menu.NewCombinationPersistedEvent(id)
		},
	})
}

// scheduleRecord is the persisted wire shape of one schedule entry.
type scheduleRecord struct {
	Date     string `json:"date"`
	Quantity int    `json:"quantity"`
}

// encodeState builds the persisted row for a combination. Callers must
// hold s.mu so the combination is read consistently.
func encodeState(combo *menu.Combination, at time.Time) menu.CombinationState {
	state := menu.CombinationState{
		ID:        combo.ID,
		Favorite:  combo.Favorite,
		Special:   combo.Special,
		Quantity:  combo.Quantity,
		UpdatedAt: at,
	}
	if combo.SpecialWindow != nil {
		from, to := combo.SpecialWindow.From, combo.SpecialWindow.To
		state.WindowFrom = &from
		state.WindowTo = &to
	}
	if len(combo.Schedule) > 0 {
		records := make([]scheduleRecord, len(combo.Schedule))
		for i, entry := range combo.Schedule {
			records[i] = scheduleRecord{Date: entry.Date.Format(dateLayout), Quantity: entry.Quantity}
		}
		if data, err := json.Marshal(records); err == nil {
			state.Schedule = string(data)
		}
	}
	return state
}

// decodeSchedule parses the persisted schedule JSON, converting date
// strings into time values. Malformed entries are dropped with a log line.
func decodeSchedule(id, raw string) []menu.ScheduleEntry {
	if raw == "" {
		return []menu.ScheduleEntry{}
	}

	var records []scheduleRecord
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		log.Printf("[combination] Discarding unreadable schedule for %s: %v", id, err)
		return []menu.ScheduleEntry{}
	}

	entries := make([]menu.ScheduleEntry, 0, len(records))
	for _, record := range records {
		date, err := time.Parse(dateLayout, record.Date)
		if err != nil {
			log.Printf("[combination] Skipping schedule entry with bad date %q for %s", record.Date, id)
			continue
		}
		entries = append(entries, menu.ScheduleEntry{Date: date, Quantity: record.Quantity})
	}
	return entries
}

// fingerprint derives a stable identity for a set of generation inputs
// from the ordered product ids of every role.
func fingerprint(in menu.GenerationInput) string {
	var b strings.Builder
	for _, role := range menu.Roles() {
		b.WriteString(string(role))
		b.WriteByte(':')
		for _, p := range in.ByRole(role) {
			b.WriteString(p.ID)
			b.WriteByte(',')
		}
		b.WriteByte(';')
	}
	return b.String()
}
