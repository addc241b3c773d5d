// Package workingset provides the menu editor's working-set cache: a
// single versioned snapshot held in memory and mirrored to one durable
// key in Redis on every mutation.
package workingset

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/ProyectoSpoon/SPOON-sub000/domain/menu"
	"github.com/redis/go-redis/v9"
)

// EventPublisher publishes persistence outcome events.
type EventPublisher interface {
	Publish(ctx context.Context, event menu.Event)
}

// Cache holds the editor's working set. The in-memory snapshot is the
// current view; the Redis blob is a best-effort mirror restored on the
// next session. Snapshots are replaced wholesale, never mutated.
type Cache struct {
	client *redis.Client
	key    string
	ttl    time.Duration
	bus    EventPublisher

	mu      sync.Mutex
	current *menu.Snapshot

	now func() time.Time
}

// New creates a working-set cache over the given Redis client and key.
func New(client *redis.Client, key string, ttl time.Duration) *Cache {
	return &Cache{
		client: client,
		key:    key,
		ttl:    ttl,
		now:    time.Now,
	}
}

// SetEventBus wires the event bus used to report persistence outcomes.
func (c *Cache) SetEventBus(bus EventPublisher) {
	c.bus = bus
}

// Load returns the current snapshot if its TTL has not elapsed. An
// expired, missing, or unreadable snapshot is reported as absent; the
// stale blob is left in place for a later write to overwrite.
func (c *Cache) Load(ctx context.Context) (*menu.Snapshot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := c.loadLocked(ctx)
	if snap == nil {
		return nil, false
	}
	return snap.Clone(), true
}

// loadLocked returns the current valid snapshot or nil. Callers must
// hold c.mu.
func (c *Cache) loadLocked(ctx context.Context) *menu.Snapshot {
	if c.current != nil {
		if c.expired(c.current) {
			return nil
		}
		return c.current
	}

	data, err := c.client.Get(ctx, c.key).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Printf("[workingset] Failed to read snapshot blob: %v", err)
		}
		return nil
	}

	var snap menu.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		log.Printf("[workingset] Discarding unreadable snapshot blob: %v", err)
		return nil
	}
	if snap.Version != menu.SnapshotVersion {
		log.Printf("[workingset] Discarding snapshot blob with schema version %d (want %d)", snap.Version, menu.SnapshotVersion)
		return nil
	}

	c.current = &snap
	if c.expired(c.current) {
		return nil
	}
	return c.current
}

// Update merges the patch into a new snapshot, stores it, and mirrors
// it to Redis. CreatedAt is preserved from the current snapshot; when
// no valid snapshot exists a fresh one is started. Persistence failures
// are logged and never surfaced to the caller.
func (c *Cache) Update(ctx context.Context, patch menu.SnapshotPatch) *menu.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	base := c.loadLocked(ctx)
	if base == nil {
		base = &menu.Snapshot{
			Version:      menu.SnapshotVersion,
			ActiveSubTab: menu.SubTabMenuOfDay,
			CreatedAt:    c.now(),
		}
	}

	next := base.Clone()
	applyPatch(next, patch)

	c.current = next
	c.persistLocked(ctx, next)

	return next.Clone()
}

// RemainingTTL returns the time left before the current snapshot
// expires, or zero when no valid snapshot exists. Display only; it
// never changes persisted state.
func (c *Cache) RemainingTTL(ctx context.Context) time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := c.loadLocked(ctx)
	if snap == nil {
		return 0
	}

	remaining := c.ttl - c.now().Sub(snap.CreatedAt)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Reset clears the snapshot and its blob. The next Load reports absent
// and the next Update starts a fresh session with a new CreatedAt.
func (c *Cache) Reset(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.current = nil
	if err := c.client.Del(ctx, c.key).Err(); err != nil {
		log.Printf("[workingset] Failed to delete snapshot blob: %v", err)
	}
}

// Ping checks if the Redis connection is healthy.
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// persistLocked mirrors the snapshot to Redis. The blob carries no
// Redis expiry: CreatedAt is the sole basis for staleness, and a stale
// blob stays in storage until overwritten.
func (c *Cache) persistLocked(ctx context.Context, snap *menu.Snapshot) {
	data, err := json.Marshal(snap)
	if err != nil {
		log.Printf("[workingset] Failed to marshal snapshot: %v", err)
		c.publish(ctx, menu.NewSnapshotSaveFailedEvent(c.key, err))
		return
	}

	if err := c.client.Set(ctx, c.key, data, 0).Err(); err != nil {
		log.Printf("[workingset] Failed to store snapshot: %v", err)
		c.publish(ctx, menu.NewSnapshotSaveFailedEvent(c.key, err))
		return
	}

	c.publish(ctx, menu.NewSnapshotSavedEvent(c.key))
}

func (c *Cache) publish(ctx context.Context, event menu.Event) {
	if c.bus != nil {
		c.bus.Publish(ctx, event)
	}
}

func (c *Cache) expired(snap *menu.Snapshot) bool {
	return c.now().Sub(snap.CreatedAt) >= c.ttl
}

// applyPatch merges non-nil patch fields into the snapshot.
func applyPatch(snap *menu.Snapshot, patch menu.SnapshotPatch) {
	if patch.Categories != nil {
		snap.Categories = append([]menu.Category(nil), *patch.Categories...)
	}
	if patch.SelectedCategoryID != nil {
		snap.SelectedCategoryID = *patch.SelectedCategoryID
	}
	if patch.SelectedSubcategoryID != nil {
		snap.SelectedSubcategoryID = *patch.SelectedSubcategoryID
	}
	if patch.CandidateProducts != nil {
		snap.CandidateProducts = append([]menu.Product(nil), *patch.CandidateProducts...)
	}
	if patch.MenuProducts != nil {
		snap.MenuProducts = append([]menu.Product(nil), *patch.MenuProducts...)
	}
	if patch.FavoriteProducts != nil {
		snap.FavoriteProducts = append([]menu.Product(nil), *patch.FavoriteProducts...)
	}
	if patch.SpecialProducts != nil {
		snap.SpecialProducts = append([]menu.Product(nil), *patch.SpecialProducts...)
	}
	if patch.ActiveSubTab != nil {
		snap.ActiveSubTab = *patch.ActiveSubTab
	}
}
