// Package syncqueue provides the fire-and-forget persistence queue.
// Editor mutations are applied in memory first; the matching backend
// write is enqueued here and its result is only ever logged and
// published as an event, never fed back into editor state.
package syncqueue

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/ProyectoSpoon/SPOON-sub000/domain/menu"
)

// EventPublisher publishes persistence outcome events.
type EventPublisher interface {
	Publish(ctx context.Context, event menu.Event)
}

// Op is one pending backend write. Do carries the repository call;
// OnDone builds the outcome event from its error.
type Op struct {
	Name   string
	Do     func(ctx context.Context) error
	OnDone func(err error) menu.Event
}

// Config holds queue configuration.
type Config struct {
	Workers      int
	Depth        int
	WriteTimeout time.Duration
}

// DefaultConfig returns the default queue configuration.
func DefaultConfig() Config {
	return Config{
		Workers:      2,
		Depth:        256,
		WriteTimeout: 10 * time.Second,
	}
}

// Queue runs backend writes on a small worker pool. Writes are not
// cancellable once dequeued; Stop only stops accepting new work and
// waits briefly for in-flight writes.
type Queue struct {
	config Config
	bus    EventPublisher

	ops     chan Op
	wg      sync.WaitGroup
	mu      sync.Mutex
	running bool
	dropped uint64
}

// New creates a new persistence queue.
func New(cfg Config, bus EventPublisher) *Queue {
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultConfig().Workers
	}
	if cfg.Depth <= 0 {
		cfg.Depth = DefaultConfig().Depth
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = DefaultConfig().WriteTimeout
	}
	return &Queue{
		config: cfg,
		bus:    bus,
		ops:    make(chan Op, cfg.Depth),
	}
}

// Start starts the worker pool.
func (q *Queue) Start(_ context.Context) error {
	q.mu.Lock()
	if q.running {
		q.mu.Unlock()
		return fmt.Errorf("queue is already running")
	}
	q.running = true
	q.mu.Unlock()

	for i := 0; i < q.config.Workers; i++ {
		workerID := fmt.Sprintf("sync-%d", i+1)
		q.wg.Add(1)
		go func(id string) {
			defer q.wg.Done()
			q.run(id)
		}(workerID)
	}

	log.Printf("[syncqueue] Started %d persistence workers (depth %d)", q.config.Workers, q.config.Depth)
	return nil
}

// Enqueue submits a write without blocking. A full queue drops the
// write with a log line; the in-memory state it mirrors is already
// applied and is not rolled back. The send happens under the mutex so
// a concurrent Stop cannot close the channel between the running check
// and the send.
func (q *Queue) Enqueue(op Op) {
	q.mu.Lock()
	if !q.running {
		q.mu.Unlock()
		log.Printf("[syncqueue] Dropping %s: queue not running", op.Name)
		return
	}

	select {
	case q.ops <- op:
		q.mu.Unlock()
	default:
		q.dropped++
		q.mu.Unlock()
		log.Printf("[syncqueue] Queue full, dropping %s", op.Name)
	}
}

// Stop stops accepting writes and waits for in-flight ones until the
// context expires. Pending writes are drained best-effort.
func (q *Queue) Stop(ctx context.Context) error {
	q.mu.Lock()
	if !q.running {
		q.mu.Unlock()
		return nil
	}
	q.running = false
	close(q.ops)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Println("[syncqueue] All persistence workers stopped")
		return nil
	case <-ctx.Done():
		log.Println("[syncqueue] Timeout waiting for persistence workers")
		return ctx.Err()
	}
}

// SetEventBus wires the publisher for persistence outcomes. Safe to
// call while workers are running.
func (q *Queue) SetEventBus(bus EventPublisher) {
	q.mu.Lock()
	q.bus = bus
	q.mu.Unlock()
}

// Dropped returns the number of writes dropped due to a full queue.
func (q *Queue) Dropped() uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.dropped
}

// run is the worker loop. Each write gets its own timeout context;
// failures are logged and published, never retried.
func (q *Queue) run(workerID string) {
	for op := range q.ops {
		ctx, cancel := context.WithTimeout(context.Background(), q.config.WriteTimeout)
		err := op.Do(ctx)
		cancel()

		if err != nil {
			log.Printf("[%s] %s failed: %v", workerID, op.Name, err)
		}
		q.mu.Lock()
		bus := q.bus
		q.mu.Unlock()
		if op.OnDone != nil && bus != nil {
			bus.Publish(context.Background(), op.OnDone(err))
		}
	}
}
