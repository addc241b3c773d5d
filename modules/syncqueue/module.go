package syncqueue

import (
	"context"
	"fmt"
	"log"

	"github.com/go-monolith/mono"
)

// Module provides the persistence queue as a mono module.
type Module struct {
	queue  *Queue
	config Config
	bus    EventPublisher
}

// NewModule creates a new syncqueue module.
func NewModule(cfg Config) *Module {
	return &Module{
		config: cfg,
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "syncqueue"
}

// SetEventBus wires the event bus used for persistence outcomes.
func (m *Module) SetEventBus(bus EventPublisher) {
	m.bus = bus
	if m.queue != nil {
		m.queue.SetEventBus(bus)
	}
}

// Init initializes the module.
func (m *Module) Init(_ mono.ServiceContainer) error {
	log.Println("[syncqueue] Module initialized")
	return nil
}

// Start creates the queue and starts its workers.
func (m *Module) Start(ctx context.Context) error {
	m.queue = New(m.config, m.bus)
	if err := m.queue.Start(ctx); err != nil {
		return fmt.Errorf("failed to start persistence queue: %w", err)
	}
	return nil
}

// Stop drains the queue best-effort.
func (m *Module) Stop(ctx context.Context) error {
	if m.queue == nil {
		return nil
	}
	return m.queue.Stop(ctx)
}

// GetQueue returns the queue instance.
func (m *Module) GetQueue() *Queue {
	return m.queue
}
