package combination

import (
	"context"
	"fmt"
	"log"

	"github.com/go-monolith/mono"
)

// Module provides the combination store as a mono module.
type Module struct {
	store  *Store
	repo   StatePersister
	queue  Enqueuer
	userID string
}

// NewModule creates a new combination module for the given editor actor.
func NewModule(userID string) *Module {
	return &Module{
		userID: userID,
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "combination"
}

// SetRepository wires the backend-of-record repository.
func (m *Module) SetRepository(repo StatePersister) {
	m.repo = repo
}

// SetQueue wires the persistence queue.
func (m *Module) SetQueue(queue Enqueuer) {
	m.queue = queue
}

// Init initializes the module.
func (m *Module) Init(_ mono.ServiceContainer) error {
	log.Println("[combination] Module initialized")
	return nil
}

// Start starts the module. The store itself is created once the
// repository and queue have been wired, which happens after the
// application starts.
func (m *Module) Start(_ context.Context) error {
	m.ensureStore()
	log.Println("[combination] Module started")
	return nil
}

// Stop stops the module.
func (m *Module) Stop(_ context.Context) error {
	log.Println("[combination] Module stopped")
	return nil
}

// GetStore returns the combination store, creating it when the
// dependencies were wired after Start.
func (m *Module) GetStore() (*Store, error) {
	m.ensureStore()
	if m.store == nil {
		return nil, fmt.Errorf("combination store not initialized: repository or queue not set")
	}
	return m.store, nil
}

func (m *Module) ensureStore() {
	if m.store == nil && m.repo != nil && m.queue != nil {
		m.store = NewStore(m.repo, m.queue, m.userID)
	}
}
