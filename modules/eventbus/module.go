package eventbus

import (
	"context"
	"log"

	"github.com/ProyectoSpoon/SPOON-sub000/domain/menu"
	"github.com/go-monolith/mono"
)

// Module provides the persistence event bus as a mono module. The bus
// comes with a logging subscriber so every persistence outcome lands in
// the application log even before other modules are wired.
type Module struct {
	bus *Bus
}

// NewModule creates a new event bus module.
func NewModule() *Module {
	return &Module{}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "eventbus"
}

// Init creates the bus and attaches the outcome logger.
func (m *Module) Init(_ mono.ServiceContainer) error {
	m.bus = New()
	m.bus.SubscribeAll(logOutcome)
	log.Println("[eventbus] Bus initialized")
	return nil
}

// Start starts the module.
func (m *Module) Start(_ context.Context) error {
	return nil
}

// Stop stops the module.
func (m *Module) Stop(_ context.Context) error {
	return nil
}

// GetEventBus returns the bus instance.
func (m *Module) GetEventBus() *Bus {
	return m.bus
}

// logOutcome writes one persistence outcome to the application log.
func logOutcome(event menu.Event) {
	if event.Failed() {
		data := event.Data.(menu.PersistFailedData)
		log.Printf("[eventbus] %s subject=%s error=%s", event.Type, event.Subject, data.Error)
		return
	}
	log.Printf("[eventbus] %s subject=%s", event.Type, event.Subject)
}
