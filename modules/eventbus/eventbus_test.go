package eventbus

import (
	"context"
	"testing"

	"github.com/ProyectoSpoon/SPOON-sub000/domain/menu"
)

func TestBus_PublishSynchronous(t *testing.T) {
	bus := New()

	var got []menu.Event
	bus.Subscribe(menu.EventTypeCombinationPersisted, func(event menu.Event) {
		got = append(got, event)
	})

	// Delivery completes before Publish returns; no synchronization is
	// needed to observe the handler's effect.
	bus.Publish(context.Background(), menu.NewCombinationPersistedEvent("menu-1"))
	bus.Publish(context.Background(), menu.NewCombinationPersistedEvent("menu-2"))

	if len(got) != 2 {
		t.Fatalf("expected 2 deliveries, got %d", len(got))
	}
	if got[0].Subject != "menu-1" || got[1].Subject != "menu-2" {
		t.Errorf("expected events in publish order, got %v", got)
	}
}

func TestBus_SubscribeAll_CoversEveryEventType(t *testing.T) {
	bus := New()
	bus.SubscribeAll(func(menu.Event) {})

	for _, eventType := range menu.EventTypes() {
		if bus.HandlerCount(eventType) != 1 {
			t.Errorf("expected handler for %s", eventType)
		}
	}
}

func TestBus_PublishUnsubscribedType(t *testing.T) {
	bus := New()
	bus.Subscribe(menu.EventTypeSnapshotSaved, func(menu.Event) {
		t.Error("handler must not fire for another event type")
	})

	bus.Publish(context.Background(), menu.NewFavoriteToggledEvent("menu-1"))
}

func TestBus_PanickingHandlerDoesNotStopDelivery(t *testing.T) {
	bus := New()

	delivered := false
	bus.Subscribe(menu.EventTypeSnapshotSaved, func(menu.Event) {
		panic("broken handler")
	})
	bus.Subscribe(menu.EventTypeSnapshotSaved, func(menu.Event) {
		delivered = true
	})

	bus.Publish(context.Background(), menu.NewSnapshotSavedEvent("menu:workingset"))

	if !delivered {
		t.Error("expected delivery to continue past a panicking handler")
	}
}

func TestModule_InitAttachesLogger(t *testing.T) {
	m := NewModule()
	if err := m.Init(nil); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	for _, eventType := range menu.EventTypes() {
		if m.GetEventBus().HandlerCount(eventType) == 0 {
			t.Errorf("expected outcome logger subscribed to %s", eventType)
		}
	}
}
