package menu

import "time"

// EventType classifies editor persistence events.
type EventType string

const (
	// EventTypeCombinationPersisted indicates a combination write reached
	// the backend of record.
	EventTypeCombinationPersisted EventType = "combination.persisted"
	// EventTypeCombinationPersistFailed indicates a combination write failed.
	EventTypeCombinationPersistFailed EventType = "combination.persist_failed"
	// EventTypeFavoriteToggled indicates a favorite record toggle completed.
	EventTypeFavoriteToggled EventType = "favorite.toggled"
	// EventTypeSnapshotSaved indicates the working-set snapshot was stored.
	EventTypeSnapshotSaved EventType = "snapshot.saved"
	// EventTypeSnapshotSaveFailed indicates the snapshot store failed.
	EventTypeSnapshotSaveFailed EventType = "snapshot.save_failed"
)

// EventTypes lists every persistence event type.
func EventTypes() []EventType {
	return []EventType{
		EventTypeCombinationPersisted,
		EventTypeCombinationPersistFailed,
		EventTypeFavoriteToggled,
		EventTypeSnapshotSaved,
		EventTypeSnapshotSaveFailed,
	}
}

// Event is a persistence outcome published on the event bus. Events are
// consumed for logging only; they never feed back into editor state.
type Event struct {
	Type      EventType   `json:"type"`
	Subject   string      `json:"subject"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data,omitempty"`
}

// Failed reports whether the event carries a persistence failure.
func (e Event) Failed() bool {
	_, ok := e.Data.(PersistFailedData)
	return ok
}

// PersistFailedData carries the failure detail of a persistence event.
type PersistFailedData struct {
	Error string `json:"error"`
}

// NewCombinationPersistedEvent creates a combination persisted event.
func NewCombinationPersistedEvent(combinationID string) Event {
	return Event{
		Type:      EventTypeCombinationPersisted,
		Subject:   combinationID,
		Timestamp: time.Now(),
	}
}

// NewCombinationPersistFailedEvent creates a combination persist failure event.
func NewCombinationPersistFailedEvent(combinationID string, err error) Event {
	return Event{
		Type:      EventTypeCombinationPersistFailed,
		Subject:   combinationID,
		Timestamp: time.Now(),
		Data:      PersistFailedData{Error: err.Error()},
	}
}

// NewFavoriteToggledEvent creates a favorite toggled event.
func NewFavoriteToggledEvent(productID string) Event {
	return Event{
		Type:      EventTypeFavoriteToggled,
		Subject:   productID,
		Timestamp: time.Now(),
	}
}

// NewSnapshotSavedEvent creates a snapshot saved event.
func NewSnapshotSavedEvent(key string) Event {
	return Event{
		Type:      EventTypeSnapshotSaved,
		Subject:   key,
		Timestamp: time.Now(),
	}
}

// NewSnapshotSaveFailedEvent creates a snapshot save failure event.
func NewSnapshotSaveFailedEvent(key string, err error) Event {
	return Event{
		Type:      EventTypeSnapshotSaveFailed,
		Subject:   key,
		Timestamp: time.Now(),
		Data:      PersistFailedData{Error: err.Error()},
	}
}
