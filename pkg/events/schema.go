package events

import (
	"time"

	"github.com/google/uuid"
)

// SchemaVersion is the current audit event schema version
const SchemaVersion = "1.0"

// EventType defines the type of audit event
type EventType string

const (
	EventTypeSuggestionSubmitted EventType = "suggestion.submitted"
	EventTypeSuggestionDecided   EventType = "suggestion.decided"
	EventTypeFixtureLoaded       EventType = "fixture.loaded"
)

// BaseEvent contains common fields for all audit events
type BaseEvent struct {
	EventType     EventType `json:"event_type"`
	SchemaVersion string    `json:"schema_version"`
	Timestamp     time.Time `json:"timestamp"`
	CorrelationID string    `json:"correlation_id,omitempty"`
}

// SuggestionSubmittedEvent records a new suggestion entering the ledger
type SuggestionSubmittedEvent struct {
	BaseEvent
	SuggestionID int64  `json:"suggestion_id"`
	OpenIDURL    string `json:"openid_url"`
	PersonID     int64  `json:"person_id"`
	Name         string `json:"name"`
	Value        string `json:"value"`
}

// SuggestionDecidedEvent records the decision applied to a suggestion
type SuggestionDecidedEvent struct {
	BaseEvent
	SuggestionID   int64  `json:"suggestion_id"`
	Decision       string `json:"decision"`
	AdminOpenIDURL string `json:"admin_openid_url"`
	PersonID       int64  `json:"person_id"`
	Name           string `json:"name"`
}

// FixtureLoadedEvent records a bulk import run
type FixtureLoadedEvent struct {
	BaseEvent
	Flush   bool `json:"flush"`
	Persons int  `json:"persons"`
}

// NewBaseEvent creates a base event with common fields
func NewBaseEvent(eventType EventType) BaseEvent {
	return BaseEvent{
		EventType:     eventType,
		SchemaVersion: SchemaVersion,
		Timestamp:     time.Now().UTC(),
		CorrelationID: uuid.New().String(),
	}
}
