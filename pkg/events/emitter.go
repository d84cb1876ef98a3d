// Package events emits audit events for the suggestion lifecycle.
package events

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/Gobusters/ectologger"

	"github.com/piatra/agenda-politicieni/pkg/models"
	"github.com/piatra/agenda-politicieni/pkg/tracing"
)

// Publisher is the sink the emitter writes to. nil-safe: an Emitter with no
// publisher only writes the audit log lines.
type Publisher interface {
	Publish(ctx context.Context, eventType string, key []byte, value []byte) error
}

// Emitter handles audit event emission for the suggestion workflow.
type Emitter struct {
	publisher Publisher
	logger    ectologger.Logger
}

// NewEmitter creates a new audit emitter
func NewEmitter(publisher Publisher, logger ectologger.Logger) *Emitter {
	return &Emitter{
		publisher: publisher,
		logger:    logger,
	}
}

// EmitSuggestionSubmitted emits the audit trail entry for a new suggestion.
func (e *Emitter) EmitSuggestionSubmitted(ctx context.Context, suggestion *models.Suggestion, user models.User) error {
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.EmitSuggestionSubmitted")
	defer span.End()

	e.logger.WithContext(ctx).WithFields(map[string]any{
		"event":         EventTypeSuggestionSubmitted,
		"suggestion_id": suggestion.ID,
		"openid_url":    user.OpenIDURL,
		"person_id":     suggestion.PersonID,
		"name":          suggestion.Name,
		"value":         suggestion.Value,
	}).Infof("New suggestion %d from %s: name=%q, value=%q", suggestion.ID, user.OpenIDURL, suggestion.Name, suggestion.Value)

	event := SuggestionSubmittedEvent{
		BaseEvent:    NewBaseEvent(EventTypeSuggestionSubmitted),
		SuggestionID: suggestion.ID,
		OpenIDURL:    user.OpenIDURL,
		PersonID:     suggestion.PersonID,
		Name:         suggestion.Name,
		Value:        suggestion.Value,
	}

	return e.publish(ctx, event.EventType, suggestion.ID, event)
}

// EmitSuggestionDecided emits the audit trail entry for a decision.
func (e *Emitter) EmitSuggestionDecided(ctx context.Context, suggestion *models.Suggestion, admin models.User, decision string) error {
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.EmitSuggestionDecided")
	defer span.End()

	e.logger.WithContext(ctx).WithFields(map[string]any{
		"event":            EventTypeSuggestionDecided,
		"suggestion_id":    suggestion.ID,
		"decision":         decision,
		"admin_openid_url": admin.OpenIDURL,
	}).Infof("Suggestion %d decision: %s by %s", suggestion.ID, decision, admin.OpenIDURL)

	event := SuggestionDecidedEvent{
		BaseEvent:      NewBaseEvent(EventTypeSuggestionDecided),
		SuggestionID:   suggestion.ID,
		Decision:       decision,
		AdminOpenIDURL: admin.OpenIDURL,
		PersonID:       suggestion.PersonID,
		Name:           suggestion.Name,
	}

	return e.publish(ctx, event.EventType, suggestion.ID, event)
}

// EmitFixtureLoaded emits the audit trail entry for a bulk import.
func (e *Emitter) EmitFixtureLoaded(ctx context.Context, flush bool, persons int) error {
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.EmitFixtureLoaded")
	defer span.End()

	e.logger.WithContext(ctx).WithFields(map[string]any{
		"event":   EventTypeFixtureLoaded,
		"flush":   flush,
		"persons": persons,
	}).Info("Fixture loaded")

	event := FixtureLoadedEvent{
		BaseEvent: NewBaseEvent(EventTypeFixtureLoaded),
		Flush:     flush,
		Persons:   persons,
	}

	return e.publish(ctx, event.EventType, int64(persons), event)
}

func (e *Emitter) publish(ctx context.Context, eventType EventType, key int64, event any) error {
	if e.publisher == nil {
		return nil
	}

	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	if err := e.publisher.Publish(ctx, string(eventType), []byte(strconv.FormatInt(key, 10)), data); err != nil {
		e.logger.WithContext(ctx).WithError(err).Errorf("Failed to emit %s event", eventType)
		return err
	}

	return nil
}
