package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/huertacl/catalog-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserRegistered EventType = "user_registered"
	EventLoginSucceeded EventType = "login_succeeded"
	EventLoginFailed    EventType = "login_failed"
	EventCatalogChanged EventType = "catalog_changed"
)

// AllTypes lists every event type published by the services.
var AllTypes = []EventType{EventUserRegistered, EventLoginSucceeded, EventLoginFailed, EventCatalogChanged}

// Actor identifies who caused an event. Anonymous actors carry only the attempted email.
type Actor struct {
	UserID *int64      `json:"user_id,omitempty"`
	Email  string      `json:"email,omitempty"`
	Role   domain.Role `json:"role,omitempty"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload,omitempty"`
}

// New stamps an event with a fresh id and the current time.
func New(eventType EventType, actor Actor, payload interface{}) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Actor:     actor,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// ActorFor builds an actor from a stored user.
func ActorFor(user *domain.User) Actor {
	if user == nil {
		return Actor{}
	}
	id := user.ID
	return Actor{UserID: &id, Email: user.Email, Role: user.Role}
}

// CatalogEntity names the catalog resource touched by a change.
type CatalogEntity string

const (
	EntityCategory CatalogEntity = "category"
	EntityProduct  CatalogEntity = "product"
)

// CatalogAction names the mutation applied to a catalog resource.
type CatalogAction string

const (
	ActionCreated CatalogAction = "created"
	ActionUpdated CatalogAction = "updated"
	ActionDeleted CatalogAction = "deleted"
)

// CatalogChangedPayload payload.
type CatalogChangedPayload struct {
	Entity CatalogEntity `json:"entity"`
	Action CatalogAction `json:"action"`
	ID     int64         `json:"id"`
	Name   string        `json:"name,omitempty"`
}

// LoginFailedPayload payload. Reason is internal only and never reaches the client.
type LoginFailedPayload struct {
	Reason string `json:"reason"`
}
