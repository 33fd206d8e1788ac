package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/huertacl/catalog-service/internal/events"
)

// AuditService writes security and catalog events to the audit log.
type AuditService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewAuditService creates the service. Entries are tagged with logger "audit".
func NewAuditService(dispatcher events.Dispatcher, logger *zap.Logger) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditService{
		dispatcher: dispatcher,
		logger:     logger.Named("audit"),
	}
}

// RegisterHandlers subscribes to events.
func (a *AuditService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	a.dispatcher.Subscribe(events.EventUserRegistered, a.handleUserRegistered)
	a.dispatcher.Subscribe(events.EventLoginSucceeded, a.handleLoginSucceeded)
	a.dispatcher.Subscribe(events.EventLoginFailed, a.handleLoginFailed)
	a.dispatcher.Subscribe(events.EventCatalogChanged, a.handleCatalogChanged)
}

func (a *AuditService) handleUserRegistered(_ context.Context, event events.Event) error {
	a.logger.Info("UserRegistered", a.fields(event)...)
	return nil
}

func (a *AuditService) handleLoginSucceeded(_ context.Context, event events.Event) error {
	a.logger.Info("LoginSucceeded", a.fields(event)...)
	return nil
}

func (a *AuditService) handleLoginFailed(_ context.Context, event events.Event) error {
	fields := a.fields(event)
	if payload, ok := event.Payload.(events.LoginFailedPayload); ok {
		fields = append(fields, zap.String("reason", payload.Reason))
	}
	a.logger.Warn("LoginFailed", fields...)
	return nil
}

func (a *AuditService) handleCatalogChanged(_ context.Context, event events.Event) error {
	fields := a.fields(event)
	if payload, ok := event.Payload.(events.CatalogChangedPayload); ok {
		fields = append(fields,
			zap.String("entity", string(payload.Entity)),
			zap.String("action", string(payload.Action)),
			zap.Int64("entity_id", payload.ID))
	}
	a.logger.Info("CatalogChanged", fields...)
	return nil
}

func (a *AuditService) fields(event events.Event) []zap.Field {
	fields := []zap.Field{
		zap.String("event_id", event.ID),
		zap.String("event_type", string(event.Type)),
		zap.Time("at", event.Timestamp),
		zap.String("actor_email", event.Actor.Email),
	}
	if event.Actor.UserID != nil {
		fields = append(fields, zap.Int64("actor_id", *event.Actor.UserID))
	}
	if event.Actor.Role != "" {
		fields = append(fields, zap.String("actor_role", string(event.Actor.Role)))
	}
	return fields
}
