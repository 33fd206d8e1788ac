package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/huertacl/catalog-service/internal/events"
)

func TestAuditService_LogsLoginFailureReason(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	dispatcher := events.NewInMemoryDispatcher()
	NewAuditService(dispatcher, zap.New(core)).RegisterHandlers()

	err := dispatcher.Publish(context.Background(),
		events.New(events.EventLoginFailed, events.Actor{Email: "a@x.com"}, events.LoginFailedPayload{Reason: "bad_password"}))
	require.NoError(t, err)

	entries := logs.FilterMessage("LoginFailed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zap.WarnLevel, entries[0].Level)
	assert.Equal(t, "bad_password", entries[0].ContextMap()["reason"])
	assert.Equal(t, "a@x.com", entries[0].ContextMap()["actor_email"])
}

func TestAuditService_LogsCatalogChange(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	dispatcher := events.NewInMemoryDispatcher()
	NewAuditService(dispatcher, zap.New(core)).RegisterHandlers()

	id := int64(1)
	err := dispatcher.Publish(context.Background(), events.New(events.EventCatalogChanged,
		events.Actor{UserID: &id, Email: "admin@x.com", Role: "ADMIN"},
		events.CatalogChangedPayload{Entity: events.EntityProduct, Action: events.ActionCreated, ID: 10}))
	require.NoError(t, err)

	fields := logs.FilterMessage("CatalogChanged").All()[0].ContextMap()
	assert.Equal(t, "product", fields["entity"])
	assert.Equal(t, "created", fields["action"])
	assert.Equal(t, int64(10), fields["entity_id"])
	assert.Equal(t, int64(1), fields["actor_id"])
}
