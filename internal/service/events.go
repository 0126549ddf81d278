package service

import (
	"context"
	"sync"

	"saas-commerce/internal/model"

	"go.uber.org/zap"
)

// EventPublisher receives domain events after their transaction committed.
// Implementations must not block the caller for long and never fail it.
type EventPublisher interface {
	Publish(ctx context.Context, events ...model.Event)
}

type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, ...model.Event) {}

// LogPublisher writes every event to zap.
type LogPublisher struct {
	Log *zap.Logger
}

func (p LogPublisher) Publish(_ context.Context, events ...model.Event) {
	for _, e := range events {
		p.Log.Info("domain event",
			zap.String("type", string(e.Type)),
			zap.String("tenant_id", e.TenantID.String()),
			zap.String("entity_id", e.EntityID.String()),
			zap.String("actor", e.Actor),
			zap.Any("data", e.Data),
		)
	}
}

// MultiPublisher fans events out to several publishers in order.
type MultiPublisher []EventPublisher

func (m MultiPublisher) Publish(ctx context.Context, events ...model.Event) {
	for _, p := range m {
		p.Publish(ctx, events...)
	}
}

// RecordingPublisher keeps events in memory.
type RecordingPublisher struct {
	mu     sync.Mutex
	events []model.Event
}

func (r *RecordingPublisher) Publish(_ context.Context, events ...model.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, events...)
}

func (r *RecordingPublisher) Events() []model.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.Event(nil), r.events...)
}

func (r *RecordingPublisher) Types() []model.EventType {
	events := r.Events()
	types := make([]model.EventType, 0, len(events))
	for _, e := range events {
		types = append(types, e.Type)
	}
	return types
}
