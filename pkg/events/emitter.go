// Package events publishes record lifecycle changes for downstream
// consumers. Emission is best effort: a broker outage never fails the
// request that caused the change.
package events

import (
	"context"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/poppy/pkg/kafka"
	"github.com/Ramsey-B/poppy/pkg/metrics"
	"github.com/Ramsey-B/poppy/pkg/models"
	"github.com/Ramsey-B/poppy/pkg/schema"
	"github.com/Ramsey-B/poppy/pkg/tracing"
)

const (
	EventTypeRecordCreated = "record.created"
	EventTypeRecordUpdated = "record.updated"
	EventTypeRecordDeleted = "record.deleted"
)

// Emitter publishes record change events. A nil producer disables emission
// entirely, so callers never need to check whether events are configured.
type Emitter struct {
	producer *kafka.Producer
	logger   ectologger.Logger
}

// NewEmitter creates a new event emitter. producer may be nil.
func NewEmitter(producer *kafka.Producer, logger ectologger.Logger) *Emitter {
	return &Emitter{
		producer: producer,
		logger:   logger,
	}
}

// RecordCreated emits a record.created event for a freshly inserted row.
func (e *Emitter) RecordCreated(ctx context.Context, table schema.Table, row models.Row) {
	e.emit(ctx, EventTypeRecordCreated, table, row)
}

// RecordUpdated emits a record.updated event with the post-update row.
func (e *Emitter) RecordUpdated(ctx context.Context, table schema.Table, row models.Row) {
	e.emit(ctx, EventTypeRecordUpdated, table, row)
}

// RecordDeleted emits a record.deleted event with the removed row.
func (e *Emitter) RecordDeleted(ctx context.Context, table schema.Table, row models.Row) {
	e.emit(ctx, EventTypeRecordDeleted, table, row)
}

func (e *Emitter) emit(ctx context.Context, eventType string, table schema.Table, row models.Row) {
	if e == nil || e.producer == nil {
		return
	}

	ctx, span := tracing.StartSpan(ctx, "events.Emitter.emit")
	defer span.End()

	event := &kafka.RecordEvent{
		EventType:  eventType,
		Table:      table.Name,
		PrimaryKey: table.PrimaryKey,
		Row:        row,
	}
	if row != nil {
		event.KeyValue = row[table.PrimaryKey]
	}

	if err := e.producer.PublishRecordEvent(ctx, event); err != nil {
		metrics.EventsEmittedTotal.WithLabelValues(eventType, "error").Inc()
		e.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"event_type": eventType,
			"table":      table.Name,
		}).Error("Failed to emit record event")
		return
	}

	metrics.EventsEmittedTotal.WithLabelValues(eventType, "success").Inc()
}
