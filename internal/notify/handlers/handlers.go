// internal/notify/handlers/handlers.go

// Package handlers implements the per-entity change handlers. Each handler's
// decision logic is the same: did the stage code change, and does the new
// code map to an event? Everything else is data assembly and queue submission.
package handlers

import (
	"context"

	"academic-notifications/internal/common/logger"
	"academic-notifications/internal/common/metrics"
	"academic-notifications/internal/models"
	"academic-notifications/internal/notify/eventdata"
	"academic-notifications/internal/notify/events"
	"academic-notifications/internal/notify/queue"
	"academic-notifications/internal/storage"
)

// base carries what every handler needs: stage lookup, its builder, and the
// delivery queue.
type base struct {
	entityType models.EntityType
	store      storage.EntityStore
	queue      queue.Queue
	logger     logger.Logger
}

func newBase(t models.EntityType, store storage.EntityStore, q queue.Queue, log logger.Logger) base {
	return base{
		entityType: t,
		store:      store,
		queue:      q,
		logger:     log.WithFields(map[string]interface{}{"handler": string(t)}),
	}
}

// stageEvent maps a stage id to the logical event fired on entering it.
// Unmapped codes and missing stages produce no event.
func (b base) stageEvent(ctx context.Context, stageID int64) (string, bool) {
	st, err := b.store.Stage(ctx, stageID)
	if err != nil {
		b.logger.Warn("stage lookup failed", map[string]interface{}{
			"stageId": stageID, "error": err.Error(),
		})
		return "", false
	}
	event, ok := events.Mapping(b.entityType, st.Code)
	if !ok {
		metrics.EventsSkipped.WithLabelValues(string(b.entityType), "unmapped_stage").Inc()
		return "", false
	}
	return event, true
}

// submit builds the event data and hands the job to the queue. An empty data
// map suppresses the event; a build failure skips it. Neither is retried at
// this layer.
func (b base) submit(ctx context.Context, builder eventdata.Builder, entityID int64, eventName string) {
	data, err := builder.Build(ctx, entityID, eventName)
	if err != nil {
		b.logger.Error("event data build failed, event skipped", map[string]interface{}{
			"eventName": eventName, "entityId": entityID, "error": err.Error(),
		})
		return
	}
	if len(data) == 0 {
		b.logger.Info("event suppressed by builder", map[string]interface{}{
			"eventName": eventName, "entityId": entityID,
		})
		return
	}
	b.enqueue(ctx, eventName, data)
}

func (b base) enqueue(ctx context.Context, eventName string, data eventdata.Map) {
	jobID, err := b.queue.Enqueue(ctx, eventName, data)
	if err != nil {
		b.logger.Error("enqueue failed, event dropped", map[string]interface{}{
			"eventName": eventName, "error": err.Error(),
		})
		return
	}
	metrics.JobsEnqueued.WithLabelValues(eventName).Inc()
	b.logger.Info("event enqueued", map[string]interface{}{
		"eventName": eventName, "jobId": jobID,
	})
}
