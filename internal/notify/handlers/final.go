// internal/notify/handlers/final.go
package handlers

import (
	"context"
	"fmt"

	"academic-notifications/internal/common/logger"
	"academic-notifications/internal/models"
	"academic-notifications/internal/notify/eventdata"
	"academic-notifications/internal/notify/queue"
	"academic-notifications/internal/storage"
)

type FinalProjectHandler struct {
	base
	builder eventdata.Builder
}

func NewFinalProjectHandler(store storage.EntityStore, builder eventdata.Builder, q queue.Queue, log logger.Logger) *FinalProjectHandler {
	return &FinalProjectHandler{
		base:    newBase(models.EntityFinalProject, store, q, log),
		builder: builder,
	}
}

func (h *FinalProjectHandler) HandleChange(ctx context.Context, oldEntity, newEntity interface{}) error {
	oldF, ok := oldEntity.(*models.FinalProject)
	if !ok {
		return fmt.Errorf("final project handler: unexpected old entity %T", oldEntity)
	}
	newF, ok := newEntity.(*models.FinalProject)
	if !ok {
		return fmt.Errorf("final project handler: unexpected new entity %T", newEntity)
	}

	if oldF.StageID == newF.StageID {
		return nil
	}

	event, ok := h.stageEvent(ctx, newF.StageID)
	if !ok {
		return nil
	}
	// The builder suppresses defense events for modalities without a defense
	// step, so the handler enqueues unconditionally here.
	h.submit(ctx, h.builder, newF.ID, event)
	return nil
}

func (h *FinalProjectHandler) HandleCreation(ctx context.Context, newEntity interface{}) error {
	newF, ok := newEntity.(*models.FinalProject)
	if !ok {
		return fmt.Errorf("final project handler: unexpected new entity %T", newEntity)
	}

	event, ok := h.stageEvent(ctx, newF.StageID)
	if !ok {
		return nil
	}
	h.submit(ctx, h.builder, newF.ID, event)
	return nil
}
