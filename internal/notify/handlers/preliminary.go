// internal/notify/handlers/preliminary.go
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

type PreliminaryProjectHandler struct {
	base
	builder eventdata.Builder
}

func NewPreliminaryProjectHandler(store storage.EntityStore, builder eventdata.Builder, q queue.Queue, log logger.Logger) *PreliminaryProjectHandler {
	return &PreliminaryProjectHandler{
		base:    newBase(models.EntityPreliminaryProject, store, q, log),
		builder: builder,
	}
}

func (h *PreliminaryProjectHandler) HandleChange(ctx context.Context, oldEntity, newEntity interface{}) error {
	oldP, ok := oldEntity.(*models.PreliminaryProject)
	if !ok {
		return fmt.Errorf("preliminary project handler: unexpected old entity %T", oldEntity)
	}
	newP, ok := newEntity.(*models.PreliminaryProject)
	if !ok {
		return fmt.Errorf("preliminary project handler: unexpected new entity %T", newEntity)
	}

	if oldP.StageID == newP.StageID {
		return nil
	}

	event, ok := h.stageEvent(ctx, newP.StageID)
	if !ok {
		return nil
	}
	h.submit(ctx, h.builder, newP.ID, event)
	return nil
}

func (h *PreliminaryProjectHandler) HandleCreation(ctx context.Context, newEntity interface{}) error {
	newP, ok := newEntity.(*models.PreliminaryProject)
	if !ok {
		return fmt.Errorf("preliminary project handler: unexpected new entity %T", newEntity)
	}

	event, ok := h.stageEvent(ctx, newP.StageID)
	if !ok {
		return nil
	}
	h.submit(ctx, h.builder, newP.ID, event)
	return nil
}
