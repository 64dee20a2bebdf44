// internal/notify/handlers/inscription.go
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

type InscriptionHandler struct {
	base
	builder eventdata.Builder
}

func NewInscriptionHandler(store storage.EntityStore, builder eventdata.Builder, q queue.Queue, log logger.Logger) *InscriptionHandler {
	return &InscriptionHandler{
		base:    newBase(models.EntityInscription, store, q, log),
		builder: builder,
	}
}

func (h *InscriptionHandler) HandleChange(ctx context.Context, oldEntity, newEntity interface{}) error {
	oldIn, ok := oldEntity.(*models.Inscription)
	if !ok {
		return fmt.Errorf("inscription handler: unexpected old entity %T", oldEntity)
	}
	newIn, ok := newEntity.(*models.Inscription)
	if !ok {
		return fmt.Errorf("inscription handler: unexpected new entity %T", newEntity)
	}

	if oldIn.StageID == newIn.StageID {
		return nil
	}

	event, ok := h.stageEvent(ctx, newIn.StageID)
	if !ok {
		return nil
	}
	h.submit(ctx, h.builder, newIn.ID, event)
	return nil
}

// HandleCreation is intentionally a no-op. Creation-time notification for
// inscriptions is driven by the enrollment service, which has the richer
// context (multiple students, modality, academic period) this generic layer
// never sees.
func (h *InscriptionHandler) HandleCreation(ctx context.Context, newEntity interface{}) error {
	return nil
}
