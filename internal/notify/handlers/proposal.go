// internal/notify/handlers/proposal.go
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

type ProposalHandler struct {
	base
	builder eventdata.Builder
}

func NewProposalHandler(store storage.EntityStore, builder eventdata.Builder, q queue.Queue, log logger.Logger) *ProposalHandler {
	return &ProposalHandler{
		base:    newBase(models.EntityProposal, store, q, log),
		builder: builder,
	}
}

func (h *ProposalHandler) HandleChange(ctx context.Context, oldEntity, newEntity interface{}) error {
	oldP, ok := oldEntity.(*models.Proposal)
	if !ok {
		return fmt.Errorf("proposal handler: unexpected old entity %T", oldEntity)
	}
	newP, ok := newEntity.(*models.Proposal)
	if !ok {
		return fmt.Errorf("proposal handler: unexpected new entity %T", newEntity)
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

// HandleCreation fires the event mapped to the stage the proposal was
// created into, if any.
func (h *ProposalHandler) HandleCreation(ctx context.Context, newEntity interface{}) error {
	newP, ok := newEntity.(*models.Proposal)
	if !ok {
		return fmt.Errorf("proposal handler: unexpected new entity %T", newEntity)
	}

	event, ok := h.stageEvent(ctx, newP.StageID)
	if !ok {
		return nil
	}
	h.submit(ctx, h.builder, newP.ID, event)
	return nil
}
