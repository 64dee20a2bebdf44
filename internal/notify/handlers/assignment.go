// internal/notify/handlers/assignment.go
package handlers

import (
	"context"
	"fmt"

	"academic-notifications/internal/common/logger"
	"academic-notifications/internal/models"
	"academic-notifications/internal/notify/eventdata"
	"academic-notifications/internal/notify/events"
	"academic-notifications/internal/notify/queue"
	"academic-notifications/internal/storage"
)

// TeachingAssignmentHandler covers the one entity whose changes fan out to
// more than one event. A teacher swap notifies the incoming teacher, the
// assigned students and the outgoing teacher in a single pass.
type TeachingAssignmentHandler struct {
	base
	builder *eventdata.TeachingAssignmentBuilder
}

func NewTeachingAssignmentHandler(store storage.EntityStore, builder *eventdata.TeachingAssignmentBuilder, q queue.Queue, log logger.Logger) *TeachingAssignmentHandler {
	return &TeachingAssignmentHandler{
		base:    newBase(models.EntityTeachingAssignment, store, q, log),
		builder: builder,
	}
}

func (h *TeachingAssignmentHandler) HandleChange(ctx context.Context, oldEntity, newEntity interface{}) error {
	oldTA, ok := oldEntity.(*models.TeachingAssignment)
	if !ok {
		return fmt.Errorf("teaching assignment handler: unexpected old entity %T", oldEntity)
	}
	newTA, ok := newEntity.(*models.TeachingAssignment)
	if !ok {
		return fmt.Errorf("teaching assignment handler: unexpected new entity %T", newEntity)
	}

	switch {
	case oldTA.TeacherID != newTA.TeacherID:
		h.notifyAssignment(ctx, newTA.ID)
		if oldTA.TeacherID != 0 {
			h.notifyUnassignment(ctx, newTA.ID, oldTA.TeacherID)
		}
	case oldTA.AssignmentType != newTA.AssignmentType:
		// Same teacher in a new role. Re-notify without an unassignment.
		h.notifyAssignment(ctx, newTA.ID)
	}

	if oldTA.StageID != newTA.StageID {
		if event, ok := h.stageEvent(ctx, newTA.StageID); ok {
			h.submit(ctx, h.builder, newTA.ID, event)
		}
	}
	return nil
}

func (h *TeachingAssignmentHandler) HandleCreation(ctx context.Context, newEntity interface{}) error {
	newTA, ok := newEntity.(*models.TeachingAssignment)
	if !ok {
		return fmt.Errorf("teaching assignment handler: unexpected new entity %T", newEntity)
	}
	h.notifyAssignment(ctx, newTA.ID)
	return nil
}

// notifyAssignment fires the pair of events every assignment produces: one
// addressed to the teacher, one addressed to the students.
func (h *TeachingAssignmentHandler) notifyAssignment(ctx context.Context, entityID int64) {
	h.submit(ctx, h.builder, entityID, events.TeacherAssigned)
	h.submit(ctx, h.builder, entityID, events.StudentsTeacherAssigned)
}

func (h *TeachingAssignmentHandler) notifyUnassignment(ctx context.Context, entityID, formerTeacherID int64) {
	data, err := h.builder.BuildUnassigned(ctx, entityID, formerTeacherID)
	if err != nil {
		h.logger.Error("event data build failed, event skipped", map[string]interface{}{
			"eventName": events.TeacherUnassigned, "entityId": entityID, "error": err.Error(),
		})
		return
	}
	h.enqueue(ctx, events.TeacherUnassigned, data)
}
