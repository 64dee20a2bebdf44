// internal/notify/events/events_test.go
package events

import (
	"testing"

	"academic-notifications/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestMapping(t *testing.T) {
	tests := []struct {
		name       string
		entityType models.EntityType
		stageCode  string
		expected   string
		mapped     bool
	}{
		{"inscription approved", models.EntityInscription, models.StageAprobado, InscriptionApproved, true},
		{"inscription rejected", models.EntityInscription, models.StageRechazado, InscriptionRejected, true},
		{"inscription pending is not notification-worthy", models.EntityInscription, models.StagePendiente, "", false},
		{"proposal in review", models.EntityProposal, models.StageEnRevision, ProposalInReview, true},
		{"proposal observed", models.EntityProposal, models.StageObservado, ProposalObserved, true},
		{"preliminary approved", models.EntityPreliminaryProject, models.StageAprobado, PreliminaryProjectApproved, true},
		{"final defense scheduled", models.EntityFinalProject, models.StageProgramado, FinalProjectDefenseScheduled, true},
		{"final defended", models.EntityFinalProject, models.StageSustentado, FinalProjectDefended, true},
		{"assignment completed", models.EntityTeachingAssignment, models.StageFinalizado, AssignmentStageCompleted, true},
		{"unknown stage code", models.EntityProposal, "NO_SUCH_STAGE", "", false},
		{"unknown entity type", models.EntityType("invoice"), models.StageAprobado, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event, ok := Mapping(tt.entityType, tt.stageCode)
			assert.Equal(t, tt.mapped, ok)
			assert.Equal(t, tt.expected, event)
		})
	}
}
