// internal/notify/events/events.go

// Package events holds the logical event names and the stage-code-to-event
// mapping tables. The tables are plain data: handlers decide by lookup, not
// by branching, and the mapping is testable in isolation.
package events

import "academic-notifications/internal/models"

// Event names. Stable strings; used as configuration lookup keys and queue
// payload tags.
const (
	InscriptionCreated  = "INSCRIPTION_CREATED"
	InscriptionApproved = "INSCRIPTION_APPROVED"
	InscriptionRejected = "INSCRIPTION_REJECTED"

	ProposalInReview = "PROPOSAL_IN_REVIEW"
	ProposalApproved = "PROPOSAL_APPROVED"
	ProposalRejected = "PROPOSAL_REJECTED"
	ProposalObserved = "PROPOSAL_OBSERVED"

	PreliminaryProjectApproved = "PRELIMINARY_PROJECT_APPROVED"
	PreliminaryProjectObserved = "PRELIMINARY_PROJECT_OBSERVED"

	FinalProjectApproved         = "FINAL_PROJECT_APPROVED"
	FinalProjectDefenseScheduled = "FINAL_PROJECT_DEFENSE_SCHEDULED"
	FinalProjectDefended         = "FINAL_PROJECT_DEFENDED"

	TeacherAssigned          = "TEACHER_ASSIGNED"
	TeacherUnassigned        = "TEACHER_UNASSIGNED"
	StudentsTeacherAssigned  = "STUDENTS_TEACHER_ASSIGNED"
	AssignmentStageCompleted = "ASSIGNMENT_STAGE_COMPLETED"
)

// stageEvents maps entity kind and new-stage code to the event that fires on
// entering that stage. Codes with no entry are not notification-worthy.
var stageEvents = map[models.EntityType]map[string]string{
	models.EntityInscription: {
		models.StageAprobado:  InscriptionApproved,
		models.StageRechazado: InscriptionRejected,
	},
	models.EntityProposal: {
		models.StageEnRevision: ProposalInReview,
		models.StageAprobado:   ProposalApproved,
		models.StageRechazado:  ProposalRejected,
		models.StageObservado:  ProposalObserved,
	},
	models.EntityPreliminaryProject: {
		models.StageAprobado:  PreliminaryProjectApproved,
		models.StageObservado: PreliminaryProjectObserved,
	},
	models.EntityFinalProject: {
		models.StageAprobado:   FinalProjectApproved,
		models.StageProgramado: FinalProjectDefenseScheduled,
		models.StageSustentado: FinalProjectDefended,
	},
	models.EntityTeachingAssignment: {
		models.StageFinalizado: AssignmentStageCompleted,
	},
}

// Mapping returns the event fired when an entity of the given kind enters the
// stage identified by code. The second result is false for unmapped codes.
func Mapping(entityType models.EntityType, stageCode string) (string, bool) {
	table, ok := stageEvents[entityType]
	if !ok {
		return "", false
	}
	event, ok := table[stageCode]
	return event, ok
}
