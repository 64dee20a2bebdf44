// internal/notify/handlers/handlers_test.go
package handlers

import (
	"context"
	"errors"
	"testing"
	"time"

	"academic-notifications/internal/common/logger"
	"academic-notifications/internal/models"
	"academic-notifications/internal/notify/eventdata"
	"academic-notifications/internal/notify/events"
	"academic-notifications/internal/notify/participants"
	"academic-notifications/internal/notify/queue"
	"academic-notifications/internal/storage"

	"github.com/stretchr/testify/assert"
)

// ==========================
// Test Helper Functions
// ==========================

func newFixtureStore() *storage.MemoryStore {
	store := storage.NewMemoryStore()
	store.PutStage(models.Stage{ID: 1, Code: models.StagePendiente, Name: "Pendiente"})
	store.PutStage(models.Stage{ID: 2, Code: models.StageEnRevision, Name: "En revisión"})
	store.PutStage(models.Stage{ID: 3, Code: models.StageAprobado, Name: "Aprobado"})
	store.PutStage(models.Stage{ID: 4, Code: models.StageRechazado, Name: "Rechazado"})
	store.PutStage(models.Stage{ID: 6, Code: models.StageProgramado, Name: "Sustentación programada"})
	store.PutStage(models.Stage{ID: 8, Code: models.StageFinalizado, Name: "Finalizado"})
	store.PutModality(models.Modality{ID: 1, Code: models.ModalityDegreeWork, Name: "Trabajo de Grado"})
	store.PutModality(models.Modality{ID: 2, Code: models.ModalityInternship, Name: "Pasantía"})
	store.PutAcademicPeriod(models.AcademicPeriod{ID: 1, Name: "2026-I"})
	store.PutFaculty(models.Faculty{ID: 4, Name: "Ingeniería"})
	store.PutUser(models.User{ID: 1, FirstName: "Ana", LastName: "Diaz", Email: "ana@uni.edu", Active: true})
	store.PutUser(models.User{ID: 7, FirstName: "Carlos", LastName: "Pinto", Email: "cpinto@uni.edu", Active: true})
	store.PutUser(models.User{ID: 9, FirstName: "Marta", LastName: "Rojas", Email: "mrojas@uni.edu", Active: true})
	store.PutInscription(models.Inscription{ID: 10, StageID: 3, ModalityID: 1, AcademicPeriodID: 1, FacultyID: 4})
	store.PutInscriptionStudents(10, 1)
	return store
}

func newInscriptionFixture(t *testing.T) (*InscriptionHandler, *storage.MemoryStore, *queue.MemoryQueue) {
	store := newFixtureStore()
	q := queue.NewMemoryQueue()
	log := logger.NewTestLogger(t)
	builder := eventdata.NewInscriptionBuilder(store, participants.NewService(store, log), log)
	return NewInscriptionHandler(store, builder, q, log), store, q
}

// ==========================
// Inscription Handler Tests
// ==========================

func TestInscriptionHandler_StageTransitionEnqueues(t *testing.T) {
	tests := []struct {
		name       string
		oldStageID int64
		newStageID int64
		expected   []string
	}{
		{"pending to approved", 1, 3, []string{events.InscriptionApproved}},
		{"pending to rejected", 1, 4, []string{events.InscriptionRejected}},
		{"same stage is a no-op", 3, 3, nil},
		{"transition into unmapped stage is a no-op", 3, 1, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, store, q := newInscriptionFixture(t)
			store.PutInscription(models.Inscription{
				ID: 10, StageID: tt.newStageID, ModalityID: 1, AcademicPeriodID: 1, FacultyID: 4,
			})

			oldIn := &models.Inscription{ID: 10, StageID: tt.oldStageID}
			newIn := &models.Inscription{ID: 10, StageID: tt.newStageID}

			err := handler.HandleChange(context.Background(), oldIn, newIn)
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, q.EventNames())
		})
	}
}

func TestInscriptionHandler_CreationIsNoOp(t *testing.T) {
	handler, _, q := newInscriptionFixture(t)

	err := handler.HandleCreation(context.Background(), &models.Inscription{ID: 10, StageID: 1})
	assert.NoError(t, err)
	assert.Empty(t, q.Events)
}

func TestInscriptionHandler_WrongEntityType(t *testing.T) {
	handler, _, q := newInscriptionFixture(t)

	err := handler.HandleChange(context.Background(), &models.Proposal{}, &models.Proposal{})
	assert.Error(t, err)
	assert.Empty(t, q.Events)
}

func TestInscriptionHandler_EnqueueFailureDoesNotError(t *testing.T) {
	handler, _, q := newInscriptionFixture(t)
	q.Err = errors.New("broker unavailable")

	oldIn := &models.Inscription{ID: 10, StageID: 1}
	newIn := &models.Inscription{ID: 10, StageID: 3}

	// delivery failures are logged and dropped, never surfaced to the caller
	err := handler.HandleChange(context.Background(), oldIn, newIn)
	assert.NoError(t, err)
	assert.Empty(t, q.Events)
}

// ==========================
// Proposal Handler Tests
// ==========================

func TestProposalHandler_CreationFiresStageEvent(t *testing.T) {
	store := newFixtureStore()
	store.PutProposal(models.Proposal{ID: 20, InscriptionID: 10, StageID: 2, DirectorID: 7, FacultyID: 4})
	q := queue.NewMemoryQueue()
	log := logger.NewTestLogger(t)
	builder := eventdata.NewProposalBuilder(store, participants.NewService(store, log), log)
	handler := NewProposalHandler(store, builder, q, log)

	err := handler.HandleCreation(context.Background(), &models.Proposal{ID: 20, StageID: 2})
	assert.NoError(t, err)
	assert.Equal(t, []string{events.ProposalInReview}, q.EventNames())
}

// ==========================
// Final Project Handler Tests
// ==========================

func TestFinalProjectHandler_DefenseSuppressedForInternship(t *testing.T) {
	store := newFixtureStore()
	store.PutInscription(models.Inscription{ID: 10, StageID: 3, ModalityID: 2, AcademicPeriodID: 1, FacultyID: 4})
	store.PutProposal(models.Proposal{ID: 20, InscriptionID: 10, StageID: 3, DirectorID: 7, FacultyID: 4})
	store.PutFinalProject(models.FinalProject{ID: 30, ProposalID: 20, StageID: 6})
	q := queue.NewMemoryQueue()
	log := logger.NewTestLogger(t)
	builder := eventdata.NewFinalProjectBuilder(store, participants.NewService(store, log), log)
	handler := NewFinalProjectHandler(store, builder, q, log)

	oldFP := &models.FinalProject{ID: 30, StageID: 3}
	newFP := &models.FinalProject{ID: 30, StageID: 6}

	err := handler.HandleChange(context.Background(), oldFP, newFP)
	assert.NoError(t, err)
	assert.Empty(t, q.Events)
}

// ==========================
// Teaching Assignment Handler Tests
// ==========================

func newAssignmentFixture(t *testing.T) (*TeachingAssignmentHandler, *storage.MemoryStore, *queue.MemoryQueue) {
	store := newFixtureStore()
	store.PutTeachingAssignment(models.TeachingAssignment{
		ID: 50, InscriptionID: 10, StageID: 3, TeacherID: 9,
		AssignmentType: models.AssignmentDirector,
		StartDate:      time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
	})
	q := queue.NewMemoryQueue()
	log := logger.NewTestLogger(t)
	builder := eventdata.NewTeachingAssignmentBuilder(store, participants.NewService(store, log), log)
	return NewTeachingAssignmentHandler(store, builder, q, log), store, q
}

func TestTeachingAssignmentHandler_TeacherSwapFiresThreeEvents(t *testing.T) {
	handler, _, q := newAssignmentFixture(t)

	oldTA := &models.TeachingAssignment{ID: 50, StageID: 3, TeacherID: 7, AssignmentType: models.AssignmentDirector}
	newTA := &models.TeachingAssignment{ID: 50, StageID: 3, TeacherID: 9, AssignmentType: models.AssignmentDirector}

	err := handler.HandleChange(context.Background(), oldTA, newTA)
	assert.NoError(t, err)
	assert.Equal(t, []string{
		events.TeacherAssigned,
		events.StudentsTeacherAssigned,
		events.TeacherUnassigned,
	}, q.EventNames())

	// the unassignment job carries the outgoing teacher
	unassigned := q.Events[2]
	assert.Equal(t, "cpinto@uni.edu", unassigned.Data[eventdata.KeyTeacherEmail])
	assert.Equal(t, "cpinto@uni.edu", unassigned.Data[eventdata.KeyFormerTeacherEmail])
	assert.Equal(t, "mrojas@uni.edu", unassigned.Data["NewTeacherEmail"])
}

func TestTeachingAssignmentHandler_FirstAssignmentHasNoUnassign(t *testing.T) {
	handler, _, q := newAssignmentFixture(t)

	oldTA := &models.TeachingAssignment{ID: 50, StageID: 3, TeacherID: 0}
	newTA := &models.TeachingAssignment{ID: 50, StageID: 3, TeacherID: 9, AssignmentType: models.AssignmentDirector}

	err := handler.HandleChange(context.Background(), oldTA, newTA)
	assert.NoError(t, err)
	assert.Equal(t, []string{
		events.TeacherAssigned,
		events.StudentsTeacherAssigned,
	}, q.EventNames())
}

func TestTeachingAssignmentHandler_TypeChangeSameTeacher(t *testing.T) {
	handler, _, q := newAssignmentFixture(t)

	oldTA := &models.TeachingAssignment{ID: 50, StageID: 3, TeacherID: 9, AssignmentType: models.AssignmentEvaluator}
	newTA := &models.TeachingAssignment{ID: 50, StageID: 3, TeacherID: 9, AssignmentType: models.AssignmentDirector}

	err := handler.HandleChange(context.Background(), oldTA, newTA)
	assert.NoError(t, err)
	assert.Equal(t, []string{
		events.TeacherAssigned,
		events.StudentsTeacherAssigned,
	}, q.EventNames())
}

func TestTeachingAssignmentHandler_NoRelevantChange(t *testing.T) {
	handler, _, q := newAssignmentFixture(t)

	same := &models.TeachingAssignment{ID: 50, StageID: 3, TeacherID: 9, AssignmentType: models.AssignmentDirector}

	err := handler.HandleChange(context.Background(), same, same)
	assert.NoError(t, err)
	assert.Empty(t, q.Events)
}

func TestTeachingAssignmentHandler_StageCompleted(t *testing.T) {
	handler, store, q := newAssignmentFixture(t)
	store.PutTeachingAssignment(models.TeachingAssignment{
		ID: 50, InscriptionID: 10, StageID: 8, TeacherID: 9,
		AssignmentType: models.AssignmentDirector,
	})

	oldTA := &models.TeachingAssignment{ID: 50, StageID: 3, TeacherID: 9, AssignmentType: models.AssignmentDirector}
	newTA := &models.TeachingAssignment{ID: 50, StageID: 8, TeacherID: 9, AssignmentType: models.AssignmentDirector}

	err := handler.HandleChange(context.Background(), oldTA, newTA)
	assert.NoError(t, err)
	assert.Equal(t, []string{events.AssignmentStageCompleted}, q.EventNames())
}

func TestTeachingAssignmentHandler_Creation(t *testing.T) {
	handler, _, q := newAssignmentFixture(t)

	err := handler.HandleCreation(context.Background(), &models.TeachingAssignment{ID: 50, StageID: 3, TeacherID: 9})
	assert.NoError(t, err)
	assert.Equal(t, []string{
		events.TeacherAssigned,
		events.StudentsTeacherAssigned,
	}, q.EventNames())
}
