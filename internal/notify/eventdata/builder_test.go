// internal/notify/eventdata/builder_test.go
package eventdata

import (
	"context"
	"testing"
	"time"

	"academic-notifications/internal/common/logger"
	"academic-notifications/internal/models"
	"academic-notifications/internal/notify/events"
	"academic-notifications/internal/notify/participants"
	"academic-notifications/internal/storage"

	"github.com/stretchr/testify/assert"
)

// ==========================
// Test Helper Functions
// ==========================

func seedBase(store *storage.MemoryStore) {
	store.PutStage(models.Stage{ID: 3, Code: models.StageAprobado, Name: "Aprobado"})
	store.PutStage(models.Stage{ID: 6, Code: models.StageProgramado, Name: "Sustentación programada"})
	store.PutModality(models.Modality{ID: 1, Code: models.ModalityDegreeWork, Name: "Trabajo de Grado"})
	store.PutModality(models.Modality{ID: 2, Code: models.ModalityInternship, Name: "Pasantía"})
	store.PutAcademicPeriod(models.AcademicPeriod{ID: 1, Name: "2026-I"})
	store.PutFaculty(models.Faculty{ID: 4, Name: "Ingeniería"})
	store.PutUser(models.User{ID: 1, FirstName: "Ana", LastName: "Diaz", Email: "ana@uni.edu", Active: true})
	store.PutUser(models.User{ID: 2, FirstName: "Luis", LastName: "Mora", Email: "luis@uni.edu", Active: true})
	store.PutUser(models.User{ID: 7, FirstName: "Carlos", LastName: "Pinto", Email: "cpinto@uni.edu", Active: true})
	store.PutUser(models.User{ID: 9, FirstName: "Marta", LastName: "Rojas", Email: "mrojas@uni.edu", Active: true})
}

func seededInscriptionStore() *storage.MemoryStore {
	store := storage.NewMemoryStore()
	seedBase(store)
	store.PutInscription(models.Inscription{
		ID: 10, StageID: 3, ModalityID: 1, AcademicPeriodID: 1, FacultyID: 4,
		ProposalTitle:    "Sistema de Riego",
		ApprovalComments: "Cumple requisitos",
	})
	store.PutInscriptionStudents(10, 1, 2)
	return store
}

// ==========================
// Inscription Builder Tests
// ==========================

func TestInscriptionBuilder_Build(t *testing.T) {
	store := seededInscriptionStore()
	b := NewInscriptionBuilder(store, participants.NewService(store, logger.NewTestLogger(t)), logger.NewTestLogger(t))

	data, err := b.Build(context.Background(), 10, events.InscriptionApproved)
	assert.NoError(t, err)
	assert.Equal(t, "10", data[KeyInscriptionID])
	assert.Equal(t, "Aprobado", data[KeyStageName])
	assert.Equal(t, "Trabajo de Grado", data[KeyModalityName])
	assert.Equal(t, "2026-I", data[KeyAcademicPeriod])
	assert.Equal(t, "Ingeniería", data[KeyFacultyName])
	assert.Equal(t, "Sistema de Riego", data[KeyProposalTitle])
	assert.Equal(t, "Cumple requisitos", data[KeyApprovalComments])
	assert.Equal(t, "Ana Diaz, Luis Mora", data[KeyStudentNames])
	assert.Equal(t, "ana@uni.edu, luis@uni.edu", data[KeyStudentEmails])
	assert.Equal(t, "2", data[KeyStudentCount])
}

func TestInscriptionBuilder_Build_Idempotent(t *testing.T) {
	store := seededInscriptionStore()
	b := NewInscriptionBuilder(store, participants.NewService(store, logger.NewTestLogger(t)), logger.NewTestLogger(t))

	first, err := b.Build(context.Background(), 10, events.InscriptionApproved)
	assert.NoError(t, err)
	second, err := b.Build(context.Background(), 10, events.InscriptionApproved)
	assert.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestInscriptionBuilder_Build_DefaultsOnMissingLookups(t *testing.T) {
	store := storage.NewMemoryStore()
	store.PutInscription(models.Inscription{
		ID: 10, StageID: 99, ModalityID: 99, AcademicPeriodID: 99, FacultyID: 99,
	})
	b := NewInscriptionBuilder(store, participants.NewService(store, logger.NewTestLogger(t)), logger.NewTestLogger(t))

	data, err := b.Build(context.Background(), 10, events.InscriptionApproved)
	assert.NoError(t, err)
	assert.Equal(t, DefaultStage, data[KeyStageName])
	assert.Equal(t, DefaultModality, data[KeyModalityName])
	assert.Equal(t, DefaultPeriod, data[KeyAcademicPeriod])
	assert.Equal(t, DefaultFaculty, data[KeyFacultyName])
}

func TestInscriptionBuilder_Build_MissingEntity(t *testing.T) {
	store := storage.NewMemoryStore()
	b := NewInscriptionBuilder(store, participants.NewService(store, logger.NewTestLogger(t)), logger.NewTestLogger(t))

	_, err := b.Build(context.Background(), 404, events.InscriptionApproved)
	assert.Error(t, err)
	assert.True(t, storage.IsNotFound(err))
}

// ==========================
// Final Project Builder Tests
// ==========================

func seededFinalStore(modalityID int64) *storage.MemoryStore {
	store := storage.NewMemoryStore()
	seedBase(store)
	store.PutInscription(models.Inscription{
		ID: 10, StageID: 3, ModalityID: modalityID, AcademicPeriodID: 1, FacultyID: 4,
	})
	store.PutInscriptionStudents(10, 1, 2)
	store.PutProposal(models.Proposal{ID: 20, InscriptionID: 10, StageID: 3, DirectorID: 7, FacultyID: 4, Title: "Sistema de Riego"})
	store.PutFinalProject(models.FinalProject{
		ID: 30, ProposalID: 20, StageID: 6, Title: "Sistema de Riego",
		DefenseDate: time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC),
		Grade:       "4.5",
	})
	return store
}

func TestFinalProjectBuilder_DefenseEventForDegreeWork(t *testing.T) {
	store := seededFinalStore(1)
	b := NewFinalProjectBuilder(store, participants.NewService(store, logger.NewTestLogger(t)), logger.NewTestLogger(t))

	data, err := b.Build(context.Background(), 30, events.FinalProjectDefenseScheduled)
	assert.NoError(t, err)
	assert.NotEmpty(t, data)
	assert.Equal(t, "15/09/2026", data[KeyDefenseDate])
	assert.Equal(t, "Carlos Pinto", data[KeyDirectorName])
	assert.Equal(t, "cpinto@uni.edu", data[KeyDirectorEmail])
	assert.Equal(t, "ana@uni.edu, luis@uni.edu", data[KeyStudentEmails])
}

func TestFinalProjectBuilder_DefenseEventSuppressedForInternship(t *testing.T) {
	store := seededFinalStore(2)
	b := NewFinalProjectBuilder(store, participants.NewService(store, logger.NewTestLogger(t)), logger.NewTestLogger(t))

	data, err := b.Build(context.Background(), 30, events.FinalProjectDefenseScheduled)
	assert.NoError(t, err)
	assert.Empty(t, data)
}

func TestFinalProjectBuilder_ApprovalNotGatedByModality(t *testing.T) {
	store := seededFinalStore(2)
	b := NewFinalProjectBuilder(store, participants.NewService(store, logger.NewTestLogger(t)), logger.NewTestLogger(t))

	data, err := b.Build(context.Background(), 30, events.FinalProjectApproved)
	assert.NoError(t, err)
	assert.NotEmpty(t, data)
	assert.Equal(t, "Sistema de Riego", data[KeyTitle])
}

// ==========================
// Teaching Assignment Builder Tests
// ==========================

func seededAssignmentStore() *storage.MemoryStore {
	store := storage.NewMemoryStore()
	seedBase(store)
	store.PutInscription(models.Inscription{
		ID: 10, StageID: 3, ModalityID: 1, AcademicPeriodID: 1, FacultyID: 4,
		ProposalTitle: "Sistema de Riego",
	})
	store.PutInscriptionStudents(10, 1, 2)
	store.PutTeachingAssignment(models.TeachingAssignment{
		ID: 50, InscriptionID: 10, StageID: 3, TeacherID: 9,
		AssignmentType: models.AssignmentDirector,
		StartDate:      time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
	})
	return store
}

func TestTeachingAssignmentBuilder_Build(t *testing.T) {
	store := seededAssignmentStore()
	b := NewTeachingAssignmentBuilder(store, participants.NewService(store, logger.NewTestLogger(t)), logger.NewTestLogger(t))

	data, err := b.Build(context.Background(), 50, events.TeacherAssigned)
	assert.NoError(t, err)
	assert.Equal(t, "Marta Rojas", data[KeyTeacherName])
	assert.Equal(t, "mrojas@uni.edu", data[KeyTeacherEmail])
	assert.Equal(t, models.AssignmentDirector, data[KeyAssignmentType])
	assert.Equal(t, "01/08/2026", data[KeyStartDate])
	assert.Equal(t, "Sistema de Riego", data[KeyProposalTitle])
	assert.Equal(t, "ana@uni.edu, luis@uni.edu", data[KeyStudentEmails])
}

func TestTeachingAssignmentBuilder_BuildUnassigned(t *testing.T) {
	store := seededAssignmentStore()
	b := NewTeachingAssignmentBuilder(store, participants.NewService(store, logger.NewTestLogger(t)), logger.NewTestLogger(t))

	data, err := b.BuildUnassigned(context.Background(), 50, 7)
	assert.NoError(t, err)
	// the former teacher takes over the Teacher keys
	assert.Equal(t, "Carlos Pinto", data[KeyTeacherName])
	assert.Equal(t, "cpinto@uni.edu", data[KeyTeacherEmail])
	assert.Equal(t, "Carlos Pinto", data[KeyFormerTeacherName])
	assert.Equal(t, "cpinto@uni.edu", data[KeyFormerTeacherEmail])
	assert.Equal(t, "Marta Rojas", data["NewTeacherName"])
	assert.Equal(t, "mrojas@uni.edu", data["NewTeacherEmail"])
}

func TestFormatDate(t *testing.T) {
	assert.Equal(t, "", formatDate(time.Time{}))
	assert.Equal(t, "02/01/2026", formatDate(time.Date(2026, 1, 2, 10, 30, 0, 0, time.UTC)))
}
