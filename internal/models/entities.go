// internal/models/entities.go
package models

import "time"

// EntityType tags the tracked entity kinds the change dispatcher routes on.
type EntityType string

const (
	EntityInscription        EntityType = "inscription"
	EntityProposal           EntityType = "proposal"
	EntityPreliminaryProject EntityType = "preliminary_project"
	EntityFinalProject       EntityType = "final_project"
	EntityTeachingAssignment EntityType = "teaching_assignment"
)

// Stage is the state/stage lookup row tracked entities point at. Its Code is
// the decision input for stage-to-event mapping.
type Stage struct {
	ID   int64  `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}

// Stage codes
const (
	StagePendiente  = "PENDIENTE"
	StageEnRevision = "EN_REVISION"
	StageAprobado   = "APROBADO"
	StageRechazado  = "RECHAZADO"
	StageObservado  = "OBSERVADO"
	StageProgramado = "PROGRAMADO"
	StageSustentado = "SUSTENTADO"
	StageFinalizado = "FINALIZADO"
)

type Modality struct {
	ID   int64  `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}

// Modality codes
const (
	ModalityDegreeWork = "TRABAJO_DE_GRADO"
	ModalityInternship = "PASANTIA"
	ModalityCoursework = "SEMINARIO"
)

type AcademicPeriod struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Faculty struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Role struct {
	ID   int64  `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}

// Role codes
const (
	RoleCoordinator = "COORDINATOR"
	RoleDirector    = "DIRECTOR"
	RoleSecretary   = "SECRETARY"
	RoleStudent     = "STUDENT"
	RoleTeacher     = "TEACHER"
)

type User struct {
	ID        int64   `json:"id"`
	FirstName string  `json:"firstName"`
	LastName  string  `json:"lastName"`
	Email     string  `json:"email"`
	Active    bool    `json:"active"`
	RoleIDs   []int64 `json:"roleIds"`
	FacultyID int64   `json:"facultyId"`
}

// FullName joins first and last name for display in templates.
func (u User) FullName() string {
	if u.FirstName == "" {
		return u.LastName
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// Inscription is a degree-work inscription for one or more students.
type Inscription struct {
	ID               int64      `json:"id"`
	StageID          int64      `json:"stageId"`
	ModalityID       int64      `json:"modalityId"`
	AcademicPeriodID int64      `json:"academicPeriodId"`
	FacultyID        int64      `json:"facultyId"`
	ProposalTitle    string     `json:"proposalTitle"`
	ApprovalComments string     `json:"approvalComments"`
	CreatedAt        time.Time  `json:"createdAt"`
	DeletedAt        *time.Time `json:"deletedAt,omitempty"`
}

// InscriptionStudent links a student user to an inscription.
type InscriptionStudent struct {
	InscriptionID int64 `json:"inscriptionId"`
	UserID        int64 `json:"userId"`
	Active        bool  `json:"active"`
}

type Proposal struct {
	ID             int64      `json:"id"`
	InscriptionID  int64      `json:"inscriptionId"`
	StageID        int64      `json:"stageId"`
	Title          string     `json:"title"`
	DirectorID     int64      `json:"directorId"`
	FacultyID      int64      `json:"facultyId"`
	SubmittedAt    time.Time  `json:"submittedAt"`
	ReviewComments string     `json:"reviewComments"`
	DeletedAt      *time.Time `json:"deletedAt,omitempty"`
}

type PreliminaryProject struct {
	ID             int64      `json:"id"`
	ProposalID     int64      `json:"proposalId"`
	StageID        int64      `json:"stageId"`
	Title          string     `json:"title"`
	EvaluationDate time.Time  `json:"evaluationDate"`
	Observations   string     `json:"observations"`
	DeletedAt      *time.Time `json:"deletedAt,omitempty"`
}

type FinalProject struct {
	ID          int64      `json:"id"`
	ProposalID  int64      `json:"proposalId"`
	StageID     int64      `json:"stageId"`
	Title       string     `json:"title"`
	DefenseDate time.Time  `json:"defenseDate"`
	Grade       string     `json:"grade"`
	DeletedAt   *time.Time `json:"deletedAt,omitempty"`
}

// Assignment types
const (
	AssignmentDirector   = "DIRECTOR"
	AssignmentCoDirector = "CO_DIRECTOR"
	AssignmentEvaluator  = "EVALUATOR"
)

type TeachingAssignment struct {
	ID             int64      `json:"id"`
	InscriptionID  int64      `json:"inscriptionId"`
	StageID        int64      `json:"stageId"`
	TeacherID      int64      `json:"teacherId"`
	AssignmentType string     `json:"assignmentType"`
	StartDate      time.Time  `json:"startDate"`
	DeletedAt      *time.Time `json:"deletedAt,omitempty"`
}
