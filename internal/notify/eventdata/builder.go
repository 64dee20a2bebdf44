// internal/notify/eventdata/builder.go

// Package eventdata assembles the flat string-keyed context map a notification
// event carries. Builders degrade gracefully: a missing related entity yields
// a default placeholder value, never a failed build.
package eventdata

import (
	"context"
	"strconv"
	"time"

	"academic-notifications/internal/common/logger"
	"academic-notifications/internal/notify/participants"
	"academic-notifications/internal/storage"
)

// Map is the per-invocation event data map consumed by recipient resolution
// and template rendering. Built fresh on every call, never persisted.
type Map map[string]string

// DateFormat is applied to every date value at build time; templates consume
// text, not temporal values.
const DateFormat = "02/01/2006"

// Well-known data keys.
const (
	KeyInscriptionID      = "InscriptionId"
	KeyProposalID         = "ProposalId"
	KeyFacultyID          = "FacultyId"
	KeyFacultyName        = "FacultyName"
	KeyStageName          = "StageName"
	KeyModalityName       = "ModalityName"
	KeyAcademicPeriod     = "AcademicPeriod"
	KeyProposalTitle      = "ProposalTitle"
	KeyApprovalComments   = "ApprovalComments"
	KeyReviewComments     = "ReviewComments"
	KeyObservations       = "Observations"
	KeyTitle              = "Title"
	KeyEvaluationDate     = "EvaluationDate"
	KeyDefenseDate        = "DefenseDate"
	KeyGrade              = "Grade"
	KeyStudentNames       = "StudentNames"
	KeyStudentEmails      = "StudentEmails"
	KeyStudentCount       = "StudentCount"
	KeyDirectorName       = "DirectorName"
	KeyDirectorEmail      = "DirectorEmail"
	KeyTeacherName        = "TeacherName"
	KeyTeacherEmail       = "TeacherEmail"
	KeyFormerTeacherName  = "FormerTeacherName"
	KeyFormerTeacherEmail = "FormerTeacherEmail"
	KeyAssignmentType     = "AssignmentType"
	KeyStartDate          = "StartDate"
)

// Default placeholder values used when a related lookup comes back missing.
const (
	DefaultModality = "Modalidad no encontrada"
	DefaultPeriod   = "Periodo no encontrado"
	DefaultFaculty  = "Facultad no encontrada"
	DefaultStage    = "Etapa no encontrada"
	DefaultUser     = "Usuario no encontrado"
)

// Builder assembles the data map for one entity kind. An empty, non-nil map
// means "suppress this event"; callers must not treat it as an error.
type Builder interface {
	Build(ctx context.Context, entityID int64, eventName string) (Map, error)
}

// base carries the lookups every concrete builder shares.
type base struct {
	store        storage.EntityStore
	participants *participants.Service
	logger       logger.Logger
}

func newBase(store storage.EntityStore, parts *participants.Service, log logger.Logger, builderName string) base {
	return base{
		store:        store,
		participants: parts,
		logger:       log.WithFields(map[string]interface{}{"builder": builderName}),
	}
}

func (b base) stageName(ctx context.Context, stageID int64) string {
	st, err := b.store.Stage(ctx, stageID)
	if err != nil {
		return DefaultStage
	}
	return st.Name
}

func (b base) modalityName(ctx context.Context, modalityID int64) string {
	m, err := b.store.Modality(ctx, modalityID)
	if err != nil {
		return DefaultModality
	}
	return m.Name
}

func (b base) periodName(ctx context.Context, periodID int64) string {
	ap, err := b.store.AcademicPeriod(ctx, periodID)
	if err != nil {
		return DefaultPeriod
	}
	return ap.Name
}

func (b base) facultyName(ctx context.Context, facultyID int64) string {
	f, err := b.store.Faculty(ctx, facultyID)
	if err != nil {
		return DefaultFaculty
	}
	return f.Name
}

func (b base) userNameEmail(ctx context.Context, userID int64) (string, string) {
	u, err := b.store.User(ctx, userID)
	if err != nil {
		return DefaultUser, ""
	}
	return u.FullName(), u.Email
}

func (b base) addParticipants(ctx context.Context, m Map, inscriptionID int64) {
	sum, err := b.participants.ByInscription(ctx, inscriptionID)
	if err != nil {
		b.logger.Warn("participant aggregation failed", map[string]interface{}{
			"inscriptionId": inscriptionID, "error": err.Error(),
		})
		return
	}
	m[KeyStudentNames] = sum.Names
	m[KeyStudentEmails] = sum.Emails
	m[KeyStudentCount] = strconv.Itoa(sum.Count)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateFormat)
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
