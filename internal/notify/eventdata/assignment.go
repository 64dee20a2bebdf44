// internal/notify/eventdata/assignment.go
package eventdata

import (
	"context"

	"academic-notifications/internal/common/logger"
	"academic-notifications/internal/notify/participants"
	"academic-notifications/internal/storage"
)

// TeachingAssignmentBuilder assembles event data for teaching assignment
// changes, including the distinct unassignment shape sent to a replaced
// teacher.
type TeachingAssignmentBuilder struct {
	base
}

func NewTeachingAssignmentBuilder(store storage.EntityStore, parts *participants.Service, log logger.Logger) *TeachingAssignmentBuilder {
	return &TeachingAssignmentBuilder{base: newBase(store, parts, log, "teaching_assignment")}
}

func (b *TeachingAssignmentBuilder) Build(ctx context.Context, entityID int64, eventName string) (Map, error) {
	ta, err := b.store.TeachingAssignment(ctx, entityID)
	if err != nil {
		return nil, err
	}

	teacherName, teacherEmail := b.userNameEmail(ctx, ta.TeacherID)

	m := Map{
		KeyInscriptionID:  itoa(ta.InscriptionID),
		KeyStageName:      b.stageName(ctx, ta.StageID),
		KeyAssignmentType: ta.AssignmentType,
		KeyStartDate:      formatDate(ta.StartDate),
		KeyTeacherName:    teacherName,
		KeyTeacherEmail:   teacherEmail,
	}

	if in, err := b.store.Inscription(ctx, ta.InscriptionID); err == nil {
		m[KeyFacultyID] = itoa(in.FacultyID)
		m[KeyFacultyName] = b.facultyName(ctx, in.FacultyID)
		m[KeyProposalTitle] = in.ProposalTitle
	}
	b.addParticipants(ctx, m, ta.InscriptionID)

	return m, nil
}

// BuildUnassigned produces the data shape for notifying the teacher who held
// the assignment before the change. The former teacher's identity replaces
// the current one in the Teacher keys.
func (b *TeachingAssignmentBuilder) BuildUnassigned(ctx context.Context, entityID, formerTeacherID int64) (Map, error) {
	m, err := b.Build(ctx, entityID, "")
	if err != nil {
		return nil, err
	}

	currentName, currentEmail := m[KeyTeacherName], m[KeyTeacherEmail]
	formerName, formerEmail := b.userNameEmail(ctx, formerTeacherID)

	m[KeyTeacherName] = formerName
	m[KeyTeacherEmail] = formerEmail
	m[KeyFormerTeacherName] = formerName
	m[KeyFormerTeacherEmail] = formerEmail
	// keep the replacement visible to the template
	m["NewTeacherName"] = currentName
	m["NewTeacherEmail"] = currentEmail

	return m, nil
}
