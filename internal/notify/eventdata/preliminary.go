// internal/notify/eventdata/preliminary.go
package eventdata

import (
	"context"

	"academic-notifications/internal/common/logger"
	"academic-notifications/internal/notify/participants"
	"academic-notifications/internal/storage"
)

// PreliminaryProjectBuilder assembles event data for preliminary project
// transitions. It reaches through the owning proposal for participants and
// faculty context.
type PreliminaryProjectBuilder struct {
	base
}

func NewPreliminaryProjectBuilder(store storage.EntityStore, parts *participants.Service, log logger.Logger) *PreliminaryProjectBuilder {
	return &PreliminaryProjectBuilder{base: newBase(store, parts, log, "preliminary_project")}
}

func (b *PreliminaryProjectBuilder) Build(ctx context.Context, entityID int64, eventName string) (Map, error) {
	pp, err := b.store.PreliminaryProject(ctx, entityID)
	if err != nil {
		return nil, err
	}

	m := Map{
		KeyProposalID:     itoa(pp.ProposalID),
		KeyStageName:      b.stageName(ctx, pp.StageID),
		KeyTitle:          pp.Title,
		KeyEvaluationDate: formatDate(pp.EvaluationDate),
		KeyObservations:   pp.Observations,
	}

	p, err := b.store.Proposal(ctx, pp.ProposalID)
	if err != nil {
		b.logger.Warn("owning proposal not found", map[string]interface{}{
			"proposalId": pp.ProposalID,
		})
		return m, nil
	}

	directorName, directorEmail := b.userNameEmail(ctx, p.DirectorID)
	m[KeyInscriptionID] = itoa(p.InscriptionID)
	m[KeyFacultyID] = itoa(p.FacultyID)
	m[KeyFacultyName] = b.facultyName(ctx, p.FacultyID)
	m[KeyDirectorName] = directorName
	m[KeyDirectorEmail] = directorEmail
	b.addParticipants(ctx, m, p.InscriptionID)

	return m, nil
}
