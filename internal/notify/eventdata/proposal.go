// internal/notify/eventdata/proposal.go
package eventdata

import (
	"context"

	"academic-notifications/internal/common/logger"
	"academic-notifications/internal/notify/participants"
	"academic-notifications/internal/storage"
)

// ProposalBuilder assembles event data for proposal transitions.
type ProposalBuilder struct {
	base
}

func NewProposalBuilder(store storage.EntityStore, parts *participants.Service, log logger.Logger) *ProposalBuilder {
	return &ProposalBuilder{base: newBase(store, parts, log, "proposal")}
}

func (b *ProposalBuilder) Build(ctx context.Context, entityID int64, eventName string) (Map, error) {
	p, err := b.store.Proposal(ctx, entityID)
	if err != nil {
		return nil, err
	}

	directorName, directorEmail := b.userNameEmail(ctx, p.DirectorID)

	m := Map{
		KeyProposalID:     itoa(p.ID),
		KeyInscriptionID:  itoa(p.InscriptionID),
		KeyFacultyID:      itoa(p.FacultyID),
		KeyFacultyName:    b.facultyName(ctx, p.FacultyID),
		KeyStageName:      b.stageName(ctx, p.StageID),
		KeyTitle:          p.Title,
		KeyReviewComments: p.ReviewComments,
		KeyDirectorName:   directorName,
		KeyDirectorEmail:  directorEmail,
	}
	b.addParticipants(ctx, m, p.InscriptionID)

	return m, nil
}
