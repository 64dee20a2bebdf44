// internal/notify/eventdata/inscription.go
package eventdata

import (
	"context"

	"academic-notifications/internal/common/logger"
	"academic-notifications/internal/notify/participants"
	"academic-notifications/internal/storage"
)

// InscriptionBuilder assembles event data for inscription transitions.
type InscriptionBuilder struct {
	base
}

func NewInscriptionBuilder(store storage.EntityStore, parts *participants.Service, log logger.Logger) *InscriptionBuilder {
	return &InscriptionBuilder{base: newBase(store, parts, log, "inscription")}
}

func (b *InscriptionBuilder) Build(ctx context.Context, entityID int64, eventName string) (Map, error) {
	in, err := b.store.Inscription(ctx, entityID)
	if err != nil {
		return nil, err
	}

	m := Map{
		KeyInscriptionID:    itoa(in.ID),
		KeyFacultyID:        itoa(in.FacultyID),
		KeyFacultyName:      b.facultyName(ctx, in.FacultyID),
		KeyStageName:        b.stageName(ctx, in.StageID),
		KeyModalityName:     b.modalityName(ctx, in.ModalityID),
		KeyAcademicPeriod:   b.periodName(ctx, in.AcademicPeriodID),
		KeyProposalTitle:    in.ProposalTitle,
		KeyApprovalComments: in.ApprovalComments,
	}
	b.addParticipants(ctx, m, in.ID)

	return m, nil
}
