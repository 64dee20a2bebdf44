// internal/notify/eventdata/final.go
package eventdata

import (
	"context"

	"academic-notifications/internal/common/logger"
	"academic-notifications/internal/models"
	"academic-notifications/internal/notify/events"
	"academic-notifications/internal/notify/participants"
	"academic-notifications/internal/storage"
)

// FinalProjectBuilder assembles event data for final project transitions.
// Defense events only apply to the degree-work modality; for any other
// modality the builder returns an empty map, which callers treat as
// "suppress this event".
type FinalProjectBuilder struct {
	base
}

func NewFinalProjectBuilder(store storage.EntityStore, parts *participants.Service, log logger.Logger) *FinalProjectBuilder {
	return &FinalProjectBuilder{base: newBase(store, parts, log, "final_project")}
}

func (b *FinalProjectBuilder) Build(ctx context.Context, entityID int64, eventName string) (Map, error) {
	fp, err := b.store.FinalProject(ctx, entityID)
	if err != nil {
		return nil, err
	}

	m := Map{
		KeyProposalID:  itoa(fp.ProposalID),
		KeyStageName:   b.stageName(ctx, fp.StageID),
		KeyTitle:       fp.Title,
		KeyDefenseDate: formatDate(fp.DefenseDate),
		KeyGrade:       fp.Grade,
	}

	p, err := b.store.Proposal(ctx, fp.ProposalID)
	if err != nil {
		b.logger.Warn("owning proposal not found", map[string]interface{}{
			"proposalId": fp.ProposalID,
		})
		return m, nil
	}

	if b.defenseGated(eventName) && !b.hasDefense(ctx, p.InscriptionID) {
		b.logger.Info("defense event suppressed for modality", map[string]interface{}{
			"finalProjectId": fp.ID, "eventName": eventName,
		})
		return Map{}, nil
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

func (b *FinalProjectBuilder) defenseGated(eventName string) bool {
	return eventName == events.FinalProjectDefenseScheduled || eventName == events.FinalProjectDefended
}

// hasDefense reports whether the inscription's modality includes a defense.
// A missing inscription or modality counts as "no defense" so that gated
// events stay suppressed rather than firing on unknown context.
func (b *FinalProjectBuilder) hasDefense(ctx context.Context, inscriptionID int64) bool {
	in, err := b.store.Inscription(ctx, inscriptionID)
	if err != nil {
		return false
	}
	mod, err := b.store.Modality(ctx, in.ModalityID)
	if err != nil {
		return false
	}
	return mod.Code == models.ModalityDegreeWork
}
