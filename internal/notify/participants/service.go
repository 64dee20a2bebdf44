// internal/notify/participants/service.go

// Package participants aggregates student/participant data for event data
// builders and the recipient resolver.
package participants

import (
	"context"
	"strings"

	"academic-notifications/internal/common/logger"
	"academic-notifications/internal/storage"
)

// Summary is the joined view of an inscription's active participants.
// Names and emails are comma-space-joined in the lookup's stable order; Count
// reflects only users that resolved successfully.
type Summary struct {
	Names  string
	Emails string
	Count  int
}

type Service struct {
	store  storage.EntityStore
	logger logger.Logger
}

func NewService(store storage.EntityStore, log logger.Logger) *Service {
	return &Service{
		store:  store,
		logger: log.WithFields(map[string]interface{}{"component": "participants"}),
	}
}

// ByInscription aggregates the active students of an inscription.
func (s *Service) ByInscription(ctx context.Context, inscriptionID int64) (Summary, error) {
	ids, err := s.store.InscriptionStudentIDs(ctx, inscriptionID)
	if err != nil {
		return Summary{}, err
	}
	return s.ByUserIDs(ctx, ids)
}

// ByProposal aggregates the participants of a proposal's inscription.
func (s *Service) ByProposal(ctx context.Context, proposalID int64) (Summary, error) {
	p, err := s.store.Proposal(ctx, proposalID)
	if err != nil {
		return Summary{}, err
	}
	return s.ByInscription(ctx, p.InscriptionID)
}

// ByUserIDs aggregates an explicit set of users. Missing users are skipped,
// not counted as errors.
func (s *Service) ByUserIDs(ctx context.Context, userIDs []int64) (Summary, error) {
	var names, emails []string
	for _, id := range userIDs {
		u, err := s.store.User(ctx, id)
		if err != nil {
			if storage.IsNotFound(err) {
				s.logger.Debug("participant skipped, user not found", map[string]interface{}{
					"userId": id,
				})
				continue
			}
			return Summary{}, err
		}
		names = append(names, u.FullName())
		emails = append(emails, u.Email)
	}

	return Summary{
		Names:  strings.Join(names, ", "),
		Emails: strings.Join(emails, ", "),
		Count:  len(names),
	}, nil
}

// EmailList splits a comma-joined email value back into its addresses.
func EmailList(joined string) []string {
	if joined == "" {
		return nil
	}
	parts := strings.Split(joined, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
