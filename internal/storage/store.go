// internal/storage/store.go
package storage

import (
	"context"
	"errors"

	"academic-notifications/internal/models"
)

// ErrNotFound is returned by every lookup when the row does not exist or is
// soft-deleted. Callers treat it as "missing", not as a failure.
var ErrNotFound = errors.New("storage: not found")

// EntityStore is the read-only entity lookup capability consumed by the
// notification core. All methods honor ctx cancellation.
type EntityStore interface {
	Inscription(ctx context.Context, id int64) (*models.Inscription, error)
	Proposal(ctx context.Context, id int64) (*models.Proposal, error)
	PreliminaryProject(ctx context.Context, id int64) (*models.PreliminaryProject, error)
	FinalProject(ctx context.Context, id int64) (*models.FinalProject, error)
	TeachingAssignment(ctx context.Context, id int64) (*models.TeachingAssignment, error)

	Stage(ctx context.Context, id int64) (*models.Stage, error)
	Modality(ctx context.Context, id int64) (*models.Modality, error)
	AcademicPeriod(ctx context.Context, id int64) (*models.AcademicPeriod, error)
	Faculty(ctx context.Context, id int64) (*models.Faculty, error)

	User(ctx context.Context, id int64) (*models.User, error)
	// UsersByRole returns active users holding the role identified by its
	// stable code, in a stable order.
	UsersByRole(ctx context.Context, roleCode string) ([]models.User, error)
	// UsersByRoleInFaculty narrows UsersByRole to one faculty.
	UsersByRoleInFaculty(ctx context.Context, roleCode string, facultyID int64) ([]models.User, error)
	// InscriptionStudentIDs returns the user ids of active participants of an
	// inscription, in insertion order.
	InscriptionStudentIDs(ctx context.Context, inscriptionID int64) ([]int64, error)
}

// ConfigStore is the notification-configuration lookup capability. Simple
// keyed storage read; the core never writes through it.
type ConfigStore interface {
	// ActiveConfig returns the active configuration for an event name, or
	// ErrNotFound when none exists or the configuration is inactive.
	ActiveConfig(ctx context.Context, eventName string) (*models.NotificationConfiguration, error)
	// Rules returns a configuration's recipient rules ordered by priority
	// ascending, then id.
	Rules(ctx context.Context, configID int64) ([]models.RecipientRule, error)
}

// IsNotFound reports whether err represents a missing row.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
