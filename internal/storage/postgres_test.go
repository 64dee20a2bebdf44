// internal/storage/postgres_test.go
package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	commonerrors "academic-notifications/internal/common/errors"
	"academic-notifications/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestPostgresStore_Inscription(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	createdAt := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT id, stage_id, modality_id, academic_period_id, faculty_id`).
		WithArgs(int64(10)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "stage_id", "modality_id", "academic_period_id", "faculty_id",
			"proposal_title", "approval_comments", "created_at",
		}).AddRow(10, 3, 1, 1, 4, "Sistema de Riego", "Cumple", createdAt))

	store := NewPostgresStore(db)
	in, err := store.Inscription(context.Background(), 10)
	assert.NoError(t, err)
	assert.Equal(t, int64(10), in.ID)
	assert.Equal(t, int64(3), in.StageID)
	assert.Equal(t, "Sistema de Riego", in.ProposalTitle)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Inscription_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT id, stage_id, modality_id`).
		WithArgs(int64(404)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	store := NewPostgresStore(db)
	_, err = store.Inscription(context.Background(), 404)
	assert.True(t, IsNotFound(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Inscription_QueryFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT id, stage_id, modality_id`).
		WithArgs(int64(10)).
		WillReturnError(errors.New("connection reset"))

	store := NewPostgresStore(db)
	_, err = store.Inscription(context.Background(), 10)
	assert.Error(t, err)
	// a transient failure must not read as a missing row
	assert.False(t, IsNotFound(err))

	stdErr, ok := err.(*commonerrors.StandardError)
	assert.True(t, ok)
	assert.Equal(t, commonerrors.ErrCodeQueryExecutionFailed, stdErr.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_User_WithRoles(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT u.id, u.first_name, u.last_name, u.email, u.active, u.faculty_id`).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "first_name", "last_name", "email", "active", "faculty_id", "role_ids",
		}).AddRow(3, "Carla", "Nino", "coord.ing@uni.edu", true, 4, pq.Int64Array{1, 2}))

	store := NewPostgresStore(db)
	u, err := store.User(context.Background(), 3)
	assert.NoError(t, err)
	assert.Equal(t, "Carla Nino", u.FullName())
	assert.Equal(t, []int64{1, 2}, u.RoleIDs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UsersByRoleInFaculty(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`WHERE r.code = \$1 AND u.faculty_id = \$2 AND u.active`).
		WithArgs(models.RoleCoordinator, int64(4)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "first_name", "last_name", "email", "active", "faculty_id",
		}).AddRow(3, "Carla", "Nino", "coord.ing@uni.edu", true, 4))

	store := NewPostgresStore(db)
	users, err := store.UsersByRoleInFaculty(context.Background(), models.RoleCoordinator, 4)
	assert.NoError(t, err)
	assert.Len(t, users, 1)
	assert.Equal(t, "coord.ing@uni.edu", users[0].Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_InscriptionStudentIDs(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT user_id FROM inscription_students`).
		WithArgs(int64(10)).
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow(1).AddRow(2))

	store := NewPostgresStore(db)
	ids, err := store.InscriptionStudentIDs(context.Background(), 10)
	assert.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ActiveConfig(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`FROM notification_configurations`).
		WithArgs("INSCRIPTION_APPROVED").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "event_name", "subject_template", "body_template", "active",
		}).AddRow(1, "INSCRIPTION_APPROVED", "Asunto {StageName}", "Cuerpo", true))

	store := NewPostgresStore(db)
	cfg, err := store.ActiveConfig(context.Background(), "INSCRIPTION_APPROVED")
	assert.NoError(t, err)
	assert.Equal(t, int64(1), cfg.ID)
	assert.Equal(t, "Asunto {StageName}", cfg.SubjectTemplate)
	assert.True(t, cfg.Active)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ActiveConfig_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`FROM notification_configurations`).
		WithArgs("NO_SUCH_EVENT").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	store := NewPostgresStore(db)
	_, err = store.ActiveConfig(context.Background(), "NO_SUCH_EVENT")
	assert.True(t, IsNotFound(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Rules_OrderedByPriority(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`FROM recipient_rules`).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "config_id", "bucket", "kind", "value", "condition_json", "priority",
		}).
			AddRow(2, 1, "TO", "BY_ROLE", "COORDINATOR", `{"SameFaculty": "true"}`, 1).
			AddRow(1, 1, "CC", "FIXED_EMAIL", "archivo@uni.edu", "", 2))

	store := NewPostgresStore(db)
	rules, err := store.Rules(context.Background(), 1)
	assert.NoError(t, err)
	assert.Len(t, rules, 2)
	assert.Equal(t, models.RuleByRole, rules[0].Kind)
	assert.Equal(t, `{"SameFaculty": "true"}`, rules[0].ConditionJSON)
	assert.Equal(t, models.BucketCc, rules[1].Bucket)
	assert.NoError(t, mock.ExpectationsWereMet())
}
