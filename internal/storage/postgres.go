// internal/storage/postgres.go
package storage

import (
	"context"
	"database/sql"
	"errors"

	commonerrors "academic-notifications/internal/common/errors"
	"academic-notifications/internal/models"

	"github.com/lib/pq"
)

// PostgresStore implements EntityStore and ConfigStore over the academic
// database. It only ever reads; mutations belong to the CRUD pipeline.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Inscription(ctx context.Context, id int64) (*models.Inscription, error) {
	var in models.Inscription
	err := s.db.QueryRowContext(ctx, `
		SELECT id, stage_id, modality_id, academic_period_id, faculty_id,
		       proposal_title, COALESCE(approval_comments, ''), created_at
		FROM inscriptions
		WHERE id = $1 AND deleted_at IS NULL`, id).
		Scan(&in.ID, &in.StageID, &in.ModalityID, &in.AcademicPeriodID, &in.FacultyID,
			&in.ProposalTitle, &in.ApprovalComments, &in.CreatedAt)
	if err != nil {
		return nil, mapRowErr("inscription", err)
	}
	return &in, nil
}

func (s *PostgresStore) Proposal(ctx context.Context, id int64) (*models.Proposal, error) {
	var p models.Proposal
	err := s.db.QueryRowContext(ctx, `
		SELECT id, inscription_id, stage_id, title, director_id, faculty_id,
		       submitted_at, COALESCE(review_comments, '')
		FROM proposals
		WHERE id = $1 AND deleted_at IS NULL`, id).
		Scan(&p.ID, &p.InscriptionID, &p.StageID, &p.Title, &p.DirectorID, &p.FacultyID,
			&p.SubmittedAt, &p.ReviewComments)
	if err != nil {
		return nil, mapRowErr("proposal", err)
	}
	return &p, nil
}

func (s *PostgresStore) PreliminaryProject(ctx context.Context, id int64) (*models.PreliminaryProject, error) {
	var pp models.PreliminaryProject
	err := s.db.QueryRowContext(ctx, `
		SELECT id, proposal_id, stage_id, title, evaluation_date, COALESCE(observations, '')
		FROM preliminary_projects
		WHERE id = $1 AND deleted_at IS NULL`, id).
		Scan(&pp.ID, &pp.ProposalID, &pp.StageID, &pp.Title, &pp.EvaluationDate, &pp.Observations)
	if err != nil {
		return nil, mapRowErr("preliminary_project", err)
	}
	return &pp, nil
}

func (s *PostgresStore) FinalProject(ctx context.Context, id int64) (*models.FinalProject, error) {
	var fp models.FinalProject
	err := s.db.QueryRowContext(ctx, `
		SELECT id, proposal_id, stage_id, title, defense_date, COALESCE(grade, '')
		FROM final_projects
		WHERE id = $1 AND deleted_at IS NULL`, id).
		Scan(&fp.ID, &fp.ProposalID, &fp.StageID, &fp.Title, &fp.DefenseDate, &fp.Grade)
	if err != nil {
		return nil, mapRowErr("final_project", err)
	}
	return &fp, nil
}

func (s *PostgresStore) TeachingAssignment(ctx context.Context, id int64) (*models.TeachingAssignment, error) {
	var ta models.TeachingAssignment
	err := s.db.QueryRowContext(ctx, `
		SELECT id, inscription_id, stage_id, teacher_id, assignment_type, start_date
		FROM teaching_assignments
		WHERE id = $1 AND deleted_at IS NULL`, id).
		Scan(&ta.ID, &ta.InscriptionID, &ta.StageID, &ta.TeacherID, &ta.AssignmentType, &ta.StartDate)
	if err != nil {
		return nil, mapRowErr("teaching_assignment", err)
	}
	return &ta, nil
}

func (s *PostgresStore) Stage(ctx context.Context, id int64) (*models.Stage, error) {
	var st models.Stage
	err := s.db.QueryRowContext(ctx,
		`SELECT id, code, name FROM stages WHERE id = $1`, id).
		Scan(&st.ID, &st.Code, &st.Name)
	if err != nil {
		return nil, mapRowErr("stage", err)
	}
	return &st, nil
}

func (s *PostgresStore) Modality(ctx context.Context, id int64) (*models.Modality, error) {
	var m models.Modality
	err := s.db.QueryRowContext(ctx,
		`SELECT id, code, name FROM modalities WHERE id = $1`, id).
		Scan(&m.ID, &m.Code, &m.Name)
	if err != nil {
		return nil, mapRowErr("modality", err)
	}
	return &m, nil
}

func (s *PostgresStore) AcademicPeriod(ctx context.Context, id int64) (*models.AcademicPeriod, error) {
	var ap models.AcademicPeriod
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name FROM academic_periods WHERE id = $1`, id).
		Scan(&ap.ID, &ap.Name)
	if err != nil {
		return nil, mapRowErr("academic_period", err)
	}
	return &ap, nil
}

func (s *PostgresStore) Faculty(ctx context.Context, id int64) (*models.Faculty, error) {
	var f models.Faculty
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name FROM faculties WHERE id = $1`, id).
		Scan(&f.ID, &f.Name)
	if err != nil {
		return nil, mapRowErr("faculty", err)
	}
	return &f, nil
}

func (s *PostgresStore) User(ctx context.Context, id int64) (*models.User, error) {
	var u models.User
	var roleIDs pq.Int64Array
	err := s.db.QueryRowContext(ctx, `
		SELECT u.id, u.first_name, u.last_name, u.email, u.active, u.faculty_id,
		       COALESCE(ARRAY_AGG(ur.role_id) FILTER (WHERE ur.role_id IS NOT NULL), '{}')
		FROM users u
		LEFT JOIN user_roles ur ON ur.user_id = u.id
		WHERE u.id = $1
		GROUP BY u.id`, id).
		Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.Active, &u.FacultyID, &roleIDs)
	if err != nil {
		return nil, mapRowErr("user", err)
	}
	u.RoleIDs = []int64(roleIDs)
	return &u, nil
}

func (s *PostgresStore) UsersByRole(ctx context.Context, roleCode string) ([]models.User, error) {
	return s.usersByRoleQuery(ctx, `
		SELECT u.id, u.first_name, u.last_name, u.email, u.active, u.faculty_id
		FROM users u
		JOIN user_roles ur ON ur.user_id = u.id
		JOIN roles r ON r.id = ur.role_id
		WHERE r.code = $1 AND u.active
		ORDER BY u.id`, roleCode)
}

func (s *PostgresStore) UsersByRoleInFaculty(ctx context.Context, roleCode string, facultyID int64) ([]models.User, error) {
	return s.usersByRoleQuery(ctx, `
		SELECT u.id, u.first_name, u.last_name, u.email, u.active, u.faculty_id
		FROM users u
		JOIN user_roles ur ON ur.user_id = u.id
		JOIN roles r ON r.id = ur.role_id
		WHERE r.code = $1 AND u.faculty_id = $2 AND u.active
		ORDER BY u.id`, roleCode, facultyID)
}

func (s *PostgresStore) usersByRoleQuery(ctx context.Context, query string, args ...interface{}) ([]models.User, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, commonerrors.NewQueryExecutionFailedError("users_by_role", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.Active, &u.FacultyID); err != nil {
			return nil, commonerrors.NewQueryExecutionFailedError("users_by_role", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *PostgresStore) InscriptionStudentIDs(ctx context.Context, inscriptionID int64) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT user_id FROM inscription_students
		WHERE inscription_id = $1 AND active
		ORDER BY id`, inscriptionID)
	if err != nil {
		return nil, commonerrors.NewQueryExecutionFailedError("inscription_students", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, commonerrors.NewQueryExecutionFailedError("inscription_students", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// --- ConfigStore ---

func (s *PostgresStore) ActiveConfig(ctx context.Context, eventName string) (*models.NotificationConfiguration, error) {
	var cfg models.NotificationConfiguration
	err := s.db.QueryRowContext(ctx, `
		SELECT id, event_name, subject_template, body_template, active
		FROM notification_configurations
		WHERE event_name = $1 AND active`, eventName).
		Scan(&cfg.ID, &cfg.EventName, &cfg.SubjectTemplate, &cfg.BodyTemplate, &cfg.Active)
	if err != nil {
		return nil, mapRowErr("active_config", err)
	}
	return &cfg, nil
}

func (s *PostgresStore) Rules(ctx context.Context, configID int64) ([]models.RecipientRule, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, config_id, bucket, kind, value, COALESCE(condition_json, ''), priority
		FROM recipient_rules
		WHERE config_id = $1
		ORDER BY priority, id`, configID)
	if err != nil {
		return nil, commonerrors.NewQueryExecutionFailedError("recipient_rules", err)
	}
	defer rows.Close()

	var rules []models.RecipientRule
	for rows.Next() {
		var r models.RecipientRule
		if err := rows.Scan(&r.ID, &r.ConfigID, &r.Bucket, &r.Kind, &r.Value, &r.ConditionJSON, &r.Priority); err != nil {
			return nil, commonerrors.NewQueryExecutionFailedError("recipient_rules", err)
		}
		rules = append(rules, r)
	}
	return rules, rows.Err()
}

func mapRowErr(query string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return commonerrors.NewQueryExecutionFailedError(query, err)
}
