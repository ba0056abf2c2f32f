package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Dosada05/team-training-system/models"
)

var (
	ErrSessionNotFound       = errors.New("training session not found")
	ErrSessionTeamInvalid    = errors.New("training session team conflict or invalid")
	ErrSessionWorkoutInvalid = errors.New("training session workout conflict or invalid")
)

type SessionFilter struct {
	TeamID    *int
	WorkoutID *int
	Status    *models.SessionStatus
	From      *time.Time
	To        *time.Time
}

type SessionRepository interface {
	Create(ctx context.Context, exec SQLExecutor, session *models.TrainingSession) error
	GetByID(ctx context.Context, id int) (*models.TrainingSession, error)
	Update(ctx context.Context, session *models.TrainingSession) error
	Delete(ctx context.Context, id int) error
	List(ctx context.Context, filter SessionFilter) ([]*models.TrainingSession, error)
}

type postgresSessionRepository struct {
	db *sql.DB
}

func NewPostgresSessionRepository(db *sql.DB) SessionRepository {
	return &postgresSessionRepository{db: db}
}

func (r *postgresSessionRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const sessionColumns = `id, team_id, workout_id, title, description, scheduled_at, duration_minutes, location, status, created_by, created_at`

func scanSession(rowScanner interface{ Scan(dest ...interface{}) error }, s *models.TrainingSession) error {
	return rowScanner.Scan(
		&s.ID,
		&s.TeamID,
		&s.WorkoutID,
		&s.Title,
		&s.Description,
		&s.ScheduledAt,
		&s.DurationMinutes,
		&s.Location,
		&s.Status,
		&s.CreatedBy,
		&s.CreatedAt,
	)
}

func (r *postgresSessionRepository) Create(ctx context.Context, exec SQLExecutor, session *models.TrainingSession) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO training_sessions
			(team_id, workout_id, title, description, scheduled_at, duration_minutes, location, status, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at`

	err := executor.QueryRowContext(ctx, query,
		session.TeamID,
		session.WorkoutID,
		session.Title,
		session.Description,
		session.ScheduledAt,
		session.DurationMinutes,
		session.Location,
		session.Status,
		session.CreatedBy,
	).Scan(&session.ID, &session.CreatedAt)

	if err != nil {
		if code, constraint, ok := pqErrorCode(err); ok && string(code) == pgForeignKeyViolation {
			switch constraint {
			case "training_sessions_team_id_fkey":
				return ErrSessionTeamInvalid
			case "training_sessions_workout_id_fkey":
				return ErrSessionWorkoutInvalid
			}
		}
		return fmt.Errorf("failed to create training session: %w", err)
	}
	return nil
}

func (r *postgresSessionRepository) GetByID(ctx context.Context, id int) (*models.TrainingSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM training_sessions WHERE id = $1`
	var s models.TrainingSession
	if err := scanSession(r.db.QueryRowContext(ctx, query, id), &s); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get training session by id %d: %w", id, err)
	}
	return &s, nil
}

func (r *postgresSessionRepository) Update(ctx context.Context, session *models.TrainingSession) error {
	query := `
		UPDATE training_sessions
		SET title = $1, description = $2, scheduled_at = $3,
		    duration_minutes = $4, location = $5, status = $6
		WHERE id = $7`

	result, err := r.db.ExecContext(ctx, query,
		session.Title,
		session.Description,
		session.ScheduledAt,
		session.DurationMinutes,
		session.Location,
		session.Status,
		session.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update training session: %w", err)
	}
	return checkAffectedRows(result, ErrSessionNotFound)
}

// Delete жёстко удаляет тренировку; строки attendance и session_exercises
// уходят каскадом по внешним ключам (ON DELETE CASCADE).
func (r *postgresSessionRepository) Delete(ctx context.Context, id int) error {
	query := `DELETE FROM training_sessions WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete training session: %w", err)
	}
	return checkAffectedRows(result, ErrSessionNotFound)
}

func (r *postgresSessionRepository) List(ctx context.Context, filter SessionFilter) ([]*models.TrainingSession, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + sessionColumns + ` FROM training_sessions WHERE 1=1`)

	args := make([]interface{}, 0, 5)
	if filter.TeamID != nil {
		args = append(args, *filter.TeamID)
		queryBuilder.WriteString(fmt.Sprintf(" AND team_id = $%d", len(args)))
	}
	if filter.WorkoutID != nil {
		args = append(args, *filter.WorkoutID)
		queryBuilder.WriteString(fmt.Sprintf(" AND workout_id = $%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		queryBuilder.WriteString(fmt.Sprintf(" AND status = $%d", len(args)))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		queryBuilder.WriteString(fmt.Sprintf(" AND scheduled_at >= $%d", len(args)))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		queryBuilder.WriteString(fmt.Sprintf(" AND scheduled_at <= $%d", len(args)))
	}
	queryBuilder.WriteString(" ORDER BY scheduled_at ASC, id ASC")

	rows, err := r.db.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list training sessions: %w", err)
	}
	defer rows.Close()

	sessions := make([]*models.TrainingSession, 0)
	for rows.Next() {
		var s models.TrainingSession
		if err := scanSession(rows, &s); err != nil {
			return nil, fmt.Errorf("failed to scan training session row: %w", err)
		}
		sessions = append(sessions, &s)
	}
	return sessions, rows.Err()
}
