package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Dosada05/team-training-system/models"
)

type SessionExerciseRepository interface {
	// CreateBatch вставляет копии упражнений шаблона. Вызывается только внутри
	// транзакции создания тренировки, поэтому exec обязателен.
	CreateBatch(ctx context.Context, exec SQLExecutor, exercises []*models.SessionExercise) error
	ListBySession(ctx context.Context, sessionID int) ([]models.SessionExercise, error)
}

type postgresSessionExerciseRepository struct {
	db *sql.DB
}

func NewPostgresSessionExerciseRepository(db *sql.DB) SessionExerciseRepository {
	return &postgresSessionExerciseRepository{db: db}
}

func (r *postgresSessionExerciseRepository) CreateBatch(ctx context.Context, exec SQLExecutor, exercises []*models.SessionExercise) error {
	if len(exercises) == 0 {
		return nil
	}

	query := `
		INSERT INTO session_exercises (session_id, exercise_id, position, duration_minutes, notes)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	for _, se := range exercises {
		err := exec.QueryRowContext(ctx, query,
			se.SessionID,
			se.ExerciseID,
			se.Order,
			se.DurationMinutes,
			se.Notes,
		).Scan(&se.ID)
		if err != nil {
			return fmt.Errorf("failed to create session exercise (exercise_id %d): %w", se.ExerciseID, err)
		}
	}
	return nil
}

func (r *postgresSessionExerciseRepository) ListBySession(ctx context.Context, sessionID int) ([]models.SessionExercise, error) {
	query := `
		SELECT se.id, se.session_id, se.exercise_id, se.position, se.duration_minutes, se.notes,
		       e.id, e.name, e.description, e.created_at
		FROM session_exercises se
		JOIN exercises e ON se.exercise_id = e.id
		WHERE se.session_id = $1
		ORDER BY se.position ASC`

	rows, err := r.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list session exercises for session %d: %w", sessionID, err)
	}
	defer rows.Close()

	exercises := make([]models.SessionExercise, 0)
	for rows.Next() {
		var se models.SessionExercise
		var e models.Exercise
		if err := rows.Scan(
			&se.ID, &se.SessionID, &se.ExerciseID, &se.Order, &se.DurationMinutes, &se.Notes,
			&e.ID, &e.Name, &e.Description, &e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan session exercise row: %w", err)
		}
		se.Exercise = &e
		exercises = append(exercises, se)
	}
	return exercises, rows.Err()
}
