package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Dosada05/team-training-system/models"
)

var (
	ErrWorkoutNotFound        = errors.New("workout not found")
	ErrWorkoutExerciseInvalid = errors.New("workout exercise conflict or invalid")
)

type WorkoutFilter struct {
	CreatorID *int
	TeamID    *int
}

type WorkoutRepository interface {
	Create(ctx context.Context, workout *models.Workout) error
	GetByID(ctx context.Context, id int) (*models.Workout, error)
	Update(ctx context.Context, workout *models.Workout) error
	Delete(ctx context.Context, id int) error
	List(ctx context.Context, filter WorkoutFilter) ([]*models.Workout, error)

	// ListExercises возвращает строки шаблона, упорядоченные по position.
	// Именно этот порядок копируется в session_exercises при планировании;
	// exec позволяет читать шаблон той же транзакцией, что и вставка копий.
	ListExercises(ctx context.Context, exec SQLExecutor, workoutID int) ([]models.WorkoutExercise, error)
	ReplaceExercises(ctx context.Context, workoutID int, exercises []models.WorkoutExercise) error
}

type postgresWorkoutRepository struct {
	db *sql.DB
}

func NewPostgresWorkoutRepository(db *sql.DB) WorkoutRepository {
	return &postgresWorkoutRepository{db: db}
}

func (r *postgresWorkoutRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresWorkoutRepository) Create(ctx context.Context, workout *models.Workout) error {
	query := `
		INSERT INTO workouts (creator_id, team_id, title, description)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		workout.CreatorID,
		workout.TeamID,
		workout.Title,
		workout.Description,
	).Scan(&workout.ID, &workout.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create workout: %w", err)
	}
	return nil
}

func (r *postgresWorkoutRepository) GetByID(ctx context.Context, id int) (*models.Workout, error) {
	query := `
		SELECT id, creator_id, team_id, title, description, created_at
		FROM workouts
		WHERE id = $1`

	var w models.Workout
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&w.ID, &w.CreatorID, &w.TeamID, &w.Title, &w.Description, &w.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrWorkoutNotFound
		}
		return nil, fmt.Errorf("failed to get workout by id %d: %w", id, err)
	}
	return &w, nil
}

func (r *postgresWorkoutRepository) Update(ctx context.Context, workout *models.Workout) error {
	query := `UPDATE workouts SET title = $1, description = $2, team_id = $3 WHERE id = $4`
	result, err := r.db.ExecContext(ctx, query, workout.Title, workout.Description, workout.TeamID, workout.ID)
	if err != nil {
		return fmt.Errorf("failed to update workout: %w", err)
	}
	return checkAffectedRows(result, ErrWorkoutNotFound)
}

func (r *postgresWorkoutRepository) Delete(ctx context.Context, id int) error {
	query := `DELETE FROM workouts WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete workout: %w", err)
	}
	return checkAffectedRows(result, ErrWorkoutNotFound)
}

func (r *postgresWorkoutRepository) List(ctx context.Context, filter WorkoutFilter) ([]*models.Workout, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`
		SELECT id, creator_id, team_id, title, description, created_at
		FROM workouts
		WHERE 1=1`)

	args := make([]interface{}, 0, 2)
	if filter.CreatorID != nil {
		args = append(args, *filter.CreatorID)
		queryBuilder.WriteString(fmt.Sprintf(" AND creator_id = $%d", len(args)))
	}
	if filter.TeamID != nil {
		args = append(args, *filter.TeamID)
		queryBuilder.WriteString(fmt.Sprintf(" AND team_id = $%d", len(args)))
	}
	queryBuilder.WriteString(" ORDER BY created_at DESC")

	rows, err := r.db.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list workouts: %w", err)
	}
	defer rows.Close()

	workouts := make([]*models.Workout, 0)
	for rows.Next() {
		var w models.Workout
		if err := rows.Scan(&w.ID, &w.CreatorID, &w.TeamID, &w.Title, &w.Description, &w.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan workout row: %w", err)
		}
		workouts = append(workouts, &w)
	}
	return workouts, rows.Err()
}

func (r *postgresWorkoutRepository) ListExercises(ctx context.Context, exec SQLExecutor, workoutID int) ([]models.WorkoutExercise, error) {
	query := `
		SELECT we.id, we.workout_id, we.exercise_id, we.position, we.duration_minutes, we.notes,
		       e.id, e.name, e.description, e.created_at
		FROM workout_exercises we
		JOIN exercises e ON we.exercise_id = e.id
		WHERE we.workout_id = $1
		ORDER BY we.position ASC`

	rows, err := r.getExecutor(exec).QueryContext(ctx, query, workoutID)
	if err != nil {
		return nil, fmt.Errorf("failed to list exercises for workout %d: %w", workoutID, err)
	}
	defer rows.Close()

	exercises := make([]models.WorkoutExercise, 0)
	for rows.Next() {
		var we models.WorkoutExercise
		var e models.Exercise
		if err := rows.Scan(
			&we.ID, &we.WorkoutID, &we.ExerciseID, &we.Order, &we.DurationMinutes, &we.Notes,
			&e.ID, &e.Name, &e.Description, &e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan workout exercise row: %w", err)
		}
		we.Exercise = &e
		exercises = append(exercises, we)
	}
	return exercises, rows.Err()
}

// ReplaceExercises атомарно заменяет список упражнений шаблона: старые строки
// удаляются и вставляются новые с позициями 1..N в порядке среза.
func (r *postgresWorkoutRepository) ReplaceExercises(ctx context.Context, workoutID int, exercises []models.WorkoutExercise) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("ReplaceExercises failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM workout_exercises WHERE workout_id = $1`, workoutID); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("ReplaceExercises failed to clear workout %d: %w", workoutID, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO workout_exercises (workout_id, exercise_id, position, duration_minutes, notes)
		VALUES ($1, $2, $3, $4, $5)`)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("ReplaceExercises failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for i, we := range exercises {
		if _, err = stmt.ExecContext(ctx, workoutID, we.ExerciseID, i+1, we.DurationMinutes, we.Notes); err != nil {
			_ = tx.Rollback()
			if code, _, ok := pqErrorCode(err); ok && string(code) == pgForeignKeyViolation {
				return ErrWorkoutExerciseInvalid
			}
			return fmt.Errorf("ReplaceExercises failed for exercise_id %d: %w", we.ExerciseID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("ReplaceExercises failed to commit: %w", err)
	}
	return nil
}
