package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/team-training-system/models"
	"github.com/lib/pq"
)

var ErrExerciseNotFound = errors.New("exercise not found")

// ExerciseRepository — read-сторона библиотеки упражнений. CRUD контента живёт
// в отдельной подсистеме, ядру нужны только выборки для гидратации тренировок.
type ExerciseRepository interface {
	GetByID(ctx context.Context, id int) (*models.Exercise, error)
	ListByIDs(ctx context.Context, ids []int) (map[int]*models.Exercise, error)
}

type postgresExerciseRepository struct {
	db *sql.DB
}

func NewPostgresExerciseRepository(db *sql.DB) ExerciseRepository {
	return &postgresExerciseRepository{db: db}
}

func (r *postgresExerciseRepository) GetByID(ctx context.Context, id int) (*models.Exercise, error) {
	query := `SELECT id, name, description, created_at FROM exercises WHERE id = $1`
	var e models.Exercise
	err := r.db.QueryRowContext(ctx, query, id).Scan(&e.ID, &e.Name, &e.Description, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrExerciseNotFound
		}
		return nil, fmt.Errorf("failed to get exercise by id %d: %w", id, err)
	}
	return &e, nil
}

func (r *postgresExerciseRepository) ListByIDs(ctx context.Context, ids []int) (map[int]*models.Exercise, error) {
	result := make(map[int]*models.Exercise, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	query := `SELECT id, name, description, created_at FROM exercises WHERE id = ANY($1)`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to list exercises by ids: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var e models.Exercise
		if err := rows.Scan(&e.ID, &e.Name, &e.Description, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan exercise row: %w", err)
		}
		result[e.ID] = &e
	}
	return result, rows.Err()
}
