package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/team-training-system/models"
)

var (
	ErrSportNotFound     = errors.New("sport not found")
	ErrSportNameConflict = errors.New("sport name conflict: name already in use")
	ErrSportInUse        = errors.New("sport is referenced by existing teams")
)

type SportRepository interface {
	Create(ctx context.Context, sport *models.Sport) error
	GetByID(ctx context.Context, id int) (*models.Sport, error)
	List(ctx context.Context) ([]*models.Sport, error)
	Update(ctx context.Context, sport *models.Sport) error
	Delete(ctx context.Context, id int) error
}

type postgresSportRepository struct {
	db *sql.DB
}

func NewPostgresSportRepository(db *sql.DB) SportRepository {
	return &postgresSportRepository{db: db}
}

func (r *postgresSportRepository) Create(ctx context.Context, sport *models.Sport) error {
	query := `INSERT INTO sports (name) VALUES ($1) RETURNING id`
	err := r.db.QueryRowContext(ctx, query, sport.Name).Scan(&sport.ID)
	if err != nil {
		if code, constraint, ok := pqErrorCode(err); ok &&
			string(code) == pgUniqueViolation && constraint == "sports_name_key" {
			return ErrSportNameConflict
		}
		return fmt.Errorf("failed to create sport: %w", err)
	}
	return nil
}

func (r *postgresSportRepository) GetByID(ctx context.Context, id int) (*models.Sport, error) {
	query := `SELECT id, name FROM sports WHERE id = $1`
	var s models.Sport
	err := r.db.QueryRowContext(ctx, query, id).Scan(&s.ID, &s.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSportNotFound
		}
		return nil, fmt.Errorf("failed to get sport by id %d: %w", id, err)
	}
	return &s, nil
}

func (r *postgresSportRepository) List(ctx context.Context) ([]*models.Sport, error) {
	query := `SELECT id, name FROM sports ORDER BY name ASC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list sports: %w", err)
	}
	defer rows.Close()

	sports := make([]*models.Sport, 0)
	for rows.Next() {
		var s models.Sport
		if err := rows.Scan(&s.ID, &s.Name); err != nil {
			return nil, fmt.Errorf("failed to scan sport row: %w", err)
		}
		sports = append(sports, &s)
	}
	return sports, rows.Err()
}

func (r *postgresSportRepository) Update(ctx context.Context, sport *models.Sport) error {
	query := `UPDATE sports SET name = $1 WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, sport.Name, sport.ID)
	if err != nil {
		if code, constraint, ok := pqErrorCode(err); ok &&
			string(code) == pgUniqueViolation && constraint == "sports_name_key" {
			return ErrSportNameConflict
		}
		return fmt.Errorf("failed to update sport: %w", err)
	}
	return checkAffectedRows(result, ErrSportNotFound)
}

func (r *postgresSportRepository) Delete(ctx context.Context, id int) error {
	query := `DELETE FROM sports WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		if code, constraint, ok := pqErrorCode(err); ok &&
			string(code) == pgForeignKeyViolation && constraint == "teams_sport_id_fkey" {
			return ErrSportInUse
		}
		return fmt.Errorf("failed to delete sport: %w", err)
	}
	return checkAffectedRows(result, ErrSportNotFound)
}
