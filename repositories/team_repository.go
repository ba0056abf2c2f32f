package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/team-training-system/models"
)

var (
	ErrTeamNotFound     = errors.New("team not found")
	ErrTeamNameConflict = errors.New("team name conflict: name already in use")
	ErrTeamSportInvalid = errors.New("team sport conflict or invalid")
)

type TeamRepository interface {
	Create(ctx context.Context, exec SQLExecutor, team *models.Team) error
	GetByID(ctx context.Context, id int) (*models.Team, error)
	Update(ctx context.Context, team *models.Team) error
	Delete(ctx context.Context, id int) error
	UpdateLogoKey(ctx context.Context, id int, logoKey *string) error

	// LockForUpdate берёт блокировку строки команды внутри транзакции exec.
	// Проверка "последнего тренера" и последующая запись выполняются под этой
	// блокировкой, чтобы два конкурентных вызова не прошли проверку одновременно.
	LockForUpdate(ctx context.Context, exec SQLExecutor, id int) error
}

type postgresTeamRepository struct {
	db *sql.DB
}

func NewPostgresTeamRepository(db *sql.DB) TeamRepository {
	return &postgresTeamRepository{db: db}
}

func (r *postgresTeamRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresTeamRepository) Create(ctx context.Context, exec SQLExecutor, team *models.Team) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO teams (name, sport_id, creator_id)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	err := executor.QueryRowContext(ctx, query, team.Name, team.SportID, team.CreatorID).
		Scan(&team.ID, &team.CreatedAt)
	if err != nil {
		if code, constraint, ok := pqErrorCode(err); ok {
			switch string(code) {
			case pgUniqueViolation:
				if constraint == "teams_name_key" {
					return ErrTeamNameConflict
				}
			case pgForeignKeyViolation:
				if constraint == "teams_sport_id_fkey" {
					return ErrTeamSportInvalid
				}
			}
		}
		return fmt.Errorf("failed to create team: %w", err)
	}
	return nil
}

func (r *postgresTeamRepository) GetByID(ctx context.Context, id int) (*models.Team, error) {
	query := `
		SELECT t.id, t.name, t.sport_id, t.creator_id, t.logo_key, t.created_at,
		       s.id, s.name
		FROM teams t
		JOIN sports s ON t.sport_id = s.id
		WHERE t.id = $1`

	var t models.Team
	var s models.Sport
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&t.ID, &t.Name, &t.SportID, &t.CreatorID, &t.LogoKey, &t.CreatedAt,
		&s.ID, &s.Name,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to get team by id %d: %w", id, err)
	}
	t.Sport = &s
	return &t, nil
}

func (r *postgresTeamRepository) Update(ctx context.Context, team *models.Team) error {
	query := `UPDATE teams SET name = $1, sport_id = $2 WHERE id = $3`
	result, err := r.db.ExecContext(ctx, query, team.Name, team.SportID, team.ID)
	if err != nil {
		if code, constraint, ok := pqErrorCode(err); ok &&
			string(code) == pgUniqueViolation && constraint == "teams_name_key" {
			return ErrTeamNameConflict
		}
		return fmt.Errorf("failed to update team: %w", err)
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}

func (r *postgresTeamRepository) Delete(ctx context.Context, id int) error {
	query := `DELETE FROM teams WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete team: %w", err)
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}

func (r *postgresTeamRepository) UpdateLogoKey(ctx context.Context, id int, logoKey *string) error {
	query := `UPDATE teams SET logo_key = $1 WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, logoKey, id)
	if err != nil {
		return fmt.Errorf("failed to update team logo key: %w", err)
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}

func (r *postgresTeamRepository) LockForUpdate(ctx context.Context, exec SQLExecutor, id int) error {
	executor := r.getExecutor(exec)
	query := `SELECT id FROM teams WHERE id = $1 FOR UPDATE`
	var lockedID int
	if err := executor.QueryRowContext(ctx, query, id).Scan(&lockedID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrTeamNotFound
		}
		return fmt.Errorf("failed to lock team row %d: %w", id, err)
	}
	return nil
}
