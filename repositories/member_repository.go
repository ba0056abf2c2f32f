package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/team-training-system/models"
)

var (
	ErrMemberNotFound     = errors.New("team member not found")
	ErrMemberRoleConflict = errors.New("team member conflict: user already holds this role on the team")
	ErrMemberTeamInvalid  = errors.New("team member team conflict or invalid")
	ErrMemberUserInvalid  = errors.New("team member user conflict or invalid")
)

type MemberRepository interface {
	Create(ctx context.Context, exec SQLExecutor, member *models.TeamMember) error
	GetByID(ctx context.Context, id int) (*models.TeamMember, error)
	Update(ctx context.Context, exec SQLExecutor, member *models.TeamMember) error
	Delete(ctx context.Context, exec SQLExecutor, id int) error
	ListByTeam(ctx context.Context, exec SQLExecutor, teamID int) ([]*models.TeamMember, error)
	ListRolesByUser(ctx context.Context, teamID, userID int) ([]models.MemberRole, error)
	CountMembers(ctx context.Context, exec SQLExecutor, teamID int) (int, error)

	// CountLeaders считает строки с руководящей ролью в команде, исключая
	// строку excludeMemberID (0 — не исключать). Вызывается под блокировкой
	// строки команды, см. TeamRepository.LockForUpdate.
	CountLeaders(ctx context.Context, exec SQLExecutor, teamID, excludeMemberID int) (int, error)
}

type postgresMemberRepository struct {
	db *sql.DB
}

func NewPostgresMemberRepository(db *sql.DB) MemberRepository {
	return &postgresMemberRepository{db: db}
}

func (r *postgresMemberRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func mapMemberWriteError(err error) error {
	if code, constraint, ok := pqErrorCode(err); ok {
		switch string(code) {
		case pgUniqueViolation:
			if constraint == "team_members_team_id_user_id_role_key" {
				return ErrMemberRoleConflict
			}
		case pgForeignKeyViolation:
			switch constraint {
			case "team_members_team_id_fkey":
				return ErrMemberTeamInvalid
			case "team_members_user_id_fkey":
				return ErrMemberUserInvalid
			}
		}
	}
	return nil
}

func (r *postgresMemberRepository) Create(ctx context.Context, exec SQLExecutor, member *models.TeamMember) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO team_members (team_id, user_id, role, jersey_number, position)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	err := executor.QueryRowContext(ctx, query,
		member.TeamID,
		member.UserID,
		member.Role,
		member.JerseyNumber,
		member.Position,
	).Scan(&member.ID, &member.CreatedAt)

	if err != nil {
		if mapped := mapMemberWriteError(err); mapped != nil {
			return mapped
		}
		return fmt.Errorf("failed to create team member: %w", err)
	}
	return nil
}

func (r *postgresMemberRepository) GetByID(ctx context.Context, id int) (*models.TeamMember, error) {
	query := `
		SELECT id, team_id, user_id, role, jersey_number, position, created_at
		FROM team_members
		WHERE id = $1`

	var m models.TeamMember
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&m.ID, &m.TeamID, &m.UserID, &m.Role, &m.JerseyNumber, &m.Position, &m.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMemberNotFound
		}
		return nil, fmt.Errorf("failed to get team member by id %d: %w", id, err)
	}
	return &m, nil
}

func (r *postgresMemberRepository) Update(ctx context.Context, exec SQLExecutor, member *models.TeamMember) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE team_members
		SET role = $1, jersey_number = $2, position = $3
		WHERE id = $4`

	result, err := executor.ExecContext(ctx, query,
		member.Role,
		member.JerseyNumber,
		member.Position,
		member.ID,
	)
	if err != nil {
		if mapped := mapMemberWriteError(err); mapped != nil {
			return mapped
		}
		return fmt.Errorf("failed to update team member: %w", err)
	}
	return checkAffectedRows(result, ErrMemberNotFound)
}

func (r *postgresMemberRepository) Delete(ctx context.Context, exec SQLExecutor, id int) error {
	executor := r.getExecutor(exec)
	query := `DELETE FROM team_members WHERE id = $1`
	result, err := executor.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete team member: %w", err)
	}
	return checkAffectedRows(result, ErrMemberNotFound)
}

func (r *postgresMemberRepository) ListByTeam(ctx context.Context, exec SQLExecutor, teamID int) ([]*models.TeamMember, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT m.id, m.team_id, m.user_id, m.role, m.jersey_number, m.position, m.created_at,
		       u.id, u.first_name, u.last_name, u.email, u.role, u.logo_key, u.created_at
		FROM team_members m
		JOIN users u ON m.user_id = u.id
		WHERE m.team_id = $1
		ORDER BY m.created_at ASC, m.id ASC`

	rows, err := executor.QueryContext(ctx, query, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list team members for team %d: %w", teamID, err)
	}
	defer rows.Close()

	members := make([]*models.TeamMember, 0)
	for rows.Next() {
		var m models.TeamMember
		var u models.User
		if err := rows.Scan(
			&m.ID, &m.TeamID, &m.UserID, &m.Role, &m.JerseyNumber, &m.Position, &m.CreatedAt,
			&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.Role, &u.LogoKey, &u.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan team member row: %w", err)
		}
		m.User = &u
		members = append(members, &m)
	}
	return members, rows.Err()
}

func (r *postgresMemberRepository) ListRolesByUser(ctx context.Context, teamID, userID int) ([]models.MemberRole, error) {
	query := `SELECT role FROM team_members WHERE team_id = $1 AND user_id = $2`
	rows, err := r.db.QueryContext(ctx, query, teamID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list roles for user %d on team %d: %w", userID, teamID, err)
	}
	defer rows.Close()

	roles := make([]models.MemberRole, 0)
	for rows.Next() {
		var role models.MemberRole
		if err := rows.Scan(&role); err != nil {
			return nil, fmt.Errorf("failed to scan member role: %w", err)
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}

func (r *postgresMemberRepository) CountMembers(ctx context.Context, exec SQLExecutor, teamID int) (int, error) {
	executor := r.getExecutor(exec)
	query := `SELECT COUNT(*) FROM team_members WHERE team_id = $1`
	var count int
	if err := executor.QueryRowContext(ctx, query, teamID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count members for team %d: %w", teamID, err)
	}
	return count, nil
}

func (r *postgresMemberRepository) CountLeaders(ctx context.Context, exec SQLExecutor, teamID, excludeMemberID int) (int, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT COUNT(*)
		FROM team_members
		WHERE team_id = $1
		  AND id <> $2
		  AND role IN ('coach', 'trainer', 'assistant_coach')`

	var count int
	if err := executor.QueryRowContext(ctx, query, teamID, excludeMemberID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count leadership members for team %d: %w", teamID, err)
	}
	return count, nil
}
