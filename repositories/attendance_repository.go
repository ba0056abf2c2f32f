package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/team-training-system/models"
)

var (
	ErrAttendanceNotFound = errors.New("attendance record not found")
	ErrAttendanceConflict = errors.New("attendance conflict: member already has a record for this session")
)

type AttendanceRepository interface {
	// CreateBatch вставляет строки посещаемости для снапшота состава. Вызывается
	// только внутри транзакции создания тренировки, поэтому exec обязателен.
	CreateBatch(ctx context.Context, exec SQLExecutor, records []*models.Attendance) error
	GetByID(ctx context.Context, id int) (*models.Attendance, error)
	UpdateStatus(ctx context.Context, id int, status models.AttendanceStatus) error
	UpdateNotes(ctx context.Context, id int, notes *string) error
	ListBySession(ctx context.Context, sessionID int) ([]models.Attendance, error)
	ListPendingIDs(ctx context.Context, sessionID int) ([]int, error)
	CountByStatus(ctx context.Context, sessionID int) (map[models.AttendanceStatus]int, error)
}

type postgresAttendanceRepository struct {
	db *sql.DB
}

func NewPostgresAttendanceRepository(db *sql.DB) AttendanceRepository {
	return &postgresAttendanceRepository{db: db}
}

func (r *postgresAttendanceRepository) CreateBatch(ctx context.Context, exec SQLExecutor, records []*models.Attendance) error {
	if len(records) == 0 {
		return nil
	}

	query := `
		INSERT INTO attendance (session_id, member_id, status)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at`

	for _, a := range records {
		err := exec.QueryRowContext(ctx, query, a.SessionID, a.MemberID, a.Status).
			Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
		if err != nil {
			if code, constraint, ok := pqErrorCode(err); ok &&
				string(code) == pgUniqueViolation && constraint == "attendance_session_id_member_id_key" {
				return ErrAttendanceConflict
			}
			return fmt.Errorf("failed to create attendance record (member_id %d): %w", a.MemberID, err)
		}
	}
	return nil
}

func (r *postgresAttendanceRepository) GetByID(ctx context.Context, id int) (*models.Attendance, error) {
	query := `
		SELECT id, session_id, member_id, status, notes, created_at, updated_at
		FROM attendance
		WHERE id = $1`

	var a models.Attendance
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&a.ID, &a.SessionID, &a.MemberID, &a.Status, &a.Notes, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAttendanceNotFound
		}
		return nil, fmt.Errorf("failed to get attendance by id %d: %w", id, err)
	}
	return &a, nil
}

func (r *postgresAttendanceRepository) UpdateStatus(ctx context.Context, id int, status models.AttendanceStatus) error {
	query := `UPDATE attendance SET status = $1, updated_at = now() WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("failed to update attendance status: %w", err)
	}
	return checkAffectedRows(result, ErrAttendanceNotFound)
}

func (r *postgresAttendanceRepository) UpdateNotes(ctx context.Context, id int, notes *string) error {
	query := `UPDATE attendance SET notes = $1, updated_at = now() WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, notes, id)
	if err != nil {
		return fmt.Errorf("failed to update attendance notes: %w", err)
	}
	return checkAffectedRows(result, ErrAttendanceNotFound)
}

func (r *postgresAttendanceRepository) ListBySession(ctx context.Context, sessionID int) ([]models.Attendance, error) {
	query := `
		SELECT a.id, a.session_id, a.member_id, a.status, a.notes, a.created_at, a.updated_at,
		       m.id, m.team_id, m.user_id, m.role, m.jersey_number, m.position, m.created_at,
		       u.id, u.first_name, u.last_name, u.email, u.role, u.logo_key, u.created_at
		FROM attendance a
		JOIN team_members m ON a.member_id = m.id
		JOIN users u ON m.user_id = u.id
		WHERE a.session_id = $1
		ORDER BY u.last_name ASC, u.first_name ASC, a.id ASC`

	rows, err := r.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance for session %d: %w", sessionID, err)
	}
	defer rows.Close()

	records := make([]models.Attendance, 0)
	for rows.Next() {
		var a models.Attendance
		var m models.TeamMember
		var u models.User
		if err := rows.Scan(
			&a.ID, &a.SessionID, &a.MemberID, &a.Status, &a.Notes, &a.CreatedAt, &a.UpdatedAt,
			&m.ID, &m.TeamID, &m.UserID, &m.Role, &m.JerseyNumber, &m.Position, &m.CreatedAt,
			&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.Role, &u.LogoKey, &u.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan attendance row: %w", err)
		}
		m.User = &u
		a.Member = &m
		records = append(records, a)
	}
	return records, rows.Err()
}

func (r *postgresAttendanceRepository) ListPendingIDs(ctx context.Context, sessionID int) ([]int, error) {
	query := `SELECT id FROM attendance WHERE session_id = $1 AND status = 'pending' ORDER BY id ASC`
	rows, err := r.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending attendance for session %d: %w", sessionID, err)
	}
	defer rows.Close()

	ids := make([]int, 0)
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan attendance id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// CountByStatus считает строки посещаемости по статусам на момент запроса.
// Чтение не блокируется против конкурентных обновлений: сводка — снимок на
// точку времени, не согласованный с другими одновременными чтениями.
func (r *postgresAttendanceRepository) CountByStatus(ctx context.Context, sessionID int) (map[models.AttendanceStatus]int, error) {
	query := `SELECT status, COUNT(*) FROM attendance WHERE session_id = $1 GROUP BY status`
	rows, err := r.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to count attendance for session %d: %w", sessionID, err)
	}
	defer rows.Close()

	counts := make(map[models.AttendanceStatus]int)
	for rows.Next() {
		var status models.AttendanceStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan attendance count row: %w", err)
		}
		counts[status] = count
	}
	return counts, rows.Err()
}
