package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Dosada05/team-training-system/live"
	"github.com/Dosada05/team-training-system/models"
	"github.com/Dosada05/team-training-system/repositories"
)

type MarkAllResult struct {
	Updated int   `json:"updated"`
	Failed  []int `json:"failed,omitempty"`
}

// AttendanceService отмечает посещаемость по снимку состава тренировки.
// PENDING — только начальное состояние, вручную его выставить нельзя.
type AttendanceService interface {
	UpdateStatus(ctx context.Context, attendanceID int, status models.AttendanceStatus, currentUserID int) (*models.Attendance, error)
	UpdateNotes(ctx context.Context, attendanceID int, notes *string, currentUserID int) (*models.Attendance, error)
	MarkAllPresent(ctx context.Context, sessionID, currentUserID int) (*MarkAllResult, error)
	ListBySession(ctx context.Context, sessionID int) ([]models.Attendance, error)
	GetSummary(ctx context.Context, sessionID int) (*models.AttendanceSummary, error)
}

type attendanceService struct {
	authorizer
	attendanceRepo repositories.AttendanceRepository
	sessionRepo    repositories.SessionRepository
	teamRepo       repositories.TeamRepository
	hub            live.Broadcaster
	logger         *slog.Logger
}

func NewAttendanceService(
	attendanceRepo repositories.AttendanceRepository,
	sessionRepo repositories.SessionRepository,
	teamRepo repositories.TeamRepository,
	memberRepo repositories.MemberRepository,
	userRepo repositories.UserRepository,
	hub live.Broadcaster,
	logger *slog.Logger,
) AttendanceService {
	return &attendanceService{
		authorizer:     authorizer{userRepo: userRepo, memberRepo: memberRepo},
		attendanceRepo: attendanceRepo,
		sessionRepo:    sessionRepo,
		teamRepo:       teamRepo,
		hub:            hub,
		logger:         logger,
	}
}

func (s *attendanceService) authorizeForSession(ctx context.Context, sessionID, currentUserID int) error {
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repositories.ErrSessionNotFound) {
			return ErrSessionNotFound
		}
		return fmt.Errorf("failed to get session %d: %w", sessionID, err)
	}
	team, err := s.teamRepo.GetByID(ctx, session.TeamID)
	if err != nil {
		return fmt.Errorf("failed to get team %d: %w", session.TeamID, err)
	}
	return s.authorize(ctx, currentUserID, ActionRecordAttendance, team)
}

// UpdateStatus переводит строку посещаемости в новый статус. Повторная отметка
// тем же статусом не ошибка: строка просто перезаписывается.
func (s *attendanceService) UpdateStatus(ctx context.Context, attendanceID int, status models.AttendanceStatus, currentUserID int) (*models.Attendance, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAttendanceStatus, status)
	}
	if status == models.AttendancePending {
		return nil, ErrAttendancePendingTarget
	}

	record, err := s.attendanceRepo.GetByID(ctx, attendanceID)
	if err != nil {
		if errors.Is(err, repositories.ErrAttendanceNotFound) {
			return nil, ErrAttendanceNotFound
		}
		return nil, fmt.Errorf("failed to get attendance %d: %w", attendanceID, err)
	}
	if err := s.authorizeForSession(ctx, record.SessionID, currentUserID); err != nil {
		return nil, err
	}

	if err := s.attendanceRepo.UpdateStatus(ctx, attendanceID, status); err != nil {
		if errors.Is(err, repositories.ErrAttendanceNotFound) {
			return nil, ErrAttendanceNotFound
		}
		return nil, fmt.Errorf("failed to update attendance %d: %w", attendanceID, err)
	}
	record.Status = status

	s.broadcastSummary(ctx, record.SessionID)
	return record, nil
}

func (s *attendanceService) UpdateNotes(ctx context.Context, attendanceID int, notes *string, currentUserID int) (*models.Attendance, error) {
	record, err := s.attendanceRepo.GetByID(ctx, attendanceID)
	if err != nil {
		if errors.Is(err, repositories.ErrAttendanceNotFound) {
			return nil, ErrAttendanceNotFound
		}
		return nil, fmt.Errorf("failed to get attendance %d: %w", attendanceID, err)
	}
	if err := s.authorizeForSession(ctx, record.SessionID, currentUserID); err != nil {
		return nil, err
	}

	if err := s.attendanceRepo.UpdateNotes(ctx, attendanceID, notes); err != nil {
		if errors.Is(err, repositories.ErrAttendanceNotFound) {
			return nil, ErrAttendanceNotFound
		}
		return nil, fmt.Errorf("failed to update notes for attendance %d: %w", attendanceID, err)
	}
	record.Notes = notes
	return record, nil
}

// MarkAllPresent переводит все строки PENDING тренировки в PRESENT. Операция
// построчная и не атомарная: упавшие строки собираются в Failed, успешные не
// откатываются. Уже отмеченные строки не трогаются.
func (s *attendanceService) MarkAllPresent(ctx context.Context, sessionID, currentUserID int) (*MarkAllResult, error) {
	if err := s.authorizeForSession(ctx, sessionID, currentUserID); err != nil {
		return nil, err
	}

	pendingIDs, err := s.attendanceRepo.ListPendingIDs(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending attendance for session %d: %w", sessionID, err)
	}

	result := &MarkAllResult{}
	for _, id := range pendingIDs {
		if err := s.attendanceRepo.UpdateStatus(ctx, id, models.AttendancePresent); err != nil {
			s.logger.Warn("failed to mark attendance present",
				slog.Int("attendance_id", id),
				slog.Int("session_id", sessionID),
				slog.String("error", err.Error()),
			)
			result.Failed = append(result.Failed, id)
			continue
		}
		result.Updated++
	}

	if result.Updated > 0 {
		s.broadcastSummary(ctx, sessionID)
	}
	return result, nil
}

func (s *attendanceService) ListBySession(ctx context.Context, sessionID int) ([]models.Attendance, error) {
	if _, err := s.sessionRepo.GetByID(ctx, sessionID); err != nil {
		if errors.Is(err, repositories.ErrSessionNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session %d: %w", sessionID, err)
	}
	records, err := s.attendanceRepo.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance for session %d: %w", sessionID, err)
	}
	return records, nil
}

func (s *attendanceService) GetSummary(ctx context.Context, sessionID int) (*models.AttendanceSummary, error) {
	if _, err := s.sessionRepo.GetByID(ctx, sessionID); err != nil {
		if errors.Is(err, repositories.ErrSessionNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session %d: %w", sessionID, err)
	}
	counts, err := s.attendanceRepo.CountByStatus(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to count attendance for session %d: %w", sessionID, err)
	}
	summary := models.NewAttendanceSummary(counts)
	return &summary, nil
}

func (s *attendanceService) broadcastSummary(ctx context.Context, sessionID int) {
	if s.hub == nil {
		return
	}
	counts, err := s.attendanceRepo.CountByStatus(ctx, sessionID)
	if err != nil {
		s.logger.Warn("failed to build attendance summary for broadcast",
			slog.Int("session_id", sessionID),
			slog.String("error", err.Error()),
		)
		return
	}
	summary := models.NewAttendanceSummary(counts)
	s.hub.BroadcastToRoom(live.SessionRoom(sessionID), live.Message{
		Type:    live.EventAttendanceUpdated,
		Payload: map[string]interface{}{"session_id": sessionID, "summary": summary},
	})
}
