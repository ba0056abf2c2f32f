package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Dosada05/team-training-system/live"
	"github.com/Dosada05/team-training-system/models"
	"github.com/Dosada05/team-training-system/repositories"
	"golang.org/x/sync/errgroup"
)

// summaryConcurrency ограничивает параллелизм подсчёта сводок при листинге.
const summaryConcurrency = 8

type CreateSessionInput struct {
	TeamID          int       `json:"team_id"`
	Title           string    `json:"title"`
	ScheduledAt     time.Time `json:"scheduled_at"`
	WorkoutID       *int      `json:"workout_id"`
	DurationMinutes *int      `json:"duration"`
	Location        *string   `json:"location"`
	Description     *string   `json:"description"`
}

type UpdateSessionInput struct {
	Title           *string               `json:"title"`
	Description     *string               `json:"description"`
	ScheduledAt     *time.Time            `json:"scheduled_at"`
	DurationMinutes *int                  `json:"duration"`
	Location        *string               `json:"location"`
	Status          *models.SessionStatus `json:"status"`
}

// SessionService планирует тренировки. Создание — снимок: текущий состав
// команды превращается в строки посещаемости, упражнения шаблона копируются
// в строки тренировки. Последующие изменения состава и шаблона на уже
// созданную тренировку не влияют.
type SessionService interface {
	CreateSession(ctx context.Context, input CreateSessionInput, currentUserID int) (*models.TrainingSession, error)
	GetSessionByID(ctx context.Context, id int) (*models.TrainingSession, error)
	ListSessions(ctx context.Context, filter repositories.SessionFilter) ([]*models.TrainingSession, error)
	UpdateSession(ctx context.Context, sessionID int, input UpdateSessionInput, currentUserID int) (*models.TrainingSession, error)
	DeleteSession(ctx context.Context, sessionID, currentUserID int) error
}

type sessionService struct {
	authorizer
	tx                  repositories.TxManager
	sessionRepo         repositories.SessionRepository
	sessionExerciseRepo repositories.SessionExerciseRepository
	attendanceRepo      repositories.AttendanceRepository
	teamRepo            repositories.TeamRepository
	workoutRepo         repositories.WorkoutRepository
	hub                 live.Broadcaster
	logger              *slog.Logger
}

func NewSessionService(
	tx repositories.TxManager,
	sessionRepo repositories.SessionRepository,
	sessionExerciseRepo repositories.SessionExerciseRepository,
	attendanceRepo repositories.AttendanceRepository,
	teamRepo repositories.TeamRepository,
	memberRepo repositories.MemberRepository,
	workoutRepo repositories.WorkoutRepository,
	userRepo repositories.UserRepository,
	hub live.Broadcaster,
	logger *slog.Logger,
) SessionService {
	return &sessionService{
		authorizer:          authorizer{userRepo: userRepo, memberRepo: memberRepo},
		tx:                  tx,
		sessionRepo:         sessionRepo,
		sessionExerciseRepo: sessionExerciseRepo,
		attendanceRepo:      attendanceRepo,
		teamRepo:            teamRepo,
		workoutRepo:         workoutRepo,
		hub:                 hub,
		logger:              logger,
	}
}

// CreateSession создаёт тренировку, строки посещаемости по текущему составу и
// копии упражнений шаблона одной транзакцией: тренировка никогда не существует
// частично. Состав читается той же транзакцией, что и вставки, поэтому
// конкурентное изменение состава не рассинхронизирует снимок со вставленным.
func (s *sessionService) CreateSession(ctx context.Context, input CreateSessionInput, currentUserID int) (*models.TrainingSession, error) {
	input.Title = strings.TrimSpace(input.Title)
	if input.Title == "" {
		return nil, ErrSessionTitleRequired
	}
	if input.ScheduledAt.IsZero() {
		return nil, ErrSessionScheduleRequired
	}

	team, err := s.teamRepo.GetByID(ctx, input.TeamID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to get team %d: %w", input.TeamID, err)
	}
	if err := s.authorize(ctx, currentUserID, ActionScheduleSession, team); err != nil {
		return nil, err
	}

	if input.WorkoutID != nil {
		if _, err := s.workoutRepo.GetByID(ctx, *input.WorkoutID); err != nil {
			if errors.Is(err, repositories.ErrWorkoutNotFound) {
				return nil, ErrWorkoutNotFound
			}
			return nil, fmt.Errorf("failed to get workout %d: %w", *input.WorkoutID, err)
		}
	}

	session := &models.TrainingSession{
		TeamID:          input.TeamID,
		WorkoutID:       input.WorkoutID,
		Title:           input.Title,
		Description:     input.Description,
		ScheduledAt:     input.ScheduledAt,
		DurationMinutes: input.DurationMinutes,
		Location:        input.Location,
		Status:          models.SessionStatusScheduled,
		CreatedBy:       currentUserID,
	}

	var attendanceRows, exerciseRows int
	err = s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.sessionRepo.Create(ctx, exec, session); err != nil {
			return fmt.Errorf("failed to create session: %w", err)
		}

		members, err := s.memberRepo.ListByTeam(ctx, exec, input.TeamID)
		if err != nil {
			return fmt.Errorf("failed to snapshot roster for team %d: %w", input.TeamID, err)
		}

		// Одна строка посещаемости на каждую строку состава, без фильтра по
		// ролям: тренеры отмечаются наравне с игроками.
		attendance := make([]*models.Attendance, len(members))
		for i, m := range members {
			attendance[i] = &models.Attendance{
				SessionID: session.ID,
				MemberID:  m.ID,
				Status:    models.AttendancePending,
			}
		}
		if err := s.attendanceRepo.CreateBatch(ctx, exec, attendance); err != nil {
			return fmt.Errorf("failed to create attendance snapshot: %w", err)
		}

		// Шаблон читается той же транзакцией, что и вставка копий: правка
		// шаблона, закоммиченная между проверкой и копированием, в снимок
		// не протекает.
		var templateExercises []models.WorkoutExercise
		if input.WorkoutID != nil {
			list, err := s.workoutRepo.ListExercises(ctx, exec, *input.WorkoutID)
			if err != nil {
				return fmt.Errorf("failed to load template exercises: %w", err)
			}
			templateExercises = list
		}

		sessionExercises := make([]*models.SessionExercise, len(templateExercises))
		for i, we := range templateExercises {
			sessionExercises[i] = &models.SessionExercise{
				SessionID:       session.ID,
				ExerciseID:      we.ExerciseID,
				Order:           we.Order,
				DurationMinutes: we.DurationMinutes,
				Notes:           we.Notes,
			}
		}
		if err := s.sessionExerciseRepo.CreateBatch(ctx, exec, sessionExercises); err != nil {
			return fmt.Errorf("failed to copy template exercises: %w", err)
		}

		attendanceRows, exerciseRows = len(attendance), len(sessionExercises)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("training session created",
		slog.Int("session_id", session.ID),
		slog.Int("team_id", session.TeamID),
		slog.Int("attendance_rows", attendanceRows),
		slog.Int("exercise_rows", exerciseRows),
	)
	return s.GetSessionByID(ctx, session.ID)
}

func (s *sessionService) GetSessionByID(ctx context.Context, id int) (*models.TrainingSession, error) {
	session, err := s.sessionRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrSessionNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session %d: %w", id, err)
	}
	if err := s.hydrateSession(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *sessionService) hydrateSession(ctx context.Context, session *models.TrainingSession) error {
	team, err := s.teamRepo.GetByID(ctx, session.TeamID)
	if err == nil {
		session.Team = team
	} else if !errors.Is(err, repositories.ErrTeamNotFound) {
		return fmt.Errorf("failed to load team %d: %w", session.TeamID, err)
	}

	if session.WorkoutID != nil {
		workout, err := s.workoutRepo.GetByID(ctx, *session.WorkoutID)
		if err == nil {
			session.Workout = workout
		} else if !errors.Is(err, repositories.ErrWorkoutNotFound) {
			return fmt.Errorf("failed to load workout %d: %w", *session.WorkoutID, err)
		}
	}

	exercises, err := s.sessionExerciseRepo.ListBySession(ctx, session.ID)
	if err != nil {
		return fmt.Errorf("failed to load exercises for session %d: %w", session.ID, err)
	}
	session.Exercises = exercises

	records, err := s.attendanceRepo.ListBySession(ctx, session.ID)
	if err != nil {
		return fmt.Errorf("failed to load attendance for session %d: %w", session.ID, err)
	}
	session.Attendance = records

	counts := make(map[models.AttendanceStatus]int)
	for _, a := range records {
		counts[a.Status]++
	}
	summary := models.NewAttendanceSummary(counts)
	session.AttendanceSummary = &summary
	return nil
}

// ListSessions возвращает тренировки со сводками посещаемости. Сводки считаются
// на момент чтения, параллельно для независимых тренировок.
func (s *sessionService) ListSessions(ctx context.Context, filter repositories.SessionFilter) ([]*models.TrainingSession, error) {
	sessions, err := s.sessionRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(summaryConcurrency)
	for _, session := range sessions {
		session := session
		g.Go(func() error {
			counts, err := s.attendanceRepo.CountByStatus(gCtx, session.ID)
			if err != nil {
				return fmt.Errorf("failed to summarize session %d: %w", session.ID, err)
			}
			summary := models.NewAttendanceSummary(counts)
			session.AttendanceSummary = &summary
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return sessions, nil
}

func isValidSessionTransition(current, next models.SessionStatus) bool {
	if current == next {
		return true
	}
	allowed := map[models.SessionStatus][]models.SessionStatus{
		models.SessionStatusScheduled: {
			models.SessionStatusInProgress,
			models.SessionStatusCompleted,
			models.SessionStatusCancelled,
		},
		models.SessionStatusInProgress: {
			models.SessionStatusCompleted,
			models.SessionStatusCancelled,
		},
		models.SessionStatusCompleted: {},
		models.SessionStatusCancelled: {},
	}
	for _, status := range allowed[current] {
		if next == status {
			return true
		}
	}
	return false
}

func (s *sessionService) UpdateSession(ctx context.Context, sessionID int, input UpdateSessionInput, currentUserID int) (*models.TrainingSession, error) {
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repositories.ErrSessionNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session %d: %w", sessionID, err)
	}

	team, err := s.teamRepo.GetByID(ctx, session.TeamID)
	if err != nil {
		return nil, fmt.Errorf("failed to get team %d: %w", session.TeamID, err)
	}
	if err := s.authorize(ctx, currentUserID, ActionEditSession, team); err != nil {
		return nil, err
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, ErrSessionTitleRequired
		}
		session.Title = title
	}
	if input.Description != nil {
		session.Description = input.Description
	}
	if input.ScheduledAt != nil {
		if input.ScheduledAt.IsZero() {
			return nil, ErrSessionScheduleRequired
		}
		session.ScheduledAt = *input.ScheduledAt
	}
	if input.DurationMinutes != nil {
		session.DurationMinutes = input.DurationMinutes
	}
	if input.Location != nil {
		session.Location = input.Location
	}

	statusChanged := false
	if input.Status != nil {
		if !input.Status.Valid() {
			return nil, fmt.Errorf("%w: %q", ErrInvalidSessionStatus, *input.Status)
		}
		if !isValidSessionTransition(session.Status, *input.Status) {
			return nil, fmt.Errorf("%w: %s -> %s", ErrSessionStatusTransition, session.Status, *input.Status)
		}
		statusChanged = session.Status != *input.Status
		session.Status = *input.Status
	}

	if err := s.sessionRepo.Update(ctx, session); err != nil {
		if errors.Is(err, repositories.ErrSessionNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to update session %d: %w", sessionID, err)
	}

	if statusChanged && s.hub != nil {
		s.hub.BroadcastToRoom(live.SessionRoom(sessionID), live.Message{
			Type:    live.EventSessionUpdated,
			Payload: map[string]interface{}{"session_id": sessionID, "status": session.Status},
		})
	}
	return s.GetSessionByID(ctx, sessionID)
}

// DeleteSession жёстко удаляет тренировку; посещаемость и копии упражнений
// уходят каскадом.
func (s *sessionService) DeleteSession(ctx context.Context, sessionID, currentUserID int) error {
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
	if err := s.authorize(ctx, currentUserID, ActionEditSession, team); err != nil {
		return err
	}

	if err := s.sessionRepo.Delete(ctx, sessionID); err != nil {
		if errors.Is(err, repositories.ErrSessionNotFound) {
			return ErrSessionNotFound
		}
		return fmt.Errorf("failed to delete session %d: %w", sessionID, err)
	}
	return nil
}
