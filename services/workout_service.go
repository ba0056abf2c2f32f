package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Dosada05/team-training-system/models"
	"github.com/Dosada05/team-training-system/repositories"
)

type CreateWorkoutInput struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
	TeamID      *int    `json:"team_id"`
	CreatorID   int     `json:"-"`
}

type UpdateWorkoutInput struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	TeamID      *int    `json:"team_id"`
}

type WorkoutExerciseInput struct {
	ExerciseID      int     `json:"exercise_id"`
	DurationMinutes *int    `json:"duration"`
	Notes           *string `json:"notes"`
}

// WorkoutService владеет переиспользуемыми шаблонами тренировочных планов.
// Шаблон можно редактировать когда угодно: тренировки, созданные по нему,
// держат собственные копии упражнений и не меняются.
type WorkoutService interface {
	CreateWorkout(ctx context.Context, input CreateWorkoutInput) (*models.Workout, error)
	GetWorkoutByID(ctx context.Context, id int) (*models.Workout, error)
	UpdateWorkout(ctx context.Context, workoutID int, input UpdateWorkoutInput, currentUserID int) (*models.Workout, error)
	DeleteWorkout(ctx context.Context, workoutID, currentUserID int) error
	ListWorkouts(ctx context.Context, filter repositories.WorkoutFilter) ([]*models.Workout, error)
	SetExercises(ctx context.Context, workoutID int, inputs []WorkoutExerciseInput, currentUserID int) (*models.Workout, error)
}

type workoutService struct {
	workoutRepo  repositories.WorkoutRepository
	exerciseRepo repositories.ExerciseRepository
	userRepo     repositories.UserRepository
}

func NewWorkoutService(
	workoutRepo repositories.WorkoutRepository,
	exerciseRepo repositories.ExerciseRepository,
	userRepo repositories.UserRepository,
) WorkoutService {
	return &workoutService{
		workoutRepo:  workoutRepo,
		exerciseRepo: exerciseRepo,
		userRepo:     userRepo,
	}
}

// canManageWorkout: шаблоном управляет его автор или администратор платформы.
func (s *workoutService) canManageWorkout(ctx context.Context, workout *models.Workout, currentUserID int) error {
	if workout.CreatorID == currentUserID {
		return nil
	}
	user, err := s.userRepo.GetByID(ctx, currentUserID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return ErrForbiddenOperation
		}
		return fmt.Errorf("failed to load actor %d: %w", currentUserID, err)
	}
	if !user.IsAdmin() {
		return fmt.Errorf("%w: only the workout creator or an admin can modify it", ErrForbiddenOperation)
	}
	return nil
}

func (s *workoutService) CreateWorkout(ctx context.Context, input CreateWorkoutInput) (*models.Workout, error) {
	input.Title = strings.TrimSpace(input.Title)
	if input.Title == "" {
		return nil, ErrWorkoutTitleRequired
	}

	workout := &models.Workout{
		CreatorID:   input.CreatorID,
		TeamID:      input.TeamID,
		Title:       input.Title,
		Description: input.Description,
	}
	if err := s.workoutRepo.Create(ctx, workout); err != nil {
		return nil, fmt.Errorf("failed to create workout: %w", err)
	}
	workout.Exercises = []models.WorkoutExercise{}
	return workout, nil
}

func (s *workoutService) GetWorkoutByID(ctx context.Context, id int) (*models.Workout, error) {
	workout, err := s.workoutRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrWorkoutNotFound) {
			return nil, ErrWorkoutNotFound
		}
		return nil, fmt.Errorf("failed to get workout %d: %w", id, err)
	}

	exercises, err := s.workoutRepo.ListExercises(ctx, nil, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load exercises for workout %d: %w", id, err)
	}
	workout.Exercises = exercises
	return workout, nil
}

func (s *workoutService) UpdateWorkout(ctx context.Context, workoutID int, input UpdateWorkoutInput, currentUserID int) (*models.Workout, error) {
	workout, err := s.workoutRepo.GetByID(ctx, workoutID)
	if err != nil {
		if errors.Is(err, repositories.ErrWorkoutNotFound) {
			return nil, ErrWorkoutNotFound
		}
		return nil, fmt.Errorf("failed to get workout %d: %w", workoutID, err)
	}
	if err := s.canManageWorkout(ctx, workout, currentUserID); err != nil {
		return nil, err
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, ErrWorkoutTitleRequired
		}
		workout.Title = title
	}
	if input.Description != nil {
		workout.Description = input.Description
	}
	if input.TeamID != nil {
		workout.TeamID = input.TeamID
	}

	if err := s.workoutRepo.Update(ctx, workout); err != nil {
		return nil, fmt.Errorf("failed to update workout %d: %w", workoutID, err)
	}
	return s.GetWorkoutByID(ctx, workoutID)
}

func (s *workoutService) DeleteWorkout(ctx context.Context, workoutID, currentUserID int) error {
	workout, err := s.workoutRepo.GetByID(ctx, workoutID)
	if err != nil {
		if errors.Is(err, repositories.ErrWorkoutNotFound) {
			return ErrWorkoutNotFound
		}
		return fmt.Errorf("failed to get workout %d: %w", workoutID, err)
	}
	if err := s.canManageWorkout(ctx, workout, currentUserID); err != nil {
		return err
	}

	if err := s.workoutRepo.Delete(ctx, workoutID); err != nil {
		if errors.Is(err, repositories.ErrWorkoutNotFound) {
			return ErrWorkoutNotFound
		}
		return fmt.Errorf("failed to delete workout %d: %w", workoutID, err)
	}
	return nil
}

func (s *workoutService) ListWorkouts(ctx context.Context, filter repositories.WorkoutFilter) ([]*models.Workout, error) {
	workouts, err := s.workoutRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list workouts: %w", err)
	}
	return workouts, nil
}

// SetExercises заменяет упорядоченный список упражнений шаблона целиком.
// Позиции присваиваются по порядку входного среза.
func (s *workoutService) SetExercises(ctx context.Context, workoutID int, inputs []WorkoutExerciseInput, currentUserID int) (*models.Workout, error) {
	workout, err := s.workoutRepo.GetByID(ctx, workoutID)
	if err != nil {
		if errors.Is(err, repositories.ErrWorkoutNotFound) {
			return nil, ErrWorkoutNotFound
		}
		return nil, fmt.Errorf("failed to get workout %d: %w", workoutID, err)
	}
	if err := s.canManageWorkout(ctx, workout, currentUserID); err != nil {
		return nil, err
	}

	ids := make([]int, 0, len(inputs))
	for _, in := range inputs {
		ids = append(ids, in.ExerciseID)
	}
	known, err := s.exerciseRepo.ListByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to check exercises: %w", err)
	}
	for _, in := range inputs {
		if _, ok := known[in.ExerciseID]; !ok {
			return nil, fmt.Errorf("%w: exercise %d", ErrExerciseNotFound, in.ExerciseID)
		}
		if in.DurationMinutes != nil && *in.DurationMinutes <= 0 {
			return nil, fmt.Errorf("%w: exercise duration must be positive", ErrValidationFailed)
		}
	}

	exercises := make([]models.WorkoutExercise, len(inputs))
	for i, in := range inputs {
		exercises[i] = models.WorkoutExercise{
			WorkoutID:       workoutID,
			ExerciseID:      in.ExerciseID,
			Order:           i + 1,
			DurationMinutes: in.DurationMinutes,
			Notes:           in.Notes,
		}
	}

	if err := s.workoutRepo.ReplaceExercises(ctx, workoutID, exercises); err != nil {
		if errors.Is(err, repositories.ErrWorkoutExerciseInvalid) {
			return nil, ErrExerciseNotFound
		}
		return nil, fmt.Errorf("failed to replace exercises for workout %d: %w", workoutID, err)
	}
	return s.GetWorkoutByID(ctx, workoutID)
}
