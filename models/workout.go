package models

import "time"

// Workout — переиспользуемый шаблон тренировочного плана. Шаблон можно менять
// в любой момент: уже созданные тренировки держат собственные копии упражнений
// и на изменения шаблона не реагируют.
type Workout struct {
	ID          int       `json:"id" db:"id"`
	CreatorID   int       `json:"creator_id" db:"creator_id"`
	TeamID      *int      `json:"team_id,omitempty" db:"team_id"`
	Title       string    `json:"title" db:"title"`
	Description *string   `json:"description,omitempty" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`

	Exercises []WorkoutExercise `json:"exercises,omitempty" db:"-"`
}

type WorkoutExercise struct {
	ID              int     `json:"id" db:"id"`
	WorkoutID       int     `json:"workout_id" db:"workout_id"`
	ExerciseID      int     `json:"exercise_id" db:"exercise_id"`
	Order           int     `json:"order" db:"position"`
	DurationMinutes *int    `json:"duration,omitempty" db:"duration_minutes"`
	Notes           *string `json:"notes,omitempty" db:"notes"`

	Exercise *Exercise `json:"exercise,omitempty" db:"-"`
}
