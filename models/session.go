package models

import "time"

// SessionStatus представляет статусы тренировки, соответствующие ENUM в БД.
type SessionStatus string

const (
	SessionStatusScheduled  SessionStatus = "scheduled"
	SessionStatusInProgress SessionStatus = "in_progress"
	SessionStatusCompleted  SessionStatus = "completed"
	SessionStatusCancelled  SessionStatus = "cancelled"
)

// Valid сообщает, является ли значение одним из известных статусов.
func (s SessionStatus) Valid() bool {
	switch s {
	case SessionStatusScheduled, SessionStatusInProgress,
		SessionStatusCompleted, SessionStatusCancelled:
		return true
	}
	return false
}

// TrainingSession — запланированная тренировка. Создаётся одной транзакцией
// вместе со строками Attendance (по составу команды на момент создания) и
// SessionExercise (копия упражнений шаблона).
type TrainingSession struct {
	ID              int           `json:"id" db:"id"`
	TeamID          int           `json:"team_id" db:"team_id"`
	WorkoutID       *int          `json:"workout_id,omitempty" db:"workout_id"`
	Title           string        `json:"title" db:"title"`
	Description     *string       `json:"description,omitempty" db:"description"`
	ScheduledAt     time.Time     `json:"scheduled_at" db:"scheduled_at"`
	DurationMinutes *int          `json:"duration,omitempty" db:"duration_minutes"`
	Location        *string       `json:"location,omitempty" db:"location"`
	Status          SessionStatus `json:"status" db:"status"`
	CreatedBy       int           `json:"created_by" db:"created_by"`
	CreatedAt       time.Time     `json:"created_at" db:"created_at"`

	Team              *Team              `json:"team,omitempty" db:"-"`
	Workout           *Workout           `json:"workout,omitempty" db:"-"`
	Exercises         []SessionExercise  `json:"exercises,omitempty" db:"-"`
	Attendance        []Attendance       `json:"attendance,omitempty" db:"-"`
	AttendanceSummary *AttendanceSummary `json:"attendance_summary,omitempty" db:"-"`
}

// SessionExercise — независимая копия упражнения шаблона, сделанная в момент
// планирования. Никогда не пересинхронизируется с исходным Workout.
type SessionExercise struct {
	ID              int     `json:"id" db:"id"`
	SessionID       int     `json:"session_id" db:"session_id"`
	ExerciseID      int     `json:"exercise_id" db:"exercise_id"`
	Order           int     `json:"order" db:"position"`
	DurationMinutes *int    `json:"duration,omitempty" db:"duration_minutes"`
	Notes           *string `json:"notes,omitempty" db:"notes"`

	Exercise *Exercise `json:"exercise,omitempty" db:"-"`
}
