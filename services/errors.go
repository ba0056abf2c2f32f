package services

import "errors"

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
var (
	// Ресурс не найден (универсальная)
	ErrNotFound = errors.New("requested resource not found")

	// Ошибки валидации и бизнес-правил
	ErrValidationFailed        = errors.New("validation failed")
	ErrTeamNameRequired        = errors.New("team name is required")
	ErrSportNameRequired       = errors.New("sport name is required")
	ErrWorkoutTitleRequired    = errors.New("workout title is required")
	ErrSessionTitleRequired    = errors.New("session title is required")
	ErrSessionScheduleRequired = errors.New("session scheduled_at is required")
	ErrInvalidMemberRole       = errors.New("invalid team member role")
	ErrInvalidSessionStatus    = errors.New("invalid session status provided")
	ErrSessionStatusTransition = errors.New("invalid session status transition")
	ErrInvalidAttendanceStatus = errors.New("invalid attendance status provided")
	ErrAttendancePendingTarget = errors.New("pending is not a valid target status: it is set once at creation")
	ErrInviteExpired           = errors.New("invite has expired")

	// Нарушения инвариантов состава
	ErrLastMember = errors.New("cannot remove the last member of the team")
	ErrLastLeader = errors.New("last leader: team must retain at least one leadership member")

	// Ошибки конфликтов
	ErrUserEmailConflict  = errors.New("email address is already in use")
	ErrTeamNameConflict   = errors.New("team name is already in use")
	ErrSportNameConflict  = errors.New("sport name is already in use")
	ErrSportInUse         = errors.New("sport is still referenced by teams")
	ErrMemberRoleConflict = errors.New("user already holds this role on the team")

	// Ошибки аутентификации и авторизации
	ErrAuthInvalidCredentials = errors.New("invalid email or password")
	ErrForbiddenOperation     = errors.New("operation not allowed for the current user")

	// Ошибки, специфичные для сущностей
	ErrUserNotFound       = errors.New("user not found")
	ErrSportNotFound      = errors.New("sport not found")
	ErrTeamNotFound       = errors.New("team not found")
	ErrMemberNotFound     = errors.New("team member not found")
	ErrInviteNotFound     = errors.New("invite not found")
	ErrExerciseNotFound   = errors.New("exercise not found")
	ErrWorkoutNotFound    = errors.New("workout not found")
	ErrSessionNotFound    = errors.New("training session not found")
	ErrAttendanceNotFound = errors.New("attendance record not found")
)
