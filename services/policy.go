package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/Dosada05/team-training-system/models"
	"github.com/Dosada05/team-training-system/repositories"
)

// Action — операция, на которую запрашивается разрешение.
type Action string

const (
	ActionManageTeam       Action = "team:manage"
	ActionManageRoster     Action = "roster:manage"
	ActionScheduleSession  Action = "session:schedule"
	ActionEditSession      Action = "session:edit"
	ActionRecordAttendance Action = "attendance:record"
)

// Actor — аутентифицированный пользователь с точки зрения политики доступа.
type Actor struct {
	UserID int
	Admin  bool
}

// TeamContext — всё, что политике нужно знать о команде и месте актора в ней.
type TeamContext struct {
	TeamID     int
	CreatorID  int
	ActorRoles []models.MemberRole
}

// Decision — результат проверки с человекочитаемой причиной отказа.
type Decision struct {
	Allowed bool
	Reason  string
}

// Can — единственная точка принятия решений о доступе к командным операциям.
// Администратор платформы может всё; создатель команды управляет командой и
// составом; руководящая роль (coach/trainer/assistant_coach) покрывает все
// командные операции, включая планирование тренировок и отметку посещаемости.
func Can(actor Actor, action Action, team TeamContext) Decision {
	if actor.Admin {
		return Decision{Allowed: true}
	}

	for _, role := range team.ActorRoles {
		if role.IsLeadership() {
			return Decision{Allowed: true}
		}
	}

	switch action {
	case ActionManageTeam, ActionManageRoster:
		if actor.UserID == team.CreatorID {
			return Decision{Allowed: true}
		}
		return Decision{Reason: fmt.Sprintf("%s requires admin, team creator, or a leadership role on team %d", action, team.TeamID)}
	default:
		return Decision{Reason: fmt.Sprintf("%s requires admin or a leadership role on team %d", action, team.TeamID)}
	}
}

// authorizer собирает Actor и TeamContext из хранилища и применяет Can.
// Встраивается в сервисы, которым нужны проверки командных прав.
type authorizer struct {
	userRepo   repositories.UserRepository
	memberRepo repositories.MemberRepository
}

func (a *authorizer) authorize(ctx context.Context, userID int, action Action, team *models.Team) error {
	user, err := a.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return ErrForbiddenOperation
		}
		return fmt.Errorf("failed to load actor %d: %w", userID, err)
	}

	roles, err := a.memberRepo.ListRolesByUser(ctx, team.ID, userID)
	if err != nil {
		return fmt.Errorf("failed to load actor roles for team %d: %w", team.ID, err)
	}

	decision := Can(
		Actor{UserID: userID, Admin: user.IsAdmin()},
		action,
		TeamContext{TeamID: team.ID, CreatorID: team.CreatorID, ActorRoles: roles},
	)
	if !decision.Allowed {
		return fmt.Errorf("%w: %s", ErrForbiddenOperation, decision.Reason)
	}
	return nil
}
