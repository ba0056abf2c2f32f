package models

import "time"

// MemberRole представляет роль участника внутри команды, соответствует ENUM в БД.
// Один пользователь может держать несколько ролей в одной команде, каждая роль —
// отдельная строка team_members.
type MemberRole string

const (
	MemberRoleCoach          MemberRole = "coach"
	MemberRoleTrainer        MemberRole = "trainer"
	MemberRoleAssistantCoach MemberRole = "assistant_coach"
	MemberRolePlayer         MemberRole = "player"
	MemberRoleParent         MemberRole = "parent"
	MemberRoleVolunteer      MemberRole = "volunteer"
)

// IsLeadership сообщает, входит ли роль в руководящий состав команды.
// Единственное место, где определён этот набор: инвариант "последнего тренера"
// и проверки прав опираются именно на этот метод.
func (r MemberRole) IsLeadership() bool {
	switch r {
	case MemberRoleCoach, MemberRoleTrainer, MemberRoleAssistantCoach:
		return true
	}
	return false
}

// Valid сообщает, является ли значение одной из известных ролей.
func (r MemberRole) Valid() bool {
	switch r {
	case MemberRoleCoach, MemberRoleTrainer, MemberRoleAssistantCoach,
		MemberRolePlayer, MemberRoleParent, MemberRoleVolunteer:
		return true
	}
	return false
}

type TeamMember struct {
	ID           int        `json:"id" db:"id"`
	TeamID       int        `json:"team_id" db:"team_id"`
	UserID       int        `json:"user_id" db:"user_id"`
	Role         MemberRole `json:"role" db:"role"`
	JerseyNumber *int       `json:"number,omitempty" db:"jersey_number"`
	Position     *string    `json:"position,omitempty" db:"position"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`

	User *User `json:"user,omitempty" db:"-"`
}
