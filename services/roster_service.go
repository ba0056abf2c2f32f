package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/Dosada05/team-training-system/models"
	"github.com/Dosada05/team-training-system/repositories"
	"github.com/Dosada05/team-training-system/storage"
)

type AddMemberInput struct {
	UserID       int               `json:"user_id"`
	Role         models.MemberRole `json:"role"`
	JerseyNumber *int              `json:"number"`
	Position     *string           `json:"position"`
}

type UpdateMemberInput struct {
	Role         *models.MemberRole `json:"role"`
	JerseyNumber *int               `json:"number"`
	Position     *string            `json:"position"`
}

// RosterService владеет составом команды и инвариантами руководства:
// непустая команда не может остаться без участников, а команда с руководящей
// ролью — без руководства. Проверка и мутация выполняются под блокировкой
// строки команды, координация только через БД: процесс не единственный.
type RosterService interface {
	AddMember(ctx context.Context, teamID int, input AddMemberInput, currentUserID int) (*models.TeamMember, error)
	UpdateMember(ctx context.Context, memberID int, input UpdateMemberInput, currentUserID int) (*models.TeamMember, error)
	RemoveMember(ctx context.Context, memberID, currentUserID int) error
	ListMembers(ctx context.Context, teamID int) ([]models.TeamMember, error)
}

type rosterService struct {
	authorizer
	tx       repositories.TxManager
	teamRepo repositories.TeamRepository
	uploader storage.FileUploader
}

func NewRosterService(
	tx repositories.TxManager,
	teamRepo repositories.TeamRepository,
	memberRepo repositories.MemberRepository,
	userRepo repositories.UserRepository,
	uploader storage.FileUploader,
) RosterService {
	return &rosterService{
		authorizer: authorizer{userRepo: userRepo, memberRepo: memberRepo},
		tx:         tx,
		teamRepo:   teamRepo,
		uploader:   uploader,
	}
}

func (s *rosterService) AddMember(ctx context.Context, teamID int, input AddMemberInput, currentUserID int) (*models.TeamMember, error) {
	if !input.Role.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMemberRole, input.Role)
	}

	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to get team %d: %w", teamID, err)
	}
	if err := s.authorize(ctx, currentUserID, ActionManageRoster, team); err != nil {
		return nil, err
	}

	if _, err := s.userRepo.GetByID(ctx, input.UserID); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to check user %d: %w", input.UserID, err)
	}

	member := &models.TeamMember{
		TeamID:       teamID,
		UserID:       input.UserID,
		Role:         input.Role,
		JerseyNumber: input.JerseyNumber,
		Position:     input.Position,
	}

	// Гонка двух одинаковых добавлений решается уникальным ограничением
	// (team_id, user_id, role): проигравший получает конфликт, не сырую ошибку.
	if err := s.memberRepo.Create(ctx, nil, member); err != nil {
		switch {
		case errors.Is(err, repositories.ErrMemberRoleConflict):
			return nil, ErrMemberRoleConflict
		case errors.Is(err, repositories.ErrMemberUserInvalid):
			return nil, ErrUserNotFound
		case errors.Is(err, repositories.ErrMemberTeamInvalid):
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to add member to team %d: %w", teamID, err)
	}
	return member, nil
}

func (s *rosterService) UpdateMember(ctx context.Context, memberID int, input UpdateMemberInput, currentUserID int) (*models.TeamMember, error) {
	if input.Role != nil && !input.Role.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMemberRole, *input.Role)
	}

	member, err := s.memberRepo.GetByID(ctx, memberID)
	if err != nil {
		if errors.Is(err, repositories.ErrMemberNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, fmt.Errorf("failed to get member %d: %w", memberID, err)
	}

	team, err := s.teamRepo.GetByID(ctx, member.TeamID)
	if err != nil {
		return nil, fmt.Errorf("failed to get team %d: %w", member.TeamID, err)
	}
	if err := s.authorize(ctx, currentUserID, ActionManageRoster, team); err != nil {
		return nil, err
	}

	updated := *member
	if input.Role != nil {
		updated.Role = *input.Role
	}
	if input.JerseyNumber != nil {
		updated.JerseyNumber = input.JerseyNumber
	}
	if input.Position != nil {
		updated.Position = input.Position
	}

	leavesLeadership := member.Role.IsLeadership() && !updated.Role.IsLeadership()

	err = s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		if leavesLeadership {
			// Пересчёт руководства и запись идут под блокировкой строки
			// команды: два конкурентных понижения не могут оба пройти проверку.
			if err := s.teamRepo.LockForUpdate(ctx, exec, member.TeamID); err != nil {
				return fmt.Errorf("failed to lock team %d: %w", member.TeamID, err)
			}
			leaders, err := s.memberRepo.CountLeaders(ctx, exec, member.TeamID, member.ID)
			if err != nil {
				return err
			}
			if leaders == 0 {
				return ErrLastLeader
			}
		}

		if err := s.memberRepo.Update(ctx, exec, &updated); err != nil {
			switch {
			case errors.Is(err, repositories.ErrMemberRoleConflict):
				return ErrMemberRoleConflict
			case errors.Is(err, repositories.ErrMemberNotFound):
				return ErrMemberNotFound
			}
			return fmt.Errorf("failed to update member %d: %w", memberID, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *rosterService) RemoveMember(ctx context.Context, memberID, currentUserID int) error {
	member, err := s.memberRepo.GetByID(ctx, memberID)
	if err != nil {
		if errors.Is(err, repositories.ErrMemberNotFound) {
			return ErrMemberNotFound
		}
		return fmt.Errorf("failed to get member %d: %w", memberID, err)
	}

	team, err := s.teamRepo.GetByID(ctx, member.TeamID)
	if err != nil {
		return fmt.Errorf("failed to get team %d: %w", member.TeamID, err)
	}
	if err := s.authorize(ctx, currentUserID, ActionManageRoster, team); err != nil {
		return err
	}

	return s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.teamRepo.LockForUpdate(ctx, exec, member.TeamID); err != nil {
			return fmt.Errorf("failed to lock team %d: %w", member.TeamID, err)
		}

		// Последний участник проверяется раньше последнего руководителя:
		// для команды из одного тренера ответ — «последний участник».
		total, err := s.memberRepo.CountMembers(ctx, exec, member.TeamID)
		if err != nil {
			return err
		}
		if total <= 1 {
			return ErrLastMember
		}

		if member.Role.IsLeadership() {
			leaders, err := s.memberRepo.CountLeaders(ctx, exec, member.TeamID, member.ID)
			if err != nil {
				return err
			}
			if leaders == 0 {
				return ErrLastLeader
			}
		}

		if err := s.memberRepo.Delete(ctx, exec, memberID); err != nil {
			if errors.Is(err, repositories.ErrMemberNotFound) {
				return ErrMemberNotFound
			}
			return fmt.Errorf("failed to remove member %d: %w", memberID, err)
		}
		return nil
	})
}

func (s *rosterService) ListMembers(ctx context.Context, teamID int) ([]models.TeamMember, error) {
	if _, err := s.teamRepo.GetByID(ctx, teamID); err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to get team %d: %w", teamID, err)
	}

	members, err := s.memberRepo.ListByTeam(ctx, nil, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members for team %d: %w", teamID, err)
	}
	populateMemberLogoURLs(members, s.uploader)
	return dereferenceMembers(members), nil
}
