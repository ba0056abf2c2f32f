package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/Dosada05/team-training-system/models"
	"github.com/Dosada05/team-training-system/repositories"
)

const (
	inviteTokenLength = 16                 // длина токена в байтах (32 символа в hex)
	inviteDuration    = 7 * 24 * time.Hour // срок действия приглашения
)

// InviteService управляет пригласительными ссылками: руководство выпускает
// токен, принявший его пользователь попадает в состав игроком.
type InviteService interface {
	CreateInvite(ctx context.Context, teamID, currentUserID int) (*models.Invite, error)
	AcceptInvite(ctx context.Context, token string, currentUserID int) (*models.TeamMember, error)
	ListTeamInvites(ctx context.Context, teamID, currentUserID int) ([]*models.Invite, error)
	DeleteInvite(ctx context.Context, inviteID, teamID, currentUserID int) error
}

type inviteService struct {
	authorizer
	inviteRepo repositories.InviteRepository
	teamRepo   repositories.TeamRepository
}

func NewInviteService(
	inviteRepo repositories.InviteRepository,
	teamRepo repositories.TeamRepository,
	memberRepo repositories.MemberRepository,
	userRepo repositories.UserRepository,
) InviteService {
	return &inviteService{
		authorizer: authorizer{userRepo: userRepo, memberRepo: memberRepo},
		inviteRepo: inviteRepo,
		teamRepo:   teamRepo,
	}
}

func (s *inviteService) CreateInvite(ctx context.Context, teamID, currentUserID int) (*models.Invite, error) {
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

	token, err := generateInviteToken()
	if err != nil {
		return nil, err
	}

	invite := &models.Invite{
		TeamID:    teamID,
		CreatedBy: currentUserID,
		Token:     token,
		ExpiresAt: time.Now().Add(inviteDuration),
	}
	if err := s.inviteRepo.Create(ctx, invite); err != nil {
		return nil, fmt.Errorf("failed to create invite for team %d: %w", teamID, err)
	}
	return invite, nil
}

func (s *inviteService) AcceptInvite(ctx context.Context, token string, currentUserID int) (*models.TeamMember, error) {
	invite, err := s.inviteRepo.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, repositories.ErrInviteNotFound) {
			return nil, ErrInviteNotFound
		}
		return nil, fmt.Errorf("failed to look up invite: %w", err)
	}
	if time.Now().After(invite.ExpiresAt) {
		return nil, ErrInviteExpired
	}

	member := &models.TeamMember{
		TeamID: invite.TeamID,
		UserID: currentUserID,
		Role:   models.MemberRolePlayer,
	}
	if err := s.memberRepo.Create(ctx, nil, member); err != nil {
		if errors.Is(err, repositories.ErrMemberRoleConflict) {
			return nil, ErrMemberRoleConflict
		}
		return nil, fmt.Errorf("failed to join team %d by invite: %w", invite.TeamID, err)
	}
	return member, nil
}

func (s *inviteService) ListTeamInvites(ctx context.Context, teamID, currentUserID int) ([]*models.Invite, error) {
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

	invites, err := s.inviteRepo.ListByTeam(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list invites for team %d: %w", teamID, err)
	}
	return invites, nil
}

func (s *inviteService) DeleteInvite(ctx context.Context, inviteID, teamID, currentUserID int) error {
	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return ErrTeamNotFound
		}
		return fmt.Errorf("failed to get team %d: %w", teamID, err)
	}
	if err := s.authorize(ctx, currentUserID, ActionManageRoster, team); err != nil {
		return err
	}

	if err := s.inviteRepo.Delete(ctx, inviteID); err != nil {
		if errors.Is(err, repositories.ErrInviteNotFound) {
			return ErrInviteNotFound
		}
		return fmt.Errorf("failed to delete invite %d: %w", inviteID, err)
	}
	return nil
}

func generateInviteToken() (string, error) {
	buf := make([]byte, inviteTokenLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate invite token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
