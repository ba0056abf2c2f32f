package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/Dosada05/team-training-system/models"
	"github.com/Dosada05/team-training-system/repositories"
	"github.com/Dosada05/team-training-system/storage"
)

type CreateTeamInput struct {
	Name      string `json:"name"`
	SportID   int    `json:"sport_id"`
	CreatorID int    `json:"-"`
}

type UpdateTeamInput struct {
	Name    *string `json:"name"`
	SportID *int    `json:"sport_id"`
}

type TeamService interface {
	CreateTeam(ctx context.Context, input CreateTeamInput) (*models.Team, error)
	GetTeamByID(ctx context.Context, id int) (*models.Team, error)
	UpdateTeam(ctx context.Context, teamID int, input UpdateTeamInput, currentUserID int) (*models.Team, error)
	DeleteTeam(ctx context.Context, teamID, currentUserID int) error
	UploadLogo(ctx context.Context, teamID, currentUserID int, contentType string, body io.Reader) (*models.Team, error)
}

type teamService struct {
	authorizer
	tx        repositories.TxManager
	teamRepo  repositories.TeamRepository
	sportRepo repositories.SportRepository
	uploader  storage.FileUploader
}

func NewTeamService(
	tx repositories.TxManager,
	teamRepo repositories.TeamRepository,
	memberRepo repositories.MemberRepository,
	sportRepo repositories.SportRepository,
	userRepo repositories.UserRepository,
	uploader storage.FileUploader,
) TeamService {
	return &teamService{
		authorizer: authorizer{userRepo: userRepo, memberRepo: memberRepo},
		tx:         tx,
		teamRepo:   teamRepo,
		sportRepo:  sportRepo,
		uploader:   uploader,
	}
}

// CreateTeam создаёт команду и сразу же — первую запись состава: создатель
// становится тренером. Обе вставки идут одной транзакцией, чтобы команда не
// существовала без единого участника.
func (s *teamService) CreateTeam(ctx context.Context, input CreateTeamInput) (*models.Team, error) {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return nil, ErrTeamNameRequired
	}

	if _, err := s.sportRepo.GetByID(ctx, input.SportID); err != nil {
		if errors.Is(err, repositories.ErrSportNotFound) {
			return nil, ErrSportNotFound
		}
		return nil, fmt.Errorf("failed to check sport %d: %w", input.SportID, err)
	}

	team := &models.Team{
		Name:      input.Name,
		SportID:   input.SportID,
		CreatorID: input.CreatorID,
	}

	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.teamRepo.Create(ctx, exec, team); err != nil {
			if errors.Is(err, repositories.ErrTeamNameConflict) {
				return ErrTeamNameConflict
			}
			return fmt.Errorf("failed to create team: %w", err)
		}

		creatorMember := &models.TeamMember{
			TeamID: team.ID,
			UserID: input.CreatorID,
			Role:   models.MemberRoleCoach,
		}
		if err := s.memberRepo.Create(ctx, exec, creatorMember); err != nil {
			return fmt.Errorf("failed to add creator to team roster: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetTeamByID(ctx, team.ID)
}

func (s *teamService) GetTeamByID(ctx context.Context, id int) (*models.Team, error) {
	team, err := s.teamRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to get team %d: %w", id, err)
	}

	members, err := s.memberRepo.ListByTeam(ctx, nil, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load roster for team %d: %w", id, err)
	}
	populateMemberLogoURLs(members, s.uploader)
	team.Members = dereferenceMembers(members)
	populateTeamLogoURL(team, s.uploader)
	return team, nil
}

func (s *teamService) UpdateTeam(ctx context.Context, teamID int, input UpdateTeamInput, currentUserID int) (*models.Team, error) {
	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to get team %d: %w", teamID, err)
	}

	if err := s.authorize(ctx, currentUserID, ActionManageTeam, team); err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, ErrTeamNameRequired
		}
		team.Name = name
	}
	if input.SportID != nil {
		if _, err := s.sportRepo.GetByID(ctx, *input.SportID); err != nil {
			if errors.Is(err, repositories.ErrSportNotFound) {
				return nil, ErrSportNotFound
			}
			return nil, fmt.Errorf("failed to check sport %d: %w", *input.SportID, err)
		}
		team.SportID = *input.SportID
	}

	if err := s.teamRepo.Update(ctx, team); err != nil {
		if errors.Is(err, repositories.ErrTeamNameConflict) {
			return nil, ErrTeamNameConflict
		}
		return nil, fmt.Errorf("failed to update team %d: %w", teamID, err)
	}
	return s.GetTeamByID(ctx, teamID)
}

func (s *teamService) DeleteTeam(ctx context.Context, teamID, currentUserID int) error {
	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return ErrTeamNotFound
		}
		return fmt.Errorf("failed to get team %d: %w", teamID, err)
	}

	if err := s.authorize(ctx, currentUserID, ActionManageTeam, team); err != nil {
		return err
	}

	if err := s.teamRepo.Delete(ctx, teamID); err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return ErrTeamNotFound
		}
		return fmt.Errorf("failed to delete team %d: %w", teamID, err)
	}
	return nil
}

func (s *teamService) UploadLogo(ctx context.Context, teamID, currentUserID int, contentType string, body io.Reader) (*models.Team, error) {
	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to get team %d: %w", teamID, err)
	}

	if err := s.authorize(ctx, currentUserID, ActionManageTeam, team); err != nil {
		return nil, err
	}

	ext, err := extensionFromContentType(contentType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	key := fmt.Sprintf("teams/%d/logo%s", teamID, ext)
	if _, err := s.uploader.Upload(ctx, key, contentType, body); err != nil {
		return nil, fmt.Errorf("failed to upload logo for team %d: %w", teamID, err)
	}
	if err := s.teamRepo.UpdateLogoKey(ctx, teamID, &key); err != nil {
		return nil, fmt.Errorf("failed to store logo key for team %d: %w", teamID, err)
	}
	return s.GetTeamByID(ctx, teamID)
}
