package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Dosada05/team-training-system/models"
	"github.com/Dosada05/team-training-system/repositories"
)

// SportService — справочник видов спорта. Чтение открыто всем, запись —
// только администраторам платформы (маршруты закрыты middleware.Authorize).
type SportService interface {
	CreateSport(ctx context.Context, name string) (*models.Sport, error)
	GetSportByID(ctx context.Context, id int) (*models.Sport, error)
	ListSports(ctx context.Context) ([]*models.Sport, error)
	UpdateSport(ctx context.Context, id int, name string) (*models.Sport, error)
	DeleteSport(ctx context.Context, id int) error
}

type sportService struct {
	sportRepo repositories.SportRepository
}

func NewSportService(sportRepo repositories.SportRepository) SportService {
	return &sportService{sportRepo: sportRepo}
}

func (s *sportService) CreateSport(ctx context.Context, name string) (*models.Sport, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrSportNameRequired
	}

	sport := &models.Sport{Name: name}
	if err := s.sportRepo.Create(ctx, sport); err != nil {
		if errors.Is(err, repositories.ErrSportNameConflict) {
			return nil, ErrSportNameConflict
		}
		return nil, fmt.Errorf("failed to create sport: %w", err)
	}
	return sport, nil
}

func (s *sportService) GetSportByID(ctx context.Context, id int) (*models.Sport, error) {
	sport, err := s.sportRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrSportNotFound) {
			return nil, ErrSportNotFound
		}
		return nil, fmt.Errorf("failed to get sport %d: %w", id, err)
	}
	return sport, nil
}

func (s *sportService) ListSports(ctx context.Context) ([]*models.Sport, error) {
	sports, err := s.sportRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list sports: %w", err)
	}
	return sports, nil
}

func (s *sportService) UpdateSport(ctx context.Context, id int, name string) (*models.Sport, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrSportNameRequired
	}

	sport, err := s.GetSportByID(ctx, id)
	if err != nil {
		return nil, err
	}

	sport.Name = name
	if err := s.sportRepo.Update(ctx, sport); err != nil {
		switch {
		case errors.Is(err, repositories.ErrSportNotFound):
			return nil, ErrSportNotFound
		case errors.Is(err, repositories.ErrSportNameConflict):
			return nil, ErrSportNameConflict
		}
		return nil, fmt.Errorf("failed to update sport %d: %w", id, err)
	}
	return sport, nil
}

// DeleteSport удаляет вид спорта. Вид спорта, на который ссылаются команды,
// удалить нельзя: внешний ключ отдаёт ErrSportInUse.
func (s *sportService) DeleteSport(ctx context.Context, id int) error {
	if err := s.sportRepo.Delete(ctx, id); err != nil {
		switch {
		case errors.Is(err, repositories.ErrSportNotFound):
			return ErrSportNotFound
		case errors.Is(err, repositories.ErrSportInUse):
			return ErrSportInUse
		}
		return fmt.Errorf("failed to delete sport %d: %w", id, err)
	}
	return nil
}
