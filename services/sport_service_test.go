package services

import (
	"context"
	"errors"
	"testing"

	"github.com/Dosada05/team-training-system/models"
)

func TestCreateSport(t *testing.T) {
	repo := newFakeSportRepo()
	service := NewSportService(repo)

	sport, err := service.CreateSport(context.Background(), "  Football ")
	if err != nil {
		t.Fatalf("CreateSport() error = %v", err)
	}
	if sport.ID == 0 {
		t.Fatal("CreateSport() did not assign an id")
	}
	if sport.Name != "Football" {
		t.Fatalf("sport name = %q, want trimmed %q", sport.Name, "Football")
	}
}

func TestCreateSportNameRequired(t *testing.T) {
	service := NewSportService(newFakeSportRepo())

	_, err := service.CreateSport(context.Background(), "   ")
	if !errors.Is(err, ErrSportNameRequired) {
		t.Fatalf("CreateSport() error = %v, want ErrSportNameRequired", err)
	}
}

func TestCreateSportNameConflict(t *testing.T) {
	service := NewSportService(newFakeSportRepo(&models.Sport{ID: 1, Name: "Football"}))

	_, err := service.CreateSport(context.Background(), "Football")
	if !errors.Is(err, ErrSportNameConflict) {
		t.Fatalf("CreateSport() error = %v, want ErrSportNameConflict", err)
	}
}

func TestUpdateSport(t *testing.T) {
	repo := newFakeSportRepo(&models.Sport{ID: 1, Name: "Football"})
	service := NewSportService(repo)

	sport, err := service.UpdateSport(context.Background(), 1, "Futsal")
	if err != nil {
		t.Fatalf("UpdateSport() error = %v", err)
	}
	if sport.Name != "Futsal" {
		t.Fatalf("sport name = %q, want Futsal", sport.Name)
	}

	if _, err := service.UpdateSport(context.Background(), 99, "Hockey"); !errors.Is(err, ErrSportNotFound) {
		t.Fatalf("UpdateSport() error = %v, want ErrSportNotFound", err)
	}
}

func TestDeleteSport(t *testing.T) {
	repo := newFakeSportRepo(&models.Sport{ID: 1, Name: "Football"})
	service := NewSportService(repo)

	if err := service.DeleteSport(context.Background(), 1); err != nil {
		t.Fatalf("DeleteSport() error = %v", err)
	}
	if err := service.DeleteSport(context.Background(), 1); !errors.Is(err, ErrSportNotFound) {
		t.Fatalf("repeated DeleteSport() error = %v, want ErrSportNotFound", err)
	}
}

func TestDeleteSportInUse(t *testing.T) {
	repo := newFakeSportRepo(&models.Sport{ID: 1, Name: "Football"})
	repo.inUseIDs[1] = true
	service := NewSportService(repo)

	if err := service.DeleteSport(context.Background(), 1); !errors.Is(err, ErrSportInUse) {
		t.Fatalf("DeleteSport() error = %v, want ErrSportInUse", err)
	}
}
