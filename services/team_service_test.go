package services

import (
	"context"
	"errors"
	"testing"

	"github.com/Dosada05/team-training-system/models"
)

type teamFixture struct {
	service TeamService
	teams   *fakeTeamRepo
	members *fakeMemberRepo
	tx      *fakeTxManager
}

func newTeamFixture(t *testing.T) *teamFixture {
	t.Helper()

	users := newFakeUserRepo(
		&models.User{ID: 1, Role: models.RoleAdmin},
		&models.User{ID: 100, Role: models.RoleUser},
		&models.User{ID: 200, Role: models.RoleUser},
	)
	sports := newFakeSportRepo(&models.Sport{ID: 1, Name: "Football"})
	teams := newFakeTeamRepo()
	members := newFakeMemberRepo()
	tx := &fakeTxManager{}

	return &teamFixture{
		service: NewTeamService(tx, teams, members, sports, users, nil),
		teams:   teams,
		members: members,
		tx:      tx,
	}
}

func TestCreateTeam(t *testing.T) {
	f := newTeamFixture(t)

	team, err := f.service.CreateTeam(context.Background(), CreateTeamInput{
		Name:      "  Falcons ",
		SportID:   1,
		CreatorID: 100,
	})
	if err != nil {
		t.Fatalf("CreateTeam() error = %v", err)
	}
	if team.Name != "Falcons" {
		t.Fatalf("team name = %q, want trimmed %q", team.Name, "Falcons")
	}
	if team.CreatorID != 100 {
		t.Fatalf("team creator = %d, want 100", team.CreatorID)
	}
	if f.tx.calls != 1 {
		t.Fatalf("team and roster inserts ran in %d transactions, want 1", f.tx.calls)
	}

	if len(team.Members) != 1 {
		t.Fatalf("new team has %d roster rows, want the creator only", len(team.Members))
	}
	creator := team.Members[0]
	if creator.UserID != 100 || creator.Role != models.MemberRoleCoach {
		t.Fatalf("creator roster row = %+v, want user 100 as coach", creator)
	}
}

func TestCreateTeamNameRequired(t *testing.T) {
	f := newTeamFixture(t)

	_, err := f.service.CreateTeam(context.Background(), CreateTeamInput{Name: "   ", SportID: 1, CreatorID: 100})
	if !errors.Is(err, ErrTeamNameRequired) {
		t.Fatalf("CreateTeam() error = %v, want ErrTeamNameRequired", err)
	}
}

func TestCreateTeamSportNotFound(t *testing.T) {
	f := newTeamFixture(t)

	_, err := f.service.CreateTeam(context.Background(), CreateTeamInput{Name: "Falcons", SportID: 99, CreatorID: 100})
	if !errors.Is(err, ErrSportNotFound) {
		t.Fatalf("CreateTeam() error = %v, want ErrSportNotFound", err)
	}
}

func TestCreateTeamNameConflict(t *testing.T) {
	f := newTeamFixture(t)
	ctx := context.Background()

	if _, err := f.service.CreateTeam(ctx, CreateTeamInput{Name: "Falcons", SportID: 1, CreatorID: 100}); err != nil {
		t.Fatalf("CreateTeam() error = %v", err)
	}
	_, err := f.service.CreateTeam(ctx, CreateTeamInput{Name: "Falcons", SportID: 1, CreatorID: 200})
	if !errors.Is(err, ErrTeamNameConflict) {
		t.Fatalf("CreateTeam() error = %v, want ErrTeamNameConflict", err)
	}
}

func TestUpdateTeamForbidden(t *testing.T) {
	f := newTeamFixture(t)
	ctx := context.Background()

	team, err := f.service.CreateTeam(ctx, CreateTeamInput{Name: "Falcons", SportID: 1, CreatorID: 100})
	if err != nil {
		t.Fatalf("CreateTeam() error = %v", err)
	}

	name := "Hawks"
	_, err = f.service.UpdateTeam(ctx, team.ID, UpdateTeamInput{Name: &name}, 200)
	if !errors.Is(err, ErrForbiddenOperation) {
		t.Fatalf("UpdateTeam() error = %v, want ErrForbiddenOperation", err)
	}
}

func TestUpdateTeamByCreator(t *testing.T) {
	f := newTeamFixture(t)
	ctx := context.Background()

	team, err := f.service.CreateTeam(ctx, CreateTeamInput{Name: "Falcons", SportID: 1, CreatorID: 100})
	if err != nil {
		t.Fatalf("CreateTeam() error = %v", err)
	}

	name := "Hawks"
	updated, err := f.service.UpdateTeam(ctx, team.ID, UpdateTeamInput{Name: &name}, 100)
	if err != nil {
		t.Fatalf("UpdateTeam() error = %v", err)
	}
	if updated.Name != "Hawks" {
		t.Fatalf("team name = %q, want Hawks", updated.Name)
	}
}

func TestDeleteTeam(t *testing.T) {
	f := newTeamFixture(t)
	ctx := context.Background()

	team, err := f.service.CreateTeam(ctx, CreateTeamInput{Name: "Falcons", SportID: 1, CreatorID: 100})
	if err != nil {
		t.Fatalf("CreateTeam() error = %v", err)
	}

	if err := f.service.DeleteTeam(ctx, team.ID, 100); err != nil {
		t.Fatalf("DeleteTeam() error = %v", err)
	}
	if _, err := f.service.GetTeamByID(ctx, team.ID); !errors.Is(err, ErrTeamNotFound) {
		t.Fatalf("GetTeamByID() after delete error = %v, want ErrTeamNotFound", err)
	}
}
