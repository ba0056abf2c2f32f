package services

import (
	"context"
	"errors"
	"testing"

	"github.com/Dosada05/team-training-system/models"
)

// rosterFixture — команда №1 создателя 100 с тренером (user 10, member 1)
// и игроком (user 20, member 2).
type rosterFixture struct {
	service RosterService
	teams   *fakeTeamRepo
	members *fakeMemberRepo
	tx      *fakeTxManager
}

func newRosterFixture(t *testing.T) *rosterFixture {
	t.Helper()

	users := newFakeUserRepo(
		&models.User{ID: 1, Role: models.RoleAdmin},
		&models.User{ID: 10, Role: models.RoleUser},
		&models.User{ID: 20, Role: models.RoleUser},
		&models.User{ID: 30, Role: models.RoleUser},
		&models.User{ID: 100, Role: models.RoleUser},
	)
	teams := newFakeTeamRepo(&models.Team{ID: 1, Name: "Falcons", SportID: 1, CreatorID: 100})
	members := newFakeMemberRepo(
		&models.TeamMember{ID: 1, TeamID: 1, UserID: 10, Role: models.MemberRoleCoach},
		&models.TeamMember{ID: 2, TeamID: 1, UserID: 20, Role: models.MemberRolePlayer},
	)
	tx := &fakeTxManager{}

	return &rosterFixture{
		service: NewRosterService(tx, teams, members, users, nil),
		teams:   teams,
		members: members,
		tx:      tx,
	}
}

func TestAddMember(t *testing.T) {
	f := newRosterFixture(t)
	ctx := context.Background()

	number := 7
	member, err := f.service.AddMember(ctx, 1, AddMemberInput{
		UserID:       30,
		Role:         models.MemberRolePlayer,
		JerseyNumber: &number,
	}, 10)
	if err != nil {
		t.Fatalf("AddMember() error = %v", err)
	}
	if member.ID == 0 {
		t.Fatal("AddMember() did not assign an id")
	}
	if member.TeamID != 1 || member.UserID != 30 || member.Role != models.MemberRolePlayer {
		t.Fatalf("AddMember() = %+v", member)
	}
	if member.JerseyNumber == nil || *member.JerseyNumber != 7 {
		t.Fatalf("AddMember() jersey number = %v, want 7", member.JerseyNumber)
	}
}

func TestAddMemberInvalidRole(t *testing.T) {
	f := newRosterFixture(t)

	_, err := f.service.AddMember(context.Background(), 1, AddMemberInput{UserID: 30, Role: "goalkeeper"}, 10)
	if !errors.Is(err, ErrInvalidMemberRole) {
		t.Fatalf("AddMember() error = %v, want ErrInvalidMemberRole", err)
	}
}

func TestAddMemberRoleConflict(t *testing.T) {
	f := newRosterFixture(t)

	_, err := f.service.AddMember(context.Background(), 1, AddMemberInput{UserID: 20, Role: models.MemberRolePlayer}, 10)
	if !errors.Is(err, ErrMemberRoleConflict) {
		t.Fatalf("AddMember() error = %v, want ErrMemberRoleConflict", err)
	}
}

func TestAddMemberForbiddenForPlayer(t *testing.T) {
	f := newRosterFixture(t)

	_, err := f.service.AddMember(context.Background(), 1, AddMemberInput{UserID: 30, Role: models.MemberRolePlayer}, 20)
	if !errors.Is(err, ErrForbiddenOperation) {
		t.Fatalf("AddMember() error = %v, want ErrForbiddenOperation", err)
	}
	if len(f.members.members) != 2 {
		t.Fatalf("roster changed after denied operation: %d members", len(f.members.members))
	}
}

func TestUpdateMemberDemoteLastLeader(t *testing.T) {
	f := newRosterFixture(t)

	role := models.MemberRolePlayer
	_, err := f.service.UpdateMember(context.Background(), 1, UpdateMemberInput{Role: &role}, 1)
	if !errors.Is(err, ErrLastLeader) {
		t.Fatalf("UpdateMember() error = %v, want ErrLastLeader", err)
	}
	if f.teams.locks != 1 {
		t.Fatalf("team row locked %d times, want 1", f.teams.locks)
	}

	kept, _ := f.members.GetByID(context.Background(), 1)
	if kept.Role != models.MemberRoleCoach {
		t.Fatalf("member role = %q after rejected demotion, want coach", kept.Role)
	}
}

func TestUpdateMemberDemoteWithSecondLeader(t *testing.T) {
	f := newRosterFixture(t)
	f.members.members[3] = &models.TeamMember{ID: 3, TeamID: 1, UserID: 30, Role: models.MemberRoleTrainer}

	role := models.MemberRolePlayer
	updated, err := f.service.UpdateMember(context.Background(), 1, UpdateMemberInput{Role: &role}, 1)
	if err != nil {
		t.Fatalf("UpdateMember() error = %v", err)
	}
	if updated.Role != models.MemberRolePlayer {
		t.Fatalf("UpdateMember() role = %q, want player", updated.Role)
	}
}

func TestUpdateMemberJerseyOnlySkipsLock(t *testing.T) {
	f := newRosterFixture(t)

	number := 11
	updated, err := f.service.UpdateMember(context.Background(), 1, UpdateMemberInput{JerseyNumber: &number}, 10)
	if err != nil {
		t.Fatalf("UpdateMember() error = %v", err)
	}
	if updated.JerseyNumber == nil || *updated.JerseyNumber != 11 {
		t.Fatalf("UpdateMember() jersey number = %v, want 11", updated.JerseyNumber)
	}
	if updated.Role != models.MemberRoleCoach {
		t.Fatalf("UpdateMember() role = %q, role must be untouched", updated.Role)
	}
	if f.teams.locks != 0 {
		t.Fatalf("team row locked %d times for a non-role update, want 0", f.teams.locks)
	}
}

func TestRemoveMemberLastLeader(t *testing.T) {
	f := newRosterFixture(t)

	err := f.service.RemoveMember(context.Background(), 1, 1)
	if !errors.Is(err, ErrLastLeader) {
		t.Fatalf("RemoveMember() error = %v, want ErrLastLeader", err)
	}
	if _, getErr := f.members.GetByID(context.Background(), 1); getErr != nil {
		t.Fatal("coach removed despite rejected operation")
	}
}

func TestRemoveMemberLastMember(t *testing.T) {
	f := newRosterFixture(t)
	// Команда из одного тренера: ответ — «последний участник», не «последний
	// руководитель».
	delete(f.members.members, 2)

	err := f.service.RemoveMember(context.Background(), 1, 1)
	if !errors.Is(err, ErrLastMember) {
		t.Fatalf("RemoveMember() error = %v, want ErrLastMember", err)
	}
}

func TestRemoveMemberPlayer(t *testing.T) {
	f := newRosterFixture(t)

	if err := f.service.RemoveMember(context.Background(), 2, 10); err != nil {
		t.Fatalf("RemoveMember() error = %v", err)
	}
	if _, err := f.members.GetByID(context.Background(), 2); err == nil {
		t.Fatal("player still present after removal")
	}
}

func TestListMembersTeamNotFound(t *testing.T) {
	f := newRosterFixture(t)

	_, err := f.service.ListMembers(context.Background(), 99)
	if !errors.Is(err, ErrTeamNotFound) {
		t.Fatalf("ListMembers() error = %v, want ErrTeamNotFound", err)
	}
}

func TestListMembers(t *testing.T) {
	f := newRosterFixture(t)

	members, err := f.service.ListMembers(context.Background(), 1)
	if err != nil {
		t.Fatalf("ListMembers() error = %v", err)
	}
	if len(members) != 2 {
		t.Fatalf("ListMembers() returned %d members, want 2", len(members))
	}
}
