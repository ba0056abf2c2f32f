package models

import "testing"

func TestMemberRoleIsLeadership(t *testing.T) {
	leaders := []MemberRole{MemberRoleCoach, MemberRoleTrainer, MemberRoleAssistantCoach}
	for _, role := range leaders {
		if !role.IsLeadership() {
			t.Errorf("%q must be a leadership role", role)
		}
	}

	others := []MemberRole{MemberRolePlayer, MemberRoleParent, MemberRoleVolunteer}
	for _, role := range others {
		if role.IsLeadership() {
			t.Errorf("%q must not be a leadership role", role)
		}
	}
}

func TestMemberRoleValid(t *testing.T) {
	for _, role := range []MemberRole{
		MemberRoleCoach, MemberRoleTrainer, MemberRoleAssistantCoach,
		MemberRolePlayer, MemberRoleParent, MemberRoleVolunteer,
	} {
		if !role.Valid() {
			t.Errorf("%q must be valid", role)
		}
	}
	if MemberRole("goalkeeper").Valid() {
		t.Error("unknown role must be invalid")
	}
}
