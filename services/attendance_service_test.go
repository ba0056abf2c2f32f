package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/Dosada05/team-training-system/models"
)

// attendanceFixture — тренировка №1 команды №1 с тремя строками посещаемости
// в статусе pending; тренер — user 10, игрок — user 20.
type attendanceFixture struct {
	service AttendanceService
	records *fakeAttendanceRepo
	hub     *fakeBroadcaster
}

func newAttendanceFixture(t *testing.T) *attendanceFixture {
	t.Helper()

	users := newFakeUserRepo(
		&models.User{ID: 1, Role: models.RoleAdmin},
		&models.User{ID: 10, Role: models.RoleUser},
		&models.User{ID: 20, Role: models.RoleUser},
	)
	teams := newFakeTeamRepo(&models.Team{ID: 1, Name: "Falcons", SportID: 1, CreatorID: 100})
	members := newFakeMemberRepo(
		&models.TeamMember{ID: 1, TeamID: 1, UserID: 10, Role: models.MemberRoleCoach},
		&models.TeamMember{ID: 2, TeamID: 1, UserID: 20, Role: models.MemberRolePlayer},
		&models.TeamMember{ID: 3, TeamID: 1, UserID: 30, Role: models.MemberRolePlayer},
	)
	sessions := newFakeSessionRepo(&models.TrainingSession{
		ID:     1,
		TeamID: 1,
		Title:  "Tuesday practice",
		Status: models.SessionStatusScheduled,
	})
	records := newFakeAttendanceRepo(
		&models.Attendance{ID: 1, SessionID: 1, MemberID: 1, Status: models.AttendancePending},
		&models.Attendance{ID: 2, SessionID: 1, MemberID: 2, Status: models.AttendancePending},
		&models.Attendance{ID: 3, SessionID: 1, MemberID: 3, Status: models.AttendancePending},
	)
	hub := &fakeBroadcaster{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return &attendanceFixture{
		service: NewAttendanceService(records, sessions, teams, members, users, hub, logger),
		records: records,
		hub:     hub,
	}
}

func TestUpdateAttendanceStatus(t *testing.T) {
	f := newAttendanceFixture(t)

	record, err := f.service.UpdateStatus(context.Background(), 2, models.AttendanceLate, 10)
	if err != nil {
		t.Fatalf("UpdateStatus() error = %v", err)
	}
	if record.Status != models.AttendanceLate {
		t.Fatalf("record status = %q, want late", record.Status)
	}

	if len(f.hub.messages) != 1 {
		t.Fatalf("broadcast %d messages, want 1", len(f.hub.messages))
	}
	if f.hub.messages[0].Type != "ATTENDANCE_UPDATED" {
		t.Fatalf("broadcast type = %q, want ATTENDANCE_UPDATED", f.hub.messages[0].Type)
	}
	if f.hub.rooms[0] != "session:1" {
		t.Fatalf("broadcast room = %q, want session:1", f.hub.rooms[0])
	}
}

func TestUpdateAttendanceStatusIdempotent(t *testing.T) {
	f := newAttendanceFixture(t)
	ctx := context.Background()

	if _, err := f.service.UpdateStatus(ctx, 2, models.AttendancePresent, 10); err != nil {
		t.Fatalf("UpdateStatus() error = %v", err)
	}
	record, err := f.service.UpdateStatus(ctx, 2, models.AttendancePresent, 10)
	if err != nil {
		t.Fatalf("repeated UpdateStatus() error = %v", err)
	}
	if record.Status != models.AttendancePresent {
		t.Fatalf("record status = %q, want present", record.Status)
	}
}

func TestUpdateAttendanceStatusRejectsPendingTarget(t *testing.T) {
	f := newAttendanceFixture(t)

	_, err := f.service.UpdateStatus(context.Background(), 2, models.AttendancePending, 10)
	if !errors.Is(err, ErrAttendancePendingTarget) {
		t.Fatalf("UpdateStatus() error = %v, want ErrAttendancePendingTarget", err)
	}
}

func TestUpdateAttendanceStatusRejectsUnknownStatus(t *testing.T) {
	f := newAttendanceFixture(t)

	_, err := f.service.UpdateStatus(context.Background(), 2, "sick", 10)
	if !errors.Is(err, ErrInvalidAttendanceStatus) {
		t.Fatalf("UpdateStatus() error = %v, want ErrInvalidAttendanceStatus", err)
	}
}

func TestUpdateAttendanceStatusForbiddenForPlayer(t *testing.T) {
	f := newAttendanceFixture(t)

	_, err := f.service.UpdateStatus(context.Background(), 2, models.AttendancePresent, 20)
	if !errors.Is(err, ErrForbiddenOperation) {
		t.Fatalf("UpdateStatus() error = %v, want ErrForbiddenOperation", err)
	}

	kept, _ := f.records.GetByID(context.Background(), 2)
	if kept.Status != models.AttendancePending {
		t.Fatalf("record status = %q after denied operation, want pending", kept.Status)
	}
}

func TestUpdateAttendanceNotes(t *testing.T) {
	f := newAttendanceFixture(t)

	notes := "left early, knee"
	record, err := f.service.UpdateNotes(context.Background(), 3, &notes, 10)
	if err != nil {
		t.Fatalf("UpdateNotes() error = %v", err)
	}
	if record.Notes == nil || *record.Notes != notes {
		t.Fatalf("record notes = %v, want %q", record.Notes, notes)
	}
}

func TestMarkAllPresent(t *testing.T) {
	f := newAttendanceFixture(t)
	ctx := context.Background()

	// Уже отмеченная строка не перетирается.
	if _, err := f.service.UpdateStatus(ctx, 1, models.AttendanceAbsent, 10); err != nil {
		t.Fatalf("UpdateStatus() error = %v", err)
	}
	f.hub.messages = nil
	f.hub.rooms = nil

	result, err := f.service.MarkAllPresent(ctx, 1, 10)
	if err != nil {
		t.Fatalf("MarkAllPresent() error = %v", err)
	}
	if result.Updated != 2 {
		t.Fatalf("MarkAllPresent() updated = %d, want 2", result.Updated)
	}
	if len(result.Failed) != 0 {
		t.Fatalf("MarkAllPresent() failed = %v, want none", result.Failed)
	}

	absent, _ := f.records.GetByID(ctx, 1)
	if absent.Status != models.AttendanceAbsent {
		t.Fatalf("already marked record overwritten to %q", absent.Status)
	}
	if len(f.hub.messages) != 1 {
		t.Fatalf("broadcast %d messages, want 1", len(f.hub.messages))
	}
}

func TestMarkAllPresentPartialFailure(t *testing.T) {
	f := newAttendanceFixture(t)
	f.records.failStatusIDs = map[int]error{2: errors.New("row deadlock")}

	result, err := f.service.MarkAllPresent(context.Background(), 1, 10)
	if err != nil {
		t.Fatalf("MarkAllPresent() error = %v", err)
	}
	if result.Updated != 2 {
		t.Fatalf("MarkAllPresent() updated = %d, want 2", result.Updated)
	}
	if len(result.Failed) != 1 || result.Failed[0] != 2 {
		t.Fatalf("MarkAllPresent() failed = %v, want [2]", result.Failed)
	}
	// Частичный успех всё равно транслируется.
	if len(f.hub.messages) != 1 {
		t.Fatalf("broadcast %d messages, want 1", len(f.hub.messages))
	}
}

func TestMarkAllPresentNothingPending(t *testing.T) {
	f := newAttendanceFixture(t)
	ctx := context.Background()

	if _, err := f.service.MarkAllPresent(ctx, 1, 10); err != nil {
		t.Fatalf("MarkAllPresent() error = %v", err)
	}
	f.hub.messages = nil

	result, err := f.service.MarkAllPresent(ctx, 1, 10)
	if err != nil {
		t.Fatalf("repeated MarkAllPresent() error = %v", err)
	}
	if result.Updated != 0 {
		t.Fatalf("MarkAllPresent() updated = %d, want 0", result.Updated)
	}
	if len(f.hub.messages) != 0 {
		t.Fatalf("broadcast %d messages with nothing to update, want 0", len(f.hub.messages))
	}
}

func TestGetSummary(t *testing.T) {
	f := newAttendanceFixture(t)
	ctx := context.Background()

	if _, err := f.service.UpdateStatus(ctx, 1, models.AttendancePresent, 10); err != nil {
		t.Fatalf("UpdateStatus() error = %v", err)
	}
	if _, err := f.service.UpdateStatus(ctx, 2, models.AttendanceAbsent, 10); err != nil {
		t.Fatalf("UpdateStatus() error = %v", err)
	}

	summary, err := f.service.GetSummary(ctx, 1)
	if err != nil {
		t.Fatalf("GetSummary() error = %v", err)
	}
	if summary.Total != 3 || summary.Present != 1 || summary.Absent != 1 || summary.Pending != 1 {
		t.Fatalf("summary = %+v, want total 3 / present 1 / absent 1 / pending 1", summary)
	}
	// 1 присутствующий из 3, округление до целого процента.
	if summary.Rate != 33 {
		t.Fatalf("summary rate = %d, want 33", summary.Rate)
	}
}

func TestGetSummarySessionNotFound(t *testing.T) {
	f := newAttendanceFixture(t)

	_, err := f.service.GetSummary(context.Background(), 99)
	if !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("GetSummary() error = %v, want ErrSessionNotFound", err)
	}
}

func TestListBySession(t *testing.T) {
	f := newAttendanceFixture(t)

	records, err := f.service.ListBySession(context.Background(), 1)
	if err != nil {
		t.Fatalf("ListBySession() error = %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("ListBySession() returned %d records, want 3", len(records))
	}
}
