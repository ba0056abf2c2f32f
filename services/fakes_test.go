package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Dosada05/team-training-system/live"
	"github.com/Dosada05/team-training-system/models"
	"github.com/Dosada05/team-training-system/repositories"
)

// fakeTxManager выполняет fn без настоящей транзакции: in-memory хранилища
// атомарность не моделируют, тесты проверяют порядок проверок и вызовов.
// beforeFn срабатывает перед fn и моделирует конкурентную запись,
// закоммиченную к моменту открытия транзакции.
type fakeTxManager struct {
	calls    int
	beforeFn func()
}

func (m *fakeTxManager) WithinTx(ctx context.Context, fn func(exec repositories.SQLExecutor) error) error {
	m.calls++
	if m.beforeFn != nil {
		m.beforeFn()
	}
	return fn(nil)
}

type fakeBroadcaster struct {
	mu       sync.Mutex
	messages []live.Message
	rooms    []string
}

func (b *fakeBroadcaster) BroadcastToRoom(room string, msg live.Message) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.rooms = append(b.rooms, room)
	b.messages = append(b.messages, msg)
}

// --- Пользователи ---

type fakeUserRepo struct {
	users map[int]*models.User
}

func newFakeUserRepo(users ...*models.User) *fakeUserRepo {
	repo := &fakeUserRepo{users: make(map[int]*models.User)}
	for _, u := range users {
		repo.users[u.ID] = u
	}
	return repo
}

func (r *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	user.ID = len(r.users) + 1
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id int) (*models.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	copied := *u
	return &copied, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (r *fakeUserRepo) Update(ctx context.Context, user *models.User) error {
	if _, ok := r.users[user.ID]; !ok {
		return repositories.ErrUserNotFound
	}
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) UpdateLogoKey(ctx context.Context, id int, logoKey *string) error {
	u, ok := r.users[id]
	if !ok {
		return repositories.ErrUserNotFound
	}
	u.LogoKey = logoKey
	return nil
}

// --- Виды спорта ---

type fakeSportRepo struct {
	sports map[int]*models.Sport
	nextID int

	// inUseIDs моделирует внешний ключ teams.sport_id при удалении.
	inUseIDs map[int]bool
}

func newFakeSportRepo(sports ...*models.Sport) *fakeSportRepo {
	repo := &fakeSportRepo{
		sports:   make(map[int]*models.Sport),
		nextID:   1,
		inUseIDs: make(map[int]bool),
	}
	for _, s := range sports {
		repo.sports[s.ID] = s
		if s.ID >= repo.nextID {
			repo.nextID = s.ID + 1
		}
	}
	return repo
}

func (r *fakeSportRepo) Create(ctx context.Context, sport *models.Sport) error {
	for _, s := range r.sports {
		if s.Name == sport.Name {
			return repositories.ErrSportNameConflict
		}
	}
	sport.ID = r.nextID
	r.nextID++
	copied := *sport
	r.sports[sport.ID] = &copied
	return nil
}

func (r *fakeSportRepo) GetByID(ctx context.Context, id int) (*models.Sport, error) {
	s, ok := r.sports[id]
	if !ok {
		return nil, repositories.ErrSportNotFound
	}
	copied := *s
	return &copied, nil
}

func (r *fakeSportRepo) List(ctx context.Context) ([]*models.Sport, error) {
	var result []*models.Sport
	for _, s := range r.sports {
		copied := *s
		result = append(result, &copied)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (r *fakeSportRepo) Update(ctx context.Context, sport *models.Sport) error {
	if _, ok := r.sports[sport.ID]; !ok {
		return repositories.ErrSportNotFound
	}
	for _, s := range r.sports {
		if s.ID != sport.ID && s.Name == sport.Name {
			return repositories.ErrSportNameConflict
		}
	}
	copied := *sport
	r.sports[sport.ID] = &copied
	return nil
}

func (r *fakeSportRepo) Delete(ctx context.Context, id int) error {
	if _, ok := r.sports[id]; !ok {
		return repositories.ErrSportNotFound
	}
	if r.inUseIDs[id] {
		return repositories.ErrSportInUse
	}
	delete(r.sports, id)
	return nil
}

// --- Команды ---

type fakeTeamRepo struct {
	teams  map[int]*models.Team
	nextID int
	locks  int
}

func newFakeTeamRepo(teams ...*models.Team) *fakeTeamRepo {
	repo := &fakeTeamRepo{teams: make(map[int]*models.Team), nextID: 1}
	for _, t := range teams {
		repo.teams[t.ID] = t
		if t.ID >= repo.nextID {
			repo.nextID = t.ID + 1
		}
	}
	return repo
}

func (r *fakeTeamRepo) Create(ctx context.Context, exec repositories.SQLExecutor, team *models.Team) error {
	for _, t := range r.teams {
		if t.Name == team.Name {
			return repositories.ErrTeamNameConflict
		}
	}
	team.ID = r.nextID
	r.nextID++
	r.teams[team.ID] = team
	return nil
}

func (r *fakeTeamRepo) GetByID(ctx context.Context, id int) (*models.Team, error) {
	t, ok := r.teams[id]
	if !ok {
		return nil, repositories.ErrTeamNotFound
	}
	copied := *t
	return &copied, nil
}

func (r *fakeTeamRepo) Update(ctx context.Context, team *models.Team) error {
	if _, ok := r.teams[team.ID]; !ok {
		return repositories.ErrTeamNotFound
	}
	r.teams[team.ID] = team
	return nil
}

func (r *fakeTeamRepo) Delete(ctx context.Context, id int) error {
	if _, ok := r.teams[id]; !ok {
		return repositories.ErrTeamNotFound
	}
	delete(r.teams, id)
	return nil
}

func (r *fakeTeamRepo) UpdateLogoKey(ctx context.Context, id int, logoKey *string) error {
	t, ok := r.teams[id]
	if !ok {
		return repositories.ErrTeamNotFound
	}
	t.LogoKey = logoKey
	return nil
}

func (r *fakeTeamRepo) LockForUpdate(ctx context.Context, exec repositories.SQLExecutor, id int) error {
	if _, ok := r.teams[id]; !ok {
		return repositories.ErrTeamNotFound
	}
	r.locks++
	return nil
}

// --- Состав ---

type fakeMemberRepo struct {
	members map[int]*models.TeamMember
	nextID  int
}

func newFakeMemberRepo(members ...*models.TeamMember) *fakeMemberRepo {
	repo := &fakeMemberRepo{members: make(map[int]*models.TeamMember), nextID: 1}
	for _, m := range members {
		repo.members[m.ID] = m
		if m.ID >= repo.nextID {
			repo.nextID = m.ID + 1
		}
	}
	return repo
}

func (r *fakeMemberRepo) Create(ctx context.Context, exec repositories.SQLExecutor, member *models.TeamMember) error {
	for _, m := range r.members {
		if m.TeamID == member.TeamID && m.UserID == member.UserID && m.Role == member.Role {
			return repositories.ErrMemberRoleConflict
		}
	}
	member.ID = r.nextID
	r.nextID++
	copied := *member
	r.members[member.ID] = &copied
	return nil
}

func (r *fakeMemberRepo) GetByID(ctx context.Context, id int) (*models.TeamMember, error) {
	m, ok := r.members[id]
	if !ok {
		return nil, repositories.ErrMemberNotFound
	}
	copied := *m
	return &copied, nil
}

func (r *fakeMemberRepo) Update(ctx context.Context, exec repositories.SQLExecutor, member *models.TeamMember) error {
	if _, ok := r.members[member.ID]; !ok {
		return repositories.ErrMemberNotFound
	}
	for _, m := range r.members {
		if m.ID != member.ID && m.TeamID == member.TeamID && m.UserID == member.UserID && m.Role == member.Role {
			return repositories.ErrMemberRoleConflict
		}
	}
	copied := *member
	r.members[member.ID] = &copied
	return nil
}

func (r *fakeMemberRepo) Delete(ctx context.Context, exec repositories.SQLExecutor, id int) error {
	if _, ok := r.members[id]; !ok {
		return repositories.ErrMemberNotFound
	}
	delete(r.members, id)
	return nil
}

func (r *fakeMemberRepo) ListByTeam(ctx context.Context, exec repositories.SQLExecutor, teamID int) ([]*models.TeamMember, error) {
	var result []*models.TeamMember
	for _, m := range r.members {
		if m.TeamID == teamID {
			copied := *m
			result = append(result, &copied)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (r *fakeMemberRepo) ListRolesByUser(ctx context.Context, teamID, userID int) ([]models.MemberRole, error) {
	var roles []models.MemberRole
	for _, m := range r.members {
		if m.TeamID == teamID && m.UserID == userID {
			roles = append(roles, m.Role)
		}
	}
	return roles, nil
}

func (r *fakeMemberRepo) CountMembers(ctx context.Context, exec repositories.SQLExecutor, teamID int) (int, error) {
	count := 0
	for _, m := range r.members {
		if m.TeamID == teamID {
			count++
		}
	}
	return count, nil
}

func (r *fakeMemberRepo) CountLeaders(ctx context.Context, exec repositories.SQLExecutor, teamID, excludeMemberID int) (int, error) {
	count := 0
	for _, m := range r.members {
		if m.TeamID == teamID && m.ID != excludeMemberID && m.Role.IsLeadership() {
			count++
		}
	}
	return count, nil
}

// --- Тренировки ---

type fakeSessionRepo struct {
	sessions map[int]*models.TrainingSession
	nextID   int
}

func newFakeSessionRepo(sessions ...*models.TrainingSession) *fakeSessionRepo {
	repo := &fakeSessionRepo{sessions: make(map[int]*models.TrainingSession), nextID: 1}
	for _, s := range sessions {
		repo.sessions[s.ID] = s
		if s.ID >= repo.nextID {
			repo.nextID = s.ID + 1
		}
	}
	return repo
}

func (r *fakeSessionRepo) Create(ctx context.Context, exec repositories.SQLExecutor, session *models.TrainingSession) error {
	session.ID = r.nextID
	r.nextID++
	session.CreatedAt = time.Now()
	copied := *session
	r.sessions[session.ID] = &copied
	return nil
}

func (r *fakeSessionRepo) GetByID(ctx context.Context, id int) (*models.TrainingSession, error) {
	s, ok := r.sessions[id]
	if !ok {
		return nil, repositories.ErrSessionNotFound
	}
	copied := *s
	return &copied, nil
}

func (r *fakeSessionRepo) Update(ctx context.Context, session *models.TrainingSession) error {
	if _, ok := r.sessions[session.ID]; !ok {
		return repositories.ErrSessionNotFound
	}
	copied := *session
	r.sessions[session.ID] = &copied
	return nil
}

func (r *fakeSessionRepo) Delete(ctx context.Context, id int) error {
	if _, ok := r.sessions[id]; !ok {
		return repositories.ErrSessionNotFound
	}
	delete(r.sessions, id)
	return nil
}

func (r *fakeSessionRepo) List(ctx context.Context, filter repositories.SessionFilter) ([]*models.TrainingSession, error) {
	var result []*models.TrainingSession
	for _, s := range r.sessions {
		if filter.TeamID != nil && s.TeamID != *filter.TeamID {
			continue
		}
		if filter.Status != nil && s.Status != *filter.Status {
			continue
		}
		copied := *s
		result = append(result, &copied)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ScheduledAt.Before(result[j].ScheduledAt) })
	return result, nil
}

// --- Упражнения тренировки ---

type fakeSessionExerciseRepo struct {
	exercises map[int][]models.SessionExercise
	nextID    int
}

func newFakeSessionExerciseRepo() *fakeSessionExerciseRepo {
	return &fakeSessionExerciseRepo{exercises: make(map[int][]models.SessionExercise), nextID: 1}
}

func (r *fakeSessionExerciseRepo) CreateBatch(ctx context.Context, exec repositories.SQLExecutor, exercises []*models.SessionExercise) error {
	for _, se := range exercises {
		se.ID = r.nextID
		r.nextID++
		r.exercises[se.SessionID] = append(r.exercises[se.SessionID], *se)
	}
	return nil
}

func (r *fakeSessionExerciseRepo) ListBySession(ctx context.Context, sessionID int) ([]models.SessionExercise, error) {
	result := append([]models.SessionExercise(nil), r.exercises[sessionID]...)
	sort.Slice(result, func(i, j int) bool { return result[i].Order < result[j].Order })
	return result, nil
}

// --- Посещаемость ---

type fakeAttendanceRepo struct {
	records map[int]*models.Attendance
	nextID  int

	// failStatusIDs форсирует ошибку UpdateStatus для перечисленных записей.
	failStatusIDs map[int]error
}

func newFakeAttendanceRepo(records ...*models.Attendance) *fakeAttendanceRepo {
	repo := &fakeAttendanceRepo{records: make(map[int]*models.Attendance), nextID: 1}
	for _, a := range records {
		repo.records[a.ID] = a
		if a.ID >= repo.nextID {
			repo.nextID = a.ID + 1
		}
	}
	return repo
}

func (r *fakeAttendanceRepo) CreateBatch(ctx context.Context, exec repositories.SQLExecutor, records []*models.Attendance) error {
	for _, a := range records {
		for _, existing := range r.records {
			if existing.SessionID == a.SessionID && existing.MemberID == a.MemberID {
				return repositories.ErrAttendanceConflict
			}
		}
		a.ID = r.nextID
		r.nextID++
		copied := *a
		r.records[a.ID] = &copied
	}
	return nil
}

func (r *fakeAttendanceRepo) GetByID(ctx context.Context, id int) (*models.Attendance, error) {
	a, ok := r.records[id]
	if !ok {
		return nil, repositories.ErrAttendanceNotFound
	}
	copied := *a
	return &copied, nil
}

func (r *fakeAttendanceRepo) UpdateStatus(ctx context.Context, id int, status models.AttendanceStatus) error {
	if err, ok := r.failStatusIDs[id]; ok {
		return err
	}
	a, ok := r.records[id]
	if !ok {
		return repositories.ErrAttendanceNotFound
	}
	a.Status = status
	a.UpdatedAt = time.Now()
	return nil
}

func (r *fakeAttendanceRepo) UpdateNotes(ctx context.Context, id int, notes *string) error {
	a, ok := r.records[id]
	if !ok {
		return repositories.ErrAttendanceNotFound
	}
	a.Notes = notes
	a.UpdatedAt = time.Now()
	return nil
}

func (r *fakeAttendanceRepo) ListBySession(ctx context.Context, sessionID int) ([]models.Attendance, error) {
	var result []models.Attendance
	for _, a := range r.records {
		if a.SessionID == sessionID {
			result = append(result, *a)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (r *fakeAttendanceRepo) ListPendingIDs(ctx context.Context, sessionID int) ([]int, error) {
	var ids []int
	for _, a := range r.records {
		if a.SessionID == sessionID && a.Status == models.AttendancePending {
			ids = append(ids, a.ID)
		}
	}
	sort.Ints(ids)
	return ids, nil
}

func (r *fakeAttendanceRepo) CountByStatus(ctx context.Context, sessionID int) (map[models.AttendanceStatus]int, error) {
	counts := make(map[models.AttendanceStatus]int)
	for _, a := range r.records {
		if a.SessionID == sessionID {
			counts[a.Status]++
		}
	}
	return counts, nil
}

// --- Шаблоны тренировок ---

type fakeWorkoutRepo struct {
	workouts  map[int]*models.Workout
	exercises map[int][]models.WorkoutExercise
	nextID    int
}

func newFakeWorkoutRepo(workouts ...*models.Workout) *fakeWorkoutRepo {
	repo := &fakeWorkoutRepo{
		workouts:  make(map[int]*models.Workout),
		exercises: make(map[int][]models.WorkoutExercise),
		nextID:    1,
	}
	for _, w := range workouts {
		repo.workouts[w.ID] = w
		repo.exercises[w.ID] = w.Exercises
		if w.ID >= repo.nextID {
			repo.nextID = w.ID + 1
		}
	}
	return repo
}

func (r *fakeWorkoutRepo) Create(ctx context.Context, workout *models.Workout) error {
	workout.ID = r.nextID
	r.nextID++
	r.workouts[workout.ID] = workout
	return nil
}

func (r *fakeWorkoutRepo) GetByID(ctx context.Context, id int) (*models.Workout, error) {
	w, ok := r.workouts[id]
	if !ok {
		return nil, repositories.ErrWorkoutNotFound
	}
	copied := *w
	return &copied, nil
}

func (r *fakeWorkoutRepo) Update(ctx context.Context, workout *models.Workout) error {
	if _, ok := r.workouts[workout.ID]; !ok {
		return repositories.ErrWorkoutNotFound
	}
	r.workouts[workout.ID] = workout
	return nil
}

func (r *fakeWorkoutRepo) Delete(ctx context.Context, id int) error {
	if _, ok := r.workouts[id]; !ok {
		return repositories.ErrWorkoutNotFound
	}
	delete(r.workouts, id)
	return nil
}

func (r *fakeWorkoutRepo) List(ctx context.Context, filter repositories.WorkoutFilter) ([]*models.Workout, error) {
	var result []*models.Workout
	for _, w := range r.workouts {
		if filter.CreatorID != nil && w.CreatorID != *filter.CreatorID {
			continue
		}
		copied := *w
		result = append(result, &copied)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (r *fakeWorkoutRepo) ListExercises(ctx context.Context, exec repositories.SQLExecutor, workoutID int) ([]models.WorkoutExercise, error) {
	return append([]models.WorkoutExercise(nil), r.exercises[workoutID]...), nil
}

func (r *fakeWorkoutRepo) ReplaceExercises(ctx context.Context, workoutID int, exercises []models.WorkoutExercise) error {
	if _, ok := r.workouts[workoutID]; !ok {
		return repositories.ErrWorkoutNotFound
	}
	r.exercises[workoutID] = append([]models.WorkoutExercise(nil), exercises...)
	return nil
}
