package attendance_service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"clubdesk/internal/cache"
	"clubdesk/internal/models"
	policy_service "clubdesk/internal/service/policy"
	"clubdesk/internal/store"

	"clubdesk/internal/service"

	"go.uber.org/zap"
)

type nopSnapshots struct{}

func (nopSnapshots) Load(context.Context) (*models.AppState, error) {
	return nil, cache.ErrNoSnapshot
}
func (nopSnapshots) Save(context.Context, *models.AppState) error { return nil }

type fakeAttendanceRepo struct {
	inserted []models.AttendanceRecord
	deleted  [][2]string
}

func (f *fakeAttendanceRepo) GetAll() ([]models.AttendanceRecord, error) { return nil, nil }
func (f *fakeAttendanceRepo) GetBySession(string) ([]models.AttendanceRecord, error) {
	return nil, nil
}
func (f *fakeAttendanceRepo) Insert(record *models.AttendanceRecord) error {
	f.inserted = append(f.inserted, *record)
	return nil
}
func (f *fakeAttendanceRepo) DeleteByPersonSession(sessionID, personID string) error {
	f.deleted = append(f.deleted, [2]string{sessionID, personID})
	return nil
}

var testNow = time.Date(2026, 3, 14, 16, 20, 0, 0, time.UTC)

func newTestService(t *testing.T, sessions []models.TrainingSession, records []models.AttendanceRecord) (*attendanceService, *store.Store, *fakeAttendanceRepo) {
	t.Helper()

	st := store.New(nopSnapshots{}, zap.NewNop())
	st.Update(func(state *models.AppState) {
		state.Sessions = sessions
		state.Attendance = records
	})

	repo := &fakeAttendanceRepo{}
	svc := NewAttendanceService(repo, policy_service.NewPolicyService(), st, zap.NewNop()).(*attendanceService)
	svc.now = func() time.Time { return testNow }

	seq := 0
	svc.newID = func() string {
		seq++
		return fmt.Sprintf("rec-%d", seq)
	}

	return svc, st, repo
}

func strptr(s string) *string { return &s }

func TestIsLockedBoundary(t *testing.T) {
	svc, _, _ := newTestService(t, nil, nil)
	scheduled := time.Date(2026, 3, 14, 16, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		now  time.Time
		want bool
	}{
		{"before session", scheduled.Add(-time.Hour), false},
		{"at kickoff", scheduled, false},
		{"exactly 30 minutes", scheduled.Add(30 * time.Minute), false},
		{"one second past window", scheduled.Add(30*time.Minute + time.Second), true},
		{"one minute past window", scheduled.Add(31 * time.Minute), true},
		{"days later", scheduled.Add(48 * time.Hour), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := svc.IsLocked(scheduled, tt.now); got != tt.want {
				t.Errorf("IsLocked(%v, %v) = %v, want %v", scheduled, tt.now, got, tt.want)
			}
		})
	}
}

func testSession() *models.TrainingSession {
	return &models.TrainingSession{
		ID:          "s1",
		Category:    "U16",
		ScheduledAt: time.Date(2026, 3, 14, 16, 0, 0, 0, time.UTC),
	}
}

func TestCommitRejectsEmptyBatch(t *testing.T) {
	svc, _, _ := newTestService(t, nil, nil)

	if _, err := svc.Commit(testSession(), nil, nil); err != service.ErrNothingToSave {
		t.Errorf("nil staged: err = %v, want ErrNothingToSave", err)
	}
	if _, err := svc.Commit(testSession(), map[string]models.StagedEdit{}, nil); err != service.ErrNothingToSave {
		t.Errorf("empty staged: err = %v, want ErrNothingToSave", err)
	}
}

func TestCommitUpsertSemantics(t *testing.T) {
	svc, _, _ := newTestService(t, nil, nil)
	session := testSession()

	existing := []models.AttendanceRecord{
		{ID: "old-1", SessionID: "s1", PersonID: "p1", Status: models.StatusPresent, Date: "2026-03-14", Time: "16:01", Locked: true},
		{ID: "old-2", SessionID: "s1", PersonID: "p2", Status: models.StatusAbsent, Date: "2026-03-14", Time: "16:02", Locked: true},
	}
	staged := map[string]models.StagedEdit{
		"p2": {Status: models.StatusLate, Time: "16:05"},
		"p3": {Status: models.StatusExcused, Excuse: "dentist", Time: "16:06"},
	}

	next, err := svc.Commit(session, staged, existing)
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}

	byPerson := map[string][]models.AttendanceRecord{}
	for _, rec := range next {
		byPerson[rec.PersonID] = append(byPerson[rec.PersonID], rec)
	}

	for _, personID := range []string{"p1", "p2", "p3"} {
		if len(byPerson[personID]) != 1 {
			t.Fatalf("person %s has %d records, want 1", personID, len(byPerson[personID]))
		}
	}

	// Non-targeted rows are untouched.
	if byPerson["p1"][0].ID != "old-1" || byPerson["p1"][0].Status != models.StatusPresent {
		t.Errorf("p1 record changed: %+v", byPerson["p1"][0])
	}

	// Targeted rows are fully replaced.
	p2 := byPerson["p2"][0]
	if p2.ID == "old-2" {
		t.Error("p2 record kept its old identifier")
	}
	if p2.Status != models.StatusLate || p2.Time != "16:05" {
		t.Errorf("p2 record = %+v", p2)
	}
	if !p2.Locked {
		t.Error("committed record not marked locked")
	}

	p3 := byPerson["p3"][0]
	if p3.Excuse != "dentist" {
		t.Errorf("p3 excuse = %q", p3.Excuse)
	}
	if p3.Date != "2026-03-14" {
		t.Errorf("p3 date = %q, want session date fallback", p3.Date)
	}
}

func TestCommitTimeCapturePolicy(t *testing.T) {
	svc, _, _ := newTestService(t, nil, nil)
	session := testSession()

	// The staged time is frozen at the moment the status was set, not
	// at commit time.
	staged := map[string]models.StagedEdit{
		"p1": {Status: models.StatusPresent, Time: "16:05"},
		"p2": {Status: models.StatusPresent},
	}

	next, err := svc.Commit(session, staged, nil)
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}

	times := map[string]string{}
	for _, rec := range next {
		times[rec.PersonID] = rec.Time
	}
	if times["p1"] != "16:05" {
		t.Errorf("staged time not preserved: %q", times["p1"])
	}
	if times["p2"] != testNow.Format("15:04") {
		t.Errorf("missing staged time not captured from clock: %q", times["p2"])
	}
}

func TestCommitTwiceConverges(t *testing.T) {
	svc, _, _ := newTestService(t, nil, nil)
	session := testSession()
	staged := map[string]models.StagedEdit{
		"p1": {Status: models.StatusPresent, Time: "16:05"},
	}

	first, err := svc.Commit(session, staged, nil)
	if err != nil {
		t.Fatalf("first Commit: %v", err)
	}
	second, err := svc.Commit(session, staged, first)
	if err != nil {
		t.Fatalf("second Commit: %v", err)
	}

	if len(second) != 1 {
		t.Fatalf("second commit produced %d records, want 1", len(second))
	}
	if second[0].ID == first[0].ID {
		t.Error("second commit reused the first identifier")
	}

	a, b := first[0], second[0]
	a.ID, b.ID = "", ""
	if a != b {
		t.Errorf("content did not converge: %+v vs %+v", first[0], second[0])
	}
}

func TestRecordUnknownSession(t *testing.T) {
	svc, _, _ := newTestService(t, nil, nil)
	manager := &models.AppUser{ID: "u1", Role: models.RoleManager}

	_, err := svc.Record(manager, "missing", map[string]models.StagedEdit{"p1": {Status: models.StatusPresent}})
	if err != service.ErrNotFound {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestRecordLockGate(t *testing.T) {
	// Scheduled 31 minutes before the test clock: locked.
	locked := &models.TrainingSession{
		ID:          "s1",
		Category:    "U16",
		ScheduledAt: testNow.Add(-31 * time.Minute),
	}
	staged := map[string]models.StagedEdit{"p1": {Status: models.StatusPresent, Time: "16:05"}}

	t.Run("category admin rejected", func(t *testing.T) {
		svc, st, repo := newTestService(t, []models.TrainingSession{*locked}, nil)
		admin := &models.AppUser{ID: "u1", Role: models.RoleCategoryAdmin, Category: strptr("U16")}

		if _, err := svc.Record(admin, "s1", staged); err != service.ErrSessionLocked {
			t.Fatalf("err = %v, want ErrSessionLocked", err)
		}
		if len(st.AttendanceBySession("s1")) != 0 {
			t.Error("locked rejection wrote records")
		}
		if len(repo.inserted) != 0 {
			t.Error("locked rejection pushed remote writes")
		}
	})

	t.Run("manager override", func(t *testing.T) {
		svc, st, _ := newTestService(t, []models.TrainingSession{*locked}, nil)
		manager := &models.AppUser{ID: "u1", Role: models.RoleManager}

		if _, err := svc.Record(manager, "s1", staged); err != nil {
			t.Fatalf("manager Record: %v", err)
		}
		if len(st.AttendanceBySession("s1")) != 1 {
			t.Error("manager override did not persist")
		}
	})
}

func TestRecordCategoryAdminOneShot(t *testing.T) {
	session := testSession()
	session.ScheduledAt = testNow.Add(-10 * time.Minute) // inside the window

	svc, st, _ := newTestService(t, []models.TrainingSession{*session}, nil)
	admin := &models.AppUser{ID: "u1", Role: models.RoleCategoryAdmin, Category: strptr("U16")}

	first := map[string]models.StagedEdit{"p1": {Status: models.StatusPresent, Time: "16:05"}}
	if _, err := svc.Record(admin, "s1", first); err != nil {
		t.Fatalf("first Record: %v", err)
	}

	// Any second attempt for the same pair is denied, whatever the
	// status value.
	second := map[string]models.StagedEdit{"p1": {Status: models.StatusAbsent, Time: "16:10"}}
	if _, err := svc.Record(admin, "s1", second); err != service.ErrPermissionDenied {
		t.Fatalf("err = %v, want ErrPermissionDenied", err)
	}

	records := st.AttendanceBySession("s1")
	if len(records) != 1 || records[0].Status != models.StatusPresent {
		t.Errorf("records after denied retry = %+v", records)
	}

	// A manager may still overwrite the pair.
	manager := &models.AppUser{ID: "u2", Role: models.RoleManager}
	if _, err := svc.Record(manager, "s1", second); err != nil {
		t.Fatalf("manager Record: %v", err)
	}
	records = st.AttendanceBySession("s1")
	if len(records) != 1 || records[0].Status != models.StatusAbsent {
		t.Errorf("records after manager overwrite = %+v", records)
	}
}

func TestRecordBatchIsAllOrNothing(t *testing.T) {
	session := testSession()
	session.ScheduledAt = testNow.Add(-10 * time.Minute)

	existing := []models.AttendanceRecord{
		{ID: "old-1", SessionID: "s1", PersonID: "p2", Status: models.StatusPresent, Locked: true},
	}
	svc, st, repo := newTestService(t, []models.TrainingSession{*session}, existing)
	admin := &models.AppUser{ID: "u1", Role: models.RoleCategoryAdmin, Category: strptr("U16")}

	// p1 is fresh, p2 already has a record: the one-shot rule denies
	// p2 and the whole batch must be rejected with no partial write.
	staged := map[string]models.StagedEdit{
		"p1": {Status: models.StatusPresent, Time: "16:05"},
		"p2": {Status: models.StatusLate, Time: "16:05"},
	}
	if _, err := svc.Record(admin, "s1", staged); err != service.ErrPermissionDenied {
		t.Fatalf("err = %v, want ErrPermissionDenied", err)
	}

	records := st.AttendanceBySession("s1")
	if len(records) != 1 || records[0].ID != "old-1" {
		t.Errorf("partial write happened: %+v", records)
	}
	if len(repo.inserted) != 0 || len(repo.deleted) != 0 {
		t.Error("denied batch reached the remote store")
	}
}

func TestRecordPushesRemoteBestEffort(t *testing.T) {
	session := testSession()
	session.ScheduledAt = testNow.Add(-10 * time.Minute)

	svc, _, repo := newTestService(t, []models.TrainingSession{*session}, nil)
	manager := &models.AppUser{ID: "u1", Role: models.RoleManager}

	staged := map[string]models.StagedEdit{
		"p1": {Status: models.StatusPresent, Time: "16:05"},
		"p2": {Status: models.StatusLate, Time: "16:06"},
	}
	if _, err := svc.Record(manager, "s1", staged); err != nil {
		t.Fatalf("Record: %v", err)
	}

	if len(repo.deleted) != 2 {
		t.Errorf("remote deletes = %d, want 2", len(repo.deleted))
	}
	if len(repo.inserted) != 2 {
		t.Errorf("remote inserts = %d, want 2", len(repo.inserted))
	}
	for _, rec := range repo.inserted {
		if rec.SessionID != "s1" || !rec.Locked {
			t.Errorf("pushed record = %+v", rec)
		}
	}
}
