package service

import (
	"time"

	"clubdesk/internal/models"
)

// Action is an operation a user may attempt against an entity.
type Action string

const (
	ActionViewEntity           Action = "view-entity"
	ActionCreateEntity         Action = "create-entity"
	ActionEditEntity           Action = "edit-entity"
	ActionDeleteEntity         Action = "delete-entity"
	ActionSetAttendance        Action = "set-attendance"
	ActionEditLockedAttendance Action = "edit-locked-attendance"
)

// ActionContext carries the entity-side inputs of a policy decision:
// the entity's category and, for attendance actions, whether a
// persisted record already exists for the (person, session) pair.
type ActionContext struct {
	Category     string
	RecordExists bool
}

// PolicyService is the access policy engine: a pure mapping from
// (user, action, context) to allow/deny. Unknown roles and actions
// deny (fail-closed); it never returns an error.
type PolicyService interface {
	CanAct(user *models.AppUser, action Action, actionCtx ActionContext) bool
}

// AttendanceService owns the attendance lock rule and the record
// merger, plus the orchestrated commit that applies a merged batch to
// the store and pushes it to the remote store best-effort.
type AttendanceService interface {
	// IsLocked is evaluated fresh on every check: the same session
	// flips from unlocked to locked purely by wall-clock advance.
	IsLocked(scheduledAt, now time.Time) bool

	// Commit merges staged per-player edits with the previously
	// persisted records of the session, all-or-nothing. It does not
	// consult the lock; callers gate on IsLocked first.
	Commit(session *models.TrainingSession, staged map[string]models.StagedEdit, existing []models.AttendanceRecord) ([]models.AttendanceRecord, error)

	// Record runs the full commit path for a user: policy per staged
	// player, lock gate (with the manager-only locked-edit override),
	// merge, local write-through, best-effort remote push.
	Record(user *models.AppUser, sessionID string, staged map[string]models.StagedEdit) ([]models.AttendanceRecord, error)

	GetBySession(sessionID string) []models.AttendanceRecord
}

// LineupService derives played minutes from a substitution event.
type LineupService interface {
	// ApplySubstitution is pure: it returns a new lineup and leaves
	// the input untouched. Committing the result to the match
	// document is the caller's job.
	ApplySubstitution(lineup models.Lineup, subIndex int, replacedPlayerID, minute string) (models.Lineup, error)
}

// PullResult reports a reconciliation pull: which collections were
// replaced and which fetches failed. Failures never abort the batch.
type PullResult struct {
	Updated []string
	Failed  map[string]error
}

type SyncService interface {
	Pull() (*PullResult, error)
	InProgress() bool
}

// RosterService manages people and categories, local-first.
type RosterService interface {
	People() []models.Person
	PersonByID(id string) (*models.Person, error)
	CreatePerson(person *models.Person) error
	UpdatePerson(person *models.Person) error
	DeletePerson(id string) error

	Categories() []models.Category
	CreateCategory(name string) (*models.Category, error)
	DeleteCategory(id string) error
}

// ScheduleService manages training sessions.
type ScheduleService interface {
	Sessions() []models.TrainingSession
	SessionByID(id string) (*models.TrainingSession, error)
	SessionsInRange(start, end time.Time) []models.TrainingSession
	CreateSession(session *models.TrainingSession) error
	UpdateSession(session *models.TrainingSession) error
	DeleteSession(id string) error
}

// MatchService manages fixtures. Saves are whole-document, last write
// wins; there is no field-level concurrency control.
type MatchService interface {
	Matches() []models.Match
	MatchByID(id string) (*models.Match, error)
	SaveMatch(match *models.Match) error
	DeleteMatch(id string) error

	// RecordSubstitution applies the lineup calculator to the match's
	// lineup and saves the updated document.
	RecordSubstitution(matchID string, subIndex int, replacedPlayerID, minute string) (*models.Match, error)
}

// UserService is the login collaborator: credential checks and the
// session tokens the web layer turns back into an AppUser.
type UserService interface {
	Login(username, password string) (token string, user *models.AppUser, err error)
	FromToken(token string) (*models.AppUser, error)
	Users() []models.AppUser
	CreateUser(username, password, role string, category *string) (*models.AppUser, error)
}
