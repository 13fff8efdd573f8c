package attendance_service

import (
	"sort"
	"time"

	"clubdesk/internal/models"
	"clubdesk/internal/repository"
	"clubdesk/internal/service"
	"clubdesk/internal/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LockWindow is how long after the scheduled time attendance stays
// editable. Strictly beyond it the session is locked; the boundary
// itself is still unlocked.
const LockWindow = 30 * time.Minute

type attendanceService struct {
	attendanceRepo repository.AttendanceRepository
	policy         service.PolicyService
	store          *store.Store
	logger         *zap.Logger

	// injectable for tests
	now   func() time.Time
	newID func() string
}

func NewAttendanceService(
	attendanceRepo repository.AttendanceRepository,
	policy service.PolicyService,
	st *store.Store,
	logger *zap.Logger,
) service.AttendanceService {
	return &attendanceService{
		attendanceRepo: attendanceRepo,
		policy:         policy,
		store:          st,
		logger:         logger,
		now:            time.Now,
		newID:          uuid.NewString,
	}
}

// IsLocked is not a stored flag: it is recomputed on every check, so a
// session flips to locked as wall-clock time advances with no event.
// Future sessions (negative difference) are never locked.
func (s *attendanceService) IsLocked(scheduledAt, now time.Time) bool {
	return now.Sub(scheduledAt) > LockWindow
}

// Commit synthesizes the next persisted record set for the session:
// existing records minus those whose person appears in the staged
// batch, plus one fresh record per staged edit. The batch is
// all-or-nothing; the staged HH:MM time is kept as captured in the UI,
// not replaced with commit time.
func (s *attendanceService) Commit(
	session *models.TrainingSession,
	staged map[string]models.StagedEdit,
	existing []models.AttendanceRecord,
) ([]models.AttendanceRecord, error) {
	if len(staged) == 0 {
		return nil, service.ErrNothingToSave
	}

	next := make([]models.AttendanceRecord, 0, len(existing)+len(staged))
	for _, rec := range existing {
		if _, replaced := staged[rec.PersonID]; !replaced {
			next = append(next, rec)
		}
	}

	personIDs := make([]string, 0, len(staged))
	for personID := range staged {
		personIDs = append(personIDs, personID)
	}
	sort.Strings(personIDs)

	for _, personID := range personIDs {
		edit := staged[personID]

		date := edit.Date
		if date == "" {
			date = session.DateString()
		}
		setAt := edit.Time
		if setAt == "" {
			setAt = s.now().Format("15:04")
		}

		next = append(next, models.AttendanceRecord{
			ID:        s.newID(),
			SessionID: session.ID,
			PersonID:  personID,
			Status:    edit.Status,
			Excuse:    edit.Excuse,
			Date:      date,
			Time:      setAt,
			Locked:    true,
		})
	}

	return next, nil
}

// Record is the full commit path: policy per staged player, lock gate,
// merge, synchronous local write-through, then best-effort remote
// push. A failed remote write is logged and not rolled back locally.
func (s *attendanceService) Record(
	user *models.AppUser,
	sessionID string,
	staged map[string]models.StagedEdit,
) ([]models.AttendanceRecord, error) {
	session := s.store.SessionByID(sessionID)
	if session == nil {
		return nil, service.ErrNotFound
	}
	if len(staged) == 0 {
		return nil, service.ErrNothingToSave
	}

	if s.IsLocked(session.ScheduledAt, s.now()) {
		override := s.policy.CanAct(user, service.ActionEditLockedAttendance, service.ActionContext{
			Category: session.Category,
		})
		if !override {
			return nil, service.ErrSessionLocked
		}
	}

	// No partial writes: one denied player rejects the whole batch.
	for personID := range staged {
		actionCtx := service.ActionContext{
			Category:     session.Category,
			RecordExists: s.store.HasAttendanceRecord(sessionID, personID),
		}
		if !s.policy.CanAct(user, service.ActionSetAttendance, actionCtx) {
			return nil, service.ErrPermissionDenied
		}
	}

	next, err := s.Commit(session, staged, s.store.AttendanceBySession(sessionID))
	if err != nil {
		return nil, err
	}

	s.store.ReplaceSessionAttendance(sessionID, next)

	for personID := range staged {
		if err := s.attendanceRepo.DeleteByPersonSession(sessionID, personID); err != nil {
			s.logger.Warn("remote attendance delete failed",
				zap.String("session_id", sessionID),
				zap.String("person_id", personID),
				zap.Error(err))
		}
	}
	for i := range next {
		rec := next[i]
		if _, fresh := staged[rec.PersonID]; !fresh {
			continue
		}
		if err := s.attendanceRepo.Insert(&rec); err != nil {
			s.logger.Warn("remote attendance insert failed",
				zap.String("record_id", rec.ID),
				zap.Error(err))
		}
	}

	return next, nil
}

func (s *attendanceService) GetBySession(sessionID string) []models.AttendanceRecord {
	return s.store.AttendanceBySession(sessionID)
}
