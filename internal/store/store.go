package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"clubdesk/internal/cache"
	"clubdesk/internal/models"

	"go.uber.org/zap"
)

// Store is the in-memory authoritative collection of domain records.
// Every mutation is written through to the local snapshot cache before
// the caller attempts any remote write; a cache failure is logged and
// the in-memory state stays authoritative.
type Store struct {
	mu        sync.RWMutex
	state     models.AppState
	snapshots cache.SnapshotStore
	logger    *zap.Logger
}

func New(snapshots cache.SnapshotStore, logger *zap.Logger) *Store {
	return &Store{
		snapshots: snapshots,
		logger:    logger,
	}
}

// Load reads the snapshot once at startup. A missing or corrupt
// snapshot falls back to an empty default state; startup never fails
// on cache contents.
func (s *Store) Load(ctx context.Context) {
	state, err := s.snapshots.Load(ctx)
	if err != nil {
		switch {
		case errors.Is(err, cache.ErrNoSnapshot):
			s.logger.Info("no local snapshot, starting empty")
		case errors.Is(err, cache.ErrCorruptSnapshot):
			s.logger.Warn("local snapshot is corrupt, starting empty", zap.Error(err))
		default:
			s.logger.Warn("local snapshot unreadable, starting empty", zap.Error(err))
		}
		return
	}

	s.mu.Lock()
	s.state = *state
	s.mu.Unlock()
}

// Update runs fn on the state under the write lock, then writes the
// snapshot through to the local cache.
func (s *Store) Update(fn func(state *models.AppState)) {
	s.mu.Lock()
	fn(&s.state)
	snapshot := s.state
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.snapshots.Save(ctx, &snapshot); err != nil {
		s.logger.Error("snapshot write-through failed", zap.Error(err))
	}
}

func (s *Store) People() []models.Person {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Person(nil), s.state.People...)
}

func (s *Store) Sessions() []models.TrainingSession {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.TrainingSession(nil), s.state.Sessions...)
}

func (s *Store) Matches() []models.Match {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Match(nil), s.state.Matches...)
}

func (s *Store) Attendance() []models.AttendanceRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.AttendanceRecord(nil), s.state.Attendance...)
}

func (s *Store) Categories() []models.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Category(nil), s.state.Categories...)
}

func (s *Store) Users() []models.AppUser {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.AppUser(nil), s.state.Users...)
}

func (s *Store) PersonByID(id string) *models.Person {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.state.People {
		if s.state.People[i].ID == id {
			p := s.state.People[i]
			return &p
		}
	}
	return nil
}

func (s *Store) SessionByID(id string) *models.TrainingSession {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.state.Sessions {
		if s.state.Sessions[i].ID == id {
			sess := s.state.Sessions[i]
			return &sess
		}
	}
	return nil
}

func (s *Store) MatchByID(id string) *models.Match {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.state.Matches {
		if s.state.Matches[i].ID == id {
			m := s.state.Matches[i]
			return &m
		}
	}
	return nil
}

func (s *Store) UserByUsername(username string) *models.AppUser {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.state.Users {
		if s.state.Users[i].Username == username {
			u := s.state.Users[i]
			return &u
		}
	}
	return nil
}

// AttendanceBySession returns the persisted records for one session.
func (s *Store) AttendanceBySession(sessionID string) []models.AttendanceRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var records []models.AttendanceRecord
	for _, r := range s.state.Attendance {
		if r.SessionID == sessionID {
			records = append(records, r)
		}
	}
	return records
}

// HasAttendanceRecord reports whether a persisted record exists for
// the (person, session) pair. This feeds the category-admin one-shot
// rule in the access policy engine.
func (s *Store) HasAttendanceRecord(sessionID, personID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.state.Attendance {
		if r.SessionID == sessionID && r.PersonID == personID {
			return true
		}
	}
	return false
}

// ReplaceSessionAttendance swaps the full record set of one session;
// records for other sessions are untouched.
func (s *Store) ReplaceSessionAttendance(sessionID string, records []models.AttendanceRecord) {
	s.Update(func(state *models.AppState) {
		kept := state.Attendance[:0]
		for _, r := range state.Attendance {
			if r.SessionID != sessionID {
				kept = append(kept, r)
			}
		}
		state.Attendance = append(kept, records...)
	})
}
