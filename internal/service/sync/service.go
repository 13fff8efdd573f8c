package sync_service

import (
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"clubdesk/internal/models"
	"clubdesk/internal/repository"
	"clubdesk/internal/service"
	"clubdesk/internal/store"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Remote collection names as reported in pull results.
const (
	CollectionPeople     = "people"
	CollectionSessions   = "sessions"
	CollectionMatches    = "matches"
	CollectionAttendance = "attendance"
	CollectionCategories = "categories"
)

type syncService struct {
	personRepo     repository.PersonRepository
	sessionRepo    repository.SessionRepository
	matchRepo      repository.MatchRepository
	attendanceRepo repository.AttendanceRepository
	categoryRepo   repository.CategoryRepository
	store          *store.Store
	logger         *zap.Logger

	inFlight atomic.Bool
}

func NewSyncService(
	personRepo repository.PersonRepository,
	sessionRepo repository.SessionRepository,
	matchRepo repository.MatchRepository,
	attendanceRepo repository.AttendanceRepository,
	categoryRepo repository.CategoryRepository,
	st *store.Store,
	logger *zap.Logger,
) service.SyncService {
	return &syncService{
		personRepo:     personRepo,
		sessionRepo:    sessionRepo,
		matchRepo:      matchRepo,
		attendanceRepo: attendanceRepo,
		categoryRepo:   categoryRepo,
		store:          st,
		logger:         logger,
	}
}

func (s *syncService) InProgress() bool {
	return s.inFlight.Load()
}

// Pull fetches every remote collection concurrently and merges the
// snapshots into the store. One collection's failure does not abort
// the others: the prior in-memory value is retained and the failure is
// reported in the result. Successful fetches replace the collection
// wholesale, except categories, where an empty fetch means "no data
// yet" and the prior value is kept.
//
// Only one pull may be in flight; overlapping calls get
// ErrSyncInProgress.
func (s *syncService) Pull() (*service.PullResult, error) {
	if !s.inFlight.CompareAndSwap(false, true) {
		return nil, service.ErrSyncInProgress
	}
	defer s.inFlight.Store(false)

	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		failed = make(map[string]error)

		people     []models.Person
		sessions   []models.TrainingSession
		matches    []models.Match
		attendance []models.AttendanceRecord
		categories []models.Category
	)

	fetch := func(name string, fn func() error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := fn(); err != nil {
				mu.Lock()
				failed[name] = err
				mu.Unlock()
			}
		}()
	}

	fetch(CollectionPeople, func() error {
		var err error
		people, err = s.personRepo.GetAll()
		return err
	})
	fetch(CollectionSessions, func() error {
		var err error
		sessions, err = s.sessionRepo.GetAll()
		return err
	})
	fetch(CollectionMatches, func() error {
		var err error
		matches, err = s.matchRepo.GetAll()
		return err
	})
	fetch(CollectionAttendance, func() error {
		var err error
		attendance, err = s.attendanceRepo.GetAll()
		return err
	})
	fetch(CollectionCategories, func() error {
		var err error
		categories, err = s.categoryRepo.GetAll()
		return err
	})

	wg.Wait()

	ok := func(name string) bool {
		_, bad := failed[name]
		return !bad
	}

	result := &service.PullResult{Failed: failed}
	s.store.Update(func(state *models.AppState) {
		if ok(CollectionPeople) {
			state.People = people
			result.Updated = append(result.Updated, CollectionPeople)
		}
		if ok(CollectionSessions) {
			state.Sessions = sessions
			result.Updated = append(result.Updated, CollectionSessions)
		}
		if ok(CollectionMatches) {
			state.Matches = matches
			result.Updated = append(result.Updated, CollectionMatches)
		}
		if ok(CollectionAttendance) {
			state.Attendance = attendance
			result.Updated = append(result.Updated, CollectionAttendance)
		}
		// Categories must never collapse to empty just because the
		// remote table briefly returned nothing.
		if ok(CollectionCategories) && len(categories) > 0 {
			state.Categories = categories
			result.Updated = append(result.Updated, CollectionCategories)
		}
	})
	sort.Strings(result.Updated)

	if len(failed) > 0 {
		var agg error
		for name, err := range failed {
			agg = multierr.Append(agg, fmt.Errorf("%s: %w", name, err))
		}
		s.logger.Warn("reconciliation pull finished with failures",
			zap.Int("failed_collections", len(failed)),
			zap.Error(agg))
	} else {
		s.logger.Info("reconciliation pull complete",
			zap.Strings("updated", result.Updated))
	}

	return result, nil
}
