package schedule_service

import (
	"time"

	"clubdesk/internal/models"
	"clubdesk/internal/repository"
	"clubdesk/internal/service"
	"clubdesk/internal/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type scheduleService struct {
	sessionRepo repository.SessionRepository
	store       *store.Store
	logger      *zap.Logger

	now   func() time.Time
	newID func() string
}

func NewScheduleService(
	sessionRepo repository.SessionRepository,
	st *store.Store,
	logger *zap.Logger,
) service.ScheduleService {
	return &scheduleService{
		sessionRepo: sessionRepo,
		store:       st,
		logger:      logger,
		now:         time.Now,
		newID:       uuid.NewString,
	}
}

func (s *scheduleService) Sessions() []models.TrainingSession {
	return s.store.Sessions()
}

func (s *scheduleService) SessionByID(id string) (*models.TrainingSession, error) {
	session := s.store.SessionByID(id)
	if session == nil {
		return nil, service.ErrNotFound
	}
	return session, nil
}

func (s *scheduleService) SessionsInRange(start, end time.Time) []models.TrainingSession {
	var out []models.TrainingSession
	for _, session := range s.store.Sessions() {
		if !session.ScheduledAt.Before(start) && session.ScheduledAt.Before(end) {
			out = append(out, session)
		}
	}
	return out
}

func (s *scheduleService) CreateSession(session *models.TrainingSession) error {
	if session.ID == "" {
		session.ID = s.newID()
	}
	session.CreatedAt = s.now()
	session.UpdatedAt = session.CreatedAt

	s.upsertLocal(session)
	if err := s.sessionRepo.Upsert(session); err != nil {
		s.logger.Warn("remote session insert failed",
			zap.String("session_id", session.ID), zap.Error(err))
	}
	return nil
}

func (s *scheduleService) UpdateSession(session *models.TrainingSession) error {
	if s.store.SessionByID(session.ID) == nil {
		return service.ErrNotFound
	}
	session.UpdatedAt = s.now()

	s.upsertLocal(session)
	if err := s.sessionRepo.Upsert(session); err != nil {
		s.logger.Warn("remote session update failed",
			zap.String("session_id", session.ID), zap.Error(err))
	}
	return nil
}

// DeleteSession removes the session only; attendance records that
// reference it are not cascaded.
func (s *scheduleService) DeleteSession(id string) error {
	if s.store.SessionByID(id) == nil {
		return service.ErrNotFound
	}

	s.store.Update(func(state *models.AppState) {
		kept := state.Sessions[:0]
		for _, sess := range state.Sessions {
			if sess.ID != id {
				kept = append(kept, sess)
			}
		}
		state.Sessions = kept
	})
	if err := s.sessionRepo.Delete(id); err != nil {
		s.logger.Warn("remote session delete failed",
			zap.String("session_id", id), zap.Error(err))
	}
	return nil
}

func (s *scheduleService) upsertLocal(session *models.TrainingSession) {
	s.store.Update(func(state *models.AppState) {
		for i := range state.Sessions {
			if state.Sessions[i].ID == session.ID {
				state.Sessions[i] = *session
				return
			}
		}
		state.Sessions = append(state.Sessions, *session)
	})
}
