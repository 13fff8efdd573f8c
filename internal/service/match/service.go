package match_service

import (
	"time"

	"clubdesk/internal/models"
	"clubdesk/internal/repository"
	"clubdesk/internal/service"
	"clubdesk/internal/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type matchService struct {
	matchRepo repository.MatchRepository
	lineup    service.LineupService
	store     *store.Store
	logger    *zap.Logger

	now   func() time.Time
	newID func() string
}

func NewMatchService(
	matchRepo repository.MatchRepository,
	lineup service.LineupService,
	st *store.Store,
	logger *zap.Logger,
) service.MatchService {
	return &matchService{
		matchRepo: matchRepo,
		lineup:    lineup,
		store:     st,
		logger:    logger,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

func (s *matchService) Matches() []models.Match {
	return s.store.Matches()
}

func (s *matchService) MatchByID(id string) (*models.Match, error) {
	match := s.store.MatchByID(id)
	if match == nil {
		return nil, service.ErrNotFound
	}
	return match, nil
}

// SaveMatch replaces the whole match document, last write wins. New
// matches (no id yet) get one assigned.
func (s *matchService) SaveMatch(match *models.Match) error {
	if match.ID == "" {
		match.ID = s.newID()
		match.CreatedAt = s.now()
	}
	match.UpdatedAt = s.now()

	s.store.Update(func(state *models.AppState) {
		for i := range state.Matches {
			if state.Matches[i].ID == match.ID {
				state.Matches[i] = *match
				return
			}
		}
		state.Matches = append(state.Matches, *match)
	})
	if err := s.matchRepo.Upsert(match); err != nil {
		s.logger.Warn("remote match save failed",
			zap.String("match_id", match.ID), zap.Error(err))
	}
	return nil
}

func (s *matchService) DeleteMatch(id string) error {
	if s.store.MatchByID(id) == nil {
		return service.ErrNotFound
	}

	s.store.Update(func(state *models.AppState) {
		kept := state.Matches[:0]
		for _, m := range state.Matches {
			if m.ID != id {
				kept = append(kept, m)
			}
		}
		state.Matches = kept
	})
	if err := s.matchRepo.Delete(id); err != nil {
		s.logger.Warn("remote match delete failed",
			zap.String("match_id", id), zap.Error(err))
	}
	return nil
}

// RecordSubstitution runs the lineup calculator and commits the
// resulting lineup back to the match document explicitly.
func (s *matchService) RecordSubstitution(matchID string, subIndex int, replacedPlayerID, minute string) (*models.Match, error) {
	match := s.store.MatchByID(matchID)
	if match == nil {
		return nil, service.ErrNotFound
	}

	updated, err := s.lineup.ApplySubstitution(match.Lineup, subIndex, replacedPlayerID, minute)
	if err != nil {
		return nil, err
	}
	match.Lineup = updated

	if err := s.SaveMatch(match); err != nil {
		return nil, err
	}
	return match, nil
}
