package roster_service

import (
	"time"

	"clubdesk/internal/models"
	"clubdesk/internal/repository"
	"clubdesk/internal/service"
	"clubdesk/internal/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Roster mutations are local-first: the store (and its snapshot
// write-through) is updated synchronously, then the remote write is
// attempted best-effort and never rolled back.
type rosterService struct {
	personRepo   repository.PersonRepository
	categoryRepo repository.CategoryRepository
	store        *store.Store
	logger       *zap.Logger

	now   func() time.Time
	newID func() string
}

func NewRosterService(
	personRepo repository.PersonRepository,
	categoryRepo repository.CategoryRepository,
	st *store.Store,
	logger *zap.Logger,
) service.RosterService {
	return &rosterService{
		personRepo:   personRepo,
		categoryRepo: categoryRepo,
		store:        st,
		logger:       logger,
		now:          time.Now,
		newID:        uuid.NewString,
	}
}

func (s *rosterService) People() []models.Person {
	return s.store.People()
}

func (s *rosterService) PersonByID(id string) (*models.Person, error) {
	person := s.store.PersonByID(id)
	if person == nil {
		return nil, service.ErrNotFound
	}
	return person, nil
}

func (s *rosterService) CreatePerson(person *models.Person) error {
	if person.ID == "" {
		person.ID = s.newID()
	}
	person.CreatedAt = s.now()
	person.UpdatedAt = person.CreatedAt

	s.upsertLocal(person)
	if err := s.personRepo.Upsert(person); err != nil {
		s.logger.Warn("remote person insert failed",
			zap.String("person_id", person.ID), zap.Error(err))
	}
	return nil
}

func (s *rosterService) UpdatePerson(person *models.Person) error {
	if s.store.PersonByID(person.ID) == nil {
		return service.ErrNotFound
	}
	person.UpdatedAt = s.now()

	s.upsertLocal(person)
	if err := s.personRepo.Upsert(person); err != nil {
		s.logger.Warn("remote person update failed",
			zap.String("person_id", person.ID), zap.Error(err))
	}
	return nil
}

func (s *rosterService) DeletePerson(id string) error {
	if s.store.PersonByID(id) == nil {
		return service.ErrNotFound
	}

	s.store.Update(func(state *models.AppState) {
		kept := state.People[:0]
		for _, p := range state.People {
			if p.ID != id {
				kept = append(kept, p)
			}
		}
		state.People = kept
	})
	if err := s.personRepo.Delete(id); err != nil {
		s.logger.Warn("remote person delete failed",
			zap.String("person_id", id), zap.Error(err))
	}
	return nil
}

func (s *rosterService) upsertLocal(person *models.Person) {
	s.store.Update(func(state *models.AppState) {
		for i := range state.People {
			if state.People[i].ID == person.ID {
				state.People[i] = *person
				return
			}
		}
		state.People = append(state.People, *person)
	})
}

func (s *rosterService) Categories() []models.Category {
	return s.store.Categories()
}

func (s *rosterService) CreateCategory(name string) (*models.Category, error) {
	category := &models.Category{
		ID:        s.newID(),
		Name:      name,
		CreatedAt: s.now(),
	}

	s.store.Update(func(state *models.AppState) {
		state.Categories = append(state.Categories, *category)
	})
	if err := s.categoryRepo.Upsert(category); err != nil {
		s.logger.Warn("remote category insert failed",
			zap.String("category_id", category.ID), zap.Error(err))
	}
	return category, nil
}

// DeleteCategory removes the category only. People, sessions and
// matches referencing its name are left orphaned and keep displaying
// the stale string; there is deliberately no cascade or fix-up.
func (s *rosterService) DeleteCategory(id string) error {
	found := false
	s.store.Update(func(state *models.AppState) {
		kept := state.Categories[:0]
		for _, c := range state.Categories {
			if c.ID != id {
				kept = append(kept, c)
			} else {
				found = true
			}
		}
		state.Categories = kept
	})
	if !found {
		return service.ErrNotFound
	}

	if err := s.categoryRepo.Delete(id); err != nil {
		s.logger.Warn("remote category delete failed",
			zap.String("category_id", id), zap.Error(err))
	}
	return nil
}
