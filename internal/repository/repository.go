package repository

import (
	"clubdesk/internal/models"
)

// The remote store exposes five independently fetchable collections
// plus users. There are no cross-collection transactions, which is why
// the reconciliation sync treats each fetch failure independently.

type PersonRepository interface {
	GetAll() ([]models.Person, error)
	Upsert(person *models.Person) error
	Delete(id string) error
}

type SessionRepository interface {
	GetAll() ([]models.TrainingSession, error)
	Upsert(session *models.TrainingSession) error
	Delete(id string) error
}

type MatchRepository interface {
	GetAll() ([]models.Match, error)
	Upsert(match *models.Match) error
	Delete(id string) error
}

type AttendanceRepository interface {
	GetAll() ([]models.AttendanceRecord, error)
	GetBySession(sessionID string) ([]models.AttendanceRecord, error)
	Insert(record *models.AttendanceRecord) error
	DeleteByPersonSession(sessionID, personID string) error
}

type CategoryRepository interface {
	GetAll() ([]models.Category, error)
	Upsert(category *models.Category) error
	Delete(id string) error
}

type UserRepository interface {
	GetAll() ([]models.AppUser, error)
	GetByUsername(username string) (*models.AppUser, error)
	Upsert(user *models.AppUser) error
	Delete(id string) error
}
