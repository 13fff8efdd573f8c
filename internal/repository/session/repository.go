package session

import (
	"clubdesk/internal/models"
	"clubdesk/internal/repository"

	"github.com/jmoiron/sqlx"
)

type sessionRepository struct {
	db *sqlx.DB
}

func NewSessionRepository(db *sqlx.DB) repository.SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) GetAll() ([]models.TrainingSession, error) {
	query := `
		SELECT id, category, scheduled_at, location, objective, completed,
		       created_at, updated_at
		FROM clubdesk.sessions
		ORDER BY scheduled_at DESC
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []models.TrainingSession
	for rows.Next() {
		var session models.TrainingSession
		err := rows.Scan(
			&session.ID,
			&session.Category,
			&session.ScheduledAt,
			&session.Location,
			&session.Objective,
			&session.Completed,
			&session.CreatedAt,
			&session.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return sessions, nil
}

func (r *sessionRepository) Upsert(session *models.TrainingSession) error {
	query := `
		INSERT INTO clubdesk.sessions
		(id, category, scheduled_at, location, objective, completed, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		ON CONFLICT (id) DO UPDATE SET
			category = EXCLUDED.category,
			scheduled_at = EXCLUDED.scheduled_at,
			location = EXCLUDED.location,
			objective = EXCLUDED.objective,
			completed = EXCLUDED.completed,
			updated_at = NOW()
	`

	_, err := r.db.Exec(
		query,
		session.ID,
		session.Category,
		session.ScheduledAt,
		session.Location,
		session.Objective,
		session.Completed,
	)
	return err
}

func (r *sessionRepository) Delete(id string) error {
	_, err := r.db.Exec(`DELETE FROM clubdesk.sessions WHERE id = $1`, id)
	return err
}
