package match

import (
	"encoding/json"
	"fmt"

	"clubdesk/internal/models"
	"clubdesk/internal/repository"

	"github.com/jmoiron/sqlx"
)

type matchRepository struct {
	db *sqlx.DB
}

func NewMatchRepository(db *sqlx.DB) repository.MatchRepository {
	return &matchRepository{db: db}
}

func (r *matchRepository) GetAll() ([]models.Match, error) {
	query := `
		SELECT id, category, opponent, kickoff_at, pitch, goals_for,
		       goals_against, completed, notes, lineup, events,
		       created_at, updated_at
		FROM clubdesk.matches
		ORDER BY kickoff_at DESC
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var matches []models.Match
	for rows.Next() {
		var match models.Match
		var lineupRaw, eventsRaw []byte

		err := rows.Scan(
			&match.ID,
			&match.Category,
			&match.Opponent,
			&match.KickoffAt,
			&match.Pitch,
			&match.GoalsFor,
			&match.GoalsAgainst,
			&match.Completed,
			&match.Notes,
			&lineupRaw,
			&eventsRaw,
			&match.CreatedAt,
			&match.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}

		if len(lineupRaw) > 0 {
			if err := json.Unmarshal(lineupRaw, &match.Lineup); err != nil {
				return nil, fmt.Errorf("decode lineup for match %s: %w", match.ID, err)
			}
		}
		if len(eventsRaw) > 0 {
			if err := json.Unmarshal(eventsRaw, &match.Events); err != nil {
				return nil, fmt.Errorf("decode events for match %s: %w", match.ID, err)
			}
		}

		matches = append(matches, match)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return matches, nil
}

func (r *matchRepository) Upsert(match *models.Match) error {
	lineupRaw, err := json.Marshal(match.Lineup)
	if err != nil {
		return fmt.Errorf("encode lineup: %w", err)
	}
	eventsRaw, err := json.Marshal(match.Events)
	if err != nil {
		return fmt.Errorf("encode events: %w", err)
	}

	query := `
		INSERT INTO clubdesk.matches
		(id, category, opponent, kickoff_at, pitch, goals_for, goals_against,
		 completed, notes, lineup, events, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW())
		ON CONFLICT (id) DO UPDATE SET
			category = EXCLUDED.category,
			opponent = EXCLUDED.opponent,
			kickoff_at = EXCLUDED.kickoff_at,
			pitch = EXCLUDED.pitch,
			goals_for = EXCLUDED.goals_for,
			goals_against = EXCLUDED.goals_against,
			completed = EXCLUDED.completed,
			notes = EXCLUDED.notes,
			lineup = EXCLUDED.lineup,
			events = EXCLUDED.events,
			updated_at = NOW()
	`

	_, err = r.db.Exec(
		query,
		match.ID,
		match.Category,
		match.Opponent,
		match.KickoffAt,
		match.Pitch,
		match.GoalsFor,
		match.GoalsAgainst,
		match.Completed,
		match.Notes,
		lineupRaw,
		eventsRaw,
	)
	return err
}

func (r *matchRepository) Delete(id string) error {
	_, err := r.db.Exec(`DELETE FROM clubdesk.matches WHERE id = $1`, id)
	return err
}
