package person

import (
	"database/sql"

	"clubdesk/internal/models"
	"clubdesk/internal/repository"

	"github.com/jmoiron/sqlx"
)

type personRepository struct {
	db *sqlx.DB
}

func NewPersonRepository(db *sqlx.DB) repository.PersonRepository {
	return &personRepository{db: db}
}

func (r *personRepository) GetAll() ([]models.Person, error) {
	query := `
		SELECT id, first_name, last_name, role, category, jersey_number,
		       contract_start, contract_end, created_at, updated_at
		FROM clubdesk.people
		ORDER BY last_name, first_name
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var people []models.Person
	for rows.Next() {
		var person models.Person
		var jersey sql.NullInt64
		var contractStart, contractEnd sql.NullTime

		err := rows.Scan(
			&person.ID,
			&person.FirstName,
			&person.LastName,
			&person.Role,
			&person.Category,
			&jersey,
			&contractStart,
			&contractEnd,
			&person.CreatedAt,
			&person.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}

		if jersey.Valid {
			n := int(jersey.Int64)
			person.JerseyNumber = &n
		}
		if contractStart.Valid {
			t := contractStart.Time
			person.ContractStart = &t
		}
		if contractEnd.Valid {
			t := contractEnd.Time
			person.ContractEnd = &t
		}

		people = append(people, person)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return people, nil
}

func (r *personRepository) Upsert(person *models.Person) error {
	query := `
		INSERT INTO clubdesk.people
		(id, first_name, last_name, role, category, jersey_number,
		 contract_start, contract_end, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		ON CONFLICT (id) DO UPDATE SET
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			role = EXCLUDED.role,
			category = EXCLUDED.category,
			jersey_number = EXCLUDED.jersey_number,
			contract_start = EXCLUDED.contract_start,
			contract_end = EXCLUDED.contract_end,
			updated_at = NOW()
	`

	_, err := r.db.Exec(
		query,
		person.ID,
		person.FirstName,
		person.LastName,
		person.Role,
		person.Category,
		person.JerseyNumber,
		person.ContractStart,
		person.ContractEnd,
	)
	return err
}

func (r *personRepository) Delete(id string) error {
	_, err := r.db.Exec(`DELETE FROM clubdesk.people WHERE id = $1`, id)
	return err
}
