package user

import (
	"database/sql"

	"clubdesk/internal/models"
	"clubdesk/internal/repository"

	"github.com/jmoiron/sqlx"
)

type userRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) repository.UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetAll() ([]models.AppUser, error) {
	query := `
		SELECT id, username, password_hash, role, category, created_at
		FROM clubdesk.users
		ORDER BY username
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.AppUser
	for rows.Next() {
		var user models.AppUser
		var category sql.NullString

		err := rows.Scan(
			&user.ID,
			&user.Username,
			&user.PasswordHash,
			&user.Role,
			&category,
			&user.CreatedAt,
		)
		if err != nil {
			return nil, err
		}

		if category.Valid {
			c := category.String
			user.Category = &c
		}

		users = append(users, user)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return users, nil
}

func (r *userRepository) GetByUsername(username string) (*models.AppUser, error) {
	query := `
		SELECT id, username, password_hash, role, category, created_at
		FROM clubdesk.users
		WHERE username = $1
	`

	user := &models.AppUser{}
	var category sql.NullString

	err := r.db.QueryRow(query, username).Scan(
		&user.ID,
		&user.Username,
		&user.PasswordHash,
		&user.Role,
		&category,
		&user.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	if category.Valid {
		c := category.String
		user.Category = &c
	}

	return user, nil
}

func (r *userRepository) Upsert(user *models.AppUser) error {
	query := `
		INSERT INTO clubdesk.users
		(id, username, password_hash, role, category, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (id) DO UPDATE SET
			username = EXCLUDED.username,
			password_hash = EXCLUDED.password_hash,
			role = EXCLUDED.role,
			category = EXCLUDED.category
	`

	_, err := r.db.Exec(
		query,
		user.ID,
		user.Username,
		user.PasswordHash,
		user.Role,
		user.Category,
	)
	return err
}

func (r *userRepository) Delete(id string) error {
	_, err := r.db.Exec(`DELETE FROM clubdesk.users WHERE id = $1`, id)
	return err
}
