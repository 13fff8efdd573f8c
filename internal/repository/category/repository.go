package category

import (
	"clubdesk/internal/models"
	"clubdesk/internal/repository"

	"github.com/jmoiron/sqlx"
)

type categoryRepository struct {
	db *sqlx.DB
}

func NewCategoryRepository(db *sqlx.DB) repository.CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) GetAll() ([]models.Category, error) {
	query := `
		SELECT id, name, created_at
		FROM clubdesk.categories
		ORDER BY name
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		var category models.Category
		if err := rows.Scan(&category.ID, &category.Name, &category.CreatedAt); err != nil {
			return nil, err
		}
		categories = append(categories, category)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return categories, nil
}

func (r *categoryRepository) Upsert(category *models.Category) error {
	query := `
		INSERT INTO clubdesk.categories (id, name, created_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name
	`

	_, err := r.db.Exec(query, category.ID, category.Name)
	return err
}

func (r *categoryRepository) Delete(id string) error {
	_, err := r.db.Exec(`DELETE FROM clubdesk.categories WHERE id = $1`, id)
	return err
}
