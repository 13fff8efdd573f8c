package models

import "time"

// Application user roles.
const (
	RoleManager       = "manager"
	RoleCategoryAdmin = "category_admin"
	RoleViewer        = "viewer"
)

// AppUser is a login credential plus role. Category restricts
// category-admins to a single cohort; it is nil for managers and
// viewers.
type AppUser struct {
	ID           string    `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         string    `db:"role" json:"role"`
	Category     *string   `db:"category" json:"category,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
