package models

import "time"

// Category is a named cohort partitioning people, sessions and
// matches. References to it are by name with no referential
// integrity: deleting a category orphans its members by design.
type Category struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
