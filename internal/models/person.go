package models

import "time"

// Person roles. Players carry a jersey number, staff roles do not.
const (
	RolePlayer           = "player"
	RoleCoach            = "coach"
	RoleAssistantCoach   = "assistant_coach"
	RoleGoalkeeperCoach  = "goalkeeper_coach"
	RoleFitnessCoach     = "fitness_coach"
	RolePhysio           = "physio"
	RoleDelegate         = "delegate"
)

type Person struct {
	ID            string     `db:"id" json:"id"`
	FirstName     string     `db:"first_name" json:"first_name"`
	LastName      string     `db:"last_name" json:"last_name"`
	Role          string     `db:"role" json:"role"`
	Category      string     `db:"category" json:"category"`
	JerseyNumber  *int       `db:"jersey_number" json:"jersey_number,omitempty"`
	ContractStart *time.Time `db:"contract_start" json:"contract_start,omitempty"`
	ContractEnd   *time.Time `db:"contract_end" json:"contract_end,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
}

func (p *Person) FullName() string {
	return p.FirstName + " " + p.LastName
}
