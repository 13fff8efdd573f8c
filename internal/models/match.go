package models

import "time"

// Match event kinds.
const (
	EventGoal   = "goal"
	EventAssist = "assist"
	EventYellow = "yellow"
	EventRed    = "red"
)

// Match is a fixture with an embedded lineup and event list. It is
// edited and saved as a whole document, last write wins.
type Match struct {
	ID           string       `db:"id" json:"id"`
	Category     string       `db:"category" json:"category"`
	Opponent     string       `db:"opponent" json:"opponent"`
	KickoffAt    time.Time    `db:"kickoff_at" json:"kickoff_at"`
	Pitch        string       `db:"pitch" json:"pitch"`
	GoalsFor     int          `db:"goals_for" json:"goals_for"`
	GoalsAgainst int          `db:"goals_against" json:"goals_against"`
	Completed    bool         `db:"completed" json:"completed"`
	Notes        string       `db:"notes" json:"notes"`
	Lineup       Lineup       `json:"lineup"`
	Events       []MatchEvent `json:"events"`
	CreatedAt    time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time    `db:"updated_at" json:"updated_at"`
}

// Lineup is the starting eleven plus substitutes plus optional staff
// and captain designation. Minute fields are strings: the front end
// posts raw form text and the substitution calculator parses it.
type Lineup struct {
	Starters    []LineupSlot     `json:"starters"`
	Substitutes []SubstituteSlot `json:"substitutes"`
	Staff       []string         `json:"staff,omitempty"`
	CaptainID   string           `json:"captain_id,omitempty"`
}

type LineupSlot struct {
	PlayerID      string `json:"player_id"`
	MinutesPlayed string `json:"minutes_played"`
}

type SubstituteSlot struct {
	PlayerID           string `json:"player_id"`
	ReplacedPlayerID   string `json:"replaced_player_id,omitempty"`
	SubstitutionMinute string `json:"substitution_minute,omitempty"`
	MinutesPlayed      string `json:"minutes_played"`
}

type MatchEvent struct {
	Kind       string `json:"kind"`
	PlayerName string `json:"player_name"`
	Minute     string `json:"minute"`
}
