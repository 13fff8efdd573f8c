package models

// AppState is the full application state: the authoritative in-memory
// collections of the entity store and the exact shape persisted to the
// local snapshot cache as one JSON blob.
type AppState struct {
	People     []Person           `json:"people"`
	Sessions   []TrainingSession  `json:"sessions"`
	Matches    []Match            `json:"matches"`
	Attendance []AttendanceRecord `json:"attendance"`
	Categories []Category         `json:"categories"`
	Users      []AppUser          `json:"users"`
}
