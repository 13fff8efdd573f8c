package models

// Attendance statuses. "excused" is an absence with a justification
// note attached.
const (
	StatusPresent = "present"
	StatusLate    = "late"
	StatusAbsent  = "absent"
	StatusExcused = "excused"
)

// AttendanceRecord is the persisted disciplinary status of one person
// for one session. At most one record exists per (person, session)
// pair; the record merger enforces this on every commit.
type AttendanceRecord struct {
	ID        string `db:"id" json:"id"`
	SessionID string `db:"session_id" json:"session_id"`
	PersonID  string `db:"person_id" json:"person_id"`
	Status    string `db:"status" json:"status"`
	Excuse    string `db:"excuse" json:"excuse,omitempty"`
	// Date is the session date ("2006-01-02"); Time is the wall-clock
	// moment ("15:04") the status was set in the UI, not commit time.
	Date   string `db:"date" json:"date"`
	Time   string `db:"time" json:"time"`
	Locked bool   `db:"locked" json:"locked"`
}

// StagedEdit is one locally staged, not yet committed status edit for
// a player. Date is optional; the session date fills it in at commit.
type StagedEdit struct {
	Status string `json:"status"`
	Excuse string `json:"excuse,omitempty"`
	Time   string `json:"time,omitempty"`
	Date   string `json:"date,omitempty"`
}
