package models

import "time"

// TrainingSession is a scheduled training event. ScheduledAt is the
// input to the attendance lock rule; by convention it does not change
// once attendance records exist against the session.
type TrainingSession struct {
	ID          string    `db:"id" json:"id"`
	Category    string    `db:"category" json:"category"`
	ScheduledAt time.Time `db:"scheduled_at" json:"scheduled_at"`
	Location    string    `db:"location" json:"location"`
	Objective   string    `db:"objective" json:"objective"`
	Completed   bool      `db:"completed" json:"completed"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// DateString is the session's calendar date, used as the fallback date
// for attendance records staged without an explicit one.
func (s *TrainingSession) DateString() string {
	return s.ScheduledAt.Format("2006-01-02")
}
