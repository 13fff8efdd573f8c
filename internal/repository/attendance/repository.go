package attendance

import (
	"clubdesk/internal/models"
	"clubdesk/internal/repository"

	"github.com/jmoiron/sqlx"
)

type attendanceRepository struct {
	db *sqlx.DB
}

func NewAttendanceRepository(db *sqlx.DB) repository.AttendanceRepository {
	return &attendanceRepository{db: db}
}

func (r *attendanceRepository) GetAll() ([]models.AttendanceRecord, error) {
	query := `
		SELECT id, session_id, person_id, status, excuse, date, time, locked
		FROM clubdesk.attendance
		ORDER BY date DESC, time DESC
	`
	return r.scanRecords(query)
}

func (r *attendanceRepository) GetBySession(sessionID string) ([]models.AttendanceRecord, error) {
	query := `
		SELECT id, session_id, person_id, status, excuse, date, time, locked
		FROM clubdesk.attendance
		WHERE session_id = $1
		ORDER BY person_id
	`
	return r.scanRecords(query, sessionID)
}

func (r *attendanceRepository) scanRecords(query string, args ...interface{}) ([]models.AttendanceRecord, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.AttendanceRecord
	for rows.Next() {
		var record models.AttendanceRecord
		err := rows.Scan(
			&record.ID,
			&record.SessionID,
			&record.PersonID,
			&record.Status,
			&record.Excuse,
			&record.Date,
			&record.Time,
			&record.Locked,
		)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return records, nil
}

func (r *attendanceRepository) Insert(record *models.AttendanceRecord) error {
	query := `
		INSERT INTO clubdesk.attendance
		(id, session_id, person_id, status, excuse, date, time, locked)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.Exec(
		query,
		record.ID,
		record.SessionID,
		record.PersonID,
		record.Status,
		record.Excuse,
		record.Date,
		record.Time,
		record.Locked,
	)
	return err
}

func (r *attendanceRepository) DeleteByPersonSession(sessionID, personID string) error {
	query := `DELETE FROM clubdesk.attendance WHERE session_id = $1 AND person_id = $2`
	_, err := r.db.Exec(query, sessionID, personID)
	return err
}
