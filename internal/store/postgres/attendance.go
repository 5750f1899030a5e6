package postgres

import (
	"context"

	"conference/internal/model"
	"conference/internal/store"
)

const attendanceColumns = `id, registration_id, event_id, committee_id, attendance_status,
	check_in_time, check_out_time, marked_by, created_at, updated_at`

func scanAttendance(row scanner) (model.AttendanceRecord, error) {
	var a model.AttendanceRecord
	err := row.Scan(&a.ID, &a.RegistrationID, &a.EventID, &a.CommitteeID, &a.AttendanceStatus,
		&a.CheckInTime, &a.CheckOutTime, &a.MarkedBy, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

func (s *Store) CreateAttendance(ctx context.Context, a model.AttendanceRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO attendance_records (`+attendanceColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`, a.ID, a.RegistrationID, a.EventID, a.CommitteeID, a.AttendanceStatus,
		a.CheckInTime, a.CheckOutTime, a.MarkedBy, a.CreatedAt, a.UpdatedAt)
	return err
}

func (s *Store) GetAttendance(ctx context.Context, id string) (model.AttendanceRecord, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+attendanceColumns+` FROM attendance_records WHERE id = $1`, id)
	a, err := scanAttendance(row)
	if err != nil {
		return model.AttendanceRecord{}, notFound(err, "attendance record", id)
	}
	return a, nil
}

func (s *Store) UpdateAttendance(ctx context.Context, a model.AttendanceRecord) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE attendance_records
		SET attendance_status = $2, check_out_time = $3, updated_at = $4
		WHERE id = $1
	`, a.ID, a.AttendanceStatus, a.CheckOutTime, a.UpdatedAt)
	if err != nil {
		return err
	}
	return expectRow(res, "attendance record", a.ID)
}

func (s *Store) ListAttendance(ctx context.Context, f store.AttendanceFilter) ([]model.AttendanceRecord, error) {
	var w where
	if f.EventID != "" {
		w.add("event_id = ?", f.EventID)
	}
	if f.CommitteeID != "" {
		w.add("committee_id = ?", f.CommitteeID)
	}
	if f.RegistrationID != "" {
		w.add("registration_id = ?", f.RegistrationID)
	}
	if !f.Since.IsZero() {
		w.add("check_in_time >= ?", f.Since)
	}
	if !f.Until.IsZero() {
		w.add("check_in_time < ?", f.Until)
	}
	query := `SELECT ` + attendanceColumns + ` FROM attendance_records` + w.String() + ` ORDER BY created_at DESC`
	if f.Limit > 0 {
		query += w.limit(f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, w.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	res := make([]model.AttendanceRecord, 0)
	for rows.Next() {
		a, err := scanAttendance(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, a)
	}
	return res, rows.Err()
}
