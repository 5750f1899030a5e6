package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"conference/internal/apperr"
	"conference/internal/model"
	"conference/internal/store"
)

const registrationColumns = `id, code, name, email, phone, school, event_id, committee_id, portfolio,
	status, payment_status, checked_in, checked_in_at, created_at, updated_at`

func scanRegistration(row scanner) (model.Registration, error) {
	var r model.Registration
	err := row.Scan(&r.ID, &r.Code, &r.Name, &r.Email, &r.Phone, &r.School, &r.EventID, &r.CommitteeID, &r.Portfolio,
		&r.Status, &r.PaymentStatus, &r.CheckedIn, &r.CheckedInAt, &r.CreatedAt, &r.UpdatedAt)
	return r, err
}

// isUniqueViolation reports a Postgres unique_violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (s *Store) CreateRegistration(ctx context.Context, r model.Registration) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO registrations (`+registrationColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
	`, r.ID, r.Code, r.Name, r.Email, r.Phone, r.School, r.EventID, r.CommitteeID, r.Portfolio,
		r.Status, r.PaymentStatus, r.CheckedIn, r.CheckedInAt, r.CreatedAt, r.UpdatedAt)
	if isUniqueViolation(err) {
		return fmt.Errorf("registration %s: %w", r.ID, apperr.ErrConflict)
	}
	return err
}

func (s *Store) GetRegistration(ctx context.Context, id string) (model.Registration, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+registrationColumns+` FROM registrations WHERE id = $1`, id)
	r, err := scanRegistration(row)
	if err != nil {
		return model.Registration{}, notFound(err, "registration", id)
	}
	return r, nil
}

// GetRegistrationByCode returns the oldest registration carrying code.
func (s *Store) GetRegistrationByCode(ctx context.Context, code string) (model.Registration, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+registrationColumns+` FROM registrations
		WHERE code = $1
		ORDER BY created_at ASC
		LIMIT 1
	`, code)
	r, err := scanRegistration(row)
	if err != nil {
		return model.Registration{}, notFound(err, "registration code", code)
	}
	return r, nil
}

func (s *Store) UpdateRegistration(ctx context.Context, r model.Registration) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE registrations SET
			code = $2, name = $3, email = $4, phone = $5, school = $6, event_id = $7,
			committee_id = $8, portfolio = $9, status = $10, payment_status = $11,
			checked_in = $12, checked_in_at = $13, updated_at = $14
		WHERE id = $1
	`, r.ID, r.Code, r.Name, r.Email, r.Phone, r.School, r.EventID,
		r.CommitteeID, r.Portfolio, r.Status, r.PaymentStatus,
		r.CheckedIn, r.CheckedInAt, r.UpdatedAt)
	if err != nil {
		return err
	}
	return expectRow(res, "registration", r.ID)
}

func (s *Store) DeleteRegistration(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM registrations WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return expectRow(res, "registration", id)
}

func (s *Store) ListRegistrations(ctx context.Context, f store.RegistrationFilter) ([]model.Registration, error) {
	var w where
	if f.EventID != "" {
		w.add("event_id = ?", f.EventID)
	}
	if f.CommitteeID != "" {
		w.add("committee_id = ?", f.CommitteeID)
	}
	if f.Email != "" {
		w.add("lower(email) = lower(?)", f.Email)
	}
	query := `SELECT ` + registrationColumns + ` FROM registrations` + w.String() + ` ORDER BY created_at DESC`
	if f.Limit > 0 {
		query += w.limit(f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, w.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	res := make([]model.Registration, 0)
	for rows.Next() {
		r, err := scanRegistration(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, r)
	}
	return res, rows.Err()
}
