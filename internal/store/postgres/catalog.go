package postgres

import (
	"context"
	"fmt"

	"conference/internal/apperr"
	"conference/internal/model"
	"conference/internal/store"
)

// -------- Coupons --------

func (s *Store) CreateCoupon(ctx context.Context, c model.Coupon) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO coupons (code, discount_percent, event_id, expiry_date, created_at)
		VALUES ($1,$2,$3,$4,$5)
	`, c.Code, c.DiscountPercent, c.EventID, c.ExpiryDate, c.CreatedAt)
	if isUniqueViolation(err) {
		return fmt.Errorf("coupon %s: %w", c.Code, apperr.ErrConflict)
	}
	return err
}

func (s *Store) GetCoupon(ctx context.Context, code string) (model.Coupon, error) {
	var c model.Coupon
	err := s.db.QueryRowContext(ctx, `
		SELECT code, discount_percent, event_id, expiry_date, created_at
		FROM coupons WHERE code = $1
	`, code).Scan(&c.Code, &c.DiscountPercent, &c.EventID, &c.ExpiryDate, &c.CreatedAt)
	if err != nil {
		return model.Coupon{}, notFound(err, "coupon", code)
	}
	return c, nil
}

func (s *Store) ListCoupons(ctx context.Context) ([]model.Coupon, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT code, discount_percent, event_id, expiry_date, created_at
		FROM coupons ORDER BY code
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	res := make([]model.Coupon, 0)
	for rows.Next() {
		var c model.Coupon
		if err := rows.Scan(&c.Code, &c.DiscountPercent, &c.EventID, &c.ExpiryDate, &c.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, c)
	}
	return res, rows.Err()
}

func (s *Store) DeleteCoupon(ctx context.Context, code string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM coupons WHERE code = $1`, code)
	if err != nil {
		return err
	}
	return expectRow(res, "coupon", code)
}

// -------- Scores --------

func (s *Store) CreateScore(ctx context.Context, e model.ScoreEntry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO scores (id, registration_id, event_id, committee_id, score, feedback, submitted_by, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`, e.ID, e.RegistrationID, e.EventID, e.CommitteeID, e.Score, e.Feedback, e.SubmittedBy, e.CreatedAt)
	return err
}

func (s *Store) ListScores(ctx context.Context, f store.ScoreFilter) ([]model.ScoreEntry, error) {
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
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, registration_id, event_id, committee_id, score, feedback, submitted_by, created_at
		FROM scores`+w.String()+` ORDER BY created_at ASC`, w.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	res := make([]model.ScoreEntry, 0)
	for rows.Next() {
		var e model.ScoreEntry
		if err := rows.Scan(&e.ID, &e.RegistrationID, &e.EventID, &e.CommitteeID, &e.Score, &e.Feedback, &e.SubmittedBy, &e.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, e)
	}
	return res, rows.Err()
}

// -------- Contacts --------

func (s *Store) CreateContact(ctx context.Context, c model.ContactSubmission) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO contact_submissions (id, name, email, subject, message, status, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`, c.ID, c.Name, c.Email, c.Subject, c.Message, c.Status, c.CreatedAt, c.UpdatedAt)
	return err
}

func (s *Store) GetContact(ctx context.Context, id string) (model.ContactSubmission, error) {
	var c model.ContactSubmission
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, email, subject, message, status, created_at, updated_at
		FROM contact_submissions WHERE id = $1
	`, id).Scan(&c.ID, &c.Name, &c.Email, &c.Subject, &c.Message, &c.Status, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return model.ContactSubmission{}, notFound(err, "contact", id)
	}
	return c, nil
}

func (s *Store) UpdateContact(ctx context.Context, c model.ContactSubmission) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE contact_submissions SET status = $2, updated_at = $3 WHERE id = $1
	`, c.ID, c.Status, c.UpdatedAt)
	if err != nil {
		return err
	}
	return expectRow(res, "contact", c.ID)
}

func (s *Store) DeleteContact(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM contact_submissions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return expectRow(res, "contact", id)
}

func (s *Store) ListContacts(ctx context.Context, status model.ContactStatus) ([]model.ContactSubmission, error) {
	var w where
	if status != "" {
		w.add("status = ?", status)
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, email, subject, message, status, created_at, updated_at
		FROM contact_submissions`+w.String()+` ORDER BY created_at DESC`, w.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	res := make([]model.ContactSubmission, 0)
	for rows.Next() {
		var c model.ContactSubmission
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.Subject, &c.Message, &c.Status, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		res = append(res, c)
	}
	return res, rows.Err()
}

// -------- Payments --------

const paymentColumns = `id, registration_id, order_id, payment_id, amount, discount, coupon_code, currency, status, created_at, updated_at`

func scanPayment(row scanner) (model.Payment, error) {
	var p model.Payment
	err := row.Scan(&p.ID, &p.RegistrationID, &p.OrderID, &p.PaymentID, &p.Amount, &p.Discount,
		&p.CouponCode, &p.Currency, &p.Status, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (s *Store) CreatePayment(ctx context.Context, p model.Payment) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO payments (`+paymentColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
	`, p.ID, p.RegistrationID, p.OrderID, p.PaymentID, p.Amount, p.Discount,
		p.CouponCode, p.Currency, p.Status, p.CreatedAt, p.UpdatedAt)
	if isUniqueViolation(err) {
		return fmt.Errorf("payment order %s: %w", p.OrderID, apperr.ErrConflict)
	}
	return err
}

func (s *Store) GetPaymentByOrder(ctx context.Context, orderID string) (model.Payment, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+paymentColumns+` FROM payments WHERE order_id = $1`, orderID)
	p, err := scanPayment(row)
	if err != nil {
		return model.Payment{}, notFound(err, "payment order", orderID)
	}
	return p, nil
}

func (s *Store) UpdatePayment(ctx context.Context, p model.Payment) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE payments SET payment_id = $2, status = $3, updated_at = $4 WHERE id = $1
	`, p.ID, p.PaymentID, p.Status, p.UpdatedAt)
	if err != nil {
		return err
	}
	return expectRow(res, "payment", p.ID)
}

func (s *Store) LatestPayment(ctx context.Context, registrationID string) (model.Payment, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+paymentColumns+` FROM payments
		WHERE registration_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`, registrationID)
	p, err := scanPayment(row)
	if err != nil {
		return model.Payment{}, notFound(err, "payment for registration", registrationID)
	}
	return p, nil
}

// -------- Events --------

func (s *Store) CreateEvent(ctx context.Context, e model.Event) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO events (id, name, price, currency, start_date, end_date, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`, e.ID, e.Name, e.Price, e.Currency, e.StartDate, e.EndDate, e.CreatedAt)
	return err
}

func (s *Store) GetEvent(ctx context.Context, id string) (model.Event, error) {
	var e model.Event
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, price, currency, start_date, end_date, created_at FROM events WHERE id = $1
	`, id).Scan(&e.ID, &e.Name, &e.Price, &e.Currency, &e.StartDate, &e.EndDate, &e.CreatedAt)
	if err != nil {
		return model.Event{}, notFound(err, "event", id)
	}
	return e, nil
}

func (s *Store) ListEvents(ctx context.Context) ([]model.Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, price, currency, start_date, end_date, created_at FROM events ORDER BY start_date ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	res := make([]model.Event, 0)
	for rows.Next() {
		var e model.Event
		if err := rows.Scan(&e.ID, &e.Name, &e.Price, &e.Currency, &e.StartDate, &e.EndDate, &e.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, e)
	}
	return res, rows.Err()
}
