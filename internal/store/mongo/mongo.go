// Package mongo implements the store on MongoDB collections.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"conference/internal/apperr"
	"conference/internal/model"
	"conference/internal/store"
)

const (
	colRegistrations = "registrations"
	colAttendance    = "attendance_records"
	colCoupons       = "coupons"
	colScores        = "scores"
	colContacts      = "contact_submissions"
	colPayments      = "payments"
	colEvents        = "events"
)

// Store persists each entity in its own collection.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

var _ store.Store = (*Store)(nil)

// Connect dials MongoDB and selects the database.
func Connect(ctx context.Context, uri, database string) (*Store, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	return &Store{client: client, db: client.Database(database)}, nil
}

// EnsureIndexes creates the lookup indexes the queries rely on.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	specs := map[string][]mongo.IndexModel{
		colRegistrations: {
			{Keys: bson.D{{Key: "code", Value: 1}}},
			{Keys: bson.D{{Key: "event_id", Value: 1}, {Key: "committee_id", Value: 1}}},
			{Keys: bson.D{{Key: "email", Value: 1}}},
		},
		colAttendance: {
			{Keys: bson.D{{Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "check_in_time", Value: 1}}},
			{Keys: bson.D{{Key: "event_id", Value: 1}, {Key: "committee_id", Value: 1}}},
		},
		colScores: {
			{Keys: bson.D{{Key: "event_id", Value: 1}, {Key: "committee_id", Value: 1}}},
		},
		colPayments: {
			{Keys: bson.D{{Key: "order_id", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "registration_id", Value: 1}, {Key: "created_at", Value: -1}}},
		},
	}
	for col, models := range specs {
		if _, err := s.db.Collection(col).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("indexes %s: %w", col, err)
		}
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *Store) col(name string) *mongo.Collection { return s.db.Collection(name) }

func notFound(err error, kind, id string) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("%s %s: %w", kind, id, apperr.ErrNotFound)
	}
	return err
}

func conflict(err error, kind, id string) error {
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%s %s: %w", kind, id, apperr.ErrConflict)
	}
	return err
}

func findOne[T any](ctx context.Context, c *mongo.Collection, filter bson.M, kind, id string) (T, error) {
	var out T
	if err := c.FindOne(ctx, filter).Decode(&out); err != nil {
		return out, notFound(err, kind, id)
	}
	return out, nil
}

func findMany[T any](ctx context.Context, c *mongo.Collection, filter bson.M, opts *options.FindOptions) ([]T, error) {
	cur, err := c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func replace(ctx context.Context, c *mongo.Collection, id string, doc any, kind string) error {
	res, err := c.ReplaceOne(ctx, bson.M{"_id": id}, doc)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, apperr.ErrNotFound)
	}
	return nil
}

func remove(ctx context.Context, c *mongo.Collection, id, kind string) error {
	res, err := c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, apperr.ErrNotFound)
	}
	return nil
}

func newestFirst(limit int) *options.FindOptions {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	return opts
}

// -------- Registrations --------

func (s *Store) CreateRegistration(ctx context.Context, r model.Registration) error {
	_, err := s.col(colRegistrations).InsertOne(ctx, r)
	return conflict(err, "registration", r.ID)
}

func (s *Store) GetRegistration(ctx context.Context, id string) (model.Registration, error) {
	return findOne[model.Registration](ctx, s.col(colRegistrations), bson.M{"_id": id}, "registration", id)
}

// GetRegistrationByCode returns the oldest registration carrying code.
func (s *Store) GetRegistrationByCode(ctx context.Context, code string) (model.Registration, error) {
	var r model.Registration
	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: 1}})
	if err := s.col(colRegistrations).FindOne(ctx, bson.M{"code": code}, opts).Decode(&r); err != nil {
		return model.Registration{}, notFound(err, "registration code", code)
	}
	return r, nil
}

func (s *Store) UpdateRegistration(ctx context.Context, r model.Registration) error {
	return replace(ctx, s.col(colRegistrations), r.ID, r, "registration")
}

func (s *Store) DeleteRegistration(ctx context.Context, id string) error {
	return remove(ctx, s.col(colRegistrations), id, "registration")
}

func (s *Store) ListRegistrations(ctx context.Context, f store.RegistrationFilter) ([]model.Registration, error) {
	filter := bson.M{}
	if f.EventID != "" {
		filter["event_id"] = f.EventID
	}
	if f.CommitteeID != "" {
		filter["committee_id"] = f.CommitteeID
	}
	if f.Email != "" {
		// stored as submitted; match case-insensitively
		filter["email"] = bson.M{"$regex": "^" + regexp.QuoteMeta(f.Email) + "$", "$options": "i"}
	}
	return findMany[model.Registration](ctx, s.col(colRegistrations), filter, newestFirst(f.Limit))
}

// -------- Attendance --------

func (s *Store) CreateAttendance(ctx context.Context, a model.AttendanceRecord) error {
	_, err := s.col(colAttendance).InsertOne(ctx, a)
	return err
}

func (s *Store) GetAttendance(ctx context.Context, id string) (model.AttendanceRecord, error) {
	return findOne[model.AttendanceRecord](ctx, s.col(colAttendance), bson.M{"_id": id}, "attendance record", id)
}

func (s *Store) UpdateAttendance(ctx context.Context, a model.AttendanceRecord) error {
	return replace(ctx, s.col(colAttendance), a.ID, a, "attendance record")
}

func (s *Store) ListAttendance(ctx context.Context, f store.AttendanceFilter) ([]model.AttendanceRecord, error) {
	filter := bson.M{}
	if f.EventID != "" {
		filter["event_id"] = f.EventID
	}
	if f.CommitteeID != "" {
		filter["committee_id"] = f.CommitteeID
	}
	if f.RegistrationID != "" {
		filter["registration_id"] = f.RegistrationID
	}
	window := bson.M{}
	if !f.Since.IsZero() {
		window["$gte"] = f.Since
	}
	if !f.Until.IsZero() {
		window["$lt"] = f.Until
	}
	if len(window) > 0 {
		filter["check_in_time"] = window
	}
	return findMany[model.AttendanceRecord](ctx, s.col(colAttendance), filter, newestFirst(f.Limit))
}

// -------- Coupons --------

func (s *Store) CreateCoupon(ctx context.Context, c model.Coupon) error {
	_, err := s.col(colCoupons).InsertOne(ctx, c)
	return conflict(err, "coupon", c.Code)
}

func (s *Store) GetCoupon(ctx context.Context, code string) (model.Coupon, error) {
	return findOne[model.Coupon](ctx, s.col(colCoupons), bson.M{"_id": code}, "coupon", code)
}

func (s *Store) ListCoupons(ctx context.Context) ([]model.Coupon, error) {
	return findMany[model.Coupon](ctx, s.col(colCoupons), bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
}

func (s *Store) DeleteCoupon(ctx context.Context, code string) error {
	return remove(ctx, s.col(colCoupons), code, "coupon")
}

// -------- Scores --------

func (s *Store) CreateScore(ctx context.Context, e model.ScoreEntry) error {
	_, err := s.col(colScores).InsertOne(ctx, e)
	return err
}

func (s *Store) ListScores(ctx context.Context, f store.ScoreFilter) ([]model.ScoreEntry, error) {
	filter := bson.M{}
	if f.EventID != "" {
		filter["event_id"] = f.EventID
	}
	if f.CommitteeID != "" {
		filter["committee_id"] = f.CommitteeID
	}
	if f.RegistrationID != "" {
		filter["registration_id"] = f.RegistrationID
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	return findMany[model.ScoreEntry](ctx, s.col(colScores), filter, opts)
}

// -------- Contacts --------

func (s *Store) CreateContact(ctx context.Context, c model.ContactSubmission) error {
	_, err := s.col(colContacts).InsertOne(ctx, c)
	return err
}

func (s *Store) GetContact(ctx context.Context, id string) (model.ContactSubmission, error) {
	return findOne[model.ContactSubmission](ctx, s.col(colContacts), bson.M{"_id": id}, "contact", id)
}

func (s *Store) UpdateContact(ctx context.Context, c model.ContactSubmission) error {
	return replace(ctx, s.col(colContacts), c.ID, c, "contact")
}

func (s *Store) DeleteContact(ctx context.Context, id string) error {
	return remove(ctx, s.col(colContacts), id, "contact")
}

func (s *Store) ListContacts(ctx context.Context, status model.ContactStatus) ([]model.ContactSubmission, error) {
	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}
	return findMany[model.ContactSubmission](ctx, s.col(colContacts), filter, newestFirst(0))
}

// -------- Payments --------

func (s *Store) CreatePayment(ctx context.Context, p model.Payment) error {
	_, err := s.col(colPayments).InsertOne(ctx, p)
	return conflict(err, "payment order", p.OrderID)
}

func (s *Store) GetPaymentByOrder(ctx context.Context, orderID string) (model.Payment, error) {
	return findOne[model.Payment](ctx, s.col(colPayments), bson.M{"order_id": orderID}, "payment order", orderID)
}

func (s *Store) UpdatePayment(ctx context.Context, p model.Payment) error {
	return replace(ctx, s.col(colPayments), p.ID, p, "payment")
}

func (s *Store) LatestPayment(ctx context.Context, registrationID string) (model.Payment, error) {
	var p model.Payment
	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if err := s.col(colPayments).FindOne(ctx, bson.M{"registration_id": registrationID}, opts).Decode(&p); err != nil {
		return model.Payment{}, notFound(err, "payment for registration", registrationID)
	}
	return p, nil
}

// -------- Events --------

func (s *Store) CreateEvent(ctx context.Context, e model.Event) error {
	_, err := s.col(colEvents).InsertOne(ctx, e)
	return conflict(err, "event", e.ID)
}

func (s *Store) GetEvent(ctx context.Context, id string) (model.Event, error) {
	return findOne[model.Event](ctx, s.col(colEvents), bson.M{"_id": id}, "event", id)
}

func (s *Store) ListEvents(ctx context.Context) ([]model.Event, error) {
	opts := options.Find().SetSort(bson.D{{Key: "start_date", Value: 1}})
	return findMany[model.Event](ctx, s.col(colEvents), bson.M{}, opts)
}
