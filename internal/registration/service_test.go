package registration

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"conference/internal/apperr"
	"conference/internal/model"
	"conference/internal/queue"
	"conference/internal/store"
	"conference/internal/store/memory"
	"conference/internal/validation"
)

var fixedNow = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

type fakePayments struct {
	store.Payments
	latest func(ctx context.Context, id string) (model.Payment, error)
}

func (f fakePayments) LatestPayment(ctx context.Context, id string) (model.Payment, error) {
	return f.latest(ctx, id)
}

type failingRegistrations struct {
	store.Registrations
}

func (failingRegistrations) CreateRegistration(ctx context.Context, r model.Registration) error {
	return errors.New("connection reset")
}

func newTestService(t *testing.T) (*Service, *memory.Store, *queue.InMemory) {
	t.Helper()
	mem := memory.New()
	q := queue.NewInMemory(8)
	s := NewService(mem, mem, q, zerolog.Nop())
	s.now = func() time.Time { return fixedNow }
	return s, mem, q
}

func validInput() CreateInput {
	return CreateInput{Name: "Ada", Email: "ada@example.com", School: "Lovelace High", EventID: "E1", CommitteeID: "UNSC"}
}

func TestCreateDefaults(t *testing.T) {
	s, mem, q := newTestService(t)
	r, err := s.Create(context.Background(), validInput())
	require.NoError(t, err)

	assert.False(t, r.CheckedIn)
	assert.Nil(t, r.CheckedInAt)
	assert.Equal(t, model.PaymentPending, r.PaymentStatus)
	assert.Equal(t, model.StatusConfirmed, r.Status)
	assert.Regexp(t, validation.CodePattern, r.Code)
	assert.Equal(t, fixedNow, r.CreatedAt)
	assert.Equal(t, r.CreatedAt, r.UpdatedAt)

	stored, err := mem.GetRegistration(context.Background(), r.ID)
	require.NoError(t, err)
	assert.Equal(t, r, stored)

	require.Equal(t, 1, q.Len())
}

func TestCreatePublishesCode(t *testing.T) {
	s, _, q := newTestService(t)
	r, err := s.Create(context.Background(), validInput())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	msgs, err := q.Consume(ctx)
	require.NoError(t, err)
	msg := <-msgs
	assert.Equal(t, queue.TypeRegistrationCreated, msg.Type)

	var body queue.RegistrationCreated
	require.NoError(t, json.Unmarshal(msg.Body, &body))
	assert.Equal(t, r.Code, body.Code)
	assert.Equal(t, r.ID, body.RegistrationID)
}

func TestCreateDoesNotWaitOnFullQueue(t *testing.T) {
	mem := memory.New()
	q := queue.NewInMemory(1)
	s := NewService(mem, mem, q, zerolog.Nop())

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := s.Create(ctx, validInput())
	require.NoError(t, err)

	start := time.Now()
	r, err := s.Create(ctx, validInput())
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
	assert.Equal(t, 1, q.Len())

	_, err = mem.GetRegistration(context.Background(), r.ID)
	assert.NoError(t, err)
}

func TestCreateKeepsSuppliedCodeUppercased(t *testing.T) {
	s, _, _ := newTestService(t)
	in := validInput()
	in.Code = "ab12cd"
	r, err := s.Create(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, "AB12CD", r.Code)
}

func TestCreateValidation(t *testing.T) {
	s, _, _ := newTestService(t)
	in := validInput()
	in.Email = "not-an-email"
	in.School = ""
	in.Code = "SHORT"

	_, err := s.Create(context.Background(), in)
	var ve *apperr.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "email")
	assert.Contains(t, ve.Fields, "school")
	assert.Contains(t, ve.Fields, "code")
}

func TestCreateStoreFailureIsUpstream(t *testing.T) {
	s := NewService(failingRegistrations{}, nil, nil, zerolog.Nop())
	_, err := s.Create(context.Background(), validInput())
	require.Error(t, err)
	assert.False(t, apperr.IsValidation(err))
	assert.False(t, errors.Is(err, apperr.ErrNotFound))
}

// Codes are drawn at random and never checked against stored codes, so two
// registrations may share one. Lookups by code return the oldest match.
func TestGeneratedCodesAreNotDeduplicated(t *testing.T) {
	s, mem, _ := newTestService(t)
	s.newCode = func() (string, error) { return "SAME01", nil }

	first, err := s.Create(context.Background(), validInput())
	require.NoError(t, err)
	s.now = func() time.Time { return fixedNow.Add(time.Minute) }
	second, err := s.Create(context.Background(), validInput())
	require.NoError(t, err)

	assert.Equal(t, first.Code, second.Code)
	assert.NotEqual(t, first.ID, second.ID)

	got, err := mem.GetRegistrationByCode(context.Background(), "SAME01")
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)
}

func TestGenerateCodeShape(t *testing.T) {
	for i := 0; i < 50; i++ {
		code, err := GenerateCode()
		require.NoError(t, err)
		assert.Regexp(t, validation.CodePattern, code)
	}
}

func TestGetWithLatestPayment(t *testing.T) {
	s, mem, _ := newTestService(t)
	ctx := context.Background()
	r, err := s.Create(ctx, validInput())
	require.NoError(t, err)

	d, err := s.Get(ctx, r.ID)
	require.NoError(t, err)
	assert.Nil(t, d.LatestPayment)

	require.NoError(t, mem.CreatePayment(ctx, model.Payment{ID: "p1", RegistrationID: r.ID, OrderID: "o1", Status: model.PaymentCreated, CreatedAt: fixedNow}))
	d, err = s.Get(ctx, r.ID)
	require.NoError(t, err)
	require.NotNil(t, d.LatestPayment)
	assert.Equal(t, "o1", d.LatestPayment.OrderID)
}

func TestGetDegradesWhenPaymentLookupFails(t *testing.T) {
	s, _, _ := newTestService(t)
	ctx := context.Background()
	r, err := s.Create(ctx, validInput())
	require.NoError(t, err)

	s.payments = fakePayments{latest: func(context.Context, string) (model.Payment, error) {
		return model.Payment{}, errors.New("timeout")
	}}
	d, err := s.Get(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, r.ID, d.ID)
	assert.Nil(t, d.LatestPayment)
}

func TestGetMissing(t *testing.T) {
	s, _, _ := newTestService(t)
	_, err := s.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestUpdateMergesAndRefreshes(t *testing.T) {
	s, _, _ := newTestService(t)
	ctx := context.Background()
	r, err := s.Create(ctx, validInput())
	require.NoError(t, err)

	later := fixedNow.Add(time.Hour)
	s.now = func() time.Time { return later }
	school := "New School"
	checked := true
	paid := model.PaymentPaid
	updated, err := s.Update(ctx, r.ID, Patch{School: &school, CheckedIn: &checked, PaymentStatus: &paid})
	require.NoError(t, err)

	assert.Equal(t, "New School", updated.School)
	assert.Equal(t, "Ada", updated.Name)
	assert.Equal(t, model.PaymentPaid, updated.PaymentStatus)
	assert.True(t, updated.CheckedIn)
	require.NotNil(t, updated.CheckedInAt)
	assert.Equal(t, later, *updated.CheckedInAt)
	assert.Equal(t, later, updated.UpdatedAt)
	assert.Equal(t, fixedNow, updated.CreatedAt)

	unchecked := false
	updated, err = s.Update(ctx, r.ID, Patch{CheckedIn: &unchecked})
	require.NoError(t, err)
	assert.False(t, updated.CheckedIn)
	assert.Nil(t, updated.CheckedInAt)
}

func TestUpdateRejectsBadStatus(t *testing.T) {
	s, _, _ := newTestService(t)
	ctx := context.Background()
	r, err := s.Create(ctx, validInput())
	require.NoError(t, err)

	bogus := model.RegistrationStatus("archived")
	_, err = s.Update(ctx, r.ID, Patch{Status: &bogus})
	assert.True(t, apperr.IsValidation(err))
}

func TestUpdateAndDeleteMissing(t *testing.T) {
	s, _, _ := newTestService(t)
	name := "x"
	_, err := s.Update(context.Background(), "missing", Patch{Name: &name})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.ErrorIs(t, s.Delete(context.Background(), "missing"), apperr.ErrNotFound)
}

func TestListNewestFirst(t *testing.T) {
	s, _, _ := newTestService(t)
	ctx := context.Background()
	first, err := s.Create(ctx, validInput())
	require.NoError(t, err)
	s.now = func() time.Time { return fixedNow.Add(time.Minute) }
	second, err := s.Create(ctx, validInput())
	require.NoError(t, err)

	list, err := s.List(ctx, store.RegistrationFilter{EventID: "E1"})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)
}
