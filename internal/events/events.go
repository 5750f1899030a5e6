// Package events manages the catalog of events delegates register for.
package events

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"conference/internal/apperr"
	"conference/internal/model"
	"conference/internal/store"
	"conference/internal/validation"
)

// DefaultCurrency applies when an event is created without one.
const DefaultCurrency = "INR"

// CreateInput defines a new event.
type CreateInput struct {
	Name      string    `json:"name" validate:"required,max=200"`
	Price     float64   `json:"price" validate:"gte=0"`
	Currency  string    `json:"currency" validate:"omitempty,len=3"`
	StartDate time.Time `json:"startDate" validate:"required"`
	EndDate   time.Time `json:"endDate" validate:"required"`
}

// View is an event with its derived day count.
type View struct {
	model.Event
	Days int `json:"days"`
}

// Service manages events.
type Service struct {
	events store.Events
	log    zerolog.Logger
	now    func() time.Time
}

func NewService(events store.Events, log zerolog.Logger) *Service {
	return &Service{events: events, log: log, now: time.Now}
}

func (s *Service) Create(ctx context.Context, in CreateInput) (View, error) {
	if err := validation.Struct(ctx, in); err != nil {
		return View{}, err
	}
	if in.EndDate.Before(in.StartDate) {
		return View{}, apperr.Invalid("endDate", "is before startDate")
	}
	currency := strings.ToUpper(in.Currency)
	if currency == "" {
		currency = DefaultCurrency
	}
	e := model.Event{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(in.Name),
		Price:     in.Price,
		Currency:  currency,
		StartDate: in.StartDate.UTC(),
		EndDate:   in.EndDate.UTC(),
		CreatedAt: s.now().UTC(),
	}
	if err := s.events.CreateEvent(ctx, e); err != nil {
		return View{}, err
	}
	s.log.Info().Str("event_id", e.ID).Str("name", e.Name).Msg("event created")
	return view(e), nil
}

func (s *Service) Get(ctx context.Context, id string) (View, error) {
	e, err := s.events.GetEvent(ctx, id)
	if err != nil {
		return View{}, err
	}
	return view(e), nil
}

func (s *Service) List(ctx context.Context) ([]View, error) {
	list, err := s.events.ListEvents(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]View, 0, len(list))
	for _, e := range list {
		out = append(out, view(e))
	}
	return out, nil
}

func view(e model.Event) View {
	return View{Event: e, Days: DayCount(e.StartDate, e.EndDate)}
}

// DayCount returns the number of UTC calendar days from start to end,
// inclusive. It is zero when end precedes start.
func DayCount(start, end time.Time) int {
	s := truncateDay(start)
	e := truncateDay(end)
	if e.Before(s) {
		return 0
	}
	return int(e.Sub(s).Hours()/24) + 1
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
