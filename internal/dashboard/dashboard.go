// Package dashboard computes the admin, chair and delegate dashboard counts.
package dashboard

import (
	"context"
	"time"

	"conference/internal/apperr"
	"conference/internal/auth"
	"conference/internal/model"
	"conference/internal/store"
)

// Counts are the headline numbers for a scope.
type Counts struct {
	Scope           string `json:"scope"`
	TotalDelegates  int    `json:"totalDelegates"`
	CheckedIn       int    `json:"checkedIn"`
	PresentToday    int    `json:"presentToday"`
	ScoredDelegates int    `json:"scoredDelegates"`
	PendingScores   int    `json:"pendingScores"`
}

// UserRegistration is one of the caller's own registrations.
type UserRegistration struct {
	model.Registration
	AttendanceCount int     `json:"attendanceCount"`
	PresentCount    int     `json:"presentCount"`
	TotalScore      float64 `json:"totalScore"`
	ScoreEntries    int     `json:"scoreEntries"`
}

// UserView is the delegate dashboard.
type UserView struct {
	Email         string             `json:"email"`
	Registrations []UserRegistration `json:"registrations"`
}

// Reader is the read-only slice of the store the dashboards need.
type Reader interface {
	ListRegistrations(ctx context.Context, f store.RegistrationFilter) ([]model.Registration, error)
	ListAttendance(ctx context.Context, f store.AttendanceFilter) ([]model.AttendanceRecord, error)
	ListScores(ctx context.Context, f store.ScoreFilter) ([]model.ScoreEntry, error)
}

// Service computes dashboards on demand.
type Service struct {
	store Reader
	now   func() time.Time
}

// NewService wires the dashboard service.
func NewService(r Reader) *Service {
	return &Service{store: r, now: time.Now}
}

// Admin returns global counts.
func (s *Service) Admin(ctx context.Context) (Counts, error) {
	return s.counts(ctx, "")
}

// Chair returns counts for the chair's committee, or global counts when the
// chair's scope is every committee.
func (s *Service) Chair(ctx context.Context, role auth.Role) (Counts, error) {
	if role.Kind != auth.KindChair && role.Kind != auth.KindAdmin {
		return Counts{}, apperr.ErrForbidden
	}
	return s.counts(ctx, role.ScopeFilter())
}

func (s *Service) counts(ctx context.Context, committee string) (Counts, error) {
	regs, err := s.store.ListRegistrations(ctx, store.RegistrationFilter{CommitteeID: committee})
	if err != nil {
		return Counts{}, err
	}
	c := Counts{Scope: committee}
	if c.Scope == "" {
		c.Scope = auth.AllCommittees
	}
	active := make(map[string]struct{}, len(regs))
	for _, r := range regs {
		if r.Status == model.StatusCancelled {
			continue
		}
		active[r.ID] = struct{}{}
		c.TotalDelegates++
		if r.CheckedIn {
			c.CheckedIn++
		}
	}

	today := startOfDay(s.now())
	recs, err := s.store.ListAttendance(ctx, store.AttendanceFilter{CommitteeID: committee, Since: today, Until: today.AddDate(0, 0, 1)})
	if err != nil {
		return Counts{}, err
	}
	present := make(map[string]struct{})
	for _, a := range recs {
		if a.AttendanceStatus == model.AttendancePresent {
			present[a.RegistrationID] = struct{}{}
		}
	}
	c.PresentToday = len(present)

	scores, err := s.store.ListScores(ctx, store.ScoreFilter{CommitteeID: committee})
	if err != nil {
		return Counts{}, err
	}
	scored := make(map[string]struct{})
	for _, e := range scores {
		if _, ok := active[e.RegistrationID]; ok {
			scored[e.RegistrationID] = struct{}{}
		}
	}
	c.ScoredDelegates = len(scored)
	c.PendingScores = max(c.TotalDelegates-c.ScoredDelegates, 0)
	return c, nil
}

// User returns the registrations owned by email with attendance and score
// totals.
func (s *Service) User(ctx context.Context, email string) (UserView, error) {
	regs, err := s.store.ListRegistrations(ctx, store.RegistrationFilter{Email: email})
	if err != nil {
		return UserView{}, err
	}
	view := UserView{Email: email, Registrations: make([]UserRegistration, 0, len(regs))}
	for _, r := range regs {
		ur := UserRegistration{Registration: r}
		recs, err := s.store.ListAttendance(ctx, store.AttendanceFilter{RegistrationID: r.ID})
		if err != nil {
			return UserView{}, err
		}
		ur.AttendanceCount = len(recs)
		for _, a := range recs {
			if a.AttendanceStatus == model.AttendancePresent {
				ur.PresentCount++
			}
		}
		scores, err := s.store.ListScores(ctx, store.ScoreFilter{RegistrationID: r.ID})
		if err != nil {
			return UserView{}, err
		}
		for _, e := range scores {
			ur.TotalScore += e.Score
		}
		ur.ScoreEntries = len(scores)
		view.Registrations = append(view.Registrations, ur)
	}
	return view, nil
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
