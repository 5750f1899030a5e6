// Package scoring records delegate scores and ranks delegates on
// leaderboards.
package scoring

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"conference/internal/apperr"
	"conference/internal/auth"
	"conference/internal/metrics"
	"conference/internal/model"
	"conference/internal/store"
	"conference/internal/validation"
)

// SubmitInput is one score submission.
type SubmitInput struct {
	RegistrationID string  `json:"registrationId" validate:"required"`
	EventID        string  `json:"eventId" validate:"required"`
	CommitteeID    string  `json:"committeeId" validate:"omitempty,max=64"`
	Score          float64 `json:"score" validate:"gte=0"`
	Feedback       string  `json:"feedback" validate:"omitempty,max=2000"`
}

// Service submits scores and serves leaderboards.
type Service struct {
	registrations store.Registrations
	scores        store.Scores
	cache         Cache
	log           zerolog.Logger
	now           func() time.Time
}

// NewService wires the scoring service. cache may be nil.
func NewService(registrations store.Registrations, scores store.Scores, cache Cache, log zerolog.Logger) *Service {
	return &Service{registrations: registrations, scores: scores, cache: cache, log: log, now: time.Now}
}

// Submit stores a new score entry. Admins may score any committee; chairs
// only the committees their scope covers.
func (s *Service) Submit(ctx context.Context, role auth.Role, in SubmitInput) (model.ScoreEntry, error) {
	if err := validation.Struct(ctx, in); err != nil {
		return model.ScoreEntry{}, err
	}
	if !role.Covers(in.CommitteeID) {
		return model.ScoreEntry{}, apperr.ErrForbidden
	}
	if _, err := s.registrations.GetRegistration(ctx, in.RegistrationID); err != nil {
		return model.ScoreEntry{}, err
	}

	e := model.ScoreEntry{
		ID:             uuid.NewString(),
		RegistrationID: in.RegistrationID,
		EventID:        in.EventID,
		CommitteeID:    in.CommitteeID,
		Score:          in.Score,
		Feedback:       in.Feedback,
		SubmittedBy:    role.Email,
		CreatedAt:      s.now().UTC(),
	}
	if err := s.scores.CreateScore(ctx, e); err != nil {
		return model.ScoreEntry{}, err
	}
	metrics.ScoresSubmitted.Inc()
	s.invalidate(ctx, e.EventID, e.CommitteeID)
	s.log.Info().Str("registration_id", e.RegistrationID).Float64("score", e.Score).Str("by", e.SubmittedBy).Msg("score submitted")
	return e, nil
}

func (s *Service) invalidate(ctx context.Context, eventID, committeeID string) {
	if s.cache == nil {
		return
	}
	keys := []string{CacheKey(eventID, "")}
	if committeeID != "" {
		keys = append(keys, CacheKey(eventID, committeeID))
	}
	if err := s.cache.Delete(ctx, keys...); err != nil {
		s.log.Warn().Err(err).Strs("keys", keys).Msg("leaderboard cache invalidation failed")
	}
}

// Leaderboard ranks every scored delegate of eventID, optionally narrowed to
// committeeID.
func (s *Service) Leaderboard(ctx context.Context, eventID, committeeID string) ([]Standing, error) {
	if eventID == "" {
		return nil, apperr.Invalid("eventId", "is required")
	}
	key := CacheKey(eventID, committeeID)
	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx, key)
		switch {
		case err != nil:
			metrics.LeaderboardCache.WithLabelValues("error").Inc()
			s.log.Warn().Err(err).Str("key", key).Msg("leaderboard cache read failed")
		case ok:
			metrics.LeaderboardCache.WithLabelValues("hit").Inc()
			return cached, nil
		default:
			metrics.LeaderboardCache.WithLabelValues("miss").Inc()
		}
	}

	entries, err := s.scores.ListScores(ctx, store.ScoreFilter{EventID: eventID, CommitteeID: committeeID})
	if err != nil {
		return nil, err
	}
	standings := Aggregate(entries)
	if s.cache != nil {
		if err := s.cache.Set(ctx, key, standings); err != nil {
			s.log.Warn().Err(err).Str("key", key).Msg("leaderboard cache write failed")
		}
	}
	return standings, nil
}
