package scoring

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"conference/internal/apperr"
	"conference/internal/auth"
	"conference/internal/model"
	"conference/internal/store/memory"
)

type mapCache struct {
	data    map[string][]Standing
	deleted []string
	getErr  error
}

func newMapCache() *mapCache { return &mapCache{data: make(map[string][]Standing)} }

func (c *mapCache) Get(_ context.Context, key string) ([]Standing, bool, error) {
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	v, ok := c.data[key]
	return v, ok, nil
}

func (c *mapCache) Set(_ context.Context, key string, s []Standing) error {
	c.data[key] = s
	return nil
}

func (c *mapCache) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(c.data, k)
		c.deleted = append(c.deleted, k)
	}
	return nil
}

func entry(reg string, score float64) model.ScoreEntry {
	return model.ScoreEntry{RegistrationID: reg, EventID: "E1", Score: score}
}

func TestAggregateSumsAndRanks(t *testing.T) {
	got := Aggregate([]model.ScoreEntry{entry("A", 10), entry("B", 20), entry("B", 5)})
	assert.Equal(t, []Standing{
		{RegistrationID: "B", AggregateScore: 25, Entries: 2, Rank: 1},
		{RegistrationID: "A", AggregateScore: 10, Entries: 1, Rank: 2},
	}, got)
}

func TestAggregateTiesShareDenseRank(t *testing.T) {
	got := Aggregate([]model.ScoreEntry{entry("C", 7), entry("A", 7), entry("B", 9), entry("D", 1)})
	require.Len(t, got, 4)
	assert.Equal(t, "B", got[0].RegistrationID)
	assert.Equal(t, 1, got[0].Rank)
	assert.Equal(t, "A", got[1].RegistrationID)
	assert.Equal(t, 2, got[1].Rank)
	assert.Equal(t, "C", got[2].RegistrationID)
	assert.Equal(t, 2, got[2].Rank)
	assert.Equal(t, "D", got[3].RegistrationID)
	assert.Equal(t, 3, got[3].Rank)
}

func TestAggregateEmpty(t *testing.T) {
	assert.Empty(t, Aggregate(nil))
}

func TestCacheKey(t *testing.T) {
	assert.Equal(t, "leaderboard:E1:all", CacheKey("E1", ""))
	assert.Equal(t, "leaderboard:E1:UNSC", CacheKey("E1", "UNSC"))
}

func setup(t *testing.T) (*Service, *mapCache) {
	t.Helper()
	mem := memory.New()
	for _, id := range []string{"A", "B"} {
		require.NoError(t, mem.CreateRegistration(context.Background(), model.Registration{ID: id, EventID: "E1", CommitteeID: "UNSC"}))
	}
	cache := newMapCache()
	s := NewService(mem, mem, cache, zerolog.Nop())
	s.now = func() time.Time { return time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC) }
	return s, cache
}

var admin = auth.Role{Kind: auth.KindAdmin, Email: "admin@example.com"}

func TestSubmitAndLeaderboard(t *testing.T) {
	s, cache := setup(t)
	ctx := context.Background()

	for _, in := range []SubmitInput{
		{RegistrationID: "A", EventID: "E1", CommitteeID: "UNSC", Score: 10},
		{RegistrationID: "B", EventID: "E1", CommitteeID: "UNSC", Score: 20},
		{RegistrationID: "B", EventID: "E1", CommitteeID: "UNSC", Score: 5},
	} {
		e, err := s.Submit(ctx, admin, in)
		require.NoError(t, err)
		assert.Equal(t, "admin@example.com", e.SubmittedBy)
	}

	board, err := s.Leaderboard(ctx, "E1", "")
	require.NoError(t, err)
	require.Len(t, board, 2)
	assert.Equal(t, Standing{RegistrationID: "B", AggregateScore: 25, Entries: 2, Rank: 1}, board[0])
	assert.Equal(t, Standing{RegistrationID: "A", AggregateScore: 10, Entries: 1, Rank: 2}, board[1])
	assert.Contains(t, cache.data, "leaderboard:E1:all")
}

func TestSubmitInvalidatesCache(t *testing.T) {
	s, cache := setup(t)
	ctx := context.Background()
	cache.data["leaderboard:E1:all"] = []Standing{{RegistrationID: "stale"}}
	cache.data["leaderboard:E1:UNSC"] = []Standing{{RegistrationID: "stale"}}

	_, err := s.Submit(ctx, admin, SubmitInput{RegistrationID: "A", EventID: "E1", CommitteeID: "UNSC", Score: 3})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"leaderboard:E1:all", "leaderboard:E1:UNSC"}, cache.deleted)

	board, err := s.Leaderboard(ctx, "E1", "UNSC")
	require.NoError(t, err)
	require.Len(t, board, 1)
	assert.Equal(t, "A", board[0].RegistrationID)
}

func TestLeaderboardFallsThroughOnCacheError(t *testing.T) {
	s, cache := setup(t)
	ctx := context.Background()
	_, err := s.Submit(ctx, admin, SubmitInput{RegistrationID: "A", EventID: "E1", Score: 4})
	require.NoError(t, err)

	cache.getErr = errors.New("redis down")
	board, err := s.Leaderboard(ctx, "E1", "")
	require.NoError(t, err)
	require.Len(t, board, 1)
	assert.Equal(t, 4.0, board[0].AggregateScore)
}

func TestSubmitAuthorization(t *testing.T) {
	s, _ := setup(t)
	ctx := context.Background()
	chair := auth.Role{Kind: auth.KindChair, Committee: "UNSC", Email: "chair@example.com"}

	_, err := s.Submit(ctx, chair, SubmitInput{RegistrationID: "A", EventID: "E1", CommitteeID: "UNSC", Score: 1})
	require.NoError(t, err)

	_, err = s.Submit(ctx, chair, SubmitInput{RegistrationID: "A", EventID: "E1", CommitteeID: "DISEC", Score: 1})
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	user := auth.Role{Kind: auth.KindUser, Email: "x@example.com"}
	_, err = s.Submit(ctx, user, SubmitInput{RegistrationID: "A", EventID: "E1", CommitteeID: "UNSC", Score: 1})
	assert.ErrorIs(t, err, apperr.ErrForbidden)
}

func TestSubmitValidatesAndChecksRegistration(t *testing.T) {
	s, _ := setup(t)
	ctx := context.Background()

	_, err := s.Submit(ctx, admin, SubmitInput{RegistrationID: "A", EventID: "E1", Score: -1})
	assert.True(t, apperr.IsValidation(err))

	_, err = s.Submit(ctx, admin, SubmitInput{RegistrationID: "ghost", EventID: "E1", Score: 1})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestLeaderboardRequiresEvent(t *testing.T) {
	s, _ := setup(t)
	_, err := s.Leaderboard(context.Background(), "", "")
	assert.True(t, apperr.IsValidation(err))
}
