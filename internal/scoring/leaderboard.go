package scoring

import (
	"sort"

	"conference/internal/model"
)

// Standing is one delegate's position on a leaderboard.
type Standing struct {
	RegistrationID string  `json:"registrationId"`
	AggregateScore float64 `json:"aggregateScore"`
	Entries        int     `json:"entries"`
	Rank           int     `json:"rank"`
}

// Aggregate sums entries per registration and ranks them by aggregate
// descending. Equal aggregates share a rank and the next distinct aggregate
// takes the next rank. Ties are ordered by registration id.
func Aggregate(entries []model.ScoreEntry) []Standing {
	byID := make(map[string]*Standing)
	for _, e := range entries {
		st, ok := byID[e.RegistrationID]
		if !ok {
			st = &Standing{RegistrationID: e.RegistrationID}
			byID[e.RegistrationID] = st
		}
		st.AggregateScore += e.Score
		st.Entries++
	}

	out := make([]Standing, 0, len(byID))
	for _, st := range byID {
		out = append(out, *st)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].AggregateScore != out[j].AggregateScore {
			return out[i].AggregateScore > out[j].AggregateScore
		}
		return out[i].RegistrationID < out[j].RegistrationID
	})

	rank := 0
	for i := range out {
		if i == 0 || out[i].AggregateScore != out[i-1].AggregateScore {
			rank++
		}
		out[i].Rank = rank
	}
	return out
}
