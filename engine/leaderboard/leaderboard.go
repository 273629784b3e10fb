// Package leaderboard ranks player projections. Every function is pure.
package leaderboard

import (
	"cmp"
	"slices"

	"github.com/nathoo/kaito/types"
)

// Board sizes.
const (
	LevelLimit  = 20
	RewardLimit = 10
)

// Ranked is an entry with its combined score.
type Ranked struct {
	types.LeaderboardEntry
	Rank  int
	Score float64
}

// Score is gold*0.5 + xp*0.1.
func Score(e types.LeaderboardEntry) float64 {
	return float64(e.Gold)*0.5 + float64(e.XP)*0.1
}

// Normalize coerces negative numeric fields to 0.
func Normalize(e types.LeaderboardEntry) types.LeaderboardEntry {
	e.Level = max(e.Level, 0)
	e.Gold = max(e.Gold, 0)
	e.XP = max(e.XP, 0)
	return e
}

// ByLevel sorts by level, then XP, both descending, and keeps the top 20.
func ByLevel(entries []types.LeaderboardEntry) []Ranked {
	ranked := prepare(entries)
	slices.SortStableFunc(ranked, func(a, b Ranked) int {
		if c := cmp.Compare(b.Level, a.Level); c != 0 {
			return c
		}
		return cmp.Compare(b.XP, a.XP)
	})
	return top(ranked, LevelLimit)
}

// ByReward sorts by combined score descending and keeps the top 10.
func ByReward(entries []types.LeaderboardEntry) []Ranked {
	ranked := prepare(entries)
	slices.SortStableFunc(ranked, func(a, b Ranked) int {
		return cmp.Compare(b.Score, a.Score)
	})
	return top(ranked, RewardLimit)
}

func prepare(entries []types.LeaderboardEntry) []Ranked {
	out := make([]Ranked, len(entries))
	for i, e := range entries {
		e = Normalize(e)
		out[i] = Ranked{LeaderboardEntry: e, Score: Score(e)}
	}
	return out
}

func top(ranked []Ranked, n int) []Ranked {
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked
}
