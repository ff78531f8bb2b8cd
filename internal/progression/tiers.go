package progression

import (
	"math"
)

// Tier is one row of the leveling table. Floor is the cumulative point
// total at which the tier begins; a tier owns the range (Floor, Ceiling]
// except the first, which also owns zero. Every Step points inside a tier
// is one level above BaseLevel.
type Tier struct {
	Floor     int
	Ceiling   int
	Step      int
	BaseLevel int
	Title     string
}

// tiers is the single ordered table consulted by both the progress
// calculator and the stats updater. Ranges are contiguous and cover
// [0, ∞); exactly one row matches any non-negative point total.
var tiers = []Tier{
	{Floor: 0, Ceiling: 1000, Step: 200, BaseLevel: 0, Title: "Newbie"},
	{Floor: 1000, Ceiling: 2000, Step: 200, BaseLevel: 5, Title: "Apprentice"},
	{Floor: 2000, Ceiling: 3500, Step: 300, BaseLevel: 10, Title: "Pro"},
	{Floor: 3500, Ceiling: 5000, Step: 300, BaseLevel: 15, Title: "Ace"},
	{Floor: 5000, Ceiling: 7500, Step: 500, BaseLevel: 20, Title: "Premier"},
	{Floor: 7500, Ceiling: 10000, Step: 500, BaseLevel: 25, Title: "Superstar"},
	{Floor: 10000, Ceiling: 12500, Step: 500, BaseLevel: 30, Title: "Guru"},
	{Floor: 12500, Ceiling: math.MaxInt, Step: 500, BaseLevel: 35, Title: "King"},
}

func tierFor(points int) Tier {
	if points < 0 {
		points = 0
	}
	for _, t := range tiers {
		if points <= t.Ceiling {
			return t
		}
	}
	return tiers[len(tiers)-1]
}

// Progress reports how far a point total is from the next level boundary.
type Progress struct {
	Remaining int `json:"remaining_points"`
	TierSize  int `json:"tier_size"`
}

// CalcProgress returns the points remaining until the next level and the
// size of the current tier step. Remaining is always in (0, TierSize]: a
// total sitting exactly on a level boundary has a full step remaining.
func CalcProgress(points int) Progress {
	if points < 0 {
		points = 0
	}
	t := tierFor(points)
	return Progress{
		Remaining: t.Step - (points-t.Floor)%t.Step,
		TierSize:  t.Step,
	}
}

// LevelFor derives level and title from a cumulative point total. It is a
// pure recomputation against the tier table, so earning enough points to
// cross several tiers at once still lands on the right level.
func LevelFor(points int) (int, string) {
	if points < 0 {
		points = 0
	}
	t := tierFor(points)
	return t.BaseLevel + (points-t.Floor)/t.Step, t.Title
}
