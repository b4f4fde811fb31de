package services

import "math"

// LevelProgress describes where lifetimePoints sits between two level
// thresholds. Next is nil at the top tier.
type LevelProgress struct {
	Current         LevelDefinition  `json:"current"`
	Next            *LevelDefinition `json:"next,omitempty"`
	ProgressPercent float64          `json:"progressPercent"`
	PointsToNext    int              `json:"pointsToNext"`
}

// LevelForPoints returns the highest level whose threshold is at or below
// lifetimePoints. The table always has a zero-threshold floor entry, so the
// lowest level is the fallback.
func LevelForPoints(levels []LevelDefinition, lifetimePoints int) int {
	level := levels[0].Level
	for _, def := range levels {
		if lifetimePoints >= def.PointsRequired {
			level = def.Level
		} else {
			break
		}
	}
	return level
}

// LevelProgressFor computes the current level entry, the next entry and the
// fraction of the way between their thresholds, clamped to [0, 100] and
// rounded to one decimal.
func LevelProgressFor(levels []LevelDefinition, lifetimePoints int) LevelProgress {
	currentIdx := 0
	for i, def := range levels {
		if lifetimePoints >= def.PointsRequired {
			currentIdx = i
		} else {
			break
		}
	}

	current := levels[currentIdx]
	if currentIdx == len(levels)-1 {
		return LevelProgress{
			Current:         current,
			ProgressPercent: 100,
			PointsToNext:    0,
		}
	}

	next := levels[currentIdx+1]
	span := next.PointsRequired - current.PointsRequired
	percent := float64(lifetimePoints-current.PointsRequired) / float64(span) * 100
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	percent = math.Round(percent*10) / 10

	return LevelProgress{
		Current:         current,
		Next:            &next,
		ProgressPercent: percent,
		PointsToNext:    next.PointsRequired - lifetimePoints,
	}
}
