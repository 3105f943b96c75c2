package fixture

import (
	"slices"
	"time"
)

// SortByKickoff orders fixtures by kickoff_utc ascending, in place. A null
// or unparseable kickoff sorts as the Unix epoch. The sort is stable.
func SortByKickoff(fixtures []Fixture) {
	slices.SortStableFunc(fixtures, func(a, b Fixture) int {
		return kickoffUnix(a).Compare(kickoffUnix(b))
	})
}

func kickoffUnix(f Fixture) time.Time {
	if f.KickoffUTC == nil {
		return time.Unix(0, 0)
	}
	t, err := time.Parse(time.RFC3339, *f.KickoffUTC)
	if err != nil {
		return time.Unix(0, 0)
	}
	return t
}
